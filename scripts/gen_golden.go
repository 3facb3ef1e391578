// Command gen_golden regenerates the golden stdout fixtures under
// testdata/golden/ by compiling and running each worked scenario from
// section 8 through the real chs binary, one os/exec invocation per
// scenario, fanned out concurrently under an errgroup.
//
// Run with: go run ./scripts/gen_golden.go
package main

import (
	"bytes"
	"context"
	"flag"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"
)

var outDir = flag.String("out", "testdata/golden", "directory to write golden fixtures into")

type scenario struct {
	name string
	src  string
}

var scenarios = []scenario{
	{"add", "1 2 + debug"},
	{"rot", "1 2 3 rot debug"},
	{"fn_bind", "fn add a b : int int -> int { & 1 & 1 + } 3 4 add debug"},
	{"alloc_read_write", "alloc : 8 = buf  42 buf 64 ! buf 64 @ debug"},
	{"while_loop", "0 while dup 3 != { dup 1 + } debug"},
	{"if_else", "1 1 != if { 100 } else { 200 } debug"},
}

func main() {
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("failed to create %v: %v", *outDir, err)
	}

	eg, ctx := errgroup.WithContext(ctx)
	for _, sc := range scenarios {
		sc := sc
		eg.Go(func() error {
			return generate(ctx, sc)
		})
	}
	if err := eg.Wait(); err != nil {
		log.Fatalln(err)
	}
}

// generate writes sc's source to a scratch .chs file, runs it through the
// built pipeline via `go run .`, and records stdout as the scenario's
// golden fixture.
func generate(ctx context.Context, sc scenario) error {
	srcFile, err := os.CreateTemp("", sc.name+"-*.chs")
	if err != nil {
		return err
	}
	defer os.Remove(srcFile.Name())

	if _, err := srcFile.WriteString(sc.src); err != nil {
		srcFile.Close()
		return err
	}
	if err := srcFile.Close(); err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, "go", "run", ".", srcFile.Name())
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return err
	}

	goldenPath := filepath.Join(*outDir, sc.name+".txt")
	return os.WriteFile(goldenPath, stdout.Bytes(), 0o644)
}
