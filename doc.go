/* Package main: chs -- a small stack-oriented, statically typed, concatenative language

chs programs are built by writing words one after another; there are no
expressions in the usual sense, only a sequence of operations that thread a
single data stack through the whole program. A word either manipulates the
stack directly (the built-in intrinsics: +, *, mod, ==, !=, <, dup, drop,
swap, over, rot), reads or writes the memory arena at a chosen bit width, or
calls a previously defined function.

The toolchain is a short, strictly sequential pipeline:

  - the lexer turns the source bytes into a lazy sequence of located tokens
  - the parser turns tokens into a tree of Operations, folding const/alloc
    expressions at parse time
  - the type checker symbolically executes that tree over a type-only stack,
    rejecting anything that isn't well-typed
  - the compiler lowers the tree into a flat Instruction stream, back-patching
    jump targets for if/else/while as it goes
  - the VM executes that stream over a data stack, a return stack, and a
    linear memory arena

There is no concurrency anywhere in this pipeline: each stage consumes the
previous stage's output in full before the next begins, and the VM itself is
a single tight fetch-decode-execute loop.

Section 1: see lexer.go and token.go for tokenization.
Section 2: see parser.go and ast.go for the Operation tree.
Section 3: see typecheck.go for the abstract stack-type interpreter.
Section 4: see bytecode.go and compiler.go for bytecode lowering.
Section 5: see vm.go, exec.go and memory.go for the virtual machine.

*/
package main
