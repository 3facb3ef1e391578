package main

import "github.com/MarcosAndradeV/chs/internal/mem"

// Memory is the VM-facing view of the program's linear memory arena: a
// thin wrapper translating mem.Arena's byte-offset API into the VM's
// pointer-as-uint64 world and its own trap error family.
type Memory struct {
	arena *mem.Arena
}

// newMemory builds an arena sized per spec.md section 3: the sum of all
// string-literal lengths plus program_mem, with each string copied in at
// its assigned offset. Strs is always empty in this build (see the
// "String literals" resolved Open Question), so in practice this only
// grows the arena to bc.ProgramMem.
func newMemory(bc *Bytecode, limit uint) (*Memory, error) {
	arena := mem.NewArena(limit)
	for _, s := range bc.Strs {
		off, err := arena.Push(len(s))
		if err != nil {
			return nil, err
		}
		if err := arena.WriteBytes(off, s); err != nil {
			return nil, err
		}
	}
	if err := arena.Grow(arena.Size() + bc.ProgramMem); err != nil {
		return nil, err
	}
	return &Memory{arena: arena}, nil
}

func (m *Memory) Read(ptr, width int) (uint64, error) {
	v, err := m.arena.ReadWidth(ptr, width)
	if err != nil {
		return 0, trap(err)
	}
	return v, nil
}

func (m *Memory) Write(ptr, width int, val uint64) error {
	if err := m.arena.WriteWidth(ptr, width, val); err != nil {
		return trap(err)
	}
	return nil
}

func (m *Memory) Size() int { return m.arena.Size() }
