package ir

type BlockID int32

type Block struct {
	ID     BlockID
	Name   string
	Instrs []Instr
}

// Terminated reports whether the block's last instruction is a terminator.
func (b *Block) Terminated() bool {
	if b == nil || len(b.Instrs) == 0 {
		return false
	}
	return b.Instrs[len(b.Instrs)-1].Op.IsTerminator()
}
