package ir

// Linkage is the visibility of a module-level symbol.
type Linkage uint8

const (
	LinkageExternal Linkage = iota
	LinkagePrivate
)

func (l Linkage) String() string {
	switch l {
	case LinkagePrivate:
		return "private"
	default:
		return "external"
	}
}
