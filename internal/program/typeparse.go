package program

import (
	"strconv"
	"strings"

	"irforge/internal/diag"
	"irforge/internal/types"
)

// ParseType resolves a type descriptor such as "i32", "[4 x i32]",
// "%struct.point" or "i8*". structs maps struct names, without the leading
// '%', to their declared types.
func ParseType(in *types.Interner, structs map[string]types.TypeID, src string) (types.TypeID, error) {
	p := typeParser{in: in, structs: structs, src: src}
	id, err := p.parse()
	if err != nil {
		return types.NoTypeID, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return types.NoTypeID, p.errorf("unexpected %q", p.src[p.pos:])
	}
	return id, nil
}

type typeParser struct {
	in      *types.Interner
	structs map[string]types.TypeID
	src     string
	pos     int
}

func (p *typeParser) errorf(format string, args ...any) error {
	return diag.Errorf(diag.InvalidProgram, "type "+strconv.Quote(p.src), format, args...)
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *typeParser) parse() (types.TypeID, error) {
	id, err := p.base()
	if err != nil {
		return types.NoTypeID, err
	}
	for {
		p.skipSpace()
		if p.pos >= len(p.src) || p.src[p.pos] != '*' {
			return id, nil
		}
		p.pos++
		if p.in.Kind(id) == types.KindVoid {
			return types.NoTypeID, p.errorf("void* is not a valid pointer type, use i8*")
		}
		id = p.in.Pointer(id)
	}
}

func (p *typeParser) word() string {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == ' ' || c == '\t' || c == '*' || c == ']' || c == '[' {
			break
		}
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *typeParser) base() (types.TypeID, error) {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return types.NoTypeID, p.errorf("missing type")
	}
	if p.src[p.pos] == '[' {
		return p.array()
	}
	w := p.word()
	switch {
	case w == "void":
		return p.in.Void(), nil
	case w == "float":
		return p.in.Float(32), nil
	case w == "double":
		return p.in.Float(64), nil
	case strings.HasPrefix(w, "%"):
		id, ok := p.structs[w[1:]]
		if !ok {
			return types.NoTypeID, p.errorf("unknown struct %s", w)
		}
		return id, nil
	case strings.HasPrefix(w, "i"):
		width, err := strconv.ParseUint(w[1:], 10, 8)
		if err != nil {
			return types.NoTypeID, p.errorf("bad integer type %q", w)
		}
		id := p.in.Int(uint(width))
		if id == types.NoTypeID {
			return types.NoTypeID, p.errorf("integer width %d out of range 1..%d", width, types.MaxIntWidth)
		}
		return id, nil
	default:
		return types.NoTypeID, p.errorf("unknown type %q", w)
	}
}

// array parses "[N x T]".
func (p *typeParser) array() (types.TypeID, error) {
	p.pos++ // '['
	p.skipSpace()
	n, err := strconv.ParseUint(p.word(), 10, 64)
	if err != nil {
		return types.NoTypeID, p.errorf("bad array length")
	}
	p.skipSpace()
	if p.word() != "x" {
		return types.NoTypeID, p.errorf("expected 'x' after array length")
	}
	elem, err := p.parse()
	if err != nil {
		return types.NoTypeID, err
	}
	p.skipSpace()
	if p.pos >= len(p.src) || p.src[p.pos] != ']' {
		return types.NoTypeID, p.errorf("missing ']'")
	}
	p.pos++
	id := p.in.Array(elem, n)
	if id == types.NoTypeID {
		return types.NoTypeID, p.errorf("invalid array element type %s", p.in.String(elem))
	}
	return id, nil
}
