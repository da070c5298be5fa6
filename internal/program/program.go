// Package program reads declarative program descriptions and lowers them
// into module construction steps.
//
// A program is a TOML document listing struct types, prototypes, globals and
// function bodies. Function bodies are flat statement lists; each statement
// maps to one builder operation.
package program

import (
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"

	"irforge/internal/diag"
)

// Program is the decoded description.
type Program struct {
	Module     ModuleConfig    `toml:"module"`
	Output     OutputConfig    `toml:"output"`
	Structs    []StructDecl    `toml:"struct"`
	Prototypes []PrototypeDecl `toml:"prototype"`
	Globals    []GlobalDecl    `toml:"global"`
	Functions  []FunctionDecl  `toml:"function"`

	// Path is the file the program was loaded from, if any.
	Path string `toml:"-"`
}

type ModuleConfig struct {
	Name   string `toml:"name"`
	Target string `toml:"target"`
}

type OutputConfig struct {
	Path   string `toml:"path"`
	Format string `toml:"format"`
	Stdout bool   `toml:"stdout"`
}

type StructDecl struct {
	Name   string   `toml:"name"`
	Fields []string `toml:"fields"`
}

type PrototypeDecl struct {
	Name     string   `toml:"name"`
	Result   string   `toml:"result"`
	Params   []string `toml:"params"`
	Variadic bool     `toml:"variadic"`
	// Declare marks an external function that gets no body.
	Declare bool `toml:"declare"`
}

type GlobalDecl struct {
	Name  string `toml:"name"`
	Type  string `toml:"type"`
	Value any    `toml:"value"`
}

type FunctionDecl struct {
	Name  string `toml:"name"`
	Stmts []Stmt `toml:"stmt"`
}

// Stmt is one body statement. Which fields apply depends on Op.
type Stmt struct {
	Op    string `toml:"op"`
	Name  string `toml:"name"`
	Type  string `toml:"type"`
	Value any    `toml:"value"`
	Src   string `toml:"src"`
	Dst   string `toml:"dst"`
	Lhs   string `toml:"lhs"`
	Rhs   string `toml:"rhs"`
	// As binds the statement's result; defaults to Name.
	As string `toml:"as"`
}

// Binding returns the environment name the statement's result is bound to.
func (s Stmt) Binding() string {
	if s.As != "" {
		return s.As
	}
	return s.Name
}

// Load reads and validates the program at path.
func Load(path string) (*Program, error) {
	var p Program
	meta, err := toml.DecodeFile(path, &p)
	if err != nil {
		return nil, diag.Errorf(diag.InvalidProgram, path, "failed to parse TOML: %v", err)
	}
	p.Path = path
	if err := p.checkMeta(path, meta); err != nil {
		return nil, err
	}
	return &p, nil
}

// Decode reads and validates a program from r.
func Decode(r io.Reader) (*Program, error) {
	var p Program
	meta, err := toml.NewDecoder(r).Decode(&p)
	if err != nil {
		return nil, diag.Errorf(diag.InvalidProgram, "", "failed to parse TOML: %v", err)
	}
	if err := p.checkMeta("", meta); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *Program) checkMeta(subject string, meta toml.MetaData) error {
	if !meta.IsDefined("module") {
		return diag.Errorf(diag.InvalidProgram, subject, "missing [module]")
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return diag.Errorf(diag.InvalidProgram, subject, "unknown keys: %s", strings.Join(keys, ", "))
	}
	return p.Validate()
}

var knownOps = map[string]bool{
	"const": true, "string": true, "alloca": true, "store": true, "load": true,
	"literal": true, "add": true, "sub": true, "mul": true, "return": true,
}

// Validate checks that required keys are present and names are unique.
// Types and values are checked later, against a module.
func (p *Program) Validate() error {
	if strings.TrimSpace(p.Module.Name) == "" {
		return diag.Errorf(diag.InvalidProgram, p.Path, "missing [module].name")
	}
	switch p.Output.Format {
	case "", "llvm", "msgpack":
	default:
		return diag.Errorf(diag.InvalidProgram, p.Path, "[output].format must be llvm or msgpack, got %q", p.Output.Format)
	}

	structs := make(map[string]bool, len(p.Structs))
	for i, s := range p.Structs {
		if s.Name == "" {
			return diag.Errorf(diag.InvalidProgram, p.Path, "struct #%d has no name", i+1)
		}
		if structs[s.Name] {
			return diag.Errorf(diag.InvalidProgram, s.Name, "struct declared twice")
		}
		structs[s.Name] = true
	}

	protos := make(map[string]PrototypeDecl, len(p.Prototypes))
	for i, pr := range p.Prototypes {
		if pr.Name == "" || pr.Result == "" {
			return diag.Errorf(diag.InvalidProgram, p.Path, "prototype #%d needs name and result", i+1)
		}
		protos[pr.Name] = pr
	}
	for i, g := range p.Globals {
		if g.Name == "" || g.Type == "" || g.Value == nil {
			return diag.Errorf(diag.InvalidProgram, p.Path, "global #%d needs name, type and value", i+1)
		}
	}

	for _, fn := range p.Functions {
		pr, ok := protos[fn.Name]
		if !ok {
			return diag.Errorf(diag.InvalidProgram, fn.Name, "function has no prototype")
		}
		if pr.Declare {
			return diag.Errorf(diag.InvalidProgram, fn.Name, "prototype is declaration-only but a body is given")
		}
		for i, st := range fn.Stmts {
			if err := validateStmt(fn.Name, i, st, i == len(fn.Stmts)-1); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateStmt(fn string, idx int, st Stmt, last bool) error {
	where := fmt.Sprintf("%s: statement %d (%s)", fn, idx+1, st.Op)
	if !knownOps[st.Op] {
		return diag.Errorf(diag.InvalidProgram, where, "unknown op")
	}
	missing := func(field string) error {
		return diag.Errorf(diag.InvalidProgram, where, "missing %s", field)
	}
	switch st.Op {
	case "const":
		if st.Name == "" {
			return missing("name")
		}
		if st.Type == "" {
			return missing("type")
		}
		if st.Value == nil {
			return missing("value")
		}
	case "string":
		if st.Name == "" {
			return missing("name")
		}
		if _, ok := st.Value.(string); !ok {
			return diag.Errorf(diag.InvalidProgram, where, "value must be a string")
		}
	case "alloca":
		if st.Name == "" {
			return missing("name")
		}
		if st.Type == "" {
			return missing("type")
		}
	case "store":
		if st.Dst == "" {
			return missing("dst")
		}
		if st.Src == "" && st.Value == nil {
			return missing("src or value")
		}
	case "load":
		if st.Src == "" {
			return missing("src")
		}
	case "literal":
		if st.Type == "" {
			return missing("type")
		}
		if st.Value == nil {
			return missing("value")
		}
	case "add", "sub", "mul":
		if st.Lhs == "" || st.Rhs == "" {
			return missing("lhs and rhs")
		}
	case "return":
		if !last {
			return diag.Errorf(diag.InvalidProgram, where, "return must be the last statement")
		}
	}
	return nil
}
