package program

import (
	"bytes"
	_ "embed"
	"fmt"
)

//go:embed demo.toml
var demoSource []byte

// DemoSource returns the TOML text of the built-in demo program.
func DemoSource() []byte {
	return bytes.Clone(demoSource)
}

// Demo returns the built-in demo program: global_a = 1, the constants
// init_array, point and string, and a main returning global_a.
func Demo() *Program {
	p, err := Decode(bytes.NewReader(demoSource))
	if err != nil {
		panic(fmt.Errorf("program: embedded demo is invalid: %w", err))
	}
	p.Path = "<demo>"
	return p
}
