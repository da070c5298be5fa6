package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// uiMode is the value of --ui. It validates while flags are parsed, so a
// bad mode fails before any build work starts.
type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

func (m *uiMode) String() string { return string(*m) }

func (m *uiMode) Type() string { return "mode" }

func (m *uiMode) Set(value string) error {
	switch v := uiMode(strings.TrimSpace(strings.ToLower(value))); v {
	case "":
		*m = uiModeAuto
	case uiModeAuto, uiModeOn, uiModeOff:
		*m = v
	default:
		return fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
	return nil
}

// addUIFlag registers --ui on a command that builds a module.
func addUIFlag(cmd *cobra.Command) {
	mode := uiModeAuto
	cmd.Flags().Var(&mode, "ui", "per-function progress view (auto|on|off)")
}

func uiModeOf(cmd *cobra.Command) uiMode {
	if f := cmd.Flags().Lookup("ui"); f != nil {
		if m, ok := f.Value.(*uiMode); ok {
			return *m
		}
	}
	return uiModeOff
}

// progressTarget returns the terminal the progress view draws on, or nil
// when the build reports in plain text. While stdout carries the module the
// view moves to stderr. Quiet runs and programs without function bodies get
// no view.
func progressTarget(mode uiMode, echo, quiet bool, funcs int) *os.File {
	if mode == uiModeOff || quiet || funcs == 0 {
		return nil
	}
	out := os.Stdout
	if echo {
		out = os.Stderr
	}
	if mode == uiModeAuto && !isTerminal(out) {
		return nil
	}
	return out
}
