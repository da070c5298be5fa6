package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"irforge/internal/diag"
	"irforge/internal/diagfmt"
)

// reportFailure prints err as diagnostics and returns errReported.
// bag may be nil or may already hold err.
func reportFailure(cmd *cobra.Command, bag *diag.Bag, err error) error {
	if err == nil {
		return nil
	}
	root := cmd.Root().PersistentFlags()
	maxDiag, flagErr := root.GetInt("max-diagnostics")
	if flagErr != nil {
		return flagErr
	}
	format, flagErr := root.GetString("diagnostics-format")
	if flagErr != nil {
		return flagErr
	}
	if bag == nil || bag.Len() == 0 {
		bag = diag.NewBag(maxDiag)
		bag.AddError(err)
	}
	bag.Sort()
	if err := writeDiagnostics(cmd.ErrOrStderr(), bag, format, maxDiag); err != nil {
		return err
	}
	return errReported
}

func writeDiagnostics(w io.Writer, bag *diag.Bag, format string, maxDiag int) error {
	switch format {
	case "json":
		return diagfmt.JSON(w, bag, diagfmt.JSONOpts{Max: maxDiag, IncludeNotes: true})
	case "pretty", "":
		diagfmt.Pretty(w, bag, diagfmt.PrettyOpts{Color: !color.NoColor, ShowNotes: true})
		return nil
	default:
		return fmt.Errorf("unsupported diagnostics format %q (must be pretty or json)", format)
	}
}
