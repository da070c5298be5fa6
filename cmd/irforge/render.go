package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"irforge/internal/backend/llvm"
	"irforge/internal/backend/mpack"
	"irforge/internal/diag"
)

var renderCmd = &cobra.Command{
	Use:   "render [flags] <snapshot>",
	Short: "Render a msgpack snapshot as LLVM text",
	Args:  cobra.ExactArgs(1),
	RunE:  renderExecution,
}

func init() {
	renderCmd.Flags().StringP("out", "o", "", "output file, default stdout")
}

func renderExecution(cmd *cobra.Command, args []string) error {
	outPath, err := cmd.Flags().GetString("out")
	if err != nil {
		return err
	}
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	snap, err := mpack.Decode(f)
	if err != nil {
		return reportFailure(cmd, nil, fmt.Errorf("%s: %w", args[0], err))
	}
	mod, err := snap.Restore()
	if err != nil {
		return reportFailure(cmd, nil, fmt.Errorf("%s: %w", args[0], err))
	}
	text, err := llvm.EmitModule(mod)
	if err != nil {
		return reportFailure(cmd, nil, err)
	}
	if outPath == "" {
		_, err = fmt.Fprint(cmd.OutOrStdout(), text)
		return err
	}
	if err := os.WriteFile(outPath, []byte(text), 0o640); err != nil {
		return reportFailure(cmd, nil, diag.Errorf(diag.IOWriteFail, outPath, "%v", err))
	}
	return nil
}
