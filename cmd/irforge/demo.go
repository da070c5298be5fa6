package main

import (
	"github.com/spf13/cobra"

	"irforge/internal/program"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Build the built-in sample module",
	Long: `Build the built-in sample module: a private [4 x i32] array, a point struct,
a "hello" string and a main that returns @global_a. The module is printed to
stdout and written to out.ll.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := readBuildOptions(cmd)
		if err != nil {
			return err
		}
		printSource, err := cmd.Flags().GetBool("source")
		if err != nil {
			return err
		}
		if printSource {
			_, err = cmd.OutOrStdout().Write(program.DemoSource())
			return err
		}
		return runBuild(cmd, "irforge demo", program.Demo(), opts)
	},
}

func init() {
	addOutputFlags(demoCmd)
	addUIFlag(demoCmd)
	demoCmd.Flags().Bool("source", false, "print the demo program description instead of building it")
}
