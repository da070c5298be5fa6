package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"irforge/internal/buildpipeline"
	"irforge/internal/ir"
	"irforge/internal/program"
)

var buildCmd = &cobra.Command{
	Use:   "build [flags] [file]",
	Short: "Build a program description",
	Long:  "Build a program description. Without a file, the nearest irforge.toml is used.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  buildExecution,
}

func init() {
	addOutputFlags(buildCmd)
	buildCmd.Flags().String("format", "", "output format (llvm|msgpack), default [output].format")
	addUIFlag(buildCmd)
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("out", "o", "", "output file, default [output].path or out.ll")
	cmd.Flags().Bool("stdout", false, "also write the output to stdout")
	cmd.Flags().String("target", "", "target triple, default [module].target or the host")
	cmd.Flags().Bool("dump-ir", false, "dump the in-memory module to stderr, even when the build fails")
}

// buildOptions holds the flags shared by build and demo.
type buildOptions struct {
	out      string
	stdout   bool
	target   string
	dumpIR   bool
	format   string
	ui       uiMode
	quiet    bool
	timings  bool
	maxDiags int
}

func readBuildOptions(cmd *cobra.Command) (buildOptions, error) {
	var opts buildOptions
	var err error
	if opts.out, err = cmd.Flags().GetString("out"); err != nil {
		return opts, err
	}
	if opts.stdout, err = cmd.Flags().GetBool("stdout"); err != nil {
		return opts, err
	}
	if opts.target, err = cmd.Flags().GetString("target"); err != nil {
		return opts, err
	}
	if opts.dumpIR, err = cmd.Flags().GetBool("dump-ir"); err != nil {
		return opts, err
	}
	if f := cmd.Flags().Lookup("format"); f != nil {
		opts.format = f.Value.String()
	}
	opts.ui = uiModeOf(cmd)
	root := cmd.Root().PersistentFlags()
	if opts.quiet, err = root.GetBool("quiet"); err != nil {
		return opts, err
	}
	if opts.timings, err = root.GetBool("timings"); err != nil {
		return opts, err
	}
	if opts.maxDiags, err = root.GetInt("max-diagnostics"); err != nil {
		return opts, err
	}
	return opts, nil
}

func buildExecution(cmd *cobra.Command, args []string) error {
	opts, err := readBuildOptions(cmd)
	if err != nil {
		return err
	}
	path, err := resolveProgramPath(args)
	if err != nil {
		return err
	}
	prog, err := program.Load(path)
	if err != nil {
		return reportFailure(cmd, nil, err)
	}
	return runBuild(cmd, "irforge build", prog, opts)
}

func runBuild(cmd *cobra.Command, title string, prog *program.Program, opts buildOptions) error {
	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()
	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProfiling()

	format := buildpipeline.Format("")
	if opts.format != "" {
		if format, err = buildpipeline.ParseFormat(opts.format); err != nil {
			return err
		}
	} else if format, err = buildpipeline.ParseFormat(prog.Output.Format); err != nil {
		return reportFailure(cmd, nil, err)
	}

	req := buildpipeline.Request{
		Program:        prog,
		Target:         opts.target,
		Format:         format,
		OutputPath:     opts.out,
		MaxDiagnostics: opts.maxDiags,
	}
	if req.Target == "" && strings.TrimSpace(prog.Module.Target) == "" {
		req.Target = hostTarget()
	}
	if req.OutputPath == "" {
		req.OutputPath = buildpipeline.DefaultOutputPath(prog, format)
	}
	echo := opts.stdout || prog.Output.Stdout
	if echo {
		if format == buildpipeline.FormatMsgpack && isTerminal(os.Stdout) {
			return fmt.Errorf("refusing to write msgpack to a terminal")
		}
		req.Stdout = cmd.OutOrStdout()
	}

	var res buildpipeline.Result
	if uiOut := progressTarget(opts.ui, echo, opts.quiet, len(prog.Functions)); uiOut != nil {
		res, err = runBuildWithUI(cmd.Context(), uiOut, title, &req)
	} else {
		res, err = buildpipeline.Build(cmd.Context(), &req)
	}

	status := cmd.ErrOrStderr()
	if opts.dumpIR && res.Module != nil {
		if dumpErr := ir.DumpModule(status, res.Module, ir.DumpOptions{Locals: true}); dumpErr != nil {
			return dumpErr
		}
	}
	if opts.timings {
		printTimings(status, res.Timer)
	}
	if err != nil {
		dumpRing(cmd)
		return reportFailure(cmd, res.Diagnostics, err)
	}
	if !opts.quiet {
		printBuilt(status, res)
	}
	return nil
}

func printBuilt(out io.Writer, res buildpipeline.Result) {
	target := res.OutputPath
	if cwd, err := os.Getwd(); err == nil {
		target = formatPathForOutput(cwd, target)
	}
	if target == "" {
		target = "<stdout>"
	}
	fmt.Fprintf(out, "built %s (%s, %d bytes, %016x)\n", target, res.Format, len(res.Output), res.Fingerprint)
}

func formatPathForOutput(root, path string) string {
	if root == "" || path == "" {
		return path
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	if strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}
