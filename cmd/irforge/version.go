package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"irforge/internal/backend/mpack"
	"irforge/internal/buildpipeline"
	"irforge/internal/version"
)

// buildFingerprint is what `irforge version` reports: the tool release and
// the facts that decide whether two builds produce the same bytes.
type buildFingerprint struct {
	Tool       string   `json:"tool"`
	Version    string   `json:"version"`
	Snapshot   uint16   `json:"snapshot_schema"`
	Formats    []string `json:"formats"`
	HostTarget string   `json:"host_target"`
	GitCommit  string   `json:"git_commit,omitempty"`
	BuildDate  string   `json:"build_date,omitempty"`
}

var (
	versionFormat   string
	versionShowHash bool
	versionShowDate bool
	versionShowFull bool
)

func init() {
	versionCmd.Flags().BoolVar(&versionShowHash, "hash", false, "include git commit hash")
	versionCmd.Flags().BoolVar(&versionShowDate, "date", false, "include build timestamp")
	versionCmd.Flags().BoolVar(&versionShowFull, "full", false, "include commit hash and build timestamp")
	versionCmd.Flags().StringVar(&versionFormat, "format", "pretty", "output format (pretty|json)")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the release, snapshot schema and default target",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fp := fingerprint(versionShowHash || versionShowFull, versionShowDate || versionShowFull)
		switch strings.ToLower(versionFormat) {
		case "json":
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(fp)
		case "pretty":
			renderFingerprint(cmd.OutOrStdout(), fp)
			return nil
		default:
			return fmt.Errorf("unsupported format %q (must be pretty or json)", versionFormat)
		}
	},
}

// fingerprint collects the report. Commit and date are included only when
// asked for; missing values read "unknown".
func fingerprint(withHash, withDate bool) buildFingerprint {
	fp := buildFingerprint{
		Tool:       "irforge",
		Version:    orDefault(version.Version, "dev"),
		Snapshot:   mpack.SchemaVersion,
		Formats:    []string{string(buildpipeline.FormatLLVM), string(buildpipeline.FormatMsgpack)},
		HostTarget: hostTarget(),
	}
	if withHash {
		fp.GitCommit = orDefault(version.GitCommit, "unknown")
	}
	if withDate {
		fp.BuildDate = orDefault(version.BuildDate, "unknown")
	}
	return fp
}

func renderFingerprint(out io.Writer, fp buildFingerprint) {
	fmt.Fprintf(out, "irforge %s\n", version.Pretty())
	fmt.Fprintf(out, "  snapshot schema  v%d\n", fp.Snapshot)
	fmt.Fprintf(out, "  output formats   %s\n", strings.Join(fp.Formats, ", "))
	fmt.Fprintf(out, "  host target      %s\n", fp.HostTarget)
	if fp.GitCommit != "" {
		fmt.Fprintf(out, "  commit           %s\n", fp.GitCommit)
	}
	if fp.BuildDate != "" {
		fmt.Fprintf(out, "  built            %s\n", fp.BuildDate)
	}
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}
