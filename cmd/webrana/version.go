package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/cli"
)

var (
	// Version is the semantic version (set by build flags)
	Version = "0.1.0"
	// GitCommit is the git commit hash (set by build flags; falls back to
	// the VCS revision stamped by the Go toolchain)
	GitCommit = ""
	// BuildDate is the build timestamp (set by build flags; falls back to
	// the VCS commit time)
	BuildDate = ""
)

var versionJSON bool

// versionInfo is the version payload for both output formats.
type versionInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print detailed version information including Git commit and build date.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		commit, date := resolveBuildMetadata()
		info := versionInfo{
			Version:   Version,
			GitCommit: commit,
			BuildDate: date,
			GoVersion: runtime.Version(),
			Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		}

		if versionJSON {
			return cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, info)
		}

		fmt.Printf("Webrana %s\n", info.Version)
		fmt.Printf("Git Commit: %s\n", info.GitCommit)
		fmt.Printf("Build Date: %s\n", info.BuildDate)
		fmt.Printf("Go Version: %s\n", info.GoVersion)
		fmt.Printf("OS/Arch: %s\n", info.Platform)
		return nil
	},
}

// resolveBuildMetadata fills commit and date from the module build info
// when the release flags were not set, so a plain `go install` build
// still reports where it came from.
func resolveBuildMetadata() (commit, date string) {
	commit, date = GitCommit, BuildDate

	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision":
				if commit == "" {
					commit = setting.Value
				}
			case "vcs.time":
				if date == "" {
					date = setting.Value
				}
			case "vcs.modified":
				if setting.Value == "true" && commit != "" {
					commit += "-dirty"
				}
			}
		}
	}

	if commit == "" {
		commit = "unknown"
	}
	if date == "" {
		date = "unknown"
	}
	return commit, date
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "print version information as JSON")
}
