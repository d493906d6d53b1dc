package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// buildInfo is what the version command reports.
type buildInfo struct {
	Version   string `json:"version" yaml:"version"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	Platform  string `json:"platform" yaml:"platform"`
}

func currentBuild() buildInfo {
	return buildInfo{
		Version:   version,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Print the version number",
	Annotations: map[string]string{skipBootstrap: "true"},
	Args:        cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		output, err := cmd.Flags().GetString("output")
		if err != nil {
			return err
		}
		format, err := parseOutputFormat(output)
		if err != nil {
			return err
		}

		info := currentBuild()
		if format != formatText {
			return writeStructured(cmd.OutOrStdout(), info, format)
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "foodsync version %s (%s %s)\n", info.Version, info.GoVersion, info.Platform)
		return err
	},
}

func init() {
	versionCmd.Flags().StringP("output", "o", "text", "output format: text, json or yaml")
	rootCmd.AddCommand(versionCmd)
}
