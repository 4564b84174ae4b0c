package cmd

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/baronblk/access-converter/src/utils"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print access-converter version info.",

	Run: func(cmd *cobra.Command, args []string) {
		info := getVersionInfo()
		fmt.Print(info)
	},
}

func getVersionInfo() string {
	versionInfo := fmt.Sprintf("VERSION=%s\n", utils.ACCESS_CONVERTER_VERSION)
	h := utils.GitCommitHash()
	if h != "" {
		return versionInfo + fmt.Sprintf("GIT_COMMIT_HASH=%s\n", h)
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return versionInfo
	}
	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" {
			versionInfo += fmt.Sprintf("GIT_COMMIT_HASH=%s\n", setting.Value)
		}
		if setting.Key == "vcs.time" {
			versionInfo += fmt.Sprintf("LAST_COMMIT_DATE=%s\n", setting.Value)
		}
	}

	return versionInfo
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
