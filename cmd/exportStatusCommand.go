/*
Copyright (c) YugabyteDB, Inc.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/baronblk/access-converter/src/reporter/summary"
	"github.com/baronblk/access-converter/src/utils"
)

const exportStatusMsg = "Export status of the last run in the output directory\n"

var exportStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the summary of the last export into the output directory.",

	Run: func(cmd *cobra.Command, args []string) {
		s, err := summary.Load(outputDir)
		if err != nil {
			utils.ErrExit("error: %s\n", err)
		}
		color.Cyan(exportStatusMsg)
		color.Cyan("Source: %s\nFinished: %s\n", s.Source, s.FinishedAt.Format("2006-01-02 15:04:05"))
		s.Render(os.Stdout)
	},
}

func init() {
	exportCmd.AddCommand(exportStatusCmd)
	registerOutputDirFlag(exportStatusCmd)
}
