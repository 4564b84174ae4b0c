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
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/baronblk/access-converter/src/srcdb"
	"github.com/baronblk/access-converter/src/utils"
)

var listTablesCmd = &cobra.Command{
	Use:   "list-tables",
	Short: "List the tables of the source database file with their row counts.",

	Run: func(cmd *cobra.Command, args []string) {
		sourceDB := connectSource()
		defer sourceDB.Disconnect()

		tables, err := sourceDB.ListTables(cmd.Context())
		if err != nil {
			sourceDB.Disconnect()
			utils.ErrExit("Failed to list the tables of %s: %v", source.DisplayName(), err)
		}
		selected, err := selectTables(cmd.Context(), sourceDB)
		if err != nil {
			sourceDB.Disconnect()
			utils.ErrExit("ERROR: %v", err)
		}
		tables = lo.Filter(tables, func(t *srcdb.TableDescriptor, _ int) bool { return lo.Contains(selected, t.Name) })
		fmt.Print(renderTableList(source.DisplayName(), tables))
	},
}

func init() {
	rootCmd.AddCommand(listTablesCmd)
	registerSourceDBFlags(listTablesCmd)
	registerTableListFlags(listTablesCmd)
}

func renderTableList(sourceName string, tables []*srcdb.TableDescriptor) string {
	if len(tables) == 0 {
		return fmt.Sprintf("No tables found in %s\n", sourceName)
	}
	headerfmt := color.New(color.FgGreen, color.Underline).SprintFunc()
	uiTable := uitable.New()
	uiTable.AddRow(headerfmt("TABLE"), headerfmt("ROW COUNT"))
	var totalRows int64
	unknown := false
	for _, t := range tables {
		uiTable.AddRow(t.Name, formatRowCount(t.RowCount))
		if t.RowCount < 0 {
			unknown = true
			continue
		}
		totalRows += t.RowCount
	}
	total := humanize.Comma(totalRows)
	if unknown {
		total += " (some counts unknown)"
	}
	return fmt.Sprintf("%s\n\n%s\n\n%d table(s), %s row(s)\n", color.CyanString("Tables in %s", sourceName), uiTable, len(tables), total)
}

func formatRowCount(rowCount int64) string {
	if rowCount < 0 {
		return "unknown"
	}
	return humanize.Comma(rowCount)
}
