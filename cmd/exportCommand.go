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
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/baronblk/access-converter/src/config"
	"github.com/baronblk/access-converter/src/datafile"
	"github.com/baronblk/access-converter/src/errorpolicy"
	"github.com/baronblk/access-converter/src/errs"
	"github.com/baronblk/access-converter/src/exportdata"
	"github.com/baronblk/access-converter/src/reporter/summary"
	"github.com/baronblk/access-converter/src/types"
	"github.com/baronblk/access-converter/src/utils"
)

var (
	exportFormat   string
	chunkSize      int
	errorPolicyArg string
	disablePb      bool
)

var writerOpts = datafile.DefaultOptions()

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export tables of the source database file into one output file per table",
	Long: `Export tables of the source database file into one output file per table.
The files are named <output-dir>/<table>.<format>. After the run a summary is printed and written to
summary.txt and summary.json in the output directory.`,

	Run: func(cmd *cobra.Command, args []string) {
		exportData(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	registerOutputDirFlag(exportCmd)
	registerSourceDBFlags(exportCmd)
	registerTableListFlags(exportCmd)
	registerExportFlags(exportCmd)
}

func registerExportFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&exportFormat, "format", "f", datafile.CSV,
		fmt.Sprintf("output format, one of: %s", strings.Join(datafile.SupportedFormats, ", ")))
	cmd.Flags().IntVar(&chunkSize, "chunk-size", types.DEFAULT_CHUNK_SIZE,
		"number of rows read from the source and written to the output file at a time")
	cmd.Flags().StringVar(&errorPolicyArg, "error-policy", errorpolicy.ContinueErrorPolicyName,
		fmt.Sprintf("what to do when the export of a table fails, one of: %s", strings.Join(errorpolicy.ErrorPolicyNames, ", ")))
	cmd.Flags().BoolVar(&disablePb, "disable-pb", false,
		"disable the progress bars (always off when stdout is not a terminal)")

	cmd.Flags().StringVar(&writerOpts.Delimiter, "csv-delimiter", writerOpts.Delimiter,
		"field delimiter of csv files, a single character")
	cmd.Flags().BoolVar(&writerOpts.BOM, "csv-bom", writerOpts.BOM,
		"start csv files with a UTF-8 byte order mark")
	cmd.Flags().IntVar(&writerOpts.SheetRowLimit, "sheet-row-limit", writerOpts.SheetRowLimit,
		"data rows per xlsx sheet; larger tables continue on further sheets")
	cmd.Flags().IntVar(&writerOpts.JSONIndent, "json-indent", writerOpts.JSONIndent,
		"spaces per indent level of json files, 0 writes one record per line")
	cmd.Flags().StringVar(&writerOpts.PageSize, "pdf-page-size", writerOpts.PageSize,
		fmt.Sprintf("page size of pdf files, one of: %s", strings.Join(datafile.SupportedPageSizes, ", ")))
	cmd.Flags().StringVar(&writerOpts.Orientation, "pdf-orientation", writerOpts.Orientation,
		fmt.Sprintf("page orientation of pdf files, %s or %s", datafile.ORIENTATION_PORTRAIT, datafile.ORIENTATION_LANDSCAPE))
	cmd.Flags().Int64Var(&writerOpts.MaxRows, "pdf-max-rows", writerOpts.MaxRows,
		"render at most this many rows into pdf files, 0 renders all rows")
}

func validateExportFlags() errorpolicy.ErrorPolicy {
	exportFormat = strings.ToLower(strings.TrimSpace(exportFormat))
	if !lo.Contains(datafile.SupportedFormats, exportFormat) {
		utils.ErrExit("ERROR: %v", errs.NewUnsupportedFormatError(exportFormat, datafile.SupportedFormats))
	}
	if chunkSize < 1 {
		utils.ErrExit("ERROR: invalid chunk-size %d: must be at least 1", chunkSize)
	}
	err := writerOpts.Validate()
	if err != nil {
		utils.ErrExit("ERROR: %v", err)
	}
	policy, err := errorpolicy.NewErrorPolicy(errorPolicyArg)
	if err != nil {
		utils.ErrExit("ERROR: %v", err)
	}
	return policy
}

func exportData(ctx context.Context) {
	policy := validateExportFlags()
	sourceDB := connectSource()
	defer sourceDB.Disconnect()

	tableNames, err := selectTables(ctx, sourceDB)
	if err != nil {
		sourceDB.Disconnect()
		utils.ErrExit("Failed to select the tables to export: %v", err)
	}
	if len(tableNames) == 0 {
		utils.PrintAndLog("No tables to export.")
		return
	}
	if source.VerboseMode {
		fmt.Printf("Tables to export: %s\n", strings.Join(tableNames, ", "))
	}

	jobs, err := buildExportJobs(tableNames)
	if err != nil {
		sourceDB.Disconnect()
		utils.ErrExit("ERROR: %v", err)
	}
	if !confirmOverwrite(jobs) {
		sourceDB.Disconnect()
		utils.ErrExit("Aborting, existing output files are kept.")
	}
	if config.IsLogLevelDebugOrBelow() {
		log.Debugf("export jobs: %s", spew.Sdump(jobs))
	}
	err = summary.RemoveFiles(outputDir)
	if err != nil {
		sourceDB.Disconnect()
		utils.ErrExit("ERROR: %v", err)
	}

	color.Cyan("Exporting %d table(s) from %s to %s files in %s\n", len(jobs), source.DisplayName(), exportFormat, outputDir)
	progress := NewProgressTracker(disablePb)
	exporter := exportdata.NewExporter(sourceDB, progress.NewReporter)
	startedAt := time.Now()
	outcomes, runErr := exporter.ExportTables(ctx, jobs, policy)
	progress.Done()
	sourceDB.Disconnect()

	s := summary.New(source.DisplayName(), outputDir, startedAt, time.Now(), outcomes)
	s.Render(os.Stdout)
	err = s.WriteFiles()
	if err != nil {
		utils.PrintAndLog("Warning: failed to write the export summary: %v", err)
	}

	if errors.Is(runErr, context.Canceled) {
		utils.ErrExit("Export cancelled. %d of %d table(s) were exported.", s.Succeeded, s.TotalTables)
	}
	if s.HasFailures() {
		utils.ErrExit("Export of %d table(s) failed: %s", s.Failed, strings.Join(s.FailedTables(), ", "))
	}
	utils.PrintAndLog("Exported %d table(s) with %d row(s) in total.", s.Succeeded, s.TotalRows)
}

// buildExportJobs creates one job per table. Two tables whose names only
// differ in characters that are invalid in file names, or only in case,
// would overwrite each other's file and are rejected.
func buildExportJobs(tableNames []string) ([]*exportdata.ExportJob, error) {
	jobs := lo.Map(tableNames, func(tableName string, _ int) *exportdata.ExportJob {
		return &exportdata.ExportJob{
			TableName:  tableName,
			Format:     exportFormat,
			OutputPath: datafile.OutputPath(outputDir, tableName, exportFormat),
			ChunkSize:  chunkSize,
			Options:    writerOpts,
		}
	})
	byPath := lo.GroupBy(jobs, func(job *exportdata.ExportJob) string { return strings.ToLower(job.OutputPath) })
	var clashes []string
	for _, path := range utils.GetSortedKeys(byPath) {
		if group := byPath[path]; len(group) > 1 {
			names := lo.Map(group, func(job *exportdata.ExportJob, _ int) string { return job.TableName })
			clashes = append(clashes, fmt.Sprintf("%v -> %s", names, group[0].OutputPath))
		}
	}
	if len(clashes) > 0 {
		return nil, fmt.Errorf("tables map to the same output file, exclude all but one of them with --exclude-table-list:\n%s",
			strings.Join(clashes, "\n"))
	}
	return jobs, nil
}

func confirmOverwrite(jobs []*exportdata.ExportJob) bool {
	existing := lo.FilterMap(jobs, func(job *exportdata.ExportJob, _ int) (string, bool) {
		return job.OutputPath, utils.FileOrFolderExists(job.OutputPath)
	})
	if len(existing) == 0 {
		return true
	}
	fmt.Printf("The following output files already exist:\n  %s\n", strings.Join(existing, "\n  "))
	return utils.AskPrompt("Do you want to overwrite them")
}
