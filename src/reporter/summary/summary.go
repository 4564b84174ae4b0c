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
package summary

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"github.com/baronblk/access-converter/src/errs"
	"github.com/baronblk/access-converter/src/exportdata"
	"github.com/baronblk/access-converter/src/utils"
	"github.com/baronblk/access-converter/src/utils/jsonfile"
)

const (
	SUMMARY_TEXT_FILE_NAME = "summary.txt"
	SUMMARY_JSON_FILE_NAME = "summary.json"

	STATUS_DONE    = "DONE"
	STATUS_FAILED  = "FAILED"
	STATUS_SKIPPED = "SKIPPED"
)

type TableSummary struct {
	TableName  string  `json:"table_name"`
	Format     string  `json:"format"`
	Status     string  `json:"status"`
	OutputPath string  `json:"output_path,omitempty"`
	Rows       int64   `json:"rows"`
	FileSize   int64   `json:"file_size"`
	DurationS  float64 `json:"duration_seconds"`
	ErrorKind  string  `json:"error_kind,omitempty"`
	Error      string  `json:"error,omitempty"`
}

// Summary is the outcome of one run of the export command.
type Summary struct {
	Source     string          `json:"source"`
	OutputDir  string          `json:"output_dir"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Tables     []*TableSummary `json:"tables"`

	TotalTables      int     `json:"total_tables"`
	Succeeded        int     `json:"succeeded"`
	Failed           int     `json:"failed"`
	Skipped          int     `json:"skipped"`
	TotalRows        int64   `json:"total_rows"`
	TotalBytes       int64   `json:"total_bytes"`
	AverageDurationS float64 `json:"average_duration_seconds"`
}

func New(source, outputDir string, startedAt, finishedAt time.Time, outcomes []*exportdata.TableOutcome) *Summary {
	s := &Summary{
		Source:      source,
		OutputDir:   outputDir,
		StartedAt:   startedAt,
		FinishedAt:  finishedAt,
		TotalTables: len(outcomes),
	}
	var totalDuration time.Duration
	for _, outcome := range outcomes {
		ts := &TableSummary{TableName: outcome.Job.TableName, Format: outcome.Job.Format}
		switch {
		case outcome.Skipped:
			ts.Status = STATUS_SKIPPED
			s.Skipped++
		case outcome.Err != nil:
			ts.Status = STATUS_FAILED
			ts.ErrorKind = errs.KindOf(outcome.Err)
			ts.Error = outcome.Err.Error()
			s.Failed++
		default:
			r := outcome.Result
			ts.Status = STATUS_DONE
			ts.TableName = r.TableName
			ts.OutputPath = r.OutputPath
			ts.Rows = r.RowsWritten
			ts.FileSize = r.FileSize
			ts.DurationS = r.Elapsed.Seconds()
			s.Succeeded++
			s.TotalRows += r.RowsWritten
			s.TotalBytes += r.FileSize
			totalDuration += r.Elapsed
		}
		s.Tables = append(s.Tables, ts)
	}
	if s.Succeeded > 0 {
		s.AverageDurationS = (totalDuration / time.Duration(s.Succeeded)).Seconds()
	}
	return s
}

func (s *Summary) HasFailures() bool {
	return s.Failed > 0
}

func (s *Summary) FailedTables() []string {
	failed := lo.Filter(s.Tables, func(ts *TableSummary, _ int) bool { return ts.Status == STATUS_FAILED })
	return lo.Map(failed, func(ts *TableSummary, _ int) string { return ts.TableName })
}

func (s *Summary) table(headerfmt func(a ...interface{}) string, statusfmt func(status string) string) *uitable.Table {
	uiTable := uitable.New()
	uiTable.MaxColWidth = 60
	uiTable.Wrap = true
	uiTable.AddRow(headerfmt("TABLE"), headerfmt("FORMAT"), headerfmt("STATUS"), headerfmt("ROWS"), headerfmt("SIZE"), headerfmt("DURATION"))
	for _, ts := range s.Tables {
		rows, size, duration := "-", "-", "-"
		if ts.Status == STATUS_DONE {
			rows = humanize.Comma(ts.Rows)
			size = humanize.Bytes(uint64(max(ts.FileSize, 0)))
			duration = formatDuration(ts.DurationS)
		}
		uiTable.AddRow(ts.TableName, ts.Format, statusfmt(ts.Status), rows, size, duration)
	}
	return uiTable
}

func (s *Summary) totals() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Tables: %d total, %d succeeded, %d failed", s.TotalTables, s.Succeeded, s.Failed)
	if s.Skipped > 0 {
		fmt.Fprintf(&sb, ", %d skipped", s.Skipped)
	}
	fmt.Fprintf(&sb, "\nRows exported: %s\n", humanize.Comma(s.TotalRows))
	fmt.Fprintf(&sb, "Data written: %s\n", humanize.Bytes(uint64(max(s.TotalBytes, 0))))
	fmt.Fprintf(&sb, "Average duration per table: %s\n", formatDuration(s.AverageDurationS))
	fmt.Fprintf(&sb, "Total duration: %s\n", formatDuration(s.FinishedAt.Sub(s.StartedAt).Seconds()))
	return sb.String()
}

func (s *Summary) errors() string {
	var sb strings.Builder
	for _, ts := range s.Tables {
		if ts.Status == STATUS_FAILED {
			fmt.Fprintf(&sb, "%s: [%s] %s\n", ts.TableName, ts.ErrorKind, ts.Error)
		}
	}
	return sb.String()
}

// Render prints the summary for the console.
func (s *Summary) Render(w io.Writer) {
	headerfmt := color.New(color.FgGreen, color.Underline).SprintFunc()
	statusfmt := func(status string) string {
		switch status {
		case STATUS_DONE:
			return color.GreenString(status)
		case STATUS_FAILED:
			return color.RedString(status)
		default:
			return color.YellowString(status)
		}
	}
	fmt.Fprintf(w, "\n%s\n\n%s", s.table(headerfmt, statusfmt), s.totals())
	if s.HasFailures() {
		fmt.Fprintf(w, "\n%s\n%s", color.RedString("Errors:"), s.errors())
	}
}

// Text is the plain text form written to summary.txt.
func (s *Summary) Text() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Export summary\n")
	fmt.Fprintf(&sb, "Source: %s\n", s.Source)
	fmt.Fprintf(&sb, "Started: %s\n", s.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(&sb, "Finished: %s\n\n", s.FinishedAt.Format(time.RFC3339))
	fmt.Fprintf(&sb, "%s\n\n%s", s.table(fmt.Sprint, func(status string) string { return status }), s.totals())
	if s.HasFailures() {
		fmt.Fprintf(&sb, "\nErrors:\n%s", s.errors())
	}
	return sb.String()
}

// WriteFiles stores the summary as summary.txt and summary.json in the output
// directory.
func (s *Summary) WriteFiles() error {
	textPath := filepath.Join(s.OutputDir, SUMMARY_TEXT_FILE_NAME)
	err := os.WriteFile(textPath, []byte(s.Text()), 0644)
	if err != nil {
		return fmt.Errorf("write %s: %w", textPath, err)
	}
	jsonPath := filepath.Join(s.OutputDir, SUMMARY_JSON_FILE_NAME)
	err = jsonfile.NewJsonFile[Summary](jsonPath).Create(s)
	if err != nil {
		return fmt.Errorf("write %s: %w", jsonPath, err)
	}
	log.Infof("export summary written to %q and %q", textPath, jsonPath)
	return nil
}

// Load reads the summary.json of an earlier run from outputDir.
func Load(outputDir string) (*Summary, error) {
	jsonPath := filepath.Join(outputDir, SUMMARY_JSON_FILE_NAME)
	file := jsonfile.NewJsonFile[Summary](jsonPath)
	if !file.Exists() {
		return nil, fmt.Errorf("no export summary found at %q", jsonPath)
	}
	s, err := file.Read()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", jsonPath, err)
	}
	return s, nil
}

// RemoveFiles deletes the summary files of an earlier run so that a run that
// dies before writing its own summary does not leave a stale one behind.
func RemoveFiles(outputDir string) error {
	textPath := filepath.Join(outputDir, SUMMARY_TEXT_FILE_NAME)
	err := utils.RemoveIfExists(textPath)
	if err != nil {
		return fmt.Errorf("remove %s: %w", textPath, err)
	}
	return jsonfile.NewJsonFile[Summary](filepath.Join(outputDir, SUMMARY_JSON_FILE_NAME)).Delete()
}

func formatDuration(seconds float64) string {
	return (time.Duration(seconds * float64(time.Second))).Round(time.Millisecond).String()
}
