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
package exportdata

import (
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/baronblk/access-converter/src/datafile"
	"github.com/baronblk/access-converter/src/errs"
	"github.com/baronblk/access-converter/src/types"
)

// ExportJob is the export of one table into one file.
type ExportJob struct {
	TableName  string `json:"table_name"`
	Format     string `json:"format"`
	OutputPath string `json:"output_path"`
	// 0 means types.DEFAULT_CHUNK_SIZE.
	ChunkSize int `json:"chunk_size"`
	// Zero value means datafile.DefaultOptions().
	Options datafile.Options `json:"-"`
}

func (job *ExportJob) chunkSize() int {
	if job.ChunkSize == 0 {
		return types.DEFAULT_CHUNK_SIZE
	}
	return job.ChunkSize
}

func (job *ExportJob) writerOptions() datafile.Options {
	if job.Options == (datafile.Options{}) {
		return datafile.DefaultOptions()
	}
	return job.Options
}

func (job *ExportJob) Validate() error {
	if job.TableName == "" {
		return fmt.Errorf("table name is required")
	}
	if !lo.Contains(datafile.SupportedFormats, job.Format) {
		return errs.NewUnsupportedFormatError(job.Format, datafile.SupportedFormats)
	}
	if job.OutputPath == "" {
		return fmt.Errorf("output path is required")
	}
	if job.ChunkSize < 0 {
		return fmt.Errorf("invalid chunk size %d: must be at least 1", job.ChunkSize)
	}
	opts := job.writerOptions()
	return opts.Validate()
}

type ExportResult struct {
	JobID      string `json:"job_id"`
	TableName  string `json:"table_name"`
	Format     string `json:"format"`
	OutputPath string `json:"output_path"`
	// Rows read from the source.
	RowsRead int64 `json:"rows_read"`
	// Rows contained in the output file. Lower than RowsRead only when the
	// format was asked to cap its rows.
	RowsWritten      int64         `json:"rows_written"`
	BatchesProcessed int           `json:"batches_processed"`
	Elapsed          time.Duration `json:"elapsed"`
	FileSize         int64         `json:"file_size"`
}

// TableOutcome is the result of one job of a multi-table run.
type TableOutcome struct {
	Job    *ExportJob
	Result *ExportResult
	Err    error
	// Set for jobs that were not run because an earlier job failed or the
	// run was cancelled.
	Skipped bool
}

func (o *TableOutcome) Succeeded() bool {
	return o.Err == nil && !o.Skipped
}
