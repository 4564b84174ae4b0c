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
	"context"
	"errors"
	"io"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/uuid"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"github.com/baronblk/access-converter/src/datafile"
	"github.com/baronblk/access-converter/src/errorpolicy"
	"github.com/baronblk/access-converter/src/errs"
	"github.com/baronblk/access-converter/src/srcdb"
	"github.com/baronblk/access-converter/src/types"
	"github.com/baronblk/access-converter/src/utils/sqlname"
)

// Exporter runs export jobs against one connected source, one table at a time.
type Exporter struct {
	source      srcdb.SourceDB
	newProgress ProgressFactory
}

// NewExporter returns an Exporter for source. A nil newProgress disables
// progress reporting.
func NewExporter(source srcdb.SourceDB, newProgress ProgressFactory) *Exporter {
	if newProgress == nil {
		newProgress = disabledProgress
	}
	return &Exporter{source: source, newProgress: newProgress}
}

// ExportTable exports one table without progress reporting.
func ExportTable(ctx context.Context, source srcdb.SourceDB, job *ExportJob) (*ExportResult, error) {
	return NewExporter(source, nil).ExportTable(ctx, job)
}

// exportRun tracks the steps of one ExportTable call for error reporting.
type exportRun struct {
	job       *ExportJob
	logger    *log.Entry
	steps     []string
	step      string
	tableName string
}

func (r *exportRun) begin(step string) {
	r.step = step
}

func (r *exportRun) complete() {
	if !lo.Contains(r.steps, r.step) {
		r.steps = append(r.steps, r.step)
	}
}

func (r *exportRun) fail(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		r.step = errs.EXPORT_STEP_CANCELLED
	}
	exportErr := errs.NewExportError(r.tableName, r.job.Format, r.steps, r.step, err)
	r.logger.WithField("step", r.step).Errorf("export failed: %v", err)
	return exportErr
}

// ExportTable reads the table of job batch by batch and streams the batches
// into a writer for the job's format. Any failure aborts the export: reader
// and writer are released and the partially written file is removed before
// the error is returned. The output file is only complete if ExportTable
// returns without error.
func (e *Exporter) ExportTable(ctx context.Context, job *ExportJob) (*ExportResult, error) {
	start := time.Now()
	jobID := uuid.New().String()
	run := &exportRun{
		job:       job,
		tableName: job.TableName,
		logger: log.WithFields(log.Fields{
			"job_id": jobID,
			"table":  job.TableName,
			"format": job.Format,
		}),
	}
	run.logger.Infof("starting export to %q", job.OutputPath)
	log.Debugf("export job %s: %s", jobID, spew.Sdump(job))

	run.begin(errs.EXPORT_STEP_VALIDATE_JOB)
	err := job.Validate()
	if err != nil {
		return nil, run.fail(err)
	}
	run.complete()

	run.begin(errs.EXPORT_STEP_RESOLVE_TABLE)
	tableName, rowCount, err := e.resolveTable(ctx, job.TableName)
	if err != nil {
		return nil, run.fail(err)
	}
	run.tableName = tableName
	run.complete()

	run.begin(errs.EXPORT_STEP_OPEN_READER)
	reader, err := e.source.OpenTable(ctx, tableName, job.chunkSize())
	if err != nil {
		return nil, run.fail(err)
	}
	defer func() {
		if err := reader.Close(); err != nil {
			run.logger.Warnf("close reader: %v", err)
		}
	}()
	run.complete()

	// The reader is opened first: the writer needs the columns to write the
	// header of an empty table.
	run.begin(errs.EXPORT_STEP_OPEN_WRITER)
	table := types.TableInfo{Name: tableName, Columns: reader.Columns(), RowCount: rowCount}
	writer, err := datafile.NewWriter(job.Format, job.OutputPath, table, job.writerOptions())
	if err != nil {
		return nil, run.fail(err)
	}
	defer func() {
		if err := writer.Close(); err != nil {
			run.logger.Warnf("close writer: %v", err)
		}
	}()
	run.complete()

	progress := newTableProgress(e.newProgress(tableName), rowCount)
	var rowsRead int64
	var batches int
	for {
		run.begin(errs.EXPORT_STEP_READ_BATCH)
		if err := ctx.Err(); err != nil {
			progress.abort()
			return nil, run.fail(err)
		}
		batch, err := reader.NextBatch(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			progress.abort()
			return nil, run.fail(err)
		}
		run.complete()

		run.begin(errs.EXPORT_STEP_WRITE_BATCH)
		err = writer.WriteBatch(batch)
		if err != nil {
			progress.abort()
			return nil, run.fail(err)
		}
		run.complete()

		rowsRead += int64(batch.Len())
		batches++
		progress.update(rowsRead)
		run.logger.WithFields(log.Fields{
			"batch":     batch.Index,
			"rows":      batch.Len(),
			"rows_read": rowsRead,
		}).Debug("batch exported")
	}

	run.begin(errs.EXPORT_STEP_FINALIZE)
	info, err := writer.Finalize()
	if err != nil {
		progress.abort()
		return nil, run.fail(err)
	}
	run.complete()
	progress.done(rowsRead)

	if rowCount >= 0 && rowCount != rowsRead {
		run.logger.Infof("table had %d rows when counted and %d rows when read", rowCount, rowsRead)
	}
	result := &ExportResult{
		JobID:            jobID,
		TableName:        tableName,
		Format:           job.Format,
		OutputPath:       writer.FilePath(),
		RowsRead:         rowsRead,
		RowsWritten:      info.Rows,
		BatchesProcessed: batches,
		Elapsed:          time.Since(start),
		FileSize:         info.Size,
	}
	run.logger.WithFields(log.Fields{
		"rows":    result.RowsRead,
		"batches": result.BatchesProcessed,
		"bytes":   result.FileSize,
		"elapsed": result.Elapsed,
	}).Info("export completed")
	return result, nil
}

// resolveTable finds the catalog name of tableName and its advisory row
// count, -1 if the count is not available.
func (e *Exporter) resolveTable(ctx context.Context, tableName string) (string, int64, error) {
	tableNames, err := e.source.GetTableNames(ctx)
	if err != nil {
		return "", -1, err
	}
	resolved, ok := sqlname.Lookup(tableNames, tableName)
	if !ok {
		return "", -1, errs.NewTableNotFoundError(tableName, tableNames)
	}
	rowCount, err := e.source.GetTableRowCount(ctx, resolved)
	if err != nil {
		log.Warnf("row count of table %q unavailable, progress is indeterminate: %v", resolved, err)
		rowCount = -1
	}
	return resolved, rowCount, nil
}

// ExportTables runs jobs one after the other. With the abort policy the run
// stops at the first failed job and the remaining jobs are reported as
// skipped; with the continue policy every job is attempted. Files of
// completed jobs are kept either way. The returned error is the first job
// failure under the abort policy, or the context error if the run was
// cancelled.
func (e *Exporter) ExportTables(ctx context.Context, jobs []*ExportJob, policy errorpolicy.ErrorPolicy) ([]*TableOutcome, error) {
	outcomes := make([]*TableOutcome, 0, len(jobs))
	var runErr error
	for i, job := range jobs {
		if runErr == nil && ctx.Err() != nil {
			runErr = ctx.Err()
		}
		if runErr != nil {
			outcomes = append(outcomes, &TableOutcome{Job: job, Skipped: true})
			continue
		}
		log.Infof("exporting table %d of %d: %q", i+1, len(jobs), job.TableName)
		result, err := e.ExportTable(ctx, job)
		outcomes = append(outcomes, &TableOutcome{Job: job, Result: result, Err: err})
		if err == nil {
			continue
		}
		switch {
		case ctx.Err() != nil:
			runErr = ctx.Err()
		case policy == errorpolicy.AbortErrorPolicy:
			runErr = err
		default:
			log.Warnf("continuing after failed export of table %q: %v", job.TableName, err)
		}
	}
	return outcomes, runErr
}
