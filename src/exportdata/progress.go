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
	pbreporter "github.com/baronblk/access-converter/src/reporter/pb"
)

// ProgressFactory creates the progress reporter for the export of one table.
type ProgressFactory func(tableName string) pbreporter.ExportProgressReporter

func disabledProgress(tableName string) pbreporter.ExportProgressReporter {
	return pbreporter.NewExportPB(nil, tableName, true)
}

// tableProgress feeds row counts to a reporter. The row count known up front
// is only an estimate: once it is exceeded the total is stretched ahead of
// the current count so the bar does not look finished while rows still come in.
type tableProgress struct {
	reporter  pbreporter.ExportProgressReporter
	totalRows int64
}

func newTableProgress(reporter pbreporter.ExportProgressReporter, estimatedRows int64) *tableProgress {
	reporter.SetTotalRowCount(estimatedRows, false)
	return &tableProgress{reporter: reporter, totalRows: estimatedRows}
}

func (tp *tableProgress) update(rowsRead int64) {
	if tp.totalRows <= rowsRead {
		tp.totalRows = int64(float64(rowsRead) * 1.05)
		tp.reporter.SetTotalRowCount(tp.totalRows, false)
	}
	tp.reporter.SetExportedRowCount(rowsRead)
}

func (tp *tableProgress) done(rowsRead int64) {
	tp.reporter.SetExportedRowCount(rowsRead)
	tp.reporter.SetTotalRowCount(rowsRead, true)
}

func (tp *tableProgress) abort() {
	tp.reporter.Abort()
}
