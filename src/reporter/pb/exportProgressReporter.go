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
package pbreporter

import "github.com/vbauerster/mpb/v8"

// ExportProgressReporter tracks the progress of the export of one table.
type ExportProgressReporter interface {
	// SetTotalRowCount sets the expected number of rows. A negative count
	// means unknown: the current count is used as total.
	SetTotalRowCount(totalRowCount int64, triggerComplete bool)
	SetExportedRowCount(exportedRowCount int64)
	// Abort stops the reporter of a failed export without completing it.
	Abort()
	IsComplete() bool
}

func NewExportPB(progressContainer *mpb.Progress, tableName string, disablePb bool) ExportProgressReporter {
	if disablePb || progressContainer == nil {
		return newDisablePBReporter()
	}
	return newEnablePBReporter(progressContainer, tableName)
}
