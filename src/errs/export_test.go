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

package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportErrorWrapsTypedCause(t *testing.T) {
	driverErr := errors.New("[Microsoft][ODBC Driver] disk I/O error")
	readErr := NewReadError("Orders", 3, fmt.Errorf("fetch next row: %w", driverErr))
	err := NewExportError("Orders", "csv", []string{EXPORT_STEP_VALIDATE_JOB, EXPORT_STEP_RESOLVE_TABLE}, EXPORT_STEP_READ_BATCH, readErr)

	var exportErr *ExportError
	require.True(t, errors.As(err, &exportErr))
	assert.Equal(t, READ_ERROR, exportErr.Kind())
	assert.Equal(t, EXPORT_STEP_READ_BATCH, exportErr.FailedStep())
	assert.Equal(t, "[Microsoft][ODBC Driver] disk I/O error", exportErr.DriverMessage())
	assert.Contains(t, err.Error(), "after steps - (validate_job, resolve_table)")

	var target *ReadError
	require.True(t, errors.As(err, &target))
	assert.Equal(t, 3, target.BatchIndex)
	assert.True(t, errors.Is(err, driverErr))
}

func TestKindOf(t *testing.T) {
	cases := []struct {
		err  error
		kind string
	}{
		{NewConnectionError("db.accdb", errors.New("no driver")), CONNECTION_ERROR},
		{NewTableNotFoundError("Missing", []string{"A", "B"}), TABLE_NOT_FOUND_ERROR},
		{NewWriteError("A", "/tmp/a.csv", errors.New("disk full")), WRITE_ERROR},
		{NewUnsupportedFormatError("xml", []string{"csv", "json"}), UNSUPPORTED_FORMAT_ERROR},
		{fmt.Errorf("wrapped: %w", NewTableNotFoundError("X", nil)), TABLE_NOT_FOUND_ERROR},
		{errors.New("plain"), EXPORT_ERROR},
	}
	for _, c := range cases {
		assert.Equal(t, c.kind, KindOf(c.err), c.err.Error())
	}
}

func TestTableNotFoundErrorMessage(t *testing.T) {
	err := NewTableNotFoundError("Kunden", []string{"Artikel", "Bestellungen"})
	assert.Equal(t, `table "Kunden" not found in source. Valid table names are: [Artikel Bestellungen]`, err.Error())
	assert.Equal(t, `table "Kunden" not found in source`, NewTableNotFoundError("Kunden", nil).Error())
}
