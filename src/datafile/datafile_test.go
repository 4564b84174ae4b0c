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
package datafile

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baronblk/access-converter/src/errs"
	"github.com/baronblk/access-converter/src/types"
)

var testColumns = []types.Column{
	{Name: "id", DatabaseType: "INTEGER"},
	{Name: "name", DatabaseType: "TEXT", Nullable: true},
	{Name: "price", DatabaseType: "REAL", Nullable: true},
	{Name: "active", DatabaseType: "BOOLEAN", Nullable: true},
	{Name: "created", DatabaseType: "DATETIME", Nullable: true},
	{Name: "note", DatabaseType: "TEXT", Nullable: true},
}

var testTable = types.TableInfo{Name: "Orders", Columns: testColumns, RowCount: -1}

var baseTime = time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC)

// testRow returns row number i (one based) of the sample table.
func testRow(i int) types.Row {
	note := types.TextValue(fmt.Sprintf("note %d", i))
	switch {
	case i%3 == 0:
		note = types.Null
	case i == 2:
		note = types.TextValue(`x, "y"`)
	}
	return types.Row{
		types.IntValue(int64(i)),
		types.TextValue(fmt.Sprintf("item-%d", i)),
		types.FloatValue(float64(i) + 0.5),
		types.BoolValue(i%2 == 0),
		types.TimeValue(baseTime.Add(time.Duration(i) * time.Hour)),
		note,
	}
}

// testBatches cuts rows 1..n of the sample table into batches of at most chunkSize rows.
func testBatches(n, chunkSize int) []*types.RowBatch {
	var batches []*types.RowBatch
	for offset := 0; offset < n; offset += chunkSize {
		batch := &types.RowBatch{Columns: testColumns, Index: len(batches), Offset: int64(offset)}
		for i := offset + 1; i <= min(n, offset+chunkSize); i++ {
			batch.Rows = append(batch.Rows, testRow(i))
		}
		batches = append(batches, batch)
	}
	return batches
}

func exportBatches(t *testing.T, format string, table types.TableInfo, opts Options, batches []*types.RowBatch) (string, *FileInfo) {
	t.Helper()
	filePath := OutputPath(t.TempDir(), table.Name, format)
	w, err := NewWriter(format, filePath, table, opts)
	require.NoError(t, err)
	defer func() { assert.NoError(t, w.Close()) }()
	for _, batch := range batches {
		require.NoError(t, w.WriteBatch(batch))
	}
	info, err := w.Finalize()
	require.NoError(t, err)
	return filePath, info
}

func TestNewWriterUnsupportedFormat(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "Orders.xml")
	_, err := NewWriter("xml", filePath, testTable, DefaultOptions())
	var formatErr *errs.UnsupportedFormatError
	require.ErrorAs(t, err, &formatErr)
	assert.Equal(t, "xml", formatErr.Format)
	assert.NoFileExists(t, filePath)
}

func TestNewWriterInvalidOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.Delimiter = ";;"
	filePath := filepath.Join(t.TempDir(), "Orders.csv")
	_, err := NewWriter(CSV, filePath, testTable, opts)
	assert.ErrorContains(t, err, "single character")
	assert.NoFileExists(t, filePath)
}

func TestOptionsValidate(t *testing.T) {
	assert.NoError(t, (&Options{Delimiter: "\t", SheetRowLimit: 1, PageSize: "Letter", Orientation: ORIENTATION_LANDSCAPE}).Validate())

	for name, mutate := range map[string]func(*Options){
		"quote delimiter":   func(o *Options) { o.Delimiter = `"` },
		"empty delimiter":   func(o *Options) { o.Delimiter = "" },
		"zero sheet rows":   func(o *Options) { o.SheetRowLimit = 0 },
		"too many rows":     func(o *Options) { o.SheetRowLimit = MAX_XLSX_SHEET_ROWS },
		"negative indent":   func(o *Options) { o.JSONIndent = -1 },
		"unknown page size": func(o *Options) { o.PageSize = "B7" },
		"orientation":       func(o *Options) { o.Orientation = "sideways" },
		"negative max rows": func(o *Options) { o.MaxRows = -1 },
	} {
		opts := DefaultOptions()
		mutate(&opts)
		assert.Error(t, opts.Validate(), name)
	}
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "Order_Details.csv"), OutputPath("out", "Order/Details", CSV))
	assert.Equal(t, filepath.Join("out", "Q1_ sales.xlsx"), OutputPath("out", " Q1? sales.", XLSX))
}

// Every format must leave nothing behind when the export is abandoned.
func TestCloseBeforeFinalizeRemovesFile(t *testing.T) {
	for _, format := range SupportedFormats {
		t.Run(format, func(t *testing.T) {
			filePath := OutputPath(t.TempDir(), "Orders", format)
			w, err := NewWriter(format, filePath, testTable, DefaultOptions())
			require.NoError(t, err)
			assert.FileExists(t, filePath)
			for _, batch := range testBatches(25, 10)[:2] {
				require.NoError(t, w.WriteBatch(batch))
			}

			require.NoError(t, w.Close())
			assert.NoFileExists(t, filePath)
			assert.NoError(t, w.Close())
			assert.Error(t, w.WriteBatch(testBatches(1, 1)[0]))
			_, err = w.Finalize()
			assert.Error(t, err)
		})
	}
}

func TestCloseAfterFinalizeKeepsFile(t *testing.T) {
	for _, format := range SupportedFormats {
		t.Run(format, func(t *testing.T) {
			filePath, info := exportBatches(t, format, testTable, DefaultOptions(), testBatches(7, 3))
			assert.FileExists(t, filePath)
			assert.Equal(t, int64(7), info.Rows)
			stat, err := os.Stat(filePath)
			require.NoError(t, err)
			assert.Equal(t, stat.Size(), info.Size)
		})
	}
}

func TestWriteBatchRejectsMisalignedRow(t *testing.T) {
	for _, format := range SupportedFormats {
		t.Run(format, func(t *testing.T) {
			filePath := OutputPath(t.TempDir(), "Orders", format)
			w, err := NewWriter(format, filePath, testTable, DefaultOptions())
			require.NoError(t, err)
			defer w.Close()
			batch := &types.RowBatch{Columns: testColumns, Rows: []types.Row{{types.IntValue(1)}}}
			var writeErr *errs.WriteError
			assert.ErrorAs(t, w.WriteBatch(batch), &writeErr)
		})
	}
}

func TestCreateFailsInMissingDirectory(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "missing", "Orders.csv")
	_, err := NewWriter(CSV, filePath, testTable, DefaultOptions())
	var writeErr *errs.WriteError
	require.ErrorAs(t, err, &writeErr)
	assert.Equal(t, "Orders", writeErr.TableName)
	assert.Equal(t, errs.WRITE_ERROR, errs.KindOf(err))
}
