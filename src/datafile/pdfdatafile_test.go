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
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baronblk/access-converter/src/types"
)

func newTestPdf(t *testing.T, table types.TableInfo, opts Options) *PdfDataFile {
	t.Helper()
	w, err := NewWriter(PDF, OutputPath(t.TempDir(), table.Name, PDF), table, opts)
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })
	return w.(*PdfDataFile)
}

func TestPdfFontSize(t *testing.T) {
	assert.Equal(t, 10.0, PdfFontSize(0))
	assert.Equal(t, 10.0, PdfFontSize(3))
	assert.Equal(t, 10.0, PdfFontSize(6))
	assert.Equal(t, 7.5, PdfFontSize(8))
	assert.Equal(t, 6.0, PdfFontSize(10))
	assert.Equal(t, 6.0, PdfFontSize(40))
}

func TestPdfDataFilePagination(t *testing.T) {
	df := newTestPdf(t, testTable, DefaultOptions())
	first, other := df.RowsPerPage()
	require.Greater(t, first, 0)
	require.Greater(t, other, first)

	// fills the first page, two more full pages and one row on a fourth
	numRows := first + 2*other + 1
	for _, batch := range testBatches(numRows, 100) {
		require.NoError(t, df.WriteBatch(batch))
	}
	info, err := df.Finalize()
	require.NoError(t, err)
	assert.Equal(t, int64(numRows), info.Rows)
	assert.Equal(t, 4, df.PageCount())

	content, err := os.ReadFile(df.FilePath())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(content, []byte("%PDF-")))
}

func TestPdfDataFileExactlyFullPages(t *testing.T) {
	df := newTestPdf(t, testTable, DefaultOptions())
	first, other := df.RowsPerPage()
	for _, batch := range testBatches(first+other, 50) {
		require.NoError(t, df.WriteBatch(batch))
	}
	_, err := df.Finalize()
	require.NoError(t, err)
	assert.Equal(t, 2, df.PageCount())
}

func TestPdfDataFileLandscapeFitsFewerRows(t *testing.T) {
	_, portrait := newTestPdf(t, testTable, DefaultOptions()).RowsPerPage()
	opts := DefaultOptions()
	opts.Orientation = ORIENTATION_LANDSCAPE
	_, landscape := newTestPdf(t, testTable, opts).RowsPerPage()
	assert.Less(t, landscape, portrait)
}

func TestPdfDataFileEmptyTable(t *testing.T) {
	df := newTestPdf(t, testTable, DefaultOptions())
	info, err := df.Finalize()
	require.NoError(t, err)
	assert.Equal(t, int64(0), info.Rows)
	assert.Equal(t, 1, df.PageCount())
	assert.Greater(t, info.Size, int64(0))
}

func TestPdfDataFileMaxRows(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxRows = 50
	df := newTestPdf(t, testTable, opts)
	for _, batch := range testBatches(500, 64) {
		require.NoError(t, df.WriteBatch(batch))
	}
	info, err := df.Finalize()
	require.NoError(t, err)
	assert.Equal(t, int64(50), info.Rows)
	first, _ := df.RowsPerPage()
	if first >= 50 {
		assert.Equal(t, 1, df.PageCount())
	}
}

func TestPdfDataFileTruncatesWideCells(t *testing.T) {
	table := types.TableInfo{Name: "wide", Columns: make([]types.Column, 12)}
	for i := range table.Columns {
		table.Columns[i].Name = "a_rather_long_column_name"
	}
	df := newTestPdf(t, table, DefaultOptions())
	fitted := df.fit("a_rather_long_column_name")
	assert.True(t, len(fitted) < len("a_rather_long_column_name"))
	assert.Contains(t, fitted, "...")
	assert.Equal(t, "ab", df.fit("ab"))
}
