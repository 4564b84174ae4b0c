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
	"math"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baronblk/access-converter/src/types"
)

const expectedOrdersCsv = `id,name,price,active,created,note
1,item-1,1.5,false,2024-03-01T09:30:00Z,note 1
2,item-2,2.5,true,2024-03-01T10:30:00Z,"x, ""y"""
3,item-3,3.5,false,2024-03-01T11:30:00Z,
4,item-4,4.5,true,2024-03-01T12:30:00Z,note 4
`

func TestCsvDataFile(t *testing.T) {
	filePath, info := exportBatches(t, CSV, testTable, DefaultOptions(), testBatches(4, 3))
	content, err := os.ReadFile(filePath)
	require.NoError(t, err)
	assert.Equal(t, expectedOrdersCsv, string(content))
	assert.Equal(t, int64(4), info.Rows)
	assert.Equal(t, int64(len(expectedOrdersCsv)), info.Size)
}

func TestCsvDataFileEmptyTableHasHeader(t *testing.T) {
	filePath, info := exportBatches(t, CSV, testTable, DefaultOptions(), nil)
	content, err := os.ReadFile(filePath)
	require.NoError(t, err)
	assert.Equal(t, "id,name,price,active,created,note\n", string(content))
	assert.Equal(t, int64(0), info.Rows)
}

func TestCsvDataFileDelimiterAndBOM(t *testing.T) {
	opts := DefaultOptions()
	opts.Delimiter = ";"
	opts.BOM = true
	table := types.TableInfo{Name: "t", Columns: []types.Column{{Name: "a"}, {Name: "b;c"}}}
	batch := &types.RowBatch{Columns: table.Columns, Rows: []types.Row{
		{types.FloatValue(1234.5), types.TextValue("x;y")},
		{types.FloatValue(1e21), types.BytesValue([]byte("hi"))},
		{types.FloatValue(math.Inf(-1)), types.TextValue("Grüße\nzeile")},
	}}

	filePath, _ := exportBatches(t, CSV, table, opts, []*types.RowBatch{batch})
	content, err := os.ReadFile(filePath)
	require.NoError(t, err)
	expected := "\xEF\xBB\xBF" + "a;\"b;c\"\n" +
		"1234.5;\"x;y\"\n" +
		"1000000000000000000000;aGk=\n" +
		"-Infinity;\"Grüße\nzeile\"\n"
	assert.Equal(t, expected, string(content))
}
