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
	"os"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baronblk/access-converter/src/types"
)

func TestJsonDataFileRoundTrip(t *testing.T) {
	const numRows = 10
	filePath, info := exportBatches(t, JSON, testTable, DefaultOptions(), testBatches(numRows, 4))
	assert.Equal(t, int64(numRows), info.Rows)

	content, err := os.ReadFile(filePath)
	require.NoError(t, err)
	var records []map[string]any
	require.NoError(t, json.Unmarshal(content, &records))

	expected := make([]map[string]any, numRows)
	for i := range expected {
		row := testRow(i + 1)
		record := map[string]any{}
		for j, col := range testColumns {
			v := row[j]
			switch v.Kind {
			case types.KindInt:
				record[col.Name] = float64(v.Int)
			case types.KindNull:
				record[col.Name] = nil
			default:
				record[col.Name] = jsonValue(v)
			}
		}
		expected[i] = record
	}
	if diff := cmp.Diff(expected, records); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestJsonDataFileKeepsColumnOrderAndLayout(t *testing.T) {
	table := types.TableInfo{Name: "t", Columns: []types.Column{{Name: "z"}, {Name: "a"}, {Name: "<b>"}}}
	batch := &types.RowBatch{Columns: table.Columns, Rows: []types.Row{
		{types.IntValue(1), types.BytesValue([]byte("hi")), types.Null},
		{types.IntValue(2), types.TextValue("a&b"), types.BoolValue(true)},
	}}

	filePath, _ := exportBatches(t, JSON, table, DefaultOptions(), []*types.RowBatch{batch})
	content, err := os.ReadFile(filePath)
	require.NoError(t, err)
	expected := `[
  {
    "z": 1,
    "a": "aGk=",
    "<b>": null
  },
  {
    "z": 2,
    "a": "a&b",
    "<b>": true
  }
]
`
	assert.Equal(t, expected, string(content))

	opts := DefaultOptions()
	opts.JSONIndent = 0
	filePath, _ = exportBatches(t, JSON, table, opts, []*types.RowBatch{batch})
	content, err = os.ReadFile(filePath)
	require.NoError(t, err)
	assert.Equal(t, `[{"z":1,"a":"aGk=","<b>":null},{"z":2,"a":"a&b","<b>":true}]`+"\n", string(content))
}

func TestJsonDataFileDoesNotEscapeHTMLOrUnicode(t *testing.T) {
	table := types.TableInfo{Name: "t", Columns: []types.Column{{Name: "Straße & <Nr>"}, {Name: "note"}}}
	batch := &types.RowBatch{Columns: table.Columns, Rows: []types.Row{
		{types.TextValue("<Müller & Söhne>"), types.TextValue(`say "hi"` + "\n")},
	}}
	opts := DefaultOptions()
	opts.JSONIndent = 0

	filePath, _ := exportBatches(t, JSON, table, opts, []*types.RowBatch{batch})
	content, err := os.ReadFile(filePath)
	require.NoError(t, err)
	assert.Equal(t, `[{"Straße & <Nr>":"<Müller & Söhne>","note":"say \"hi\"\n"}]`+"\n", string(content))
	assert.NotContains(t, string(content), `\u00`)
}

func TestJsonDataFileEmptyTable(t *testing.T) {
	filePath, info := exportBatches(t, JSON, testTable, DefaultOptions(), nil)
	content, err := os.ReadFile(filePath)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(content))
	assert.Equal(t, int64(0), info.Rows)
}

func TestJsonDataFileUnfinishedIsNotValidJSON(t *testing.T) {
	filePath := OutputPath(t.TempDir(), "Orders", JSON)
	w, err := NewWriter(JSON, filePath, testTable, DefaultOptions())
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.WriteBatch(testBatches(3, 3)[0]))
	require.NoError(t, w.(*JsonDataFile).w.Flush())

	content, err := os.ReadFile(filePath)
	require.NoError(t, err)
	assert.False(t, json.Valid(content))
}
