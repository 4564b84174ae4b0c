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
	"bufio"
	"bytes"
	"math"
	"strings"

	"github.com/goccy/go-json"
	log "github.com/sirupsen/logrus"

	"github.com/baronblk/access-converter/src/types"
)

// JsonDataFile writes a top-level array of flat objects. The closing bracket
// is only written by Finalize, so an aborted export never parses as JSON.
type JsonDataFile struct {
	*outputFile
	w       *bufio.Writer
	columns []types.Column
	keys    [][]byte
	indent  string
	buf     bytes.Buffer
	rows    int64

	// Encodes single values into encBuf without HTML escaping.
	enc    *json.Encoder
	encBuf bytes.Buffer
}

func newJsonDataFile(filePath string, table types.TableInfo, opts Options) (*JsonDataFile, error) {
	of, err := createOutputFile(table.Name, filePath)
	if err != nil {
		return nil, err
	}
	df := &JsonDataFile{
		outputFile: of,
		w:          bufio.NewWriterSize(of.file, 1<<16),
		columns:    table.Columns,
		keys:       make([][]byte, len(table.Columns)),
		indent:     strings.Repeat(" ", opts.JSONIndent),
	}
	df.enc = json.NewEncoder(&df.encBuf)
	df.enc.SetEscapeHTML(false)
	for i, col := range table.Columns {
		key, err := df.encode(col.Name)
		if err != nil {
			of.Close()
			return nil, of.writeError("encode column name %q: %w", col.Name, err)
		}
		df.keys[i] = bytes.Clone(key)
	}
	_, err = df.w.WriteString("[")
	if err != nil {
		of.Close()
		return nil, of.writeError("write array start: %w", err)
	}
	log.Infof("json writer for table %q: indent %d", table.Name, opts.JSONIndent)
	return df, nil
}

func (df *JsonDataFile) WriteBatch(batch *types.RowBatch) error {
	err := df.checkOpen()
	if err != nil {
		return err
	}
	for _, row := range batch.Rows {
		if len(row) != len(df.columns) {
			return df.writeError("row %d has %d values, expected %d", df.rows+1, len(row), len(df.columns))
		}
		df.buf.Reset()
		err = df.encodeRecord(row)
		if err != nil {
			return df.writeError("encode row %d: %w", df.rows+1, err)
		}
		_, err = df.w.Write(df.buf.Bytes())
		if err != nil {
			return df.writeError("write row %d: %w", df.rows+1, err)
		}
		df.rows++
	}
	return nil
}

// encodeRecord renders row into df.buf the way json.MarshalIndent would lay
// it out as an element of the top-level array, keeping the column order.
func (df *JsonDataFile) encodeRecord(row types.Row) error {
	pretty := df.indent != ""
	if df.rows > 0 {
		df.buf.WriteByte(',')
	}
	if pretty {
		df.buf.WriteString("\n" + df.indent)
	}
	df.buf.WriteByte('{')
	for i, v := range row {
		if i > 0 {
			df.buf.WriteByte(',')
		}
		if pretty {
			df.buf.WriteString("\n" + df.indent + df.indent)
		}
		df.buf.Write(df.keys[i])
		df.buf.WriteByte(':')
		if pretty {
			df.buf.WriteByte(' ')
		}
		encoded, err := df.encode(jsonValue(v))
		if err != nil {
			return err
		}
		df.buf.Write(encoded)
	}
	if pretty && len(row) > 0 {
		df.buf.WriteString("\n" + df.indent)
	}
	df.buf.WriteByte('}')
	return nil
}

// encode returns the JSON text of v. The result is only valid until the next
// call.
func (df *JsonDataFile) encode(v any) ([]byte, error) {
	df.encBuf.Reset()
	err := df.enc.Encode(v)
	if err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(df.encBuf.Bytes(), []byte("\n")), nil
}

// jsonValue maps a value to what it is encoded as: datetimes as RFC 3339 text,
// bytes as base64 text, non finite floats as text.
func jsonValue(v types.Value) any {
	switch v.Kind {
	case types.KindTime:
		return v.Time.Format(types.TimeFormat)
	case types.KindFloat:
		if math.IsNaN(v.Float) || math.IsInf(v.Float, 0) {
			return v.String()
		}
		return v.Float
	default:
		return v.Interface()
	}
}

func (df *JsonDataFile) Finalize() (*FileInfo, error) {
	err := df.checkOpen()
	if err != nil {
		return nil, err
	}
	end := "]\n"
	if df.indent != "" && df.rows > 0 {
		end = "\n]\n"
	}
	_, err = df.w.WriteString(end)
	if err != nil {
		return nil, df.writeError("write array end: %w", err)
	}
	err = df.w.Flush()
	if err != nil {
		return nil, df.writeError("flush: %w", err)
	}
	return df.commit(df.rows)
}
