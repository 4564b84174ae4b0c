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
	"math"
	"strings"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/baronblk/access-converter/src/types"
)

const (
	MAX_SHEET_NAME_LENGTH = 31
	XLSX_DATE_FORMAT      = "yyyy-mm-dd hh:mm:ss"
)

// XlsxDataFile streams rows into a workbook, one sheet after the other. A
// sheet that reaches the row limit is continued on a new sheet that repeats
// the header. The workbook is only serialized to the file on Finalize.
type XlsxDataFile struct {
	*outputFile
	workbook      *excelize.File
	columns       []types.Column
	sheetRowLimit int
	baseSheetName string

	stream      *excelize.StreamWriter
	sheetNames  []string
	sheetRows   int
	headerStyle int
	dateStyle   int
	rows        int64
}

func newXlsxDataFile(filePath string, table types.TableInfo, opts Options) (*XlsxDataFile, error) {
	of, err := createOutputFile(table.Name, filePath)
	if err != nil {
		return nil, err
	}
	df := &XlsxDataFile{
		outputFile:    of,
		workbook:      excelize.NewFile(),
		columns:       table.Columns,
		sheetRowLimit: opts.SheetRowLimit,
		baseSheetName: SheetName(table.Name),
	}
	err = df.init()
	if err != nil {
		df.Close()
		return nil, err
	}
	return df, nil
}

func (df *XlsxDataFile) init() error {
	var err error
	df.headerStyle, err = df.workbook.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return df.writeError("create header style: %w", err)
	}
	dateFormat := XLSX_DATE_FORMAT
	df.dateStyle, err = df.workbook.NewStyle(&excelize.Style{CustomNumFmt: &dateFormat})
	if err != nil {
		return df.writeError("create date style: %w", err)
	}
	// the new workbook comes with a default sheet; it becomes the first sheet of the table
	err = df.workbook.SetSheetName(df.workbook.GetSheetName(0), df.baseSheetName)
	if err != nil {
		return df.writeError("rename sheet: %w", err)
	}
	return df.startSheet(df.baseSheetName)
}

func (df *XlsxDataFile) startSheet(sheetName string) error {
	if df.stream != nil {
		err := df.stream.Flush()
		if err != nil {
			return df.writeError("flush sheet %q: %w", df.currentSheet(), err)
		}
	}
	if len(df.sheetNames) > 0 {
		_, err := df.workbook.NewSheet(sheetName)
		if err != nil {
			return df.writeError("add sheet %q: %w", sheetName, err)
		}
	}
	stream, err := df.workbook.NewStreamWriter(sheetName)
	if err != nil {
		return df.writeError("stream writer for sheet %q: %w", sheetName, err)
	}
	for i, col := range df.columns {
		width := math.Min(60, math.Max(10, float64(utf8.RuneCountInString(col.Name)+2)))
		err = stream.SetColWidth(i+1, i+1, width)
		if err != nil {
			return df.writeError("set column width on sheet %q: %w", sheetName, err)
		}
	}
	header := make([]any, len(df.columns))
	for i, col := range df.columns {
		header[i] = excelize.Cell{StyleID: df.headerStyle, Value: col.Name}
	}
	err = stream.SetRow("A1", header)
	if err != nil {
		return df.writeError("write header on sheet %q: %w", sheetName, err)
	}
	df.stream = stream
	df.sheetNames = append(df.sheetNames, sheetName)
	df.sheetRows = 0
	log.Infof("xlsx writer for table %q: started sheet %q", df.tableName, sheetName)
	return nil
}

func (df *XlsxDataFile) currentSheet() string {
	return df.sheetNames[len(df.sheetNames)-1]
}

func (df *XlsxDataFile) WriteBatch(batch *types.RowBatch) error {
	err := df.checkOpen()
	if err != nil {
		return err
	}
	for _, row := range batch.Rows {
		if len(row) != len(df.columns) {
			return df.writeError("row %d has %d values, expected %d", df.rows+1, len(row), len(df.columns))
		}
		if df.sheetRows == df.sheetRowLimit {
			err = df.startSheet(OverflowSheetName(df.baseSheetName, len(df.sheetNames)+1))
			if err != nil {
				return err
			}
		}
		cells := make([]any, len(row))
		for i, v := range row {
			cells[i] = df.cell(v)
		}
		// +2: one based, below the header
		cellName, err := excelize.CoordinatesToCellName(1, df.sheetRows+2)
		if err != nil {
			return df.writeError("row %d: %w", df.rows+1, err)
		}
		err = df.stream.SetRow(cellName, cells)
		if err != nil {
			return df.writeError("write row %d to sheet %q: %w", df.rows+1, df.currentSheet(), err)
		}
		df.sheetRows++
		df.rows++
	}
	return nil
}

func (df *XlsxDataFile) cell(v types.Value) any {
	switch v.Kind {
	case types.KindNull:
		return nil
	case types.KindInt:
		return v.Int
	case types.KindFloat:
		if math.IsNaN(v.Float) || math.IsInf(v.Float, 0) {
			// not representable as a number cell
			return v.String()
		}
		return v.Float
	case types.KindBool:
		return v.Bool
	case types.KindTime:
		return excelize.Cell{StyleID: df.dateStyle, Value: v.Time}
	default:
		return v.String()
	}
}

func (df *XlsxDataFile) Finalize() (*FileInfo, error) {
	err := df.checkOpen()
	if err != nil {
		return nil, err
	}
	err = df.stream.Flush()
	if err != nil {
		return nil, df.writeError("flush sheet %q: %w", df.currentSheet(), err)
	}
	df.workbook.SetActiveSheet(0)
	_, err = df.workbook.WriteTo(df.file)
	if err != nil {
		return nil, df.writeError("write workbook: %w", err)
	}
	log.Infof("xlsx writer for table %q: %d rows on sheets %v", df.tableName, df.rows, df.sheetNames)
	return df.commit(df.rows)
}

func (df *XlsxDataFile) Close() error {
	if df.workbook != nil {
		err := df.workbook.Close()
		if err != nil {
			log.Warnf("release workbook of table %q: %v", df.tableName, err)
		}
		df.workbook = nil
	}
	return df.outputFile.Close()
}

// SheetNames returns the names of the sheets written so far.
func (df *XlsxDataFile) SheetNames() []string {
	return df.sheetNames
}

var sheetNameReplacer = strings.NewReplacer(
	":", "_", `\`, "_", "/", "_", "?", "_", "*", "_", "[", "_", "]", "_")

// SheetName turns a table name into a valid worksheet name.
func SheetName(tableName string) string {
	name := sheetNameReplacer.Replace(tableName)
	name = strings.Trim(name, "'")
	name = truncateRunes(name, MAX_SHEET_NAME_LENGTH)
	if strings.TrimSpace(name) == "" {
		return "Sheet1"
	}
	return name
}

// OverflowSheetName is the name of the n-th sheet (n >= 2) of a table whose
// rows do not fit on one sheet, e.g. "Orders (2)".
func OverflowSheetName(baseName string, n int) string {
	suffix := fmt.Sprintf(" (%d)", n)
	return truncateRunes(baseName, MAX_SHEET_NAME_LENGTH-len(suffix)) + suffix
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
