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
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-pdf/fpdf"
	log "github.com/sirupsen/logrus"

	"github.com/baronblk/access-converter/src/types"
)

// lengths in mm, font sizes in pt
const (
	PDF_MARGIN           = 10.0
	PDF_FOOTER_HEIGHT    = 8.0
	PDF_MIN_FONT_SIZE    = 6.0
	PDF_MAX_FONT_SIZE    = 10.0
	PDF_TITLE_FONT_SIZE  = 14.0
	PDF_LINE_SPACING     = 1.6
	PDF_DATE_TIME_FORMAT = "2006-01-02 15:04:05"
	PDF_TOTAL_ROWS_ALIAS = "{total_rows}"
)

// PdfDataFile lays the table out on fixed pages. Every page starts with the
// column header row; the first page additionally carries a title block. The
// number of rows per page follows from the font size alone, so page breaks
// are known before any row is written.
type PdfDataFile struct {
	*outputFile
	pdf        *fpdf.Fpdf
	tr         func(string) string
	columns    []types.Column
	maxRows    int64
	exportedAt time.Time

	fontSize      float64
	rowHeight     float64
	colWidth      float64
	rowsPerPage   int
	firstPageRows int
	rowsOnPage    int
	rowsRendered  int64
	rowsSeen      int64
}

func newPdfDataFile(filePath string, table types.TableInfo, opts Options) (*PdfDataFile, error) {
	of, err := createOutputFile(table.Name, filePath)
	if err != nil {
		return nil, err
	}
	orientation := "P"
	if opts.Orientation == ORIENTATION_LANDSCAPE {
		orientation = "L"
	}
	pdf := fpdf.New(orientation, "mm", opts.PageSize, "")
	df := &PdfDataFile{
		outputFile: of,
		pdf:        pdf,
		tr:         pdf.UnicodeTranslatorFromDescriptor(""),
		columns:    table.Columns,
		maxRows:    opts.MaxRows,
		exportedAt: time.Now(),
		fontSize:   PdfFontSize(len(table.Columns)),
	}
	df.layout()
	df.pdf.SetTitle(table.Name, true)
	df.pdf.SetCreator("access-converter", false)
	df.pdf.AliasNbPages("")
	df.pdf.SetFooterFunc(df.footer)
	df.newPage()
	if df.pdf.Err() {
		of.Close()
		return nil, of.writeError("start document: %w", df.pdf.Error())
	}
	log.Infof("pdf writer for table %q: %s %s, font %.1fpt, %d rows per page (%d on first page)",
		table.Name, opts.PageSize, opts.Orientation, df.fontSize, df.rowsPerPage, df.firstPageRows)
	return df, nil
}

// PdfFontSize scales the table font down as the column count grows.
func PdfFontSize(numColumns int) float64 {
	if numColumns < 1 {
		return PDF_MAX_FONT_SIZE
	}
	return math.Max(PDF_MIN_FONT_SIZE, math.Min(PDF_MAX_FONT_SIZE, 60/float64(numColumns)))
}

func (df *PdfDataFile) layout() {
	df.pdf.SetMargins(PDF_MARGIN, PDF_MARGIN, PDF_MARGIN)
	df.pdf.SetAutoPageBreak(false, 0)
	pageWidth, pageHeight := df.pdf.GetPageSize()

	df.rowHeight = df.pdf.PointConvert(df.fontSize) * PDF_LINE_SPACING
	usableWidth := pageWidth - 2*PDF_MARGIN
	df.colWidth = usableWidth
	if len(df.columns) > 0 {
		df.colWidth = usableWidth / float64(len(df.columns))
	}
	// the header row is part of every page
	usableHeight := pageHeight - 2*PDF_MARGIN - PDF_FOOTER_HEIGHT - df.rowHeight
	df.rowsPerPage = max(1, int(math.Floor(usableHeight/df.rowHeight)))
	df.firstPageRows = max(1, int(math.Floor((usableHeight-df.titleBlockHeight())/df.rowHeight)))
}

func (df *PdfDataFile) titleBlockHeight() float64 {
	return df.pdf.PointConvert(PDF_TITLE_FONT_SIZE)*PDF_LINE_SPACING + 2*df.pdf.PointConvert(PDF_MAX_FONT_SIZE)*PDF_LINE_SPACING
}

func (df *PdfDataFile) pageCapacity() int {
	if df.pdf.PageNo() == 1 {
		return df.firstPageRows
	}
	return df.rowsPerPage
}

func (df *PdfDataFile) newPage() {
	df.pdf.AddPage()
	if df.pdf.PageNo() == 1 {
		df.titleBlock()
	}
	df.headerRow()
	df.rowsOnPage = 0
}

func (df *PdfDataFile) titleBlock() {
	lineHeight := df.pdf.PointConvert(PDF_MAX_FONT_SIZE) * PDF_LINE_SPACING
	df.pdf.SetFont("Helvetica", "B", PDF_TITLE_FONT_SIZE)
	df.pdf.CellFormat(0, df.pdf.PointConvert(PDF_TITLE_FONT_SIZE)*PDF_LINE_SPACING, df.tr(df.tableName), "", 1, "L", false, 0, "")
	df.pdf.SetFont("Helvetica", "", PDF_MAX_FONT_SIZE)
	df.pdf.CellFormat(0, lineHeight, "Exported: "+df.exportedAt.Format(PDF_DATE_TIME_FORMAT), "", 1, "L", false, 0, "")
	df.pdf.CellFormat(0, lineHeight, "Total rows: "+PDF_TOTAL_ROWS_ALIAS, "", 1, "L", false, 0, "")
}

func (df *PdfDataFile) headerRow() {
	df.pdf.SetFont("Helvetica", "B", df.fontSize)
	df.pdf.SetFillColor(220, 220, 220)
	for _, col := range df.columns {
		df.pdf.CellFormat(df.colWidth, df.rowHeight, df.fit(col.Name), "1", 0, "L", true, 0, "")
	}
	df.pdf.Ln(df.rowHeight)
	df.pdf.SetFont("Helvetica", "", df.fontSize)
}

func (df *PdfDataFile) footer() {
	df.pdf.SetY(-(PDF_MARGIN + PDF_FOOTER_HEIGHT))
	df.pdf.SetFont("Helvetica", "", PDF_MIN_FONT_SIZE+2)
	df.pdf.CellFormat(0, PDF_FOOTER_HEIGHT, fmt.Sprintf("Page %d of {nb}", df.pdf.PageNo()), "", 0, "C", false, 0, "")
	df.pdf.SetFont("Helvetica", "", df.fontSize)
}

// fit converts s to the document encoding and shortens it to the column width.
func (df *PdfDataFile) fit(s string) string {
	s = df.tr(s)
	available := df.colWidth - 2*df.pdf.GetCellMargin()
	if df.pdf.GetStringWidth(s) <= available {
		return s
	}
	const ellipsis = "..."
	available -= df.pdf.GetStringWidth(ellipsis)
	// s is single byte encoded at this point
	n := int(float64(len(s)) * available / df.pdf.GetStringWidth(s))
	for n > 0 && df.pdf.GetStringWidth(s[:n]) > available {
		n--
	}
	return s[:max(n, 0)] + ellipsis
}

func (df *PdfDataFile) cellText(v types.Value) string {
	switch v.Kind {
	case types.KindTime:
		return v.Time.Format(PDF_DATE_TIME_FORMAT)
	default:
		return v.String()
	}
}

func (df *PdfDataFile) WriteBatch(batch *types.RowBatch) error {
	err := df.checkOpen()
	if err != nil {
		return err
	}
	for _, row := range batch.Rows {
		if len(row) != len(df.columns) {
			return df.writeError("row %d has %d values, expected %d", df.rowsSeen+1, len(row), len(df.columns))
		}
		df.rowsSeen++
		if df.maxRows > 0 && df.rowsRendered >= df.maxRows {
			continue
		}
		if df.rowsOnPage == df.pageCapacity() {
			df.newPage()
		}
		for _, v := range row {
			align := "L"
			if v.IsNumeric() {
				align = "R"
			}
			df.pdf.CellFormat(df.colWidth, df.rowHeight, df.fit(df.cellText(v)), "1", 0, align, false, 0, "")
		}
		df.pdf.Ln(df.rowHeight)
		df.rowsOnPage++
		df.rowsRendered++
	}
	if df.pdf.Err() {
		return df.writeError("render batch %d: %w", batch.Index, df.pdf.Error())
	}
	return nil
}

func (df *PdfDataFile) Finalize() (*FileInfo, error) {
	err := df.checkOpen()
	if err != nil {
		return nil, err
	}
	lineHeight := df.pdf.PointConvert(PDF_MAX_FONT_SIZE) * PDF_LINE_SPACING
	note := ""
	switch {
	case df.rowsSeen == 0:
		note = "The table has no rows."
	case df.rowsRendered < df.rowsSeen:
		note = fmt.Sprintf("Showing %s of %s rows.", humanize.Comma(df.rowsRendered), humanize.Comma(df.rowsSeen))
	}
	if note != "" {
		_, pageHeight := df.pdf.GetPageSize()
		if df.pdf.GetY()+lineHeight > pageHeight-PDF_MARGIN-PDF_FOOTER_HEIGHT {
			df.newPage()
		}
		df.pdf.SetFont("Helvetica", "I", PDF_MAX_FONT_SIZE)
		df.pdf.CellFormat(0, lineHeight, note, "", 1, "L", false, 0, "")
	}
	df.pdf.RegisterAlias(PDF_TOTAL_ROWS_ALIAS, humanize.Comma(df.rowsSeen))

	err = df.pdf.Output(df.file)
	if err != nil {
		return nil, df.writeError("write document: %w", err)
	}
	log.Infof("pdf writer for table %q: %d of %d rows on %d pages", df.tableName, df.rowsRendered, df.rowsSeen, df.pdf.PageNo())
	return df.commit(df.rowsRendered)
}

// PageCount is the number of pages laid out so far.
func (df *PdfDataFile) PageCount() int {
	return df.pdf.PageNo()
}

// RowsPerPage returns the capacity of the first and of every following page.
func (df *PdfDataFile) RowsPerPage() (first, other int) {
	return df.firstPageRows, df.rowsPerPage
}
