package datafile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"github.com/baronblk/access-converter/src/errs"
	"github.com/baronblk/access-converter/src/types"
	"github.com/baronblk/access-converter/src/utils"
)

const (
	CSV  = "csv"
	XLSX = "xlsx"
	JSON = "json"
	PDF  = "pdf"
)

var SupportedFormats = []string{CSV, XLSX, JSON, PDF}

// FileInfo describes a finalized artifact.
type FileInfo struct {
	// Rows contained in the artifact.
	Rows int64
	Size int64
}

// Writer turns a stream of batches of one table into a single file.
//
// Close must always be called. If it is called before Finalize returned
// successfully, the partial file is removed.
type Writer interface {
	WriteBatch(batch *types.RowBatch) error
	Finalize() (*FileInfo, error)
	Close() error
	FilePath() string
}

type Options struct {
	// CSV
	Delimiter string
	BOM       bool
	// XLSX: data rows per sheet, the header row is not counted.
	SheetRowLimit int
	// JSON: spaces per indent level, 0 writes compact records.
	JSONIndent int
	// PDF
	PageSize    string
	Orientation string
	// PDF: render at most this many rows, 0 means all of them.
	MaxRows int64
}

const (
	MAX_XLSX_SHEET_ROWS   = 1048576
	ORIENTATION_PORTRAIT  = "portrait"
	ORIENTATION_LANDSCAPE = "landscape"
)

var SupportedPageSizes = []string{"A3", "A4", "A5", "Letter", "Legal"}

func DefaultOptions() Options {
	return Options{
		Delimiter:     ",",
		SheetRowLimit: MAX_XLSX_SHEET_ROWS - 1,
		JSONIndent:    2,
		PageSize:      "A4",
		Orientation:   ORIENTATION_PORTRAIT,
	}
}

func (o *Options) Validate() error {
	if utf8.RuneCountInString(o.Delimiter) != 1 {
		return fmt.Errorf("csv delimiter must be a single character, got %q", o.Delimiter)
	}
	r, _ := utf8.DecodeRuneInString(o.Delimiter)
	if r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
		return fmt.Errorf("invalid csv delimiter %q", o.Delimiter)
	}
	if o.SheetRowLimit < 1 || o.SheetRowLimit > MAX_XLSX_SHEET_ROWS-1 {
		return fmt.Errorf("sheet row limit must be between 1 and %d, got %d", MAX_XLSX_SHEET_ROWS-1, o.SheetRowLimit)
	}
	if o.JSONIndent < 0 || o.JSONIndent > 8 {
		return fmt.Errorf("json indent must be between 0 and 8, got %d", o.JSONIndent)
	}
	if !lo.Contains(SupportedPageSizes, o.PageSize) {
		return fmt.Errorf("unsupported pdf page size %q. Supported sizes are: %s", o.PageSize, strings.Join(SupportedPageSizes, ", "))
	}
	if o.Orientation != ORIENTATION_PORTRAIT && o.Orientation != ORIENTATION_LANDSCAPE {
		return fmt.Errorf("pdf orientation must be %q or %q, got %q", ORIENTATION_PORTRAIT, ORIENTATION_LANDSCAPE, o.Orientation)
	}
	if o.MaxRows < 0 {
		return fmt.Errorf("pdf max rows must not be negative, got %d", o.MaxRows)
	}
	return nil
}

// OutputPath is where the export of tableName in format lands inside dir.
func OutputPath(dir, tableName, format string) string {
	return filepath.Join(dir, fmt.Sprintf("%s.%s", utils.SanitizeFileName(tableName), format))
}

func NewWriter(format string, filePath string, table types.TableInfo, opts Options) (Writer, error) {
	if !lo.Contains(SupportedFormats, format) {
		return nil, errs.NewUnsupportedFormatError(format, SupportedFormats)
	}
	err := opts.Validate()
	if err != nil {
		return nil, fmt.Errorf("writer options: %w", err)
	}
	switch format {
	case CSV:
		return newCsvDataFile(filePath, table, opts)
	case XLSX:
		return newXlsxDataFile(filePath, table, opts)
	case JSON:
		return newJsonDataFile(filePath, table, opts)
	case PDF:
		return newPdfDataFile(filePath, table, opts)
	default:
		panic(fmt.Sprintf("unhandled format %q", format))
	}
}

// outputFile is the part every writer shares: it owns the file handle and
// removes the file unless the writer was finalized.
type outputFile struct {
	tableName string
	filePath  string
	file      *os.File
	finalized bool
	closed    bool
}

func createOutputFile(tableName, filePath string) (*outputFile, error) {
	file, err := os.Create(filePath)
	if err != nil {
		return nil, errs.NewWriteError(tableName, filePath, fmt.Errorf("create file: %w", err))
	}
	log.Infof("created output file %q for table %q", filePath, tableName)
	return &outputFile{tableName: tableName, filePath: filePath, file: file}, nil
}

func (of *outputFile) FilePath() string {
	return of.filePath
}

func (of *outputFile) writeError(format string, args ...any) error {
	return errs.NewWriteError(of.tableName, of.filePath, fmt.Errorf(format, args...))
}

// commit closes the file after a successful finalize and reports its size.
func (of *outputFile) commit(rows int64) (*FileInfo, error) {
	err := of.file.Sync()
	if err != nil {
		return nil, of.writeError("sync: %w", err)
	}
	err = of.file.Close()
	of.file = nil
	if err != nil {
		return nil, of.writeError("close: %w", err)
	}
	of.finalized = true
	size := utils.FileSize(of.filePath)
	log.Infof("finalized %q: %d rows, %d bytes", of.filePath, rows, size)
	return &FileInfo{Rows: rows, Size: size}, nil
}

func (of *outputFile) Close() error {
	if of.closed {
		return nil
	}
	of.closed = true
	var closeErr error
	if of.file != nil {
		closeErr = of.file.Close()
		of.file = nil
	}
	if !of.finalized {
		log.Warnf("removing incomplete output file %q of table %q", of.filePath, of.tableName)
		err := utils.RemoveIfExists(of.filePath)
		if err != nil {
			return of.writeError("remove incomplete file: %w", err)
		}
		return nil
	}
	return closeErr
}

func (of *outputFile) checkOpen() error {
	if of.closed || of.finalized {
		return of.writeError("writer is no longer open")
	}
	return nil
}
