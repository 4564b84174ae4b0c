package datafile

import (
	"encoding/csv"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"

	"github.com/baronblk/access-converter/src/types"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type CsvDataFile struct {
	*outputFile
	writer  *csv.Writer
	columns []types.Column
	record  []string
	rows    int64
}

func newCsvDataFile(filePath string, table types.TableInfo, opts Options) (*CsvDataFile, error) {
	of, err := createOutputFile(table.Name, filePath)
	if err != nil {
		return nil, err
	}
	df := &CsvDataFile{
		outputFile: of,
		columns:    table.Columns,
		record:     make([]string, len(table.Columns)),
	}
	if opts.BOM {
		_, err = of.file.Write(utf8BOM)
		if err != nil {
			of.Close()
			return nil, of.writeError("write BOM: %w", err)
		}
	}
	df.writer = csv.NewWriter(of.file)
	df.writer.Comma, _ = utf8.DecodeRuneInString(opts.Delimiter)

	err = df.writer.Write(types.ColumnNames(table.Columns))
	if err != nil {
		of.Close()
		return nil, of.writeError("write header: %w", err)
	}
	log.Infof("csv writer for table %q: delimiter %q, bom %v", table.Name, opts.Delimiter, opts.BOM)
	return df, nil
}

func (df *CsvDataFile) WriteBatch(batch *types.RowBatch) error {
	err := df.checkOpen()
	if err != nil {
		return err
	}
	for _, row := range batch.Rows {
		if len(row) != len(df.columns) {
			return df.writeError("row %d has %d values, expected %d", df.rows+1, len(row), len(df.columns))
		}
		for i, v := range row {
			df.record[i] = v.String()
		}
		err = df.writer.Write(df.record)
		if err != nil {
			return df.writeError("write row %d: %w", df.rows+1, err)
		}
		df.rows++
	}
	// csv.Writer only reports buffered write failures after a flush
	df.writer.Flush()
	if err = df.writer.Error(); err != nil {
		return df.writeError("flush batch %d: %w", batch.Index, err)
	}
	return nil
}

func (df *CsvDataFile) Finalize() (*FileInfo, error) {
	err := df.checkOpen()
	if err != nil {
		return nil, err
	}
	df.writer.Flush()
	if err = df.writer.Error(); err != nil {
		return nil, df.writeError("flush: %w", err)
	}
	return df.commit(df.rows)
}
