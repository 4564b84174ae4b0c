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
package srcdb

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/baronblk/access-converter/src/errs"
	"github.com/baronblk/access-converter/src/types"
)

// sqlTableReader cuts a single SELECT cursor into batches. Batches never
// overlap and never skip rows because they are consecutive reads of the
// same cursor.
type sqlTableReader struct {
	tableName string
	rows      *sql.Rows
	columns   []types.Column
	chunkSize int

	batchIndex int
	rowsRead   int64
	done       bool
	closed     bool
}

func newSQLTableReader(tableName string, rows *sql.Rows, chunkSize int) (*sqlTableReader, error) {
	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("column types of %q: %w", tableName, err)
	}
	columns := make([]types.Column, len(colTypes))
	for i, ct := range colTypes {
		nullable, ok := ct.Nullable()
		columns[i] = types.Column{
			Name:         ct.Name(),
			DatabaseType: strings.ToUpper(ct.DatabaseTypeName()),
			Nullable:     !ok || nullable,
		}
	}
	log.Infof("table %q columns: %v", tableName, types.ColumnNames(columns))
	return &sqlTableReader{
		tableName: tableName,
		rows:      rows,
		columns:   columns,
		chunkSize: chunkSize,
	}, nil
}

func (r *sqlTableReader) Columns() []types.Column {
	return r.columns
}

func (r *sqlTableReader) NextBatch(ctx context.Context) (*types.RowBatch, error) {
	if r.done || r.closed {
		return nil, io.EOF
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	batch := &types.RowBatch{
		Columns: r.columns,
		Rows:    make([]types.Row, 0, r.chunkSize),
		Index:   r.batchIndex,
		Offset:  r.rowsRead,
	}
	dest := make([]any, len(r.columns))
	ptrs := make([]any, len(r.columns))
	for i := range dest {
		ptrs[i] = &dest[i]
	}

	for len(batch.Rows) < r.chunkSize {
		if !r.rows.Next() {
			r.done = true
			if err := r.rows.Err(); err != nil {
				return nil, errs.NewReadError(r.tableName, r.batchIndex, fmt.Errorf("fetch row %d: %w", r.rowsRead+int64(len(batch.Rows))+1, err))
			}
			break
		}
		err := r.rows.Scan(ptrs...)
		if err != nil {
			r.done = true
			return nil, errs.NewReadError(r.tableName, r.batchIndex, fmt.Errorf("scan row %d: %w", r.rowsRead+int64(len(batch.Rows))+1, err))
		}
		row := make(types.Row, len(dest))
		for i, v := range dest {
			row[i] = toValue(v, r.columns[i].DatabaseType)
		}
		batch.Rows = append(batch.Rows, row)
	}

	if len(batch.Rows) == 0 {
		return nil, io.EOF
	}
	r.batchIndex++
	r.rowsRead += int64(len(batch.Rows))
	log.Debugf("table %q: read batch %d with %d rows (total %d)", r.tableName, batch.Index, len(batch.Rows), r.rowsRead)
	return batch, nil
}

func (r *sqlTableReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.rows.Close()
}
