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
	"fmt"

	"github.com/baronblk/access-converter/src/types"
	"github.com/baronblk/access-converter/src/utils/sqlname"
)

type TableDescriptor struct {
	Name string
	// Advisory; may be stale by the time the table is read. -1 when unknown.
	RowCount int64
}

type SourceDB interface {
	Connect() error
	Disconnect()
	GetVersion() string
	// GetTableNames returns the user tables of the source, sorted, without system tables.
	GetTableNames(ctx context.Context) ([]string, error)
	GetTableRowCount(ctx context.Context, tableName string) (int64, error)
	ListTables(ctx context.Context) ([]*TableDescriptor, error)
	OpenTable(ctx context.Context, tableName string, chunkSize int) (TableReader, error)
}

// TableReader streams the rows of one table. It is not safe for concurrent use
// and cannot be restarted.
type TableReader interface {
	Columns() []types.Column
	// NextBatch returns io.EOF once all rows have been returned.
	NextBatch(ctx context.Context) (*types.RowBatch, error)
	Close() error
}

func newSourceDB(source *Source) SourceDB {
	switch source.DBType {
	case sqlname.ACCESS:
		return newAccess(source)
	case sqlname.SQLITE:
		return newSQLite(source)
	case sqlname.DUCKDB:
		return newDuckDB(source)
	default:
		panic(fmt.Sprintf("unknown source database type %q", source.DBType))
	}
}

var SupportedDBTypes = []string{sqlname.ACCESS, sqlname.SQLITE, sqlname.DUCKDB}
