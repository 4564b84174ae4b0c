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
	"sort"
	"strings"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"github.com/baronblk/access-converter/src/errs"
	"github.com/baronblk/access-converter/src/utils/sqlname"
)

// baseDB holds everything that is the same for all database/sql based sources.
// The dialects only differ in how they connect and how they enumerate tables.
type baseDB struct {
	source *Source
	db     *sql.DB
	dbType string

	tableNamesQuery string
	versionQuery    string
	// catalogErrorHint, if set, returns advice for an error of tableNamesQuery.
	catalogErrorHint func(err error) string
}

func (b *baseDB) Disconnect() {
	if b.db == nil {
		log.Infof("No connection to the source database to close")
		return
	}
	err := b.db.Close()
	if err != nil {
		log.Infof("Failed to close connection to the source database: %s", err)
	}
	b.db = nil
}

func (b *baseDB) GetVersion() string {
	if b.versionQuery == "" || b.db == nil {
		return ""
	}
	var version string
	err := b.db.QueryRow(b.versionQuery).Scan(&version)
	if err != nil {
		log.Warnf("run query %q on source: %s", b.versionQuery, err)
		return ""
	}
	return version
}

func (b *baseDB) GetTableNames(ctx context.Context) ([]string, error) {
	if b.db == nil {
		return nil, errs.NewConnectionError(b.source.DisplayName(), fmt.Errorf("not connected"))
	}
	log.Infof(`query used to GetTableNames(): "%s"`, b.tableNamesQuery)
	rows, err := b.db.QueryContext(ctx, b.tableNamesQuery)
	if err != nil {
		err = fmt.Errorf("query table names: %w", err)
		if b.catalogErrorHint != nil {
			if hint := b.catalogErrorHint(err); hint != "" {
				err = fmt.Errorf("%w\n%s", err, hint)
			}
		}
		return nil, errs.NewConnectionError(b.source.DisplayName(), err)
	}
	defer rows.Close()

	var tableNames []string
	for rows.Next() {
		var tableName string
		err = rows.Scan(&tableName)
		if err != nil {
			return nil, errs.NewConnectionError(b.source.DisplayName(), fmt.Errorf("scan table name: %w", err))
		}
		tableNames = append(tableNames, tableName)
	}
	if err = rows.Err(); err != nil {
		return nil, errs.NewConnectionError(b.source.DisplayName(), fmt.Errorf("iterate table names: %w", err))
	}

	tableNames = lo.Reject(tableNames, func(name string, _ int) bool {
		return isSystemTable(b.dbType, name)
	})
	sort.Strings(tableNames)
	log.Infof("GetTableNames(): %v", tableNames)
	return tableNames, nil
}

func (b *baseDB) GetTableRowCount(ctx context.Context, tableName string) (int64, error) {
	var rowCount int64
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", sqlname.Quote(tableName, b.dbType))

	log.Infof("Querying row count of table %s", tableName)
	err := b.db.QueryRowContext(ctx, query).Scan(&rowCount)
	if err != nil {
		return -1, fmt.Errorf("query %q for row count of %q: %w", query, tableName, err)
	}
	log.Infof("Table %q has %v rows.", tableName, rowCount)
	return rowCount, nil
}

func (b *baseDB) ListTables(ctx context.Context) ([]*TableDescriptor, error) {
	tableNames, err := b.GetTableNames(ctx)
	if err != nil {
		return nil, err
	}
	tables := make([]*TableDescriptor, 0, len(tableNames))
	for _, tableName := range tableNames {
		rowCount, err := b.GetTableRowCount(ctx, tableName)
		if err != nil {
			// The count only sizes progress bars; an unknown count is not fatal.
			log.Warnf("row count of table %q unavailable: %v", tableName, err)
			rowCount = -1
		}
		tables = append(tables, &TableDescriptor{Name: tableName, RowCount: rowCount})
	}
	return tables, nil
}

func (b *baseDB) OpenTable(ctx context.Context, tableName string, chunkSize int) (TableReader, error) {
	if chunkSize < 1 {
		return nil, fmt.Errorf("invalid chunk size %d: must be at least 1", chunkSize)
	}
	tableNames, err := b.GetTableNames(ctx)
	if err != nil {
		return nil, err
	}
	resolved, ok := sqlname.Lookup(tableNames, tableName)
	if !ok {
		return nil, errs.NewTableNotFoundError(tableName, tableNames)
	}
	query := fmt.Sprintf("SELECT * FROM %s", sqlname.Quote(resolved, b.dbType))
	log.Infof("opening cursor for table %q: %s", resolved, query)
	rows, err := b.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errs.NewReadError(resolved, 0, fmt.Errorf("query %q: %w", query, err))
	}
	reader, err := newSQLTableReader(resolved, rows, chunkSize)
	if err != nil {
		rows.Close()
		return nil, errs.NewReadError(resolved, 0, err)
	}
	return reader, nil
}

var accessSystemTablePrefixes = []string{"MSys", "USys", "~"}

func isSystemTable(dbType, tableName string) bool {
	switch dbType {
	case sqlname.ACCESS:
		return lo.SomeBy(accessSystemTablePrefixes, func(prefix string) bool {
			return strings.HasPrefix(tableName, prefix)
		})
	case sqlname.SQLITE:
		return strings.HasPrefix(tableName, "sqlite_")
	default:
		return false
	}
}
