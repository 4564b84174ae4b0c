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
	"errors"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baronblk/access-converter/src/errs"
	"github.com/baronblk/access-converter/src/types"
)

func createMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	return db, mock
}

func newMockAccess(t *testing.T) (*Access, sqlmock.Sqlmock) {
	db, mock := createMockDB(t)
	access := newAccess(&Source{DBType: "access", FilePath: `C:\data\shop.accdb`})
	access.db = db
	t.Cleanup(access.Disconnect)
	return access, mock
}

func expectAccessTableNames(mock sqlmock.Sqlmock, names ...string) {
	rows := sqlmock.NewRows([]string{"Name"})
	for _, name := range names {
		rows.AddRow(name)
	}
	mock.ExpectQuery("FROM MSysObjects WHERE Type = 1 AND Flags = 0").WillReturnRows(rows)
}

func TestAccessGetTableNamesFiltersSystemTables(t *testing.T) {
	access, mock := newMockAccess(t)
	expectAccessTableNames(mock, "Orders", "MSysACEs", "USysRibbons", "~TMPCLP12345", "Customers", "Order Details")

	names, err := access.GetTableNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Customers", "Order Details", "Orders"}, names)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccessGetTableNamesConnectionError(t *testing.T) {
	access, mock := newMockAccess(t)
	mock.ExpectQuery("FROM MSysObjects").WillReturnError(errors.New("Records cannot be read; no read permission on 'MSysObjects'."))

	_, err := access.GetTableNames(context.Background())
	var connErr *errs.ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Contains(t, err.Error(), "no read permission")
	assert.Contains(t, err.Error(), "GRANT SELECT ON MSysObjects TO Admin")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccessGetTableNamesOtherErrorHasNoHint(t *testing.T) {
	access, mock := newMockAccess(t)
	mock.ExpectQuery("FROM MSysObjects").WillReturnError(errors.New("[ODBC Microsoft Access Driver] Disk or network error."))

	_, err := access.GetTableNames(context.Background())
	var connErr *errs.ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Contains(t, err.Error(), "Disk or network error")
	assert.NotContains(t, err.Error(), "HINT")
}

func TestMSysObjectsErrorHint(t *testing.T) {
	for _, msg := range []string{
		"Records cannot be read; no read permission on 'MSysObjects'.",
		"[Microsoft][ODBC Microsoft Access Driver] Records cannot be read; no read permission on 'msysobjects'.",
		"You do not have permission to read MSysObjects",
	} {
		assert.Equal(t, msysObjectsHint, msysObjectsErrorHint(errors.New(msg)), msg)
	}
	assert.Empty(t, msysObjectsErrorHint(errors.New("no read permission on 'Orders'")))
}

func TestAccessListTablesUnknownRowCount(t *testing.T) {
	access, mock := newMockAccess(t)
	expectAccessTableNames(mock, "Orders", "Order Details")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM [Order Details]")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM [Orders]")).
		WillReturnError(errors.New("locked"))

	tables, err := access.ListTables(context.Background())
	require.NoError(t, err)
	require.Len(t, tables, 2)
	assert.Equal(t, TableDescriptor{Name: "Order Details", RowCount: 42}, *tables[0])
	assert.Equal(t, TableDescriptor{Name: "Orders", RowCount: -1}, *tables[1])
}

func TestAccessOpenTableReadErrorMidStream(t *testing.T) {
	access, mock := newMockAccess(t)
	expectAccessTableNames(mock, "Orders")
	rows := sqlmock.NewRows([]string{"ID", "Amount"}).
		AddRow(int64(1), "10.50").
		AddRow(int64(2), "11.00").
		AddRow(int64(3), "12.00").
		AddRow(int64(4), "13.00").
		RowError(3, errors.New("[ODBC Microsoft Access Driver] Disk or network error."))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM [Orders]")).WillReturnRows(rows)

	reader, err := access.OpenTable(context.Background(), "Orders", 2)
	require.NoError(t, err)
	defer reader.Close()

	batch, err := reader.NextBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, batch.Len())

	_, err = reader.NextBatch(context.Background())
	var readErr *errs.ReadError
	require.ErrorAs(t, err, &readErr)
	assert.Equal(t, "Orders", readErr.TableName)
	assert.Equal(t, 1, readErr.BatchIndex)
	assert.Contains(t, err.Error(), "Disk or network error")

	// the reader is exhausted after a read error
	_, err = reader.NextBatch(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestAccessOpenTableHonoursCancellation(t *testing.T) {
	access, mock := newMockAccess(t)
	expectAccessTableNames(mock, "Orders")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM [Orders]")).
		WillReturnRows(sqlmock.NewRows([]string{"ID"}).AddRow(int64(1)).AddRow(int64(2)))

	reader, err := access.OpenTable(context.Background(), "Orders", 1)
	require.NoError(t, err)
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	_, err = reader.NextBatch(ctx)
	require.NoError(t, err)
	cancel()
	_, err = reader.NextBatch(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAccessConnectionStrings(t *testing.T) {
	access := newAccess(&Source{DBType: "access", FilePath: `C:\data\shop.accdb`})
	access.odbcinstPaths = nil
	connStrings := access.getConnectionStrings()
	require.Len(t, connStrings, len(accessODBCDrivers))
	assert.Equal(t, `DRIVER={Microsoft Access Driver (*.mdb, *.accdb)};DBQ=C:\data\shop.accdb;`, connStrings[0])

	access = newAccess(&Source{DBType: "access", FilePath: "/data/shop.mdb", ODBCDriver: "MDBTools"})
	assert.Equal(t, []string{"DRIVER={MDBTools};DBQ=/data/shop.mdb;"}, access.getConnectionStrings())

	access = newAccess(&Source{DBType: "access", ConnString: "DSN=Shop;PWD=secret"})
	assert.Equal(t, []string{"DSN=Shop;PWD=secret"}, access.getConnectionStrings())
	assert.Equal(t, "DSN=Shop;PWD=XXX", access.source.DisplayName())
}

func TestAccessConnectionStringsPreferRegisteredDrivers(t *testing.T) {
	registry := filepath.Join(t.TempDir(), "odbcinst.ini")
	require.NoError(t, os.WriteFile(registry, []byte(`[ODBC]
Trace = No

[PostgreSQL Unicode]
Driver = psqlodbcw.so

[MDBTools]
Description = MDBTools Driver
Driver = libmdbodbc.so.1

[Jet Legacy]
Driver = /usr/lib/odbc/libmdbodbc.so
`), 0644))

	access := newAccess(&Source{DBType: "access", FilePath: "/data/shop.mdb"})
	access.odbcinstPaths = []string{filepath.Join(t.TempDir(), "missing.ini"), registry}
	connStrings := access.getConnectionStrings()
	require.Len(t, connStrings, len(accessODBCDrivers)+1)
	assert.Equal(t, "DRIVER={MDBTools};DBQ=/data/shop.mdb;", connStrings[0])
	assert.Equal(t, "DRIVER={Jet Legacy};DBQ=/data/shop.mdb;", connStrings[1])
	assert.Equal(t, "DRIVER={Microsoft Access Driver (*.mdb, *.accdb)};DBQ=/data/shop.mdb;", connStrings[2])
	assert.NotContains(t, connStrings, "DRIVER={PostgreSQL Unicode};DBQ=/data/shop.mdb;")
}

func TestInstalledAccessDrivers(t *testing.T) {
	assert.Nil(t, installedAccessDrivers(nil))
	assert.Nil(t, installedAccessDrivers([]string{filepath.Join(t.TempDir(), "odbcinst.ini")}))

	registry := filepath.Join(t.TempDir(), "odbcinst.ini")
	require.NoError(t, os.WriteFile(registry, []byte(`[ODBC Drivers]
Microsoft Access Driver (*.mdb, *.accdb) = Installed

[Microsoft Access Driver (*.mdb, *.accdb)]
DRIVER = C:\Windows\system32\aceodbc.dll

[SQLite3]
Driver = libsqlite3odbc.so
`), 0644))
	assert.Equal(t, []string{"Microsoft Access Driver (*.mdb, *.accdb)"}, installedAccessDrivers([]string{registry}))

	assert.True(t, isAccessDriver("Custom", "/opt/ace/lib/libaceodbc.so"))
	assert.False(t, isAccessDriver("SQL Server", "libmsodbcsql-18.so"))
}

func TestAccessDecimalColumnsBecomeFloats(t *testing.T) {
	assert.Equal(t, types.FloatValue(10.5), toValue([]byte("10.5000"), "CURRENCY"))
	assert.Equal(t, types.FloatValue(10.5), toValue("10.5", "DECIMAL(18,4)"))
	assert.Equal(t, types.TextValue("10.5"), toValue("10.5", "VARCHAR"))
}
