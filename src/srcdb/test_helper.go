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
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

// CreateTestSQLiteFile creates a sqlite database file in a temp dir with the
// given tables and returns its path. Each table gets an id column and a few
// typed columns; numRows rows are inserted with ids 1..numRows.
func CreateTestSQLiteFile(t *testing.T, tables map[string]int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "source.sqlite")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	base := time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC)
	for name, numRows := range tables {
		_, err = db.Exec(fmt.Sprintf(`CREATE TABLE "%s" (
			id INTEGER PRIMARY KEY,
			name TEXT,
			price REAL,
			active BOOLEAN,
			created DATETIME,
			note TEXT
		)`, name))
		require.NoError(t, err)

		tx, err := db.Begin()
		require.NoError(t, err)
		stmt, err := tx.Prepare(fmt.Sprintf(`INSERT INTO "%s" (id, name, price, active, created, note) VALUES (?, ?, ?, ?, ?, ?)`, name))
		require.NoError(t, err)
		for i := 1; i <= numRows; i++ {
			var note any
			if i%3 != 0 {
				note = fmt.Sprintf("note %d", i)
			}
			_, err = stmt.Exec(i, fmt.Sprintf("item-%d", i), float64(i)+0.25, i%2 == 0, base.Add(time.Duration(i)*time.Hour), note)
			require.NoError(t, err)
		}
		require.NoError(t, stmt.Close())
		require.NoError(t, tx.Commit())
	}
	return path
}

// ConnectTestSQLite connects a SourceDB to a file made by CreateTestSQLiteFile.
func ConnectTestSQLite(t *testing.T, path string) SourceDB {
	t.Helper()
	source := &Source{DBType: "sqlite", FilePath: path}
	require.NoError(t, source.Validate())
	db := source.DB()
	require.NoError(t, db.Connect())
	t.Cleanup(db.Disconnect)
	return db
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
