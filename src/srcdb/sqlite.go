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
	"net/url"
	"os"

	_ "github.com/mattn/go-sqlite3"
	log "github.com/sirupsen/logrus"

	"github.com/baronblk/access-converter/src/errs"
	"github.com/baronblk/access-converter/src/utils/sqlname"
)

type SQLite struct {
	*baseDB
}

func newSQLite(s *Source) *SQLite {
	return &SQLite{baseDB: &baseDB{
		source:          s,
		dbType:          sqlname.SQLITE,
		tableNamesQuery: "SELECT name FROM sqlite_master WHERE type = 'table'",
		versionQuery:    "SELECT sqlite_version()",
	}}
}

func (sl *SQLite) Connect() error {
	if sl.db != nil {
		log.Infof("Already connected to the source database")
		return nil
	}
	// mode=ro keeps sqlite from silently creating an empty database for a mistyped path.
	if _, err := os.Stat(sl.source.FilePath); err != nil {
		return errs.NewConnectionError(sl.source.DisplayName(), err)
	}
	db, err := sql.Open("sqlite3", sl.getConnectionUri())
	if err != nil {
		return errs.NewConnectionError(sl.source.DisplayName(), err)
	}
	// One cursor at a time against the file.
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		db.Close()
		return errs.NewConnectionError(sl.source.DisplayName(), err)
	}
	sl.db = db
	log.Infof("connected to sqlite database %q", sl.source.FilePath)
	return nil
}

func (sl *SQLite) getConnectionUri() string {
	if sl.source.ConnString != "" {
		return sl.source.ConnString
	}
	u := url.URL{Scheme: "file", Path: sl.source.FilePath, RawQuery: "mode=ro"}
	return fmt.Sprintf("file:%s?%s", u.EscapedPath(), u.RawQuery)
}
