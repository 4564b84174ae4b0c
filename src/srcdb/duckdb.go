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
	"os"

	_ "github.com/duckdb/duckdb-go/v2"
	log "github.com/sirupsen/logrus"

	"github.com/baronblk/access-converter/src/errs"
	"github.com/baronblk/access-converter/src/utils/sqlname"
)

type DuckDB struct {
	*baseDB
}

func newDuckDB(s *Source) *DuckDB {
	return &DuckDB{baseDB: &baseDB{
		source: s,
		dbType: sqlname.DUCKDB,
		tableNamesQuery: "SELECT table_name FROM information_schema.tables " +
			"WHERE table_schema = current_schema() AND table_type = 'BASE TABLE'",
		versionQuery: "SELECT version()",
	}}
}

func (dd *DuckDB) Connect() error {
	if dd.db != nil {
		log.Infof("Already connected to the source database")
		return nil
	}
	dsn := dd.source.ConnString
	if dsn == "" {
		if _, err := os.Stat(dd.source.FilePath); err != nil {
			return errs.NewConnectionError(dd.source.DisplayName(), err)
		}
		dsn = dd.source.FilePath + "?access_mode=read_only"
	}
	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return errs.NewConnectionError(dd.source.DisplayName(), err)
	}
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		db.Close()
		return errs.NewConnectionError(dd.source.DisplayName(), err)
	}
	dd.db = db
	log.Infof("connected to duckdb database %q", dd.source.DisplayName())
	return nil
}
