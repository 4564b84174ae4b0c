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
	"errors"
	"fmt"
	"regexp"

	_ "github.com/alexbrainman/odbc"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"github.com/baronblk/access-converter/src/errs"
	"github.com/baronblk/access-converter/src/utils/sqlname"
)

// Tried in order when no driver is configured, after the Access drivers found
// in odbcinst.ini. The last one is the mdbtools driver available on Linux and
// macOS.
var accessODBCDrivers = []string{
	"Microsoft Access Driver (*.mdb, *.accdb)",
	"Microsoft Access Driver (*.mdb)",
	"Driver do Microsoft Access (*.mdb)",
	"MDBTools",
}

type Access struct {
	*baseDB

	connectedDriver string
	odbcinstPaths   []string
}

var reMSysObjectsDenied = regexp.MustCompile(`(?i)(no read permission|not have permission|permission denied).*MSysObjects`)

const msysObjectsHint = `HINT: the table list is read from the hidden system table MSysObjects, which this database does not let the ODBC user read.
Grant it once in Access (File > Options > Current Database > Navigation Options > Show System Objects, then
Users and Permissions > Read Data on MSysObjects), or run "GRANT SELECT ON MSysObjects TO Admin" in a DDL query.`

func newAccess(s *Source) *Access {
	return &Access{odbcinstPaths: odbcinstPaths(), baseDB: &baseDB{
		source: s,
		dbType: sqlname.ACCESS,
		// Type 1 = local table; Flags 0 excludes hidden/system objects. The
		// ODBC driver gives no access to SQLTables, so there is no other catalog.
		tableNamesQuery:  "SELECT Name FROM MSysObjects WHERE Type = 1 AND Flags = 0",
		catalogErrorHint: msysObjectsErrorHint,
	}}
}

func msysObjectsErrorHint(err error) string {
	if reMSysObjectsDenied.MatchString(err.Error()) {
		return msysObjectsHint
	}
	return ""
}

func (a *Access) Connect() error {
	if a.db != nil {
		log.Infof("Already connected to the source database")
		return nil
	}
	var connErrs []error
	for _, connString := range a.getConnectionStrings() {
		db, err := openAndPing("odbc", connString)
		if err != nil {
			log.Debugf("ODBC connection with %q failed: %v", connString, err)
			connErrs = append(connErrs, err)
			continue
		}
		db.SetMaxOpenConns(1)
		a.db = db
		a.connectedDriver = RedactConnString(connString)
		log.Infof("connected to access database %q using %q", a.source.DisplayName(), a.connectedDriver)
		return nil
	}
	return errs.NewConnectionError(a.source.DisplayName(),
		fmt.Errorf("no working ODBC driver found: %w", errors.Join(connErrs...)))
}

func (a *Access) getConnectionStrings() []string {
	if a.source.ConnString != "" {
		return []string{a.source.ConnString}
	}
	var drivers []string
	if a.source.ODBCDriver != "" {
		drivers = []string{a.source.ODBCDriver}
	} else {
		drivers = lo.Uniq(append(installedAccessDrivers(a.odbcinstPaths), accessODBCDrivers...))
	}
	connStrings := make([]string, len(drivers))
	for i, driver := range drivers {
		connStrings[i] = fmt.Sprintf("DRIVER={%s};DBQ=%s;", driver, a.source.FilePath)
	}
	return connStrings
}

func openAndPing(driverName, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
