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
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/samber/lo"
)

type Source struct {
	DBType string `json:"db_type"`
	// Path of the database file. Ignored for Access when ConnString is set.
	FilePath string `json:"file_path"`
	// ODBC driver name for Access. Empty means try the known drivers in order.
	ODBCDriver string `json:"odbc_driver"`
	// Full connection string, overrides FilePath and ODBCDriver.
	ConnString  string `json:"-"`
	VerboseMode bool   `json:"verbose_mode"`

	sourceDB SourceDB `json:"-"`
}

func (s *Source) Clone() *Source {
	newS := *s
	newS.sourceDB = nil
	return &newS
}

func (s *Source) DB() SourceDB {
	if s.sourceDB == nil {
		s.sourceDB = newSourceDB(s)
	}
	return s.sourceDB
}

func (s *Source) Validate() error {
	if !lo.Contains(SupportedDBTypes, s.DBType) {
		return fmt.Errorf("unsupported source db type %q. Supported types are: %s", s.DBType, strings.Join(SupportedDBTypes, ", "))
	}
	if s.FilePath == "" && s.ConnString == "" {
		return fmt.Errorf("source database file is required")
	}
	if s.FilePath != "" {
		abs, err := filepath.Abs(s.FilePath)
		if err != nil {
			return fmt.Errorf("resolve source file path %q: %w", s.FilePath, err)
		}
		s.FilePath = abs
	}
	return nil
}

var rePassword = regexp.MustCompile(`(?i)(PWD|PASSWORD)=[^;]*`)

// RedactConnString replaces the password in an ODBC connection string with XXX.
func RedactConnString(connString string) string {
	return rePassword.ReplaceAllString(connString, "${1}=XXX")
}

// DisplayName identifies the source in logs and error messages without leaking secrets.
func (s *Source) DisplayName() string {
	if s.ConnString != "" {
		return RedactConnString(s.ConnString)
	}
	return s.FilePath
}

// DBTypeForFile guesses the source type from the file extension. Used only to
// fill in a default when --source-db-type is not given.
func DBTypeForFile(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mdb", ".accdb":
		return "access"
	case ".sqlite", ".sqlite3", ".db":
		return "sqlite"
	case ".duckdb", ".ddb":
		return "duckdb"
	default:
		return ""
	}
}
