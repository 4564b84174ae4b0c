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
package cmd

import (
	"context"
	"fmt"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/baronblk/access-converter/src/errs"
	"github.com/baronblk/access-converter/src/srcdb"
	"github.com/baronblk/access-converter/src/utils"
	"github.com/baronblk/access-converter/src/utils/sqlname"
)

var (
	source           srcdb.Source
	tableListArg     string
	excludeTableList string
)

func registerSourceDBFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&source.DBType, "source-db-type", "",
		fmt.Sprintf("source database type, one of: %s (default: derived from the file extension)",
			strings.Join(srcdb.SupportedDBTypes, ", ")))
	cmd.Flags().StringVar(&source.FilePath, "source-db-file", "",
		"path of the source database file (.mdb, .accdb, .sqlite, .duckdb, ...)")
	cmd.Flags().StringVar(&source.ODBCDriver, "source-odbc-driver", "",
		"ODBC driver used for Access files (default: the first installed Access driver)")
	cmd.Flags().StringVar(&source.ConnString, "source-conn-string", "",
		"full connection string; overrides --source-db-file and --source-odbc-driver")
	cmd.Flags().BoolVar(&source.VerboseMode, "verbose", false,
		"enable verbose mode for the console output")
}

func registerTableListFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&tableListArg, "table-list", "",
		"comma separated list of the tables to export (default: all tables)")
	cmd.Flags().StringVar(&excludeTableList, "exclude-table-list", "",
		"comma separated list of the tables to skip")
}

func validateSourceFlags() {
	if source.DBType == "" {
		source.DBType = srcdb.DBTypeForFile(source.FilePath)
		if source.DBType == "" {
			utils.ErrExit(`ERROR: required flag "source-db-type" not set and it cannot be derived from the file name %q`, source.FilePath)
		}
		log.Infof("source db type %q derived from file name %q", source.DBType, source.FilePath)
	}
	source.DBType = strings.ToLower(source.DBType)
	err := source.Validate()
	if err != nil {
		utils.ErrExit("ERROR: %v", err)
	}
}

func connectSource() srcdb.SourceDB {
	validateSourceFlags()
	sourceDB := source.DB()
	err := sourceDB.Connect()
	if err != nil {
		utils.ErrExit("Failed to connect to the source database: %v", err)
	}
	if version := sourceDB.GetVersion(); version != "" {
		log.Infof("source database version: %s", version)
	}
	return sourceDB
}

// selectTables applies --table-list and --exclude-table-list to the catalog.
// The names in the lists are matched case-insensitively and the catalog
// spelling is returned, in catalog order.
func selectTables(ctx context.Context, sourceDB srcdb.SourceDB) ([]string, error) {
	catalog, err := sourceDB.GetTableNames(ctx)
	if err != nil {
		return nil, err
	}
	includeList := utils.CsvStringToSlice(tableListArg)
	excludeList := utils.CsvStringToSlice(excludeTableList)

	resolve := func(listName string, names []string) (mapset.Set[string], error) {
		resolved := mapset.NewThreadUnsafeSet[string]()
		var unknown []string
		for _, name := range names {
			catalogName, ok := sqlname.Lookup(catalog, name)
			if !ok {
				unknown = append(unknown, name)
				continue
			}
			resolved.Add(catalogName)
		}
		if len(unknown) > 0 {
			return nil, errs.NewUnknownTableErr(listName, unknown, catalog)
		}
		return resolved, nil
	}

	selected := catalog
	if len(includeList) > 0 {
		included, err := resolve("table-list", includeList)
		if err != nil {
			return nil, err
		}
		selected = lo.Filter(catalog, func(name string, _ int) bool { return included.Contains(name) })
	}
	if len(excludeList) > 0 {
		excluded, err := resolve("exclude-table-list", excludeList)
		if err != nil {
			return nil, err
		}
		selected = lo.Reject(selected, func(name string, _ int) bool { return excluded.Contains(name) })
	}
	log.Infof("selected tables: %v", selected)
	return selected, nil
}
