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
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"

	"github.com/baronblk/access-converter/src/utils"
)

// odbcinstPaths lists where unixODBC keeps its driver registry, most specific
// first.
func odbcinstPaths() []string {
	var paths []string
	if dir := os.Getenv("ODBCSYSINI"); dir != "" {
		paths = append(paths, filepath.Join(dir, "odbcinst.ini"))
	}
	return append(paths,
		"/etc/odbcinst.ini",
		"/usr/local/etc/odbcinst.ini",
		"/opt/homebrew/etc/odbcinst.ini",
	)
}

// installedAccessDrivers returns the names of the Access capable drivers
// registered in the first odbcinst.ini found in paths, in file order.
func installedAccessDrivers(paths []string) []string {
	for _, path := range paths {
		if !utils.FileOrFolderExists(path) {
			continue
		}
		iniData, err := ini.LoadSources(ini.LoadOptions{InsensitiveKeys: true, SkipUnrecognizableLines: true}, path)
		if err != nil {
			log.Warnf("parse ODBC driver registry %q: %v", path, err)
			return nil
		}
		var drivers []string
		for _, section := range iniData.Sections() {
			name := section.Name()
			switch name {
			case ini.DefaultSection, "ODBC", "ODBC Drivers":
				continue
			}
			if isAccessDriver(name, section.Key("driver").String()) {
				drivers = append(drivers, name)
			}
		}
		log.Infof("Access ODBC drivers registered in %q: %v", path, drivers)
		return drivers
	}
	return nil
}

func isAccessDriver(name, driverLib string) bool {
	name = strings.ToLower(name)
	driverLib = strings.ToLower(filepath.Base(driverLib))
	return strings.Contains(name, "access") || strings.Contains(name, "mdb") ||
		strings.Contains(driverLib, "mdb") || strings.Contains(driverLib, "aceodbc")
}
