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
	"fmt"
	"os"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/fatih/color"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Flag name prefix (used in CLI flags)
	SourceDBFlagPrefix = "source-"

	// Config key prefix (used in config file keys)
	SourceDBConfigPrefix = "source."

	CONFIG_FILE_ENV_VAR = "ACCESS_CONVERTER_CONFIG_FILE"
	DEFAULT_CONFIG_NAME = "access-converter-config"
)

var allowedGlobalConfigKeys = mapset.NewThreadUnsafeSet[string](
	"output-dir", "log-level", "log-dir",
)

var allowedSourceConfigKeys = mapset.NewThreadUnsafeSet[string](
	"db-type", "db-file", "odbc-driver", "conn-string",
)

var allowedExportConfigKeys = mapset.NewThreadUnsafeSet[string](
	"format", "chunk-size", "table-list", "exclude-table-list", "error-policy", "disable-pb",
	"csv-delimiter", "csv-bom", "sheet-row-limit", "json-indent", "pdf-page-size",
	"pdf-orientation", "pdf-max-rows",
)

var allowedListTablesConfigKeys = mapset.NewThreadUnsafeSet[string](
	"table-list", "exclude-table-list",
)

var allowedConfigSections = map[string]mapset.Set[string]{
	"source":      allowedSourceConfigKeys,
	"export":      allowedExportConfigKeys,
	"list-tables": allowedListTablesConfigKeys,
}

// ConfigFlagOverride represents a CLI flag whose value was set from the config file.
// It records the flag, the config key that supplied the value and the value
// that was applied, so the log shows which flags came from the config file.
type ConfigFlagOverride struct {
	FlagName  string
	ConfigKey string
	Value     string
}

/*
initConfig initializes the configuration for the given Cobra command.

	It performs the following steps:
	 1. Creates a new Viper instance to isolate config handling for the command.
	 2. Loads the config file given via --config, or $ACCESS_CONVERTER_CONFIG_FILE,
	    or defaults to ~/access-converter-config.yaml.
	 3. Validates the config file for allowed global keys, sections, and section keys.
	 4. Binds config values to the flags the user did not set on the command line.
	 5. Returns the flags that were set from the config file.

	Precedence is CLI > config file > flag default.
*/
func initConfig(cmd *cobra.Command) ([]ConfigFlagOverride, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else if os.Getenv(CONFIG_FILE_ENV_VAR) != "" {
		v.SetConfigFile(os.Getenv(CONFIG_FILE_ENV_VAR))
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(home)
		v.SetConfigName(DEFAULT_CONFIG_NAME)
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", v.ConfigFileUsed())
	} else {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	err := validateConfigFile(v)
	if err != nil {
		return nil, err
	}

	overrides, err := bindCobraFlagsToViper(cmd, v)
	if err != nil {
		return nil, fmt.Errorf("failed to bind cobra flags to viper: %w", err)
	}
	return overrides, nil
}

/*
validateConfigFile checks the loaded configuration for correctness.

	1. All global (non-nested) keys must be in the allowed list.
	2. All section names (e.g. export) must be known.
	3. All keys inside a section must be valid for that section.

	Every problem found is printed before the error is returned, so the user
	can fix the whole file in one go.
*/
func validateConfigFile(v *viper.Viper) error {
	invalidGlobalKeys := mapset.NewThreadUnsafeSet[string]()
	invalidSectionKeys := make(map[string]mapset.Set[string])
	invalidSections := mapset.NewThreadUnsafeSet[string]()

	for _, key := range v.AllKeys() {
		parts := strings.Split(key, ".")
		if len(parts) == 1 {
			if !allowedGlobalConfigKeys.Contains(key) {
				invalidGlobalKeys.Add(key)
			}
			continue
		}
		// "a.b.c" -> section: "a", nestedKey: "b.c"
		section := parts[0]
		nestedKey := strings.Join(parts[1:], ".")
		allowedKeys, ok := allowedConfigSections[section]
		if !ok {
			invalidSections.Add(section)
			continue
		}
		if !allowedKeys.Contains(nestedKey) {
			if _, exists := invalidSectionKeys[section]; !exists {
				invalidSectionKeys[section] = mapset.NewThreadUnsafeSet[string]()
			}
			invalidSectionKeys[section].Add(nestedKey)
		}
	}

	if invalidGlobalKeys.Cardinality() == 0 && len(invalidSectionKeys) == 0 && invalidSections.Cardinality() == 0 {
		return nil
	}
	if invalidGlobalKeys.Cardinality() > 0 {
		fmt.Printf("%s [%s]\n", color.RedString("Invalid global config keys:"), strings.Join(invalidGlobalKeys.ToSlice(), ", "))
	}
	for section, keys := range invalidSectionKeys {
		fmt.Printf("%s [%s]\n", color.RedString(fmt.Sprintf("Invalid keys in section '%s':", section)), strings.Join(keys.ToSlice(), ", "))
	}
	if invalidSections.Cardinality() > 0 {
		fmt.Printf("%s [%s]\n", color.RedString("Invalid sections:"), strings.Join(invalidSections.ToSlice(), ", "))
	}
	return fmt.Errorf("found invalid configurations in config file: %s", v.ConfigFileUsed())
}

/*
bindCobraFlagsToViper sets the flags of cmd that the user did not pass on the
command line from the config file.

	For a flag the lookup order is:
	 1. <command path>.<flag>, e.g. "export.format" for "access-converter export --format".
	 2. <flag> at the global level, e.g. "output-dir".
	 3. For "source-" flags, "source.<flag without prefix>", e.g. "source.db-file".
*/
func bindCobraFlagsToViper(cmd *cobra.Command, v *viper.Viper) ([]ConfigFlagOverride, error) {
	var bindErr error
	var overrides []ConfigFlagOverride

	subCmdPath := strings.TrimPrefix(cmd.CommandPath(), cmd.Root().Name())
	subCmdPath = strings.TrimSpace(subCmdPath)
	configKeyPrefix := strings.ReplaceAll(subCmdPath, " ", "-")

	setFromKey := func(f *pflag.Flag, key string) {
		val := v.GetString(key)
		if list, ok := v.Get(key).([]interface{}); ok {
			// a yaml list for a comma separated flag such as table-list
			val = strings.Join(cast.ToStringSlice(list), ",")
		}
		err := cmd.Flags().Set(f.Name, val)
		if err != nil {
			bindErr = err
			return
		}
		overrides = append(overrides, ConfigFlagOverride{
			FlagName:  f.Name,
			ConfigKey: key,
			Value:     val,
		})
	}

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if bindErr != nil || f.Changed {
			return
		}
		sourceKey := SourceDBConfigPrefix + strings.TrimPrefix(f.Name, SourceDBFlagPrefix)
		switch {
		case configKeyPrefix != "" && v.IsSet(configKeyPrefix+"."+f.Name):
			setFromKey(f, configKeyPrefix+"."+f.Name)
		case v.IsSet(f.Name):
			setFromKey(f, f.Name)
		case strings.HasPrefix(f.Name, SourceDBFlagPrefix) && v.IsSet(sourceKey):
			setFromKey(f, sourceKey)
		}
	})
	return overrides, bindErr
}
