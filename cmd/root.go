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
	"os"
	"path/filepath"

	"github.com/nightlyone/lockfile"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/baronblk/access-converter/src/config"
	"github.com/baronblk/access-converter/src/utils"
)

const LOCK_FILE_NAME = ".access-converter.lck"

var (
	cfgFile   string
	outputDir string
	logDir    string
	lockFile  lockfile.Lockfile
	dirLocked bool
)

var rootCmd = &cobra.Command{
	Use:   "access-converter",
	Short: "Export the tables of an Access, SQLite or DuckDB database file to CSV, XLSX, JSON or PDF",
	Long: `Export the tables of a desktop database file, one output file per table.
Microsoft Access files (.mdb, .accdb) are read through an installed ODBC driver; SQLite and DuckDB files are
read directly. Tables are streamed in chunks, so their size is not limited by memory.`,

	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		overrides, err := initConfig(cmd)
		if err != nil {
			utils.ErrExit("ERROR: %v", err)
		}
		err = config.ValidateLogLevel()
		if err != nil {
			utils.ErrExit("ERROR: %v", err)
		}
		if cmd.Use == "version" {
			return
		}
		if requiresOutputDir(cmd) {
			validateOutputDirFlag()
			if cmd.Use != "status" {
				lockOutputDir()
			}
		}
		dir := logDir
		if dir == "" {
			dir = outputDir
		}
		InitLogging(dir, dir == "" || cmd.Use == "status", cmd.Name())
		for _, o := range overrides {
			log.Infof("flag %q set to %q from config key %q", o.FlagName, o.Value, o.ConfigKey)
		}
	},

	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			cmd.Help()
			os.Exit(0)
		}
	},

	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		unlockOutputDir()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(ctx context.Context) {
	cobra.CheckErr(rootCmd.ExecuteContext(ctx))
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		fmt.Sprintf("config file (default is $%s or $HOME/%s.yaml)", CONFIG_FILE_ENV_VAR, DEFAULT_CONFIG_NAME))
	rootCmd.PersistentFlags().StringVarP(&config.LogLevel, "log-level", "l", config.INFO,
		"log level for the log file, one of: trace, debug, info, warn, error, fatal, panic")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "",
		"directory that holds the logs/ folder (default is the output directory; no log file without either)")
	rootCmd.PersistentFlags().BoolVarP(&utils.DoNotPrompt, "yes", "y", false,
		"assume answer as yes for all questions (default false)")
}

const outputDirAnnotation = "requires-output-dir"

func registerOutputDirFlag(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "",
		"directory the exported files, the export summary and the logs are written to")
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[outputDirAnnotation] = "true"
}

func requiresOutputDir(cmd *cobra.Command) bool {
	return cmd.Annotations[outputDirAnnotation] == "true"
}

func validateOutputDirFlag() {
	dir, err := checkOutputDir(outputDir)
	if err != nil {
		utils.ErrExit("ERROR: %v", err)
	}
	if dir == "." {
		fmt.Println("Note: Using current working directory as output directory")
	}
	outputDir = dir
}

// checkOutputDir returns the cleaned output directory path. The directory
// must already exist.
func checkOutputDir(dir string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf(`required flag "output-dir" not set`)
	}
	dir = filepath.Clean(dir)
	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("output-dir %q doesn't exist", dir)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("output-dir %q is not a directory", dir)
	}
	return dir, nil
}

func lockOutputDir() {
	lockFilePath, err := filepath.Abs(filepath.Join(outputDir, LOCK_FILE_NAME))
	if err != nil {
		utils.ErrExit("Failed to get absolute path for lockfile %q: %v\n", LOCK_FILE_NAME, err)
	}
	createLock(lockFilePath)
	atexit.Register(unlockOutputDir)
}

func createLock(lockFileName string) {
	var err error
	lockFile, err = lockfile.New(lockFileName)
	if err != nil {
		utils.ErrExit("Failed to create lockfile %q: %v\n", lockFileName, err)
	}

	err = lockFile.TryLock()
	if err == nil {
		dirLocked = true
		return
	} else if err == lockfile.ErrBusy {
		utils.ErrExit("Another instance of access-converter is running in the output-dir = %s\n", outputDir)
	} else {
		utils.ErrExit("Unable to lock the output-dir: %v\n", err)
	}
}

// unlockOutputDir runs from PersistentPostRun and again as an exit hook, so
// it is a no-op once the lock is gone.
func unlockOutputDir() {
	if !dirLocked {
		return
	}
	dirLocked = false
	err := lockFile.Unlock()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to unlock %q: %v\n", string(lockFile), err)
		log.Errorf("unlock %q: %v", string(lockFile), err)
	}
}
