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
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/baronblk/access-converter/src/config"
	"github.com/baronblk/access-converter/src/srcdb"
)

type MyFormatter struct{}

var levelList = []string{
	"PANIC",
	"FATAL",
	"ERROR",
	"WARN",
	"INFO",
	"DEBUG",
	"TRACE",
}

func (mf *MyFormatter) Format(entry *log.Entry) ([]byte, error) {
	level := levelList[int(entry.Level)]
	fileName := "-"
	line := 0
	if entry.Caller != nil {
		fileName = filepath.Base(entry.Caller.File)
		line = entry.Caller.Line
	}
	// Example log line:
	// 2024-03-23 12:16:42 INFO export.go:27 Logging initialised.
	msg := fmt.Sprintf("%s %s %s:%d %s",
		entry.Time.Format("2006-01-02 15:04:05"), level,
		fileName, line, entry.Message)
	if len(entry.Data) > 0 {
		msg += " " + formatFields(entry.Data)
	}
	return []byte(msg + "\n"), nil
}

// formatFields renders structured fields as sorted key=value pairs.
func formatFields(data log.Fields) string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, data[k])
	}
	return strings.Join(parts, " ")
}

func InitLogging(logDir string, disableLogging bool, cmdName string) {
	log.SetLevel(config.LogrusLevel())
	if disableLogging {
		log.SetOutput(io.Discard)
		return
	}
	logFileName := filepath.Join(logDir, "logs", fmt.Sprintf("access-converter-%s.log", cmdName))

	// logRotator creates the "logs" folder and the log file if they do not exist.
	logRotator := &lumberjack.Logger{
		Filename:   logFileName,
		MaxSize:    200, // 200 MB log size before rotation
		MaxBackups: 10,  // Allow upto 10 logs at once before deleting oldest logs.
	}
	log.SetOutput(logRotator)

	log.SetReportCaller(true)
	log.SetFormatter(&MyFormatter{})
	log.Info("Logging initialised.")
	redactSecretsFromArgs()
	log.Infof("Args: %v", os.Args)
	log.Infof("\n%s", getVersionInfo())
}

var secretFlags = []string{"--source-conn-string"}

// redactSecretsFromArgs hides the password inside connection strings passed
// on the command line, in both "--flag value" and "--flag=value" form.
func redactSecretsFromArgs() {
	for i := 0; i < len(os.Args); i++ {
		opt := os.Args[i]
		for _, flag := range secretFlags {
			if opt == flag && i+1 < len(os.Args) {
				os.Args[i+1] = srcdb.RedactConnString(os.Args[i+1])
			} else if strings.HasPrefix(opt, flag+"=") {
				os.Args[i] = flag + "=" + srcdb.RedactConnString(strings.TrimPrefix(opt, flag+"="))
			}
		}
	}
}
