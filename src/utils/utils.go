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
package utils

import (
	"fmt"
	"os"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/constraints"
)

var DoNotPrompt bool

func AskPrompt(args ...string) bool {
	if DoNotPrompt {
		return true
	}
	var input string
	var argsLen int = len(args)

	for i := 0; i < argsLen; i++ {
		if i != argsLen-1 {
			fmt.Printf("%s ", args[i])
		} else {
			fmt.Printf("%s", args[i])
		}

	}
	fmt.Printf("? [Y/N]: ")

	_, err := fmt.Scan(&input)
	if err != nil {
		log.Warnf("reading answer to prompt: %v", err)
		return false
	}

	input = strings.TrimSpace(input)
	input = strings.ToUpper(input)

	return input == "Y" || input == "YES"
}

func FileOrFolderExists(path string) bool {
	_, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false
		} else {
			panic(err)
		}
	} else {
		return true
	}
}

// FileSize returns the size of the file in bytes, or -1 if it cannot be stat'ed.
func FileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		log.Warnf("stat %q: %v", path, err)
		return -1
	}
	return info.Size()
}

// RemoveIfExists deletes a file, treating a missing file as success.
func RemoveIfExists(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

const invalidFileNameChars = `<>:"/\|?*`

// SanitizeFileName replaces characters that are not allowed in file names on
// Windows and trims leading/trailing dots and spaces.
func SanitizeFileName(name string) string {
	sanitized := strings.Map(func(r rune) rune {
		if strings.ContainsRune(invalidFileNameChars, r) || r < 0x20 {
			return '_'
		}
		return r
	}, name)
	sanitized = strings.Trim(sanitized, ". ")
	if sanitized == "" {
		sanitized = "_"
	}
	return sanitized
}

func CsvStringToSlice(str string) []string {
	if strings.TrimSpace(str) == "" {
		return nil
	}
	result := strings.Split(str, ",")
	for i := 0; i < len(result); i++ {
		result[i] = strings.Trim(result[i], " ")
	}

	return result
}

func GetSortedKeys[K constraints.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
