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
package jsonfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"

	"github.com/baronblk/access-converter/src/utils"
)

// JsonFile is a JSON document on disk holding one value of type T. Writes
// go to a temporary file that is renamed over the target, so readers never
// see a half written document.
type JsonFile[T any] struct {
	sync.Mutex
	FilePath string
}

func NewJsonFile[T any](filePath string) *JsonFile[T] {
	return &JsonFile[T]{FilePath: filePath}
}

func (j *JsonFile[T]) Create(obj *T) error {
	j.Lock()
	defer j.Unlock()
	return j.write(obj)
}

func (j *JsonFile[T]) Exists() bool {
	return utils.FileOrFolderExists(j.FilePath)
}

func (j *JsonFile[T]) Read() (*T, error) {
	j.Lock()
	defer j.Unlock()
	return j.read()
}

func (j *JsonFile[T]) read() (*T, error) {
	bs, err := os.ReadFile(j.FilePath)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", j.FilePath, err)
	}
	if len(bs) == 0 {
		return nil, fmt.Errorf("file %s is empty", j.FilePath)
	}
	obj := new(T)
	err = json.Unmarshal(bs, obj)
	if err != nil {
		return nil, fmt.Errorf("unmarshal json from %s: %w", j.FilePath, err)
	}
	return obj, nil
}

func (j *JsonFile[T]) write(obj *T) error {
	bs, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(j.FilePath), filepath.Base(j.FilePath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", j.FilePath, err)
	}
	defer os.Remove(tmp.Name())
	_, err = tmp.Write(append(bs, '\n'))
	if err == nil {
		err = tmp.Close()
	} else {
		tmp.Close()
	}
	if err != nil {
		return fmt.Errorf("write file %s: %w", tmp.Name(), err)
	}
	err = os.Rename(tmp.Name(), j.FilePath)
	if err != nil {
		return fmt.Errorf("rename %s to %s: %w", tmp.Name(), j.FilePath, err)
	}
	return nil
}

// Delete removes the file. A file that does not exist is not an error.
func (j *JsonFile[T]) Delete() error {
	j.Lock()
	defer j.Unlock()
	err := os.Remove(j.FilePath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", j.FilePath, err)
	}
	return nil
}
