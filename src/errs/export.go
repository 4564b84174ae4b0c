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

package errs

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// error kinds
	CONNECTION_ERROR         = "connection_error"
	TABLE_NOT_FOUND_ERROR    = "table_not_found"
	READ_ERROR               = "read_error"
	WRITE_ERROR              = "write_error"
	UNSUPPORTED_FORMAT_ERROR = "unsupported_format"
	EXPORT_ERROR             = "export_error"

	// steps of the export table flow
	EXPORT_STEP_VALIDATE_JOB  = "validate_job"
	EXPORT_STEP_RESOLVE_TABLE = "resolve_table"
	EXPORT_STEP_OPEN_READER   = "open_reader"
	EXPORT_STEP_OPEN_WRITER   = "open_writer"
	EXPORT_STEP_READ_BATCH    = "read_batch"
	EXPORT_STEP_WRITE_BATCH   = "write_batch"
	EXPORT_STEP_FINALIZE      = "finalize"
	EXPORT_STEP_CANCELLED     = "cancelled"
)

// KindOf returns the kind of the first typed error found in err's chain, or
// EXPORT_ERROR if there is none.
func KindOf(err error) string {
	var k interface{ Kind() string }
	if errors.As(err, &k) {
		return k.Kind()
	}
	return EXPORT_ERROR
}

type ConnectionError struct {
	Target string // file path or connection string with secrets removed
	err    error
}

func NewConnectionError(target string, err error) *ConnectionError {
	return &ConnectionError{Target: target, err: err}
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connect to source %q: %s", e.Target, e.err)
}

func (e *ConnectionError) Kind() string  { return CONNECTION_ERROR }
func (e *ConnectionError) Unwrap() error { return e.err }

type TableNotFoundError struct {
	TableName       string
	ValidTableNames []string
}

func NewTableNotFoundError(tableName string, validTableNames []string) *TableNotFoundError {
	return &TableNotFoundError{TableName: tableName, ValidTableNames: validTableNames}
}

func (e *TableNotFoundError) Error() string {
	if len(e.ValidTableNames) == 0 {
		return fmt.Sprintf("table %q not found in source", e.TableName)
	}
	return fmt.Sprintf("table %q not found in source. Valid table names are: %v", e.TableName, e.ValidTableNames)
}

func (e *TableNotFoundError) Kind() string { return TABLE_NOT_FOUND_ERROR }

type ReadError struct {
	TableName  string
	BatchIndex int
	err        error
}

func NewReadError(tableName string, batchIndex int, err error) *ReadError {
	return &ReadError{TableName: tableName, BatchIndex: batchIndex, err: err}
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read table %q at batch %d: %s", e.TableName, e.BatchIndex, e.err)
}

func (e *ReadError) Kind() string  { return READ_ERROR }
func (e *ReadError) Unwrap() error { return e.err }

type WriteError struct {
	TableName string
	FilePath  string
	err       error
}

func NewWriteError(tableName, filePath string, err error) *WriteError {
	return &WriteError{TableName: tableName, FilePath: filePath, err: err}
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write table %q to %q: %s", e.TableName, e.FilePath, e.err)
}

func (e *WriteError) Kind() string  { return WRITE_ERROR }
func (e *WriteError) Unwrap() error { return e.err }

type UnsupportedFormatError struct {
	Format           string
	SupportedFormats []string
}

func NewUnsupportedFormatError(format string, supported []string) *UnsupportedFormatError {
	return &UnsupportedFormatError{Format: format, SupportedFormats: supported}
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported export format %q. Supported formats are: %s", e.Format, strings.Join(e.SupportedFormats, ", "))
}

func (e *UnsupportedFormatError) Kind() string { return UNSUPPORTED_FORMAT_ERROR }

// ExportError is what the export of a single table fails with. It records the
// step that failed and the steps that had completed before it.
type ExportError struct {
	TableName  string
	Format     string
	steps      []string
	failedStep string
	err        error
}

func (e *ExportError) Error() string {
	if len(e.steps) > 0 {
		return fmt.Sprintf("export table %q as %s failed at step '%s', after steps - (%s): %s",
			e.TableName, e.Format, e.failedStep, strings.Join(e.steps, ", "), e.err.Error())
	}
	return fmt.Sprintf("export table %q as %s failed at step '%s': %s",
		e.TableName, e.Format, e.failedStep, e.err.Error())
}

// Kind is the kind of the wrapped error.
func (e *ExportError) Kind() string {
	return KindOf(e.err)
}

func (e *ExportError) Steps() []string {
	return e.steps
}

func (e *ExportError) FailedStep() string {
	return e.failedStep
}

// DriverMessage is the message of the innermost error, which is usually what
// the database driver or the OS reported.
func (e *ExportError) DriverMessage() string {
	inner := e.err
	for {
		next := errors.Unwrap(inner)
		if next == nil {
			return inner.Error()
		}
		inner = next
	}
}

func (e *ExportError) Unwrap() error {
	return e.err
}

// NewExportError creates a new error with the completed steps of the flow.
func NewExportError(tableName, format string, steps []string, failedStep string, err error) *ExportError {
	return &ExportError{
		TableName:  tableName,
		Format:     format,
		steps:      append([]string(nil), steps...),
		failedStep: failedStep,
		err:        err,
	}
}

type UnknownTableErr struct {
	typeOfList      string
	unknownTables   []string
	validTableNames []string
}

func (e *UnknownTableErr) Error() string {
	return fmt.Sprintf("\nUnknown table names in the %s list: %v\nValid table names are: %v", e.typeOfList, e.unknownTables, e.validTableNames)
}

func NewUnknownTableErr(typeOfList string, unknownTables []string, validTableNames []string) *UnknownTableErr {
	return &UnknownTableErr{
		typeOfList:      typeOfList,
		unknownTables:   unknownTables,
		validTableNames: validTableNames,
	}
}
