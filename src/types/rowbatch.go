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
package types

import "github.com/samber/lo"

const DEFAULT_CHUNK_SIZE = 1000

type Column struct {
	Name string
	// As reported by the driver, upper-cased. Empty when the driver does not report it.
	DatabaseType string
	Nullable     bool
}

func ColumnNames(columns []Column) []string {
	return lo.Map(columns, func(c Column, _ int) string { return c.Name })
}

// Row holds one value per column, in column order.
type Row []Value

// RowBatch is a bounded slice of consecutive source rows.
type RowBatch struct {
	Columns []Column
	Rows    []Row
	// Zero based position of the batch within its table.
	Index int
	// Number of table rows that precede the first row of this batch.
	Offset int64
}

func (b *RowBatch) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Rows)
}

// TableInfo is what a writer needs to know about the table before the first batch arrives.
type TableInfo struct {
	Name    string
	Columns []Column
	// Advisory, -1 when unknown.
	RowCount int64
}
