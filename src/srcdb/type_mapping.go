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
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/samber/lo"

	"github.com/baronblk/access-converter/src/types"
)

// Database type names (as reported by the drivers) whose values arrive as text
// but are numbers.
var numericTypeNames = []string{"DECIMAL", "NUMERIC", "CURRENCY", "MONEY", "NUMBER"}

// Database type names whose []byte values must never be treated as text. The
// Access ODBC driver reports no type names at all, so for it the decision is
// made per value by looksBinary.
var binaryTypeNames = []string{"BLOB", "BINARY", "VARBINARY", "LONGBINARY", "LONG VARBINARY", "IMAGE", "OLEOBJECT", "BYTEA"}

func isTypeIn(dbType string, names []string) bool {
	return lo.SomeBy(names, func(name string) bool {
		return dbType == name || strings.HasPrefix(dbType, name+"(")
	})
}

// toValue maps whatever the driver returned for a column into the typed value model.
func toValue(v any, dbType string) types.Value {
	switch v := v.(type) {
	case nil:
		return types.Null
	case int64:
		return types.IntValue(v)
	case int32:
		return types.IntValue(int64(v))
	case int16:
		return types.IntValue(int64(v))
	case int8:
		return types.IntValue(int64(v))
	case int:
		return types.IntValue(int64(v))
	case uint8:
		return types.IntValue(int64(v))
	case uint16:
		return types.IntValue(int64(v))
	case uint32:
		return types.IntValue(int64(v))
	case uint64:
		if v > math.MaxInt64 {
			return types.TextValue(strconv.FormatUint(v, 10))
		}
		return types.IntValue(int64(v))
	case float64:
		return types.FloatValue(v)
	case float32:
		// via the decimal form so 0.1f becomes 0.1 and not 0.10000000149011612
		f, _ := strconv.ParseFloat(strconv.FormatFloat(float64(v), 'g', -1, 32), 64)
		return types.FloatValue(f)
	case bool:
		return types.BoolValue(v)
	case time.Time:
		return types.TimeValue(v)
	case string:
		return textToValue(v, dbType)
	case []byte:
		if isTypeIn(dbType, binaryTypeNames) || looksBinary(v, dbType) {
			return types.BytesValue(v)
		}
		return textToValue(string(v), dbType)
	case *big.Int:
		if v.IsInt64() {
			return types.IntValue(v.Int64())
		}
		return types.TextValue(v.String())
	case interface{ Float64() float64 }:
		// duckdb.Decimal
		return types.FloatValue(v.Float64())
	case fmt.Stringer:
		return types.TextValue(v.String())
	default:
		return types.TextValue(fmt.Sprint(v))
	}
}

// looksBinary reports whether b cannot be text. Without a type name (ANSI
// text and binary columns both arrive as []byte over ODBC) control
// characters other than tab, CR and LF also mark a value as binary; OLE
// objects and attachments always start with some.
func looksBinary(b []byte, dbType string) bool {
	if !utf8.Valid(b) {
		return true
	}
	if dbType != "" {
		return false
	}
	for _, c := range b {
		if (c < 0x20 && c != '\t' && c != '\n' && c != '\r') || c == 0x7f {
			return true
		}
	}
	return false
}

func textToValue(s string, dbType string) types.Value {
	if isTypeIn(dbType, numericTypeNames) {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err == nil {
			return types.FloatValue(f)
		}
	}
	return types.TextValue(s)
}
