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

import (
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"time"
)

type Kind int

const (
	KindNull Kind = iota
	KindText
	KindInt
	KindFloat
	KindBool
	KindTime
	KindBytes
)

var kindNames = map[Kind]string{
	KindNull:  "null",
	KindText:  "text",
	KindInt:   "integer",
	KindFloat: "float",
	KindBool:  "boolean",
	KindTime:  "datetime",
	KindBytes: "bytes",
}

func (k Kind) String() string {
	name, ok := kindNames[k]
	if !ok {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return name
}

// TimeFormat is the text form of datetime values in every text based format.
// It is RFC 3339 with nanoseconds, so parsing it back yields the same instant.
const TimeFormat = time.RFC3339Nano

// Value is a single typed cell read from the source. Only the field matching
// Kind is meaningful.
type Value struct {
	Kind  Kind
	Str   string
	Int   int64
	Float float64
	Bool  bool
	Time  time.Time
	Bytes []byte
}

var Null = Value{Kind: KindNull}

func TextValue(s string) Value { return Value{Kind: KindText, Str: s} }
func IntValue(i int64) Value { return Value{Kind: KindInt, Int: i} }
func FloatValue(f float64) Value { return Value{Kind: KindFloat, Float: f} }
func BoolValue(b bool) Value { return Value{Kind: KindBool, Bool: b} }
func TimeValue(t time.Time) Value { return Value{Kind: KindTime, Time: t} }
func BytesValue(b []byte) Value { return Value{Kind: KindBytes, Bytes: b} }
func (v Value) IsNull() bool { return v.Kind == KindNull }
func (v Value) IsNumeric() bool { return v.Kind == KindInt || v.Kind == KindFloat }

// String renders the value the same way on every machine: no locale, no
// thousands separators, shortest decimal form that parses back to the same
// float. Null renders as the empty string.
func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return ""
	case KindText:
		return v.Str
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return FormatFloat(v.Float)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindTime:
		return v.Time.Format(TimeFormat)
	case KindBytes:
		return base64.StdEncoding.EncodeToString(v.Bytes)
	default:
		return fmt.Sprintf("%v", v.Str)
	}
}

// Interface returns the value as a plain Go value: nil, string, int64,
// float64, bool, time.Time or []byte.
func (v Value) Interface() any {
	switch v.Kind {
	case KindText:
		return v.Str
	case KindInt:
		return v.Int
	case KindFloat:
		return v.Float
	case KindBool:
		return v.Bool
	case KindTime:
		return v.Time
	case KindBytes:
		return v.Bytes
	default:
		return nil
	}
}

func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
