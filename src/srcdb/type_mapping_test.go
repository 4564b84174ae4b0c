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
	"math"
	"math/big"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/baronblk/access-converter/src/types"
)

type fakeDecimal struct{ f float64 }

func (d fakeDecimal) Float64() float64 { return d.f }

func TestToValueUntypedBytes(t *testing.T) {
	// ANSI text columns read over ODBC
	assert.Equal(t, types.TextValue("Müller\r\nStraße 1\tEG"), toValue([]byte("Müller\r\nStraße 1\tEG"), ""))
	assert.Equal(t, types.TextValue(""), toValue([]byte{}, ""))
	// OLE object header, valid UTF-8 but not text
	ole := []byte{0x15, 0x1c, 0x32, 0x00, 0x02, 0x00}
	assert.Equal(t, types.BytesValue(ole), toValue(ole, ""))
	assert.Equal(t, types.BytesValue([]byte("a\x00b")), toValue([]byte("a\x00b"), ""))
	// a known text type keeps control characters
	assert.Equal(t, types.TextValue("a\x01b"), toValue([]byte("a\x01b"), "TEXT"))
	assert.Equal(t, types.BytesValue([]byte("plain")), toValue([]byte("plain"), "LONGBINARY"))
}

func TestToValue(t *testing.T) {
	ts := time.Date(1999, 12, 31, 23, 59, 59, 0, time.UTC)
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	cases := []struct {
		in     any
		dbType string
		want   types.Value
	}{
		{nil, "TEXT", types.Null},
		{int64(-7), "INTEGER", types.IntValue(-7)},
		{int32(7), "INTEGER", types.IntValue(7)},
		{int16(7), "SMALLINT", types.IntValue(7)},
		{uint8(255), "BYTE", types.IntValue(255)},
		{uint64(math.MaxUint64), "UBIGINT", types.TextValue("18446744073709551615")},
		{float64(1.5), "DOUBLE", types.FloatValue(1.5)},
		{float32(0.1), "REAL", types.FloatValue(0.1)},
		{true, "BIT", types.BoolValue(true)},
		{ts, "DATETIME", types.TimeValue(ts)},
		{"Grüße", "VARCHAR", types.TextValue("Grüße")},
		{[]byte("plain"), "", types.TextValue("plain")},
		{[]byte("plain"), "BLOB", types.BytesValue([]byte("plain"))},
		{[]byte{0xff, 0xfe, 0x00}, "", types.BytesValue([]byte{0xff, 0xfe, 0x00})},
		{big.NewInt(12), "HUGEINT", types.IntValue(12)},
		{new(big.Int).Lsh(big.NewInt(1), 70), "HUGEINT", types.TextValue("1180591620717411303424")},
		{fakeDecimal{12.34}, "DECIMAL(4,2)", types.FloatValue(12.34)},
		{id, "UUID", types.TextValue("6ba7b810-9dad-11d1-80b4-00c04fd430c8")},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, toValue(c.in, c.dbType), "%T %v", c.in, c.in)
	}
}
