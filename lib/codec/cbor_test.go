// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"encoding/hex"
	"errors"
	"math/big"
	"reflect"
	"strings"
	"testing"

	"github.com/fxamacker/cbor/v2"
)

func mustHex(t *testing.T, text string) []byte {
	t.Helper()
	data, err := hex.DecodeString(text)
	if err != nil {
		t.Fatalf("decoding hex %q: %v", text, err)
	}
	return data
}

func TestDecodeValueTypes(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
		want    any
	}{
		{"unsigned", "1a01011484", uint64(16848004)},
		{"non-minimal unsigned", "19000a", uint64(10)},
		{"negative", "3b4630c0a8d52653c1", int64(-5057754212900164546)},
		{"null", "f6", nil},
		{"byte string", "43010203", []byte{1, 2, 3}},
		{"array", "830102f6", []any{uint64(1), uint64(2), nil}},
		{"empty array", "80", []any{}},
		{"link", "d82a4500" + "01550000", Tag{Number: LinkTag, Content: []byte{0x00, 0x01, 0x55, 0x00, 0x00}}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := DecodeValue(mustHex(t, test.encoded))
			if err != nil {
				t.Fatalf("DecodeValue(%s): %v", test.encoded, err)
			}
			if !reflect.DeepEqual(got, test.want) {
				t.Errorf("DecodeValue(%s) = %#v, want %#v", test.encoded, got, test.want)
			}
		})
	}
}

func TestDecodeValueNegativeOverflow(t *testing.T) {
	// -2^64 does not fit in int64.
	got, err := DecodeValue(mustHex(t, "3bffffffffffffffff"))
	if err != nil {
		t.Fatalf("DecodeValue: %v", err)
	}
	value, ok := got.(big.Int)
	if !ok {
		t.Fatalf("DecodeValue = %T, want big.Int", got)
	}
	want := new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 64))
	if value.Cmp(want) != 0 {
		t.Errorf("DecodeValue = %s, want %s", value.String(), want)
	}
}

func TestDecodeValueErrors(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
	}{
		{"empty", ""},
		{"trailing bytes", "0100"},
		{"truncated array", "8301"},
		{"truncated byte string", "4401"},
		{"reserved additional info", "1c"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := DecodeValue(mustHex(t, test.encoded)); err == nil {
				t.Errorf("DecodeValue(%s) succeeded", test.encoded)
			}
		})
	}
}

func TestDecodeValueArrayLimit(t *testing.T) {
	// An array header claiming one element more than the limit, with
	// no elements following. The length alone must be rejected.
	_, err := DecodeValue(mustHex(t, "9a00100001"))
	var limitError *cbor.MaxArrayElementsError
	if !errors.As(err, &limitError) {
		t.Fatalf("DecodeValue = %v, want *cbor.MaxArrayElementsError", err)
	}
}

func TestMarshalLinkTag(t *testing.T) {
	link := Tag{Number: LinkTag, Content: []byte{0x00, 0x01, 0x55, 0x00, 0x00}}
	data, err := Marshal([]any{uint64(5), link})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := mustHex(t, "8205d82a450001550000")
	if !bytes.Equal(data, want) {
		t.Errorf("Marshal = %x, want %x", data, want)
	}
}

func TestMarshalDeterministic(t *testing.T) {
	header := map[string]any{"version": uint64(1), "roots": []any{}}

	first, err := Marshal(header)
	if err != nil {
		t.Fatalf("first Marshal: %v", err)
	}
	second, err := Marshal(header)
	if err != nil {
		t.Fatalf("second Marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("deterministic encoding violated: %x != %x", first, second)
	}
	// Core deterministic encoding sorts keys by their encoded bytes, so
	// "roots" precedes "version".
	if !bytes.Equal(first[:7], mustHex(t, "a265726f6f7473")) {
		t.Errorf("encoded header = %x, want it to start with the roots key", first)
	}
}

func TestDiagnoseFirstLink(t *testing.T) {
	notation, rest, err := DiagnoseFirst(mustHex(t, "8205d82a450001550000"))
	if err != nil {
		t.Fatalf("DiagnoseFirst: %v", err)
	}
	if notation != "[5, 42(h'0001550000')]" {
		t.Errorf("DiagnoseFirst = %q", notation)
	}
	if len(rest) != 0 {
		t.Errorf("rest = %x, want empty", rest)
	}
}

func TestDiagnoseFirstTrailingBytes(t *testing.T) {
	notation, rest, err := DiagnoseFirst(mustHex(t, "8205f6" + "ff00"))
	if err != nil {
		t.Fatalf("DiagnoseFirst: %v", err)
	}
	if notation != "[5, null]" {
		t.Errorf("notation = %q, want [5, null]", notation)
	}
	if !bytes.Equal(rest, []byte{0xff, 0x00}) {
		t.Errorf("rest = %x, want ff00", rest)
	}
	if _, err := DecodeValue(mustHex(t, "8205f6ff00")); err == nil {
		t.Error("DecodeValue accepted trailing bytes")
	}
}

func TestDiagnoseFirst(t *testing.T) {
	// Two data items back to back: a header and the start of a record.
	sequence := mustHex(t, "a0" + "8301f6f6")

	notation, remaining, err := DiagnoseFirst(sequence)
	if err != nil {
		t.Fatalf("DiagnoseFirst: %v", err)
	}
	if notation != "{}" {
		t.Errorf("first item notation = %q, want {}", notation)
	}

	notation, remaining, err = DiagnoseFirst(remaining)
	if err != nil {
		t.Fatalf("DiagnoseFirst second: %v", err)
	}
	if !strings.Contains(notation, "null") {
		t.Errorf("second item notation %q does not contain null", notation)
	}
	if len(remaining) != 0 {
		t.Errorf("expected no remaining bytes, got %d", len(remaining))
	}
}

func BenchmarkDecodeValue(b *testing.B) {
	data, err := Marshal([]any{uint64(6), uint64(1), uint64(0), uint64(2), bytes.Repeat([]byte{0xab}, 4096), []any{}})
	if err != nil {
		b.Fatal(err)
	}

	b.SetBytes(int64(len(data)))
	b.ReportAllocs()
	for b.Loop() {
		DecodeValue(data)
	}
}
