// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package payload

import (
	"bytes"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

func mustHex(t *testing.T, text string) []byte {
	t.Helper()
	data, err := hex.DecodeString(text)
	if err != nil {
		t.Fatalf("decoding hex %q: %v", text, err)
	}
	return data
}

func TestDecompressRewardsVector(t *testing.T) {
	// Rewards payload from an early mainnet block: a zstd frame holding
	// one raw block of eight zero bytes, with a content checksum.
	data := mustHex(t, "28b52ffd04004100000000000000000000bb1bdbca")

	result, compression, err := Decompress(data)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if compression != Zstd {
		t.Errorf("compression = %v, want zstd", compression)
	}
	if !bytes.Equal(result, make([]byte, 8)) {
		t.Errorf("Decompress = %x, want eight zero bytes", result)
	}
}

func TestDecompressZstdRoundtrip(t *testing.T) {
	original := bytes.Repeat([]byte("transaction status meta "), 200)
	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatalf("zstd.NewWriter: %v", err)
	}
	compressed := encoder.EncodeAll(original, nil)
	encoder.Close()

	result, compression, err := Decompress(compressed)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if compression != Zstd {
		t.Errorf("compression = %v, want zstd", compression)
	}
	if !bytes.Equal(result, original) {
		t.Errorf("Decompress returned %d bytes, want %d", len(result), len(original))
	}
}

func TestDecompressLZ4Roundtrip(t *testing.T) {
	original := bytes.Repeat([]byte("rewards "), 500)
	var compressed bytes.Buffer
	writer := lz4.NewWriter(&compressed)
	if _, err := writer.Write(original); err != nil {
		t.Fatalf("lz4 Write: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("lz4 Close: %v", err)
	}

	if Detect(compressed.Bytes()) != LZ4 {
		t.Fatalf("Detect = %v, want lz4", Detect(compressed.Bytes()))
	}
	result, compression, err := Decompress(compressed.Bytes())
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if compression != LZ4 {
		t.Errorf("compression = %v, want lz4", compression)
	}
	if !bytes.Equal(result, original) {
		t.Errorf("Decompress returned %d bytes, want %d", len(result), len(original))
	}
}

func TestDecompressPassthrough(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", []byte{}},
		{"nil", nil},
		{"protobuf", []byte{0x0a, 0x03, 0x01, 0x02, 0x03}},
		{"partial magic", []byte{0x28, 0xb5, 0x2f}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result, compression, err := Decompress(test.data)
			if err != nil {
				t.Fatalf("Decompress: %v", err)
			}
			if compression != None {
				t.Errorf("compression = %v, want none", compression)
			}
			if !bytes.Equal(result, test.data) {
				t.Errorf("Decompress = %x, want %x", result, test.data)
			}
		})
	}
}

func TestDecompressCorrupt(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"zstd bad checksum", "28b52ffd04004100000000000000000000bb1bdbcb"},
		{"zstd truncated", "28b52ffd0400410000"},
		{"lz4 truncated", "04224d1864"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, _, err := Decompress(mustHex(t, test.data)); err == nil {
				t.Errorf("Decompress(%s) succeeded", test.data)
			}
		})
	}
}

func TestDecompressDeclaredSizeTooLarge(t *testing.T) {
	// Single-segment zstd frame declaring 4 GiB of content followed by
	// an empty last block.
	data := mustHex(t, "28b52ffd"+"e0"+"0000000001000000"+"010000")
	_, _, err := Decompress(data)
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("Decompress = %v, want ErrTooLarge", err)
	}
}

func TestCompressionString(t *testing.T) {
	tests := []struct {
		compression Compression
		want        string
	}{
		{None, "none"},
		{Zstd, "zstd"},
		{LZ4, "lz4"},
		{Compression(9), "unknown(9)"},
	}
	for _, test := range tests {
		if got := test.compression.String(); got != test.want {
			t.Errorf("Compression(%d).String() = %q, want %q", uint8(test.compression), got, test.want)
		}
	}
}
