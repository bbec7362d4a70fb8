// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package payload

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// MaxDecompressedSize bounds the output of a single decompression. A
// reassembled buffer is at most a few data frames; output past this
// bound means a corrupt or hostile frame header.
const MaxDecompressedSize = 256 << 20

// ErrTooLarge is returned when decompressed output would exceed
// [MaxDecompressedSize].
var ErrTooLarge = errors.New("payload: decompressed size exceeds limit")

// Compression identifies the format of a buffer.
type Compression uint8

const (
	// None means the buffer did not start with a known magic number.
	None Compression = iota
	Zstd
	LZ4
)

// String returns the lowercase format name.
func (c Compression) String() string {
	switch c {
	case None:
		return "none"
	case Zstd:
		return "zstd"
	case LZ4:
		return "lz4"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

var (
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	lz4Magic  = []byte{0x04, 0x22, 0x4d, 0x18}
)

// Detect reports the compression format of data from its magic number.
func Detect(data []byte) Compression {
	switch {
	case bytes.HasPrefix(data, zstdMagic):
		return Zstd
	case bytes.HasPrefix(data, lz4Magic):
		return LZ4
	default:
		return None
	}
}

// zstdDecoder is shared across calls; zstd.Decoder is safe for
// concurrent DecodeAll.
var zstdDecoder *zstd.Decoder

func init() {
	var err error
	zstdDecoder, err = zstd.NewReader(nil,
		zstd.WithDecoderMaxMemory(MaxDecompressedSize),
	)
	if err != nil {
		panic("payload: zstd decoder initialization failed: " + err.Error())
	}
}

// Decompress returns the uncompressed contents of data along with the
// detected format. Data in no known format is returned unchanged,
// without a copy.
func Decompress(data []byte) ([]byte, Compression, error) {
	compression := Detect(data)
	switch compression {
	case Zstd:
		result, err := decompressZstd(data)
		return result, compression, err
	case LZ4:
		result, err := decompressLZ4(data)
		return result, compression, err
	default:
		return data, None, nil
	}
}

func decompressZstd(data []byte) ([]byte, error) {
	result, err := zstdDecoder.DecodeAll(data, nil)
	if errors.Is(err, zstd.ErrDecoderSizeExceeded) || errors.Is(err, zstd.ErrWindowSizeExceeded) {
		return nil, fmt.Errorf("zstd decompress: %w", ErrTooLarge)
	}
	if err != nil {
		return nil, fmt.Errorf("zstd decompress: %w", err)
	}
	return result, nil
}

func decompressLZ4(data []byte) ([]byte, error) {
	reader := lz4.NewReader(bytes.NewReader(data))
	var output bytes.Buffer
	written, err := io.Copy(&output, io.LimitReader(reader, MaxDecompressedSize+1))
	if err != nil {
		return nil, fmt.Errorf("lz4 decompress: %w", err)
	}
	if written > MaxDecompressedSize {
		return nil, fmt.Errorf("lz4 decompress: %w", ErrTooLarge)
	}
	return output.Bytes(), nil
}
