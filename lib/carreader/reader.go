// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package carreader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/bureau-foundation/carchive/lib/identifier"
	"github.com/bureau-foundation/carchive/lib/varint"
)

const (
	// DefaultMaxHeaderSize bounds the archive header. The header is a
	// small CBOR map (version and roots), never more than a few
	// hundred bytes.
	DefaultMaxHeaderSize = 1024

	// DefaultMaxSectionSize bounds a single section: one identifier
	// plus one record payload.
	DefaultMaxSectionSize = 32 << 20

	// DefaultBufferSize is the read buffer placed in front of the
	// source.
	DefaultBufferSize = 1 << 20

	// HeaderSizeCeiling and SectionSizeCeiling cap configured limits.
	// A section length is allocated in full before its bytes are
	// read, so an unbounded limit would let a corrupt prefix request
	// an arbitrary allocation.
	HeaderSizeCeiling  = 1 << 20
	SectionSizeCeiling = 1 << 30
)

var (
	ErrHeaderTooLong  = errors.New("carreader: header too long")
	ErrSectionTooLong = errors.New("carreader: section too long")
)

// Limits caps the lengths a Reader will allocate for. A corrupt or
// hostile length prefix fails with a [*SizeError] before any of the
// declared bytes are read. Zero fields use the defaults, and fields
// above [HeaderSizeCeiling] or [SectionSizeCeiling] are clamped to
// them.
type Limits struct {
	MaxHeaderSize  uint64
	MaxSectionSize uint64
}

// DefaultLimits returns the limits archive writers are known to stay
// within.
func DefaultLimits() Limits {
	return Limits{MaxHeaderSize: DefaultMaxHeaderSize, MaxSectionSize: DefaultMaxSectionSize}
}

func (l Limits) withDefaults() Limits {
	if l.MaxHeaderSize == 0 {
		l.MaxHeaderSize = DefaultMaxHeaderSize
	}
	if l.MaxSectionSize == 0 {
		l.MaxSectionSize = DefaultMaxSectionSize
	}
	l.MaxHeaderSize = min(l.MaxHeaderSize, HeaderSizeCeiling)
	l.MaxSectionSize = min(l.MaxSectionSize, SectionSizeCeiling)
	return l
}

// Options configures a Reader beyond its limits.
type Options struct {
	Limits Limits

	// BufferSize is the size of the read buffer. If zero or negative,
	// DefaultBufferSize is used.
	BufferSize int

	// Logger receives debug records for the header and each section.
	// If nil, a no-op logger is used.
	Logger *slog.Logger
}

// SizeError reports a length prefix over its limit.
type SizeError struct {
	// Err is ErrHeaderTooLong or ErrSectionTooLong.
	Err error

	// Size is the declared length; Max is the limit it exceeded.
	Size uint64
	Max  uint64

	// Offset is the stream offset of the length prefix.
	Offset int64
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("%v: %d bytes at offset %d (max %d)", e.Err, e.Size, e.Offset, e.Max)
}

func (e *SizeError) Unwrap() error { return e.Err }

// RawNode is one section split into its identifier and the record
// payload that follows it. The payload is not decoded.
type RawNode struct {
	ID identifier.Identifier

	// Offset is the stream offset of the section's length prefix.
	Offset int64

	section       []byte
	payloadOffset int
}

// Payload returns the record payload bytes.
func (n *RawNode) Payload() []byte { return n.section[n.payloadOffset:] }

// Section returns the whole section: identifier encoding and payload.
func (n *RawNode) Section() []byte { return n.section }

// PayloadOffset is the length of the identifier encoding, which is
// where the payload starts within Section.
func (n *RawNode) PayloadOffset() int { return n.payloadOffset }

// Reader reads length-prefixed sections from an archive stream. The
// header is read on first use. A Reader is not safe for concurrent
// use.
type Reader struct {
	source *countingReader
	limits Limits
	logger *slog.Logger

	header     []byte
	headerRead bool
	sections   int64
}

// New returns a Reader over r with the given limits.
func New(r io.Reader, limits Limits) *Reader {
	return NewWithOptions(r, Options{Limits: limits})
}

// NewWithOptions returns a Reader over r.
func NewWithOptions(r io.Reader, options Options) *Reader {
	bufferSize := options.BufferSize
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Reader{
		source: &countingReader{reader: bufio.NewReaderSize(r, bufferSize)},
		limits: options.Limits.withDefaults(),
		logger: logger,
	}
}

// ReadHeader returns the archive header bytes, reading them from the
// stream on the first call. An empty or truncated stream fails with
// an error wrapping io.ErrUnexpectedEOF.
func (r *Reader) ReadHeader() ([]byte, error) {
	if r.headerRead {
		return r.header, nil
	}

	start := r.source.offset
	length, err := varint.Read(r.source)
	if err != nil {
		return nil, fmt.Errorf("reading header length: %w", noEOF(err))
	}
	if length > r.limits.MaxHeaderSize {
		return nil, &SizeError{Err: ErrHeaderTooLong, Size: length, Max: r.limits.MaxHeaderSize, Offset: start}
	}

	header := make([]byte, length)
	if _, err := io.ReadFull(r.source, header); err != nil {
		return nil, fmt.Errorf("reading %d-byte header: %w", length, noEOF(err))
	}

	r.header = header
	r.headerRead = true
	r.logger.Debug("archive header read", "length", length)
	return r.header, nil
}

// ReadSection returns the next section's bytes without decoding them.
// It returns io.EOF, unwrapped, only when the stream ends exactly
// where a section length would begin. A stream that ends anywhere
// else fails with an error wrapping io.ErrUnexpectedEOF.
func (r *Reader) ReadSection() ([]byte, error) {
	section, _, err := r.readSection()
	return section, err
}

func (r *Reader) readSection() ([]byte, int64, error) {
	if _, err := r.ReadHeader(); err != nil {
		return nil, 0, err
	}

	start := r.source.offset
	length, err := varint.Read(r.source)
	if err == io.EOF {
		r.logger.Debug("archive end", "sections", r.sections, "offset", start)
		return nil, 0, io.EOF
	}
	if err != nil {
		return nil, 0, fmt.Errorf("reading section length at offset %d: %w", start, err)
	}
	if length > r.limits.MaxSectionSize {
		return nil, 0, &SizeError{Err: ErrSectionTooLong, Size: length, Max: r.limits.MaxSectionSize, Offset: start}
	}

	section := make([]byte, length)
	if _, err := io.ReadFull(r.source, section); err != nil {
		return nil, 0, fmt.Errorf("reading %d-byte section at offset %d: %w", length, start, noEOF(err))
	}
	r.sections++
	return section, start, nil
}

// ReadNode reads the next section and splits off its identifier. It
// returns io.EOF under the same conditions as ReadSection.
func (r *Reader) ReadNode() (*RawNode, error) {
	section, start, err := r.readSection()
	if err != nil {
		return nil, err
	}
	id, payloadOffset, err := identifier.Decode(section)
	if err != nil {
		return nil, fmt.Errorf("decoding section at offset %d: %w", start, err)
	}
	r.logger.Debug("section read",
		"offset", start,
		"identifier", id,
		"length", len(section),
	)
	return &RawNode{ID: id, Offset: start, section: section, payloadOffset: payloadOffset}, nil
}

// Offset returns the number of bytes consumed from the stream.
func (r *Reader) Offset() int64 { return r.source.offset }

// Sections returns the number of sections read so far.
func (r *Reader) Sections() int64 { return r.sections }

// noEOF converts io.EOF into io.ErrUnexpectedEOF, for reads where
// the stream must not end.
func noEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

// countingReader tracks the stream offset for error messages.
type countingReader struct {
	reader *bufio.Reader
	offset int64
}

func (c *countingReader) ReadByte() (byte, error) {
	b, err := c.reader.ReadByte()
	if err == nil {
		c.offset++
	}
	return b, err
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.reader.Read(p)
	c.offset += int64(n)
	return n, err
}
