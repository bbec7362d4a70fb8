// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package node

import "github.com/bureau-foundation/carchive/lib/identifier"

// DataFrame is one chunk of a byte buffer that may be split across
// several records. The first frame of a chain carries the checksum of
// the whole reassembled buffer; Next links to the frames that follow.
//
//	[6, checksum?, index?, total?, data, next?]
type DataFrame struct {
	Checksum *uint64
	Index    *uint64
	Total    *uint64
	Data     []byte

	// Next is empty for a single-frame buffer and for the last frame
	// of a chain. Frames nested inside a Transaction may omit it.
	Next []identifier.Identifier
}

const dataFrameArity = 6

func (*DataFrame) Kind() Kind { return KindDataFrame }
func (*DataFrame) isNode()    {}

// HasContinuation reports whether more frames follow this one.
func (f *DataFrame) HasContinuation() bool { return len(f.Next) > 0 }

func decodeDataFrame(path string, value any) (*DataFrame, error) {
	fields, err := openTuple(path, value, dataFrameArity)
	if err != nil {
		return nil, err
	}
	if err := fields.checkKind(KindDataFrame); err != nil {
		return nil, err
	}

	var frame DataFrame
	if frame.Checksum, err = fields.optionalUnsigned(1, "checksum"); err != nil {
		return nil, err
	}
	if frame.Index, err = fields.optionalUnsigned(2, "index"); err != nil {
		return nil, err
	}
	if frame.Total, err = fields.optionalUnsigned(3, "total"); err != nil {
		return nil, err
	}
	if frame.Data, err = fields.bytes(4, "data"); err != nil {
		return nil, err
	}
	if frame.Next, err = fields.optionalLinks(5, "next"); err != nil {
		return nil, err
	}
	return &frame, nil
}
