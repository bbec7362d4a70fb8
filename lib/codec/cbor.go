// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// LinkTag is the CBOR tag number wrapping an embedded identifier.
const LinkTag = 42

// MaxArrayElements bounds the length of any single CBOR array in a
// record payload. Subsets and epochs list thousands of links; anything
// near this bound is a corrupt length prefix, not a real record.
const MaxArrayElements = 1 << 20

// encMode is the CBOR encoder configured with Core Deterministic
// Encoding (RFC 8949 §4.2). Archives are only ever read, so the
// encoder exists to build test fixtures that match what archive
// writers emit.
var encMode cbor.EncMode

// decMode decodes record payloads. Payloads are decoded into generic
// values (any) and then walked positionally, so the settings here
// decide which Go types a record decoder will see:
//
//   - unsigned integers become uint64, negative integers int64
//   - byte strings become []byte
//   - arrays become []any
//   - unregistered tags (including the link tag) become [Tag]
//   - null and undefined become nil
var decMode cbor.DecMode

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		MaxArrayElements: MaxArrayElements,
		// Record payloads never contain maps, but inspect output
		// handles arbitrary sections and must not trip over
		// non-string keys.
		DefaultMapType: reflect.TypeOf(map[any]any(nil)),
		IntDec:         cbor.IntDecConvertNone,
		// Duplicate keys are a writer bug that inspect should still
		// be able to display.
		DupMapKey: cbor.DupMapKeyQuiet,
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// Marshal encodes v to CBOR using Core Deterministic Encoding.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// DecodeValue decodes a single CBOR data item into a generic value.
func DecodeValue(data []byte) (any, error) {
	var value any
	if err := decMode.Unmarshal(data, &value); err != nil {
		return nil, err
	}
	return value, nil
}

// Tag is a CBOR tag number with its decoded content. Links decode to
// a Tag with Number [LinkTag] and a []byte Content.
type Tag = cbor.Tag

// DiagnoseFirst returns the CBOR diagnostic notation for the first
// data item in data, along with the bytes that follow it. A record
// payload is exactly one item, so anything left over is trailing
// garbage that [DecodeValue] would reject.
func DiagnoseFirst(data []byte) (string, []byte, error) {
	return cbor.DiagnoseFirst(data)
}
