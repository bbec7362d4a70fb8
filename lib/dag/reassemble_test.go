// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package dag

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/bureau-foundation/carchive/lib/identifier"
	"github.com/bureau-foundation/carchive/lib/node"
	"github.com/bureau-foundation/carchive/lib/testutil"
)

func TestChecksumKnownValues(t *testing.T) {
	tests := []struct {
		name string
		sum  func([]byte) uint64
		data string
		want uint64
	}{
		{"crc64 check", Checksum, "123456789", 0xb90956c775a41001},
		{"crc64 empty", Checksum, "", 0},
		{"fnv1a empty", LegacyChecksum, "", 0xcbf29ce484222325},
		{"fnv1a a", LegacyChecksum, "a", 0xaf63dc4c8601ec8c},
		{"fnv1a check", LegacyChecksum, "123456789", 0x06d5573923c6cdfc},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := test.sum([]byte(test.data)); got != test.want {
				t.Errorf("sum(%q) = %#x, want %#x", test.data, got, test.want)
			}
		})
	}
}

// chain builds a batch holding a four-frame chain A -> [B, C], C -> [D].
// B also links to a frame E that must not be followed, since only the
// last link of a multi-link list is walked.
func chain(checksum func([]byte) uint64) (*Batch, *node.DataFrame, []byte) {
	b := testutil.ID("frame-b")
	c := testutil.ID("frame-c")
	d := testutil.ID("frame-d")
	e := testutil.ID("frame-e")

	want := []byte("alpha-bravo-charlie-delta")
	batch := &Batch{}
	batch.Push(b, &node.DataFrame{Data: []byte("-bravo"), Next: []identifier.Identifier{e}})
	batch.Push(e, &node.DataFrame{Data: []byte("-echo")})
	batch.Push(c, &node.DataFrame{Data: []byte("-charlie"), Next: []identifier.Identifier{d}})
	batch.Push(d, &node.DataFrame{Data: []byte("-delta")})

	start := &node.DataFrame{
		Checksum: testutil.Checksum(checksum(want)),
		Data:     []byte("alpha"),
		Next:     []identifier.Identifier{b, c},
	}
	return batch, start, want
}

func TestReassembleFollowsLastLink(t *testing.T) {
	for _, test := range []struct {
		name string
		sum  func([]byte) uint64
	}{
		{"crc64", Checksum},
		{"fnv1a", LegacyChecksum},
	} {
		t.Run(test.name, func(t *testing.T) {
			batch, start, want := chain(test.sum)
			got, err := batch.Reassemble(start)
			if err != nil {
				t.Fatalf("Reassemble: %v", err)
			}
			if !bytes.Equal(got, want) {
				t.Errorf("Reassemble = %q, want %q", got, want)
			}
		})
	}
}

func TestReassembleIsRepeatable(t *testing.T) {
	batch, start, want := chain(Checksum)
	for i := range 3 {
		got, err := batch.Reassemble(start)
		if err != nil {
			t.Fatalf("Reassemble %d: %v", i, err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("Reassemble %d = %q, want %q", i, got, want)
		}
		// Mutating the result must not leak into later calls.
		got[0] = 'X'
	}
	if string(start.Data) != "alpha" {
		t.Errorf("start data modified: %q", start.Data)
	}
}

func TestReassembleChecksumMismatch(t *testing.T) {
	batch, start, want := chain(Checksum)
	frame, _ := batch.Get(testutil.ID("frame-d"))
	frame.(*node.DataFrame).Data = []byte("-delts")

	_, err := batch.Reassemble(start)
	if !errors.Is(err, ErrInvalidChecksum) {
		t.Fatalf("Reassemble = %v, want ErrInvalidChecksum", err)
	}
	var checksumError *ChecksumError
	if !errors.As(err, &checksumError) {
		t.Fatalf("error %v is not *ChecksumError", err)
	}
	corrupted := []byte("alpha-bravo-charlie-delts")
	if checksumError.CRC64 != Checksum(corrupted) {
		t.Errorf("CRC64 = %#x, want %#x", checksumError.CRC64, Checksum(corrupted))
	}
	if checksumError.FNV != LegacyChecksum(corrupted) {
		t.Errorf("FNV = %#x, want %#x", checksumError.FNV, LegacyChecksum(corrupted))
	}
	if checksumError.Expected != Checksum(want) {
		t.Errorf("Expected = %#x, want %#x", checksumError.Expected, Checksum(want))
	}
}

func TestReassembleWithoutChecksum(t *testing.T) {
	// A complete rewards record: one frame, no checksum, no
	// continuation. The zstd bytes come back untouched.
	rewards, err := node.DecodeRewards(testutil.Hex(t, "83051a010114848506f6f6f65528b52ffd04004100000000000000000000bb1bdbca"))
	if err != nil {
		t.Fatalf("DecodeRewards: %v", err)
	}
	var batch Batch
	got, err := batch.Reassemble(&rewards.Data)
	if err != nil {
		t.Fatalf("Reassemble: %v", err)
	}
	want := testutil.Hex(t, "28b52ffd04004100000000000000000000bb1bdbca")
	if !bytes.Equal(got, want) {
		t.Errorf("Reassemble = %x, want %x", got, want)
	}
}

func TestReassembleMissingLink(t *testing.T) {
	missing := testutil.ID("nowhere")
	start := &node.DataFrame{Data: []byte("head"), Next: []identifier.Identifier{missing}}

	var batch Batch
	_, err := batch.Reassemble(start)
	if !errors.Is(err, ErrMissedIdentifier) {
		t.Fatalf("Reassemble = %v, want ErrMissedIdentifier", err)
	}
	var linkError *MissingLinkError
	if !errors.As(err, &linkError) || linkError.ID != missing {
		t.Fatalf("error %v does not name %v", err, missing)
	}
}

func TestReassembleWrongKind(t *testing.T) {
	entry := testutil.ID("entry")
	var batch Batch
	batch.Push(entry, &node.Entry{NumHashes: 1})
	start := &node.DataFrame{Data: []byte("head"), Next: []identifier.Identifier{entry}}

	_, err := batch.Reassemble(start)
	if !errors.Is(err, ErrWrongLinkedKind) {
		t.Fatalf("Reassemble = %v, want ErrWrongLinkedKind", err)
	}
	var kindError *LinkKindError
	if !errors.As(err, &kindError) {
		t.Fatalf("error %v is not *LinkKindError", err)
	}
	if kindError.ID != entry || kindError.Kind != node.KindEntry {
		t.Errorf("LinkKindError = %+v, want %v / Entry", kindError, entry)
	}
}

func TestReassembleCycle(t *testing.T) {
	first := testutil.ID("loop-a")
	second := testutil.ID("loop-b")
	var batch Batch
	batch.Push(first, &node.DataFrame{Data: []byte("a"), Next: []identifier.Identifier{second}})
	batch.Push(second, &node.DataFrame{Data: []byte("b"), Next: []identifier.Identifier{first}})

	start, _ := batch.Get(first)
	_, err := batch.Reassemble(start.(*node.DataFrame))
	if !errors.Is(err, ErrContinuationCycle) {
		t.Fatalf("Reassemble = %v, want ErrContinuationCycle", err)
	}
}

func TestReassembleFromArchive(t *testing.T) {
	// A transaction too large for one frame: the head frame is embedded
	// in the transaction and its continuations precede it in the stream.
	second := testutil.ID("tx-part-2")
	third := testutil.ID("tx-part-3")
	whole := []byte("signature|message header|account keys|instructions")
	head, middle, tail := whole[:10], whole[10:30], whole[30:]

	transaction := testutil.ID("tx")
	entry := testutil.ID("entry")
	block := testutil.ID("block")
	reader := openArchive(t,
		testutil.Record{ID: second, Value: testutil.DataFrame(nil, testutil.Checksum(1), testutil.Checksum(3), middle, third)},
		testutil.Record{ID: third, Value: testutil.DataFrame(nil, testutil.Checksum(2), testutil.Checksum(3), tail)},
		testutil.Record{ID: transaction, Value: []any{
			uint64(0),
			testutil.DataFrame(testutil.Checksum(Checksum(whole)), testutil.Checksum(0), testutil.Checksum(3), head, second),
			testutil.DataFrame(nil, nil, nil, nil),
			uint64(42),
		}},
		testutil.Record{ID: entry, Value: entryValue(transaction)},
		testutil.Record{ID: block, Value: blockValue(42, entry)},
	)

	batch, err := ReadUntilBlock(context.Background(), reader)
	if err != nil {
		t.Fatalf("ReadUntilBlock: %v", err)
	}
	record, ok := batch.Get(transaction)
	if !ok {
		t.Fatal("transaction not in batch")
	}
	tx := record.(*node.Transaction)
	got, err := batch.Reassemble(&tx.Data)
	if err != nil {
		t.Fatalf("Reassemble: %v", err)
	}
	if !bytes.Equal(got, whole) {
		t.Errorf("Reassemble = %q, want %q", got, whole)
	}
}
