// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/carchive/cmd/carchive/cli"
	"github.com/bureau-foundation/carchive/lib/dag"
	"github.com/bureau-foundation/carchive/lib/identifier"
	"github.com/bureau-foundation/carchive/lib/node"
	"github.com/bureau-foundation/carchive/lib/payload"
)

// slotsPerEpoch is the epoch length used to find the first expected
// slot of an archive.
const slotsPerEpoch = 432_000

func (a *application) parseCommand() *cli.Command {
	var (
		options globalOptions
		decode  bool
	)
	return &cli.Command{
		Name:    "parse",
		Summary: "Decode every record and tally them by kind",
		Description: `Read the archive one block at a time, decode every record, and count
records of each kind. Gaps between consecutive block slots are counted
as skipped slots, starting from the first slot of the first block's
epoch.

With --decode, every transaction's data and metadata and every rewards
payload is reassembled from its data frames and its checksum verified.
Non-empty metadata and rewards are then decompressed unless
decode.decompress is false in the config. The first failure stops the
run.`,
		Usage: "carchive parse [flags] <file>",
		Examples: []cli.Example{
			{
				Description: "Tally records by kind",
				Command:     "carchive parse epoch-0.car",
			},
			{
				Description: "Verify every reassembled payload with debug logging",
				Command:     "carchive parse --decode --log-level debug epoch-0.car",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("parse", pflag.ContinueOnError)
			flagSet.BoolVar(&decode, "decode", false, "reassemble and decompress transaction and rewards payloads")
			options.register(flagSet)
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			path, err := requireArchive("parse", args)
			if err != nil {
				return err
			}
			s, err := a.open(&options)
			if err != nil {
				return err
			}
			defer s.Close()
			return parseArchive(ctx, s, path, decode, a.stdout)
		},
	}
}

// tally holds the counters parse reports.
type tally struct {
	parsed              map[node.Kind]uint64
	transactionsDecoded uint64
	rewardsDecoded      uint64
	metadataEmpty       uint64
	skippedSlots        uint64

	nextSlot     uint64
	haveNextSlot bool
}

func newTally() *tally {
	return &tally{parsed: make(map[node.Kind]uint64)}
}

// observeBlock counts the slots between the previous block and this
// one. The first block is measured from the start of its epoch. A slot
// at or below the expected one adds nothing.
func (t *tally) observeBlock(slot uint64) {
	expected := slot - slot%slotsPerEpoch
	if t.haveNextSlot {
		expected = t.nextSlot
	}
	t.nextSlot = slot + 1
	t.haveNextSlot = true
	if slot > expected {
		t.skippedSlots += slot - expected
	}
}

// decoder reassembles payloads within one batch.
type decoder struct {
	batch      *dag.Batch
	decompress bool
	tally      *tally
}

func (d *decoder) transaction(id identifier.Identifier, tx *node.Transaction) error {
	if _, err := d.batch.Reassemble(&tx.Data); err != nil {
		return fmt.Errorf("transaction %s: reassembling data: %w", id, err)
	}
	metadata, err := d.batch.Reassemble(&tx.Metadata)
	if err != nil {
		return fmt.Errorf("transaction %s: reassembling metadata: %w", id, err)
	}
	if len(metadata) == 0 {
		d.tally.metadataEmpty++
	} else if d.decompress {
		if _, _, err := payload.Decompress(metadata); err != nil {
			return fmt.Errorf("transaction %s: decompressing metadata: %w", id, err)
		}
	}
	d.tally.transactionsDecoded++
	return nil
}

func (d *decoder) rewards(id identifier.Identifier, rewards *node.Rewards) error {
	data, err := d.batch.Reassemble(&rewards.Data)
	if err != nil {
		return fmt.Errorf("rewards %s: reassembling: %w", id, err)
	}
	if d.decompress && len(data) > 0 {
		if _, _, err := payload.Decompress(data); err != nil {
			return fmt.Errorf("rewards %s: decompressing: %w", id, err)
		}
	}
	d.tally.rewardsDecoded++
	return nil
}

func parseArchive(ctx context.Context, s *session, path string, decode bool, stdout io.Writer) error {
	reader, err := s.openArchive(path)
	if err != nil {
		return err
	}
	defer s.progress.clear()

	counts := newTally()
	var lastSlot uint64
	for {
		batch, err := dag.ReadUntilBlock(ctx, reader)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		if batch.Len() == 0 {
			break
		}

		d := &decoder{batch: batch, decompress: s.config.Decode.Decompress, tally: counts}
		for id, record := range batch.Each() {
			counts.parsed[record.Kind()]++
			switch record := record.(type) {
			case *node.Block:
				counts.observeBlock(record.Slot)
				lastSlot = record.Slot
			case *node.Transaction:
				if decode {
					if err := d.transaction(id, record); err != nil {
						return err
					}
				}
			case *node.Rewards:
				if decode {
					if err := d.rewards(id, record); err != nil {
						return err
					}
				}
			}
		}

		block, complete := batch.Block()
		if complete {
			s.logger.Debug("batch read", "records", batch.Len(), "slot", block.Slot)
		} else {
			s.logger.Debug("trailing records after last block", "records", batch.Len())
		}
		s.progress.update(func() string {
			return fmt.Sprintf("slot %d  blocks %s  transactions %s  read %s",
				lastSlot,
				humanize.Comma(int64(counts.parsed[node.KindBlock])),
				humanize.Comma(int64(counts.parsed[node.KindTransaction])),
				humanize.Bytes(uint64(reader.Offset())))
		})
	}
	s.progress.clear()

	s.report.section(path)
	for _, kind := range node.Kinds {
		s.report.count("parsed:"+kindLabel(kind), counts.parsed[kind])
	}
	if decode {
		s.report.count("decoded:transaction", counts.transactionsDecoded)
		s.report.count("decoded:rewards", counts.rewardsDecoded)
		s.report.count("meta_empty:transaction", counts.metadataEmpty)
	}
	s.report.count("skipped:block", counts.skippedSlots)
	return s.report.write(stdout)
}

// kindLabel is the lower-case kind name used in report labels.
func kindLabel(kind node.Kind) string {
	return strings.ToLower(kind.String())
}
