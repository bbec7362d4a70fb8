// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"
)

// report renders the summary a command prints when it finishes: titled
// groups of label/value rows with the labels aligned.
type report struct {
	title lipgloss.Style
	label lipgloss.Style
	value lipgloss.Style
	rows  []reportRow
}

type reportRow struct {
	label   string
	value   string
	isTitle bool
}

func newReport(renderer *lipgloss.Renderer) *report {
	return &report{
		title: renderer.NewStyle().Bold(true),
		label: renderer.NewStyle().Foreground(lipgloss.Color("12")),
		value: renderer.NewStyle(),
	}
}

func (r *report) section(title string) {
	r.rows = append(r.rows, reportRow{label: title, isTitle: true})
}

func (r *report) add(label, value string) {
	r.rows = append(r.rows, reportRow{label: label, value: value})
}

func (r *report) count(label string, n uint64) {
	r.add(label, humanize.Comma(int64(n)))
}

func (r *report) bytes(label string, n uint64) {
	r.add(label, humanize.Bytes(n))
}

// write renders every row to w and resets the report.
func (r *report) write(w io.Writer) error {
	width := 0
	for _, row := range r.rows {
		if !row.isTitle {
			width = max(width, ansi.StringWidth(row.label))
		}
	}

	var builder strings.Builder
	for _, row := range r.rows {
		if row.isTitle {
			builder.WriteString(r.title.Render(row.label))
		} else {
			builder.WriteString("  ")
			builder.WriteString(r.label.Width(width).Render(row.label))
			builder.WriteString("  ")
			builder.WriteString(r.value.Render(row.value))
		}
		builder.WriteByte('\n')
	}
	r.rows = nil

	_, err := io.WriteString(w, builder.String())
	return err
}
