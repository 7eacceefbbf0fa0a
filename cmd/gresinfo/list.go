// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/gogpu/gres/scene"
)

func newListCmd() *cobra.Command {
	var kind, glob string
	cmd := &cobra.Command{
		Use:   "list MANIFEST",
		Short: "List the resources a manifest registers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := scene.New()
			if err != nil {
				return err
			}
			defer s.Shutdown()
			if err := s.LoadManifest(args[0]); err != nil {
				return err
			}
			entries, err := selectEntries(s, kind, glob)
			if err != nil {
				return err
			}
			renderEntries(cmd.OutOrStdout(), entries)
			return nil
		},
	}
	cmd.Flags().StringVarP(&kind, "kind", "k", "", "only list resources of this kind")
	cmd.Flags().StringVarP(&glob, "glob", "g", "", "only list names matching this doublestar pattern")
	return cmd
}

func selectEntries(s *scene.Scene, kind, glob string) ([]scene.Entry, error) {
	if kind != "" && !slices.Contains(s.Kinds(), kind) {
		return nil, fmt.Errorf("unknown kind %q (have %v)", kind, s.Kinds())
	}
	matched := map[string][]string{}
	if glob != "" {
		for _, k := range s.Kinds() {
			names, err := s.Glob(k, glob)
			if err != nil {
				return nil, err
			}
			matched[k] = names
		}
	}

	var out []scene.Entry
	for e := range s.Entries() {
		if kind != "" && e.Kind != kind {
			continue
		}
		if glob != "" && !slices.Contains(matched[e.Kind], e.Name) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func renderEntries(w io.Writer, entries []scene.Entry) {
	r := lipgloss.NewRenderer(w)
	header := r.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")).Padding(0, 1)
	cell := r.NewStyle().Padding(0, 1)
	shared := cell.Foreground(lipgloss.Color("#87CEEB"))

	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{e.Kind, e.Name, strconv.FormatInt(e.Owners, 10)}
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("KIND", "NAME", "OWNERS").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return header
			case col == 2 && entries[row].Owners > 1:
				return shared
			}
			return cell
		})
	fmt.Fprintln(w, t.Render())
	fmt.Fprintf(w, "%d resources\n", len(entries))
}
