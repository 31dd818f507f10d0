package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"boltz/internal/mesh"
)

func newMeshCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mesh",
		Short: "Inspect mesh container files",
	}
	cmd.AddCommand(newMeshInfoCommand())
	cmd.AddCommand(newMeshKeysCommand())
	return cmd
}

func newMeshInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info <file>",
		Short: "Show container header and entry details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := mesh.Describe(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printer := message.NewPrinter(language.English)
			var stored int64
			for _, entry := range info.Entries {
				stored += entry.StoredBytes
			}
			fmt.Fprintf(out, "File:    %s\n", info.Path)
			fmt.Fprintf(out, "ID:      %s\n", info.ID)
			fmt.Fprintf(out, "Version: %d\n", info.Version)
			printer.Fprintf(out, "Entries: %d (%s stored)\n\n", len(info.Entries), humanize.IBytes(uint64(stored)))

			rows := make([][]string, 0, len(info.Entries))
			for _, entry := range info.Entries {
				rows = append(rows, []string{
					entry.Key,
					entry.Spin.String(),
					entry.Kind,
					formatDims(entry.Dims),
					humanize.IBytes(uint64(entry.StoredBytes)),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"KEY", "SPIN", "KIND", "SHAPE", "STORED"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}
}

func newMeshKeysCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "keys <file>",
		Short: "List logical keys, marking spin-resolved quantities",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := mesh.Describe(args[0])
			if err != nil {
				return err
			}

			spinResolved := make(map[string]bool)
			for _, entry := range info.Entries {
				if entry.Spin != mesh.SpinNone {
					spinResolved[entry.Key] = true
				} else if _, seen := spinResolved[entry.Key]; !seen {
					spinResolved[entry.Key] = false
				}
			}

			keys := make([]string, 0, len(spinResolved))
			for key := range spinResolved {
				keys = append(keys, key)
			}
			sort.Strings(keys)

			out := cmd.OutOrStdout()
			for _, key := range keys {
				if spinResolved[key] {
					fmt.Fprintf(out, "%s (spin-resolved)\n", key)
				} else {
					fmt.Fprintln(out, key)
				}
			}
			return nil
		},
	}
}

func formatDims(dims []int) string {
	if len(dims) == 0 {
		return "-"
	}
	parts := make([]string, len(dims))
	for i, d := range dims {
		parts[i] = strconv.Itoa(d)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
