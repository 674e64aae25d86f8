package main

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/llehouerou/wavecore/internal/errmsg"
	"github.com/llehouerou/wavecore/internal/state"
)

func newHistoryCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recently played files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := state.Open()
			if err != nil {
				return errors.New(errmsg.Format(errmsg.OpStateOpen, err))
			}
			defer store.Close()

			entries, err := store.RecentFiles(limit)
			if err != nil {
				return errors.New(errmsg.Format(errmsg.OpSessionLoad, err))
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No history yet")
				return nil
			}
			for _, e := range entries {
				fmt.Fprintf(out, "%-14s %6s  %3dx  %s\n",
					humanize.Time(e.LastPlayedAt), formatDuration(e.Position), e.PlayCount, e.Path)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of entries to show")
	return cmd
}
