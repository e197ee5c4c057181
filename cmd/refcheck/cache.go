// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Ad1th/Reference-Halucinations/internal/store"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and maintain the local lookup cache",
	Long: `Cache manages the SQLite database holding cached index lookups and the
history of past verification runs.`,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache size and recent verification runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		n, err := db.LookupCount()
		if err != nil {
			return err
		}
		fmt.Printf("cached lookups: %d\n", n)

		runs, err := db.Runs(10)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("no recorded runs")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "\nID\tSTARTED\tSOURCE\tTOTAL\tVERIFIED\tREVIEW\tUNVERIFIED\tSUSPICIOUS")
		for _, r := range runs {
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%d\t%d\t%d\n",
				r.ID, r.StartedAt.Format("2006-01-02 15:04"), r.Source,
				r.Total, r.Verified, r.Review, r.Unverified, r.Suspicious)
		}
		return w.Flush()
	},
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Drop expired lookup entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		n, err := db.Prune()
		if err != nil {
			return err
		}
		fmt.Printf("pruned %d expired lookup(s)\n", n)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop every cached lookup",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		n, err := db.Clear()
		if err != nil {
			return err
		}
		fmt.Printf("cleared %d lookup(s)\n", n)
		return nil
	},
}

func openStore() (*store.Store, error) {
	cfg := buildConfig()
	return store.NewStore(cfg.Store)
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cachePruneCmd)
	cacheCmd.AddCommand(cacheClearCmd)

	rootCmd.AddCommand(cacheCmd)
}
