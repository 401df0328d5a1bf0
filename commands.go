// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/danielhkuo/approval-vote/db"
	"github.com/danielhkuo/approval-vote/store"
	"github.com/danielhkuo/approval-vote/tally"
)

var migrateCmd = &cobra.Command{
	Use:                "migrate",
	Short:              "Create the database schema and exit",
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, ok, err := loadConfig(args)
		if err != nil || !ok {
			return err
		}

		dbConn, err := db.Open(cfg)
		if err != nil {
			return err
		}
		defer dbConn.Close()

		if err := db.CreateSchema(dbConn); err != nil {
			return err
		}
		slog.Info("Database schema ready", "type", cfg.DatabaseType)
		return nil
	},
}

var tallyCmd = &cobra.Command{
	Use:                "tally <poll-id>",
	Short:              "Print the current results of a poll",
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 || args[0] == "" || args[0][0] == '-' {
			return fmt.Errorf("usage: %s", cmd.UseLine())
		}
		pollID := args[0]

		cfg, ok, err := loadConfig(args[1:])
		if err != nil || !ok {
			return err
		}

		dbConn, err := db.Open(cfg)
		if err != nil {
			return err
		}
		defer dbConn.Close()

		st := store.New(dbConn)
		ctx := context.Background()

		poll, err := st.GetPoll(ctx, pollID)
		if err != nil {
			return fmt.Errorf("poll %s: %w", pollID, err)
		}
		ballots, err := st.ListBallots(ctx, pollID)
		if err != nil {
			return err
		}

		result := tally.Tally(poll, ballots)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s (%d seats, %s ballots)\n", poll.Title, result.Seats, humanize.Comma(int64(result.BallotCount)))

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		for _, opt := range result.Options {
			mark := ""
			if opt.Winner {
				mark = "*"
			}
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", humanize.Ordinal(opt.Rank), opt.Label, opt.Count, mark)
		}
		tw.Flush()

		fmt.Fprintln(out, tally.WinnersText(result))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd, tallyCmd)
}

