package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"outreach-engine/internal/replies"
)

func newRepliesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reply-poll",
		Short: "Poll the inbox once and record replies",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(true)
			if err != nil {
				return err
			}
			defer a.close()

			n, err := replies.RunOnce(cmd.Context(), a.db.Pool, a.cfg)
			if err != nil {
				return err
			}
			fmt.Printf("recorded %d replies\n", n)
			return nil
		},
	}
}
