package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"outreach-engine/internal/dispatch"
	"outreach-engine/internal/domain"
	"outreach-engine/internal/followup"
)

func newFollowupsCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "followups",
		Short: "Send every due follow-up",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(true)
			if err != nil {
				return err
			}
			defer a.close()

			ctx := cmd.Context()
			cadence := followup.Cadence(a.cfg.Followup.CadenceDays)
			due, err := followup.Due(ctx, a.db.Pool, time.Now().UTC())
			if err != nil {
				return err
			}
			if len(due) == 0 {
				fmt.Println("nothing due")
				return nil
			}

			if dryRun {
				for i := range due {
					l := &due[i]
					fmt.Printf("%s  %-14s next=%d  %s\n", l.EntityID, l.Status, l.ActionCount+1, l.Email)
				}
				return nil
			}

			m, err := dispatch.NewMailer(a.cfg)
			if err != nil {
				return err
			}

			sent := 0
			for i := range due {
				lead := &due[i]
				err := dispatch.SendFollowup(ctx, a.db.Pool, m, lead, cadence, a.policy)
				switch {
				case err == nil:
					sent++
				case domain.IsConflict(err):
					fmt.Printf("%s: superseded, skipped\n", lead.EntityID)
				default:
					fmt.Printf("%s: %v\n", lead.EntityID, err)
				}
			}
			fmt.Printf("due=%d sent=%d\n", len(due), sent)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list due leads without sending")
	return cmd
}
