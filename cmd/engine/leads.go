package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"outreach-engine/internal/dispatch"
	"outreach-engine/internal/followup"
	"outreach-engine/internal/lifecycle"
	"outreach-engine/internal/store"
)

func newLeadsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leads",
		Short: "Operate on individual leads",
	}
	cmd.AddCommand(
		newLeadsShowCmd(),
		newLeadsDraftCmd(),
		newLeadsApproveCmd(),
		newLeadsSendCmd(),
		newLeadsMarkCmd(),
	)
	return cmd
}

func newLeadsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <entity-id>",
		Short: "Print one lead",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(false)
			if err != nil {
				return err
			}
			defer a.close()

			l, err := store.GetLead(cmd.Context(), a.db.Pool, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%s  %s\n", l.EntityID, l.ChannelName)
			fmt.Printf("  status=%s score=%d tier=%s email=%s\n", l.Status, l.Score, l.SubscriberTier, l.Email)
			if l.DispositionReason != "" {
				fmt.Printf("  reason: %s\n", l.DispositionReason)
			}
			if l.DraftSubject != "" {
				fmt.Printf("  draft: %s\n", l.DraftSubject)
			}
			if l.NextActionAt != nil {
				fmt.Printf("  next action: %s (after %d)\n", l.NextActionAt.Format("2006-01-02"), l.ActionCount)
			}
			return nil
		},
	}
}

func newLeadsDraftCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "draft <entity-id>",
		Short: "Draft the initial outreach email for review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(true)
			if err != nil {
				return err
			}
			defer a.close()

			lead, err := store.GetLead(cmd.Context(), a.db.Pool, args[0])
			if err != nil {
				return err
			}
			if err := dispatch.DraftLead(cmd.Context(), a.db.Pool, lead); err != nil {
				return err
			}
			l, err := store.GetLead(cmd.Context(), a.db.Pool, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Subject: %s\n\n%s\n", l.DraftSubject, l.DraftBody)
			return nil
		},
	}
}

func newLeadsApproveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "approve <entity-id>",
		Short: "Approve the draft for sending",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(true)
			if err != nil {
				return err
			}
			defer a.close()

			if err := dispatch.Approve(cmd.Context(), a.db.Pool, args[0]); err != nil {
				return err
			}
			fmt.Printf("%s: ready to send\n", args[0])
			return nil
		},
	}
}

func newLeadsSendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send <entity-id>",
		Short: "Send the approved initial outreach email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(true)
			if err != nil {
				return err
			}
			defer a.close()

			m, err := dispatch.NewMailer(a.cfg)
			if err != nil {
				return err
			}
			cadence := followup.Cadence(a.cfg.Followup.CadenceDays)
			if err := dispatch.SendInitial(cmd.Context(), a.db.Pool, m, args[0], cadence, a.policy); err != nil {
				return err
			}
			fmt.Printf("%s: sent\n", args[0])
			return nil
		},
	}
}

func newLeadsMarkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mark",
		Short: "Record an out-of-band outcome for a lead",
	}

	type marker struct {
		use, short string
		fn         func(a *app, cmd *cobra.Command, entityID, detail string) error
	}
	markers := []marker{
		{"replied <entity-id> [snippet]", "Record a reply received outside the polled inbox",
			func(a *app, cmd *cobra.Command, id, detail string) error {
				return followup.RecordReply(cmd.Context(), a.db.Pool, id, detail)
			}},
		{"converted <entity-id>", "Record that the lead became a customer",
			func(a *app, cmd *cobra.Command, id, _ string) error {
				return lifecycle.MarkConverted(cmd.Context(), a.db.Pool, id)
			}},
		{"unsubscribed <entity-id>", "Record an opt-out",
			func(a *app, cmd *cobra.Command, id, _ string) error {
				return lifecycle.MarkUnsubscribed(cmd.Context(), a.db.Pool, id)
			}},
	}

	for _, m := range markers {
		m := m
		cmd.AddCommand(&cobra.Command{
			Use:   m.use,
			Short: m.short,
			Args:  cobra.RangeArgs(1, 2),
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := openApp(true)
				if err != nil {
					return err
				}
				defer a.close()

				detail := ""
				if len(args) > 1 {
					detail = args[1]
				}
				if err := m.fn(a, cmd, args[0], detail); err != nil {
					return err
				}
				fmt.Printf("%s: done\n", args[0])
				return nil
			},
		})
	}
	return cmd
}
