package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"outreach-engine/internal/frontier"
)

func newKeywordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keywords",
		Short: "Manage the search-term pool",
	}
	cmd.AddCommand(newKeywordsSeedCmd(), newKeywordsGenerateCmd(), newKeywordsListCmd())
	return cmd
}

func newKeywordsSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file>",
		Short: "Load search terms from a file, one per line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(false)
			if err != nil {
				return err
			}
			defer a.close()

			fr := frontier.New(a.db.Pool, nil, a.policy)
			added, err := fr.SeedFromFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("added %d keywords\n", added)
			return nil
		},
	}
}

func newKeywordsGenerateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Generate fresh search terms via the keyword generator",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(false)
			if err != nil {
				return err
			}
			defer a.close()

			ctx := cmd.Context()
			gen, err := a.buildLLM(ctx)
			if err != nil {
				return err
			}

			fr := frontier.New(a.db.Pool, gen, a.policy)
			added, err := fr.Replenish(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("added %d keywords\n", added)
			return nil
		},
	}
}

func newKeywordsListCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List pooled search terms",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(false)
			if err != nil {
				return err
			}
			defer a.close()

			fr := frontier.New(a.db.Pool, nil, a.policy)
			kws, err := fr.List(cmd.Context(), all)
			if err != nil {
				return err
			}
			for _, k := range kws {
				mark := " "
				if k.Used {
					mark = "x"
				}
				fmt.Printf("[%s] %s\n", mark, k.Keyword)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "include used keywords")
	return cmd
}
