package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"outreach-engine/internal/secrets"
)

func newSecretsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secrets",
		Short: "Manage keychain credentials",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set-smtp <username> <host>",
		Short: "Store an SMTP password in the keychain",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := readPassword()
			if err != nil {
				return err
			}
			account := secrets.SMTPKeyringAccount(args[0], args[1])
			if err := secrets.SetSMTPPassword(account, pw); err != nil {
				return err
			}
			fmt.Printf("stored %s\n", account)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set-imap <username> <host>",
		Short: "Store an IMAP password in the keychain",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := readPassword()
			if err != nil {
				return err
			}
			account := secrets.IMAPKeyringAccount(args[0], args[1])
			if err := secrets.SetIMAPPassword(account, pw); err != nil {
				return err
			}
			fmt.Printf("stored %s\n", account)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set-gemini",
		Short: "Store the evaluator API key in the keychain",
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := readPassword()
			if err != nil {
				return err
			}
			if err := secrets.SetGeminiAPIKey(key); err != nil {
				return err
			}
			fmt.Println("stored outreach:gemini")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <account>",
		Short: "Remove a stored credential",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := secrets.DeletePassword(args[0]); err != nil {
				return err
			}
			fmt.Printf("deleted %s\n", args[0])
			return nil
		},
	})

	return cmd
}

func readPassword() (string, error) {
	fmt.Fprint(os.Stderr, "password: ")
	sc := bufio.NewScanner(os.Stdin)
	if !sc.Scan() {
		return "", fmt.Errorf("no input")
	}
	pw := strings.TrimSpace(sc.Text())
	if pw == "" {
		return "", fmt.Errorf("password is empty")
	}
	return pw, nil
}
