package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bnema/repostctl/internal/adapters/repo/jsonfile"
	"github.com/bnema/repostctl/internal/application"
	"github.com/bnema/repostctl/internal/domain"
	"github.com/spf13/cobra"
)

func newAccountCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage the main account and its alts",
	}

	cmd.AddCommand(
		newAccountListCmd(app),
		newAccountAddCmd(app),
		newAccountRemoveCmd(app),
		newAccountSetMainCmd(app),
		newAccountImportCmd(app),
		newAccountExportCmd(app),
		newAccountVerifyCmd(app),
	)

	return cmd
}

type accountListEntry struct {
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
}

func newAccountListCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List configured accounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			accounts, err := app.accounts.List(cmd.Context())
			if err != nil {
				return err
			}

			entries := make([]accountListEntry, 0, len(accounts.Alts)+1)
			if accounts.Main != nil {
				entries = append(entries, accountListEntry{Username: accounts.Main.Username, Role: domain.RoleMain})
			}
			for _, alt := range accounts.Alts {
				entries = append(entries, accountListEntry{Username: alt.Username, Role: domain.RoleAlt})
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}

			for _, entry := range entries {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", entry.Username, entry.Role)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newAccountAddCmd(app *app) *cobra.Command {
	var (
		password string
		asMain   bool
		verify   bool
	)

	cmd := &cobra.Command{
		Use:   "add <username>",
		Short: "Add an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username := domain.NormalizeUsername(args[0])

			if !cmd.Flags().Changed("password") {
				prompted, err := app.verifier.readLine(cmd.Context(), fmt.Sprintf("Password for @%s: ", username))
				if err != nil && !errors.Is(err, io.EOF) {
					return fmt.Errorf("read password: %w", err)
				}
				password = prompted
			}

			add := func(ctx context.Context) error {
				account, err := app.accounts.AddAccount(ctx, application.AddAccountInput{
					Username: username,
					Password: password,
					Main:     asMain,
					Verify:   verify,
				})
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Added @%s as %s\n", account.Username, account.Role)
				return nil
			}

			if !verify {
				return add(cmd.Context())
			}
			return runWithSpinner(cmd.Context(), cmd.ErrOrStderr(), app.verifier, "Verifying credentials...", func(ctx context.Context) error {
				return add(ctx)
			})
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "Account password (prompted when omitted)")
	cmd.Flags().BoolVar(&asMain, "main", false, "Add as the main account")
	cmd.Flags().BoolVar(&verify, "verify", false, "Log in once before saving the account")
	return cmd
}

func newAccountRemoveCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <username>",
		Aliases: []string{"rm"},
		Short:   "Remove an account and purge its session, cache and temp files",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := app.accounts.RemoveAccount(cmd.Context(), args[0])
			if report.Account.Username == "" {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Removed @%s (%s)\n", report.Account.Username, report.Account.Role)
			if report.TempFilesRemoved > 0 {
				_, _ = fmt.Fprintf(out, "Deleted %d temporary file(s)\n", report.TempFilesRemoved)
			}
			return err
		},
	}
}

func newAccountSetMainCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set-main <username>",
		Short: "Promote an alt to main; the current main becomes an alt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.accounts.SetMainAccount(cmd.Context(), args[0]); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "@%s is now the main account\n", domain.NormalizeUsername(args[0]))
			return nil
		},
	}
}

func newAccountImportCmd(app *app) *cobra.Command {
	var plaintext bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import accounts from a configuration document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read import file: %w", err)
			}

			if plaintext {
				data, err = app.vault.EncryptConfig(data)
				if err != nil {
					return fmt.Errorf("encrypt import file: %w", err)
				}
			}

			incoming, err := jsonfile.DecodeDocument(data)
			if err != nil {
				return err
			}

			result, err := app.accounts.Import(cmd.Context(), incoming)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Imported %d account(s)\n", len(result.Added))
			if len(result.Skipped) > 0 {
				_, _ = fmt.Fprintf(out, "Skipped existing: %s\n", strings.Join(result.Skipped, ", "))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&plaintext, "plaintext", false, "The file holds plaintext passwords to encrypt on import")
	return cmd
}

func newAccountExportCmd(app *app) *cobra.Command {
	var (
		output  string
		decrypt bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the account configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			accounts, err := app.accounts.List(cmd.Context())
			if err != nil {
				return err
			}

			data, err := jsonfile.EncodeDocument(accounts)
			if err != nil {
				return err
			}

			if decrypt {
				data, err = app.vault.DecryptConfig(data)
				if err != nil {
					return fmt.Errorf("decrypt export: %w", err)
				}
			}

			if output == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}

			if err := os.WriteFile(output, data, 0o600); err != nil {
				return fmt.Errorf("write export file: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to file instead of stdout")
	cmd.Flags().BoolVar(&decrypt, "decrypt", false, "Write plaintext passwords")
	return cmd
}

func newAccountVerifyCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check that every stored password decrypts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := app.accounts.VerifyCredentials(cmd.Context())
			if err != nil {
				return err
			}
			return writeBatchResult(cmd, result)
		},
	}
}
