package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"shellfish-ops/internal/adapters/repl"
	"shellfish-ops/internal/app"

	"github.com/spf13/cobra"
)

func (c *cli) exportCommand() *cobra.Command {
	var year int
	var dir string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the yearly invoices and receipts workbook (.xlsx)",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := c.runtime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			res, err := rt.App.ExportInvoiceWorkbook(cmd.Context(), year)
			if err != nil {
				return err
			}
			path := filepath.Join(dir, res.Filename)
			if err := os.WriteFile(path, res.Content, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), path)
			return err
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "calendar year (default current year)")
	cmd.Flags().StringVar(&dir, "dir", ".", "output directory")
	return cmd
}

func (c *cli) agingCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "ar-aging",
		Short: "Print the accounts receivable aging report",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := c.runtime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			aging, err := rt.App.ARAging(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), aging)
			}
			repl.PrintAging(cmd.OutOrStdout(), aging)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func (c *cli) shellCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive operator shell (slash commands and free-text orders)",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := c.runtime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()
			return repl.Run(cmd.Context(), rt.App, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func (c *cli) interpretCommand() *cobra.Command {
	return &cobra.Command{
		Use:   `interpret "<order text>"`,
		Short: "Turn a free-text order into a priced draft (nothing is saved)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := c.runtime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			res, err := rt.App.InterpretOrder(cmd.Context(), app.InterpretOrderRequest{Text: strings.Join(args, " ")})
			if err != nil {
				return err
			}
			if res.IsClarification {
				fmt.Fprintln(cmd.ErrOrStderr(), "needs clarification:", res.ClarificationMessage)
				return nil
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
}
