package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/JustJay7/barangay-case-dashboard/internal/cases"
	"github.com/spf13/cobra"
)

func newListCmd(a *app) *cobra.Command {
	var f cases.Filter
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd.Context()); err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTYPE\tSTATUS\tFILED\tTITLE\tCOMPLAINANT")
			list := a.svc.List(f)
			for _, c := range list {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", c.ID, c.Type, c.Status, c.FiledDate, c.Title, c.Complainant)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d cases (%s storage)\n", len(list), a.svc.StorageType())
			return nil
		},
	}
	cmd.Flags().StringVar(&f.Status, "status", "", "Only cases with this status")
	cmd.Flags().StringVar(&f.Type, "type", "", "Only cases of this type")
	cmd.Flags().StringVarP(&f.Query, "query", "q", "", "Match id, title, complainant or respondent")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import cases from a CSV file",
		Long: `Import cases from a CSV file with a header row.

Title, Complainant and Respondent are required on every row. Rows missing one
are reported and skipped; every other row is stored under a new identifier.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd.Context()); err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}
			defer f.Close()

			report, err := a.svc.Import(cmd.Context(), f, filepath.Base(args[0]))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, rowErr := range report.Errors {
				fmt.Fprintln(out, rowErr.Error())
			}
			fmt.Fprintln(out, report.Summary())
			return nil
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	var (
		outPath string
		ids     []string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export cases as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd.Context()); err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", outPath, err)
				}
				defer f.Close()
				w = f
			}

			n, err := a.svc.Export(w, ids)
			if err != nil {
				return err
			}
			if outPath != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d cases to %s\n", n, outPath)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write to this file instead of stdout")
	cmd.Flags().StringSliceVar(&ids, "ids", nil, "Only export these case ids")
	return cmd
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status <status> <id>...",
		Short: "Change the status of one or more cases",
		Long: `Change the status of one or more cases.

Valid statuses are pending, ongoing, resolved and dismissed. Resolving a case
that has no resolved date stamps it with today's date.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd.Context()); err != nil {
				return err
			}

			status := cases.Status(strings.ToLower(args[0]))
			n, err := a.svc.BulkUpdateStatus(cmd.Context(), args[1:], status)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %d cases to %s\n", n, status)
			return nil
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	var confirm string
	cmd := &cobra.Command{
		Use:   "delete --confirm <count> <id>...",
		Short: "Permanently delete cases",
		Long: `Permanently delete cases.

--confirm must be the number of ids given. Deleted cases cannot be recovered.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd.Context()); err != nil {
				return err
			}

			n, err := a.svc.BulkDelete(cmd.Context(), args, confirm)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d cases\n", n)
			return nil
		},
	}
	cmd.Flags().StringVar(&confirm, "confirm", "", "Number of cases being deleted")
	return cmd
}

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Copy cases from the fallback database into the cases file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.repo.HasPrimary() {
				return errors.New("file storage is not available, nothing to migrate into")
			}

			n, err := a.repo.Migrate(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Migrated %d cases into %s\n", n, a.cfg.CasesFile)
			return nil
		},
	}
}

func newSummaryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show case totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd.Context()); err != nil {
				return err
			}

			s := a.svc.Summary(cases.Filter{})
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Total cases: %d\n", s.Total)
			for _, st := range cases.Statuses {
				fmt.Fprintf(out, "  %-10s %d\n", st, s.ByStatus[st])
			}
			for _, t := range s.ByType {
				fmt.Fprintf(out, "  %-10s %d\n", t.Name, t.Value)
			}
			fmt.Fprintf(out, "Success rate: %d%%\n", s.SuccessRate)
			fmt.Fprintf(out, "Resolved this month: %d (%+d%% on last month)\n", s.ResolvedThisMonth, s.ResolvedTrend)
			return nil
		},
	}
}
