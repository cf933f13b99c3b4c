package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// SetupCommands builds the command tree.
func SetupCommands(a *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "crmctl",
		Short:         "Operator tooling for the service CRM",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.Migrate(cmd.Context())
		},
	}

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Print ticket dashboard counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.Stats(cmd.Context())
		},
	}

	contactsCmd := &cobra.Command{
		Use:   "contacts",
		Short: "Customer lookup",
	}

	// without a query the search reads stdin line by line
	searchCmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search contacts by name, email, phone or company",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var query string
			if len(args) > 0 {
				query = args[0]
			}
			return a.SearchContacts(cmd.Context(), query)
		},
	}
	contactsCmd.AddCommand(searchCmd)

	var start, technician string
	weekCmd := &cobra.Command{
		Use:   "week",
		Short: "Show the weekly planning bar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			day := time.Now()
			if start != "" {
				parsed, err := time.ParseInLocation("2006-01-02", start, a.cfg.Schedule.Location())
				if err != nil {
					return fmt.Errorf("invalid --start %q, expected YYYY-MM-DD", start)
				}
				day = parsed
			}
			return a.Week(cmd.Context(), day, technician)
		},
	}
	weekCmd.Flags().StringVar(&start, "start", "", "any day of the week, YYYY-MM-DD (default today)")
	weekCmd.Flags().StringVar(&technician, "technician", "", "only show this technician's slots")

	timesheetCmd := &cobra.Command{
		Use:   "timesheet [ticket-id]",
		Short: "List the time entries of a ticket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.Timesheet(cmd.Context(), args[0])
		},
	}

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(contactsCmd)
	rootCmd.AddCommand(weekCmd)
	rootCmd.AddCommand(timesheetCmd)

	return rootCmd
}
