package main

import (
	"checkout/api/internal/service"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func sweepCmd() *cobra.Command {
	var failOnError bool

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Move funds of paid sessions to the operator wallet",
		Long: `Sweeps every paid and not yet swept session once and prints
the per-session outcomes as json. Safe to run from cron next to a
running api when redis is configured.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := initApp(false)
			if err != nil {
				return err
			}

			services, err := a.Services()
			if err != nil {
				return err
			}

			results, err := services.Sweeper.SweepAll(cmd.Context())
			if err != nil {
				return fmt.Errorf("sweep: %w", err)
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(results); err != nil {
				return err
			}

			if failOnError {
				for _, r := range results {
					if r.Outcome == service.SWEEP_ERROR {
						return fmt.Errorf("sweep finished with errors")
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&failOnError, "fail-on-error", false, "exit non-zero if any session failed")

	return cmd
}

func expireCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "expire",
		Short: "Mark pending sessions past their expiry as expired",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := initApp(false)
			if err != nil {
				return err
			}

			services, err := a.Services()
			if err != nil {
				return err
			}

			n, err := services.Sessions.ExpireStale(cmd.Context())
			if err != nil {
				return fmt.Errorf("expire: %w", err)
			}

			fmt.Println("expired sessions:", n)
			return nil
		},
	}
}
