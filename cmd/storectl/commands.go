package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/polkiloo/digistore/internal/domain/model"
	"github.com/polkiloo/digistore/internal/storage/postgres"
)

var migrate = postgres.Migrate

func newRootCmd(run runner) *cobra.Command {
	var opts globalOptions

	root := &cobra.Command{
		Use:           "storectl",
		Short:         "Operate the digital store from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.databaseURI, "database", "d", "", "PostgreSQL DSN (defaults to DATABASE_URI)")

	root.AddCommand(
		migrateCmd(&opts),
		transitionCmd(run, &opts, "confirm", "Confirm a pending order and deliver it", operations.ConfirmOrder),
		transitionCmd(run, &opts, "reject", "Reject a pending order", operations.RejectOrder),
		transitionCmd(run, &opts, "redeliver", "Deliver a confirmed order again", operations.RedeliverOrder),
		importKeysCmd(run, &opts),
		sweepTokensCmd(run, &opts),
	)
	return root
}

func migrateCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*opts)
			if err != nil {
				return err
			}
			if err := migrate(cmd.Context(), cfg.DatabaseURI); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

type transitionFunc func(ops operations, ctx context.Context, orderID int64, actor string) (*model.TransitionResult, error)

func transitionCmd(run runner, opts *globalOptions, name, short string, fn transitionFunc) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <order-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orderID, err := parseID("order id", args[0])
			if err != nil {
				return err
			}
			return run(cmd.Context(), *opts, func(ops operations) error {
				res, err := fn(ops, cmd.Context(), orderID, model.ActorCLI)
				if err != nil {
					return fmt.Errorf("%s order #%d: %w", name, orderID, err)
				}
				printTransition(cmd.OutOrStdout(), res)
				return nil
			})
		},
	}
}

func importKeysCmd(run runner, opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import-keys <product-id> <file>",
		Short: "Add license keys from a file, one per line (use - for stdin)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			productID, err := parseID("product id", args[0])
			if err != nil {
				return err
			}
			raw, err := readKeys(cmd.InOrStdin(), args[1])
			if err != nil {
				return err
			}
			return run(cmd.Context(), *opts, func(ops operations) error {
				added, err := ops.ImportKeys(cmd.Context(), productID, raw)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d keys added to product #%d\n", added, productID)
				return nil
			})
		},
	}
}

func sweepTokensCmd(run runner, opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep-tokens",
		Short: "Delete expired download tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), *opts, func(ops operations) error {
				n, err := ops.SweepTokens(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d expired tokens removed\n", n)
				return nil
			})
		},
	}
}

func parseID(what, raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", what, raw)
	}
	return id, nil
}

func readKeys(stdin io.Reader, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read keys: %w", err)
	}
	return string(data), nil
}

func printTransition(w io.Writer, res *model.TransitionResult) {
	fmt.Fprintf(w, "order #%d is %s\n", res.Order.ID, res.Order.Status)
	report := res.Report
	if report == nil {
		return
	}
	fmt.Fprintf(w, "outcome: %s\n", report.Outcome())
	if report.Degraded {
		fmt.Fprintf(w, "degraded: %s\n", report.DegradedReason)
	}
	if report.DownloadURL != "" {
		fmt.Fprintf(w, "download link: %s\n", report.DownloadURL)
	}
	for _, err := range multierr.Errors(report.Err) {
		fmt.Fprintf(w, "issue: %s\n", err)
	}
}
