package admin

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/brandforge/internal/server/auth"
	"github.com/dmitrijs2005/brandforge/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/brandforge/internal/server/services"
	"github.com/dmitrijs2005/brandforge/internal/shared"
	"github.com/dmitrijs2005/brandforge/internal/tiers"
	"github.com/spf13/cobra"
)

var errAborted = errors.New("aborted")

func (a *App) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "brandforge-admin",
		Short:         "Operate a brandforge deployment",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}
	pf := root.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "server config file (.json or .toml)")
	pf.StringVar(&a.driver, "driver", "", "database driver (postgres|sqlite)")
	pf.StringVarP(&a.dsn, "dsn", "d", "", "database DSN")
	pf.StringVarP(&a.secret, "secret", "s", "", "JWT secret key")
	pf.StringVar(&a.tiersFile, "tiers", "", "tier table (YAML)")

	credits := &cobra.Command{Use: "credits", Short: "Inspect and adjust credit accounts"}
	credits.AddCommand(a.creditsShowCommand(), a.creditsAddCommand(), a.creditsResetCommand(), a.creditsHistoryCommand())

	root.AddCommand(a.migrateCommand(), credits, a.tiersCommand(), a.tokenCommand(), a.secretCommand())
	return root
}

func (a *App) migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withDB(cmd.Context(), func(*sql.DB, repomanager.RepositoryManager) error {
				_, err := fmt.Fprintf(a.out, "migrations applied (%s)\n", a.config.DatabaseDriver)
				return err
			})
		},
	}
}

func (a *App) creditsShowCommand() *cobra.Command {
	var tier string
	cmd := &cobra.Command{
		Use:   "show <user id>",
		Short: "Show an account, opening it on --tier if it does not exist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withCredits(cmd.Context(), func(s *services.CreditService) error {
				acc, err := s.GetBalance(cmd.Context(), args[0], tiers.Name(tier))
				if err != nil {
					return err
				}
				return a.print(acc)
			})
		},
	}
	cmd.Flags().StringVarP(&tier, "tier", "t", "", "tier for a new account")
	return cmd
}

func (a *App) creditsAddCommand() *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   "add <user id> <amount>",
		Short: "Grant credits to an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil || amount <= 0 {
				return fmt.Errorf("amount must be a positive integer, got %q", args[1])
			}
			return a.withCredits(cmd.Context(), func(s *services.CreditService) error {
				balance, err := s.Add(cmd.Context(), args[0], amount, reason)
				if err != nil {
					return err
				}
				return a.print(map[string]any{"userId": args[0], "balance": balance})
			})
		},
	}
	cmd.Flags().StringVarP(&reason, "reason", "r", "manual grant", "ledger reason")
	return cmd
}

func (a *App) creditsResetCommand() *cobra.Command {
	var (
		tier string
		yes  bool
	)
	cmd := &cobra.Command{
		Use:   "reset <user id>",
		Short: "Replace an account with a fresh one on --tier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				ok, err := a.confirm(fmt.Sprintf("Reset credits of %s to a new %s account?", args[0], tier))
				if err != nil {
					return err
				}
				if !ok {
					return errAborted
				}
			}
			return a.withCredits(cmd.Context(), func(s *services.CreditService) error {
				acc, err := s.Reset(cmd.Context(), args[0], tiers.Name(tier))
				if err != nil {
					return err
				}
				return a.print(acc)
			})
		},
	}
	cmd.Flags().StringVarP(&tier, "tier", "t", "", "tier of the new account")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func (a *App) creditsHistoryCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history <user id>",
		Short: "List recent ledger entries, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withCredits(cmd.Context(), func(s *services.CreditService) error {
				list, err := s.Transactions(cmd.Context(), args[0], limit)
				if err != nil {
					return err
				}
				return a.print(list)
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", services.DefaultTransactionLimit, "number of entries")
	return cmd
}

func (a *App) tiersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tiers",
		Short: "List the tier table in effect",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tCOST\tREFINE\tINITIAL\tMONTHLY\tUNLIMITED\tLATENCY")
			for _, t := range a.catalog.List() {
				fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%t\t%s-%s\n",
					t.Name, t.CreditCost, t.RefinementCost, t.InitialCredits, t.MonthlyCredits,
					t.Unlimited, t.Latency.Min, t.Latency.Max)
			}
			return tw.Flush()
		},
	}
}

func (a *App) tokenCommand() *cobra.Command {
	var (
		ttl  time.Duration
		tier string
	)
	cmd := &cobra.Command{
		Use:   "token <user id>",
		Short: "Issue a bearer token signed with the server secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if tier != "" && !a.catalog.IsValid(tier) {
				return fmt.Errorf("unknown tier %q", tier)
			}
			tok, err := auth.GenerateTierToken(args[0], tier, []byte(a.config.SecretKey), ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.out, tok)
			return err
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token validity")
	cmd.Flags().StringVar(&tier, "tier", "", "tier a new credit account opens on")
	return cmd
}

func (a *App) secretCommand() *cobra.Command {
	var size int
	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Print a random secret suitable for BRANDFORGE_SECRET_KEY",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := shared.RandomHex(size)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.out, s)
			return err
		},
	}
	cmd.Flags().IntVar(&size, "bytes", 32, "random bytes before hex encoding")
	return cmd
}
