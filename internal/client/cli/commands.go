package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/brandforge/internal/client/client"
	"github.com/dmitrijs2005/brandforge/internal/common"
	pb "github.com/dmitrijs2005/brandforge/internal/proto"
	"github.com/dmitrijs2005/brandforge/internal/refine"
	"github.com/spf13/cobra"
)

func (a *App) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "brandforge",
		Short:         "Generate and refine design systems from a brand description",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig()
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "path to a JSON or TOML config file")
	root.PersistentFlags().StringVarP(&a.endpoint, "addr", "a", "", "address and port of the gRPC endpoint")
	root.PersistentFlags().StringVar(&a.token, "token", "", "bearer access token")

	root.AddCommand(
		a.pingCommand(),
		a.generateCommand(),
		a.refineCommand(),
		a.balanceCommand(),
		a.showCommand(),
		a.compareCommand(),
	)
	return root
}

func (a *App) pingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the server is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.call(cmd.Context(), false, func(ctx context.Context, c client.Client) (any, error) {
				if err := c.Ping(ctx); err != nil {
					return nil, err
				}
				return map[string]string{"status": "OK"}, nil
			})
		},
	}
}

func (a *App) generateCommand() *cobra.Command {
	var tier string
	cmd := &cobra.Command{
		Use:   "generate [brand description]",
		Short: "Generate a new design system",
		RunE: func(cmd *cobra.Command, args []string) error {
			desc := strings.TrimSpace(strings.Join(args, " "))
			if desc == "" {
				var err error
				desc, err = GetMultiline(a.in, "Describe the brand:", a.out)
				if err != nil {
					return err
				}
			}
			return a.call(cmd.Context(), true, func(ctx context.Context, c client.Client) (any, error) {
				return c.Generate(ctx, desc, tier)
			})
		},
	}
	cmd.Flags().StringVarP(&tier, "tier", "t", "", "service tier (basic, professional, enterprise)")
	return cmd
}

func (a *App) refineCommand() *cobra.Command {
	var (
		instruction string
		tone        string
		keep        []string
		improveA11y bool
		changes     []string
	)
	cmd := &cobra.Command{
		Use:   "refine <artifact id>",
		Short: "Refine a stored design system into a new version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			constraints, err := buildConstraints(keep, tone, improveA11y, changes)
			if err != nil {
				return err
			}
			if constraints == nil && instruction == "" {
				instruction, err = GetSimpleText(a.in, "Describe the change:", a.out)
				if err != nil {
					return err
				}
			}
			req := &pb.RefineRequest{ParentVersionID: args[0], Constraints: constraints, Instruction: instruction}
			return a.call(cmd.Context(), true, func(ctx context.Context, c client.Client) (any, error) {
				return c.Refine(ctx, req)
			})
		},
	}
	cmd.Flags().StringVarP(&instruction, "instruction", "i", "", "free-text refinement instruction")
	cmd.Flags().StringVar(&tone, "tone", "", "tone shift: \"more playful\", \"more professional\", \"more modern\", \"more classic\"")
	cmd.Flags().StringSliceVar(&keep, "keep", nil, "parts to keep: primary, secondary, accent, semantic, typography, components")
	cmd.Flags().BoolVar(&improveA11y, "improve-accessibility", false, "raise contrast to WCAG AA")
	cmd.Flags().StringArrayVar(&changes, "change", nil, "specific change, repeatable")
	return cmd
}

// buildConstraints maps refine flags to Constraints, or nil when no flag
// was set.
func buildConstraints(keep []string, tone string, improveA11y bool, changes []string) (*refine.Constraints, error) {
	c := &refine.Constraints{
		AdjustTone:           refine.Tone(tone),
		ImproveAccessibility: improveA11y,
		SpecificChanges:      changes,
	}
	for _, k := range keep {
		switch strings.ToLower(strings.TrimSpace(k)) {
		case "primary":
			c.KeepPrimaryColor = true
		case "secondary":
			c.KeepSecondaryColor = true
		case "accent":
			c.KeepAccentColor = true
		case "semantic":
			c.KeepSemanticColors = true
		case "typography":
			c.KeepTypography = true
		case "components":
			c.KeepComponents = true
		default:
			return nil, fmt.Errorf("unknown --keep value %q", k)
		}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if len(keep) == 0 && tone == "" && !improveA11y && len(changes) == 0 {
		return nil, nil
	}
	return c, nil
}

func (a *App) balanceCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Show the credit balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.call(cmd.Context(), true, func(ctx context.Context, c client.Client) (any, error) {
				return c.Balance(ctx)
			})
		},
	}
}

func (a *App) showCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <artifact id>",
		Short: "Print a stored design system",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.call(cmd.Context(), true, func(ctx context.Context, c client.Client) (any, error) {
				return c.Artifact(ctx, args[0])
			})
		},
	}
}

func (a *App) compareCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "compare <from id> <to id>",
		Short: "Compare two stored versions",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.call(cmd.Context(), true, func(ctx context.Context, c client.Client) (any, error) {
				return c.Compare(ctx, args[0], args[1])
			})
		},
	}
}

// Describe turns a command error into a line for the user.
func Describe(err error) string {
	var ice *common.InsufficientCreditsError
	switch {
	case errors.As(err, &ice):
		return fmt.Sprintf("insufficient credits: %d required, %d available", ice.Required, ice.Balance)
	case errors.Is(err, client.ErrUnauthorized):
		return "unauthorized: check your access token"
	case errors.Is(err, client.ErrNotFound):
		return "not found"
	default:
		return err.Error()
	}
}
