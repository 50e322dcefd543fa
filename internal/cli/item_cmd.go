package cli

import (
	"fmt"

	"github.com/alexanderramin/learnpath/internal/cli/formatter"
	"github.com/alexanderramin/learnpath/internal/domain"
	"github.com/alexanderramin/learnpath/internal/service"
	"github.com/spf13/cobra"
)

func newItemCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Work through the modules of an approved plan",
		Long: `Work through the modules of an approved plan. Modules are addressed by
plan ID (or a unique prefix) and module number, e.g. "learnpath item start 7f3a 2".`,
	}

	cmd.AddCommand(
		newItemStartCmd(app),
		newItemDoneCmd(app),
		newItemContentCmd(app),
	)

	return cmd
}

func newItemStartCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "start PLAN MODULE",
		Short: "Start a module",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			order, err := parseOrder(args[1])
			if err != nil {
				return err
			}
			item, err := app.Progress.Start(cmd.Context(), args[0], order)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Started %s\n", formatter.Bold(item.Title))
			return nil
		},
	}
}

func newItemDoneCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "done PLAN MODULE",
		Short: "Mark a module as completed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			order, err := parseOrder(args[1])
			if err != nil {
				return err
			}
			item, err := app.Progress.Complete(ctx, args[0], order)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Completed %s\n\n", formatter.Bold(item.Title))
			p, err := app.Progress.Summary(ctx, item.PlanID)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, formatter.FormatProgress(p))
			return nil
		},
	}
}

func newItemContentCmd(app *App) *cobra.Command {
	var (
		all         bool
		regenerate  bool
		concurrency int
		profile     profileFlags
	)

	cmd := &cobra.Command{
		Use:   "content PLAN [MODULE]",
		Short: "Show a module's learning material, generating it when missing",
		Example: `  learnpath item content 7f3a 1
  learnpath item content 7f3a 1 --regenerate --role "Data Engineer"
  learnpath item content 7f3a --all --concurrency 4`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if all {
				if len(args) != 1 {
					return fmt.Errorf("--all takes no module number")
				}
				if concurrency <= 0 {
					concurrency = app.ContentConcurrency
				}
				stop := app.spin(cmd, "Generating module content...")
				n, err := app.Content.GenerateAll(ctx, args[0], profile.value(), concurrency)
				stop()
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Generated content for %d modules.\n", n)
				return nil
			}

			if len(args) != 2 {
				return fmt.Errorf("module number is required without --all")
			}
			order, err := parseOrder(args[1])
			if err != nil {
				return err
			}

			item, err := findItem(cmd, app, args[0], order)
			if err != nil {
				return err
			}
			if item.Content == "" || regenerate {
				stop := app.spin(cmd, "Generating module content...")
				item, err = app.Content.Generate(ctx, args[0], order, profile.value())
				stop()
				if err != nil {
					return err
				}
			}
			fmt.Fprintln(out, formatter.FormatItemContent(item))
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Generate content for every module that has none")
	cmd.Flags().BoolVar(&regenerate, "regenerate", false, "Replace existing content")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, fmt.Sprintf("Parallel model calls with --all (default %d)", service.DefaultContentConcurrency))
	profile.bind(cmd.Flags())

	return cmd
}

func findItem(cmd *cobra.Command, app *App, planRef string, order int) (*domain.LearningItem, error) {
	items, err := app.Plans.Items(cmd.Context(), planRef)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		if it.OrderIndex == order {
			return it, nil
		}
	}
	return nil, fmt.Errorf("plan %s has no module %d", planRef, order)
}
