package cli

import (
	"fmt"

	"github.com/alexanderramin/learnpath/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newQuizCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quiz",
		Short: "Generate and take module quizzes",
	}

	cmd.AddCommand(
		newQuizGenerateCmd(app),
		newQuizSubmitCmd(app),
		newQuizFinalCmd(app),
	)

	return cmd
}

func newQuizGenerateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "generate PLAN MODULE",
		Short: "Generate a multiple-choice quiz for a module",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			order, err := parseOrder(args[1])
			if err != nil {
				return err
			}
			stop := app.spin(cmd, "Writing quiz...")
			a, err := app.Assessments.Generate(cmd.Context(), args[0], order)
			stop()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, formatter.FormatQuiz(a))
			fmt.Fprintln(out, formatter.Dim(fmt.Sprintf(
				"Answer with: learnpath quiz submit %s %d A B C ...", args[0], order)))
			return nil
		},
	}
}

func newQuizSubmitCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "submit PLAN MODULE ANSWER...",
		Short: "Grade answers to the latest quiz of a module",
		Long: `Grade answers to the latest quiz of a module. Answers are given in
question order, either as option letters (A-D) or as the option text.
Passing completes the module.`,
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			order, err := parseOrder(args[1])
			if err != nil {
				return err
			}
			res, err := app.Assessments.Submit(cmd.Context(), args[0], order, args[2:])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatQuizResult(res))
			return nil
		},
	}
}

func newQuizFinalCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "final",
		Short: "Take the course-wide quiz once every module is completed",
		Long: `The final quiz covers every completed module of a plan. It can be
generated once all modules are completed, and passing it completes the plan.`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "generate PLAN",
			Short: "Generate the final quiz for a plan",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				stop := app.spin(cmd, "Writing final quiz...")
				a, err := app.Assessments.GenerateFinal(cmd.Context(), args[0])
				stop()
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintln(out, formatter.FormatQuiz(a))
				fmt.Fprintln(out, formatter.Dim(fmt.Sprintf(
					"Answer with: learnpath quiz final submit %s A B C ...", args[0])))
				return nil
			},
		},
		&cobra.Command{
			Use:   "submit PLAN ANSWER...",
			Short: "Grade answers to the latest final quiz of a plan",
			Args:  cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				res, err := app.Assessments.SubmitFinal(cmd.Context(), args[0], args[1:])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatQuizResult(res))
				return nil
			},
		},
	)

	return cmd
}
