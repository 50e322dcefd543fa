package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/learnpath/internal/cli/formatter"
	"github.com/alexanderramin/learnpath/internal/domain"
	"github.com/alexanderramin/learnpath/internal/planparse"
	"github.com/alexanderramin/learnpath/internal/repository"
	"github.com/alexanderramin/learnpath/internal/service"
	"github.com/spf13/cobra"
)

func newPlanCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Request, review and approve learning plans",
	}

	cmd.AddCommand(
		newPlanCreateCmd(app),
		newPlanListCmd(app),
		newPlanShowCmd(app),
		newPlanImproveCmd(app),
		newPlanApproveCmd(app),
		newPlanRejectCmd(app),
		newPlanPreviewCmd(app),
		newPlanProgressCmd(app),
	)

	return cmd
}

func newPlanCreateCmd(app *App) *cobra.Command {
	var (
		req      service.SubmitPlanRequest
		stacks   stackFlag
		profile  profileFlags
		textFile string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Submit a learning plan request for approval",
		Long: `Submit a learning plan request. The plan text is generated by the
configured model, or read from --text-file when given. Missing fields are
asked for interactively on a terminal.`,
		Example: `  learnpath plan create --learner u42 --goals "Ship a Go REST API" --months 2 --hours 8 --stack Go:Beginner
  learnpath plan create --learner u42 --goals "Rust" --months 1 --hours 5 --text-file plan.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req.TechStacks = stacks.stacks
			req.ProjectRelated = req.ProjectName != ""
			req.Profile = profile.value()

			if (req.LearnerID == "" || req.Goals == "") && app.interactive() {
				in := newPlanRequestInput(req)
				if err := planRequestForm(in).Run(); err != nil {
					return err
				}
				if err := in.apply(&req); err != nil {
					return err
				}
			}

			if textFile != "" {
				text, err := readSource(cmd, textFile)
				if err != nil {
					return err
				}
				req.PlanText = text
			}

			var stop func()
			if req.PlanText == "" {
				stop = app.spin(cmd, "Generating learning plan...")
			} else {
				stop = func() {}
			}
			detail, err := app.Plans.Submit(cmd.Context(), req)
			stop()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Submitted plan %s for approval.\n\n", detail.Plan.DisplayID())
			fmt.Fprintln(out, formatter.FormatPlanDetail(detail.Plan, detail.Items))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.LearnerID, "learner", "", "Learner ID")
	f.StringVar(&req.Goals, "goals", "", "Learning goals")
	f.Float64Var(&req.Months, "months", 0, "Plan duration in months")
	f.Float64Var(&req.HoursPerWeek, "hours", 0, "Hours available per week")
	f.StringVar(&req.ProjectName, "project", "", "Related project name")
	f.Var(&stacks, "stack", "Tech stack as NAME[:LEVEL[:YEARS]] (repeatable)")
	f.StringVar(&textFile, "text-file", "", "Use plan text from a file instead of generating it (- for stdin)")
	profile.bind(f)

	return cmd
}

func newPlanListCmd(app *App) *cobra.Command {
	var status, learner string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List learning plans, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			plans, err := app.Plans.List(cmd.Context(), repository.PlanFilter{
				Status:    domain.PlanStatus(status),
				LearnerID: learner,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatPlanList(plans, app.now()))
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status (pending_approval, approved, in_progress, completed, rejected)")
	cmd.Flags().StringVar(&learner, "learner", "", "Filter by learner ID")

	return cmd
}

func newPlanShowCmd(app *App) *cobra.Command {
	var asJSON, withMessages bool

	cmd := &cobra.Command{
		Use:   "show PLAN",
		Short: "Show a plan with its modules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			detail, err := app.Plans.Get(ctx, args[0])
			if err != nil {
				return err
			}

			var msgs []*domain.ChatMessage
			if withMessages || asJSON {
				if msgs, err = app.Plans.Messages(ctx, detail.Plan.ID); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, toPlanJSON(detail.Plan, detail.Items, msgs))
			}
			fmt.Fprintln(out, formatter.FormatPlanDetail(detail.Plan, detail.Items))
			if withMessages {
				fmt.Fprintln(out)
				fmt.Fprintln(out, formatter.Header("Conversation"))
				fmt.Fprintln(out, formatter.FormatMessages(msgs, app.now()))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the plan as JSON")
	cmd.Flags().BoolVar(&withMessages, "messages", false, "Include the revision conversation")

	return cmd
}

func newPlanImproveCmd(app *App) *cobra.Command {
	var as, senderID string

	cmd := &cobra.Command{
		Use:   "improve PLAN REQUEST...",
		Short: "Ask the model to revise a pending plan",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			request := strings.Join(args[1:], " ")

			sender := domain.SenderRole(strings.ToLower(as))
			if senderID == "" && sender == domain.SenderLearner {
				detail, err := app.Plans.Get(ctx, args[0])
				if err != nil {
					return err
				}
				senderID = detail.Plan.LearnerID
			}

			stop := app.spin(cmd, "Revising learning plan...")
			detail, err := app.Plans.Improve(ctx, args[0], sender, senderID, request)
			stop()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, formatter.FormatPlanDetail(detail.Plan, detail.Items))
			return nil
		},
	}

	cmd.Flags().StringVar(&as, "as", string(domain.SenderLearner), "Who is asking: learner or admin")
	cmd.Flags().StringVar(&senderID, "by", "", "ID of the person asking (defaults to the plan's learner)")

	return cmd
}

func newPlanApproveCmd(app *App) *cobra.Command {
	var (
		adminID  string
		points   int
		textFile string
	)

	cmd := &cobra.Command{
		Use:   "approve PLAN",
		Short: "Approve a pending plan, optionally with adjusted text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var adjusted string
			if textFile != "" {
				text, err := readSource(cmd, textFile)
				if err != nil {
					return err
				}
				adjusted = text
			}

			detail, err := app.Plans.Approve(cmd.Context(), args[0], adminID, points, adjusted)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Approved plan %s with %d modules.\n\n", detail.Plan.DisplayID(), len(detail.Items))
			fmt.Fprintln(out, formatter.FormatPlanDetail(detail.Plan, detail.Items))
			return nil
		},
	}

	cmd.Flags().StringVar(&adminID, "admin", "", "Approving admin ID")
	cmd.Flags().IntVar(&points, "points", 0, "Redeemable points awarded on completion")
	cmd.Flags().StringVar(&textFile, "text-file", "", "Adjusted plan text replacing the current text (- for stdin)")
	_ = cmd.MarkFlagRequired("admin")

	return cmd
}

func newPlanRejectCmd(app *App) *cobra.Command {
	var notes string

	cmd := &cobra.Command{
		Use:   "reject PLAN",
		Short: "Reject a pending plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := app.Plans.Reject(cmd.Context(), args[0], notes)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rejected plan %s.\n", plan.DisplayID())
			return nil
		},
	}

	cmd.Flags().StringVar(&notes, "notes", "", "Reason shown to the learner")

	return cmd
}

func newPlanPreviewCmd(app *App) *cobra.Command {
	var (
		months, hours float64
		asJSON        bool
	)

	cmd := &cobra.Command{
		Use:   "preview FILE",
		Short: "Parse plan text into modules without saving anything",
		Long: `Parse a plan text file into modules the way an approved plan would be,
without calling a model or writing to the database. Use - to read stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readSource(cmd, args[0])
			if err != nil {
				return err
			}
			mods, err := app.Plans.Preview(text, months, hours)
			if err != nil {
				return err
			}

			pctx := planparse.NewContext(months, hours)
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, toPreviewJSON(mods, pctx))
			}
			fmt.Fprintln(out, formatter.FormatModules(mods, pctx))
			return nil
		},
	}

	cmd.Flags().Float64Var(&months, "months", 1, "Plan duration in months")
	cmd.Flags().Float64Var(&hours, "hours", 10, "Hours available per week")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print modules as JSON")

	return cmd
}

func newPlanProgressCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "progress PLAN",
		Short: "Show how far the learner is through a plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.Progress.Summary(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatProgress(p))
			return nil
		},
	}
}
