package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexanderramin/learnpath/internal/cli"
	"github.com/alexanderramin/learnpath/internal/config"
	"github.com/alexanderramin/learnpath/internal/db"
	"github.com/alexanderramin/learnpath/internal/intelligence"
	"github.com/alexanderramin/learnpath/internal/llm"
	"github.com/alexanderramin/learnpath/internal/logger"
	"github.com/alexanderramin/learnpath/internal/planparse"
	"github.com/alexanderramin/learnpath/internal/repository"
	"github.com/alexanderramin/learnpath/internal/service"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer log.Sync()

	// Open database
	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Wire repositories
	planRepo := repository.NewSQLiteLearningPlanRepo(database)
	itemRepo := repository.NewSQLiteLearningItemRepo(database)
	messageRepo := repository.NewSQLiteChatMessageRepo(database)
	assessmentRepo := repository.NewSQLiteAssessmentRepo(database)

	uow := db.NewSQLiteUnitOfWork(database)
	observer := service.NewLogUseCaseObserver(log)

	// Model-backed writers stay nil when the LLM is disabled; the services
	// then report llm.ErrDisabled for operations that need one.
	var (
		planWriter    intelligence.PlanWriter
		contentWriter intelligence.ContentWriter
		quizWriter    intelligence.QuizWriter
	)
	if cfg.LLM.Enabled {
		var llmObserver llm.Observer = llm.NoopObserver{}
		if cfg.LLM.LogCalls {
			llmObserver = llm.NewLogObserver(log)
		}
		client, err := llm.NewClient(cfg.LLM, llmObserver)
		if err != nil {
			return fmt.Errorf("creating llm client: %w", err)
		}
		planWriter = intelligence.NewPlanWriter(client)
		contentWriter = intelligence.NewContentWriter(client)
		quizWriter = intelligence.NewQuizWriter(client)
	}

	policy := service.PlanPolicy{
		Parse:        planparse.Options{BackfillMissing: cfg.Parse.BackfillMissing},
		MaxPlanBytes: cfg.Parse.MaxPlanBytes,
	}
	progressSvc := service.NewProgressService(planRepo, itemRepo, uow, observer)

	app := &cli.App{
		Plans:    service.NewPlanService(planRepo, itemRepo, messageRepo, uow, planWriter, policy, observer),
		Progress: progressSvc,
		Content:  service.NewContentService(planRepo, itemRepo, contentWriter, observer),
		Assessments: service.NewAssessmentService(planRepo, itemRepo, assessmentRepo, progressSvc, uow,
			quizWriter, service.AssessmentPolicy{
				PassPct:      cfg.Assessment.PassPct,
				FinalPassPct: cfg.Assessment.FinalPassPct,
			}, observer),
		ContentConcurrency: service.DefaultContentConcurrency,
	}

	// Detect interactive terminal for forms and spinners.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Execute root command
	return cli.NewRootCmd(app).ExecuteContext(ctx)
}
