package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/learnpath/internal/cli/formatter"
	"github.com/alexanderramin/learnpath/internal/service"
	"github.com/spf13/cobra"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Plans       service.PlanService
	Progress    service.ProgressService
	Content     service.ContentService
	Assessments service.AssessmentService

	// ContentConcurrency bounds parallel model calls for "item content --all".
	ContentConcurrency int

	// IsInteractive reports whether stdin is a terminal. Forms and spinners
	// only run when it does.
	IsInteractive func() bool
	// Now is the clock used for relative timestamps.
	Now func() time.Time
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// spin starts a spinner on stderr for interactive sessions.
func (a *App) spin(cmd *cobra.Command, message string) func() {
	if !a.interactive() {
		return formatter.StartSpinner(nil, message)
	}
	return formatter.StartSpinner(cmd.ErrOrStderr(), message)
}

// NewRootCmd creates the top-level "learnpath" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "learnpath",
		Short:         "Personalized learning plans with approval, progress and quizzes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newPlanCmd(app),
		newItemCmd(app),
		newQuizCmd(app),
	)

	return root
}

// parseOrder reads a 1-based module position argument.
func parseOrder(arg string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid module number %q: must be a positive integer", arg)
	}
	return n, nil
}

// readSource returns the contents of path, or of stdin when path is "-".
func readSource(cmd *cobra.Command, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}
