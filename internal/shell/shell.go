// Package shell is the interactive command loop. Every input line is split
// into words and dispatched through a fresh cobra command tree.
package shell

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/google/shlex"
	"github.com/spf13/cobra"

	"github.com/Ben-Foxman/Formal-Sys-Explorer/internal/console"
	"github.com/Ben-Foxman/Formal-Sys-Explorer/internal/prompt"
	"github.com/Ben-Foxman/Formal-Sys-Explorer/internal/query"
	"github.com/Ben-Foxman/Formal-Sys-Explorer/internal/search"
)

// Prompt is printed before each input line.
const Prompt = "fsys> "

// Shell runs commands against one search engine.
type Shell struct {
	engine   *search.Engine
	queries  *query.Compiler
	printer  *console.Printer
	prompter *prompt.Prompter
	logger   *slog.Logger
	quit     bool
}

// New creates a shell. prompter may be nil for non-interactive use.
func New(engine *search.Engine, printer *console.Printer, prompter *prompt.Prompter, logger *slog.Logger) (*Shell, error) {
	queries, err := query.NewCompiler()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Shell{
		engine:   engine,
		queries:  queries,
		printer:  printer,
		prompter: prompter,
		logger:   logger.With("component", "shell"),
	}, nil
}

// Dispatch runs one command given as words, e.g. ["target", "aaaa"].
func (s *Shell) Dispatch(ctx context.Context, args []string) error {
	root := &cobra.Command{
		Use:           "fsys",
		Short:         "Explore the theorems of a formal system",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	root.AddCommand(Commands(func() *Shell { return s })...)
	root.SetOut(s.printer.Writer())
	root.SetErr(s.printer.Writer())
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// Execute splits line into words and dispatches it. Blank lines are
// ignored.
func (s *Shell) Execute(ctx context.Context, line string) error {
	words, err := shlex.Split(line)
	if err != nil {
		return err
	}
	if len(words) == 0 {
		return nil
	}
	return s.Dispatch(ctx, words)
}

// Run reads and executes lines until quit, end of input or ctx is done.
// An interrupt cancels the running command only.
func (s *Shell) Run(ctx context.Context) error {
	if s.prompter == nil {
		return errors.New("shell has no input")
	}
	for !s.quit {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, err := s.prompter.ReadLine(Prompt)
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.printer.Info("")
				return nil
			}
			return err
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		cmdCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
		err = s.Execute(cmdCtx, line)
		stop()
		if err != nil {
			if errors.Is(err, context.Canceled) && ctx.Err() == nil {
				s.printer.Warning("interrupted")
				continue
			}
			s.logger.Debug("Command failed", "line", line, "error", err)
			s.printer.Error(err)
		}
	}
	return nil
}

func (s *Shell) predicate(where string) (*query.Predicate, error) {
	if strings.TrimSpace(where) == "" {
		return nil, nil
	}
	return s.queries.Compile(where)
}
