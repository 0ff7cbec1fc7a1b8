package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Ben-Foxman/Formal-Sys-Explorer/internal/config"
	"github.com/Ben-Foxman/Formal-Sys-Explorer/internal/console"
	"github.com/Ben-Foxman/Formal-Sys-Explorer/internal/shell"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		console.NewPrinter(os.Stderr).Error(err)
		stop()
		os.Exit(1)
	}
}

// run executes the command line. The app is built lazily in the pre-run
// hook so --help works without a valid configuration.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) (err error) {
	var (
		a          *app
		configDir  string
		configFile string
		noPrompt   bool
	)

	root := &cobra.Command{
		Use:   "fsys [setup-args...] [-- command [args...]]",
		Short: "Explore the theorems of a formal system",
		Long: `fsys derives the theorems of a formal system: an alphabet, a set of
axioms and string-rewriting rules, searched breadth first up to a depth.

Setup arguments extend the configuration file:
  s.<chars>  alphabet          a.<string>  axiom
  r.<rule>   NAME.ARITY->BODY  d.<n>       maximum depth

Without a command an interactive shell starts.`,
		Example: `  fsys s.ab a.a 'r.D.1->${0}${0}' d.3
  fsys s.ab a.a 'r.D.1->${0}${0}' -- target aaaa
  fsys --config system.yml exhaust --where 'depth > 1'`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			opts := appOptions{
				configDir:  configDir,
				configFile: configFile,
				stdin:      stdin,
				stdout:     stdout,
				stderr:     stderr,
			}
			if cmd == cmd.Root() {
				opts.setupArgs = args
				if dash := cmd.ArgsLenAtDash(); dash >= 0 {
					opts.setupArgs = args[:dash]
				} else {
					opts.askFilters = !noPrompt
				}
			}
			var err error
			a, err = newApp(cmd.Context(), opts)
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if dash := cmd.ArgsLenAtDash(); dash >= 0 {
				if dash == len(args) {
					return errors.New("missing command after --")
				}
				return a.shell.Dispatch(cmd.Context(), args[dash:])
			}
			return a.shell.Run(cmd.Context())
		},
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "configuration file layered over the config directory")
	root.PersistentFlags().StringVar(&configDir, "config-dir", config.DefaultDir, "directory holding fsys.yml and fsys.local.yml")
	root.Flags().BoolVar(&noPrompt, "no-prompt", false, "do not ask for filters of rules configured without any")

	for _, c := range shell.Commands(func() *shell.Shell { return a.shell }) {
		switch c.Name() {
		case "target", "exhaust":
			root.AddCommand(c)
		}
	}

	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	defer func() {
		if a != nil {
			if cerr := a.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}
	}()
	return root.ExecuteContext(ctx)
}
