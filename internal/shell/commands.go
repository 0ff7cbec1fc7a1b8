package shell

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Ben-Foxman/Formal-Sys-Explorer/internal/console"
	"github.com/Ben-Foxman/Formal-Sys-Explorer/internal/search"
)

// Commands returns the shell's commands. get is called when a command runs,
// so the commands can be registered before the Shell exists.
func Commands(get func() *Shell) []*cobra.Command {
	return []*cobra.Command{
		targetCmd(get),
		exhaustCmd(get),
		boundCmd(get, "depth", "Show or set the maximum derivation depth",
			(*search.Engine).MaxDepth, (*search.Engine).SetMaxDepth),
		boundCmd(get, "length", "Show or set the maximum theorem length",
			(*search.Engine).MaxLength, (*search.Engine).SetMaxLength),
		rulesCmd(get),
		theoremsCmd(get),
		statusCmd(get),
		quitCmd(get),
	}
}

func targetCmd(get func() *Shell) *cobra.Command {
	var stats bool
	cmd := &cobra.Command{
		Use:   "target <string>...",
		Short: "Search for strings until each is derived or the depth bound is reached",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := get()
			res, err := s.engine.Target(cmd.Context(), args...)
			if err != nil {
				return err
			}
			s.printer.Targets(res)
			if stats {
				s.printer.Summary(res)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&stats, "stats", false, "print run statistics")
	return cmd
}

func exhaustCmd(get func() *Shell) *cobra.Command {
	var (
		where string
		stats bool
	)
	cmd := &cobra.Command{
		Use:   "exhaust",
		Short: "Derive every theorem within the depth and length bounds",
		Example: `  exhaust
  exhaust --where 'depth > 1 && size(value) < 4'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := get()
			// Compile first so a bad predicate costs no search.
			pred, err := s.predicate(where)
			if err != nil {
				return err
			}
			res, err := s.engine.Exhaust(cmd.Context())
			if err != nil {
				return err
			}
			matched, err := pred.Filter(res.Theorems)
			if err != nil {
				return err
			}
			s.printer.Theorems(matched)
			if stats {
				s.printer.Summary(res)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&where, "where", "w", "", "CEL predicate over value, depth and length")
	cmd.Flags().BoolVar(&stats, "stats", false, "print run statistics")
	return cmd
}

func boundCmd(get func() *Shell, name, short string, read func(*search.Engine) int, write func(*search.Engine, int) error) *cobra.Command {
	return &cobra.Command{
		Use:   name + " [n]",
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			s := get()
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("%s: invalid %s", args[0], name)
				}
				if err := write(s.engine, n); err != nil {
					return err
				}
			}
			s.printer.Value(name, read(s.engine))
			return nil
		},
	}
}

func rulesCmd(get func() *Shell) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List the rules with their filters",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			s := get()
			s.printer.Rules(s.engine.System().Rules())
			return nil
		},
	}
}

func theoremsCmd(get func() *Shell) *cobra.Command {
	var where string
	cmd := &cobra.Command{
		Use:   "theorems",
		Short: "List the theorems derived so far without searching",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			s := get()
			pred, err := s.predicate(where)
			if err != nil {
				return err
			}
			known, err := pred.Filter(s.engine.Theorems())
			if err != nil {
				return err
			}
			s.printer.Theorems(known)
			return nil
		},
	}
	cmd.Flags().StringVarP(&where, "where", "w", "", "CEL predicate over value, depth and length")
	return cmd
}

func statusCmd(get func() *Shell) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the system and search progress",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			s := get()
			sys := s.engine.System()
			s.printer.Status(console.Status{
				Alphabet:  sys.Alphabet().String(),
				Dialect:   string(sys.Dialect()),
				Axioms:    len(sys.Axioms()),
				Rules:     len(sys.Rules()),
				Theorems:  len(s.engine.Theorems()),
				Searched:  s.engine.Searched(),
				MaxDepth:  s.engine.MaxDepth(),
				MaxLength: s.engine.MaxLength(),
			})
			return nil
		},
	}
}

func quitCmd(get func() *Shell) *cobra.Command {
	return &cobra.Command{
		Use:     "quit",
		Aliases: []string{"exit"},
		Short:   "Leave the shell",
		Args:    cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			get().quit = true
			return nil
		},
	}
}
