package config

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrSetupUsage is returned for a setup argument not of the form
// s.x | a.x | r.x | d.x.
var ErrSetupUsage = errors.New("usage: [s.x | a.x | r.x | d.x]")

// ApplySetupArgs applies positional setup arguments on top of cfg:
//
//	s.<chars>  alphabet, sorted and deduplicated; the last one wins
//	a.<axiom>  adds an axiom
//	r.<rule>   adds a rule, NAME.ARITY->BODY
//	d.<n>      search depth
//
// Any s. argument replaces the configured alphabet; a., r. arguments append
// to the configured axioms and rules.
func ApplySetupArgs(cfg *Config, args []string) error {
	for _, arg := range args {
		if len(arg) < 2 || arg[1] != '.' {
			return fmt.Errorf("%w: %q", ErrSetupUsage, arg)
		}
		info := arg[2:]
		switch arg[0] {
		case 's':
			cfg.System.Alphabet = sortedUnique(info)
		case 'a':
			cfg.System.Axioms = append(cfg.System.Axioms, info)
		case 'r':
			cfg.System.Rules = append(cfg.System.Rules, RuleConfig{Spec: info})
		case 'd':
			n, err := strconv.Atoi(info)
			if err != nil {
				return fmt.Errorf("%s: invalid depth", info)
			}
			cfg.Search.MaxDepth = n
		default:
			return fmt.Errorf("%w: %q", ErrSetupUsage, arg)
		}
	}
	return nil
}

func sortedUnique(s string) string {
	seen := make(map[rune]struct{})
	var runes []rune
	for _, r := range s {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		runes = append(runes, r)
	}
	sort.Slice(runes, func(i, j int) bool { return runes[i] < runes[j] })
	var b strings.Builder
	for _, r := range runes {
		b.WriteRune(r)
	}
	return b.String()
}
