package console

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ben-Foxman/Formal-Sys-Explorer/internal/alphabet"
	"github.com/Ben-Foxman/Formal-Sys-Explorer/internal/rules"
	"github.com/Ben-Foxman/Formal-Sys-Explorer/internal/search"
	"github.com/Ben-Foxman/Formal-Sys-Explorer/internal/system"
	"github.com/Ben-Foxman/Formal-Sys-Explorer/internal/theorem"
)

func TestPrinter_Targets(t *testing.T) {
	buf := &bytes.Buffer{}
	p := NewPrinter(buf)

	p.Targets(&search.Result{
		MaxDepth: 3,
		Targets: []search.TargetResult{
			{Target: "aaaa", Found: true, Depth: 2},
			{Target: "b", Found: false},
		},
	})

	assert.Equal(t, "✓ ('aaaa', 2)\n✗ 'b' not found within depth 3\n", buf.String())
}

func TestPrinter_Theorems(t *testing.T) {
	buf := &bytes.Buffer{}
	p := NewPrinter(buf)

	p.Theorems([]theorem.Theorem{{Value: "a", Depth: 0}, {Value: "aa", Depth: 1}})
	assert.Equal(t, "('a', 0)\n('aa', 1)\n2 theorems\n", buf.String())

	buf.Reset()
	p.Theorems([]theorem.Theorem{{Value: "", Depth: 1}})
	assert.Equal(t, "('', 1)\n1 theorem\n", buf.String())
}

func TestPrinter_Summary(t *testing.T) {
	buf := &bytes.Buffer{}
	p := NewPrinter(buf)

	p.Summary(&search.Result{RunID: "r1", Iterations: 1, Evaluations: 4, Searched: 2, Elapsed: 1500 * time.Microsecond})
	assert.Equal(t, "run r1: 1 iteration, 4 evaluations, explored to depth 2 in 1.5ms\n", buf.String())
}

func TestPrinter_Rules(t *testing.T) {
	b := system.NewBuilder(nil)
	require.NoError(t, b.SetAlphabet(alphabet.MustNew("ab")))
	_, err := b.DefineRule("D.1->${0}${0}", []string{"a+"})
	require.NoError(t, err)
	_, err = b.DefineRule("Z.0->b", nil)
	require.NoError(t, err)
	sys, err := b.Build()
	require.NoError(t, err)

	buf := &bytes.Buffer{}
	p := NewPrinter(buf)
	p.Rules(sys.Rules())

	out := buf.String()
	assert.Contains(t, out, "D.1 → ${0}${0}\n")
	assert.Contains(t, out, "filters: a+\n")
	assert.Contains(t, out, "Z.0 → b\n")

	buf.Reset()
	p.Rules([]*rules.Rule{})
	assert.Equal(t, "no rules defined\n", buf.String())
}

func TestPrinter_Status(t *testing.T) {
	buf := &bytes.Buffer{}
	p := NewPrinter(buf)

	p.Status(Status{Alphabet: "ab", Dialect: "compose", Axioms: 1, Rules: 2, Theorems: 5, Searched: 2, MaxDepth: 5, MaxLength: 100})

	out := buf.String()
	assert.Contains(t, out, "alphabet")
	assert.Contains(t, out, "2 of 5")
	assert.Contains(t, out, "100")
}

func TestPrinter_Messages(t *testing.T) {
	buf := &bytes.Buffer{}
	p := NewPrinter(buf)

	p.Error(errors.New("boom"))
	p.Warning("careful")
	p.Value("depth", 5)
	p.Info("plain")

	assert.Equal(t, "✗ error: boom\n⚠ careful\ndepth: 5\nplain\n", buf.String())
	assert.Same(t, buf, p.Writer())
}
