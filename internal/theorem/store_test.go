package theorem

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStore_AddFirstDepthWins(t *testing.T) {
	s := NewStore()

	assert.True(t, s.Add("a", 0))
	assert.True(t, s.Add("ab", 1))
	assert.False(t, s.Add("a", 3))

	d, ok := s.Depth("a")
	assert.True(t, ok)
	assert.Equal(t, 0, d)

	_, ok = s.Depth("zz")
	assert.False(t, ok)
	assert.Equal(t, 2, s.Len())
}

func TestStore_InsertionOrder(t *testing.T) {
	s := NewStore()
	s.Add("b", 0)
	s.Add("a", 0)
	s.Add("ba", 1)

	assert.Equal(t, []string{"b", "a", "ba"}, s.Values())
	assert.Equal(t, []Theorem{{"b", 0}, {"a", 0}, {"ba", 1}}, s.All())
	assert.Equal(t, []Theorem{{"b", 0}, {"a", 0}}, s.UpTo(0))
}

func TestStore_SnapshotsAreCopies(t *testing.T) {
	s := NewStore()
	s.Add("a", 0)

	all := s.All()
	all[0].Depth = 9
	values := s.Values()
	values[0] = "x"

	d, _ := s.Depth("a")
	assert.Equal(t, 0, d)
	assert.True(t, s.Contains("a"))
	assert.False(t, s.Contains("x"))
}
