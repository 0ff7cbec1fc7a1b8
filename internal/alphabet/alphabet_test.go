package alphabet

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DeduplicatesKeepingOrder(t *testing.T) {
	a, err := New("baab")
	require.NoError(t, err)

	assert.Equal(t, "ba", a.String())
	assert.Equal(t, 2, a.Len())
	assert.Equal(t, 'b', a.First())
}

func TestNew_Empty(t *testing.T) {
	a, err := New("")
	assert.Nil(t, a)
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestNewSorted(t *testing.T) {
	a, err := NewSorted("cbca")
	require.NoError(t, err)
	assert.Equal(t, "abc", a.String())
	assert.Equal(t, 'a', a.First())
}

func TestAlphabet_Check(t *testing.T) {
	a := MustNew("01")

	tests := []struct {
		name    string
		input   string
		wantErr bool
		char    rune
		offset  int
	}{
		{"empty string", "", false, 0, 0},
		{"all valid", "0110", false, 0, 0},
		{"invalid middle", "01x0", true, 'x', 2},
		{"invalid first", "a", true, 'a', 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := a.Check(tt.input)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrViolation)

			var verr *ViolationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.char, verr.Char)
			assert.Equal(t, tt.offset, verr.Offset)
		})
	}
}

func TestAlphabet_RunesIsCopy(t *testing.T) {
	a := MustNew("ab")
	r := a.Runes()
	r[0] = 'z'

	assert.Equal(t, "ab", a.String())
	assert.False(t, a.Contains('z'))
}

func TestDefault(t *testing.T) {
	a := MustNew(Default)
	assert.True(t, a.Contains('-'))
	assert.True(t, a.Contains('Z'))
	assert.False(t, a.Contains('$'))
	assert.Equal(t, 'a', a.First())
}
