package random

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringUsesOnlyAlphabet(t *testing.T) {
	r := New()
	const alphabet = "ABC123"

	for range 200 {
		s := r.String(6, alphabet)
		require.Len(t, s, 6)
		for _, ch := range s {
			assert.True(t, strings.ContainsRune(alphabet, ch), "unexpected char %q", ch)
		}
	}
}

func TestStringEmptyInputs(t *testing.T) {
	r := New()
	assert.Empty(t, r.String(0, "ABC"))
	assert.Empty(t, r.String(4, ""))
}

func TestIntnBounds(t *testing.T) {
	r := New()
	assert.Equal(t, 0, r.Intn(0))
	for range 100 {
		n := r.Intn(3)
		assert.GreaterOrEqual(t, n, 0)
		assert.Less(t, n, 3)
	}
}

func TestNewIDIsUUID(t *testing.T) {
	r := New()
	a, b := r.NewID(), r.NewID()

	_, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
