package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	base := errors.New("connection refused")

	t.Run("direct code", func(t *testing.T) {
		err := New(CodeNotFound, "request not found")
		assert.True(t, HasCode(err, CodeNotFound))
		assert.False(t, HasCode(err, CodeInternal))
	})

	t.Run("nested code through fmt wrapping", func(t *testing.T) {
		inner := Wrap(base, CodeUnavailable, "store down")
		outer := Wrap(fmt.Errorf("query donors: %w", inner), CodeInternal, "find donors")
		assert.True(t, HasCode(outer, CodeInternal))
		assert.True(t, HasCode(outer, CodeUnavailable))
		assert.ErrorIs(t, outer, base)
	})

	t.Run("plain error has no code", func(t *testing.T) {
		assert.False(t, HasCode(base, CodeInternal))
		assert.Equal(t, CodeInternal, CodeOf(base))
	})

	t.Run("wrap nil stays nil", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, CodeInternal, "nothing"))
	})
}
