package shared

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Is(t *testing.T) {
	t.Run("matches by code through wrapping", func(t *testing.T) {
		err := fmt.Errorf("load member: %w", NewDomainError("NOT_FOUND", "member 7 not found"))
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NotErrorIs(t, err, ErrForbidden)
	})

	t.Run("code of plain error is empty", func(t *testing.T) {
		assert.Equal(t, "", CodeOf(fmt.Errorf("boom")))
		assert.Equal(t, "INVALID_AMOUNT", CodeOf(ErrInvalidAmount))
	})
}
