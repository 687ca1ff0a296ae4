package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	errNope := New(NotAuthorized, "nope")
	wrapped := fmt.Errorf("accept: %w", errNope)

	assert.Equal(t, NotAuthorized, KindOf(wrapped))
	assert.Equal(t, Internal, KindOf(errors.New("boom")))
	assert.True(t, IsKind(wrapped, NotAuthorized))
	assert.False(t, IsKind(wrapped, NotFound))
}

func TestSentinelsWithSameKindStayDistinct(t *testing.T) {
	errA := New(Duplicate, "a")
	errB := New(Duplicate, "b")

	assert.True(t, errors.Is(fmt.Errorf("x: %w", errA), errA))
	assert.False(t, errors.Is(errA, errB))
}

func TestInvalidCarriesFields(t *testing.T) {
	err := Invalid("Validation failed", map[string]string{"title": "is required"})
	assert.Equal(t, Validation, err.Kind)
	assert.Equal(t, "is required", err.Fields["title"])
	assert.Equal(t, "validation", err.Kind.String())
}
