package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelErrors_AreDistinct(t *testing.T) {
	sentinels := []error{
		ErrNotFound,
		ErrConflict,
		ErrUnavailable,
		ErrUnauthorized,
	}

	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j {
				assert.NotErrorIs(t, a, b,
					"sentinels should be distinct: %v vs %v", a, b)
			}
		}
	}
}

func TestNotFoundError(t *testing.T) {
	tests := []struct {
		name        string
		entity      string
		id          string
		expectedMsg string
	}{
		{
			name:        "with entity and ID",
			entity:      "quote",
			id:          "42",
			expectedMsg: `quote with id "42" not found`,
		},
		{
			name:        "with entity only",
			entity:      "user",
			id:          "",
			expectedMsg: "user not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewNotFoundError(tt.entity, tt.id)

			assert.Equal(t, tt.expectedMsg, err.Error())
			require.ErrorIs(t, err, ErrNotFound)

			var notFound *NotFoundError
			require.ErrorAs(t, err, &notFound)
			assert.Equal(t, tt.entity, notFound.Entity)
			assert.Equal(t, tt.id, notFound.ID)
		})
	}
}

func TestConflictError_Kinds(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantKind      ConflictKind
		wantReference bool
	}{
		{
			name:          "duplicate",
			err:           NewDuplicateError("quote", "author and content already exist"),
			wantKind:      ConflictDuplicate,
			wantReference: false,
		},
		{
			name:          "reference",
			err:           NewReferenceError("quote", "still referenced"),
			wantKind:      ConflictReference,
			wantReference: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, tt.err, ErrConflict)
			assert.True(t, IsConflict(tt.err))
			assert.Equal(t, tt.wantReference, IsReferenceConflict(tt.err))

			var conflict *ConflictError
			require.ErrorAs(t, tt.err, &conflict)
			assert.Equal(t, tt.wantKind, conflict.Kind)
			assert.Contains(t, tt.err.Error(), "quote conflict")
		})
	}
}

func TestUnavailableError(t *testing.T) {
	cause := errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")

	t.Run("with cause", func(t *testing.T) {
		err := NewUnavailableError("postgres", "ping failed", cause)

		require.ErrorIs(t, err, ErrUnavailable)
		require.ErrorIs(t, err, cause)
		assert.Equal(t,
			`service "postgres" unavailable: ping failed: dial tcp 127.0.0.1:5432: connect: connection refused`,
			err.Error())
	})

	t.Run("without cause", func(t *testing.T) {
		err := NewUnavailableError("redis", "", nil)

		require.ErrorIs(t, err, ErrUnavailable)
		assert.Equal(t, `service "redis" unavailable`, err.Error())
	})
}

func TestHelpers_WrappedChain(t *testing.T) {
	base := NewNotFoundError("quote", "7")
	wrapped := fmt.Errorf("loading quote: %w", fmt.Errorf("repository: %w", base))

	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsConflict(wrapped))
	assert.False(t, IsUnavailable(wrapped))

	unavailable := fmt.Errorf("query: %w", NewUnavailableError("postgres", "", nil))
	assert.True(t, IsUnavailable(unavailable))

	unauthorized := fmt.Errorf("verify: %w", ErrUnauthorized)
	assert.True(t, IsUnauthorized(unauthorized))
}

func TestQuote_SameText(t *testing.T) {
	a := &Quote{Author: "Seneca", Content: "Luck is what happens when preparation meets opportunity."}

	assert.True(t, a.SameText(&Quote{Author: " seneca ", Content: "LUCK is what happens when preparation meets opportunity."}))
	assert.False(t, a.SameText(&Quote{Author: "Seneca", Content: "Something else."}))
}
