package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAs_WrappedError(t *testing.T) {
	base := NotFound("User not found")
	wrapped := fmt.Errorf("services.user.Update: %w", base)

	got, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, KindNotFound, got.Kind)
	assert.Equal(t, "User not found", got.Message)
}

func TestAs_PlainError(t *testing.T) {
	got, ok := As(errors.New("connection refused"))
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestIsKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind Kind
		want bool
	}{
		{name: "validation", err: Validation("Please provide all required fields"), kind: KindValidation, want: true},
		{name: "conflict is not validation", err: Conflict("User already exists"), kind: KindValidation, want: false},
		{name: "business rule", err: BusinessRule("Your payment has expired."), kind: KindBusinessRule, want: true},
		{name: "forbidden wrapped", err: fmt.Errorf("op: %w", Forbidden("nope")), kind: KindForbidden, want: true},
		{name: "plain error", err: errors.New("boom"), kind: KindNotFound, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsKind(tt.err, tt.kind))
		})
	}
}

func TestError_Message(t *testing.T) {
	assert.Equal(t, "conflict: User already exists", Conflict("User already exists").Error())
	assert.Equal(t, "kind(42)", Kind(42).String())
}
