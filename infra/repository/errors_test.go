package infrarepository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/amirasaad/payoutrouter/pkg/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMapGormError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    error
		expected error
	}{
		{name: "duplicate key", input: gorm.ErrDuplicatedKey, expected: repository.ErrAlreadyExists},
		{name: "record not found", input: gorm.ErrRecordNotFound, expected: repository.ErrNotFound},
		{name: "foreign key violated", input: gorm.ErrForeignKeyViolated, expected: repository.ErrNotFound},
		{
			name:     "joined duplicate key",
			input:    errors.Join(errors.New("outer error"), gorm.ErrDuplicatedKey),
			expected: repository.ErrAlreadyExists,
		},
		{
			name:     "wrapped record not found",
			input:    fmt.Errorf("get transaction: %w", gorm.ErrRecordNotFound),
			expected: repository.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.ErrorIs(t, MapGormError(tt.input), tt.expected)
		})
	}
}

func TestMapGormError_Passthrough(t *testing.T) {
	t.Parallel()

	require.NoError(t, MapGormError(nil))

	custom := errors.New("connection reset")
	assert.Equal(t, custom, MapGormError(custom))
}

func TestWrapError(t *testing.T) {
	t.Parallel()

	require.NoError(t, WrapError(func() error { return nil }))
	assert.ErrorIs(t, WrapError(func() error { return gorm.ErrRecordNotFound }), repository.ErrNotFound)
	assert.Panics(t, func() {
		_ = WrapError(func() error { panic("test panic") })
	})
}
