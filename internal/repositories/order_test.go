package repositories

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	apperrors "mealpay/internal/errors"
)

func TestMapCreateError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		duplicate bool
	}{
		{name: "unique violation", err: gorm.ErrDuplicatedKey, duplicate: true},
		{name: "wrapped unique violation", err: fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), duplicate: true},
		{name: "other failure", err: errors.New("connection reset")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapCreateError(tt.err)
			assert.Equal(t, tt.duplicate, errors.Is(got, apperrors.ErrDuplicateOrder))
			if !tt.duplicate {
				assert.ErrorIs(t, got, tt.err)
			}
		})
	}
}

func TestMapNotFound(t *testing.T) {
	assert.ErrorIs(t, mapNotFound(gorm.ErrRecordNotFound), apperrors.ErrOrderNotFound)

	err := mapNotFound(errors.New("timeout"))
	assert.False(t, errors.Is(err, apperrors.ErrOrderNotFound))
	assert.Contains(t, err.Error(), "timeout")
}
