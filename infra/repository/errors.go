package infrarepository

import (
	"errors"

	"github.com/amirasaad/payoutrouter/pkg/repository"
	"gorm.io/gorm"
)

// MapGormError converts GORM errors to repository errors so callers never
// import gorm. Errors without a mapping are returned unchanged.
func MapGormError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return repository.ErrAlreadyExists
	case errors.Is(err, gorm.ErrRecordNotFound),
		errors.Is(err, gorm.ErrForeignKeyViolated):
		return repository.ErrNotFound
	}
	return err
}

// WrapError wraps a GORM operation and automatically maps errors.
//
// Usage:
//
//	err := WrapError(func() error {
//	    return r.db.WithContext(ctx).Create(&tx).Error
//	})
func WrapError(op func() error) error {
	return MapGormError(op())
}
