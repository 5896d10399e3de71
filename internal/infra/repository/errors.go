package repository

import (
	"errors"

	repo "camerastore/internal/repository"

	"gorm.io/gorm"
)

// gormのエラーをrepository層のエラーにそろえる
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repo.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return repo.ErrDuplicateKey
	default:
		return err
	}
}
