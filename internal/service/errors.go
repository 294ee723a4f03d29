package service

import (
	"errors"

	"github.com/fajrglobal/clinic-api/internal/repository"
	apperrors "github.com/fajrglobal/clinic-api/pkg/errors"
)

// StoreFailure maps an unexpected repository error onto an application error.
func StoreFailure(err error) error {
	if errors.Is(err, repository.ErrStoreUnavailable) {
		return apperrors.NewUnavailable(err)
	}
	return apperrors.NewInternal(err)
}
