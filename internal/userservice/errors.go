package userservice

import (
	appErrors "formdeck/internal/errors"
)

func unauthorizedError(err error) error {
	return appErrors.New(appErrors.CodeUnauthorized, err.Error(), err)
}
