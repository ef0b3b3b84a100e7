package form

import (
	"fmt"

	appErrors "formdeck/internal/errors"
)

func configurationError(reason string) error {
	return appErrors.New(appErrors.CodeConfigurationError, reason, nil)
}

func unknownKindError(name, kind string) error {
	return configurationError(fmt.Sprintf("field %q: unknown type %q", name, kind))
}

func unknownFieldError(name string) error {
	return appErrors.New(appErrors.CodeUnknownField, fmt.Sprintf("unknown field: %s", name), nil)
}

func typeMismatchError(name string, kind Kind, got ValueType) error {
	return appErrors.New(appErrors.CodeTypeMismatch,
		fmt.Sprintf("field %q (%s) cannot hold a %s value", name, kind, got), nil)
}

func submitError(err error) error {
	return appErrors.New(appErrors.CodeSubmitFailed, err.Error(), err)
}
