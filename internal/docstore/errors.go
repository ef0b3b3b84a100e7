package docstore

import (
	"fmt"

	appErrors "formdeck/internal/errors"
)

func notFoundError(id string) error {
	return appErrors.New(appErrors.CodeNotFound, fmt.Sprintf("node not found: %s", id), nil)
}

func alreadyExistsError(id string) error {
	return appErrors.New(appErrors.CodeAlreadyExists, fmt.Sprintf("node already exists: %s", id), nil)
}

func storeError(op string, err error) error {
	return appErrors.New(appErrors.CodeStoreFailed, fmt.Sprintf("%s: %v", op, err), err)
}

func invalidSelectorError(sel Selector) error {
	return appErrors.New(appErrors.CodeStoreFailed, fmt.Sprintf("unsupported selector %q", sel), nil)
}
