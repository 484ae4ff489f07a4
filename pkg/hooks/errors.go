package hooks

import (
	pkgerrors "github.com/glorpus-work/acquire/pkg/errors"
)

// ErrUnsupportedHookEvent is returned when an unsupported hooks event is used.
func ErrUnsupportedHookEvent(event string) error {
	return pkgerrors.Wrapf(pkgerrors.ErrHookExecution, "unsupported hooks event: %s", event)
}
