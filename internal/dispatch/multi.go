package dispatch

import (
	"context"
	"errors"

	"github.com/riddhika-19/openboxcodelearn/internal/notify"
)

// Multi fans a signal out to every dispatcher in order. A failure in one
// does not stop the others; all failures are joined.
type Multi []notify.Dispatcher

func (m Multi) Dispatch(ctx context.Context, sig notify.Signal) error {
	var errs []error
	for _, d := range m {
		if err := d.Dispatch(ctx, sig); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
