package relay

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/raysh454/proxyview/internal/model"
)

// ErrTransportExhausted matches every *TransportError.
var ErrTransportExhausted = errors.New("relay: all transports failed")

// AttemptError is the transport fault of a single candidate.
type AttemptError struct {
	Transport string
	URL       string
	Err       error
}

func (e *AttemptError) Error() string {
	return fmt.Sprintf("%s attempt %s: %v", e.Transport, e.URL, e.Err)
}

func (e *AttemptError) Unwrap() error { return e.Err }

// TransportError is returned when both the secure and the insecure attempt
// fault before any response is received.
type TransportError struct {
	Descriptor model.RequestDescriptor
	Faults     *multierror.Error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("relay %s: all transports failed: %v", e.Descriptor, e.Faults.ErrorOrNil())
}

func (e *TransportError) Is(target error) bool { return target == ErrTransportExhausted }

func (e *TransportError) Unwrap() error { return e.Faults.ErrorOrNil() }

// Attempts returns the per-candidate faults in attempt order.
func (e *TransportError) Attempts() []*AttemptError {
	if e.Faults == nil {
		return nil
	}
	out := make([]*AttemptError, 0, len(e.Faults.Errors))
	for _, err := range e.Faults.Errors {
		var ae *AttemptError
		if errors.As(err, &ae) {
			out = append(out, ae)
		}
	}
	return out
}

func newFaults() *multierror.Error {
	return &multierror.Error{ErrorFormat: inlineFormat}
}

func inlineFormat(errs []error) string {
	parts := make([]string, 0, len(errs))
	for _, err := range errs {
		parts = append(parts, err.Error())
	}
	return strings.Join(parts, "; ")
}
