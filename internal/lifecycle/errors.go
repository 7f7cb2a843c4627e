package lifecycle

import (
	"errors"
	"fmt"

	apierrors "k8s.io/apimachinery/pkg/api/errors"

	"github.com/sttts/kmanage/pkg/workload"
)

// ErrNoSession is returned when an operation needs an open session of a
// specific mode and none is active.
var ErrNoSession = errors.New("no matching operation session is open")

// RequestError is a failed backend call: a non-2xx answer or a transport
// failure. The store is left as it was.
type RequestError struct {
	Verb      Verb
	Kind      workload.Kind
	Namespace string
	Name      string
	Err       error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s of %s %q in namespace %q failed: %s", e.Verb, e.Kind, e.Name, e.Namespace, e.Detail())
}

func (e *RequestError) Unwrap() error { return e.Err }

// Detail returns the message supplied by the backend, or the transport error.
func (e *RequestError) Detail() string {
	var status apierrors.APIStatus
	if errors.As(e.Err, &status) {
		if msg := status.Status().Message; msg != "" {
			return msg
		}
	}
	return e.Err.Error()
}

// IsRequestError reports whether err is or wraps a RequestError.
func IsRequestError(err error) bool {
	var re *RequestError
	return errors.As(err, &re)
}
