package lifecycle

import (
	"fmt"

	"github.com/sttts/kmanage/pkg/workload"
)

// Outcome is the user-facing result of an operation.
type Outcome struct {
	Verb      Verb
	Kind      workload.Kind
	Namespace string
	Name      string
	Err       error
}

// Message renders the outcome as one line.
func (o Outcome) Message() string {
	if o.Err != nil {
		return o.Err.Error()
	}
	switch o.Verb {
	case VerbCreate:
		return fmt.Sprintf("%s %q created", o.Kind.Title(), o.Name)
	case VerbUpdate:
		return fmt.Sprintf("%s %q updated", o.Kind.Title(), o.Name)
	case VerbDelete:
		return fmt.Sprintf("%s %q deleted", o.Kind.Title(), o.Name)
	}
	return fmt.Sprintf("%s %s %q done", o.Verb, o.Kind, o.Name)
}

// Notifier receives outcomes. Successful reads are not reported.
type Notifier interface {
	Notify(Outcome)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Outcome)

func (f NotifierFunc) Notify(o Outcome) { f(o) }
