package lifecycle

import (
	"github.com/sttts/kmanage/pkg/workload"
)

// State is the progress of one operation.
type State int

const (
	Idle State = iota
	Validating
	InFlight
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Validating:
		return "Validating"
	case InFlight:
		return "InFlight"
	case Succeeded:
		return "Succeeded"
	case Failed:
		return "Failed"
	}
	return "State(?)"
}

// Verb names an operation.
type Verb string

const (
	VerbCreate   Verb = "create"
	VerbUpdate   Verb = "update"
	VerbDelete   Verb = "delete"
	VerbLogs     Verb = "logs"
	VerbManifest Verb = "manifest"
)

// Transition is reported to observers whenever an operation changes state.
type Transition struct {
	ID        uint64
	Verb      Verb
	Kind      workload.Kind
	Namespace string
	Name      string
	From, To  State
	Err       error
}

type operation struct {
	c         *Controller
	id        uint64
	verb      Verb
	kind      workload.Kind
	namespace string
	name      string
	state     State
}

func (op *operation) to(s State, err error) {
	t := Transition{
		ID:        op.id,
		Verb:      op.verb,
		Kind:      op.kind,
		Namespace: op.namespace,
		Name:      op.name,
		From:      op.state,
		To:        s,
		Err:       err,
	}
	op.state = s
	op.c.log.V(1).Info("transition", "op", op.id, "verb", op.verb, "kind", op.kind, "namespace", op.namespace, "name", op.name, "from", t.From, "to", t.To)
	if op.c.observer != nil {
		op.c.observer(t)
	}
}
