package action

import (
	"fmt"
	"time"

	"github.com/renoribeiro/whatsapp-automation-v0-sub000/model"
)

// Suspension asks the engine to stop the current invocation and re-enqueue a
// continuation job after Delay, resuming at ResumeActionId. DelayConsumed
// marks that the resumed action must not serve its delay again.
type Suspension struct {
	ResumeActionId string
	Delay          time.Duration
	DelayConsumed  bool
}

// Result of one handler invocation. NextOverride takes priority over the
// node's static nextAction; Terminate stops the walk silently.
type Result struct {
	NextOverride string
	Terminate    bool
	Suspend      *Suspension
}

type Handler interface {
	Type() model.ActionType
	Validate(node model.ActionNode) error
	Execute(node model.ActionNode, inv *model.Invocation) (Result, error)
}

// Registry maps every action type to its handler. The set of types is closed:
// resolving an unregistered type is a defect surfaced at validation time.
type Registry struct {
	handlers map[model.ActionType]Handler
}

func NewRegistry(handlers ...Handler) *Registry {
	r := &Registry{
		handlers: make(map[model.ActionType]Handler, len(handlers)),
	}
	for _, h := range handlers {
		r.handlers[h.Type()] = h
	}
	return r
}

func (r *Registry) Get(actionType model.ActionType) (Handler, error) {
	h, ok := r.handlers[actionType]
	if !ok {
		return nil, fmt.Errorf("no handler registered for action type %s", actionType)
	}
	return h, nil
}

// Validate checks an action node against its handler.
func (r *Registry) Validate(node model.ActionNode) error {
	h, err := r.Get(node.Type)
	if err != nil {
		return err
	}
	return h.Validate(node)
}
