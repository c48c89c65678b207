package action

import (
	"fmt"
	"time"

	"github.com/renoribeiro/whatsapp-automation-v0-sub000/model"
)

type waitHandler struct{}

var _ Handler = new(waitHandler)

func NewWaitHandler() *waitHandler {
	return &waitHandler{}
}

func (h *waitHandler) Type() model.ActionType {
	return model.ACTION_WAIT
}

func (h *waitHandler) Validate(node model.ActionNode) error {
	if node.Data.Seconds <= 0 {
		return fmt.Errorf("actionId=%s, wait duration %d wrong", node.Id, node.Data.Seconds)
	}
	if node.NextAction == "" {
		return fmt.Errorf("actionId=%s, wait action requires a nextAction", node.Id)
	}
	return nil
}

// Execute suspends the invocation. The engine re-enqueues a continuation job
// resuming at the next action after the duration; the worker slot is freed
// instead of sleeping.
func (h *waitHandler) Execute(node model.ActionNode, inv *model.Invocation) (Result, error) {
	return Result{Suspend: &Suspension{
		ResumeActionId: node.NextAction,
		Delay:          time.Duration(node.Data.Seconds) * time.Second,
	}}, nil
}
