package flow

import (
	"errors"
	"fmt"

	"github.com/renoribeiro/whatsapp-automation-v0-sub000/action"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/dispatch"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/logger"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/model"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/persistence"
	"go.uber.org/zap"
)

var ErrFlowInactive = errors.New("flow is not active")
var ErrStepLimitExceeded = errors.New("flow invocation exceeded step limit")

const DEFAULT_MAX_STEPS int = 100

// Engine walks the action graph of one flow for one contact. Each invocation
// runs inside a single execute-flow job; wait and delayed send actions
// suspend the invocation and re-enqueue a continuation job instead of
// blocking the worker.
type Engine struct {
	definitions   persistence.DefinitionStore
	contacts      persistence.ContactStore
	conversations persistence.ConversationStore
	registry      *action.Registry
	dispatcher    dispatch.Enqueuer
	maxSteps      int
}

func NewEngine(definitions persistence.DefinitionStore, contacts persistence.ContactStore,
	conversations persistence.ConversationStore, registry *action.Registry,
	dispatcher dispatch.Enqueuer, maxSteps int) *Engine {
	if maxSteps <= 0 {
		maxSteps = DEFAULT_MAX_STEPS
	}
	return &Engine{
		definitions:   definitions,
		contacts:      contacts,
		conversations: conversations,
		registry:      registry,
		dispatcher:    dispatcher,
		maxSteps:      maxSteps,
	}
}

// ExecuteFlow is the explicit execution request. It rejects inactive flows
// synchronously; on acceptance the invocation runs asynchronously.
func (e *Engine) ExecuteFlow(tenantId string, flowId string, contactId string, triggerData map[string]any) error {
	def, err := e.definitions.Get(tenantId, flowId)
	if err != nil {
		return err
	}
	if !def.Active {
		return ErrFlowInactive
	}
	return e.dispatcher.Enqueue(model.DispatchJob{
		Type: model.JOB_EXECUTE_FLOW,
		ExecuteFlow: &model.ExecuteFlowJob{
			TenantId:    tenantId,
			FlowId:      flowId,
			ContactId:   contactId,
			TriggerData: triggerData,
		},
	})
}

// HandleExecuteFlow is the execute-flow job handler. Execution errors abort
// the remainder of the invocation and are logged, never retried: side
// effects already applied (tags, sent messages) are not rolled back and a
// retry would repeat them.
func (e *Engine) HandleExecuteFlow(job model.DispatchJob) error {
	payload := job.ExecuteFlow
	if payload == nil {
		return fmt.Errorf("job %s has no execute flow payload", job.Id)
	}
	err := e.execute(payload)
	if err != nil {
		logger.Error("flow invocation aborted",
			zap.String("flow", payload.FlowId), zap.String("contact", payload.ContactId), zap.Error(err))
	}
	return nil
}

func (e *Engine) execute(payload *model.ExecuteFlowJob) error {
	def, err := e.definitions.Get(payload.TenantId, payload.FlowId)
	if err != nil {
		return err
	}
	if !def.Active {
		logger.Debug("skipping invocation of inactive flow", zap.String("flow", def.Id))
		return nil
	}
	contact, err := e.contacts.Get(payload.TenantId, payload.ContactId)
	if err != nil {
		return err
	}
	conversation, err := e.conversations.GetActive(payload.TenantId, payload.ContactId)
	if err != nil {
		var notFound persistence.NotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
		conversation = nil
	}
	inv := &model.Invocation{
		Contact:      contact,
		Conversation: conversation,
		TriggerData:  payload.TriggerData,
		Resumed:      payload.ResumeActionId != "" && payload.DelayConsumed,
	}
	start := payload.ResumeActionId
	if start == "" {
		start = def.Root().Id
	}
	return e.walk(def, inv, start, payload)
}

func (e *Engine) walk(def *model.FlowDefinition, inv *model.Invocation, start string, payload *model.ExecuteFlowJob) error {
	index := def.ActionIndex()
	current := start
	steps := 0
	for current != "" {
		node, ok := index[current]
		if !ok {
			// unresolvable next id terminates the walk silently
			return nil
		}
		steps++
		if steps > e.maxSteps {
			return fmt.Errorf("%w: flow %s stopped at action %s after %d steps", ErrStepLimitExceeded, def.Id, current, steps)
		}
		handler, err := e.registry.Get(node.Type)
		if err != nil {
			return err
		}
		result, err := handler.Execute(*node, inv)
		if err != nil {
			// webhook failures are logged and the walk continues; any other
			// handler failure abandons the remaining actions
			if node.Type != model.ACTION_WEBHOOK {
				return err
			}
			logger.Warn("webhook action failed, continuing flow",
				zap.String("flow", def.Id), zap.String("action", node.Id), zap.Error(err))
			result = action.Result{}
		}
		inv.Resumed = false
		if result.Suspend != nil {
			return e.suspend(payload, result.Suspend)
		}
		if result.Terminate {
			return nil
		}
		if result.NextOverride != "" {
			current = result.NextOverride
		} else {
			current = node.NextAction
		}
	}
	return nil
}

func (e *Engine) suspend(payload *model.ExecuteFlowJob, s *action.Suspension) error {
	if s.ResumeActionId == "" {
		return nil
	}
	continuation := *payload
	continuation.ResumeActionId = s.ResumeActionId
	continuation.DelayConsumed = s.DelayConsumed
	return e.dispatcher.EnqueueWithDelay(model.DispatchJob{
		Type:        model.JOB_EXECUTE_FLOW,
		ExecuteFlow: &continuation,
	}, s.Delay)
}
