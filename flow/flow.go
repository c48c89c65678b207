package flow

import (
	"fmt"

	"github.com/renoribeiro/whatsapp-automation-v0-sub000/action"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/model"
)

// Validate rejects malformed definitions synchronously, before they can ever
// reach the dispatch pipeline.
func Validate(def *model.FlowDefinition, registry *action.Registry) error {
	if def.TenantId == "" {
		return fmt.Errorf("flow requires a tenantId")
	}
	if def.Trigger.Type == "" {
		return fmt.Errorf("flow trigger type can not be empty")
	}
	if _, err := model.ParseTriggerType(string(def.Trigger.Type)); err != nil {
		return err
	}
	if err := validateTrigger(def.Trigger); err != nil {
		return err
	}
	if len(def.Actions) == 0 {
		return fmt.Errorf("flow must have at least one action")
	}
	seen := make(map[string]any)
	for _, node := range def.Actions {
		if node.Id == "" {
			return fmt.Errorf("action id can not be empty")
		}
		if _, ok := seen[node.Id]; ok {
			return fmt.Errorf("action id %s is duplicate", node.Id)
		}
		seen[node.Id] = ""
		if node.Type == "" {
			return fmt.Errorf("actionId=%s, action type can not be empty", node.Id)
		}
		if _, err := model.ParseActionType(string(node.Type)); err != nil {
			return fmt.Errorf("actionId=%s, %w", node.Id, err)
		}
		if err := registry.Validate(node); err != nil {
			return err
		}
	}
	return nil
}

func validateTrigger(trigger model.Trigger) error {
	switch trigger.Type {
	case model.TRIGGER_KEYWORD:
		if len(trigger.Data.Keywords) == 0 {
			return fmt.Errorf("keyword trigger requires at least one keyword")
		}
	case model.TRIGGER_TAG_ADDED:
		if len(trigger.Data.TagIds) == 0 {
			return fmt.Errorf("tag_added trigger requires at least one tag id")
		}
	case model.TRIGGER_TIME_BASED:
		if trigger.Data.IntervalMinutes < 0 {
			return fmt.Errorf("time_based trigger interval %d wrong", trigger.Data.IntervalMinutes)
		}
	}
	return nil
}
