package model

import (
	"fmt"
	"strings"
)

type TriggerType string

const (
	TRIGGER_MESSAGE_RECEIVED TriggerType = "message_received"
	TRIGGER_KEYWORD          TriggerType = "keyword"
	TRIGGER_TAG_ADDED        TriggerType = "tag_added"
	TRIGGER_TIME_BASED       TriggerType = "time_based"
)

func ParseTriggerType(t string) (TriggerType, error) {
	switch TriggerType(strings.ToLower(t)) {
	case TRIGGER_MESSAGE_RECEIVED:
		return TRIGGER_MESSAGE_RECEIVED, nil
	case TRIGGER_KEYWORD:
		return TRIGGER_KEYWORD, nil
	case TRIGGER_TAG_ADDED:
		return TRIGGER_TAG_ADDED, nil
	case TRIGGER_TIME_BASED:
		return TRIGGER_TIME_BASED, nil
	}
	return "", fmt.Errorf("unknown trigger type %s", t)
}

// TriggerData carries the matching criteria of a trigger. Which fields are
// read depends on the trigger type.
type TriggerData struct {
	Direction       string   `json:"direction,omitempty"`
	MessageType     string   `json:"messageType,omitempty"`
	Keywords        []string `json:"keywords,omitempty"`
	TagIds          []string `json:"tagIds,omitempty"`
	IntervalMinutes int      `json:"intervalMinutes,omitempty"`
	LeadSource      string   `json:"leadSource,omitempty"`
}

type Trigger struct {
	Type TriggerType `json:"type"`
	Data TriggerData `json:"data"`
}

type ActionType string

const (
	ACTION_SEND_MESSAGE ActionType = "send_message"
	ACTION_ADD_TAG      ActionType = "add_tag"
	ACTION_REMOVE_TAG   ActionType = "remove_tag"
	ACTION_WAIT         ActionType = "wait"
	ACTION_CONDITION    ActionType = "condition"
	ACTION_WEBHOOK      ActionType = "webhook"
)

func ParseActionType(t string) (ActionType, error) {
	switch ActionType(strings.ToLower(t)) {
	case ACTION_SEND_MESSAGE:
		return ACTION_SEND_MESSAGE, nil
	case ACTION_ADD_TAG:
		return ACTION_ADD_TAG, nil
	case ACTION_REMOVE_TAG:
		return ACTION_REMOVE_TAG, nil
	case ACTION_WAIT:
		return ACTION_WAIT, nil
	case ACTION_CONDITION:
		return ACTION_CONDITION, nil
	case ACTION_WEBHOOK:
		return ACTION_WEBHOOK, nil
	}
	return "", fmt.Errorf("unknown action type %s", t)
}

type Operator string

const (
	OP_EQUALS       Operator = "equals"
	OP_NOT_EQUALS   Operator = "not_equals"
	OP_CONTAINS     Operator = "contains"
	OP_GREATER_THAN Operator = "greater_than"
	OP_LESS_THAN    Operator = "less_than"
)

func ParseOperator(op string) (Operator, error) {
	switch Operator(strings.ToLower(op)) {
	case OP_EQUALS:
		return OP_EQUALS, nil
	case OP_NOT_EQUALS:
		return OP_NOT_EQUALS, nil
	case OP_CONTAINS:
		return OP_CONTAINS, nil
	case OP_GREATER_THAN:
		return OP_GREATER_THAN, nil
	case OP_LESS_THAN:
		return OP_LESS_THAN, nil
	}
	return "", fmt.Errorf("unknown condition operator %s", op)
}

type Condition struct {
	Field      string   `json:"field"`
	Operator   Operator `json:"operator"`
	Value      any      `json:"value"`
	NextAction string   `json:"nextAction"`
}

// ActionData is the type-specific payload of an action node. Which fields
// are read depends on the action type.
type ActionData struct {
	Template     string            `json:"template,omitempty"`
	MessageType  string            `json:"messageType,omitempty"`
	MediaUrl     string            `json:"mediaUrl,omitempty"`
	DelaySeconds int               `json:"delaySeconds,omitempty"`
	TagId        string            `json:"tagId,omitempty"`
	Seconds      int               `json:"seconds,omitempty"`
	Url          string            `json:"url,omitempty"`
	Method       string            `json:"method,omitempty"`
	Headers      map[string]string `json:"headers,omitempty"`
	Extra        map[string]any    `json:"extra,omitempty"`
}

type ActionNode struct {
	Id         string      `json:"id"`
	Type       ActionType  `json:"type"`
	Data       ActionData  `json:"data"`
	NextAction string      `json:"nextAction,omitempty"`
	Conditions []Condition `json:"conditions,omitempty"`
}

type FlowDefinition struct {
	Id       string       `json:"id"`
	TenantId string       `json:"tenantId"`
	Name     string       `json:"name"`
	Trigger  Trigger      `json:"trigger"`
	Actions  []ActionNode `json:"actions"`
	Active   bool         `json:"isActive"`
}

// Root returns the entry node of the action graph. The first action of the
// array is always the entry point.
func (f *FlowDefinition) Root() *ActionNode {
	if len(f.Actions) == 0 {
		return nil
	}
	return &f.Actions[0]
}

// ActionIndex builds an id lookup over the action graph.
func (f *FlowDefinition) ActionIndex() map[string]*ActionNode {
	index := make(map[string]*ActionNode, len(f.Actions))
	for i := range f.Actions {
		index[f.Actions[i].Id] = &f.Actions[i]
	}
	return index
}
