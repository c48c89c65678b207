package action

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/oliveagle/jsonpath"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/model"
)

type conditionHandler struct{}

var _ Handler = new(conditionHandler)

func NewConditionHandler() *conditionHandler {
	return &conditionHandler{}
}

func (h *conditionHandler) Type() model.ActionType {
	return model.ACTION_CONDITION
}

func (h *conditionHandler) Validate(node model.ActionNode) error {
	if len(node.Conditions) == 0 {
		return fmt.Errorf("actionId=%s, condition action requires at least one condition", node.Id)
	}
	for _, cond := range node.Conditions {
		if _, err := model.ParseOperator(string(cond.Operator)); err != nil {
			return fmt.Errorf("actionId=%s, %w", node.Id, err)
		}
		if cond.Field == "" {
			return fmt.Errorf("actionId=%s, condition field can not be empty", node.Id)
		}
		if cond.NextAction == "" {
			return fmt.Errorf("actionId=%s, condition requires a nextAction", node.Id)
		}
	}
	return nil
}

// Execute evaluates the conditions in order and branches to the first match.
// No match terminates the invocation silently.
func (h *conditionHandler) Execute(node model.ActionNode, inv *model.Invocation) (Result, error) {
	doc := conditionDocument(inv)
	for _, cond := range node.Conditions {
		actual, err := jsonpath.JsonPathLookup(doc, "$."+cond.Field)
		if err != nil {
			// unknown field: this condition simply does not match
			continue
		}
		match, err := evaluate(cond.Operator, actual, cond.Value)
		if err != nil {
			return Result{}, fmt.Errorf("actionId=%s, %w", node.Id, err)
		}
		if match {
			return Result{NextOverride: cond.NextAction}, nil
		}
	}
	return Result{Terminate: true}, nil
}

// conditionDocument exposes the invocation as {contact: {...}, context: {...}}
// so condition field paths like contact.name or context.age resolve.
func conditionDocument(inv *model.Invocation) map[string]any {
	doc := map[string]any{
		"contact": map[string]any{},
		"context": inv.TriggerData,
	}
	if inv.Contact != nil {
		data, err := json.Marshal(inv.Contact)
		if err == nil {
			var contactMap map[string]any
			if json.Unmarshal(data, &contactMap) == nil {
				doc["contact"] = contactMap
			}
		}
	}
	if inv.TriggerData == nil {
		doc["context"] = map[string]any{}
	}
	return doc
}

func evaluate(op model.Operator, actual any, expected any) (bool, error) {
	switch op {
	case model.OP_EQUALS:
		return asString(actual) == asString(expected), nil
	case model.OP_NOT_EQUALS:
		return asString(actual) != asString(expected), nil
	case model.OP_CONTAINS:
		return strings.Contains(strings.ToLower(asString(actual)), strings.ToLower(asString(expected))), nil
	case model.OP_GREATER_THAN:
		a, e, err := asNumbers(actual, expected)
		if err != nil {
			return false, err
		}
		return a > e, nil
	case model.OP_LESS_THAN:
		a, e, err := asNumbers(actual, expected)
		if err != nil {
			return false, err
		}
		return a < e, nil
	}
	return false, fmt.Errorf("unknown condition operator %s", op)
}

func asString(v any) string {
	return fmt.Sprintf("%v", v)
}

func asNumbers(actual any, expected any) (float64, float64, error) {
	a, err := toFloat(actual)
	if err != nil {
		return 0, 0, err
	}
	e, err := toFloat(expected)
	if err != nil {
		return 0, 0, err
	}
	return a, e, nil
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case string:
		return strconv.ParseFloat(n, 64)
	}
	return 0, fmt.Errorf("value %v is not numeric", v)
}
