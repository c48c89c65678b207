package action

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/renoribeiro/whatsapp-automation-v0-sub000/model"
)

const webhookTimeout = 10 * time.Second

type webhookHandler struct {
	client *http.Client
}

var _ Handler = new(webhookHandler)

func NewWebhookHandler(client *http.Client) *webhookHandler {
	if client == nil {
		client = &http.Client{Timeout: webhookTimeout}
	}
	return &webhookHandler{
		client: client,
	}
}

func (h *webhookHandler) Type() model.ActionType {
	return model.ACTION_WEBHOOK
}

func (h *webhookHandler) Validate(node model.ActionNode) error {
	if node.Data.Url == "" {
		return fmt.Errorf("actionId=%s, webhook requires a url", node.Id)
	}
	switch node.Data.Method {
	case "", http.MethodPost, http.MethodPut, http.MethodPatch:
	default:
		return fmt.Errorf("actionId=%s, webhook method %s not supported", node.Id, node.Data.Method)
	}
	return nil
}

// Execute posts contact, trigger context and timestamp as JSON. The error is
// returned to the engine, which logs it and continues the walk.
func (h *webhookHandler) Execute(node model.ActionNode, inv *model.Invocation) (Result, error) {
	payload := map[string]any{
		"contact":   inv.Contact,
		"context":   inv.TriggerData,
		"timestamp": time.Now().Format(time.RFC3339),
	}
	for k, v := range node.Data.Extra {
		payload[k] = v
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return Result{}, err
	}
	method := node.Data.Method
	if method == "" {
		method = http.MethodPost
	}
	req, err := http.NewRequest(method, node.Data.Url, bytes.NewReader(body))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range node.Data.Headers {
		req.Header.Set(k, v)
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return Result{}, fmt.Errorf("webhook %s returned status %d", node.Data.Url, resp.StatusCode)
	}
	return Result{}, nil
}
