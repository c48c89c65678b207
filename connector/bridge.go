package connector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/renoribeiro/whatsapp-automation-v0-sub000/model"
)

// BridgeConnector talks to a self-hosted session bridge. Every request is
// scoped to a session instance identified by an opaque instance id.
type BridgeConnector struct {
	baseUrl string
	client  *http.Client
}

var _ Connector = new(BridgeConnector)

func NewBridgeConnector(baseUrl string, client *http.Client) *BridgeConnector {
	if client == nil {
		client = &http.Client{}
	}
	return &BridgeConnector{
		baseUrl: baseUrl,
		client:  client,
	}
}

type bridgeSendRequest struct {
	Phone    string `json:"phone"`
	Message  string `json:"message,omitempty"`
	MediaUrl string `json:"mediaUrl,omitempty"`
	Caption  string `json:"caption,omitempty"`
}

type bridgeSendResponse struct {
	MessageId string `json:"messageId"`
}

type bridgeStatusResponse struct {
	Status string `json:"status"`
}

func (c *BridgeConnector) Send(ctx context.Context, identity string, phoneNumber string, text string) (*SendResult, error) {
	return c.send(ctx, identity, "send-text", bridgeSendRequest{Phone: phoneNumber, Message: text})
}

func (c *BridgeConnector) SendMedia(ctx context.Context, identity string, phoneNumber string, mediaUrl string, caption string) (*SendResult, error) {
	return c.send(ctx, identity, "send-media", bridgeSendRequest{Phone: phoneNumber, MediaUrl: mediaUrl, Caption: caption})
}

func (c *BridgeConnector) send(ctx context.Context, identity string, endpoint string, payload bridgeSendRequest) (*SendResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/instance/%s/%s", c.baseUrl, identity, endpoint)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("bridge send failed with status %d", resp.StatusCode)
	}
	var out bridgeSendResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &SendResult{ProviderMessageId: out.MessageId}, nil
}

func (c *BridgeConnector) Status(ctx context.Context, identity string) (model.ConnectionStatus, error) {
	url := fmt.Sprintf("%s/instance/%s/status", c.baseUrl, identity)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return model.CONNECTION_ERROR, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return model.CONNECTION_ERROR, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return model.CONNECTION_ERROR, fmt.Errorf("bridge status failed with status %d", resp.StatusCode)
	}
	var out bridgeStatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return model.CONNECTION_ERROR, err
	}
	return parseStatus(out.Status), nil
}

func parseStatus(status string) model.ConnectionStatus {
	switch model.ConnectionStatus(status) {
	case model.CONNECTION_CONNECTED, model.CONNECTION_CONNECTING, model.CONNECTION_DISCONNECTED:
		return model.ConnectionStatus(status)
	}
	return model.CONNECTION_ERROR
}
