package connector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/renoribeiro/whatsapp-automation-v0-sub000/model"
)

// CloudConnector talks to the vendor-hosted cloud API. The connection's
// identity is the bearer credential of the tenant's business account.
type CloudConnector struct {
	baseUrl string
	client  *http.Client
}

var _ Connector = new(CloudConnector)

func NewCloudConnector(baseUrl string, client *http.Client) *CloudConnector {
	if client == nil {
		client = &http.Client{}
	}
	return &CloudConnector{
		baseUrl: baseUrl,
		client:  client,
	}
}

type cloudText struct {
	Body string `json:"body"`
}

type cloudMedia struct {
	Link    string `json:"link"`
	Caption string `json:"caption,omitempty"`
}

type cloudSendRequest struct {
	To    string      `json:"to"`
	Type  string      `json:"type"`
	Text  *cloudText  `json:"text,omitempty"`
	Media *cloudMedia `json:"image,omitempty"`
}

type cloudSendResponse struct {
	Messages []struct {
		Id string `json:"id"`
	} `json:"messages"`
}

type cloudStatusResponse struct {
	Status string `json:"status"`
}

func (c *CloudConnector) Send(ctx context.Context, identity string, phoneNumber string, text string) (*SendResult, error) {
	return c.send(ctx, identity, cloudSendRequest{
		To:   phoneNumber,
		Type: "text",
		Text: &cloudText{Body: text},
	})
}

func (c *CloudConnector) SendMedia(ctx context.Context, identity string, phoneNumber string, mediaUrl string, caption string) (*SendResult, error) {
	return c.send(ctx, identity, cloudSendRequest{
		To:    phoneNumber,
		Type:  "image",
		Media: &cloudMedia{Link: mediaUrl, Caption: caption},
	})
}

func (c *CloudConnector) send(ctx context.Context, identity string, payload cloudSendRequest) (*SendResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseUrl+"/messages", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+identity)
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("cloud send failed with status %d", resp.StatusCode)
	}
	var out cloudSendResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if len(out.Messages) == 0 {
		return nil, fmt.Errorf("cloud send returned no message id")
	}
	return &SendResult{ProviderMessageId: out.Messages[0].Id}, nil
}

func (c *CloudConnector) Status(ctx context.Context, identity string) (model.ConnectionStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseUrl+"/status", nil)
	if err != nil {
		return model.CONNECTION_ERROR, err
	}
	req.Header.Set("Authorization", "Bearer "+identity)
	resp, err := c.client.Do(req)
	if err != nil {
		return model.CONNECTION_ERROR, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return model.CONNECTION_ERROR, fmt.Errorf("cloud status failed with status %d", resp.StatusCode)
	}
	var out cloudStatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return model.CONNECTION_ERROR, err
	}
	return parseStatus(out.Status), nil
}
