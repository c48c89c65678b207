package model

import "time"

type Contact struct {
	Id         string         `json:"id"`
	TenantId   string         `json:"tenantId"`
	Name       string         `json:"name"`
	Phone      string         `json:"phone"`
	Email      string         `json:"email,omitempty"`
	LeadSource string         `json:"leadSource,omitempty"`
	Fields     map[string]any `json:"fields,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}

type Tag struct {
	Id       string `json:"id"`
	TenantId string `json:"tenantId"`
	Name     string `json:"name"`
}

const (
	DIRECTION_INBOUND  string = "inbound"
	DIRECTION_OUTBOUND string = "outbound"
)

type Message struct {
	Id                string     `json:"id"`
	TenantId          string     `json:"tenantId"`
	ConversationId    string     `json:"conversationId"`
	ContactId         string     `json:"contactId"`
	Direction         string     `json:"direction"`
	Type              string     `json:"type"`
	Content           string     `json:"content"`
	MediaUrl          string     `json:"mediaUrl,omitempty"`
	ProviderMessageId string     `json:"providerMessageId,omitempty"`
	ScheduledFor      *time.Time `json:"scheduledFor,omitempty"`
	SentAt            *time.Time `json:"sentAt,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
}

func (m *Message) Sent() bool {
	return m.SentAt != nil
}

type Conversation struct {
	Id             string    `json:"id"`
	TenantId       string    `json:"tenantId"`
	ContactId      string    `json:"contactId"`
	ConnectionId   string    `json:"connectionId"`
	LastMessage    string    `json:"lastMessage,omitempty"`
	LastActivityAt time.Time `json:"lastActivityAt"`
	Open           bool      `json:"open"`
}

type ConnectorKind string

const (
	CONNECTOR_BRIDGE ConnectorKind = "bridge"
	CONNECTOR_CLOUD  ConnectorKind = "cloud"
)

type ConnectionStatus string

const (
	CONNECTION_CONNECTED    ConnectionStatus = "connected"
	CONNECTION_CONNECTING   ConnectionStatus = "connecting"
	CONNECTION_DISCONNECTED ConnectionStatus = "disconnected"
	CONNECTION_ERROR        ConnectionStatus = "error"
)

type Connection struct {
	Id              string           `json:"id"`
	TenantId        string           `json:"tenantId"`
	Kind            ConnectorKind    `json:"connectorKind"`
	Identity        string           `json:"identity"`
	Status          ConnectionStatus `json:"status"`
	StatusCheckedAt time.Time        `json:"statusCheckedAt"`
}

// ContactFilter narrows the contact listing used by time-based triggers.
type ContactFilter struct {
	TagIds     []string
	LeadSource string
}
