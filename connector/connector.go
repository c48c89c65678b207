package connector

import (
	"context"
	"fmt"

	"github.com/renoribeiro/whatsapp-automation-v0-sub000/model"
)

// SendResult carries the provider-assigned id of an accepted outbound message.
type SendResult struct {
	ProviderMessageId string
}

// Connector is the uniform interface over a concrete messaging backend.
// identity is backend-specific: an opaque instance id for the session bridge,
// a bearer credential for the cloud API.
type Connector interface {
	Send(ctx context.Context, identity string, phoneNumber string, text string) (*SendResult, error)
	SendMedia(ctx context.Context, identity string, phoneNumber string, mediaUrl string, caption string) (*SendResult, error)
	Status(ctx context.Context, identity string) (model.ConnectionStatus, error)
}

// Registry resolves the connector for a connection's kind.
type Registry struct {
	connectors map[model.ConnectorKind]Connector
}

func NewRegistry() *Registry {
	return &Registry{
		connectors: make(map[model.ConnectorKind]Connector),
	}
}

func (r *Registry) Register(kind model.ConnectorKind, conn Connector) {
	r.connectors[kind] = conn
}

func (r *Registry) Get(kind model.ConnectorKind) (Connector, error) {
	conn, ok := r.connectors[kind]
	if !ok {
		return nil, fmt.Errorf("no connector registered for kind %s", kind)
	}
	return conn, nil
}
