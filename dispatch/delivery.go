package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/renoribeiro/whatsapp-automation-v0-sub000/connector"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/logger"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/model"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/persistence"
	"go.uber.org/zap"
)

// DeliveryService handles the send-whatsapp-message and send-scheduled-message
// job types: it performs the backend call and stamps the message record with
// the provider id and sent timestamp.
//
// A retried delivery job may re-invoke the backend; no idempotency key is
// passed to the connector, so a duplicate outbound send is possible.
type DeliveryService struct {
	registry      *connector.Registry
	messages      persistence.MessageStore
	contacts      persistence.ContactStore
	conversations persistence.ConversationStore
	connections   persistence.ConnectionStore
}

func NewDeliveryService(registry *connector.Registry, messages persistence.MessageStore,
	contacts persistence.ContactStore, conversations persistence.ConversationStore,
	connections persistence.ConnectionStore) *DeliveryService {
	return &DeliveryService{
		registry:      registry,
		messages:      messages,
		contacts:      contacts,
		conversations: conversations,
		connections:   connections,
	}
}

func (s *DeliveryService) HandleSendMessage(job model.DispatchJob) error {
	payload := job.SendMessage
	if payload == nil {
		return fmt.Errorf("job %s has no send message payload", job.Id)
	}
	return s.send(*payload)
}

func (s *DeliveryService) send(payload model.SendMessageJob) error {
	conn, err := s.registry.Get(payload.ConnectorKind)
	if err != nil {
		return err
	}
	ctx := context.Background()
	var result *connector.SendResult
	if payload.MediaUrl != "" {
		result, err = conn.SendMedia(ctx, payload.Identity, payload.PhoneNumber, payload.MediaUrl, payload.Content)
	} else {
		result, err = conn.Send(ctx, payload.Identity, payload.PhoneNumber, payload.Content)
	}
	if err != nil {
		return err
	}
	err = s.messages.MarkSent(payload.TenantId, payload.MessageId, result.ProviderMessageId, time.Now())
	if err != nil {
		logger.Error("message delivered but could not be stamped",
			zap.String("message", payload.MessageId), zap.Error(err))
		return err
	}
	return nil
}

// HandleSendScheduled re-validates the message before delivering: a record
// deleted before the job fires, an already-sent message, or an undue
// schedule all make the job a no-op (cooperative cancellation).
func (s *DeliveryService) HandleSendScheduled(job model.DispatchJob) error {
	payload := job.SendScheduled
	if payload == nil {
		return fmt.Errorf("job %s has no scheduled message payload", job.Id)
	}
	message, err := s.messages.Get(payload.TenantId, payload.MessageId)
	if err != nil {
		var notFound persistence.NotFoundError
		if errors.As(err, &notFound) {
			logger.Info("scheduled message cancelled", zap.String("message", payload.MessageId))
			return nil
		}
		return err
	}
	if message.Sent() {
		return nil
	}
	if message.ScheduledFor != nil && time.Now().Before(*message.ScheduledFor) {
		return nil
	}
	sendJob, err := s.buildSendJob(*message)
	if err != nil {
		return err
	}
	return s.send(*sendJob)
}

func (s *DeliveryService) buildSendJob(message model.Message) (*model.SendMessageJob, error) {
	contact, err := s.contacts.Get(message.TenantId, message.ContactId)
	if err != nil {
		return nil, err
	}
	conversation, err := s.conversations.Get(message.TenantId, message.ConversationId)
	if err != nil {
		return nil, err
	}
	connection, err := s.connections.Get(message.TenantId, conversation.ConnectionId)
	if err != nil {
		return nil, err
	}
	return &model.SendMessageJob{
		TenantId:      message.TenantId,
		MessageId:     message.Id,
		ConnectorKind: connection.Kind,
		Identity:      connection.Identity,
		PhoneNumber:   contact.Phone,
		Content:       message.Content,
		MessageType:   message.Type,
		MediaUrl:      message.MediaUrl,
	}, nil
}
