package action

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/dispatch"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/logger"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/model"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/persistence"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/template"
	"go.uber.org/zap"
)

type sendMessageHandler struct {
	messages      persistence.MessageStore
	conversations persistence.ConversationStore
	connections   persistence.ConnectionStore
	dispatcher    dispatch.Enqueuer
}

var _ Handler = new(sendMessageHandler)

func NewSendMessageHandler(messages persistence.MessageStore, conversations persistence.ConversationStore,
	connections persistence.ConnectionStore, dispatcher dispatch.Enqueuer) *sendMessageHandler {
	return &sendMessageHandler{
		messages:      messages,
		conversations: conversations,
		connections:   connections,
		dispatcher:    dispatcher,
	}
}

func (h *sendMessageHandler) Type() model.ActionType {
	return model.ACTION_SEND_MESSAGE
}

func (h *sendMessageHandler) Validate(node model.ActionNode) error {
	if node.Data.Template == "" && node.Data.MediaUrl == "" {
		return fmt.Errorf("actionId=%s, send_message requires a template or a media url", node.Id)
	}
	if node.Data.DelaySeconds < 0 {
		return fmt.Errorf("actionId=%s, delay value %d wrong", node.Id, node.Data.DelaySeconds)
	}
	return nil
}

// Execute renders the template, creates the outbound message record and
// enqueues an independent delivery job. A configured delay suspends the
// invocation instead of blocking the worker: a continuation job resumes at
// this action with the delay already consumed.
func (h *sendMessageHandler) Execute(node model.ActionNode, inv *model.Invocation) (Result, error) {
	if node.Data.DelaySeconds > 0 && !inv.Resumed {
		return Result{Suspend: &Suspension{
			ResumeActionId: node.Id,
			Delay:          time.Duration(node.Data.DelaySeconds) * time.Second,
			DelayConsumed:  true,
		}}, nil
	}
	if inv.Contact == nil {
		return Result{}, fmt.Errorf("actionId=%s, no contact in invocation", node.Id)
	}
	if inv.Conversation == nil {
		return Result{}, fmt.Errorf("actionId=%s, contact %s has no active conversation", node.Id, inv.Contact.Id)
	}
	connection, err := h.connections.Get(inv.Conversation.TenantId, inv.Conversation.ConnectionId)
	if err != nil {
		return Result{}, err
	}
	content := template.Render(node.Data.Template, inv.Contact, inv.TriggerData)
	messageType := node.Data.MessageType
	if messageType == "" {
		messageType = "text"
	}
	now := time.Now()
	message := model.Message{
		Id:             uuid.New().String(),
		TenantId:       inv.Conversation.TenantId,
		ConversationId: inv.Conversation.Id,
		ContactId:      inv.Contact.Id,
		Direction:      model.DIRECTION_OUTBOUND,
		Type:           messageType,
		Content:        content,
		MediaUrl:       node.Data.MediaUrl,
		CreatedAt:      now,
	}
	if err := h.messages.Create(message); err != nil {
		return Result{}, err
	}
	if err := h.conversations.UpdateActivity(message.TenantId, message.ConversationId, content, now); err != nil {
		logger.Error("error updating conversation activity", zap.String("conversation", message.ConversationId), zap.Error(err))
	}
	err = h.dispatcher.Enqueue(model.DispatchJob{
		Type: model.JOB_SEND_MESSAGE,
		SendMessage: &model.SendMessageJob{
			TenantId:      message.TenantId,
			MessageId:     message.Id,
			ConnectorKind: connection.Kind,
			Identity:      connection.Identity,
			PhoneNumber:   inv.Contact.Phone,
			Content:       content,
			MessageType:   messageType,
			MediaUrl:      node.Data.MediaUrl,
		},
	})
	if err != nil {
		return Result{}, err
	}
	return Result{}, nil
}
