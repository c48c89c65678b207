package scheduler

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/dispatch"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/model"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/persistence"
)

var ErrScheduledInPast = errors.New("scheduled time is in the past")

// MessageScheduler creates delayed send-at jobs. Cancellation is cooperative:
// deleting the record makes the queued job a no-op when it fires.
type MessageScheduler struct {
	messages   persistence.MessageStore
	dispatcher dispatch.Enqueuer
	now        func() time.Time
}

func NewMessageScheduler(messages persistence.MessageStore, dispatcher dispatch.Enqueuer) *MessageScheduler {
	return &MessageScheduler{
		messages:   messages,
		dispatcher: dispatcher,
		now:        time.Now,
	}
}

// Schedule rejects a past scheduledFor before anything is persisted or
// enqueued.
func (s *MessageScheduler) Schedule(message model.Message) (string, error) {
	if message.ScheduledFor == nil {
		return "", fmt.Errorf("message requires a scheduledFor time")
	}
	now := s.now()
	if !message.ScheduledFor.After(now) {
		return "", ErrScheduledInPast
	}
	if message.Id == "" {
		message.Id = uuid.New().String()
	}
	if message.Direction == "" {
		message.Direction = model.DIRECTION_OUTBOUND
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = now
	}
	if err := s.messages.Create(message); err != nil {
		return "", err
	}
	err := s.dispatcher.EnqueueWithDelay(model.DispatchJob{
		Type: model.JOB_SEND_SCHEDULED,
		SendScheduled: &model.SendScheduledJob{
			TenantId:  message.TenantId,
			MessageId: message.Id,
		},
	}, message.ScheduledFor.Sub(now))
	if err != nil {
		return "", err
	}
	return message.Id, nil
}

// Cancel deletes the record; the already-queued job re-validates and no-ops.
func (s *MessageScheduler) Cancel(tenantId string, messageId string) error {
	return s.messages.Delete(tenantId, messageId)
}
