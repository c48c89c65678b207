package scheduler

import (
	"testing"
	"time"

	"github.com/renoribeiro/whatsapp-automation-v0-sub000/model"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/persistence"
	"github.com/stretchr/testify/require"
)

type memMessageStore struct {
	messages map[string]model.Message
}

func (f *memMessageStore) Create(message model.Message) error {
	f.messages[message.Id] = message
	return nil
}

func (f *memMessageStore) Get(tenantId string, messageId string) (*model.Message, error) {
	message, ok := f.messages[messageId]
	if !ok {
		return nil, persistence.NotFoundError{Kind: "message", Id: messageId}
	}
	return &message, nil
}

func (f *memMessageStore) MarkSent(tenantId string, messageId string, providerMessageId string, sentAt time.Time) error {
	return nil
}

func (f *memMessageStore) Delete(tenantId string, messageId string) error {
	delete(f.messages, messageId)
	return nil
}

type delayEnqueuer struct {
	jobs   []model.DispatchJob
	delays []time.Duration
}

func (f *delayEnqueuer) Enqueue(job model.DispatchJob) error {
	f.jobs = append(f.jobs, job)
	return nil
}

func (f *delayEnqueuer) EnqueueWithDelay(job model.DispatchJob, delay time.Duration) error {
	f.jobs = append(f.jobs, job)
	f.delays = append(f.delays, delay)
	return nil
}

func newMessageSchedulerFixture() (*MessageScheduler, *memMessageStore, *delayEnqueuer, time.Time) {
	messages := &memMessageStore{messages: make(map[string]model.Message)}
	enqueuer := &delayEnqueuer{}
	clock := time.Date(2023, 5, 1, 10, 0, 0, 0, time.UTC)
	s := NewMessageScheduler(messages, enqueuer)
	s.now = func() time.Time { return clock }
	return s, messages, enqueuer, clock
}

func TestScheduleMessage(t *testing.T) {
	for scenario, fn := range map[string]func(t *testing.T){
		"future message is persisted and queued with the right delay": func(t *testing.T) {
			s, messages, enqueuer, clock := newMessageSchedulerFixture()
			scheduledFor := clock.Add(2 * time.Hour)
			messageId, err := s.Schedule(model.Message{
				TenantId:       "t-1",
				ContactId:      "c-1",
				ConversationId: "conv-1",
				Content:        "lembrete da consulta",
				Type:           "text",
				ScheduledFor:   &scheduledFor,
			})
			require.NoError(t, err)
			require.NotEmpty(t, messageId)

			stored, err := messages.Get("t-1", messageId)
			require.NoError(t, err)
			require.Equal(t, model.DIRECTION_OUTBOUND, stored.Direction)
			require.False(t, stored.Sent())

			require.Len(t, enqueuer.jobs, 1)
			require.Equal(t, model.JOB_SEND_SCHEDULED, enqueuer.jobs[0].Type)
			require.Equal(t, messageId, enqueuer.jobs[0].SendScheduled.MessageId)
			require.Equal(t, 2*time.Hour, enqueuer.delays[0])
		},
		"past schedule is rejected before anything is persisted": func(t *testing.T) {
			s, messages, enqueuer, clock := newMessageSchedulerFixture()
			scheduledFor := clock.Add(-time.Minute)
			_, err := s.Schedule(model.Message{TenantId: "t-1", Content: "tarde demais", ScheduledFor: &scheduledFor})
			require.ErrorIs(t, err, ErrScheduledInPast)
			require.Empty(t, messages.messages)
			require.Empty(t, enqueuer.jobs)
		},
		"schedule equal to now is rejected": func(t *testing.T) {
			s, _, _, clock := newMessageSchedulerFixture()
			scheduledFor := clock
			_, err := s.Schedule(model.Message{TenantId: "t-1", ScheduledFor: &scheduledFor})
			require.ErrorIs(t, err, ErrScheduledInPast)
		},
		"missing scheduledFor is rejected": func(t *testing.T) {
			s, _, _, _ := newMessageSchedulerFixture()
			_, err := s.Schedule(model.Message{TenantId: "t-1"})
			require.Error(t, err)
		},
	} {
		t.Run(scenario, fn)
	}
}

func TestCancelMessage(t *testing.T) {
	s, messages, _, clock := newMessageSchedulerFixture()
	scheduledFor := clock.Add(time.Hour)
	messageId, err := s.Schedule(model.Message{TenantId: "t-1", Content: "oi", ScheduledFor: &scheduledFor})
	require.NoError(t, err)

	require.NoError(t, s.Cancel("t-1", messageId))
	_, err = messages.Get("t-1", messageId)
	var notFound persistence.NotFoundError
	require.ErrorAs(t, err, &notFound)
}
