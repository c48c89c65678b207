package trigger

import (
	"testing"
	"time"

	"github.com/renoribeiro/whatsapp-automation-v0-sub000/model"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/persistence"
	"github.com/stretchr/testify/require"
)

type fakeDefinitionStore struct {
	defs []model.FlowDefinition
}

func (f *fakeDefinitionStore) Save(def model.FlowDefinition) error { return nil }

func (f *fakeDefinitionStore) Get(tenantId string, flowId string) (*model.FlowDefinition, error) {
	for i := range f.defs {
		if f.defs[i].TenantId == tenantId && f.defs[i].Id == flowId {
			return &f.defs[i], nil
		}
	}
	return nil, persistence.NotFoundError{Kind: "flow", Id: flowId}
}

func (f *fakeDefinitionStore) Delete(tenantId string, flowId string) error { return nil }

func (f *fakeDefinitionStore) ListActiveByTrigger(tenantId string, trigger model.TriggerType) ([]model.FlowDefinition, error) {
	var out []model.FlowDefinition
	for _, def := range f.defs {
		if def.TenantId == tenantId && def.Active && def.Trigger.Type == trigger {
			out = append(out, def)
		}
	}
	return out, nil
}

func (f *fakeDefinitionStore) ListTenants() ([]string, error) { return nil, nil }

type fakeConversationStore struct {
	conversations map[string]model.Conversation
}

func (f *fakeConversationStore) Save(conversation model.Conversation) error { return nil }

func (f *fakeConversationStore) Get(tenantId string, conversationId string) (*model.Conversation, error) {
	conv, ok := f.conversations[conversationId]
	if !ok {
		return nil, persistence.NotFoundError{Kind: "conversation", Id: conversationId}
	}
	return &conv, nil
}

func (f *fakeConversationStore) GetActive(tenantId string, contactId string) (*model.Conversation, error) {
	return nil, persistence.NotFoundError{Kind: "conversation", Id: contactId}
}

func (f *fakeConversationStore) UpdateActivity(tenantId string, conversationId string, lastMessage string, at time.Time) error {
	return nil
}

type fakeEnqueuer struct {
	jobs    []model.DispatchJob
	delayed []model.DispatchJob
}

func (f *fakeEnqueuer) Enqueue(job model.DispatchJob) error {
	f.jobs = append(f.jobs, job)
	return nil
}

func (f *fakeEnqueuer) EnqueueWithDelay(job model.DispatchJob, delay time.Duration) error {
	f.delayed = append(f.delayed, job)
	return nil
}

func TestMatchKeywords(t *testing.T) {
	for scenario, fn := range map[string]func(t *testing.T){
		"case folded match returns matched subset": func(t *testing.T) {
			matched := MatchKeywords([]string{"oi", "olá"}, "Olá pessoal, bom dia")
			require.Equal(t, []string{"olá"}, matched)
		},
		"no keyword in text": func(t *testing.T) {
			matched := MatchKeywords([]string{"promo", "oferta"}, "bom dia")
			require.Empty(t, matched)
		},
		"substring match counts": func(t *testing.T) {
			matched := MatchKeywords([]string{"dia"}, "Bom DIA!")
			require.Equal(t, []string{"dia"}, matched)
		},
	} {
		t.Run(scenario, fn)
	}
}

func newTestMatcher(defs []model.FlowDefinition) (*Matcher, *fakeEnqueuer) {
	enqueuer := &fakeEnqueuer{}
	conversations := &fakeConversationStore{
		conversations: map[string]model.Conversation{
			"conv-1": {Id: "conv-1", TenantId: "t-1", ContactId: "c-1", ConnectionId: "wa-1", Open: true},
		},
	}
	m := NewMatcher(&fakeDefinitionStore{defs: defs}, conversations, enqueuer)
	return m, enqueuer
}

func TestOnMessageReceived(t *testing.T) {
	defs := []model.FlowDefinition{
		{
			Id: "f-any", TenantId: "t-1", Active: true,
			Trigger: model.Trigger{Type: model.TRIGGER_MESSAGE_RECEIVED},
		},
		{
			Id: "f-inbound-text", TenantId: "t-1", Active: true,
			Trigger: model.Trigger{
				Type: model.TRIGGER_MESSAGE_RECEIVED,
				Data: model.TriggerData{Direction: model.DIRECTION_INBOUND, MessageType: "text"},
			},
		},
		{
			Id: "f-inactive", TenantId: "t-1", Active: false,
			Trigger: model.Trigger{Type: model.TRIGGER_MESSAGE_RECEIVED},
		},
	}

	for scenario, fn := range map[string]func(t *testing.T){
		"all filters matching fires both flows": func(t *testing.T) {
			m, enqueuer := newTestMatcher(defs)
			err := m.OnMessageReceived(model.MessageEvent{
				TenantId:       "t-1",
				ConversationId: "conv-1",
				Message:        model.Message{Id: "m-1", Direction: model.DIRECTION_INBOUND, Type: "text", Content: "oi"},
			})
			require.NoError(t, err)
			require.Len(t, enqueuer.jobs, 2)
			for _, job := range enqueuer.jobs {
				require.Equal(t, model.JOB_EXECUTE_FLOW, job.Type)
				require.Equal(t, "c-1", job.ExecuteFlow.ContactId)
				require.Equal(t, "oi", job.ExecuteFlow.TriggerData["messageContent"])
			}
		},
		"direction filter excludes outbound": func(t *testing.T) {
			m, enqueuer := newTestMatcher(defs)
			err := m.OnMessageReceived(model.MessageEvent{
				TenantId:       "t-1",
				ConversationId: "conv-1",
				Message:        model.Message{Id: "m-2", Direction: model.DIRECTION_OUTBOUND, Type: "text"},
			})
			require.NoError(t, err)
			require.Len(t, enqueuer.jobs, 1)
			require.Equal(t, "f-any", enqueuer.jobs[0].ExecuteFlow.FlowId)
		},
		"unknown conversation is an error": func(t *testing.T) {
			m, enqueuer := newTestMatcher(defs)
			err := m.OnMessageReceived(model.MessageEvent{
				TenantId:       "t-1",
				ConversationId: "conv-missing",
			})
			require.Error(t, err)
			require.Empty(t, enqueuer.jobs)
		},
	} {
		t.Run(scenario, fn)
	}
}

func TestOnKeywordCandidate(t *testing.T) {
	defs := []model.FlowDefinition{
		{
			Id: "f-kw", TenantId: "t-1", Active: true,
			Trigger: model.Trigger{
				Type: model.TRIGGER_KEYWORD,
				Data: model.TriggerData{Keywords: []string{"oi", "olá"}},
			},
		},
	}

	for scenario, fn := range map[string]func(t *testing.T){
		"matched keywords land in trigger data": func(t *testing.T) {
			m, enqueuer := newTestMatcher(defs)
			err := m.OnKeywordCandidate(model.MessageEvent{
				TenantId:       "t-1",
				ConversationId: "conv-1",
				Message:        model.Message{Id: "m-1", Content: "Olá pessoal, bom dia"},
			})
			require.NoError(t, err)
			require.Len(t, enqueuer.jobs, 1)
			require.Equal(t, []string{"olá"}, enqueuer.jobs[0].ExecuteFlow.TriggerData["matchedKeywords"])
		},
		"no keyword match enqueues nothing": func(t *testing.T) {
			m, enqueuer := newTestMatcher(defs)
			err := m.OnKeywordCandidate(model.MessageEvent{
				TenantId:       "t-1",
				ConversationId: "conv-1",
				Message:        model.Message{Id: "m-2", Content: "tchau"},
			})
			require.NoError(t, err)
			require.Empty(t, enqueuer.jobs)
		},
	} {
		t.Run(scenario, fn)
	}
}

func TestOnTagAdded(t *testing.T) {
	defs := []model.FlowDefinition{
		{
			Id: "f-vip", TenantId: "t-1", Active: true,
			Trigger: model.Trigger{
				Type: model.TRIGGER_TAG_ADDED,
				Data: model.TriggerData{TagIds: []string{"tag-vip"}},
			},
		},
		{
			Id: "f-churn", TenantId: "t-1", Active: true,
			Trigger: model.Trigger{
				Type: model.TRIGGER_TAG_ADDED,
				Data: model.TriggerData{TagIds: []string{"tag-churn"}},
			},
		},
	}

	m, enqueuer := newTestMatcher(defs)
	err := m.OnTagAdded(model.TagEvent{TenantId: "t-1", ContactId: "c-9", TagId: "tag-vip"})
	require.NoError(t, err)
	require.Len(t, enqueuer.jobs, 1)
	require.Equal(t, "f-vip", enqueuer.jobs[0].ExecuteFlow.FlowId)
	require.Equal(t, "c-9", enqueuer.jobs[0].ExecuteFlow.ContactId)
	require.Equal(t, "tag-vip", enqueuer.jobs[0].ExecuteFlow.TriggerData["tagId"])
}
