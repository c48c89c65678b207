package trigger

import (
	"strings"

	"github.com/renoribeiro/whatsapp-automation-v0-sub000/dispatch"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/logger"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/model"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/persistence"
	"go.uber.org/zap"
)

// Matcher evaluates incoming events against the tenant's active flow
// definitions and enqueues one execute-flow job per match. All entry points
// return after enqueueing: they acknowledge acceptance, not completion.
// A failing flow never blocks evaluation of the other flows for the event.
type Matcher struct {
	definitions   persistence.DefinitionStore
	conversations persistence.ConversationStore
	dispatcher    dispatch.Enqueuer
}

func NewMatcher(definitions persistence.DefinitionStore, conversations persistence.ConversationStore,
	dispatcher dispatch.Enqueuer) *Matcher {
	return &Matcher{
		definitions:   definitions,
		conversations: conversations,
		dispatcher:    dispatcher,
	}
}

func (m *Matcher) OnMessageReceived(event model.MessageEvent) error {
	conversation, err := m.conversations.Get(event.TenantId, event.ConversationId)
	if err != nil {
		return err
	}
	defs, err := m.definitions.ListActiveByTrigger(event.TenantId, model.TRIGGER_MESSAGE_RECEIVED)
	if err != nil {
		return err
	}
	for _, def := range defs {
		if !matchMessage(def.Trigger.Data, event.Message) {
			continue
		}
		m.enqueue(def, conversation.ContactId, map[string]any{
			"messageId":      event.Message.Id,
			"messageContent": event.Message.Content,
			"direction":      event.Message.Direction,
			"messageType":    event.Message.Type,
		})
	}
	return nil
}

// matchMessage requires every configured filter to equal the actual field.
func matchMessage(data model.TriggerData, message model.Message) bool {
	if data.Direction != "" && data.Direction != message.Direction {
		return false
	}
	if data.MessageType != "" && data.MessageType != message.Type {
		return false
	}
	return true
}

func (m *Matcher) OnKeywordCandidate(event model.MessageEvent) error {
	conversation, err := m.conversations.Get(event.TenantId, event.ConversationId)
	if err != nil {
		return err
	}
	defs, err := m.definitions.ListActiveByTrigger(event.TenantId, model.TRIGGER_KEYWORD)
	if err != nil {
		return err
	}
	for _, def := range defs {
		matched := MatchKeywords(def.Trigger.Data.Keywords, event.Message.Content)
		if len(matched) == 0 {
			continue
		}
		m.enqueue(def, conversation.ContactId, map[string]any{
			"matchedKeywords": matched,
			"messageId":       event.Message.Id,
			"messageContent":  event.Message.Content,
		})
	}
	return nil
}

// MatchKeywords reports the configured keywords contained in the text,
// case-folded on both sides.
func MatchKeywords(keywords []string, text string) []string {
	folded := strings.ToLower(text)
	var matched []string
	for _, keyword := range keywords {
		if strings.Contains(folded, strings.ToLower(keyword)) {
			matched = append(matched, keyword)
		}
	}
	return matched
}

func (m *Matcher) OnTagAdded(event model.TagEvent) error {
	defs, err := m.definitions.ListActiveByTrigger(event.TenantId, model.TRIGGER_TAG_ADDED)
	if err != nil {
		return err
	}
	for _, def := range defs {
		if !containsTag(def.Trigger.Data.TagIds, event.TagId) {
			continue
		}
		m.enqueue(def, event.ContactId, map[string]any{
			"tagId": event.TagId,
		})
	}
	return nil
}

func containsTag(tagIds []string, tagId string) bool {
	for _, id := range tagIds {
		if id == tagId {
			return true
		}
	}
	return false
}

func (m *Matcher) enqueue(def model.FlowDefinition, contactId string, triggerData map[string]any) {
	err := m.dispatcher.Enqueue(model.DispatchJob{
		Type: model.JOB_EXECUTE_FLOW,
		ExecuteFlow: &model.ExecuteFlowJob{
			TenantId:    def.TenantId,
			FlowId:      def.Id,
			ContactId:   contactId,
			TriggerData: triggerData,
		},
	})
	if err != nil {
		logger.Error("error enqueueing matched flow",
			zap.String("flow", def.Id), zap.String("contact", contactId), zap.Error(err))
	}
}
