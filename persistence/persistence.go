package persistence

import (
	"fmt"
	"time"

	"github.com/renoribeiro/whatsapp-automation-v0-sub000/model"
)

type StorageLayerError struct {
	Message string
}

func (e StorageLayerError) Error() string {
	return fmt.Sprintf("storage layer error %s", e.Message)
}

type NotFoundError struct {
	Kind string
	Id   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.Id)
}

// DefinitionStore holds flow definitions. Definitions are created and edited
// by the API surface; the engine only reads them.
type DefinitionStore interface {
	Save(def model.FlowDefinition) error
	Get(tenantId string, flowId string) (*model.FlowDefinition, error)
	Delete(tenantId string, flowId string) error
	ListActiveByTrigger(tenantId string, trigger model.TriggerType) ([]model.FlowDefinition, error)
	ListTenants() ([]string, error)
}

type ContactStore interface {
	Save(contact model.Contact) error
	Get(tenantId string, contactId string) (*model.Contact, error)
	ListByFilter(tenantId string, filter model.ContactFilter, limit int) ([]model.Contact, error)
	UpsertTag(tenantId string, contactId string, tagId string) error
	DeleteTag(tenantId string, contactId string, tagId string) error
	Tags(tenantId string, contactId string) ([]string, error)
}

type TagStore interface {
	Save(tag model.Tag) error
	Get(tenantId string, tagId string) (*model.Tag, error)
}

type MessageStore interface {
	Create(message model.Message) error
	Get(tenantId string, messageId string) (*model.Message, error)
	MarkSent(tenantId string, messageId string, providerMessageId string, sentAt time.Time) error
	Delete(tenantId string, messageId string) error
}

type ConversationStore interface {
	Save(conversation model.Conversation) error
	Get(tenantId string, conversationId string) (*model.Conversation, error)
	GetActive(tenantId string, contactId string) (*model.Conversation, error)
	UpdateActivity(tenantId string, conversationId string, lastMessage string, at time.Time) error
}

type ConnectionStore interface {
	Save(connection model.Connection) error
	Get(tenantId string, connectionId string) (*model.Connection, error)
	List() ([]model.Connection, error)
	UpdateStatus(tenantId string, connectionId string, status model.ConnectionStatus, at time.Time) error
}

// SchedulerStore tracks the last execution time of time-based flows.
type SchedulerStore interface {
	LastExecution(flowId string) (time.Time, error)
	SetLastExecution(flowId string, at time.Time) error
}

type Queue interface {
	Push(queueName string, message []byte) error
	Pop(queueName string, batchSize int) ([]string, error)
}

type DelayQueue interface {
	PushWithDelay(queueName string, delay time.Duration, message []byte) error
	Pop(queueName string) ([]string, error)
}
