package action

import (
	"time"

	"github.com/renoribeiro/whatsapp-automation-v0-sub000/model"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/persistence"
)

type fakeContactStore struct {
	contacts map[string]model.Contact
	tags     map[string][]string
}

func newFakeContactStore() *fakeContactStore {
	return &fakeContactStore{
		contacts: make(map[string]model.Contact),
		tags:     make(map[string][]string),
	}
}

func (f *fakeContactStore) Save(contact model.Contact) error {
	f.contacts[contact.Id] = contact
	return nil
}

func (f *fakeContactStore) Get(tenantId string, contactId string) (*model.Contact, error) {
	contact, ok := f.contacts[contactId]
	if !ok {
		return nil, persistence.NotFoundError{Kind: "contact", Id: contactId}
	}
	return &contact, nil
}

func (f *fakeContactStore) ListByFilter(tenantId string, filter model.ContactFilter, limit int) ([]model.Contact, error) {
	return nil, nil
}

func (f *fakeContactStore) UpsertTag(tenantId string, contactId string, tagId string) error {
	for _, id := range f.tags[contactId] {
		if id == tagId {
			return nil
		}
	}
	f.tags[contactId] = append(f.tags[contactId], tagId)
	return nil
}

func (f *fakeContactStore) DeleteTag(tenantId string, contactId string, tagId string) error {
	kept := f.tags[contactId][:0]
	for _, id := range f.tags[contactId] {
		if id != tagId {
			kept = append(kept, id)
		}
	}
	f.tags[contactId] = kept
	return nil
}

func (f *fakeContactStore) Tags(tenantId string, contactId string) ([]string, error) {
	return f.tags[contactId], nil
}

type fakeTagStore struct {
	tags map[string]model.Tag
}

func (f *fakeTagStore) Save(tag model.Tag) error {
	f.tags[tag.Id] = tag
	return nil
}

func (f *fakeTagStore) Get(tenantId string, tagId string) (*model.Tag, error) {
	tag, ok := f.tags[tagId]
	if !ok {
		return nil, persistence.NotFoundError{Kind: "tag", Id: tagId}
	}
	return &tag, nil
}

type fakeMessageStore struct {
	messages map[string]model.Message
}

func newFakeMessageStore() *fakeMessageStore {
	return &fakeMessageStore{messages: make(map[string]model.Message)}
}

func (f *fakeMessageStore) Create(message model.Message) error {
	f.messages[message.Id] = message
	return nil
}

func (f *fakeMessageStore) Get(tenantId string, messageId string) (*model.Message, error) {
	message, ok := f.messages[messageId]
	if !ok {
		return nil, persistence.NotFoundError{Kind: "message", Id: messageId}
	}
	return &message, nil
}

func (f *fakeMessageStore) MarkSent(tenantId string, messageId string, providerMessageId string, sentAt time.Time) error {
	message := f.messages[messageId]
	message.ProviderMessageId = providerMessageId
	message.SentAt = &sentAt
	f.messages[messageId] = message
	return nil
}

func (f *fakeMessageStore) Delete(tenantId string, messageId string) error {
	delete(f.messages, messageId)
	return nil
}

type fakeConversationStore struct {
	conversations map[string]model.Conversation
	activity      []string
}

func (f *fakeConversationStore) Save(conversation model.Conversation) error {
	f.conversations[conversation.Id] = conversation
	return nil
}

func (f *fakeConversationStore) Get(tenantId string, conversationId string) (*model.Conversation, error) {
	conversation, ok := f.conversations[conversationId]
	if !ok {
		return nil, persistence.NotFoundError{Kind: "conversation", Id: conversationId}
	}
	return &conversation, nil
}

func (f *fakeConversationStore) GetActive(tenantId string, contactId string) (*model.Conversation, error) {
	for _, conversation := range f.conversations {
		if conversation.ContactId == contactId && conversation.Open {
			return &conversation, nil
		}
	}
	return nil, persistence.NotFoundError{Kind: "conversation", Id: contactId}
}

func (f *fakeConversationStore) UpdateActivity(tenantId string, conversationId string, lastMessage string, at time.Time) error {
	f.activity = append(f.activity, lastMessage)
	return nil
}

type fakeConnectionStore struct {
	connections map[string]model.Connection
}

func (f *fakeConnectionStore) Save(connection model.Connection) error {
	f.connections[connection.Id] = connection
	return nil
}

func (f *fakeConnectionStore) Get(tenantId string, connectionId string) (*model.Connection, error) {
	connection, ok := f.connections[connectionId]
	if !ok {
		return nil, persistence.NotFoundError{Kind: "connection", Id: connectionId}
	}
	return &connection, nil
}

func (f *fakeConnectionStore) List() ([]model.Connection, error) {
	var out []model.Connection
	for _, connection := range f.connections {
		out = append(out, connection)
	}
	return out, nil
}

func (f *fakeConnectionStore) UpdateStatus(tenantId string, connectionId string, status model.ConnectionStatus, at time.Time) error {
	return nil
}

type fakeEnqueuer struct {
	jobs    []model.DispatchJob
	delayed []model.DispatchJob
	delays  []time.Duration
}

func (f *fakeEnqueuer) Enqueue(job model.DispatchJob) error {
	f.jobs = append(f.jobs, job)
	return nil
}

func (f *fakeEnqueuer) EnqueueWithDelay(job model.DispatchJob, delay time.Duration) error {
	f.delayed = append(f.delayed, job)
	f.delays = append(f.delays, delay)
	return nil
}
