package model

// Invocation is the ephemeral context of one flow execution for one contact.
// It lives for the duration of a single execute-flow job.
type Invocation struct {
	Contact      *Contact
	Conversation *Conversation
	TriggerData  map[string]any

	// Resumed is true for the first action of a continuation job; the
	// resumed action must not serve its delay a second time.
	Resumed bool
}

// MessageEvent is the inbound event shape consumed by the trigger matcher.
type MessageEvent struct {
	TenantId       string  `json:"tenantId"`
	ConversationId string  `json:"conversationId"`
	Message        Message `json:"message"`
}

// TagEvent announces a tag freshly added to a contact.
type TagEvent struct {
	TenantId  string `json:"tenantId"`
	ContactId string `json:"contactId"`
	TagId     string `json:"tagId"`
}
