package model

type JobType string

const (
	JOB_EXECUTE_FLOW   JobType = "execute-flow"
	JOB_SEND_MESSAGE   JobType = "send-whatsapp-message"
	JOB_SEND_SCHEDULED JobType = "send-scheduled-message"
)

// DispatchJob is the unit of work carried by the dispatch queue. Exactly one
// of the payload fields is set, selected by Type.
type DispatchJob struct {
	Id            string            `json:"id"`
	Type          JobType           `json:"type"`
	Attempt       int               `json:"attempt"`
	ExecuteFlow   *ExecuteFlowJob   `json:"executeFlow,omitempty"`
	SendMessage   *SendMessageJob   `json:"sendMessage,omitempty"`
	SendScheduled *SendScheduledJob `json:"sendScheduled,omitempty"`
}

type ExecuteFlowJob struct {
	TenantId    string         `json:"tenantId"`
	FlowId      string         `json:"flowId"`
	ContactId   string         `json:"contactId"`
	TriggerData map[string]any `json:"triggerData,omitempty"`

	// Continuation fields. A suspended invocation (wait, delayed send) is
	// re-enqueued with the action to resume at; DelayConsumed marks that the
	// resumed action already served its delay.
	ResumeActionId string `json:"resumeActionId,omitempty"`
	DelayConsumed  bool   `json:"delayConsumed,omitempty"`
}

type SendMessageJob struct {
	TenantId      string        `json:"tenantId"`
	MessageId     string        `json:"messageId"`
	ConnectorKind ConnectorKind `json:"connectorKind"`
	Identity      string        `json:"identity"`
	PhoneNumber   string        `json:"phoneNumber"`
	Content       string        `json:"content"`
	MessageType   string        `json:"messageType"`
	MediaUrl      string        `json:"mediaUrl,omitempty"`
}

type SendScheduledJob struct {
	TenantId  string `json:"tenantId"`
	MessageId string `json:"messageId"`
}
