package action

import (
	"errors"
	"fmt"

	"github.com/renoribeiro/whatsapp-automation-v0-sub000/logger"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/model"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/persistence"
	"go.uber.org/zap"
)

type addTagHandler struct {
	contacts persistence.ContactStore
	tags     persistence.TagStore
}

var _ Handler = new(addTagHandler)

func NewAddTagHandler(contacts persistence.ContactStore, tags persistence.TagStore) *addTagHandler {
	return &addTagHandler{
		contacts: contacts,
		tags:     tags,
	}
}

func (h *addTagHandler) Type() model.ActionType {
	return model.ACTION_ADD_TAG
}

func (h *addTagHandler) Validate(node model.ActionNode) error {
	if node.Data.TagId == "" {
		return fmt.Errorf("actionId=%s, add_tag requires a tagId", node.Id)
	}
	return nil
}

// Execute upserts the contact-tag association. The upsert is idempotent and
// adding a tag that does not exist is a no-op.
func (h *addTagHandler) Execute(node model.ActionNode, inv *model.Invocation) (Result, error) {
	if inv.Contact == nil {
		return Result{}, fmt.Errorf("actionId=%s, no contact in invocation", node.Id)
	}
	_, err := h.tags.Get(inv.Contact.TenantId, node.Data.TagId)
	if err != nil {
		var notFound persistence.NotFoundError
		if errors.As(err, &notFound) {
			logger.Warn("add_tag skipped, tag does not exist",
				zap.String("tag", node.Data.TagId), zap.String("contact", inv.Contact.Id))
			return Result{}, nil
		}
		return Result{}, err
	}
	if err := h.contacts.UpsertTag(inv.Contact.TenantId, inv.Contact.Id, node.Data.TagId); err != nil {
		return Result{}, err
	}
	return Result{}, nil
}

type removeTagHandler struct {
	contacts persistence.ContactStore
}

var _ Handler = new(removeTagHandler)

func NewRemoveTagHandler(contacts persistence.ContactStore) *removeTagHandler {
	return &removeTagHandler{
		contacts: contacts,
	}
}

func (h *removeTagHandler) Type() model.ActionType {
	return model.ACTION_REMOVE_TAG
}

func (h *removeTagHandler) Validate(node model.ActionNode) error {
	if node.Data.TagId == "" {
		return fmt.Errorf("actionId=%s, remove_tag requires a tagId", node.Id)
	}
	return nil
}

// Execute deletes the association; deleting an absent association is a no-op.
func (h *removeTagHandler) Execute(node model.ActionNode, inv *model.Invocation) (Result, error) {
	if inv.Contact == nil {
		return Result{}, fmt.Errorf("actionId=%s, no contact in invocation", node.Id)
	}
	if err := h.contacts.DeleteTag(inv.Contact.TenantId, inv.Contact.Id, node.Data.TagId); err != nil {
		return Result{}, err
	}
	return Result{}, nil
}
