package template

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/renoribeiro/whatsapp-automation-v0-sub000/model"
)

var placeholderRegex = regexp.MustCompile(`\{\{(.*?)\}\}`)

// Render substitutes {{contact.<field>}} and {{<contextKey>}} placeholders.
// Unresolved placeholders render as an empty string.
func Render(text string, contact *model.Contact, context map[string]any) string {
	return placeholderRegex.ReplaceAllStringFunc(text, func(token string) string {
		key := strings.TrimSpace(token[2 : len(token)-2])
		value, ok := resolve(key, contact, context)
		if !ok || value == nil {
			return ""
		}
		return fmt.Sprintf("%v", value)
	})
}

func resolve(key string, contact *model.Contact, context map[string]any) (any, bool) {
	if field, ok := strings.CutPrefix(key, "contact."); ok {
		if contact == nil {
			return nil, false
		}
		switch field {
		case "id":
			return contact.Id, true
		case "name":
			return contact.Name, true
		case "phone":
			return contact.Phone, true
		case "email":
			return contact.Email, true
		case "leadSource":
			return contact.LeadSource, true
		}
		value, ok := contact.Fields[field]
		return value, ok
	}
	value, ok := context[key]
	return value, ok
}
