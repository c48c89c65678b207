package template

import (
	"testing"

	"github.com/renoribeiro/whatsapp-automation-v0-sub000/model"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	contact := &model.Contact{
		Id:         "c-1",
		TenantId:   "t-1",
		Name:       "Maria",
		Phone:      "+5511999990000",
		Email:      "maria@example.com",
		LeadSource: "instagram",
		Fields: map[string]any{
			"city": "Recife",
			"age":  31,
		},
	}
	context := map[string]any{
		"matchedKeywords": []string{"promo"},
		"tick":            "2023-05-01T10:00:00Z",
	}

	for scenario, fn := range map[string]func(t *testing.T){
		"renders contact fields": func(t *testing.T) {
			out := Render("Oi {{contact.name}}, seu telefone é {{contact.phone}}", contact, context)
			require.Equal(t, "Oi Maria, seu telefone é +5511999990000", out)
		},
		"renders custom contact fields": func(t *testing.T) {
			out := Render("{{contact.city}} - {{contact.age}}", contact, context)
			require.Equal(t, "Recife - 31", out)
		},
		"renders context keys": func(t *testing.T) {
			out := Render("tick={{tick}}", contact, context)
			require.Equal(t, "tick=2023-05-01T10:00:00Z", out)
		},
		"unresolved placeholder renders empty": func(t *testing.T) {
			out := Render("Oi {{contact.unknown}}{{missing}}!", contact, context)
			require.Equal(t, "Oi !", out)
		},
		"placeholder with surrounding spaces": func(t *testing.T) {
			out := Render("Oi {{ contact.name }}", contact, context)
			require.Equal(t, "Oi Maria", out)
		},
		"nil contact renders empty contact fields": func(t *testing.T) {
			out := Render("Oi {{contact.name}}", nil, context)
			require.Equal(t, "Oi ", out)
		},
		"text without placeholders passes through": func(t *testing.T) {
			out := Render("sem variáveis", contact, nil)
			require.Equal(t, "sem variáveis", out)
		},
	} {
		t.Run(scenario, fn)
	}
}
