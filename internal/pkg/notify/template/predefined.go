package template

// TypeDefault renders any notification type without its own template.
const TypeDefault = "default"

func predefined() []Template {
	return []Template{
		{
			Type:    TypeDefault,
			Subject: `{{ default "New notification" .subject }}`,
			Body: `Hello {{ default "there" .recipientName }},

{{ .content }}

-- Agileboard
`,
		},
		{
			Type:    "card_assigned",
			Subject: `You were assigned to "{{ .cardTitle }}"`,
			Body: `Hello {{ default "there" .recipientName }},

{{ default "Someone" .assignedBy }} assigned you the card "{{ .cardTitle }}"{{ if .boardName }} on board {{ .boardName }}{{ end }}.
{{ if .dueDate }}Due: {{ .dueDate }}
{{ end }}
-- Agileboard
`,
		},
		{
			Type:    "card_comment",
			Subject: `New comment on "{{ .cardTitle }}"`,
			Body: `Hello {{ default "there" .recipientName }},

{{ default "Someone" .commenter }} commented on "{{ .cardTitle }}":

{{ .comment }}

-- Agileboard
`,
		},
		{
			Type:    "project_obsolete",
			Subject: `Project {{ .projectName }} was marked obsolete`,
			Body: `Hello {{ default "there" .recipientName }},

The project {{ title .projectName }}{{ if .clientName }} ({{ .clientName }}){{ end }} was marked obsolete and cancelled.

Reason: {{ .reason }}

-- Agileboard
`,
		},
	}
}
