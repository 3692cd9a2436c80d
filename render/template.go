// Package render turns status records into text for terminals and chat.
package render

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/castawaylabs/statuspage"
)

// Templates holds one message template per record kind.
type Templates struct {
	Status    MessageTemplate `mapstructure:"status"`
	Component MessageTemplate `mapstructure:"component"`
	Incident  MessageTemplate `mapstructure:"incident"`
}

// DefaultTemplates are used for every template left blank.
var DefaultTemplates = Templates{
	Status: MessageTemplate{
		Subject: `{{ .Description }}`,
		Message: `Page status: {{ humanize .Indicator }}`,
	},
	Component: MessageTemplate{
		Subject: `{{ .Name }}`,
		Message: `{{ .Name }} is {{ humanize .Status }}`,
	},
	Incident: MessageTemplate{
		Subject: `{{ .Name }} [{{ .Impact }}]`,
		Message: `{{ humanize .Status }}{{ with latest . }}: {{ .Body }}{{ end }}`,
	},
}

// Compile fills blank templates from DefaultTemplates and parses all of them.
func (t *Templates) Compile() error {
	t.Status.SetDefault(DefaultTemplates.Status)
	t.Component.SetDefault(DefaultTemplates.Component)
	t.Incident.SetDefault(DefaultTemplates.Incident)

	for name, tpl := range map[string]*MessageTemplate{
		"status":    &t.Status,
		"component": &t.Component,
		"incident":  &t.Incident,
	} {
		if err := tpl.Compile(); err != nil {
			return fmt.Errorf("render: %s template: %w", name, err)
		}
	}

	return nil
}

// MessageTemplate is a subject and message pair of text/template sources.
// Compile must be called before Exec.
type MessageTemplate struct {
	Subject string `json:"subject" mapstructure:"subject"`
	Message string `json:"message" mapstructure:"message"`

	subjectTpl *template.Template
	messageTpl *template.Template
}

func (t *MessageTemplate) SetDefault(d MessageTemplate) {
	if len(t.Subject) == 0 {
		t.Subject = d.Subject
	}
	if len(t.Message) == 0 {
		t.Message = d.Message
	}
}

func (t *MessageTemplate) Compile() error {
	var err error

	if len(t.Subject) > 0 {
		t.subjectTpl, err = compileTemplate(t.Subject)
	}

	if err == nil && len(t.Message) > 0 {
		t.messageTpl, err = compileTemplate(t.Message)
	}

	return err
}

// Exec renders subject and message for data. An uncompiled or failing
// template renders as the empty string.
func (t *MessageTemplate) Exec(data interface{}) (string, string) {
	return t.exec(t.subjectTpl, data), t.exec(t.messageTpl, data)
}

func (t *MessageTemplate) exec(tpl *template.Template, data interface{}) string {
	if tpl == nil {
		return ""
	}

	buf := new(bytes.Buffer)
	if err := tpl.Execute(buf, data); err != nil {
		return ""
	}
	return buf.String()
}

var funcs = template.FuncMap{
	"humanize": Humanize,
	"latest":   latest,
}

func compileTemplate(text string) (*template.Template, error) {
	return template.New("").Funcs(funcs).Parse(text)
}

// Humanize turns a wire token such as degraded_performance into
// "Degraded Performance".
func Humanize(token fmt.Stringer) string {
	words := strings.Split(token.String(), "_")
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func latest(inc statuspage.Incident) *statuspage.IncidentUpdate {
	u, ok := inc.LatestUpdate()
	if !ok {
		return nil
	}
	return &u
}
