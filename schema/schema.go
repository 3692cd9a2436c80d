// Package schema holds the JSON schema of the Statuspage v2 public API and
// validates raw documents against its definitions.
package schema

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed statuspage.json
var document []byte

const documentURL = "https://statuspage.local/api/v2.json"

// Definitions that can be validated against.
const (
	Status                  = "status"
	Metainfo                = "metainfo"
	Component               = "component"
	AffectedComponent       = "affected_component"
	IncidentUpdate          = "incident_update"
	Incident                = "incident"
	Summary                 = "summary"
	StatusResponse          = "status_response"
	ComponentsResponse      = "components_response"
	IncidentsResponse       = "incidents_response"
	IncidentResponse        = "incident_response"
	Webhook                 = "webhook"
	WebhookComponentPayload = "webhook_component_payload"
	WebhookIncidentPayload  = "webhook_incident_payload"
)

var definitions = []string{
	Status,
	Metainfo,
	Component,
	AffectedComponent,
	IncidentUpdate,
	Incident,
	Summary,
	StatusResponse,
	ComponentsResponse,
	IncidentsResponse,
	IncidentResponse,
	Webhook,
	WebhookComponentPayload,
	WebhookIncidentPayload,
}

var printer = message.NewPrinter(language.English)

var compiled = sync.OnceValues(compile)

func compile() (map[string]*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(document))
	if err != nil {
		return nil, fmt.Errorf("schema: parsing embedded document: %w", err)
	}

	c := jsonschema.NewCompiler()
	c.DefaultDraft(jsonschema.Draft2020)
	c.AssertFormat()
	if err := c.AddResource(documentURL, doc); err != nil {
		return nil, fmt.Errorf("schema: adding embedded document: %w", err)
	}

	schemas := make(map[string]*jsonschema.Schema, len(definitions))
	for _, def := range definitions {
		sch, err := c.Compile(documentURL + "#/$defs/" + def)
		if err != nil {
			return nil, fmt.Errorf("schema: compiling %s: %w", def, err)
		}
		schemas[def] = sch
	}

	return schemas, nil
}

// Decode parses raw JSON into the generic value model the validator works on.
// Numbers are kept as json.Number so integer checks are exact.
func Decode(data []byte) (any, error) {
	return jsonschema.UnmarshalJSON(bytes.NewReader(data))
}

// Validate checks doc, as returned by Decode, against the named definition.
// A mismatch is reported as a *ValidationError.
func Validate(def string, doc any) error {
	schemas, err := compiled()
	if err != nil {
		return err
	}

	sch, ok := schemas[def]
	if !ok {
		return fmt.Errorf("schema: unknown definition %q", def)
	}

	err = sch.Validate(doc)
	if err == nil {
		return nil
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err
	}

	return &ValidationError{Definition: def, Violations: violations(ve)}
}

// Violation is a single schema mismatch. Path is a JSON pointer into the
// validated document, empty for the document root.
type Violation struct {
	Path    string
	Message string
}

// ValidationError lists every violation found in one document.
type ValidationError struct {
	Definition string
	Violations []Violation
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return fmt.Sprintf("schema: document is not a valid %s", e.Definition)
	}

	first := e.Violations[0]
	msg := fmt.Sprintf("schema: invalid %s at %s: %s", e.Definition, displayPath(first.Path), first.Message)
	if n := len(e.Violations) - 1; n > 0 {
		msg += fmt.Sprintf(" (and %d more)", n)
	}

	return msg
}

func displayPath(p string) string {
	if p == "" {
		return "/"
	}
	return p
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func pointer(location []string) string {
	var b strings.Builder
	for _, token := range location {
		b.WriteByte('/')
		b.WriteString(pointerEscaper.Replace(token))
	}
	return b.String()
}

func violations(ve *jsonschema.ValidationError) []Violation {
	var out []Violation
	for _, leaf := range leaves(ve) {
		path := pointer(leaf.InstanceLocation)

		// point at the missing field itself
		if req, ok := leaf.ErrorKind.(*kind.Required); ok {
			for _, name := range req.Missing {
				out = append(out, Violation{
					Path:    path + "/" + pointerEscaper.Replace(name),
					Message: "required field is missing",
				})
			}
			continue
		}

		out = append(out, Violation{
			Path:    path,
			Message: leaf.ErrorKind.LocalizedString(printer),
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Path < out[j].Path })

	return out
}

func leaves(ve *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*jsonschema.ValidationError{ve}
	}

	var flat []*jsonschema.ValidationError
	for _, cause := range ve.Causes {
		flat = append(flat, leaves(cause)...)
	}
	return flat
}
