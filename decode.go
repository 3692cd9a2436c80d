package statuspage

import (
	"encoding"
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/castawaylabs/statuspage/schema"
)

// Unmarshal validates data against the named schema definition and then
// decodes the validated document into v, which must be a pointer. Any
// mismatch is returned as a *DecodeError.
//
// Fields are matched to object keys by their json tag, exactly. Every wire
// name is lower snake case, so keys spelled any other way are dropped before
// decoding and can never stand in for a field the schema checked.
func Unmarshal(def string, data []byte, v any) error {
	doc, err := schema.Decode(data)
	if err != nil {
		return &DecodeError{Err: err}
	}

	if err := schema.Validate(def, doc); err != nil {
		return newDecodeError(err)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: textUnmarshalerHook,
		TagName:    "json",
		Result:     v,
	})
	if err != nil {
		return &DecodeError{Err: err}
	}

	if err := decoder.Decode(wireKeysOnly(doc)); err != nil {
		return newDecodeError(err)
	}

	return nil
}

// isWireKey reports whether key is lower snake case.
func isWireKey(key string) bool {
	if key == "" {
		return false
	}
	for _, r := range key {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '_' {
			return false
		}
	}
	return true
}

func wireKeysOnly(doc any) any {
	switch v := doc.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, value := range v {
			if isWireKey(key) {
				out[key] = wireKeysOnly(value)
			}
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, value := range v {
			out[i] = wireKeysOnly(value)
		}
		return out
	}
	return doc
}

var textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()

// textUnmarshalerHook turns strings into timestamps, dates and enumerations.
func textUnmarshalerHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String || !reflect.PointerTo(to).Implements(textUnmarshalerType) {
		return data, nil
	}

	out := reflect.New(to)
	if err := out.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(reflect.ValueOf(data).String())); err != nil {
		return nil, err
	}
	return out.Elem().Interface(), nil
}

var (
	numberField = regexp.MustCompile(`json\.Number into ([^:]+):`)
	quotedField = regexp.MustCompile(`'([^']*)'`)
	fieldIndex  = regexp.MustCompile(`\[(\d+)\]`)
)

func newDecodeError(err error) *DecodeError {
	var ve *schema.ValidationError
	if errors.As(err, &ve) {
		de := &DecodeError{Err: err}
		if len(ve.Violations) > 0 {
			de.Path = ve.Violations[0].Path
		}
		return de
	}

	// the decoder reports every failure as "... 'incident_updates[0].created_at' ..."
	msg := err.Error()
	var me *mapstructure.Error
	if errors.As(err, &me) && len(me.Errors) > 0 {
		msg = me.Errors[0]
	}

	return &DecodeError{Path: fieldPath(msg), Err: errors.New(msg)}
}

// fieldPath extracts the decoder's field name from msg as a JSON pointer.
func fieldPath(msg string) string {
	var name string
	if m := numberField.FindStringSubmatch(msg); m != nil {
		name = m[1]
	} else if m := quotedField.FindStringSubmatch(msg); m != nil {
		name = m[1]
	}
	if name == "" {
		return ""
	}

	name = fieldIndex.ReplaceAllString(name, ".$1")
	return "/" + strings.ReplaceAll(name, ".", "/")
}

// ParseSummary decodes a /summary.json body.
func ParseSummary(data []byte) (Summary, error) {
	s := newSummary()
	if err := Unmarshal(schema.Summary, data, &s); err != nil {
		return Summary{}, err
	}
	return s, nil
}

// ParseStatus decodes a bare status object.
func ParseStatus(data []byte) (Status, error) {
	var s Status
	if err := Unmarshal(schema.Status, data, &s); err != nil {
		return Status{}, err
	}
	return s, nil
}

// ParseComponent decodes a single component object.
func ParseComponent(data []byte) (Component, error) {
	var c Component
	if err := Unmarshal(schema.Component, data, &c); err != nil {
		return Component{}, err
	}
	return c, nil
}

// ParseIncident decodes a single incident object.
func ParseIncident(data []byte) (Incident, error) {
	var i Incident
	if err := Unmarshal(schema.Incident, data, &i); err != nil {
		return Incident{}, err
	}
	return i, nil
}
