package mistake

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const eventSchemaURL = "schema://mistake-event.json"

// eventSchema is the wire contract for a submitted mistake event.
const eventSchema = `{
	"type": "object",
	"properties": {
		"learnerId":        {"type": "string", "minLength": 1},
		"learnerName":      {"type": "string"},
		"learnerEmail":     {"type": "string"},
		"lessonRef":        {"type": ["string", "null"]},
		"mistakeType":      {"enum": ["syntax", "logic", "compilation", "runtime", "best-practice"]},
		"message":          {"type": "string", "minLength": 1},
		"userCode":         {"type": "string"},
		"correctCode":      {"type": ["string", "null"]},
		"difficulty":       {"enum": ["beginner", "intermediate", "advanced"]},
		"topic":            {"type": "string", "minLength": 1},
		"resolved":         {"type": "boolean"},
		"attempts":         {"type": "integer", "minimum": 1},
		"timeSpentSeconds": {"type": "integer", "minimum": 0},
		"hintsUsed":        {"type": "integer", "minimum": 0}
	},
	"required": ["learnerId", "mistakeType", "message", "difficulty", "topic", "attempts"],
	"additionalProperties": false
}`

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func loadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(eventSchema))
		if err != nil {
			schemaErr = fmt.Errorf("parse event schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(eventSchemaURL, doc); err != nil {
			schemaErr = fmt.Errorf("add event schema: %w", err)
			return
		}
		compiledSchema, schemaErr = c.Compile(eventSchemaURL)
	})
	return compiledSchema, schemaErr
}

// DecodeNew reads one JSON mistake event from r, checks it against the event
// schema and the field rules, and returns it ready for insertion.
// Malformed input yields *InvalidEventError.
func DecodeNew(r io.Reader) (New, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return New{}, fmt.Errorf("read event: %w", err)
	}

	sch, err := loadSchema()
	if err != nil {
		return New{}, err
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return New{}, &InvalidEventError{Err: fmt.Errorf("invalid JSON: %w", err)}
	}
	if err := sch.Validate(inst); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return New{}, &InvalidEventError{Fields: schemaFieldErrors(verr), Err: err}
		}
		return New{}, &InvalidEventError{Err: err}
	}

	var n New
	if err := json.Unmarshal(raw, &n); err != nil {
		return New{}, &InvalidEventError{Err: fmt.Errorf("decode event: %w", err)}
	}
	if err := Validate(n); err != nil {
		return New{}, err
	}
	return n, nil
}

// schemaFieldErrors flattens the leaves of a schema validation tree.
func schemaFieldErrors(verr *jsonschema.ValidationError) []FieldError {
	p := message.NewPrinter(language.English)
	var out []FieldError
	var walk func(*jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			out = append(out, FieldError{
				Field:   strings.Join(e.InstanceLocation, "."),
				Message: e.ErrorKind.LocalizedString(p),
			})
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(verr)
	return out
}
