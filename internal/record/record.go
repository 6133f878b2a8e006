// Package record defines the typed records accepted by the ingestion
// pipeline and the actions it synthesizes from them.
package record

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Kind discriminates the closed set of ingestible record types.
type Kind string

const (
	KindEvent    Kind = "event"
	KindDocument Kind = "document"
	KindEmail    Kind = "email"
)

// Record is the closed union of ingestible records. A record is built
// once from validated input and consumed read-only after that.
type Record interface {
	Kind() Kind
	isRecord()
}

// Event is a calendar event record.
type Event struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description" validate:"required"`
	StartTime   string   `json:"startTime" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	EndTime     string   `json:"endTime" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	Location    string   `json:"location"`
	Attendees   []string `json:"attendees" validate:"dive,email"`
}

func (*Event) Kind() Kind { return KindEvent }
func (*Event) isRecord()  {}

// Document is a free-form document record.
type Document struct {
	Title   string   `json:"title" validate:"required"`
	Content string   `json:"content" validate:"required"`
	Author  string   `json:"author" validate:"required"`
	Tags    []string `json:"tags"`
}

func (*Document) Kind() Kind { return KindDocument }
func (*Document) isRecord()  {}

// Email is an email message record.
type Email struct {
	To      string   `json:"to" validate:"required,email"`
	From    string   `json:"from" validate:"required,email"`
	Subject string   `json:"subject" validate:"required"`
	Body    string   `json:"body" validate:"required"`
	Cc      []string `json:"cc" validate:"dive,email"`
}

func (*Email) Kind() Kind { return KindEmail }
func (*Email) isRecord()  {}

var validate = validator.New(validator.WithRequiredStructEnabled())

// envelope peeks the discriminator before the full decode.
type envelope struct {
	Type Kind `json:"type"`
}

// Unmarshal decodes and validates a JSON payload into its record
// variant. Unknown or missing discriminator values are rejected, never
// coerced. Array fields come back non-nil.
func Unmarshal(data []byte) (Record, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("malformed record payload: %w", err)
	}

	var rec Record
	switch env.Type {
	case KindEvent:
		rec = &Event{}
	case KindDocument:
		rec = &Document{}
	case KindEmail:
		rec = &Email{}
	default:
		return nil, fmt.Errorf("unknown record type: %q", env.Type)
	}

	if err := json.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("malformed %s payload: %w", env.Type, err)
	}
	if err := validate.Struct(rec); err != nil {
		return nil, fmt.Errorf("invalid %s payload: %s", env.Type, describeValidationError(err))
	}

	normalize(rec)
	return rec, nil
}

// normalize replaces nil array fields with empty slices so that no
// consumer ever sees an absent array.
func normalize(rec Record) {
	switch r := rec.(type) {
	case *Event:
		if r.Attendees == nil {
			r.Attendees = []string{}
		}
	case *Document:
		if r.Tags == nil {
			r.Tags = []string{}
		}
	case *Email:
		if r.Cc == nil {
			r.Cc = []string{}
		}
	}
}

// describeValidationError flattens validator output into a human-readable
// message suitable for a client-fault response.
func describeValidationError(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", fe.Field()))
		case "email":
			parts = append(parts, fmt.Sprintf("%s must be a valid email address", fe.Field()))
		default:
			parts = append(parts, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return strings.Join(parts, "; ")
}
