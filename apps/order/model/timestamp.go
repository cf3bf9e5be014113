package model

import (
	"errors"
	"strings"
	"time"
)

const InvalidDateMessage = "Invalid date format. Use ISO format (YYYY-MM-DDTHH:MM:SS)"

var errInvalidTimestamp = errors.New("invalid ISO-8601 timestamp")

// Accepted ISO-8601 shapes. Values without a zone are taken as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02",
}

func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errInvalidTimestamp
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errInvalidTimestamp
}

// DatePolicy decides what an order_date value resolves to. By default an
// absent or unparseable date becomes Now; with Strict set an unparseable date
// is a ValidationError.
type DatePolicy struct {
	Strict bool
	Now    func() time.Time
}

func (p DatePolicy) now() time.Time {
	if p.Now != nil {
		return p.Now().UTC()
	}
	return time.Now().UTC()
}

func (p DatePolicy) Resolve(raw any, present bool) (time.Time, error) {
	if !present {
		return p.now(), nil
	}
	if s, ok := raw.(string); ok {
		if t, err := ParseTimestamp(s); err == nil {
			return t, nil
		}
	}
	if p.Strict {
		return time.Time{}, &ValidationError{Field: FieldOrderDate, Message: InvalidDateMessage}
	}
	return p.now(), nil
}
