package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ValueType is the declared type of an option.
type ValueType int

// Supported option types.
const (
	TypeString ValueType = iota
	TypeBool
	TypeInt
	TypeDuration
	TypeList
	TypeURL
)

func (t ValueType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeBool:
		return "boolean"
	case TypeInt:
		return "integer"
	case TypeDuration:
		return "duration"
	case TypeList:
		return "list"
	case TypeURL:
		return "url"
	default:
		return fmt.Sprintf("ValueType(%d)", int(t))
	}
}

func (t ValueType) valid() bool {
	return t >= TypeString && t <= TypeURL
}

var (
	errNotBoolean     = errors.New("expected one of true, false, 1, 0, yes, no, on, off")
	errNotInteger     = errors.New("expected a base-10 integer")
	errNotDuration    = errors.New("expected a non-negative integer with optional s, m or h suffix")
	errNotAbsoluteURL = errors.New("expected an absolute url such as scheme://host/path")
)

// Coerce converts raw to the Go representation of t:
// string, bool, int, time.Duration, []string or url.URL.
// Failures are returned as *CoercionError without a key; callers that know the
// option fill it in.
func Coerce(raw string, t ValueType) (any, error) {
	switch t {
	case TypeString:
		return raw, nil
	case TypeBool:
		return coerceBool(raw)
	case TypeInt:
		s := strings.TrimSpace(raw)
		n, err := strconv.Atoi(s)
		if err != nil || strings.HasPrefix(s, "+") {
			return nil, &CoercionError{Type: t, Value: raw, Err: errNotInteger}
		}
		return n, nil
	case TypeDuration:
		return coerceDuration(raw)
	case TypeList:
		return coerceList(raw), nil
	case TypeURL:
		u, err := url.Parse(strings.TrimSpace(raw))
		if err != nil {
			return nil, &CoercionError{Type: t, Value: raw, Err: err}
		}
		if !u.IsAbs() || u.Opaque != "" {
			return nil, &CoercionError{Type: t, Value: raw, Err: errNotAbsoluteURL}
		}
		return *u, nil
	default:
		return nil, &CoercionError{Type: t, Value: raw, Err: fmt.Errorf("unsupported type %s", t)}
	}
}

func coerceBool(raw string) (any, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off":
		return false, nil
	}
	return nil, &CoercionError{Type: TypeBool, Value: raw, Err: errNotBoolean}
}

func coerceDuration(raw string) (any, error) {
	s := strings.TrimSpace(raw)
	unit := time.Second
	if s != "" {
		switch s[len(s)-1] {
		case 's':
			s = s[:len(s)-1]
		case 'm':
			unit = time.Minute
			s = s[:len(s)-1]
		case 'h':
			unit = time.Hour
			s = s[:len(s)-1]
		}
	}

	// Digits only: no sign.
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 || strings.HasPrefix(s, "+") {
		return nil, &CoercionError{Type: TypeDuration, Value: raw, Err: errNotDuration}
	}
	if n > int64(1<<63-1)/int64(unit) {
		return nil, &CoercionError{Type: TypeDuration, Value: raw, Err: errors.New("duration out of range")}
	}
	return time.Duration(n) * unit, nil
}

func coerceList(raw string) []string {
	items := []string{}
	for _, part := range strings.Split(raw, ",") {
		if item := strings.TrimSpace(part); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// Format renders a typed value in the textual form accepted by Coerce, so that
// Coerce(Format(v, t), t) yields a value equal to v.
func Format(v any, t ValueType) string {
	switch t {
	case TypeBool:
		if b, ok := v.(bool); ok {
			return strconv.FormatBool(b)
		}
	case TypeInt:
		if n, ok := v.(int); ok {
			return strconv.Itoa(n)
		}
	case TypeDuration:
		if d, ok := v.(time.Duration); ok {
			return formatDuration(d)
		}
	case TypeList:
		if items, ok := v.([]string); ok {
			return strings.Join(items, ",")
		}
	case TypeURL:
		if u, ok := v.(url.URL); ok {
			return u.String()
		}
	case TypeString:
		if s, ok := v.(string); ok {
			return s
		}
	}
	return fmt.Sprint(v)
}

// formatDuration uses the largest unit that represents d exactly.
// Sub-second precision cannot be expressed and is truncated.
func formatDuration(d time.Duration) string {
	switch {
	case d != 0 && d%time.Hour == 0:
		return strconv.FormatInt(int64(d/time.Hour), 10) + "h"
	case d != 0 && d%time.Minute == 0:
		return strconv.FormatInt(int64(d/time.Minute), 10) + "m"
	default:
		return strconv.FormatInt(int64(d/time.Second), 10) + "s"
	}
}
