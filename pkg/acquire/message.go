package acquire

import (
	"strconv"
	"strings"

	"github.com/glorpus-work/acquire/pkg/tagfile"
)

// Message is the key-value status report a transport method sends for a
// request. Keys are matched case-insensitively and unknown keys are ignored.
type Message struct {
	// Header is the optional status line, for example "201 URI Done".
	Header string
	fields []tagfile.Field
}

// NewMessage builds a message from alternating keys and values.
func NewMessage(kv ...string) Message {
	var m Message
	for i := 0; i+1 < len(kv); i += 2 {
		m.Set(kv[i], kv[i+1])
	}
	return m
}

// ParseMessage parses the textual form of a message. A first line that
// does not contain ':' is kept as the header.
func ParseMessage(text string) (Message, error) {
	var m Message
	if first, rest, _ := strings.Cut(text, "\n"); first != "" && !strings.Contains(first, ":") {
		m.Header = strings.TrimSpace(first)
		text = rest
	}
	sections, err := tagfile.Parse(strings.NewReader(text))
	if err != nil {
		return Message{}, err
	}
	for _, s := range sections {
		m.fields = append(m.fields, s.Fields...)
	}
	return m, nil
}

// Find returns the value of key and whether it was present.
func (m Message) Find(key string) (string, bool) {
	for _, f := range m.fields {
		if strings.EqualFold(f.Key, key) {
			return f.Value, true
		}
	}
	return "", false
}

// Get returns the value of key or the empty string.
func (m Message) Get(key string) string {
	v, _ := m.Find(key)
	return v
}

// Set replaces or appends key.
func (m *Message) Set(key, value string) {
	for i := range m.fields {
		if strings.EqualFold(m.fields[i].Key, key) {
			m.fields[i].Value = value
			return
		}
	}
	m.fields = append(m.fields, tagfile.Field{Key: key, Value: value})
}

// Bool interprets key as a boolean, falling back to def when the key is
// absent or its value is not recognised.
func (m Message) Bool(key string, def bool) bool {
	v, ok := m.Find(key)
	if !ok {
		return def
	}
	return StringToBool(v, def)
}

// Int interprets key as a decimal integer, falling back to def.
func (m Message) Int(key string, def int64) int64 {
	v, ok := m.Find(key)
	if !ok {
		return def
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return def
	}
	return n
}

// Len returns the number of fields.
func (m Message) Len() int {
	return len(m.fields)
}

// String renders the message in field order.
func (m Message) String() string {
	var b strings.Builder
	if m.Header != "" {
		b.WriteString(m.Header)
		b.WriteByte('\n')
	}
	for _, f := range m.fields {
		b.WriteString(f.Key)
		b.WriteString(": ")
		b.WriteString(strings.ReplaceAll(f.Value, "\n", "\n "))
		b.WriteByte('\n')
	}
	return b.String()
}

// StringToBool accepts numbers and the usual yes/no spellings.
func StringToBool(text string, def bool) bool {
	text = strings.TrimSpace(text)
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return n != 0
	}
	switch strings.ToLower(text) {
	case "yes", "true", "with", "on", "enable":
		return true
	case "no", "false", "without", "off", "disable":
		return false
	default:
		return def
	}
}
