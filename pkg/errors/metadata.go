package errors

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Metadata is the structured context attached to an error: free-form
// string fields plus the optional component and operation that were
// running when the failure occurred.
//
// Metadata is an immutable value. Every method that changes it returns
// an updated copy and leaves the receiver untouched, so a Metadata can
// be shared between goroutines and between errors without
// synchronization. The zero value is empty and ready to use.
type Metadata struct {
	component string
	operation string
	fields    map[string]string
}

// NewMetadata returns an empty Metadata.
func NewMetadata() Metadata {
	return Metadata{}
}

// With returns a copy with key set to value. An existing key is
// overwritten.
func (m Metadata) With(key, value string) Metadata {
	fields := make(map[string]string, len(m.fields)+1)
	maps.Copy(fields, m.fields)
	fields[key] = value
	m.fields = fields
	return m
}

// WithValue is like [Metadata.With] but formats value with fmt.Sprint.
func (m Metadata) WithValue(key string, value any) Metadata {
	return m.With(key, fmt.Sprint(value))
}

// WithComponent returns a copy naming the component that failed.
func (m Metadata) WithComponent(name string) Metadata {
	m.component = name
	return m
}

// WithOperation returns a copy naming the operation that failed.
func (m Metadata) WithOperation(name string) Metadata {
	m.operation = name
	return m
}

// Merge returns the union of m and other. On key conflicts other wins,
// and a non-empty component or operation in other replaces m's. Merge
// is associative: a.Merge(b).Merge(c) equals a.Merge(b.Merge(c)).
func (m Metadata) Merge(other Metadata) Metadata {
	if other.component != "" {
		m.component = other.component
	}
	if other.operation != "" {
		m.operation = other.operation
	}
	if len(other.fields) == 0 {
		return m
	}
	fields := make(map[string]string, len(m.fields)+len(other.fields))
	maps.Copy(fields, m.fields)
	maps.Copy(fields, other.fields)
	m.fields = fields
	return m
}

// Get returns the value stored under key.
func (m Metadata) Get(key string) (string, bool) {
	v, ok := m.fields[key]
	return v, ok
}

// Component returns the component name, or "" when unset.
func (m Metadata) Component() string { return m.component }

// Operation returns the operation name, or "" when unset.
func (m Metadata) Operation() string { return m.operation }

// Fields returns a copy of the key/value fields. The component and
// operation are not included.
func (m Metadata) Fields() map[string]string {
	return maps.Clone(m.fields)
}

// Keys returns the field keys in sorted order.
func (m Metadata) Keys() []string {
	return slices.Sorted(maps.Keys(m.fields))
}

// Len returns the number of fields.
func (m Metadata) Len() int { return len(m.fields) }

// IsEmpty reports whether m carries no fields, component or operation.
func (m Metadata) IsEmpty() bool {
	return len(m.fields) == 0 && m.component == "" && m.operation == ""
}

// Equal reports whether m and other hold the same content.
func (m Metadata) Equal(other Metadata) bool {
	return m.component == other.component &&
		m.operation == other.operation &&
		maps.Equal(m.fields, other.fields)
}

// String renders the metadata as space-separated key=value pairs:
// component first, then operation, then the fields in key order.
func (m Metadata) String() string {
	var b strings.Builder
	write := func(k, v string) {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(v)
	}
	if m.component != "" {
		write("component", m.component)
	}
	if m.operation != "" {
		write("operation", m.operation)
	}
	for _, k := range m.Keys() {
		write(k, m.fields[k])
	}
	return b.String()
}
