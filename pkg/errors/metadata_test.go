package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetadata_With(t *testing.T) {
	t.Parallel()
	base := NewMetadata().With("a", "1")
	updated := base.With("a", "2").With("b", "3")

	v, ok := base.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "1", v, "With must not modify the receiver")
	assert.Equal(t, 1, base.Len())

	assert.Equal(t, map[string]string{"a": "2", "b": "3"}, updated.Fields())
}

func TestMetadata_WithValue(t *testing.T) {
	t.Parallel()
	m := NewMetadata().WithValue("attempts", 3).WithValue("ok", true)
	assert.Equal(t, map[string]string{"attempts": "3", "ok": "true"}, m.Fields())
}

func TestMetadata_ComponentAndOperation(t *testing.T) {
	t.Parallel()
	m := NewMetadata().WithComponent("loader").WithOperation("read")
	assert.Equal(t, "loader", m.Component())
	assert.Equal(t, "read", m.Operation())
	assert.Zero(t, m.Len())
	assert.False(t, m.IsEmpty())
	assert.True(t, NewMetadata().IsEmpty())
}

func TestMetadata_Merge_RightBiased(t *testing.T) {
	t.Parallel()
	left := NewMetadata().With("a", "1")
	right := NewMetadata().With("a", "2").With("b", "3")

	merged := left.Merge(right)
	assert.Equal(t, map[string]string{"a": "2", "b": "3"}, merged.Fields())
	assert.Equal(t, map[string]string{"a": "1"}, left.Fields(), "Merge must not modify the receiver")
}

func TestMetadata_Merge_Associative(t *testing.T) {
	t.Parallel()
	a := NewMetadata().With("x", "a").With("only_a", "1").WithComponent("ca")
	b := NewMetadata().With("x", "b").WithOperation("ob")
	c := NewMetadata().With("x", "c").With("only_c", "3").WithComponent("cc")

	left := a.Merge(b).Merge(c)
	right := a.Merge(b.Merge(c))
	assert.True(t, left.Equal(right), "left=%s right=%s", left, right)
	assert.Equal(t, "cc", left.Component())
	assert.Equal(t, "ob", left.Operation())
}

func TestMetadata_Merge_KeepsComponentWhenOtherUnset(t *testing.T) {
	t.Parallel()
	m := NewMetadata().WithComponent("api").Merge(NewMetadata().With("k", "v"))
	assert.Equal(t, "api", m.Component())
}

func TestMetadata_Fields_ReturnsCopy(t *testing.T) {
	t.Parallel()
	m := NewMetadata().With("k", "v")
	fields := m.Fields()
	fields["k"] = "changed"

	v, _ := m.Get("k")
	assert.Equal(t, "v", v)
}

func TestMetadata_String(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		m    Metadata
		want string
	}{
		{"empty", NewMetadata(), ""},
		{"fields sorted", NewMetadata().With("z", "1").With("a", "2"), "a=2 z=1"},
		{
			name: "component and operation first",
			m:    NewMetadata().With("path", "/etc/app.toml").WithOperation("load").WithComponent("config"),
			want: "component=config operation=load path=/etc/app.toml",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.m.String())
		})
	}
}

func TestMetadata_Keys(t *testing.T) {
	t.Parallel()
	m := NewMetadata().With("b", "").With("c", "").With("a", "")
	assert.Equal(t, []string{"a", "b", "c"}, m.Keys())
	assert.Empty(t, NewMetadata().Keys())
}
