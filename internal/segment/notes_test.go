package segment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeNotes(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"empty", nil, []string{}},
		{"unique", []string{"a", "b"}, []string{"a", "b"}},
		{"first seen wins", []string{"b", "a", "b", "c", "a"}, []string{"b", "a", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DedupeNotes(tt.in))
		})
	}
}

func TestNotesOrOK(t *testing.T) {
	assert.Equal(t, []string{"ok"}, NotesOrOK(nil))
	assert.Equal(t, []string{"x"}, NotesOrOK([]string{"x", "x"}))
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "ok", StatusOK.String())
	assert.Equal(t, "degraded", StatusDegraded.String())
	assert.Equal(t, "unreliable", StatusUnreliable.String())
	assert.Equal(t, "unknown", Status(42).String())
}
