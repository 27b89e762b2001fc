package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPostString_TruncatesToFifteenRunes(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"short text unchanged", "hello", "hello"},
		{"exactly fifteen", "123456789012345", "123456789012345"},
		{"long text truncated", "this text is longer than fifteen characters", "this text is lo"},
		{"empty", "", ""},
		{"multibyte runes counted, not bytes", "приветствуем вас дорогие читатели", "приветствуем ва"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Post{Text: tt.text}.String())
		})
	}
}

func TestGroupString(t *testing.T) {
	assert.Equal(t, "Cats", Group{Title: "Cats", Slug: "cats"}.String())
}
