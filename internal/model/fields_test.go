package model

import (
	"testing"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
)

func TestSplitSkills(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"trims around every element", "a, b , c", []string{"a", "b", "c"}},
		{"keeps order", "go, rust", []string{"go", "rust"}},
		{"single skill", "  html ", []string{"html"}},
		{"drops empty elements", "go,, ,js", []string{"go", "js"}},
		{"only separators", " , ,", []string{}},
		{"commas only", ",,,", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitSkills(tt.raw))
		})
	}
}

func TestPresent(t *testing.T) {
	assert.True(t, Present("Acme").IsPresent())
	assert.Equal(t, "Acme", Present("Acme").OrEmpty())
	assert.False(t, Present("").IsPresent())
	assert.False(t, Present("   ").IsPresent())
}

func TestSocialFields_BuildOnlyCopiesPresent(t *testing.T) {
	fields := SocialFields{
		Twitter:   mo.Some("https://twitter.com/dev"),
		Instagram: mo.None[string](),
	}

	got := fields.Build()

	assert.Equal(t, Social{Twitter: "https://twitter.com/dev"}, got)
}
