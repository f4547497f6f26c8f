package styles

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetTheme_FallsBackToDark(t *testing.T) {
	assert.Equal(t, "nord", GetTheme("nord").Name)
	assert.Equal(t, "dark", GetTheme("neon").Name)
}

func TestNextTheme_Cycles(t *testing.T) {
	t.Cleanup(func() { SetCurrentTheme(DarkTheme.Name) })
	SetCurrentTheme(DarkTheme.Name)

	seen := []string{}
	for range BuiltinThemes {
		seen = append(seen, NextTheme())
	}

	assert.Equal(t, append(GetThemeNames()[1:], "dark"), seen)
	assert.Equal(t, "dark", CurrentTheme().Name)
}

func TestColorFor_IsStableHex(t *testing.T) {
	hex := regexp.MustCompile(`^#[0-9A-F]{6}$`)

	for _, id := range []string{"", "a1", "a2", "some-very-long-identifier-with-many-characters-in-it"} {
		c := ColorFor(id)
		assert.Regexp(t, hex, c)
		assert.Equal(t, c, ColorFor(id))
	}
	assert.NotEqual(t, ColorFor("a1"), ColorFor("b7"))
}
