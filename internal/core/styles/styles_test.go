package styles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/casereview/internal/core/caserecord"
)

func TestThemeNames(t *testing.T) {
	names := ThemeNames()
	assert.Contains(t, names, DefaultTheme)
	assert.IsIncreasing(t, names)
}

func TestSetTheme(t *testing.T) {
	t.Cleanup(func() { SetTheme(themes[DefaultTheme]) })

	p, ok := GetPalette("gruvbox")
	require.True(t, ok)
	SetTheme(p)
	assert.Equal(t, p, CurrentPalette)

	_, ok = GetPalette("nope")
	assert.False(t, ok)
}

func TestGlamourStyle_UsesPalette(t *testing.T) {
	cfg := GlamourStyle()
	require.NotNil(t, cfg.Document.Color)
	assert.Equal(t, "#c0caf5", *cfg.Document.Color)
}

func TestColorHexPtr(t *testing.T) {
	assert.Nil(t, colorHexPtr(""))
	assert.Nil(t, colorHexPtr("12"))
	got := colorHexPtr("#ABCDEF")
	require.NotNil(t, got)
	assert.Equal(t, "#abcdef", *got)
}

func TestStatusIcon(t *testing.T) {
	seen := map[string]bool{}
	for _, s := range caserecord.Statuses() {
		seen[StatusIcon(s)] = true
		assert.Contains(t, StatusBadge(s), s.String())
	}
	assert.Len(t, seen, 4)
}

func TestFormTheme_UsesPalette(t *testing.T) {
	th := FormTheme()
	require.NotNil(t, th)
	assert.Equal(t, CurrentPalette.Primary, th.Focused.Title.GetForeground())
}
