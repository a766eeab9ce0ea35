package viz

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/horizon/internal/physics"
)

// Theme defines the panel colors and how particle heat colors are shown.
// Particle colors are blended towards Tint by Blend in Lab space; a Blend of
// zero shows the physical heat colors unchanged.
type Theme struct {
	Name    string
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Horizon colorful.Color
	Tint    colorful.Color
	Blend   float64
}

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

var (
	ThemeDefault = Theme{
		Name:    "default",
		Primary: lipgloss.Color("#00ffff"),
		Accent:  lipgloss.Color("#ffcc00"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#666688"),
		Horizon: mustHex("#ff4444"),
	}

	ThemeInfrared = Theme{
		Name:    "infrared",
		Primary: lipgloss.Color("#ff6b6b"),
		Accent:  lipgloss.Color("#feca57"),
		Text:    lipgloss.Color("#fff5f5"),
		Muted:   lipgloss.Color("#8b6b8c"),
		Horizon: mustHex("#ffffff"),
		Tint:    mustHex("#ff3300"),
		Blend:   0.45,
	}

	ThemeRetroGreen = Theme{
		Name:    "retro",
		Primary: lipgloss.Color("#00ff00"),
		Accent:  lipgloss.Color("#88ff88"),
		Text:    lipgloss.Color("#00ff00"),
		Muted:   lipgloss.Color("#005500"),
		Horizon: mustHex("#88ff88"),
		Tint:    mustHex("#00ff00"),
		Blend:   0.7,
	}

	ThemeOcean = Theme{
		Name:    "ocean",
		Primary: lipgloss.Color("#0077be"),
		Accent:  lipgloss.Color("#ffd700"),
		Text:    lipgloss.Color("#e0f0ff"),
		Muted:   lipgloss.Color("#4488aa"),
		Horizon: mustHex("#ffd700"),
		Tint:    mustHex("#00a8cc"),
		Blend:   0.3,
	}

	ThemeMinimal = Theme{
		Name:    "minimal",
		Primary: lipgloss.Color("#ffffff"),
		Accent:  lipgloss.Color("#0088ff"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#888888"),
		Horizon: mustHex("#888888"),
		Tint:    mustHex("#ffffff"),
		Blend:   1,
	}

	Themes = []Theme{
		ThemeDefault,
		ThemeInfrared,
		ThemeRetroGreen,
		ThemeOcean,
		ThemeMinimal,
	}
)

// Particle maps a physical heat color to the color drawn on screen.
func (t Theme) Particle(c physics.Color) colorful.Color {
	heat := colorful.Color{R: c.R, G: c.G, B: c.B}
	if t.Blend <= 0 {
		return heat
	}
	return heat.BlendLab(t.Tint, t.Blend).Clamped()
}

// GetTheme returns a theme by name, falling back to the default.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeDefault
}

func themeIndex(name string) int {
	for i, t := range Themes {
		if t.Name == name {
			return i
		}
	}
	return 0
}

// ThemeNames returns list of available theme names
func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
