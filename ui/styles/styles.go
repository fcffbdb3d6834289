// Package styles holds the lipgloss styles for every panel. All styles hang
// off a Theme value so that renderers never read global theme state.
package styles

import "github.com/charmbracelet/lipgloss"

const (
	ModeDark  = "dark"
	ModeLight = "light"

	ColorBlue   = "blue"
	ColorPurple = "purple"
	ColorGreen  = "green"
)

var (
	Modes  = []string{ModeDark, ModeLight}
	Colors = []string{ColorBlue, ColorPurple, ColorGreen}
)

var accents = map[string]lipgloss.Color{
	ColorBlue:   lipgloss.Color("#3b82f6"),
	ColorPurple: lipgloss.Color("#8b5cf6"),
	ColorGreen:  lipgloss.Color("#10b981"),
}

type palette struct {
	text    lipgloss.Color
	muted   lipgloss.Color
	surface lipgloss.Color
	user    lipgloss.Color
	ai      lipgloss.Color
	ok      lipgloss.Color
	bad     lipgloss.Color
}

var palettes = map[string]palette{
	ModeDark: {
		text:    lipgloss.Color("252"),
		muted:   lipgloss.Color("241"),
		surface: lipgloss.Color("235"),
		user:    lipgloss.Color("39"),
		ai:      lipgloss.Color("214"),
		ok:      lipgloss.Color("42"),
		bad:     lipgloss.Color("203"),
	},
	ModeLight: {
		text:    lipgloss.Color("235"),
		muted:   lipgloss.Color("245"),
		surface: lipgloss.Color("254"),
		user:    lipgloss.Color("25"),
		ai:      lipgloss.Color("130"),
		ok:      lipgloss.Color("28"),
		bad:     lipgloss.Color("160"),
	},
}

// Theme is the active look: dark or light mode plus an accent colour.
type Theme struct {
	Mode  string
	Color string
}

// NewTheme normalises unknown values to dark/blue.
func NewTheme(mode, color string) Theme {
	if _, ok := palettes[mode]; !ok {
		mode = ModeDark
	}
	if _, ok := accents[color]; !ok {
		color = ColorBlue
	}
	return Theme{Mode: mode, Color: color}
}

// ToggleMode flips between dark and light.
func (t Theme) ToggleMode() Theme {
	if t.Mode == ModeDark {
		return NewTheme(ModeLight, t.Color)
	}
	return NewTheme(ModeDark, t.Color)
}

// NextColor cycles blue -> purple -> green.
func (t Theme) NextColor() Theme {
	for i, c := range Colors {
		if c == t.Color {
			return NewTheme(t.Mode, Colors[(i+1)%len(Colors)])
		}
	}
	return NewTheme(t.Mode, ColorBlue)
}

func (t Theme) palette() palette {
	if p, ok := palettes[t.Mode]; ok {
		return p
	}
	return palettes[ModeDark]
}

func (t Theme) Accent() lipgloss.Color {
	if c, ok := accents[t.Color]; ok {
		return c
	}
	return accents[ColorBlue]
}

// GlamourStyle names the glamour standard style matching the mode.
func (t Theme) GlamourStyle() string {
	if t.Mode == ModeLight {
		return "light"
	}
	return "dark"
}

// ChromaStyle names the chroma style used for code previews.
func (t Theme) ChromaStyle() string {
	if t.Mode == ModeLight {
		return "github"
	}
	return "monokai"
}

func (t Theme) HeaderStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(t.Accent()).
		Bold(true).
		Padding(0, 1).
		Width(width)
}

func (t Theme) BadgeStyle(fg, bg string) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(fg)).
		Background(lipgloss.Color(bg)).
		Bold(true).
		Padding(0, 1)
}

func (t Theme) ConnectedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.palette().ok).Bold(true)
}

func (t Theme) DisconnectedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.palette().bad).Bold(true)
}

func (t Theme) PanelStyle(width, height int, focused bool) lipgloss.Style {
	border := t.palette().muted
	if focused {
		border = t.Accent()
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Width(width - 2).
		Height(height - 2)
}

func (t Theme) StatusStyle(width int) lipgloss.Style {
	p := t.palette()
	return lipgloss.NewStyle().
		Foreground(p.muted).
		Background(p.surface).
		Padding(0, 1).
		Width(width)
}

func (t Theme) SystemStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(t.palette().muted).
		Italic(true).
		Padding(0, 1)
}

func (t Theme) UserStyle() lipgloss.Style {
	c := t.palette().user
	return lipgloss.NewStyle().
		Foreground(c).
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(c).
		Padding(0, 1)
}

func (t Theme) AssistantStyle() lipgloss.Style {
	c := t.palette().ai
	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(c).
		Padding(0, 1)
}

func (t Theme) AssistantLabelStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.palette().ai).Bold(true)
}

func (t Theme) HintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Accent())
}

func (t Theme) TimeStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.palette().muted)
}

// ActionStyle renders one action button.
func (t Theme) ActionStyle(enabled bool) lipgloss.Style {
	s := lipgloss.NewStyle().Padding(0, 1).MarginRight(1)
	if !enabled {
		p := t.palette()
		return s.Foreground(p.muted).Background(p.surface).Strikethrough(true)
	}
	return s.Foreground(lipgloss.Color("#ffffff")).Background(t.Accent()).Bold(true)
}

func (t Theme) PromptStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Accent()).
		Padding(0, 1)
}
