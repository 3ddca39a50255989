package render

import "github.com/gdamore/tcell/v2"

// Theme defines the browser colors.
type Theme struct {
	Main      tcell.Color // directories, user@host
	Marked    tcell.Color // marked entries
	Highlight tcell.Color // key buffer, errors, prompt
	DirPath   tcell.Color // header path
	Hidden    tcell.Color
	Symlink   tcell.Color
	FooterBg  tcell.Color
	FooterFg  tcell.Color
	LoadingFg tcell.Color
}

// DefaultTheme returns the built-in color scheme.
func DefaultTheme() Theme {
	return NewTheme("green", "olive", "red", "navy")
}

// NewTheme builds a theme from tcell color names or #rrggbb values. Names
// tcell does not know keep the default color for that role.
func NewTheme(main, marked, highlight, dirPath string) Theme {
	return Theme{
		Main:      colorOr(main, tcell.ColorGreen),
		Marked:    colorOr(marked, tcell.ColorOlive),
		Highlight: colorOr(highlight, tcell.ColorRed),
		DirPath:   colorOr(dirPath, tcell.ColorNavy),
		Hidden:    tcell.ColorLightSlateGray,
		Symlink:   tcell.Color51,
		FooterBg:  tcell.ColorDefault,
		FooterFg:  tcell.ColorDefault,
		LoadingFg: tcell.ColorGray,
	}
}

func colorOr(name string, fallback tcell.Color) tcell.Color {
	if name == "" {
		return fallback
	}
	c := tcell.GetColor(name)
	if c == tcell.ColorDefault {
		return fallback
	}
	return c
}
