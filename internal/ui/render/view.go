package render

import (
	"github.com/kk-code-lab/rmill/internal/command"
	"github.com/kk-code-lab/rmill/internal/panel"
)

// Prompt is a line being typed in the footer, for cd, search, mkdir and the
// like.
type Prompt struct {
	Label string
	Input string
}

// View is everything one frame shows. The orchestrator builds it from the
// panels it owns; the renderer never reaches back into them.
type View struct {
	User string
	Host string

	Left    panel.DirectoryPanel
	Center  panel.DirectoryPanel
	Preview panel.Preview

	// KeyBuffer is the pending chord and Hints the commands it can still
	// complete to.
	KeyBuffer string
	Hints     []command.Hint

	Message string
	IsError bool
	Prompt  *Prompt

	ShowLog  bool
	LogLines []string
}
