package components

import (
	"strings"

	"github.com/dshills/goterm"
	"github.com/rivo/uniseg"
)

// StatusBarSection defines which section of the status bar
type StatusBarSection int

const (
	// StatusBarLeft is the left section
	StatusBarLeft StatusBarSection = iota
	// StatusBarCenter is the center section
	StatusBarCenter
	// StatusBarRight is the right section
	StatusBarRight
)

// StatusBar represents a status bar component at bottom of screen
type StatusBar struct {
	y            int
	width        int
	leftText     string
	centerText   string
	rightText    string
	mode         string
	message      string
	messageTimer int // frames remaining for temporary message
	style        StatusBarStyle
}

// StatusBarStyle defines visual appearance of a status bar
type StatusBarStyle struct {
	Fg        goterm.Color
	Bg        goterm.Color
	ModeFg    goterm.Color
	ModeBg    goterm.Color
	MessageFg goterm.Color
	MessageBg goterm.Color
}

// DefaultStatusBarStyle returns the default status bar style
func DefaultStatusBarStyle() StatusBarStyle {
	return StatusBarStyle{
		Fg:        goterm.ColorRGB(220, 220, 220),
		Bg:        goterm.ColorRGB(40, 40, 40),
		ModeFg:    goterm.ColorRGB(0, 0, 0),
		ModeBg:    goterm.ColorRGB(100, 200, 255),
		MessageFg: goterm.ColorRGB(255, 255, 0),
		MessageBg: goterm.ColorRGB(40, 40, 40),
	}
}

// NewStatusBar creates a new status bar component
// y should typically be screen height - 1
func NewStatusBar(y, width int) *StatusBar {
	return &StatusBar{
		y:     y,
		width: width,
		style: DefaultStatusBarStyle(),
	}
}

// SetPosition sets the status bar Y position and width
func (s *StatusBar) SetPosition(y, width int) {
	s.y = y
	s.width = width
}

// SetText sets text for a specific section
func (s *StatusBar) SetText(section StatusBarSection, text string) {
	switch section {
	case StatusBarLeft:
		s.leftText = text
	case StatusBarCenter:
		s.centerText = text
	case StatusBarRight:
		s.rightText = text
	}
}

// GetText returns text for a specific section
func (s *StatusBar) GetText(section StatusBarSection) string {
	switch section {
	case StatusBarLeft:
		return s.leftText
	case StatusBarCenter:
		return s.centerText
	case StatusBarRight:
		return s.rightText
	}
	return ""
}

// SetMode sets the mode indicator, e.g. "EDIT" while a field has focus
func (s *StatusBar) SetMode(mode string) {
	s.mode = mode
}

// GetMode returns the current mode
func (s *StatusBar) GetMode() string {
	return s.mode
}

// SetMessage displays a temporary message
// duration is in render frames (e.g., 60 for 1 second at 60 FPS)
func (s *StatusBar) SetMessage(message string, duration int) {
	s.message = message
	s.messageTimer = duration
}

// GetMessage returns the current message
func (s *StatusBar) GetMessage() string {
	return s.message
}

// Update updates the status bar state (call each frame)
func (s *StatusBar) Update() {
	if s.messageTimer > 0 {
		s.messageTimer--
		if s.messageTimer == 0 {
			s.message = ""
		}
	}
}

// Render renders the status bar to the screen
func (s *StatusBar) Render(screen *goterm.Screen) {
	if screen == nil {
		return
	}

	// Update width if screen size changed
	if width, _ := screen.Size(); width != s.width {
		s.width = width
	}

	for x := 0; x < s.width; x++ {
		screen.SetCell(x, s.y, goterm.NewCell(' ', s.style.Fg, s.style.Bg, goterm.StyleNone))
	}

	x := 0
	if s.mode != "" {
		x = s.drawText(screen, x, " "+strings.ToUpper(s.mode)+" ", s.style.ModeFg, s.style.ModeBg, goterm.StyleBold)
		x++
	}

	if s.message != "" && s.messageTimer > 0 {
		s.drawText(screen, x, s.message, s.style.MessageFg, s.style.MessageBg, goterm.StyleNone)
		return
	}

	if s.leftText != "" {
		x = s.drawText(screen, x, s.leftText, s.style.Fg, s.style.Bg, goterm.StyleNone)
		x += 2
	}

	rightWidth := uniseg.StringWidth(s.rightText)
	if s.rightText != "" {
		if rightX := s.width - rightWidth; rightX > x {
			s.drawText(screen, rightX, s.rightText, s.style.Fg, s.style.Bg, goterm.StyleNone)
		}
	}

	if s.centerText != "" {
		w := uniseg.StringWidth(s.centerText)
		centerX := (s.width - w) / 2
		if centerX > x && centerX+w < s.width-rightWidth {
			s.drawText(screen, centerX, s.centerText, s.style.Fg, s.style.Bg, goterm.StyleNone)
		}
	}
}

// drawText draws text at x, clipped to the bar width, and returns the
// column after it
func (s *StatusBar) drawText(screen *goterm.Screen, x int, text string, fg, bg goterm.Color, style goterm.Style) int {
	drawClippedText(screen, x, s.y, 0, s.width-x, text, fg, bg, style)
	return x + uniseg.StringWidth(text)
}

// Height returns the status bar height (always 1)
func (s *StatusBar) Height() int {
	return 1
}
