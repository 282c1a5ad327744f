package output

import (
	"os"

	"github.com/fatih/color"
)

// colorScheme holds the colors used by the human-readable report.
type colorScheme struct {
	ok   *color.Color
	warn *color.Color
	fail *color.Color
}

// newColorScheme returns the report colors. Colors are disabled when the
// destination is not a terminal or NO_COLOR is set.
func newColorScheme(terminal bool) *colorScheme {
	enabled := terminal && os.Getenv("NO_COLOR") == ""

	s := &colorScheme{
		ok:   color.New(color.FgGreen, color.Bold),
		warn: color.New(color.FgYellow, color.Bold),
		fail: color.New(color.FgRed, color.Bold),
	}
	if enabled {
		s.ok.EnableColor()
		s.warn.EnableColor()
		s.fail.EnableColor()
	} else {
		s.ok.DisableColor()
		s.warn.DisableColor()
		s.fail.DisableColor()
	}
	return s
}

// successIcon returns a checkmark symbol with appropriate color.
func (s *colorScheme) successIcon() string { return s.ok.Sprint("✓") }

// errorIcon returns an X symbol with appropriate color.
func (s *colorScheme) errorIcon() string { return s.fail.Sprint("✗") }

// warnIcon returns a warning symbol with appropriate color.
func (s *colorScheme) warnIcon() string { return s.warn.Sprint("⚠") }
