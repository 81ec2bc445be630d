package cmd

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// palette holds the colors used by command output.
type palette struct {
	Name    *color.Color
	Value   *color.Color
	Good    *color.Color
	Warn    *color.Color
	Error   *color.Color
	Heading *color.Color
}

func colorPalette() *palette {
	return &palette{
		Name:    color.New(color.FgCyan),
		Value:   color.New(color.FgWhite, color.Bold),
		Good:    color.New(color.FgGreen),
		Warn:    color.New(color.FgYellow),
		Error:   color.New(color.FgRed, color.Bold),
		Heading: color.New(color.Bold),
	}
}

func plainPalette() *palette {
	p := colorPalette()
	for _, c := range []*color.Color{p.Name, p.Value, p.Good, p.Warn, p.Error, p.Heading} {
		c.DisableColor()
	}
	return p
}

// paletteFor returns a colored palette only when w is a terminal and color
// was not turned off.
func paletteFor(w io.Writer) *palette {
	if noColor || !isTerminal(w) {
		return plainPalette()
	}
	p := colorPalette()
	for _, c := range []*color.Color{p.Name, p.Value, p.Good, p.Warn, p.Error, p.Heading} {
		c.EnableColor()
	}
	return p
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
