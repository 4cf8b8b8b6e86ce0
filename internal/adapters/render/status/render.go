package status

import (
	"errors"
	"fmt"

	"github.com/bnema/orca/internal/application"
	"github.com/charmbracelet/lipgloss"
)

var ErrInvalidWidth = errors.New("render width must not be negative")

// Render lays out a machine status for the terminal. When opts.Width is set,
// every line is clipped to it.
func Render(status application.Status, opts RenderOptions) (string, error) {
	if opts.Width < 0 {
		return "", fmt.Errorf("%w: %d", ErrInvalidWidth, opts.Width)
	}

	out := renderView(status, opts, newStyles())
	if opts.Width > 0 {
		out = lipgloss.NewStyle().MaxWidth(opts.Width).Render(out)
	}
	return out, nil
}
