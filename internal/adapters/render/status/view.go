package status

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bnema/orca/internal/application"
	"github.com/bnema/orca/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

type RenderOptions struct {
	Now time.Time
	// IdleAfter marks sessions with no activity for longer as idle.
	IdleAfter time.Duration
	// Width clips lines to this many cells. Zero leaves them unclipped.
	Width int
}

const capacityBarWidth = 24

func renderView(status application.Status, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render(fmt.Sprintf("Machine %s", status.Machine.MachineID)),
		s.header.Render(status.Machine.Address),
		capacityLine(len(status.Sessions), status.MaxSessions, s),
		s.section.Render(renderSessions(status.Sessions, opts, s)),
		s.section.Render(renderHosts(status, s)),
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func capacityLine(used, max int, s styles) string {
	if max <= 0 {
		return s.detail.Render(fmt.Sprintf("sessions: %d", used))
	}

	usedPercent := 100 * float64(used) / float64(max)
	freePercent := clampPercent(100 - usedPercent)
	meta := lipgloss.NewStyle().Foreground(interpolateColor(freePercent, 0, 100)).
		Render(fmt.Sprintf("%d/%d sessions", used, max))

	line := lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.key.Render("capacity:"),
		" ",
		renderProgressBar(usedPercent, capacityBarWidth, s),
		" ",
		meta,
	)
	if used >= max {
		line += " " + s.warning.Render("[full]")
	}
	return line
}

func renderSessions(sessions []domain.Session, opts RenderOptions, s styles) string {
	parts := []string{s.heading.Render(fmt.Sprintf("sessions: %d", len(sessions)))}
	if len(sessions) == 0 {
		parts = append(parts, s.empty.Render("No live sessions."))
		return lipgloss.JoinVertical(lipgloss.Left, parts...)
	}

	for _, session := range sessions {
		parts = append(parts, sessionLine(session, opts, s))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func sessionLine(session domain.Session, opts RenderOptions, s styles) string {
	line := lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.id.Render(string(session.ID)),
		" ",
		stateStyle(string(session.State), s).Render(string(session.State)),
	)
	if opts.Now.IsZero() || session.LastActivity.IsZero() {
		return line
	}

	idle := opts.Now.Sub(session.LastActivity)
	line += " " + s.meta.Render(fmt.Sprintf("(active %s ago)", formatAge(idle)))
	if opts.IdleAfter > 0 && idle > opts.IdleAfter {
		line += " " + s.warning.Render("[idle]")
	}
	return line
}

func renderHosts(status application.Status, s styles) string {
	parts := []string{s.heading.Render(fmt.Sprintf("hosts: %d", len(status.Hosts)))}
	if status.HostsErr != nil {
		parts = append(parts, s.warning.Render("engine unavailable: "+status.HostsErr.Error()))
		return lipgloss.JoinVertical(lipgloss.Left, parts...)
	}
	if len(status.Hosts) == 0 {
		parts = append(parts, s.empty.Render("No tenant hosts."))
		return lipgloss.JoinVertical(lipgloss.Left, parts...)
	}

	for _, host := range status.Hosts {
		line := lipgloss.JoinHorizontal(
			lipgloss.Top,
			s.id.Render(string(host.TenantID)),
			" ",
			stateStyle(string(host.Status), s).Render(string(host.Status)),
			" ",
			s.meta.Render(shortID(host.ID)),
		)
		if host.Address != "" {
			line += " " + s.meta.Render(host.Address)
		}
		parts = append(parts, line)
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func stateStyle(state string, s styles) lipgloss.Style {
	switch state {
	case string(domain.SessionReady), string(domain.HostRunning):
		return s.ok
	case string(domain.SessionExecuting), string(domain.SessionStarting):
		return s.busy
	default:
		return s.warning
	}
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

func formatAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(math.Max(0, d.Seconds())))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}

func renderProgressBar(usedPercent float64, width int, s styles) string {
	if width <= 0 {
		return ""
	}

	filled := int(math.Round(float64(width) * clampPercent(usedPercent) / 100.0))
	if filled > width {
		filled = width
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		s.barFill.Render(strings.Repeat("=", filled)),
		s.barEmpty.Render(strings.Repeat("-", width-filled)),
		s.barBracket.Render("]"),
	)
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func interpolateColor(value, min, max float64) lipgloss.Color {
	if max == min {
		return lipgloss.Color("255")
	}

	normalized := (value - min) / (max - min)
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}

	// 240 is the faded end of the greyscale ramp, 255 the brightest.
	colorCode := int(240.0 + 15.0*normalized)
	return lipgloss.Color(fmt.Sprintf("%d", colorCode))
}
