package status

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bnema/orca/internal/application"
	"github.com/bnema/orca/internal/domain"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderMachineWithSessionsAndHosts(t *testing.T) {
	now := time.Date(2026, 2, 14, 11, 0, 0, 0, time.UTC)

	output, err := Render(application.Status{
		Machine:     domain.MachineRecord{MachineID: "machine-a", Address: "https://a.example.com"},
		MaxSessions: 4,
		Sessions: []domain.Session{
			{ID: "sess-1", State: domain.SessionReady, LastActivity: now.Add(-90 * time.Second)},
			{ID: "sess-2", State: domain.SessionExecuting, LastActivity: now.Add(-3 * time.Hour)},
		},
		Hosts: []domain.HostState{
			{ID: "0123456789abcdef", TenantID: "tenant-a", Status: domain.HostRunning, Address: "172.17.0.3"},
		},
	}, RenderOptions{Now: now, IdleAfter: time.Hour})

	require.NoError(t, err)
	assert.Contains(t, output, "Machine machine-a")
	assert.Contains(t, output, "https://a.example.com")
	assert.Contains(t, output, "2/4 sessions")
	assert.Contains(t, output, "[")
	assert.Contains(t, output, "sessions: 2")
	assert.Contains(t, output, "sess-1")
	assert.Contains(t, output, "(active 1m ago)")
	assert.Contains(t, output, "(active 3h00m ago)")
	assert.Contains(t, output, "[idle]")
	assert.Contains(t, output, "hosts: 1")
	assert.Contains(t, output, "tenant-a")
	assert.Contains(t, output, "0123456789ab")
	assert.NotContains(t, output, "0123456789abcdef")
	assert.NotContains(t, output, "[full]")
}

func TestRenderEmptyMachine(t *testing.T) {
	output, err := Render(application.Status{
		Machine:     domain.MachineRecord{MachineID: "machine-a"},
		MaxSessions: 2,
	}, RenderOptions{})

	require.NoError(t, err)
	assert.Contains(t, output, "0/2 sessions")
	assert.Contains(t, output, "No live sessions.")
	assert.Contains(t, output, "No tenant hosts.")
}

func TestRenderFullMachineAndEngineFailure(t *testing.T) {
	output, err := Render(application.Status{
		Machine:     domain.MachineRecord{MachineID: "machine-a"},
		MaxSessions: 1,
		Sessions:    []domain.Session{{ID: "sess-1", State: domain.SessionReady}},
		HostsErr:    errors.New("connect to docker"),
	}, RenderOptions{})

	require.NoError(t, err)
	assert.Contains(t, output, "[full]")
	assert.Contains(t, output, "engine unavailable: connect to docker")
}

func TestRenderClipsToWidth(t *testing.T) {
	status := application.Status{
		Machine:     domain.MachineRecord{MachineID: "machine-a", Address: "https://a-very-long-hostname.example.com"},
		MaxSessions: 4,
		Sessions:    []domain.Session{{ID: "sess-0123456789abcdef0123456789", State: domain.SessionReady}},
	}

	output, err := Render(status, RenderOptions{Width: 20})
	require.NoError(t, err)
	for _, line := range strings.Split(output, "\n") {
		assert.LessOrEqual(t, lipgloss.Width(line), 20, line)
	}
	assert.Contains(t, output, "Machine machine-a")

	unclipped, err := Render(status, RenderOptions{})
	require.NoError(t, err)
	assert.Contains(t, unclipped, "https://a-very-long-hostname.example.com")
}

func TestRenderRejectsNegativeWidth(t *testing.T) {
	_, err := Render(application.Status{}, RenderOptions{Width: -1})
	require.ErrorIs(t, err, ErrInvalidWidth)
}

func TestFormatAge(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{in: -time.Second, want: "0s"},
		{in: 42 * time.Second, want: "42s"},
		{in: 5 * time.Minute, want: "5m"},
		{in: 2*time.Hour + 5*time.Minute, want: "2h05m"},
		{in: 50 * time.Hour, want: "2d"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatAge(tt.in))
	}
}

func TestRenderProgressBarWidth(t *testing.T) {
	s := newStyles()
	assert.Equal(t, "[==--]", renderProgressBar(50, 4, s))
	assert.Equal(t, "[====]", renderProgressBar(150, 4, s))
	assert.Empty(t, renderProgressBar(50, 0, s))
}
