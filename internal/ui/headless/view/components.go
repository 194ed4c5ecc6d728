package view

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"asa-manager/internal/ui/headless/health"
)

const (
	statusIdle = iota
	statusStarting
	statusMonitoring
	statusStopping
	statusError
)

const (
	minComponentWidth = 1
	scrollbarMinThumb = 0
)

func RenderStatus(status string, kind int) string {
	switch kind {
	case statusMonitoring:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(status)
	case statusStarting:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Render(status)
	case statusStopping:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Render(status)
	case statusError:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Render(status)
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render(status)
	}
}

func ServerDotStyle(kind health.Kind) (string, lipgloss.Style) {
	dot := "●"
	switch kind {
	case health.Active:
		return dot, lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	case health.Warn:
		return dot, lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	case health.Stale:
		return dot, lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	case health.Disabled:
		return "○", lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	default:
		return dot, lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	}
}

func WithScrollBar(content string, width int, height int, percent float64) string {
	if height <= 0 {
		return content
	}
	width = max(width, minComponentWidth)
	lines := strings.Split(content, "\n")
	if len(lines) < height {
		pad := make([]string, 0, height-len(lines))
		for range height - len(lines) {
			pad = append(pad, "")
		}
		lines = append(lines, pad...)
	}
	if len(lines) > height {
		lines = lines[:height]
	}

	thumb := int(percent * float64(height-1))
	thumb = max(thumb, scrollbarMinThumb)
	if thumb >= height {
		thumb = height - 1
	}
	barInactive := lipgloss.NewStyle().Foreground(lipgloss.Color("238")).Render("┊")
	barActive := lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Render("▯")

	out := make([]string, 0, height)
	for i := range height {
		bar := barInactive
		if i == thumb {
			bar = barActive
		}
		text := ansi.Cut(lines[i], 0, width)
		if pad := width - ansi.StringWidth(text); pad > 0 {
			text += strings.Repeat(" ", pad)
		}
		out = append(out, text+" "+bar)
	}
	return strings.Join(out, "\n")
}
