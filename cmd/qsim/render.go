package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/theapemachine/qsim"
)

const barWidth = 40

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).MarginBottom(1)
	keyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).PaddingRight(2)
	countStyle = lipgloss.NewStyle().Width(8).Align(lipgloss.Right).PaddingRight(2)
	barStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func renderHistogram(title string, h *qsim.Histogram) string {
	counts := h.Strings()
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	total := h.Total()
	lines := []string{titleStyle.Render(title)}
	for _, key := range keys {
		n := counts[key]
		width := 0
		if total > 0 {
			width = n * barWidth / total
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top,
			keyStyle.Render(key),
			countStyle.Render(fmt.Sprint(n)),
			barStyle.Render(strings.Repeat("█", width)),
			mutedStyle.Render(fmt.Sprintf(" %.4f", float64(n)/float64(max(total, 1)))),
		))
	}
	lines = append(lines, mutedStyle.Render(fmt.Sprintf("%d shots", total)))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderMetrics(m *qsim.Metrics) string {
	snapshot := m.ExportMetrics()
	keys := make([]string, 0, len(snapshot))
	for key := range snapshot {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	lines := []string{titleStyle.Render("metrics")}
	for _, key := range keys {
		lines = append(lines, keyStyle.Width(16).Render(key)+fmt.Sprint(snapshot[key]))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
