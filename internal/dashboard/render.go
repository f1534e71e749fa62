package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/cleared-dev/spendmigrate/internal/migrationlog"
)

// Palette colors, Flexoki dark.
var (
	colorBorder    = lipgloss.Color("#403E3C")
	colorTextDim   = lipgloss.Color("#575653")
	colorTextMuted = lipgloss.Color("#878580")
	colorText      = lipgloss.Color("#FFFCF0")
	colorAccent    = lipgloss.Color("#3AA99F")
	colorGreen     = lipgloss.Color("#879A39")
	colorOrange    = lipgloss.Color("#DA702C")
	colorRed       = lipgloss.Color("#D14D41")
)

const (
	defaultWidth = 80
	minWidth     = 40
)

// Card is one metric card.
type Card struct {
	Label string
	Value string
	Delta string
}

// Render draws the whole status view for v.
func Render(v ViewState) string {
	width := v.Width
	if width <= 0 {
		width = defaultWidth
	}
	if width < minWidth {
		width = minWidth
	}

	title := lipgloss.NewStyle().Foreground(colorAccent).Bold(true).
		Render("Spend profile migration")
	if v.Workspace != "" {
		title += lipgloss.NewStyle().Foreground(colorTextMuted).Render("  " + v.Workspace)
	}

	cards := MetricCardRow(Cards(v), width)

	values := make([]float64, len(v.Daily))
	total := 0
	for i, d := range v.Daily {
		values[i] = float64(d.Count)
		total += d.Count
	}
	trendBody := Sparkline(values, colorGreen)
	if len(v.Daily) > 0 {
		trendBody += "\n" + lipgloss.NewStyle().Foreground(colorTextDim).Render(
			fmt.Sprintf("%d in the last %d days", total, len(v.Daily)))
	}
	trend := ContentCard("Migrated per day", trendBody, width)

	feed := ContentCard("Recent activity", ActivityFeed(v.Recent, CardInnerWidth(width)), width)

	return lipgloss.JoinVertical(lipgloss.Left, title, cards, trend, feed)
}

// Cards returns the metric cards for v.
func Cards(v ViewState) []Card {
	progress := ""
	if v.Total > 0 {
		progress = fmt.Sprintf("%d%% done", v.Migrated*100/v.Total)
	}
	invalid := ""
	if v.Invalid > 0 {
		invalid = fmt.Sprintf("%d invalid", v.Invalid)
	}
	return []Card{
		{Label: "Profiles", Value: fmt.Sprint(v.Total), Delta: invalid},
		{Label: "Legacy", Value: fmt.Sprint(v.Legacy)},
		{Label: "Migrated", Value: fmt.Sprint(v.Migrated), Delta: progress},
		{Label: "Clarifications", Value: fmt.Sprint(v.Pending), Delta: fmt.Sprintf("%d resolved", v.Resolved)},
	}
}

// LayoutRow distributes totalWidth into n widths that sum to exactly totalWidth.
// The first widths absorb the remainder.
func LayoutRow(totalWidth, n int) []int {
	if n <= 0 {
		return nil
	}
	base := totalWidth / n
	remainder := totalWidth % n
	widths := make([]int, n)
	for i := range widths {
		widths[i] = base
		if i < remainder {
			widths[i]++
		}
	}
	return widths
}

// MetricCard renders a bordered card with a label, a value and an optional
// delta line. outerWidth includes the border.
func MetricCard(c Card, outerWidth int) string {
	contentWidth := outerWidth - 2
	if contentWidth < 10 {
		contentWidth = 10
	}

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Width(contentWidth).
		Padding(0, 1)

	content := lipgloss.NewStyle().Foreground(colorTextMuted).Render(c.Label) + "\n" +
		lipgloss.NewStyle().Foreground(colorText).Bold(true).Render(c.Value)
	if c.Delta != "" {
		content += "\n" + lipgloss.NewStyle().Foreground(colorTextDim).Render(c.Delta)
	}
	return cardStyle.Render(content)
}

// MetricCardRow renders cards side by side across totalWidth.
func MetricCardRow(cards []Card, totalWidth int) string {
	if len(cards) == 0 {
		return ""
	}
	widths := LayoutRow(totalWidth, len(cards))
	rendered := make([]string, len(cards))
	for i, c := range cards {
		rendered[i] = MetricCard(c, widths[i])
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

// ContentCard renders a bordered card with an optional title.
func ContentCard(title, body string, outerWidth int) string {
	contentWidth := outerWidth - 2
	if contentWidth < 10 {
		contentWidth = 10
	}
	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Width(contentWidth).
		Padding(0, 1)

	content := ""
	if title != "" {
		content = lipgloss.NewStyle().Foreground(colorTextMuted).Bold(true).Render(title) + "\n"
	}
	return cardStyle.Render(content + body)
}

// CardInnerWidth is the usable text width inside a ContentCard.
func CardInnerWidth(outerWidth int) int {
	w := outerWidth - 4 // 2 border + 2 padding
	if w < 10 {
		w = 10
	}
	return w
}

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders values as unicode block characters scaled to the peak.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	peak := values[0]
	for _, v := range values[1:] {
		if v > peak {
			peak = v
		}
	}
	if peak == 0 {
		peak = 1
	}

	var buf strings.Builder
	buf.Grow(len(values) * 3)
	for _, v := range values {
		idx := int(v / peak * float64(len(sparkBlocks)-1))
		idx = max(0, min(idx, len(sparkBlocks)-1))
		buf.WriteRune(sparkBlocks[idx])
	}
	return lipgloss.NewStyle().Foreground(color).Render(buf.String())
}

// ActivityFeed lists log entries one per line, newest first, cut to width.
func ActivityFeed(entries []migrationlog.Entry, width int) string {
	if len(entries) == 0 {
		return lipgloss.NewStyle().Foreground(colorTextDim).Render("No activity yet")
	}
	lines := make([]string, len(entries))
	for i, e := range entries {
		line := fmt.Sprintf("%s  %-10s %-24s %s",
			e.Timestamp.UTC().Format("01-02 15:04"), e.UserID, e.Action, e.Details)
		lines[i] = lipgloss.NewStyle().Foreground(actionColor(e.Action)).Render(truncate(line, width))
	}
	return strings.Join(lines, "\n")
}

func actionColor(a migrationlog.Action) lipgloss.Color {
	switch a {
	case migrationlog.ActionMigrated, migrationlog.ActionResolved:
		return colorGreen
	case migrationlog.ActionClarificationRequested:
		return colorOrange
	case migrationlog.ActionInvalid:
		return colorRed
	default:
		return colorTextMuted
	}
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "…"
}
