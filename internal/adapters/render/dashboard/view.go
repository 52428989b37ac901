package dashboard

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/ecofuelconnect/efc/internal/domain"
)

type RenderOptions struct {
	Now time.Time
	// StaleAfter marks a board as stale once FetchedAt is older than this.
	// Zero disables the marker.
	StaleAfter time.Duration
}

// Board is everything the dashboard shows from a single refresh.
type Board struct {
	Stats     domain.DashboardStats `json:"stats"`
	Activity  []domain.Activity     `json:"activity"`
	FetchedAt time.Time             `json:"fetchedAt"`
}

func BoardView(board Board, opts RenderOptions) string {
	return renderBoard(board, opts, newStyles())
}

func NotificationsView(notifications []domain.Notification, opts RenderOptions) string {
	return renderNotifications(notifications, opts, newStyles())
}

func renderBoard(board Board, opts RenderOptions, s styles) string {
	lines := []string{s.title.Render("EcoFuelConnect Dashboard")}
	if header := freshnessLine(board.FetchedAt, opts, s); header != "" {
		lines = append(lines, header)
	}

	stats := board.Stats
	counts := []string{
		statLine("users", s, count(stats.TotalUsers, s)),
		statLine("suppliers", s, count(stats.TotalSuppliers, s)),
		statLine("producers", s, count(stats.TotalProducers, s)),
		statLine("schools", s, count(stats.TotalSchools, s)),
	}
	lines = append(lines, s.section.Render(lipgloss.JoinVertical(lipgloss.Left, counts...)))

	totals := []string{
		statLine("waste", s, quantity(stats.TotalWasteKg, "kg collected", s)),
		statLine("fuel", s, quantity(stats.TotalFuelProduced, "kg produced", s)),
		statLine("requests", s, requestsLine(stats, s)),
	}
	if stats.PendingEntries > 0 {
		totals = append(totals, statLine("to verify", s, count(stats.PendingEntries, s)))
	}
	if stats.CoinsInCirculation > 0 {
		totals = append(totals, statLine("coins", s, count(stats.CoinsInCirculation, s)+" "+s.unit.Render("in circulation")))
	}
	if stats.CO2SavedKg > 0 {
		totals = append(totals, statLine("CO2 saved", s, quantity(stats.CO2SavedKg, "kg", s)))
	}
	lines = append(lines, s.section.Render(lipgloss.JoinVertical(lipgloss.Left, totals...)))

	lines = append(lines, s.section.Render(renderActivity(board.Activity, s)))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func freshnessLine(fetchedAt time.Time, opts RenderOptions, s styles) string {
	if fetchedAt.IsZero() {
		return ""
	}

	line := s.header.Render("updated " + fetchedAt.Local().Format("15:04:05"))
	if isStale(fetchedAt, opts) {
		line += " " + s.warning.Render("[stale]")
	}

	return line
}

func isStale(fetchedAt time.Time, opts RenderOptions) bool {
	if opts.Now.IsZero() || opts.StaleAfter <= 0 || fetchedAt.IsZero() {
		return false
	}

	return opts.Now.Sub(fetchedAt) > opts.StaleAfter
}

func statLine(label string, s styles, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, s.label.Render(label), value)
}

func count(value int64, s styles) string {
	return s.value.Render(domain.CompactNumber(value))
}

func quantity(value float64, unit string, s styles) string {
	return s.value.Render(domain.CompactNumber(int64(math.Round(value)))) + " " + s.unit.Render(unit)
}

func requestsLine(stats domain.DashboardStats, s styles) string {
	total := stats.PendingRequests + stats.CompletedRequests
	if total == 0 {
		return s.empty.Render("no fuel requests yet")
	}

	fulfilled := float64(stats.CompletedRequests) / float64(total) * 100
	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		renderProgressBar(fulfilled, 20, s),
		" ",
		s.value.Render(fmt.Sprintf("%.0f%% fulfilled", fulfilled)),
		" ",
		s.unit.Render(fmt.Sprintf("(%d pending, %d completed)", stats.PendingRequests, stats.CompletedRequests)),
	)
}

func renderActivity(activities []domain.Activity, s styles) string {
	lines := []string{s.header.Render("Recent activity")}
	if len(activities) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, append(lines, s.empty.Render("No recent activity."))...)
	}

	for _, activity := range activities {
		entry := fmt.Sprintf("%s  %-14s %s", formatWhen(activity.CreatedAt), activity.Type, activity.Description)
		if activity.Actor != "" {
			entry += " " + s.unit.Render("by "+activity.Actor)
		}
		lines = append(lines, s.activity.Render(entry))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderNotifications(notifications []domain.Notification, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Notifications"),
		s.header.Render(fmt.Sprintf("unread: %d of %d", domain.UnreadCount(notifications), len(notifications))),
	}

	if len(notifications) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, append(lines, s.empty.Render("You're all caught up."))...)
	}

	for _, n := range notifications {
		marker := s.read.Render("○")
		title := s.read.Render(n.Title)
		if !n.Read {
			marker = s.unread.Render("●")
			title = s.unread.Render(n.Title)
		}

		heading := fmt.Sprintf("%s %s %s", marker, title, s.unit.Render("("+formatRelative(n.CreatedAt, opts.Now)+")"))
		block := []string{heading}
		if message := strings.TrimSpace(n.Message); message != "" {
			block = append(block, "  "+s.activity.Render(message))
		}
		lines = append(lines, lipgloss.JoinVertical(lipgloss.Left, block...))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderProgressBar(percent float64, width int, s styles) string {
	if width <= 0 {
		return ""
	}

	filled := int(math.Round(float64(width) * clampPercent(percent) / 100))
	filled = min(max(filled, 0), width)

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

func formatWhen(at time.Time) string {
	if at.IsZero() {
		return "--:--"
	}

	return at.Local().Format("02 Jan 15:04")
}

func formatRelative(at, now time.Time) string {
	if at.IsZero() {
		return "unknown"
	}
	if now.IsZero() || at.After(now) {
		return formatWhen(at)
	}

	elapsed := now.Sub(at)
	switch {
	case elapsed < time.Minute:
		return "just now"
	case elapsed < time.Hour:
		return plural(int(elapsed.Minutes()), "minute") + " ago"
	case elapsed < 24*time.Hour:
		return plural(int(elapsed.Hours()), "hour") + " ago"
	default:
		return plural(int(elapsed.Hours()/24), "day") + " ago"
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}

	return fmt.Sprintf("%d %ss", n, unit)
}
