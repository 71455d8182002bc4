package status

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bnema/repostctl/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

type RenderOptions struct {
	Now time.Time
	// CacheTTL is the freshness window of a repost cache entry.
	CacheTTL time.Duration
}

func renderView(statuses []domain.AccountStatus, t tally, opts RenderOptions, s styles) string {
	header := fmt.Sprintf("accounts: %d  logged in: %d", t.accounts, t.loggedIn)
	if t.staleCaches > 0 {
		header += fmt.Sprintf("  stale caches: %d", t.staleCaches)
	}

	lines := []string{
		s.title.Render("Repost Accounts"),
		s.header.Render(header),
	}

	if len(statuses) == 0 {
		lines = append(lines, s.empty.Render("No accounts configured. Add one with `repostctl account add`."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, status := range statuses {
		lines = append(lines, s.section.Render(renderAccount(status, opts, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderAccount(status domain.AccountStatus, opts RenderOptions, s styles) string {
	title := lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.account.Render("@"+status.Username),
		" ",
		s.role.Render(fmt.Sprintf("(%s)", roleLabel(status.Role))),
	)

	parts := []string{
		title,
		s.detail.Render("session: ") + stateStyle(status.State, s).Render(stateLabel(status.State)),
	}
	if status.Role == domain.RoleAlt {
		parts = append(parts, cacheLine(status.Cache, opts, s))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func roleLabel(role domain.Role) string {
	if role == domain.RoleMain {
		return "main"
	}
	return "alt"
}

func stateLabel(state domain.SessionState) string {
	switch state {
	case domain.StateLoggedIn:
		return "logged in"
	case domain.StateAuthenticating:
		return "authenticating"
	case domain.StateChallengePending:
		return "waiting for verification code"
	default:
		return "logged out"
	}
}

func stateStyle(state domain.SessionState, s styles) lipgloss.Style {
	switch state {
	case domain.StateLoggedIn:
		return s.loggedIn
	case domain.StateAuthenticating, domain.StateChallengePending:
		return s.pending
	default:
		return s.loggedOut
	}
}

func cacheLine(summary *domain.CacheSummary, opts RenderOptions, s styles) string {
	label := s.cacheKey.Render("repost cache:")
	if summary == nil {
		return label + " " + s.empty.Render("not loaded")
	}

	items := fmt.Sprintf("%d items", summary.Items)
	if summary.Items == 1 {
		items = "1 item"
	}

	if summary.LastRefreshedAt.IsZero() {
		return lipgloss.JoinHorizontal(lipgloss.Top, label, " ", s.detail.Render(items), " ", s.warning.Render("[never refreshed]"))
	}

	line := lipgloss.JoinHorizontal(
		lipgloss.Top,
		label,
		" ",
		renderFreshnessBar(summary.LastRefreshedAt, opts, 20, s),
		" ",
		s.detail.Render(items),
		" ",
		s.header.Render(fmt.Sprintf("(%s)", formatRefreshed(summary.LastRefreshedAt, opts.Now))),
	)

	if isStale(summary, opts) {
		line += " " + s.warning.Render("[stale]")
	}

	return line
}

func isStale(summary *domain.CacheSummary, opts RenderOptions) bool {
	if summary == nil || summary.LastRefreshedAt.IsZero() || opts.Now.IsZero() || opts.CacheTTL <= 0 {
		return false
	}
	return opts.Now.Sub(summary.LastRefreshedAt) > opts.CacheTTL
}

// renderFreshnessBar fills with the share of the TTL still left.
func renderFreshnessBar(refreshedAt time.Time, opts RenderOptions, width int, s styles) string {
	if width <= 0 || opts.Now.IsZero() || opts.CacheTTL <= 0 {
		return ""
	}

	left := 1 - opts.Now.Sub(refreshedAt).Seconds()/opts.CacheTTL.Seconds()
	filled := int(math.Round(float64(width) * clampFraction(left)))
	empty := width - filled

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		s.barFill.Render(strings.Repeat("=", filled)),
		s.barEmpty.Render(strings.Repeat("-", empty)),
		s.barBracket.Render("]"),
	)
}

func clampFraction(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func formatRefreshed(refreshedAt, now time.Time) string {
	if now.IsZero() {
		return "refreshed " + refreshedAt.Format(time.RFC3339)
	}

	age := now.Sub(refreshedAt)
	switch {
	case age < time.Minute:
		return "refreshed just now"
	case age < time.Hour:
		minutes := int(age.Minutes())
		if minutes == 1 {
			return "refreshed 1 minute ago"
		}
		return fmt.Sprintf("refreshed %d minutes ago", minutes)
	default:
		return "refreshed at " + refreshedAt.Format("15:04 on 02 Jan")
	}
}
