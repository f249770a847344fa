package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitual/internal/models"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case StateHabits:
		content = docStyle.Render(m.habits.View())
	case StateStats:
		content = docStyle.Render(m.viewStats())
	case StateAddHabit:
		content = docStyle.Render(m.form.View())
	case StateConfirmComplete:
		content = m.viewConfirmComplete()
	}

	parts := []string{m.viewTabs()}
	if m.warning != "" {
		parts = append(parts, bannerStyle.Render(m.warning))
	}
	parts = append(parts, content)
	if m.message != "" {
		parts = append(parts, m.message)
	}
	parts = append(parts, m.help.View(m))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) viewTabs() string {
	var tabs []string
	for i, title := range []string{"Habits", "Stats"} {
		if m.state == SessionState(i) || (i == 0 && m.state > StateStats) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, tabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewStats() string {
	r := m.report
	row := func(label, value string) string {
		return labelStyle.Render(label) + value
	}
	streak := func(n, population int) string {
		if population == 0 {
			return "-"
		}
		return fmt.Sprintf("%d day(s)", n)
	}

	lines := []string{
		row("Longest ongoing streak", streak(r.LongestOngoingStreak, r.CheckedInCount)),
		row("Longest total streak", streak(r.LongestTotalStreak, r.CompletedCount)),
		"",
		row("Ongoing habits", fmt.Sprint(r.OngoingCount)),
		row("  Daily", names(r.DailyHabits)),
		row("  Weekly", names(r.WeeklyHabits)),
		"",
		row("Completed habits", fmt.Sprint(r.CompletedCount)),
	}
	for _, s := range models.CompletionStatuses {
		lines = append(lines, row("  "+string(s), outcomeStyle(s).Render(fmt.Sprint(r.StatusCounts[s]))))
	}
	return strings.Join(lines, "\n")
}

func names(habits []models.Habit) string {
	if len(habits) == 0 {
		return "-"
	}
	out := make([]string, len(habits))
	for i, h := range habits {
		out[i] = h.Name
	}
	return strings.Join(out, ", ")
}

func (m Model) viewConfirmComplete() string {
	return lipgloss.Place(m.width, m.height-4,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render(fmt.Sprintf("Complete %q? This cannot be undone.", m.toComplete.Name)),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
