package streaks

import (
	"strings"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/models"
)

type AnalyzeCmd struct{}

func (c *AnalyzeCmd) Run(ctx *cli.Context) error {
	report, err := ctx.Tracker.Analyze(ctx.Context())
	if err != nil {
		return err
	}

	ctx.Println("Streaks")
	switch {
	case report.CheckedInCount > 0:
		ctx.Printf("  Longest ongoing streak: %d day(s)\n", report.LongestOngoingStreak)
	case report.OngoingCount > 0:
		ctx.Println("  Longest ongoing streak: - (no check-ins yet)")
	default:
		ctx.Println("  Longest ongoing streak: - (no ongoing habits)")
	}
	if report.CompletedCount > 0 {
		ctx.Printf("  Longest total streak:   %d day(s)\n", report.LongestTotalStreak)
	} else {
		ctx.Println("  Longest total streak:   - (no completed habits)")
	}

	ctx.Println()
	ctx.Printf("Ongoing habits (%d)\n", report.OngoingCount)
	ctx.Printf("  Daily:  %s\n", names(report.DailyHabits))
	ctx.Printf("  Weekly: %s\n", names(report.WeeklyHabits))

	ctx.Println()
	ctx.Printf("Completed habits (%d)\n", report.CompletedCount)
	for _, s := range models.CompletionStatuses {
		ctx.Printf("  %-10s %d\n", s, report.StatusCounts[s])
	}
	return nil
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
