package habits

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/habitual/internal/analytics"
	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/seed"
	"github.com/julianstephens/habitual/internal/utils"
)

type HabitCmd struct {
	Add      HabitAddCmd      `cmd:"" help:"Add a new habit."`
	Presets  HabitPresetsCmd  `cmd:"" help:"List predefined habits for 'habit add --preset'."`
	List     HabitListCmd     `cmd:"" help:"List habits."`
	Show     HabitShowCmd     `cmd:"" help:"Show a habit's state and streak window."`
	Checkin  HabitCheckinCmd  `cmd:"" help:"Check in a habit for today."`
	Complete HabitCompleteCmd `cmd:"" help:"Complete a habit permanently."`
}

type HabitAddCmd struct {
	Name        string `arg:"" optional:"" help:"Habit name. May be omitted when --preset is given."`
	Preset      string `help:"Start from a predefined habit (see 'habitual habit presets')."`
	Periodicity string `help:"How often to check in (daily or weekly). Defaults to daily, or the preset's periodicity." short:"p"`
	Target      string `help:"Target date in YYYY-MM-DD format." xor:"target"`
	Days        int    `help:"Target date as a number of days from today." xor:"target"`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	today := ctx.Tracker.Today()

	name := c.Name
	periodicity := models.PeriodicityDaily
	var target *time.Time
	if c.Preset != "" {
		preset, err := seed.LookupPreset(c.Preset)
		if err != nil {
			return err
		}
		if name == "" {
			name = preset.Name
		}
		periodicity = preset.Periodicity
		target = preset.Target(today)
	} else if name == "" {
		return fmt.Errorf("%w: a habit name or --preset is required", errors.ErrInvalidHabit)
	}

	if c.Periodicity != "" {
		p, err := models.ParsePeriodicity(c.Periodicity)
		if err != nil {
			return err
		}
		periodicity = p
	}

	if c.Target != "" || c.Days != 0 {
		t, err := c.targetDate(today)
		if err != nil {
			return err
		}
		target = t
	}

	habit, err := ctx.Tracker.Create(ctx.Context(), name, periodicity, target)
	if err != nil {
		return err
	}

	ctx.Printf("Added %s habit %q (%s)\n", habit.Periodicity, habit.Name, cli.ShortID(habit.ID))
	if habit.HasTarget() {
		ctx.Printf("  Target: %s\n", utils.FormatDate(habit.TargetDate))
	} else {
		ctx.Println("  Target: none")
	}
	return nil
}

func (c *HabitAddCmd) targetDate(today time.Time) (*time.Time, error) {
	switch {
	case c.Target != "":
		target, err := utils.ParseDate(c.Target)
		if err != nil {
			return nil, err
		}
		return &target, nil
	case c.Days < 0:
		return nil, fmt.Errorf("--days must not be negative")
	case c.Days > 0:
		target := utils.AddDays(today, c.Days)
		return &target, nil
	default:
		return nil, nil
	}
}

type HabitPresetsCmd struct{}

func (c *HabitPresetsCmd) Run(ctx *cli.Context) error {
	for _, p := range seed.Presets {
		target := "no target"
		if p.Days > 0 {
			target = fmt.Sprintf("%d days", p.Days)
		}
		ctx.Printf("%-12s %-26s %-7s %s\n", p.Key, p.Name, p.Periodicity, target)
	}
	return nil
}

type HabitListCmd struct {
	Completed bool `help:"List completed habits instead of ongoing ones."`
}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	statuses, err := ctx.Tracker.List(ctx.Context(), c.Completed)
	if err != nil {
		return err
	}

	if len(statuses) == 0 {
		if c.Completed {
			ctx.Println("No completed habits.")
		} else {
			ctx.Println("No ongoing habits. Add one with 'habitual habit add NAME'.")
		}
		return nil
	}

	for _, s := range statuses {
		ctx.Printf("%s  %-30s %-7s %-22s %s\n",
			cli.ShortID(s.Habit.ID), s.Habit.Name, s.Habit.Periodicity, cli.FormatState(s), describe(s))
	}
	return nil
}

type HabitShowCmd struct {
	ID string `arg:"" help:"Habit id or unique id prefix."`
}

func (c *HabitShowCmd) Run(ctx *cli.Context) error {
	id, err := ctx.ResolveID(c.ID)
	if err != nil {
		return err
	}

	s, err := ctx.Tracker.Get(ctx.Context(), id)
	if err != nil {
		return err
	}

	ctx.Printf("%s\n", s.Habit.Name)
	ctx.Printf("  ID:          %s\n", s.Habit.ID)
	ctx.Printf("  Periodicity: %s\n", s.Habit.Periodicity)
	ctx.Printf("  Created:     %s\n", utils.FormatDate(&s.Habit.CreatedAt))
	if s.Habit.HasTarget() {
		ctx.Printf("  Target:      %s\n", utils.FormatDate(s.Habit.TargetDate))
	} else {
		ctx.Println("  Target:      none")
	}
	ctx.Printf("  State:       %s\n", cli.FormatState(s))
	if s.Checkpoint != nil {
		ctx.Printf("  Window:      %s\n", cli.FormatWindow(s.Checkpoint))
		ctx.Printf("  Streak:      %d day(s)\n", analytics.OngoingStreakLength(s.Habit, *s.Checkpoint))
	}
	if s.Completion != nil {
		ctx.Printf("  Completed:   %s\n", utils.FormatDate(&s.Completion.CompletionDate))
		ctx.Printf("  Streak:      %d day(s)\n", analytics.TotalStreakLength(s.Habit, *s.Completion))
	}
	return nil
}

type HabitCheckinCmd struct {
	ID string `arg:"" help:"Habit id or unique id prefix."`
}

func (c *HabitCheckinCmd) Run(ctx *cli.Context) error {
	id, err := ctx.ResolveID(c.ID)
	if err != nil {
		return err
	}

	cp, err := ctx.Tracker.Checkin(ctx.Context(), id)
	if err != nil {
		return err
	}

	if cp.IsValidStreak {
		ctx.Printf("✓ Checked in. Window: %s\n", cli.FormatWindow(&cp))
	} else {
		ctx.Printf("⚠ Checked in outside the window; streak is broken. Window: %s\n", cli.FormatWindow(&cp))
	}
	return nil
}

type HabitCompleteCmd struct {
	ID string `arg:"" help:"Habit id or unique id prefix."`
}

func (c *HabitCompleteCmd) Run(ctx *cli.Context) error {
	id, err := ctx.ResolveID(c.ID)
	if err != nil {
		return err
	}

	completion, err := ctx.Tracker.Complete(ctx.Context(), id)
	if err != nil {
		return err
	}

	ctx.Printf("✓ Habit completed: %s on %s\n", completion.CompletionStatus, utils.FormatDate(&completion.CompletionDate))
	return nil
}

func describe(s models.HabitStatus) string {
	switch {
	case s.Completion != nil:
		return "completed " + utils.FormatDate(&s.Completion.CompletionDate)
	case s.Checkpoint != nil:
		return cli.FormatWindow(s.Checkpoint)
	default:
		return strings.ToLower(string(models.StateNew))
	}
}
