package seed

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/utils"
)

// Preset is a predefined habit that starts on the day it is added.
type Preset struct {
	Key         string
	Name        string
	Periodicity models.Periodicity
	// Days to the target date; 0 means no target.
	Days int
}

var Presets = []Preset{
	{Key: "water", Name: "Drink 2 liters of water", Periodicity: models.PeriodicityDaily, Days: 30},
	{Key: "read", Name: "Read 20 pages", Periodicity: models.PeriodicityDaily, Days: 30},
	{Key: "meditate", Name: "Meditate for 10 minutes", Periodicity: models.PeriodicityDaily, Days: 30},
	{Key: "nail-biting", Name: "Nail biting", Periodicity: models.PeriodicityDaily, Days: 30},
	{Key: "run", Name: "Go for a long run", Periodicity: models.PeriodicityWeekly, Days: 90},
	{Key: "family", Name: "Call family", Periodicity: models.PeriodicityWeekly},
}

// LookupPreset finds a preset by key or by name, ignoring case.
func LookupPreset(name string) (Preset, error) {
	name = strings.TrimSpace(name)
	for _, p := range Presets {
		if strings.EqualFold(p.Key, name) || strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	return Preset{}, fmt.Errorf("%w: unknown preset %q", errors.ErrInvalidHabit, name)
}

// Target returns the preset's target date counted from today, or nil.
func (p Preset) Target(today time.Time) *time.Time {
	if p.Days <= 0 {
		return nil
	}
	t := utils.AddDays(today, p.Days)
	return &t
}
