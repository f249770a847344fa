// Package seed imports habits, checkpoints and completions from JSON or YAML documents.
package seed

import (
	"context"
	_ "embed"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/utils"
)

//go:embed default.json
var defaultDocument []byte

// ErrStoreNotEmpty is returned when importing into a store that already has habits
var ErrStoreNotEmpty = stderrors.New("store already contains habits")

// ID accepts both numeric and string identifiers
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %s", data)
	}
	*id = ID(n.String())
	return nil
}

func (id *ID) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: id must be a scalar", node.Line)
	}
	*id = ID(node.Value)
	return nil
}

type HabitRecord struct {
	ID          ID     `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Periodicity string `json:"periodicity" yaml:"periodicity"`
	CreatedAt   string `json:"created_at" yaml:"created_at"`
	TargetDate  string `json:"target_date,omitempty" yaml:"target_date,omitempty"`
}

type CompletionRecord struct {
	HabitID          ID     `json:"habit_id" yaml:"habit_id"`
	CompletionStatus string `json:"completion_status" yaml:"completion_status"`
	CompletionDate   string `json:"completion_date" yaml:"completion_date"`
}

type CheckpointRecord struct {
	HabitID           ID     `json:"habit_id" yaml:"habit_id"`
	LastCheckpoint    string `json:"last_checkpoint" yaml:"last_checkpoint"`
	CurrentCheckpoint string `json:"current_checkpoint" yaml:"current_checkpoint"`
	NextCheckpoint    string `json:"next_checkpoint,omitempty" yaml:"next_checkpoint,omitempty"`
	IsValidStreak     bool   `json:"is_valid_streak" yaml:"is_valid_streak"`
}

// Document is a seed file
type Document struct {
	Habits      []HabitRecord      `json:"habits" yaml:"habits"`
	Completions []CompletionRecord `json:"completions" yaml:"completions"`
	Checkpoints []CheckpointRecord `json:"checkpoints" yaml:"checkpoints"`
}

// Dataset is a validated document converted to models
type Dataset struct {
	Habits      []models.Habit
	Completions []models.Completion
	Checkpoints []models.Checkpoint
}

// Load reads a seed file, choosing the decoder by extension
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ParseJSON(data)
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return nil, fmt.Errorf("unsupported seed file extension %q (expected .json, .yaml or .yml)", filepath.Ext(path))
	}
}

// LoadDefaults returns the bundled sample document with its dates moved so
// the most recent check-in falls on today.
func LoadDefaults(today time.Time) (*Document, error) {
	doc, err := ParseJSON(defaultDocument)
	if err != nil {
		return nil, err
	}
	if err := doc.Rebase(today); err != nil {
		return nil, err
	}
	return doc, nil
}

// Rebase shifts every date in the document by the same number of days so the
// latest current_checkpoint lands on today. Documents without checkpoints are
// anchored on their latest created_at.
func (d *Document) Rebase(today time.Time) error {
	var dates []*string
	for i := range d.Habits {
		dates = append(dates, &d.Habits[i].CreatedAt, &d.Habits[i].TargetDate)
	}
	for i := range d.Completions {
		dates = append(dates, &d.Completions[i].CompletionDate)
	}
	for i := range d.Checkpoints {
		cp := &d.Checkpoints[i]
		dates = append(dates, &cp.LastCheckpoint, &cp.CurrentCheckpoint, &cp.NextCheckpoint)
	}

	var anchors []string
	for _, cp := range d.Checkpoints {
		anchors = append(anchors, cp.CurrentCheckpoint)
	}
	if len(anchors) == 0 {
		for _, h := range d.Habits {
			anchors = append(anchors, h.CreatedAt)
		}
	}
	var anchor time.Time
	for _, a := range anchors {
		t, err := utils.ParseDate(a)
		if err != nil {
			return invalid("cannot rebase date %q: %v", a, err)
		}
		if t.After(anchor) {
			anchor = t
		}
	}
	if anchor.IsZero() {
		return nil
	}

	shift := utils.DaysBetween(anchor, utils.TruncateDay(today))
	for _, p := range dates {
		if strings.TrimSpace(*p) == "" {
			continue
		}
		t, err := utils.ParseDate(*p)
		if err != nil {
			return invalid("cannot rebase date %q: %v", *p, err)
		}
		*p = utils.AddDays(t, shift).Format(constants.DateFormat)
	}
	return nil
}

func ParseJSON(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse JSON seed: %w", err)
	}
	return &doc, nil
}

func ParseYAML(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML seed: %w", err)
	}
	return &doc, nil
}

// Validate checks every record and the relationships between them.
// Violations are reported as ErrInvalidHabit.
func (d *Document) Validate() (*Dataset, error) {
	ds := &Dataset{}
	habits := make(map[string]bool, len(d.Habits))

	for i, r := range d.Habits {
		h, err := r.toModel()
		if err != nil {
			return nil, invalid("habit #%d: %v", i+1, err)
		}
		if habits[h.ID] {
			return nil, invalid("habit #%d: duplicate id %q", i+1, h.ID)
		}
		habits[h.ID] = true
		ds.Habits = append(ds.Habits, h)
	}

	completed := make(map[string]bool, len(d.Completions))
	for i, r := range d.Completions {
		c, err := r.toModel()
		if err != nil {
			return nil, invalid("completion #%d: %v", i+1, err)
		}
		if !habits[c.HabitID] {
			return nil, invalid("completion #%d: unknown habit %q", i+1, c.HabitID)
		}
		if completed[c.HabitID] {
			return nil, invalid("completion #%d: habit %q already has a completion", i+1, c.HabitID)
		}
		completed[c.HabitID] = true
		ds.Completions = append(ds.Completions, c)
	}

	checkpointed := make(map[string]bool, len(d.Checkpoints))
	for i, r := range d.Checkpoints {
		cp, err := r.toModel()
		if err != nil {
			return nil, invalid("checkpoint #%d: %v", i+1, err)
		}
		switch {
		case !habits[cp.HabitID]:
			return nil, invalid("checkpoint #%d: unknown habit %q", i+1, cp.HabitID)
		case completed[cp.HabitID]:
			return nil, invalid("checkpoint #%d: habit %q is completed and cannot have a checkpoint", i+1, cp.HabitID)
		case checkpointed[cp.HabitID]:
			return nil, invalid("checkpoint #%d: habit %q already has a checkpoint", i+1, cp.HabitID)
		}
		checkpointed[cp.HabitID] = true
		ds.Checkpoints = append(ds.Checkpoints, cp)
	}

	return ds, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errors.ErrInvalidHabit, fmt.Sprintf(format, args...))
}

func (r HabitRecord) toModel() (models.Habit, error) {
	if r.ID == "" {
		return models.Habit{}, fmt.Errorf("missing id")
	}
	if strings.TrimSpace(r.Name) == "" {
		return models.Habit{}, fmt.Errorf("missing name")
	}
	p, err := models.ParsePeriodicity(r.Periodicity)
	if err != nil {
		return models.Habit{}, err
	}
	if r.CreatedAt == "" {
		return models.Habit{}, fmt.Errorf("missing created_at")
	}
	created, err := utils.ParseDate(r.CreatedAt)
	if err != nil {
		return models.Habit{}, err
	}
	target, err := optionalDate(r.TargetDate)
	if err != nil {
		return models.Habit{}, err
	}
	if target != nil && target.Before(created) {
		return models.Habit{}, fmt.Errorf("target_date %s is before created_at %s", r.TargetDate, r.CreatedAt)
	}

	return models.Habit{
		ID:          string(r.ID),
		Name:        strings.TrimSpace(r.Name),
		Periodicity: p,
		CreatedAt:   created,
		TargetDate:  target,
	}, nil
}

func (r CompletionRecord) toModel() (models.Completion, error) {
	status, err := models.ParseCompletionStatus(r.CompletionStatus)
	if err != nil {
		return models.Completion{}, err
	}
	date, err := utils.ParseDate(r.CompletionDate)
	if err != nil {
		return models.Completion{}, err
	}
	return models.Completion{
		HabitID:          string(r.HabitID),
		CompletionStatus: status,
		CompletionDate:   date,
	}, nil
}

func (r CheckpointRecord) toModel() (models.Checkpoint, error) {
	last, err := utils.ParseDate(r.LastCheckpoint)
	if err != nil {
		return models.Checkpoint{}, err
	}
	current, err := utils.ParseDate(r.CurrentCheckpoint)
	if err != nil {
		return models.Checkpoint{}, err
	}
	if current.Before(last) {
		return models.Checkpoint{}, fmt.Errorf("current_checkpoint %s is before last_checkpoint %s", r.CurrentCheckpoint, r.LastCheckpoint)
	}
	next, err := optionalDate(r.NextCheckpoint)
	if err != nil {
		return models.Checkpoint{}, err
	}
	return models.Checkpoint{
		HabitID:           string(r.HabitID),
		LastCheckpoint:    last,
		CurrentCheckpoint: current,
		NextCheckpoint:    next,
		IsValidStreak:     r.IsValidStreak,
	}, nil
}

func optionalDate(s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := utils.ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Store is the subset of the Habit Store an import writes to
type Store interface {
	ListOngoingHabits(ctx context.Context) ([]models.Habit, error)
	ListCompletedHabits(ctx context.Context) ([]models.Habit, error)
	ImportRecords(ctx context.Context, habits []models.Habit, completions []models.Completion, checkpoints []models.Checkpoint) error
}

// Summary counts imported records
type Summary struct {
	Habits      int
	Completions int
	Checkpoints int
}

func (s Summary) String() string {
	return fmt.Sprintf("%d habits, %d completions, %d checkpoints", s.Habits, s.Completions, s.Checkpoints)
}

// Import validates the document and writes it in one transaction, so either
// every record is stored or none is. Unless force is set the store must be empty.
func Import(ctx context.Context, store Store, doc *Document, force bool) (Summary, error) {
	ds, err := doc.Validate()
	if err != nil {
		return Summary{}, err
	}

	if !force {
		empty, err := isEmpty(ctx, store)
		if err != nil {
			return Summary{}, err
		}
		if !empty {
			return Summary{}, ErrStoreNotEmpty
		}
	}

	if err := store.ImportRecords(ctx, ds.Habits, ds.Completions, ds.Checkpoints); err != nil {
		return Summary{}, fmt.Errorf("failed to import seed data: %w", err)
	}
	summary := Summary{
		Habits:      len(ds.Habits),
		Completions: len(ds.Completions),
		Checkpoints: len(ds.Checkpoints),
	}

	logger.Info("Imported seed data", "habits", summary.Habits, "completions", summary.Completions, "checkpoints", summary.Checkpoints)
	return summary, nil
}

func isEmpty(ctx context.Context, store Store) (bool, error) {
	ongoing, err := store.ListOngoingHabits(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to list habits: %w", err)
	}
	completed, err := store.ListCompletedHabits(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to list habits: %w", err)
	}
	return len(ongoing) == 0 && len(completed) == 0, nil
}
