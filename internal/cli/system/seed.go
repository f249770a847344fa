package system

import (
	stderrors "errors"
	"fmt"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/seed"
)

type SeedCmd struct {
	File  string `arg:"" optional:"" help:"JSON or YAML seed file. Defaults to the built-in sample habits." type:"path"`
	Force bool   `help:"Import even if the store already contains habits."`
}

func (c *SeedCmd) Run(ctx *cli.Context) error {
	var (
		doc *seed.Document
		err error
	)
	if c.File == "" {
		doc, err = seed.LoadDefaults(ctx.Tracker.Today())
	} else {
		doc, err = seed.Load(c.File)
	}
	if err != nil {
		return err
	}

	summary, err := seed.Import(ctx.Context(), ctx.Store, doc, c.Force)
	if stderrors.Is(err, seed.ErrStoreNotEmpty) {
		return fmt.Errorf("%w (use --force to import anyway)", err)
	}
	if err != nil {
		return err
	}

	ctx.Printf("✓ Imported %s\n", summary)
	return nil
}
