// Package clitest builds command contexts backed by a temp SQLite store.
package clitest

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/config"
	"github.com/julianstephens/habitual/internal/lifecycle"
	"github.com/julianstephens/habitual/internal/storage/storagetest"
)

// Env is a command context whose output and clock are controlled by the test
type Env struct {
	*cli.Context
	Out   *bytes.Buffer
	Today time.Time
}

// New returns an Env whose tracker reports start as today until Today is changed
func New(t *testing.T, start time.Time) *Env {
	t.Helper()

	store := storagetest.NewSQLiteStore(t)
	cfg := config.Default()
	cfg.Database.Path = store.GetConfigPath()

	env := &Env{Out: &bytes.Buffer{}, Today: start}
	env.Context = &cli.Context{
		Ctx:    context.Background(),
		Store:  store,
		Config: &cfg,
		Out:    env.Out,
	}
	env.Tracker = lifecycle.New(store, func() time.Time { return env.Today }, time.UTC)
	return env
}

// Output returns and clears everything written so far
func (e *Env) Output() string {
	s := e.Out.String()
	e.Out.Reset()
	return s
}
