package slogcustom

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestCustomHandler(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	log := slog.New(NewCustomHandler(&buf, slog.LevelInfo))

	log.Debug("hidden")
	assert.Empty(t, buf.String())

	log.With(slog.String("component", "session")).
		WithGroup("game").
		Info("started", slog.String("type", "QUIZ"), slog.Group("score", slog.Int("max", 45)))

	out := buf.String()
	assert.Contains(t, out, "INFO: started")
	assert.Contains(t, out, "component=session")
	assert.Contains(t, out, "game.type=QUIZ")
	assert.Contains(t, out, "game.score.max=45")
}

func TestCustomHandler_LevelVar(t *testing.T) {
	color.NoColor = true

	var (
		buf   bytes.Buffer
		level slog.LevelVar
	)
	level.Set(slog.LevelError)
	log := slog.New(NewCustomHandler(&buf, &level))

	log.Warn("skipped")
	assert.Empty(t, buf.String())

	level.Set(slog.LevelDebug)
	log.Debug("shown")
	assert.Contains(t, buf.String(), "DEBUG: shown")
}
