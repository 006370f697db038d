// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ericfisherdev/localreview/internal/domain/model"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	// Workspace is the root the .review storage directory lives under and
	// the base for relative reviewed-file paths.
	Workspace string
	// Author is the default provenance for comments and replies created
	// by this process.
	Author model.Author
	// Debounce is how long the watcher coalesces storage events per file.
	Debounce time.Duration
	// SaveCooldown is how long after a persist the store reports Saving,
	// suppressing reactions to its own writes.
	SaveCooldown time.Duration
}

// Load reads configuration from environment variables and returns a
// validated Config. All variables are optional:
// LOCALREVIEW_WORKSPACE (default: current directory),
// LOCALREVIEW_AUTHOR (claude), LOCALREVIEW_DEBOUNCE (300ms),
// LOCALREVIEW_SAVE_COOLDOWN (500ms).
func Load() (*Config, error) {
	workspace := os.Getenv("LOCALREVIEW_WORKSPACE")
	if workspace == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("determine working directory: %w", err)
		}
		workspace = wd
	}

	author := model.AuthorClaude
	if v, ok := os.LookupEnv("LOCALREVIEW_AUTHOR"); ok && v != "" {
		parsed, err := model.ParseAuthor(v)
		if err != nil {
			return nil, fmt.Errorf("LOCALREVIEW_AUTHOR: %w", err)
		}
		author = parsed
	}

	debounce := 300 * time.Millisecond
	if v, ok := os.LookupEnv("LOCALREVIEW_DEBOUNCE"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("LOCALREVIEW_DEBOUNCE has invalid duration %q: %w", v, err)
		}
		debounce = parsed
	}

	saveCooldown := 500 * time.Millisecond
	if v, ok := os.LookupEnv("LOCALREVIEW_SAVE_COOLDOWN"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("LOCALREVIEW_SAVE_COOLDOWN has invalid duration %q: %w", v, err)
		}
		saveCooldown = parsed
	}

	return &Config{
		Workspace:    workspace,
		Author:       author,
		Debounce:     debounce,
		SaveCooldown: saveCooldown,
	}, nil
}
