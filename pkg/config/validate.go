package config

import (
	"fmt"
	"strings"

	"github.com/japaniel/zhcards/pkg/output"
)

// Validate checks values the tags cannot express. Load calls it
// automatically; call it again after applying command-line overrides.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Dictionary.Path) == "" {
		return fmt.Errorf("dictionary.path must not be empty")
	}
	if c.Dictionary.Workers < 1 {
		return fmt.Errorf("dictionary.workers must be >= 1 (got %d)", c.Dictionary.Workers)
	}
	if c.Cards.Path == "" {
		return fmt.Errorf("cards.path must not be empty")
	}
	if !c.Strokes.Disabled {
		if c.Strokes.RatePerSecond <= 0 {
			return fmt.Errorf("strokes.rate_per_second must be > 0 (got %v)", c.Strokes.RatePerSecond)
		}
		if c.Strokes.MaxTries < 1 {
			return fmt.Errorf("strokes.max_tries must be >= 1 (got %d)", c.Strokes.MaxTries)
		}
	}
	if c.Article.MinCount < 1 {
		return fmt.Errorf("article.min_count must be >= 1 (got %d)", c.Article.MinCount)
	}
	if _, err := output.ParseColorMode(c.Output.Color); err != nil {
		return fmt.Errorf("output.color: %w", err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json (got %q)", c.Log.Format)
	}
	return nil
}
