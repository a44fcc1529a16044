// Package config loads zhcards settings from YAML, environment variables
// and defaults.
package config

import "time"

// Config is the root application configuration.
type Config struct {
	Dictionary DictionaryConfig `yaml:"dictionary"`
	Cards      CardsConfig      `yaml:"cards"`
	Strokes    StrokesConfig    `yaml:"strokes"`
	Article    ArticleConfig    `yaml:"article"`
	Log        LogConfig        `yaml:"log"`
	Output     OutputConfig     `yaml:"output"`
}

// DictionaryConfig locates the CC-CEDICT source.
type DictionaryConfig struct {
	Path    string        `yaml:"path"    env:"ZHCARDS_DICT_PATH"       env-default:"cedict.txt"`
	URL     string        `yaml:"url"     env:"ZHCARDS_DICT_URL"        env-default:"https://www.mdbg.net/chinese/export/cedict/cedict_1_0_ts_utf-8_mdbg.txt.gz"`
	Workers int           `yaml:"workers" env:"ZHCARDS_HYDRATE_WORKERS" env-default:"4"`
	Timeout time.Duration `yaml:"timeout" env:"ZHCARDS_DICT_TIMEOUT"    env-default:"2m"`
}

// CardsConfig holds where saved cards go.
type CardsConfig struct {
	Path   string   `yaml:"path"    env:"ZHCARDS_CARDS_PATH" env-default:"cards.csv"`
	DeckDB string   `yaml:"deck_db" env:"ZHCARDS_DECK_DB"    env-default:"zhcards.db"`
	Tags   []string `yaml:"tags"    env:"ZHCARDS_TAGS"       env-separator:","`
	// DisableDeck turns the SQLite deck log off. Defaults are applied to
	// zero values, so an empty DeckDB cannot express this.
	DisableDeck bool `yaml:"disable_deck" env:"ZHCARDS_NO_DECK"`
}

// StrokesConfig holds stroke-order image settings.
type StrokesConfig struct {
	Disabled      bool    `yaml:"disabled"        env:"ZHCARDS_NO_STROKES"`
	Dir           string  `yaml:"dir"             env:"ZHCARDS_STROKES_DIR"   env-default:"content"`
	BaseURL       string  `yaml:"base_url"        env:"ZHCARDS_STROKES_URL"   env-default:"https://www.mdbg.net/chinese/rsc/img/stroke_anim/"`
	RatePerSecond float64 `yaml:"rate_per_second" env:"ZHCARDS_STROKES_RPS"   env-default:"2"`
	MaxTries      uint    `yaml:"max_tries"       env:"ZHCARDS_STROKES_TRIES" env-default:"3"`
}

// ArticleConfig holds article vocabulary settings.
type ArticleConfig struct {
	MinCount int `yaml:"min_count" env:"ZHCARDS_ARTICLE_MIN_COUNT" env-default:"1"`
	Limit    int `yaml:"limit"     env:"ZHCARDS_ARTICLE_LIMIT"     env-default:"0"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"ZHCARDS_LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"ZHCARDS_LOG_FORMAT" env-default:"text"`
}

// OutputConfig holds terminal output settings.
type OutputConfig struct {
	Color string `yaml:"color" env:"ZHCARDS_COLOR" env-default:"auto"`
}
