package dictionary

import (
	"fmt"
	"log/slog"

	"github.com/longbridgeapp/opencc"
)

// ScriptConverter maps text between simplified and traditional forms with
// OpenCC's phrase tables, so one-to-many characters such as 发 (發/髮)
// resolve by context.
type ScriptConverter struct {
	s2t    *opencc.OpenCC
	t2s    *opencc.OpenCC
	logger *slog.Logger
}

// NewScriptConverter loads the s2t and t2s conversion tables.
func NewScriptConverter(logger *slog.Logger) (*ScriptConverter, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s2t, err := opencc.New("s2t")
	if err != nil {
		return nil, fmt.Errorf("load s2t tables: %w", err)
	}
	t2s, err := opencc.New("t2s")
	if err != nil {
		return nil, fmt.Errorf("load t2s tables: %w", err)
	}
	return &ScriptConverter{s2t: s2t, t2s: t2s, logger: logger}, nil
}

// ToTraditional converts s to traditional characters. On failure s is
// returned unchanged.
func (c *ScriptConverter) ToTraditional(s string) string { return c.convert(c.s2t, "s2t", s) }

// ToSimplified converts s to simplified characters. On failure s is
// returned unchanged.
func (c *ScriptConverter) ToSimplified(s string) string { return c.convert(c.t2s, "t2s", s) }

func (c *ScriptConverter) convert(cc *opencc.OpenCC, name, s string) string {
	out, err := cc.Convert(s)
	if err != nil {
		c.logger.Warn("script conversion failed", "conversion", name, "text", s, "error", err)
		return s
	}
	return out
}
