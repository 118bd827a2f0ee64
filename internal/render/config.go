package render

import (
	"fmt"
	"os"
)

// Config holds font selection for the two rendering families.
// HandwritingFontFile points at a TrueType file installed into the
// PDF engine's user font registry on first use; StandardFont must be
// one of the built-in core faces.
type Config struct {
	StandardFont        string `toml:"standard_font"`
	HandwritingFont     string `toml:"handwriting_font"`
	HandwritingFontFile string `toml:"handwriting_font_file"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	StandardFont        string
	HandwritingFont     string
	HandwritingFontFile string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.StandardFont != "" {
		c.StandardFont = overlay.StandardFont
	}
	if overlay.HandwritingFont != "" {
		c.HandwritingFont = overlay.HandwritingFont
	}
	if overlay.HandwritingFontFile != "" {
		c.HandwritingFontFile = overlay.HandwritingFontFile
	}
}

func (c *Config) loadDefaults() {
	if c.StandardFont == "" {
		c.StandardFont = "Helvetica"
	}
	if c.HandwritingFont == "" {
		c.HandwritingFont = "Caveat-Regular"
	}
	if c.HandwritingFontFile == "" {
		c.HandwritingFontFile = "fonts/Caveat-Regular.ttf"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.StandardFont != "" {
		if v := os.Getenv(env.StandardFont); v != "" {
			c.StandardFont = v
		}
	}
	if env.HandwritingFont != "" {
		if v := os.Getenv(env.HandwritingFont); v != "" {
			c.HandwritingFont = v
		}
	}
	if env.HandwritingFontFile != "" {
		if v := os.Getenv(env.HandwritingFontFile); v != "" {
			c.HandwritingFontFile = v
		}
	}
}

func (c *Config) validate() error {
	if c.StandardFont == "" {
		return fmt.Errorf("standard_font required")
	}
	if c.HandwritingFont == "" {
		return fmt.Errorf("handwriting_font required")
	}
	return nil
}
