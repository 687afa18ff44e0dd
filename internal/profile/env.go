package profile

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Env holds defaults read from LABELGEN_* environment variables.
// Command-line flags take precedence over these values.
type Env struct {
	ScenesDir   string `env:"LABELGEN_SCENES_DIR"`
	VideosDir   string `env:"LABELGEN_VIDEOS_DIR"`
	OutDir      string `env:"LABELGEN_OUT_DIR" envDefault:"."`
	DB          string `env:"LABELGEN_DB"`
	Profile     string `env:"LABELGEN_PROFILE" envDefault:"v1"`
	MetricsFile string `env:"LABELGEN_METRICS_FILE"`
}

// ParseEnv loads Env from the process environment.
func ParseEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	return e, nil
}
