package roller

import (
	"github.com/louisbranch/diceroller/internal/platform/config"
	"github.com/louisbranch/diceroller/pkg/dice"
)

// Config holds the runtime knobs of a Roller.
type Config struct {
	// IterationLimit bounds explosion and reroll chains.
	IterationLimit int `env:"DICEROLLER_ITERATION_LIMIT" envDefault:"1000"`
	// Seed makes rolls deterministic. A nil Seed draws one from crypto/rand.
	Seed *int64 `env:"DICEROLLER_SEED"`
	// Strict aborts on the first grammar error instead of recovering.
	Strict bool `env:"DICEROLLER_STRICT"`
}

// DefaultConfig returns the configuration used when none is loaded.
func DefaultConfig() Config {
	return Config{IterationLimit: dice.DefaultIterationLimit}
}

// LoadConfig reads Config from DICEROLLER_* environment variables.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
