package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/san-kum/mcsim/internal/core"
	"gopkg.in/yaml.v3"
)

const (
	DefaultMacro = 10
	DefaultMicro = 1000
	DefaultSide  = 50.0
)

// Config is a simulation input file. The geometry, type tables, energy terms
// and moves are kept as records and parsed by the packages that own them.
type Config struct {
	Name      string        `yaml:"name,omitempty" json:"name,omitempty"`
	Seed      int64         `yaml:"seed" json:"seed"`
	Macro     int           `yaml:"macro" json:"macro"`
	Micro     int           `yaml:"micro" json:"micro"`
	Geometry  core.Record   `yaml:"geometry" json:"geometry"`
	Atoms     []core.Record `yaml:"atoms" json:"atoms"`
	Molecules []core.Record `yaml:"molecules" json:"molecules"`
	Energy    []core.Record `yaml:"energy" json:"energy"`
	Moves     []core.Record `yaml:"moves" json:"moves"`
}

// Env holds the settings read from the environment.
type Env struct {
	Seed     *int64 `env:"MCSIM_SEED"`
	LogLevel string `env:"MCSIM_LOG_LEVEL" envDefault:"info"`
	DataDir  string `env:"MCSIM_DATA_DIR" envDefault:"data"`
}

func DefaultConfig() *Config {
	return &Config{
		Name:     "salt",
		Macro:    DefaultMacro,
		Micro:    DefaultMicro,
		Geometry: core.Record{"type": "cuboid", "length": DefaultSide},
		Atoms: []core.Record{
			{"name": "NA", "q": 1.0, "sigma": 4.0, "eps": 0.05, "dp": 2.0},
			{"name": "CL", "q": -1.0, "sigma": 4.0, "eps": 0.05, "dp": 2.0},
		},
		Molecules: []core.Record{
			{"name": "Na", "atoms": []any{"NA"}, "atomic": true, "ninit": 20},
			{"name": "Cl", "atoms": []any{"CL"}, "atomic": true, "ninit": 20},
		},
		Energy: []core.Record{
			{"coulomb": core.Record{"epsr": 80.0}},
			{"wca": core.Record{"mixing": "LB"}},
		},
		Moves: []core.Record{
			{"type": "translate", "runfraction": 1.0},
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a YAML document. Fields the document leaves out take their
// default value.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.Macro == 0 {
		c.Macro = d.Macro
	}
	if c.Micro == 0 {
		c.Micro = d.Micro
	}
	if c.Geometry == nil {
		c.Geometry = d.Geometry
	}
	if c.Atoms == nil {
		c.Atoms, c.Molecules = d.Atoms, d.Molecules
	}
	if c.Energy == nil {
		c.Energy = d.Energy
	}
	if c.Moves == nil {
		c.Moves = d.Moves
	}
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the fields the run loop depends on. The records are
// validated when parsed.
func (c *Config) Validate() error {
	if c.Macro <= 0 {
		return core.Errorf("macro", core.ErrInvalidValue, "must be positive, got %d", c.Macro)
	}
	if c.Micro <= 0 {
		return core.Errorf("micro", core.ErrInvalidValue, "must be positive, got %d", c.Micro)
	}
	if len(c.Geometry) == 0 {
		return core.Errorf("geometry", core.ErrMissingField, "no geometry")
	}
	if len(c.Atoms) == 0 {
		return core.Errorf("atoms", core.ErrMissingField, "no atom types")
	}
	if len(c.Moves) == 0 {
		return core.Errorf("moves", core.ErrMissingField, "no moves")
	}
	return nil
}

// ParseEnv loads the environment settings.
func ParseEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	return e, nil
}

// ApplyEnv overrides fields of c that are set in e.
func (c *Config) ApplyEnv(e Env) {
	if e.Seed != nil {
		c.Seed = *e.Seed
	}
}
