package automation

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/san-kum/mcsim/internal/config"
	"github.com/san-kum/mcsim/internal/experiment"
	"github.com/san-kum/mcsim/internal/logging"
	"github.com/san-kum/mcsim/internal/mc"
	"github.com/san-kum/mcsim/internal/optim"
	"gopkg.in/yaml.v3"
)

// Scenario defines a scripted sequence of runs
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a single run. The base system comes from Preset
// ("system/name") or Config (a file path), defaulting to the built in
// system; the remaining fields override it.
type ScenarioStep struct {
	Preset string             `yaml:"preset"`
	Config string             `yaml:"config"`
	Seed   int64              `yaml:"seed"`
	Macro  int                `yaml:"macro"`
	Micro  int                `yaml:"micro"`
	Params map[string]float64 `yaml:"params"`
	SaveAs string             `yaml:"save_as"`
}

// StepResult is the outcome of one step together with the config it ran.
type StepResult struct {
	Config *config.Config
	Result *mc.Result
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}
	return &scenario, nil
}

// Resolve builds the config a step runs.
func (s ScenarioStep) Resolve() (*config.Config, error) {
	var cfg *config.Config
	switch {
	case s.Preset != "" && s.Config != "":
		return nil, fmt.Errorf("preset and config are exclusive")
	case s.Preset != "":
		system, name, _ := strings.Cut(s.Preset, "/")
		cfg = config.GetPreset(system, name)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", s.Preset)
		}
	case s.Config != "":
		var err error
		if cfg, err = config.Load(s.Config); err != nil {
			return nil, err
		}
	default:
		cfg = config.DefaultConfig()
	}

	if len(s.Params) > 0 {
		var err error
		if cfg, err = optim.WithMoveParams(cfg, s.Params); err != nil {
			return nil, err
		}
	}
	if s.Seed != 0 {
		cfg.Seed = s.Seed
	}
	if s.Macro != 0 {
		cfg.Macro = s.Macro
	}
	if s.Micro != 0 {
		cfg.Micro = s.Micro
	}
	if s.SaveAs != "" {
		cfg.Name = s.SaveAs
	}
	return cfg, nil
}

// RunScenario executes all steps in order. The results of the steps that
// completed are returned with the first error.
func RunScenario(ctx context.Context, scenario *Scenario, log logging.Logger) ([]StepResult, error) {
	if log == nil {
		log = logging.NewNop()
	}
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		cfg, err := step.Resolve()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		log.Infof("running step %d/%d: %s", i+1, len(scenario.Steps), cfg.Name)

		exp := experiment.New(cfg, log)
		if err := exp.Setup(); err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		results = append(results, StepResult{Config: cfg, Result: result})
	}

	return results, nil
}
