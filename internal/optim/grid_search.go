package optim

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/mcsim/internal/config"
	"github.com/san-kum/mcsim/internal/core"
	"github.com/san-kum/mcsim/internal/experiment"
	"github.com/san-kum/mcsim/internal/mc"
)

// Objective scores a run; lower is better.
type Objective func(*mc.Result) float64

// Minimize scores a run by one of its metrics.
func Minimize(metric string) Objective {
	return func(r *mc.Result) float64 { return r.Metrics[metric] }
}

// Target scores a run by the distance of a metric from target.
func Target(metric string, target float64) Objective {
	return func(r *mc.Result) float64 { return math.Abs(r.Metrics[metric] - target) }
}

// Point is one evaluated parameter combination.
type Point struct {
	Params map[string]float64
	Score  float64
	Result *mc.Result
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Search runs every combination of the parameter ranges and returns the
// best point together with all evaluated points in grid order.
func (g *GridSearch) Search(
	ctx context.Context,
	buildExperiment func(params map[string]float64) (*experiment.Experiment, error),
	objective Objective,
) (Point, []Point, error) {
	if len(g.paramNames) != len(g.ranges) {
		return Point{}, nil, fmt.Errorf("%d parameters with %d ranges", len(g.paramNames), len(g.ranges))
	}
	for i, r := range g.ranges {
		if len(r) == 0 {
			return Point{}, nil, fmt.Errorf("no values for parameter %s", g.paramNames[i])
		}
	}

	var points []Point
	err := g.searchRecursive(ctx, 0, make(map[string]float64), buildExperiment, objective, &points)
	if err != nil {
		return Point{}, points, err
	}

	best := Point{Score: math.Inf(1)}
	for _, p := range points {
		if p.Score < best.Score {
			best = p
		}
	}
	return best, points, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	buildExperiment func(map[string]float64) (*experiment.Experiment, error),
	objective Objective,
	points *[]Point,
) error {
	if depth == len(g.paramNames) {
		exp, err := buildExperiment(current)
		if err != nil {
			return err
		}
		if err := exp.Setup(); err != nil {
			return err
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return err
		}

		*points = append(*points, Point{Params: current, Score: objective(result), Result: result})
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, buildExperiment, objective, points); err != nil {
			return err
		}
	}
	return nil
}

// WithMoveParams returns a copy of base with move fields overridden. Each
// parameter is named "<move type>.<field>", e.g. "bath.mu", and applies to
// every move of that type.
func WithMoveParams(base *config.Config, params map[string]float64) (*config.Config, error) {
	cfg := *base
	cfg.Moves = make([]core.Record, len(base.Moves))
	for i, rec := range base.Moves {
		cfg.Moves[i] = make(core.Record, len(rec))
		for k, v := range rec {
			cfg.Moves[i][k] = v
		}
	}

	for name, val := range params {
		moveType, field, ok := strings.Cut(name, ".")
		if !ok || field == "" {
			return nil, fmt.Errorf("parameter %q: expected <move>.<field>", name)
		}
		found := false
		for _, rec := range cfg.Moves {
			if t, _ := rec.String("type"); t == moveType {
				rec[field] = val
				found = true
			}
		}
		if !found {
			return nil, fmt.Errorf("parameter %q: no %s move", name, moveType)
		}
	}
	return &cfg, nil
}
