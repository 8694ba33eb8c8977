// Package pipeline runs the build as a graph of stages: load the airport
// table, aggregate flight lists, lay out the matrices, and so on. Asking for
// one stage runs everything it depends on first.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/heimdalr/dag"
)

const (
	StageAirports  = "airports"
	StageFlights   = "flights"
	StageMatrices  = "matrices"
	StageDistances = "distances"
	StageCases     = "cases"
	StagePublish   = "publish"
)

var (
	// ErrUnknownStage is returned when a target names no stage
	ErrUnknownStage = errors.New("unknown stage")
	// ErrUnknownDependency is returned when a stage needs a stage that isn't declared
	ErrUnknownDependency = errors.New("stage needs an undeclared stage")
)

// Stage is one step. Run reads what its Needs left in the State, and adds
// its own results.
type Stage struct {
	Name  string
	Needs []string
	Run   func(ctx context.Context, st *State) error
}

type Graph struct {
	dag    *dag.DAG
	stages map[string]Stage
	order  []string // declaration order; breaks ties in Plan
}

func NewGraph(stages []Stage) (*Graph, error) {
	g := &Graph{dag: dag.NewDAG(), stages: map[string]Stage{}}

	for _, s := range stages {
		if err := g.dag.AddVertexByID(s.Name, s.Name); err != nil {
			return nil, fmt.Errorf("failed to add stage %s: %w", s.Name, err)
		}
		g.stages[s.Name] = s
		g.order = append(g.order, s.Name)
	}

	// dependency -> dependent
	for _, s := range stages {
		for _, need := range s.Needs {
			if _, exists := g.stages[need]; !exists {
				return nil, fmt.Errorf("%w: %s needs %s", ErrUnknownDependency, s.Name, need)
			}
			if err := g.dag.AddEdge(need, s.Name); err != nil {
				return nil, fmt.Errorf("invalid dependency %s -> %s: %w", need, s.Name, err)
			}
		}
	}

	return g, nil
}

func (g *Graph) Stages() []string { return append([]string{}, g.order...) }

func (g *Graph) Stage(name string) (Stage, bool) {
	s, ok := g.stages[name]
	return s, ok
}

// Plan returns the targets plus everything they depend on, each stage after
// all of its dependencies. No targets means every stage. The order is the
// same every time for the same graph and targets.
func (g *Graph) Plan(targets []string) ([]string, error) {
	if len(targets) == 0 {
		targets = g.order
	}

	want := map[string]bool{}
	for _, t := range targets {
		if _, ok := g.stages[t]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownStage, t)
		}
		want[t] = true
		ancestors, err := g.dag.GetAncestors(t)
		if err != nil {
			return nil, err
		}
		for id := range ancestors {
			want[id] = true
		}
	}

	done := map[string]bool{}
	plan := []string{}
	for len(plan) < len(want) {
		next := ""
		for _, name := range g.order {
			if !want[name] || done[name] {
				continue
			}
			if g.ready(name, done) {
				next = name
				break
			}
		}
		if next == "" {
			return nil, fmt.Errorf("no runnable stage left after %v", plan)
		}
		plan = append(plan, next)
		done[next] = true
	}

	return plan, nil
}

func (g *Graph) ready(name string, done map[string]bool) bool {
	parents, err := g.dag.GetParents(name)
	if err != nil {
		return false
	}
	for p := range parents {
		if !done[p] {
			return false
		}
	}
	return true
}
