package evaluation

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/inference-sim/resilience-sim/sim"
	"github.com/inference-sim/resilience-sim/sim/graph"
)

// validate is a singleton validator instance
var validate = validator.New()

// Graph generator names accepted in GraphSpec.Generator.
const (
	GeneratorPath         = "path"
	GeneratorBarabasi     = "ba"
	GeneratorErdosRenyi   = "er"
	GeneratorExplicitEdge = "edges"
)

// Config is a YAML evaluation description. Zero values fall back to the
// Evaluator defaults; see ApplyDefaults.
type Config struct {
	Task              TaskType  `yaml:"task" validate:"required,oneof=dismant construct"`
	Dataset           string    `yaml:"dataset"`
	Graph             GraphSpec `yaml:"graph"`
	Budget            int       `yaml:"budget" validate:"gte=0"`
	EdgeBudget        int       `yaml:"edge_budget" validate:"gte=0"`
	AttackBudget      int       `yaml:"attack_budget" validate:"gte=0"`
	CollapseThreshold float64   `yaml:"collapse_threshold" validate:"gte=0,lte=1"`
	RandomRuns        int       `yaml:"random_runs" validate:"gte=0"`
	RandomSeed        *int64    `yaml:"random_seed"`
	Workers           int       `yaml:"workers" validate:"gte=0"`
	Strategies        []string  `yaml:"strategies" validate:"dive,required"`
	// Sequence is a fixed removal order scored as the method result of a
	// dismantle task, or the edges added by the method in a construct task
	// (as "u-v" strings).
	Sequence []string `yaml:"sequence"`
}

// GraphSpec describes how to materialize the graph under evaluation.
type GraphSpec struct {
	Name      string       `yaml:"name" validate:"required"`
	Generator string       `yaml:"generator" validate:"required,oneof=path ba er edges"`
	Nodes     int          `yaml:"nodes" validate:"gte=0"`
	M         int          `yaml:"m" validate:"gte=0"`
	P         float64      `yaml:"p" validate:"gte=0,lte=1"`
	Seed      int64        `yaml:"seed"`
	Edges     []graph.Edge `yaml:"edges"`
}

// LoadConfig reads and parses a YAML evaluation config.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading evaluation config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig parses a YAML evaluation config from memory.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing evaluation config: %w", err)
	}
	return &cfg, nil
}

// ApplyDefaults fills unset fields with the Evaluator defaults.
func (c *Config) ApplyDefaults() {
	if c.CollapseThreshold == 0 {
		c.CollapseThreshold = sim.DefaultCollapseThreshold
	}
	if c.RandomRuns == 0 {
		c.RandomRuns = DefaultRandomRuns
	}
	if c.RandomSeed == nil {
		seed := DefaultRandomSeed
		c.RandomSeed = &seed
	}
	if len(c.Strategies) == 0 && c.Task == TaskDismantle {
		c.Strategies = []string{sim.StrategyHighestDegree, sim.StrategyRandom}
	}
}

// Validate checks struct tags and cross-field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}
	for _, name := range c.Strategies {
		if !sim.IsValidStrategy(name) {
			return fmt.Errorf("Strategies: unknown strategy %q; valid: %v", name, sim.ValidStrategyNames())
		}
	}
	g := c.Graph
	switch g.Generator {
	case GeneratorPath:
		if g.Nodes < 1 {
			return errors.New("Graph.Nodes: path generator needs at least 1 node")
		}
	case GeneratorBarabasi:
		if g.M < 1 || g.M >= g.Nodes {
			return fmt.Errorf("Graph.M: ba generator needs 1 <= m < nodes, got m=%d nodes=%d", g.M, g.Nodes)
		}
	case GeneratorErdosRenyi:
		if g.Nodes < 1 {
			return errors.New("Graph.Nodes: er generator needs at least 1 node")
		}
	case GeneratorExplicitEdge:
		if len(g.Edges) == 0 {
			return errors.New("Graph.Edges: edges generator needs at least one edge")
		}
	}
	for i, s := range c.Sequence {
		op, err := sim.ParseOperation(s)
		if err != nil {
			return fmt.Errorf("Sequence[%d]: %w", i, err)
		}
		if c.Task == TaskConstruct && op.Kind != sim.OpAddEdge {
			return fmt.Errorf("Sequence[%d]: construct task expects edges as \"u-v\", got %q", i, s)
		}
		if c.Task == TaskDismantle && op.Kind != sim.OpRemoveNode {
			return fmt.Errorf("Sequence[%d]: dismant task expects node IDs, got %q", i, s)
		}
	}
	return nil
}

// Operations parses Sequence. Call after Validate.
func (c *Config) Operations() ([]sim.Operation, error) {
	ops := make([]sim.Operation, 0, len(c.Sequence))
	for i, s := range c.Sequence {
		op, err := sim.ParseOperation(s)
		if err != nil {
			return nil, fmt.Errorf("Sequence[%d]: %w", i, err)
		}
		ops = append(ops, op)
	}
	return ops, nil
}

// Evaluator builds an Evaluator from the config.
func (c *Config) Evaluator() *Evaluator {
	e := NewEvaluator()
	e.CollapseThreshold = c.CollapseThreshold
	e.RandomRuns = c.RandomRuns
	if c.RandomSeed != nil {
		e.RandomSeed = *c.RandomSeed
	}
	e.Workers = c.Workers
	e.DatasetName = c.Dataset
	return e
}

// Build materializes the graph. Random generators draw from the graph
// subsystem of a PartitionedRNG keyed by Seed.
func (s GraphSpec) Build() (*graph.Graph, error) {
	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(s.Seed)).ForSubsystem(sim.SubsystemGraph)
	switch s.Generator {
	case GeneratorPath:
		return graph.Path(s.Nodes), nil
	case GeneratorBarabasi:
		return graph.BarabasiAlbert(s.Nodes, s.M, rng)
	case GeneratorErdosRenyi:
		return graph.ErdosRenyi(s.Nodes, s.P, rng)
	case GeneratorExplicitEdge:
		g := graph.FromEdges(s.Edges)
		for i := 0; i < s.Nodes; i++ {
			g.AddNode(graph.NodeID(i))
		}
		return g, nil
	default:
		return nil, fmt.Errorf("unknown graph generator %q", s.Generator)
	}
}

// formatValidationError renders the first failed constraint in a user-friendly form.
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}
	for _, e := range validationErrs {
		field := e.Namespace()
		switch e.Tag() {
		case "required":
			return fmt.Errorf("%s: field is required", field)
		case "oneof":
			return fmt.Errorf("%s: must be one of [%s], got %v", field, e.Param(), e.Value())
		case "gte":
			return fmt.Errorf("%s: must be at least %s", field, e.Param())
		case "lte":
			return fmt.Errorf("%s: must not exceed %s", field, e.Param())
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, e.Tag())
		}
	}
	return err
}
