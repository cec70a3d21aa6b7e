package evaluation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/resilience-sim/sim"
	"github.com/inference-sim/resilience-sim/sim/graph"
)

const dismantYAML = `
task: dismant
dataset: synthetic
graph:
  name: ba100
  generator: ba
  nodes: 100
  m: 2
  seed: 7
budget: 20
random_runs: 5
workers: 4
strategies: [hda, hda-static, random]
sequence: ["3", "17", "42"]
`

func TestLoadConfig_ParsesAndValidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eval.yaml")
	require.NoError(t, os.WriteFile(path, []byte(dismantYAML), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	cfg.ApplyDefaults()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, TaskDismantle, cfg.Task)
	assert.Equal(t, "ba100", cfg.Graph.Name)
	assert.Equal(t, 20, cfg.Budget)
	assert.Equal(t, sim.DefaultCollapseThreshold, cfg.CollapseThreshold)
	require.NotNil(t, cfg.RandomSeed)
	assert.Equal(t, DefaultRandomSeed, *cfg.RandomSeed)

	ops, err := cfg.Operations()
	require.NoError(t, err)
	assert.Equal(t, sim.RemovalSequence([]graph.NodeID{3, 17, 42}), ops)

	e := cfg.Evaluator()
	assert.Equal(t, 5, e.RandomRuns)
	assert.Equal(t, 4, e.Workers)
	assert.Equal(t, "synthetic", e.DatasetName)
}

func TestParseConfig_RejectsUnknownKeys(t *testing.T) {
	_, err := ParseConfig([]byte("task: dismant\nbudgett: 3\n"))

	assert.Error(t, err)
}

func TestConfig_ApplyDefaults_DismantStrategies(t *testing.T) {
	cfg := &Config{Task: TaskDismantle}
	cfg.ApplyDefaults()

	assert.Equal(t, []string{sim.StrategyHighestDegree, sim.StrategyRandom}, cfg.Strategies)
	assert.Equal(t, DefaultRandomRuns, cfg.RandomRuns)
}

func TestConfig_ApplyDefaults_KeepsExplicitZeroSeed(t *testing.T) {
	cfg, err := ParseConfig([]byte("task: construct\nrandom_seed: 0\ngraph: {name: p, generator: path, nodes: 4}\n"))
	require.NoError(t, err)

	cfg.ApplyDefaults()

	require.NotNil(t, cfg.RandomSeed)
	assert.Equal(t, int64(0), *cfg.RandomSeed)
}

func TestConfig_Validate_Errors(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Task:  TaskDismantle,
			Graph: GraphSpec{Name: "p", Generator: GeneratorPath, Nodes: 5},
		}
	}
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"missing task", func(c *Config) { c.Task = "" }, "Task"},
		{"unknown task", func(c *Config) { c.Task = "repair" }, "Task"},
		{"missing graph name", func(c *Config) { c.Graph.Name = "" }, "Graph.Name"},
		{"unknown generator", func(c *Config) { c.Graph.Generator = "ws" }, "Graph.Generator"},
		{"negative budget", func(c *Config) { c.Budget = -1 }, "Budget"},
		{"threshold above one", func(c *Config) { c.CollapseThreshold = 1.5 }, "CollapseThreshold"},
		{"unknown strategy", func(c *Config) { c.Strategies = []string{"pagerank"} }, "pagerank"},
		{"ba with m >= nodes", func(c *Config) { c.Graph = GraphSpec{Name: "b", Generator: GeneratorBarabasi, Nodes: 3, M: 3} }, "Graph.M"},
		{"empty path", func(c *Config) { c.Graph.Nodes = 0 }, "Graph.Nodes"},
		{"edges without edges", func(c *Config) { c.Graph.Generator = GeneratorExplicitEdge }, "Graph.Edges"},
		{"edge in dismant sequence", func(c *Config) { c.Sequence = []string{"1-2"} }, "Sequence[0]"},
		{"node in construct sequence", func(c *Config) { c.Task = TaskConstruct; c.Sequence = []string{"1"} }, "Sequence[0]"},
		{"unparsable sequence", func(c *Config) { c.Sequence = []string{"x"} }, "Sequence[0]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			require.NoError(t, cfg.Validate())
			tt.mutate(cfg)

			err := cfg.Validate()

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGraphSpec_Build(t *testing.T) {
	t.Run("path", func(t *testing.T) {
		g, err := GraphSpec{Generator: GeneratorPath, Nodes: 6}.Build()
		require.NoError(t, err)
		assert.Equal(t, 5, g.NumEdges())
	})
	t.Run("ba is reproducible from its seed", func(t *testing.T) {
		spec := GraphSpec{Generator: GeneratorBarabasi, Nodes: 30, M: 2, Seed: 9}
		a, err := spec.Build()
		require.NoError(t, err)
		b, err := spec.Build()
		require.NoError(t, err)
		assert.Equal(t, a.Edges(), b.Edges())
	})
	t.Run("er", func(t *testing.T) {
		g, err := GraphSpec{Generator: GeneratorErdosRenyi, Nodes: 8, P: 1}.Build()
		require.NoError(t, err)
		assert.Equal(t, 28, g.NumEdges())
	})
	t.Run("explicit edges keep isolated nodes", func(t *testing.T) {
		g, err := GraphSpec{Generator: GeneratorExplicitEdge, Nodes: 4, Edges: []graph.Edge{{U: 0, V: 1}}}.Build()
		require.NoError(t, err)
		assert.Equal(t, 4, g.NumNodes())
		assert.Equal(t, 1, g.NumEdges())
	})
	t.Run("unknown", func(t *testing.T) {
		_, err := GraphSpec{Generator: "ws"}.Build()
		assert.Error(t, err)
	})
}
