package cli

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/goto/lineage/core/graph"
	"github.com/goto/lineage/internal/workermanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
		return p
	}

	expected := graph.Edge{
		Source:      "urn:li:dataset:a",
		Destination: "urn:li:dataset:b",
		Type:        "DownstreamOf",
		Properties:  map[string]interface{}{"owner": map[string]interface{}{"team": "data"}},
	}

	t.Run("YAML", func(t *testing.T) {
		p := write("edge.yaml", `
source: urn:li:dataset:a
destination: urn:li:dataset:b
relationship_type: DownstreamOf
properties:
  owner:
    team: data
`)
		var edge graph.Edge
		require.NoError(t, parseFile(p, &edge))
		assert.Equal(t, expected, edge)
	})

	t.Run("JSON", func(t *testing.T) {
		p := write("edge.json", `{"source":"urn:li:dataset:a","destination":"urn:li:dataset:b",
			"relationship_type":"DownstreamOf","properties":{"owner":{"team":"data"}}}`)
		var edge graph.Edge
		require.NoError(t, parseFile(p, &edge))
		assert.Equal(t, expected, edge)
	})

	t.Run("UnsupportedExtension", func(t *testing.T) {
		p := write("edge.txt", "")
		var edge graph.Edge
		assert.EqualError(t, parseFile(p, &edge), "unsupported file type")
	})
}

func TestMakeMapFromString(t *testing.T) {
	m, err := makeMapFromString("job:etl,url:http://x")
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"job": "etl", "url": "http://x"}, m)

	m, err = makeMapFromString("")
	require.NoError(t, err)
	assert.Empty(t, m)

	_, err = makeMapFromString("broken")
	assert.ErrorContains(t, err, `invalid key:value pair "broken"`)
}

func TestInitApp(t *testing.T) {
	ctx := context.Background()

	t.Run("MemoryBackendAppliesMutationsInSitu", func(t *testing.T) {
		cfg := &Config{LogLevel: "error"}
		cfg.Store.Backend = backendMemory
		cfg.Lineage.Registry = []graph.LineageSpec{{Type: "DownstreamOf"}}

		a, err := initApp(ctx, cfg)
		require.NoError(t, err)
		defer a.Close()

		require.NoError(t, a.queue.EnqueueUpsertEdgeJob(ctx, graph.Edge{
			Source: "urn:li:dataset:a", Destination: "urn:li:dataset:b", Type: "DownstreamOf",
		}))
		require.NoError(t, a.queue.EnqueueUpsertEdgeJob(ctx, graph.Edge{
			Source: "urn:li:dataset:b", Destination: "urn:li:dataset:c", Type: "DownstreamOf",
		}))

		res, err := a.graph.GetLineage(ctx, "urn:li:dataset:a", graph.LineageQuery{
			Direction: graph.LineageDirectionDownstream,
			Count:     defaultLineagePageSize,
			MaxHops:   2,
		})
		require.NoError(t, err)
		assert.Equal(t, 2, res.Total)
		assert.Equal(t, 2, res.Count)
		assert.Equal(t, []graph.LineageRelationship{
			{URN: "urn:li:dataset:b", Type: "DownstreamOf", Degree: 1, Path: []graph.URN{}},
			{URN: "urn:li:dataset:c", Type: "DownstreamOf", Degree: 2, Path: []graph.URN{"urn:li:dataset:b"}},
		}, res.Relationships)
	})

	t.Run("UnknownBackend", func(t *testing.T) {
		cfg := &Config{LogLevel: "error"}
		cfg.Store.Backend = "cassandra"

		a, err := initApp(ctx, cfg)
		assert.ErrorIs(t, err, errUnknownBackend)
		assert.Nil(t, a)
	})
}

func TestNeedsPostgres(t *testing.T) {
	cfg := &Config{}
	assert.True(t, needsPostgres(cfg))

	cfg.Store.Backend = backendMemory
	assert.False(t, needsPostgres(cfg))

	cfg.Worker.Enabled = true
	assert.True(t, needsPostgres(cfg))
}

func TestLineageCommandPagesByDefault(t *testing.T) {
	cmd := lineageCommand(&Config{})
	assert.Equal(t, strconv.Itoa(defaultLineagePageSize), cmd.Flags().Lookup("count").DefValue)
}

func TestRemoveNodeCommand(t *testing.T) {
	ctx := context.Background()
	cfg := &Config{LogLevel: "error"}
	cfg.Store.Backend = backendMemory

	t.Run("RequiresRelationshipTypes", func(t *testing.T) {
		cmd := removeNodeCommand(cfg)
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		cmd.SetArgs([]string{"urn:li:dataset:a"})

		err := cmd.ExecuteContext(ctx)
		assert.ErrorIs(t, err, graph.ErrInvalidArgument)
	})

	t.Run("AllTypesIsExplicit", func(t *testing.T) {
		cmd := removeNodeCommand(cfg)
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		cmd.SetArgs([]string{"urn:li:dataset:a", "--type", "*"})

		assert.NoError(t, cmd.ExecuteContext(ctx))
	})
}

func TestAppOutcome(t *testing.T) {
	inSitu := &app{queue: workermanager.NewInSituWorker(workermanager.Deps{})}
	assert.Equal(t, "removed", inSitu.outcome("removed"))

	async := &app{queue: &workermanager.Manager{}}
	assert.Equal(t, "queued", async.outcome("removed"))
}
