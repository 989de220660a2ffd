package dag

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/stepwave/internal/config"
)

func step(runnerType, name string, deps ...string) *config.Step {
	return &config.Step{
		RunnerType: runnerType,
		Name:       name,
		DependsOn:  deps,
	}
}

func waveIDs(waves [][]*config.Step) [][]string {
	out := make([][]string, len(waves))
	for i, wave := range waves {
		for _, s := range wave {
			out[i] = append(out[i], s.ID())
		}
	}
	return out
}

func TestBuild(t *testing.T) {
	ctx := context.Background()

	t.Run("empty plan builds an empty graph", func(t *testing.T) {
		g, err := Build(ctx, nil, false)
		require.NoError(t, err)
		assert.Empty(t, g.Steps())
	})

	t.Run("dangling dependency is dropped with a warning", func(t *testing.T) {
		g, err := Build(ctx, []*config.Step{
			step("print", "a"),
			step("print", "b", "print.a", "print.ghost"),
		}, false)
		require.NoError(t, err)
		assert.Equal(t, []string{"print.a"}, g.Dependencies("print.b"))
	})

	t.Run("strict mode rejects dangling dependency", func(t *testing.T) {
		_, err := Build(ctx, []*config.Step{
			step("print", "b", "print.ghost"),
		}, true)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrStrictDeps)
		assert.ErrorContains(t, err, "print.ghost")
	})

	t.Run("duplicate step id keeps the last definition", func(t *testing.T) {
		first := step("print", "a")
		second := step("print", "a")
		second.Description = "winner"

		g, err := Build(ctx, []*config.Step{first, second, step("print", "b")}, false)
		require.NoError(t, err)
		require.Len(t, g.Steps(), 2)
		// The later definition wins both content and declaration position.
		assert.Equal(t, "print.a", g.Steps()[0].ID())
		assert.Equal(t, "winner", g.Steps()[0].Description)
		assert.Equal(t, "print.b", g.Steps()[1].ID())
	})
}

func TestValidate(t *testing.T) {
	ctx := context.Background()

	t.Run("valid dag has no cycles", func(t *testing.T) {
		g, err := Build(ctx, []*config.Step{
			step("print", "a"),
			step("print", "b", "print.a"),
			step("print", "c", "print.a", "print.b"),
		}, false)
		require.NoError(t, err)
		assert.NoError(t, g.Validate())
	})

	t.Run("self dependency is a cycle", func(t *testing.T) {
		g, err := Build(ctx, []*config.Step{
			step("print", "a", "print.a"),
		}, false)
		require.NoError(t, err)
		err = g.Validate()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrCycle)
	})

	t.Run("two node cycle is detected", func(t *testing.T) {
		g, err := Build(ctx, []*config.Step{
			step("print", "a", "print.b"),
			step("print", "b", "print.a"),
		}, false)
		require.NoError(t, err)
		assert.ErrorIs(t, g.Validate(), ErrCycle)
	})

	t.Run("long indirect cycle is detected", func(t *testing.T) {
		g, err := Build(ctx, []*config.Step{
			step("print", "a", "print.d"),
			step("print", "b", "print.a"),
			step("print", "c", "print.b"),
			step("print", "d", "print.c"),
		}, false)
		require.NoError(t, err)
		err = g.Validate()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrCycle)
		assert.ErrorContains(t, err, "involving step")
	})

	t.Run("cycle in disconnected component is detected", func(t *testing.T) {
		g, err := Build(ctx, []*config.Step{
			step("print", "healthy"),
			step("print", "a", "print.b"),
			step("print", "b", "print.a"),
		}, false)
		require.NoError(t, err)
		assert.ErrorIs(t, g.Validate(), ErrCycle)
	})
}

func TestWaves(t *testing.T) {
	ctx := context.Background()

	t.Run("independent steps share one wave", func(t *testing.T) {
		g, err := Build(ctx, []*config.Step{
			step("print", "a"),
			step("print", "b"),
			step("print", "c"),
		}, false)
		require.NoError(t, err)

		waves, err := g.Waves()
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"print.a", "print.b", "print.c"}}, waveIDs(waves))
	})

	t.Run("diamond layers into three waves", func(t *testing.T) {
		g, err := Build(ctx, []*config.Step{
			step("print", "root"),
			step("print", "left", "print.root"),
			step("print", "right", "print.root"),
			step("print", "join", "print.left", "print.right"),
		}, false)
		require.NoError(t, err)

		waves, err := g.Waves()
		require.NoError(t, err)
		assert.Equal(t, [][]string{
			{"print.root"},
			{"print.left", "print.right"},
			{"print.join"},
		}, waveIDs(waves))
	})

	t.Run("same wave steps never satisfy each other", func(t *testing.T) {
		// b depends on a; even though both would become ready during one
		// pass, b must wait a full wave.
		g, err := Build(ctx, []*config.Step{
			step("print", "a"),
			step("print", "b", "print.a"),
			step("print", "c"),
		}, false)
		require.NoError(t, err)

		waves, err := g.Waves()
		require.NoError(t, err)
		assert.Equal(t, [][]string{
			{"print.a", "print.c"},
			{"print.b"},
		}, waveIDs(waves))
	})

	t.Run("waves are deterministic across calls", func(t *testing.T) {
		g, err := Build(ctx, []*config.Step{
			step("print", "b"),
			step("print", "a"),
			step("print", "z", "print.a"),
		}, false)
		require.NoError(t, err)

		first, err := g.Waves()
		require.NoError(t, err)
		second, err := g.Waves()
		require.NoError(t, err)
		assert.Equal(t, waveIDs(first), waveIDs(second))
		// Ties break by declaration order, not lexical order.
		assert.Equal(t, []string{"print.b", "print.a"}, waveIDs(first)[0])
	})

	t.Run("unvalidated cyclic graph reports inconsistency", func(t *testing.T) {
		g, err := Build(ctx, []*config.Step{
			step("print", "a", "print.b"),
			step("print", "b", "print.a"),
		}, false)
		require.NoError(t, err)

		_, err = g.Waves()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInconsistent)
	})
}
