package yamlplan

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stephcl "github.com/vk/stepwave/internal/hcl"
	"github.com/zclconf/go-cty/cty"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadYAMLPlan(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	writeFile(t, dir, "plan.yaml", `
settings:
  workers: 2
  strict_deps: true

steps:
  - runner: shell
    name: build
    description: Compile the project.
    estimate: 45s
    resources: [build-cache]
    arguments:
      command: make build

  - runner: shell
    name: test
    depends_on: [shell.build]
    arguments:
      command: make test
      retries: 3
      verbose: true
`)

	model, converter, err := NewLoader(stephcl.NewLoader()).Load(ctx, dir)
	require.NoError(t, err)
	require.NotNil(t, converter)

	require.NotNil(t, model.Plan.Settings)
	assert.Equal(t, 2, model.Plan.Settings.Workers)
	assert.True(t, model.Plan.Settings.StrictDeps)

	require.Len(t, model.Plan.Steps, 2)
	build := model.Plan.Steps[0]
	assert.Equal(t, "shell.build", build.ID())
	assert.Equal(t, 45*time.Second, build.Estimate)
	assert.Equal(t, []string{"build-cache"}, build.Resources)

	cmd, diags := build.Arguments["command"].Value(nil)
	require.False(t, diags.HasErrors())
	assert.True(t, cmd.RawEquals(cty.StringVal("make build")))

	test := model.Plan.Steps[1]
	assert.Equal(t, []string{"shell.build"}, test.DependsOn)

	retries, diags := test.Arguments["retries"].Value(nil)
	require.False(t, diags.HasErrors())
	assert.True(t, retries.RawEquals(cty.NumberIntVal(3)))

	verbose, diags := test.Arguments["verbose"].Value(nil)
	require.False(t, diags.HasErrors())
	assert.True(t, verbose.RawEquals(cty.True))
}

func TestLoadMixedFormats(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	// Manifests stay HCL even when the plan is YAML.
	writeFile(t, dir, "manifest.hcl", `
runner "shell" {
  lifecycle {
    on_run = "OnRunShell"
  }
  input "command" {
    type = string
  }
}
`)
	writeFile(t, dir, "plan.yml", `
steps:
  - runner: shell
    name: only
    arguments:
      command: "true"
`)

	model, _, err := NewLoader(stephcl.NewLoader()).Load(ctx, dir)
	require.NoError(t, err)
	assert.Contains(t, model.Runners, "shell")
	require.Len(t, model.Plan.Steps, 1)
	assert.Equal(t, "shell.only", model.Plan.Steps[0].ID())
}

func TestLoadYAMLNestedArguments(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	writeFile(t, dir, "plan.yaml", `
steps:
  - runner: notify
    name: dashboard
    arguments:
      payload:
        run: nightly
        tags: [ci, fast]
`)

	model, _, err := NewLoader(stephcl.NewLoader()).Load(ctx, dir)
	require.NoError(t, err)
	require.Len(t, model.Plan.Steps, 1)

	payload, diags := model.Plan.Steps[0].Arguments["payload"].Value(nil)
	require.False(t, diags.HasErrors())
	require.True(t, payload.Type().IsObjectType())
	assert.True(t, payload.GetAttr("run").RawEquals(cty.StringVal("nightly")))
	tags := payload.GetAttr("tags")
	require.True(t, tags.Type().IsTupleType())
	assert.Equal(t, 2, tags.LengthInt())
}

func TestLoadYAMLErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("step without a name", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "plan.yaml", `
steps:
  - runner: shell
`)
		_, _, err := NewLoader(stephcl.NewLoader()).Load(ctx, dir)
		require.Error(t, err)
		assert.ErrorContains(t, err, "'runner' and 'name'")
	})

	t.Run("invalid estimate", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "plan.yaml", `
steps:
  - runner: shell
    name: a
    estimate: soonish
`)
		_, _, err := NewLoader(stephcl.NewLoader()).Load(ctx, dir)
		require.Error(t, err)
		assert.ErrorContains(t, err, "invalid estimate")
	})

	t.Run("malformed document", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "plan.yaml", "steps: [unclosed")
		_, _, err := NewLoader(stephcl.NewLoader()).Load(ctx, dir)
		require.Error(t, err)
	})
}
