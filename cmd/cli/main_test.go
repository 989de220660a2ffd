package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/stepwave/internal/hcl"
	"github.com/vk/stepwave/internal/yamlplan"
)

func TestRun_PanicRecovery(t *testing.T) {
	t.Parallel()

	// A syntax error in the plan makes app.NewApp panic during loading; run
	// must recover it and hand back a regular error.
	invalidHCL := `
step "print" "A" {
	arguments {
`
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "main.hcl")
	require.NoError(t, os.WriteFile(filePath, []byte(invalidHCL), 0o600))

	out := &bytes.Buffer{}
	// The default modules path is relative to the working directory; point
	// it at an empty temp dir so loading reaches the broken plan file.
	runErr := run(out, []string{"-modules-path", t.TempDir(), filePath})

	require.Error(t, runErr)
	assert.Contains(t, runErr.Error(), "application startup panicked")
	assert.Contains(t, runErr.Error(), "failed to parse")
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	err := run(out, []string{"-h"})

	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	assert.Contains(t, out.String(), "Usage:", "expected help text on the output buffer")
}

func TestRun_InvalidFlag(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	err := run(out, []string{"-log-format", "xml", "plan.hcl"})
	require.Error(t, err)
}

func TestLoaderFor(t *testing.T) {
	t.Parallel()

	assert.IsType(t, &hcl.Loader{}, loaderFor("plans/ci.hcl"))
	assert.IsType(t, &hcl.Loader{}, loaderFor("plans"))
	assert.IsType(t, &yamlplan.Loader{}, loaderFor("plans/ci.yaml"))
	assert.IsType(t, &yamlplan.Loader{}, loaderFor("PLANS/CI.YML"))
}
