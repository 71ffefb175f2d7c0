package pythonstatic

import (
	"strings"
	"testing"

	"github.com/kiteco/pyabsint/kite-go/lang/python/pythonstate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOptions(t *testing.T) {
	src := `
context: object
context_depth: 1
flow_sensitive: false
max_recursion_depth: 5
`
	opts, err := LoadOptions(strings.NewReader(src))
	require.NoError(t, err)

	expected := DefaultOptions
	expected.Context = pythonstate.ObjectSensitive
	expected.ContextDepth = 1
	expected.FlowSensitive = false
	expected.MaxRecursionDepth = 5
	assert.Equal(t, expected, opts)
}

func TestLoadOptionsEmpty(t *testing.T) {
	opts, err := LoadOptions(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, DefaultOptions, opts)
}

func TestLoadOptionsErrors(t *testing.T) {
	for _, src := range []string{
		"context: everything",
		"context_depth: -1",
		"max_iterations: 0",
		"max_recursion_depth: 0",
		"oracle_cache_size: -4",
		"unknown_field: 1",
		"context: [",
	} {
		_, err := LoadOptions(strings.NewReader(src))
		assert.Error(t, err, src)
	}
}

func TestOptionsStateConfig(t *testing.T) {
	opts := DefaultOptions
	opts.Context = "KCFA"
	require.NoError(t, opts.Validate())

	cfg := opts.stateConfig()
	assert.Equal(t, pythonstate.KCFA, cfg.Policy)
	assert.Equal(t, 2, cfg.K)
	assert.True(t, cfg.FlowSensitive)
}
