package pythonstatic

import (
	"io"
	"io/ioutil"

	"github.com/kiteco/pyabsint/kite-go/lang/python/pythonstate"
	"github.com/kiteco/pyabsint/kite-golib/errors"
	yaml "gopkg.in/yaml.v2"
)

// DefaultOptions are the default options for the Analyzer
var DefaultOptions = Options{
	Context:           pythonstate.CallSiteSensitive,
	ContextDepth:      2,
	FlowSensitive:     true,
	MaxIterations:     10000,
	MaxRecursionDepth: 3,
	DirectCalls:       true,
	OracleCacheSize:   4096,
}

// Options represents the options for the Analyzer
type Options struct {
	// Context is the context sensitivity policy
	Context pythonstate.Policy `yaml:"context"`
	// ContextDepth is the number of call sites or receivers a context remembers
	ContextDepth int `yaml:"context_depth"`
	// FlowSensitive selects worklist-driven analysis along control flow; otherwise function
	// bodies are analyzed by repeated in-order passes
	FlowSensitive bool `yaml:"flow_sensitive"`
	// MaxIterations bounds the number of statements interpreted per analysis of a body
	MaxIterations int `yaml:"max_iterations"`
	// MaxRecursionDepth bounds how many times a function may occur on the call stack
	MaxRecursionDepth int `yaml:"max_recursion_depth"`
	// DirectCalls analyzes callees synchronously at their call sites
	DirectCalls bool `yaml:"direct_calls"`
	// OracleCacheSize is the number of oracle answers to cache; 0 disables caching
	OracleCacheSize int `yaml:"oracle_cache_size"`
}

// LoadOptions decodes YAML options on top of DefaultOptions and validates them
func LoadOptions(r io.Reader) (Options, error) {
	buf, err := ioutil.ReadAll(r)
	if err != nil {
		return Options{}, errors.Wrapf(err, "error reading options")
	}
	opts := DefaultOptions
	if err := yaml.UnmarshalStrict(buf, &opts); err != nil {
		return Options{}, errors.Wrapf(err, "error decoding options")
	}
	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// Validate checks that the options describe a runnable configuration
func (o Options) Validate() error {
	if _, err := pythonstate.ParsePolicy(string(o.Context)); err != nil {
		return err
	}
	switch {
	case o.ContextDepth < 0:
		return errors.Errorf("context depth must not be negative, got %d", o.ContextDepth)
	case o.MaxIterations < 1:
		return errors.Errorf("max iterations must be at least 1, got %d", o.MaxIterations)
	case o.MaxRecursionDepth < 1:
		return errors.Errorf("max recursion depth must be at least 1, got %d", o.MaxRecursionDepth)
	case o.OracleCacheSize < 0:
		return errors.Errorf("oracle cache size must not be negative, got %d", o.OracleCacheSize)
	}
	return nil
}

func (o Options) stateConfig() pythonstate.Config {
	policy, _ := pythonstate.ParsePolicy(string(o.Context))
	return pythonstate.Config{
		Policy:        policy,
		K:             o.ContextDepth,
		FlowSensitive: o.FlowSensitive,
	}
}
