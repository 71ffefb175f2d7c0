package pythonoracle

import (
	lru "github.com/hashicorp/golang-lru"
	"github.com/kiteco/pyabsint/kite-golib/errors"
)

// NewCachingOracle wraps another oracle and caches up to size of its answers.
// Cache entries are keyed by the oracle's digest version, so answers from a previous digest are
// never served. Errors are not cached.
func NewCachingOracle(o Oracle, size int) (Oracle, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, errors.Wrapf(err, "error creating oracle cache of size %d", size)
	}
	return &cachingOracle{oracle: o, cache: cache}, nil
}

// cachingOracle wraps an Oracle and caches its responses
type cachingOracle struct {
	oracle Oracle
	cache  *lru.Cache
}

func (c *cachingOracle) cacheKey(digest, desc string) string {
	return digest + "_" + desc
}

// cachingError returns a cached result if it exists. Otherwise valueProvider is called and a
// successful result is cached and then returned.
func (c *cachingOracle) cachingError(desc string, valueProvider func() (interface{}, error)) (interface{}, error) {
	digest, err := c.oracle.DigestVersion()
	if err != nil {
		// without a digest the entry could outlive the answers it was computed from
		return valueProvider()
	}

	key := c.cacheKey(digest, desc)
	if v, ok := c.cache.Get(key); ok {
		return v, nil
	}

	v, err := valueProvider()
	if err != nil {
		return v, err
	}
	c.cache.Add(key, v)
	return v, nil
}

// PossibleCallees implements Oracle
func (c *cachingOracle) PossibleCallees(site CallSite, ctx ContextKey) ([]FunctionSymbol, error) {
	v, err := c.cachingError(describe("PossibleCallees", site, ctx), func() (interface{}, error) {
		return c.oracle.PossibleCallees(site, ctx)
	})
	res, _ := v.([]FunctionSymbol)
	return res, err
}

// PointsTo implements Oracle
func (c *cachingOracle) PointsTo(v Variable, ctx ContextKey) (PointsToSet, error) {
	x, err := c.cachingError(describe("PointsTo", v, ctx), func() (interface{}, error) {
		return c.oracle.PointsTo(v, ctx)
	})
	res, _ := x.(PointsToSet)
	return res, err
}

// FieldPointsTo implements Oracle
func (c *cachingOracle) FieldPointsTo(obj HeapObject, field FieldKey) (PointsToSet, error) {
	x, err := c.cachingError(describe("FieldPointsTo", obj, field), func() (interface{}, error) {
		return c.oracle.FieldPointsTo(obj, field)
	})
	res, _ := x.(PointsToSet)
	return res, err
}

// MayAlias implements Oracle
func (c *cachingOracle) MayAlias(a, b Variable, ctx ContextKey) (bool, error) {
	x, err := c.cachingError(describe("MayAlias", a, b, ctx), func() (interface{}, error) {
		return c.oracle.MayAlias(a, b, ctx)
	})
	res, _ := x.(bool)
	return res, err
}

// IsSingleton implements Oracle
func (c *cachingOracle) IsSingleton(t Target, ctx ContextKey) (bool, error) {
	x, err := c.cachingError(describe("IsSingleton", t, ctx), func() (interface{}, error) {
		return c.oracle.IsSingleton(t, ctx)
	})
	res, _ := x.(bool)
	return res, err
}

// CallGraphSuccessors implements Oracle
func (c *cachingOracle) CallGraphSuccessors(fn FunctionSymbol) ([]FunctionSymbol, error) {
	x, err := c.cachingError(describe("CallGraphSuccessors", fn.Name), func() (interface{}, error) {
		return c.oracle.CallGraphSuccessors(fn)
	})
	res, _ := x.([]FunctionSymbol)
	return res, err
}

// DigestVersion implements Oracle
func (c *cachingOracle) DigestVersion() (string, error) {
	return c.oracle.DigestVersion()
}
