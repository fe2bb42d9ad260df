package orchestrator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Hats-Protocol/dao-factory-sub001/internal/plan"
	"github.com/Hats-Protocol/dao-factory-sub001/internal/resolve"
)

// Environment variable keys handed to a unit invocation. A unit reads these
// once at startup; the orchestrator never mutates a context after handing
// it over, and each invocation gets a freshly built context, so nothing
// leaks between sibling invocations.
const (
	EnvKeyChainID        = "DEPLOY_CHAIN_ID"
	EnvKeyConfigRef      = "DEPLOY_CONFIG"
	EnvKeyFactoryAddress = "DEPLOY_UPSTREAM_FACTORY"
	EnvKeyPrimaryAddress = "DEPLOY_UPSTREAM_PRIMARY"

	// Shared references and parameters are keyed per name:
	// DEPLOY_REF_<NAME>, DEPLOY_PARAM_ID_<NAME>, DEPLOY_UNIT_PARAM_<NAME>.
	envKeyRefPrefix       = "DEPLOY_REF_"
	envKeyParamIDPrefix   = "DEPLOY_PARAM_ID_"
	envKeyUnitParamPrefix = "DEPLOY_UNIT_PARAM_"
)

// EnvContext is the explicit key/value bundle a unit invocation receives:
// the unit's configuration reference plus the resolved upstream dependency.
// It replaces ambient process-global parameter passing; the only way values
// reach a unit is through the context the orchestrator built for it.
//
// An EnvContext is immutable after construction. Lifetime is one
// invocation.
type EnvContext struct {
	values map[string]string
}

// NewEnvContext builds the invocation context for one unit from the run's
// dependency bundle. Addresses and parameter values are copied verbatim
// from the bundle, never re-derived, so two contexts built from the same
// bundle carry byte-identical shared values.
//
// Name mangling maps "-", ".", and " " to "_", so distinct names can land
// on the same key (e.g. "top-hat" and "top.hat"). Such a collision fails
// construction: silently letting one value shadow the other would hand the
// unit an environment that does not match the resolved bundle.
func NewEnvContext(dep resolve.Dependency, unit plan.Unit) (*EnvContext, error) {
	values := map[string]string{
		EnvKeyChainID:        fmt.Sprintf("%d", dep.ChainID),
		EnvKeyFactoryAddress: string(dep.FactoryAddress),
		EnvKeyPrimaryAddress: string(dep.PrimaryAddress),
	}
	if unit.ConfigRef != "" {
		values[EnvKeyConfigRef] = unit.ConfigRef
	}

	set := func(key, value, name string) error {
		if _, dup := values[key]; dup {
			return fmt.Errorf("environment key %s: name %q collides with another name after mangling", key, name)
		}
		values[key] = value
		return nil
	}

	for name, addr := range dep.SharedReferences {
		if err := set(envKeyRefPrefix+envName(name), string(addr), name); err != nil {
			return nil, err
		}
	}
	for name, id := range dep.ParameterIDs {
		if err := set(envKeyParamIDPrefix+envName(name), fmt.Sprintf("%d", id), name); err != nil {
			return nil, err
		}
	}
	for name, val := range unit.Params {
		if err := set(envKeyUnitParamPrefix+envName(name), fmt.Sprintf("%d", val), name); err != nil {
			return nil, err
		}
	}
	return &EnvContext{values: values}, nil
}

// Lookup returns the value for a key and whether it is present.
func (e *EnvContext) Lookup(key string) (string, bool) {
	v, ok := e.values[key]
	return v, ok
}

// Keys returns all keys in sorted order.
func (e *EnvContext) Keys() []string {
	keys := make([]string, 0, len(e.values))
	for k := range e.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Environ returns the context as KEY=VALUE pairs in sorted key order,
// suitable for a subprocess environment.
func (e *EnvContext) Environ() []string {
	pairs := make([]string, 0, len(e.values))
	for _, k := range e.Keys() {
		pairs = append(pairs, k+"="+e.values[k])
	}
	return pairs
}

// envName upper-cases a name and replaces separators so it is usable as an
// environment variable suffix.
func envName(name string) string {
	s := strings.ToUpper(name)
	s = strings.NewReplacer("-", "_", ".", "_", " ", "_").Replace(s)
	return s
}
