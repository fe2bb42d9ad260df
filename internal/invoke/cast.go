package invoke

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/Hats-Protocol/dao-factory-sub001/internal/artifact"
	"github.com/Hats-Protocol/dao-factory-sub001/internal/resolve"
)

// Default accessor signatures exposed by the deployed factory. Overridable
// per CastReader instance when a factory uses different names.
var (
	DefaultPrimaryAccessor = "dao()(address)"

	DefaultReferenceAccessors = map[string]string{
		"hats":              "hats()(address)",
		"hatsModuleFactory": "hatsModuleFactory()(address)",
	}

	DefaultParameterAccessors = map[string]string{
		"topHatId":    "topHatId()(uint256)",
		"autoAdminId": "autoAdminId()(uint256)",
	}
)

// CastReader implements resolve.FactoryReader by shelling out to a cast
// binary for each accessor read. All calls are eth_call reads; nothing is
// signed or broadcast.
type CastReader struct {
	// Bin is the cast executable. Empty means "cast" on PATH.
	Bin string

	// RPCURL is the endpoint the reads go to.
	RPCURL string

	// PrimaryAccessor, ReferenceAccessors, and ParameterAccessors name the
	// factory's read methods. Zero values fall back to the defaults above.
	PrimaryAccessor    string
	ReferenceAccessors map[string]string
	ParameterAccessors map[string]string
}

var _ resolve.FactoryReader = (*CastReader)(nil)

// PrimaryComponent reads the factory's primary component address.
func (r *CastReader) PrimaryComponent(ctx context.Context, factory artifact.Address) (artifact.Address, error) {
	sig := r.PrimaryAccessor
	if sig == "" {
		sig = DefaultPrimaryAccessor
	}
	out, err := r.call(ctx, factory, sig)
	if err != nil {
		return "", err
	}
	return artifact.Address(out), nil
}

// SharedReferences reads every configured reference accessor.
func (r *CastReader) SharedReferences(ctx context.Context, factory artifact.Address) (map[string]artifact.Address, error) {
	accessors := r.ReferenceAccessors
	if accessors == nil {
		accessors = DefaultReferenceAccessors
	}
	refs := make(map[string]artifact.Address, len(accessors))
	for name, sig := range accessors {
		out, err := r.call(ctx, factory, sig)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		refs[name] = artifact.Address(out)
	}
	return refs, nil
}

// ParameterIDs reads every configured parameter accessor.
func (r *CastReader) ParameterIDs(ctx context.Context, factory artifact.Address) (map[string]uint64, error) {
	accessors := r.ParameterAccessors
	if accessors == nil {
		accessors = DefaultParameterAccessors
	}
	params := make(map[string]uint64, len(accessors))
	for name, sig := range accessors {
		out, err := r.call(ctx, factory, sig)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		id, err := parseCastUint(out)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		params[name] = id
	}
	return params, nil
}

// call runs one cast read and returns the trimmed first output line.
func (r *CastReader) call(ctx context.Context, factory artifact.Address, sig string) (string, error) {
	bin := r.Bin
	if bin == "" {
		bin = "cast"
	}

	args := []string{"call", string(factory), sig}
	if r.RPCURL != "" {
		args = append(args, "--rpc-url", r.RPCURL)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("cast call %s %s: %w (%s)", factory, sig, err, strings.TrimSpace(stderr.String()))
	}

	line, _, _ := strings.Cut(strings.TrimSpace(stdout.String()), "\n")
	return strings.TrimSpace(line), nil
}

// parseCastUint parses a typed cast output value as an unsigned integer.
// cast prints uint256 results in decimal, sometimes with a bracketed
// scientific rendering appended ("42 [4.2e1]").
func parseCastUint(out string) (uint64, error) {
	value, _, _ := strings.Cut(out, " ")
	n, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unparsable uint %q: %w", out, err)
	}
	return n, nil
}
