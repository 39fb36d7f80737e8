package domain

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Bindings is the resolution context for plan arguments at one point in a
// run: the deployer identity, the plan's params, and every name that has an
// address by now. During the creation phase the address of a same-or-later
// component is its prediction; after the phase every address is live.
type Bindings struct {
	Deployer  common.Address
	Params    map[string]string
	Addresses map[string]common.Address
}

// NewBindings builds an empty resolution context for a deployer.
func NewBindings(deployer common.Address, params map[string]string) *Bindings {
	return &Bindings{
		Deployer:  deployer,
		Params:    params,
		Addresses: make(map[string]common.Address),
	}
}

// Bind registers an address for a plan entry name.
func (b *Bindings) Bind(name string, addr common.Address) {
	b.Addresses[name] = addr
}

// Lookup returns the bound address for a name.
func (b *Bindings) Lookup(name string) (common.Address, bool) {
	addr, ok := b.Addresses[name]
	return addr, ok
}

// Resolve replaces every reference and substitution in a with a literal,
// preserving list structure. Plain literals pass through untouched.
func (b *Bindings) Resolve(a ArgValue) (ArgValue, error) {
	if a.IsList() {
		items := make([]ArgValue, len(a.List))
		for i, item := range a.List {
			resolved, err := b.Resolve(item)
			if err != nil {
				return ArgValue{}, err
			}
			items[i] = resolved
		}
		return ArgList(items...), nil
	}

	s := a.Scalar
	switch s {
	case RefDeployer:
		return Arg(b.Deployer.Hex()), nil
	case RefZero:
		return Arg(ZeroAddress.Hex()), nil
	}
	if name, ok := ComponentRef(s); ok {
		addr, bound := b.Addresses[name]
		if !bound {
			return ArgValue{}, fmt.Errorf("no address bound for %q", name)
		}
		return Arg(addr.Hex()), nil
	}
	if key, ok := ParamRef(s); ok {
		v, defined := b.Params[key]
		if !defined {
			return ArgValue{}, fmt.Errorf("param %q is not defined", key)
		}
		return Arg(v), nil
	}
	return a, nil
}

// ResolveAll resolves a full argument list.
func (b *Bindings) ResolveAll(args []ArgValue) ([]ArgValue, error) {
	out := make([]ArgValue, len(args))
	for i, a := range args {
		resolved, err := b.Resolve(a)
		if err != nil {
			return nil, err
		}
		out[i] = resolved
	}
	return out, nil
}
