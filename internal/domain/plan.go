package domain

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Plan is a deployment plan: a fixed, hand-ordered graph of components to
// bootstrap onto a ledger in one run, plus the warm-up, wiring and handover
// work around it. The component order is significant and chosen by the plan
// author; Validate only checks that every reference can be satisfied, it
// never reorders.
type Plan struct {
	Graph       string            `yaml:"graph"`
	Description string            `yaml:"description,omitempty"`
	AlignTime   Duration          `yaml:"align_time,omitempty"`
	Params      map[string]string `yaml:"params,omitempty"`
	Oracles     []*OracleSpec     `yaml:"oracles,omitempty"`
	Components  []*ComponentSpec  `yaml:"components"`
	Auxiliary   []*ComponentSpec  `yaml:"auxiliary,omitempty"`
	Wiring      []*WiringSpec     `yaml:"wiring,omitempty"`
	Handover    *HandoverSpec     `yaml:"handover,omitempty"`
}

// ComponentSpec describes one component to create: the build artifact to
// instantiate and its constructor arguments. Arguments may be literals,
// ${param} substitutions, or @name references to other entries in the plan.
type ComponentSpec struct {
	Name     string     `yaml:"name"`
	Artifact string     `yaml:"artifact"`
	Args     []ArgValue `yaml:"args,omitempty"`
}

// WiringSpec is a post-deploy configuration call: a method signature invoked
// on an already-created component once every component exists.
type WiringSpec struct {
	Target string     `yaml:"target"`
	Method string     `yaml:"method"`
	Args   []ArgValue `yaml:"args,omitempty"`
}

// Key identifies a wiring call for the at-most-once-per-run guarantee.
func (w *WiringSpec) Key() string {
	return w.Target + "." + w.Method
}

// OracleSpec names a price feed to warm up before anything else runs. Either
// an existing feed address or an artifact for a mock to deploy first.
// Rounds/Gap of zero fall back to the configured defaults.
type OracleSpec struct {
	Name     string   `yaml:"name"`
	Address  string   `yaml:"address,omitempty"`
	Artifact string   `yaml:"artifact,omitempty"`
	Price    string   `yaml:"price"`
	Rounds   int      `yaml:"rounds,omitempty"`
	Gap      Duration `yaml:"gap,omitempty"`
}

// HandoverSpec describes the final ownership transfer: which component's
// administrative control moves, and to whom. A MinDelay of zero falls back
// to the configured default. AutoAccept is only honored on ledgers that can
// fast-forward their clock past the delay.
type HandoverSpec struct {
	Authority  string   `yaml:"authority"`
	NewOwner   string   `yaml:"new_owner"`
	MinDelay   Duration `yaml:"min_delay"`
	AutoAccept bool     `yaml:"auto_accept,omitempty"`
}

// ArgValue is one constructor or call argument: either a scalar (literal,
// reference or substitution) or a nested list mapping onto an array/tuple
// ABI parameter.
type ArgValue struct {
	Scalar string
	List   []ArgValue
	isList bool
}

// Arg builds a scalar argument. Test and plan-builder convenience.
func Arg(s string) ArgValue { return ArgValue{Scalar: s} }

// ArgList builds a list argument.
func ArgList(items ...ArgValue) ArgValue { return ArgValue{List: items, isList: true} }

// IsList reports whether the argument is a nested list.
func (a ArgValue) IsList() bool { return a.isList }

func (a ArgValue) String() string {
	if !a.isList {
		return a.Scalar
	}
	parts := make([]string, len(a.List))
	for i, item := range a.List {
		parts[i] = item.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// UnmarshalYAML accepts either a scalar or a sequence node.
func (a *ArgValue) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		a.Scalar = node.Value
		a.isList = false
		return nil
	case yaml.SequenceNode:
		a.isList = true
		return node.Decode(&a.List)
	default:
		return fmt.Errorf("argument must be a scalar or a sequence, got %s", nodeKind(node))
	}
}

// MarshalYAML renders the argument the way it was written.
func (a ArgValue) MarshalYAML() (interface{}, error) {
	if a.isList {
		return a.List, nil
	}
	return a.Scalar, nil
}

// Argument reference forms. "@name" points at another plan entry, "$deployer"
// and "$zero" are built-ins, "${param}" substitutes from the params block.
const (
	RefDeployer = "$deployer"
	RefZero     = "$zero"
)

// ComponentRef reports whether s is an @name reference and returns the name.
func ComponentRef(s string) (string, bool) {
	if strings.HasPrefix(s, "@") && len(s) > 1 {
		return s[1:], true
	}
	return "", false
}

// ParamRef reports whether s is a ${param} substitution and returns the key.
func ParamRef(s string) (string, bool) {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") && len(s) > 3 {
		return s[2 : len(s)-1], true
	}
	return "", false
}

// ComponentIndex returns the position of a named component in the creation
// order, or -1. Auxiliary entries are not part of the predicted sequence and
// are not found here.
func (p *Plan) ComponentIndex(name string) int {
	for i, c := range p.Components {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Component returns the named spec from the main or auxiliary list.
func (p *Plan) Component(name string) *ComponentSpec {
	for _, c := range p.Components {
		if c.Name == name {
			return c
		}
	}
	for _, c := range p.Auxiliary {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ForwardRefs lists, for the component at index i, the names it references at
// the same or a later index. These are the references that can only be
// satisfied by address prediction.
func (p *Plan) ForwardRefs(i int) []string {
	var fwd []string
	seen := map[string]bool{}
	var walk func(ArgValue)
	walk = func(a ArgValue) {
		if a.IsList() {
			for _, item := range a.List {
				walk(item)
			}
			return
		}
		name, ok := ComponentRef(a.Scalar)
		if !ok || seen[name] {
			return
		}
		if j := p.ComponentIndex(name); j >= i {
			seen[name] = true
			fwd = append(fwd, name)
		}
	}
	for _, a := range p.Components[i].Args {
		walk(a)
	}
	return fwd
}

// Validate checks the whole plan before any transaction is submitted:
// unique names, resolvable references, parseable reference phases. It
// returns a PlanValidationError carrying every problem found.
func (p *Plan) Validate() error {
	var problems []string
	addf := func(format string, args ...interface{}) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if p.Graph == "" {
		addf("graph name is required")
	}
	if len(p.Components) == 0 {
		addf("at least one component is required")
	}
	if p.AlignTime < 0 {
		addf("align_time must not be negative")
	}

	// Name uniqueness across everything that can be referenced.
	names := map[string]string{}
	claim := func(name, kind string) {
		if name == "" {
			addf("%s entry with empty name", kind)
			return
		}
		if prev, taken := names[name]; taken {
			addf("name %q used by both a %s and a %s entry", name, prev, kind)
			return
		}
		names[name] = kind
	}
	for _, o := range p.Oracles {
		claim(o.Name, "oracle")
	}
	for _, c := range p.Components {
		claim(c.Name, "component")
	}
	for _, c := range p.Auxiliary {
		claim(c.Name, "auxiliary")
	}

	// References resolve against what exists by the phase they run in.
	// Components see oracles and other components; wiring the same; auxiliary
	// additionally see earlier auxiliary entries; handover sees everything.
	known := func(kinds ...string) map[string]bool {
		ok := map[string]bool{}
		for name, kind := range names {
			for _, k := range kinds {
				if kind == k {
					ok[name] = true
				}
			}
		}
		return ok
	}
	creationScope := known("oracle", "component")

	checkArgs := func(where string, args []ArgValue, scope map[string]bool) {
		var walk func(ArgValue)
		walk = func(a ArgValue) {
			if a.IsList() {
				for _, item := range a.List {
					walk(item)
				}
				return
			}
			if name, ok := ComponentRef(a.Scalar); ok && !scope[name] {
				addf("%s references unknown or not-yet-live entry %q", where, name)
			}
			if key, ok := ParamRef(a.Scalar); ok {
				if _, defined := p.Params[key]; !defined {
					addf("%s uses undefined param %q", where, key)
				}
			}
		}
		for _, a := range args {
			walk(a)
		}
	}

	for _, o := range p.Oracles {
		switch {
		case o.Address == "" && o.Artifact == "":
			addf("oracle %q needs an address or an artifact", o.Name)
		case o.Address != "" && o.Artifact != "":
			addf("oracle %q must not set both address and artifact", o.Name)
		}
		if o.Price == "" {
			addf("oracle %q needs a price", o.Name)
		}
		if o.Rounds < 0 {
			addf("oracle %q rounds must not be negative", o.Name)
		}
		if o.Gap < 0 {
			addf("oracle %q gap must not be negative", o.Name)
		}
	}

	for _, c := range p.Components {
		if c.Artifact == "" {
			addf("component %q needs an artifact", c.Name)
		}
		checkArgs(fmt.Sprintf("component %q", c.Name), c.Args, creationScope)
	}

	auxScope := known("oracle", "component")
	for _, c := range p.Auxiliary {
		if c.Artifact == "" {
			addf("auxiliary %q needs an artifact", c.Name)
		}
		checkArgs(fmt.Sprintf("auxiliary %q", c.Name), c.Args, auxScope)
		// Later auxiliary entries may reference this one.
		if c.Name != "" {
			auxScope[c.Name] = true
		}
	}

	wiringSeen := map[string]bool{}
	for _, w := range p.Wiring {
		where := fmt.Sprintf("wiring call %s.%s", w.Target, w.Method)
		if w.Target == "" || !creationScope[w.Target] {
			addf("%s targets unknown component %q", where, w.Target)
		}
		if !looksLikeSignature(w.Method) {
			addf("%s method must be a signature like setPriceFeed(address)", where)
		}
		if wiringSeen[w.Key()] {
			addf("%s appears more than once; wiring calls are submitted at most once per run", where)
		}
		wiringSeen[w.Key()] = true
		checkArgs(where, w.Args, creationScope)
	}

	if h := p.Handover; h != nil {
		handoverScope := known("oracle", "component", "auxiliary")
		if h.Authority == "" || !handoverScope[h.Authority] {
			addf("handover authority %q is not a plan entry", h.Authority)
		}
		if name, ok := ComponentRef(h.NewOwner); ok {
			if !handoverScope[name] {
				addf("handover new_owner references unknown entry %q", name)
			}
		} else if h.NewOwner == "" {
			addf("handover needs a new_owner")
		}
		if h.MinDelay < 0 {
			addf("handover min_delay must not be negative")
		}
	}

	if len(problems) > 0 {
		return &PlanValidationError{Graph: p.Graph, Problems: problems}
	}
	return nil
}

// looksLikeSignature is a cheap shape check; full parsing happens when the
// call is encoded.
func looksLikeSignature(method string) bool {
	open := strings.IndexByte(method, '(')
	return open > 0 && strings.HasSuffix(method, ")")
}
