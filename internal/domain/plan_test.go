package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func validPlan() *Plan {
	return &Plan{
		Graph:  "stable",
		Params: map[string]string{"owner": "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"},
		Oracles: []*OracleSpec{
			{Name: "eth_feed", Artifact: "MockAggregator", Price: "1800"},
		},
		Components: []*ComponentSpec{
			{Name: "core", Artifact: "Core", Args: []ArgValue{Arg("$deployer"), Arg("@vault")}},
			{Name: "vault", Artifact: "Vault", Args: []ArgValue{Arg("@core"), Arg("@eth_feed")}},
		},
		Auxiliary: []*ComponentSpec{
			{Name: "helpers", Artifact: "Helpers", Args: []ArgValue{Arg("@core")}},
		},
		Wiring: []*WiringSpec{
			{Target: "core", Method: "setVault(address)", Args: []ArgValue{Arg("@vault")}},
		},
		Handover: &HandoverSpec{
			Authority: "core",
			NewOwner:  "${owner}",
			MinDelay:  Duration(72 * time.Hour),
		},
	}
}

func TestPlanValidateAccepts(t *testing.T) {
	assert.NoError(t, validPlan().Validate())
}

func TestPlanValidateRejects(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *Plan)
		problem string
	}{
		{
			name:    "missing graph name",
			mutate:  func(p *Plan) { p.Graph = "" },
			problem: "graph name is required",
		},
		{
			name:    "no components",
			mutate:  func(p *Plan) { p.Components = nil },
			problem: "at least one component is required",
		},
		{
			name: "duplicate name across kinds",
			mutate: func(p *Plan) {
				p.Auxiliary = append(p.Auxiliary, &ComponentSpec{Name: "core", Artifact: "X"})
			},
			problem: "used by both",
		},
		{
			name: "component references unknown entry",
			mutate: func(p *Plan) {
				p.Components[0].Args = append(p.Components[0].Args, Arg("@ghost"))
			},
			problem: `references unknown or not-yet-live entry "ghost"`,
		},
		{
			name: "component references auxiliary entry",
			mutate: func(p *Plan) {
				p.Components[0].Args = append(p.Components[0].Args, Arg("@helpers"))
			},
			problem: `references unknown or not-yet-live entry "helpers"`,
		},
		{
			name: "undefined param",
			mutate: func(p *Plan) {
				p.Components[0].Args = append(p.Components[0].Args, Arg("${fee}"))
			},
			problem: `uses undefined param "fee"`,
		},
		{
			name: "reference nested in a list is still checked",
			mutate: func(p *Plan) {
				p.Components[0].Args = append(p.Components[0].Args, ArgList(Arg("1"), Arg("@ghost")))
			},
			problem: `references unknown or not-yet-live entry "ghost"`,
		},
		{
			name:    "oracle needs address or artifact",
			mutate:  func(p *Plan) { p.Oracles[0].Artifact = "" },
			problem: "needs an address or an artifact",
		},
		{
			name:    "oracle must not set both",
			mutate:  func(p *Plan) { p.Oracles[0].Address = "0x1" },
			problem: "must not set both",
		},
		{
			name:    "oracle needs price",
			mutate:  func(p *Plan) { p.Oracles[0].Price = "" },
			problem: "needs a price",
		},
		{
			name:    "wiring target must exist",
			mutate:  func(p *Plan) { p.Wiring[0].Target = "ghost" },
			problem: `targets unknown component "ghost"`,
		},
		{
			name:    "wiring method must look like a signature",
			mutate:  func(p *Plan) { p.Wiring[0].Method = "setVault" },
			problem: "must be a signature",
		},
		{
			name: "duplicate wiring call",
			mutate: func(p *Plan) {
				p.Wiring = append(p.Wiring, &WiringSpec{
					Target: "core", Method: "setVault(address)",
				})
			},
			problem: "more than once",
		},
		{
			name:    "handover authority must be a plan entry",
			mutate:  func(p *Plan) { p.Handover.Authority = "ghost" },
			problem: "not a plan entry",
		},
		{
			name:    "handover delay must not be negative",
			mutate:  func(p *Plan) { p.Handover.MinDelay = Duration(-time.Second) },
			problem: "min_delay must not be negative",
		},
		{
			name: "handover new_owner reference must resolve",
			mutate: func(p *Plan) {
				p.Handover.NewOwner = "@ghost"
			},
			problem: `new_owner references unknown entry "ghost"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPlan()
			tt.mutate(p)
			err := p.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrPlanInvalid)

			var verr *PlanValidationError
			require.ErrorAs(t, err, &verr)
			joined := ""
			for _, problem := range verr.Problems {
				joined += problem + "\n"
			}
			assert.Contains(t, joined, tt.problem)
		})
	}
}

func TestPlanValidateCollectsEverything(t *testing.T) {
	p := validPlan()
	p.Graph = ""
	p.Oracles[0].Price = ""
	p.Wiring[0].Method = "broken"

	err := p.Validate()
	var verr *PlanValidationError
	require.ErrorAs(t, err, &verr)
	assert.GreaterOrEqual(t, len(verr.Problems), 3)
}

func TestForwardRefs(t *testing.T) {
	p := validPlan()

	// core at index 0 references vault at index 1: forward.
	assert.Equal(t, []string{"vault"}, p.ForwardRefs(0))

	// vault references core (behind) and eth_feed (an oracle, live before
	// the sequence): no forward refs.
	assert.Empty(t, p.ForwardRefs(1))
}

func TestForwardRefsSelfReference(t *testing.T) {
	p := &Plan{Graph: "g", Components: []*ComponentSpec{
		{Name: "solo", Artifact: "Solo", Args: []ArgValue{Arg("@solo")}},
	}}
	assert.Equal(t, []string{"solo"}, p.ForwardRefs(0))
}

func TestComponentLookup(t *testing.T) {
	p := validPlan()
	assert.Equal(t, 1, p.ComponentIndex("vault"))
	assert.Equal(t, -1, p.ComponentIndex("helpers"), "auxiliary entries are outside the sequence")
	require.NotNil(t, p.Component("helpers"))
	assert.Nil(t, p.Component("ghost"))
}

func TestPlanYAMLRoundTrip(t *testing.T) {
	doc := `
graph: stable
align_time: 168h
params:
  owner: "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
oracles:
  - name: eth_feed
    artifact: MockAggregator
    price: "1800"
    rounds: 3
    gap: 10s
components:
  - name: core
    artifact: Core
    args: ["$deployer", "@vault"]
  - name: vault
    artifact: Vault
    args: ["@core", ["1", "2", "${owner}"]]
wiring:
  - target: core
    method: setVault(address)
    args: ["@vault"]
handover:
  authority: core
  new_owner: "${owner}"
  min_delay: 72h
  auto_accept: true
`
	var p Plan
	require.NoError(t, yaml.Unmarshal([]byte(doc), &p))
	require.NoError(t, p.Validate())

	assert.Equal(t, "stable", p.Graph)
	assert.Equal(t, Duration(168 * time.Hour), p.AlignTime)
	require.Len(t, p.Components, 2)
	assert.Equal(t, "$deployer", p.Components[0].Args[0].Scalar)

	nested := p.Components[1].Args[1]
	require.True(t, nested.IsList())
	assert.Equal(t, "${owner}", nested.List[2].Scalar)

	assert.True(t, p.Handover.AutoAccept)
	assert.Equal(t, Duration(72 * time.Hour), p.Handover.MinDelay)

	out, err := yaml.Marshal(&p)
	require.NoError(t, err)
	var back Plan
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Equal(t, p.Components[1].Args[1].String(), back.Components[1].Args[1].String())
}

func TestArgValueRejectsMapping(t *testing.T) {
	var a ArgValue
	err := yaml.Unmarshal([]byte("key: value"), &a)
	assert.Error(t, err)
}
