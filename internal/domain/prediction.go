package domain

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// ZeroAddress is the all-zero address, usable in plans as $zero.
var ZeroAddress = common.Address{}

// PredictCreation returns the address a creation submitted by deployer at
// the given account nonce will land on. The result is a pure function of
// the pair; nothing about the creation payload participates. This is what
// lets a plan hand a component the address of another component that does
// not exist yet.
func PredictCreation(deployer common.Address, nonce uint64) common.Address {
	return crypto.CreateAddress(deployer, nonce)
}

// Prediction pins one component of a plan to the address it must land on.
type Prediction struct {
	Name    string
	Index   int
	Nonce   uint64
	Address common.Address
}

// PredictSequence maps the plan's component order onto consecutive nonces
// starting at startNonce and predicts every address. The mapping only
// holds if the deployer account submits nothing else in between, so the
// sequencer checks each creation against its prediction as it lands.
func PredictSequence(p *Plan, deployer common.Address, startNonce uint64) []Prediction {
	out := make([]Prediction, len(p.Components))
	for i, c := range p.Components {
		nonce := startNonce + uint64(i)
		out[i] = Prediction{
			Name:    c.Name,
			Index:   i,
			Nonce:   nonce,
			Address: PredictCreation(deployer, nonce),
		}
	}
	return out
}
