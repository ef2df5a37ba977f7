// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"encoding/binary"

	"github.com/vechain/txexec/thor"
)

func idKey(id uint64) []byte {
	return binary.BigEndian.AppendUint64(nil, id)
}

// Asset is an issued token.
type Asset struct {
	ID                      uint64
	Owner                   thor.Address
	Name                    string
	Abbr                    string
	TotalSupply             uint64
	FrozenSupply            []Frozen // locked part of the owner's supply
	TrxNum                  uint64   // sun paid for Num tokens
	Num                     uint64
	Precision               uint64
	StartTime               uint64
	EndTime                 uint64
	URL                     string
	Description             string
	FreeAssetNetLimit       uint64
	PublicFreeAssetNetLimit uint64
	PublicFreeAssetNetUsage uint64
	PublicLatestFreeNetTime uint64
}

// GetAsset returns the asset with id, or nil.
func (s *State) GetAsset(id uint64) (*Asset, error) {
	var a Asset
	ok, err := s.getRLP(AssetSpace, idKey(id), &a)
	if err != nil || !ok {
		return nil, err
	}
	return &a, nil
}

// SetAsset stores the asset under its id.
func (s *State) SetAsset(a *Asset) error {
	return s.putRLP(AssetSpace, idKey(a.ID), a)
}

// GetAssetIDByName resolves an asset name to the id of the asset first issued with it.
func (s *State) GetAssetIDByName(name string) (uint64, bool, error) {
	raw, ok, err := s.Get(AssetNameSpace, []byte(name))
	if err != nil || !ok {
		return 0, false, err
	}
	return binary.BigEndian.Uint64(raw), true, nil
}

// SetAssetName indexes an asset name.
func (s *State) SetAssetName(name string, id uint64) {
	s.Put(AssetNameSpace, []byte(name), idKey(id))
}

// Witness is a block producer candidate.
type Witness struct {
	Address   thor.Address
	URL       string
	VoteCount uint64
}

// GetWitness returns the witness at addr, or nil.
func (s *State) GetWitness(addr thor.Address) (*Witness, error) {
	var w Witness
	ok, err := s.getRLP(WitnessSpace, addr[:], &w)
	if err != nil || !ok {
		return nil, err
	}
	return &w, nil
}

// SetWitness stores the witness.
func (s *State) SetWitness(w *Witness) error {
	return s.putRLP(WitnessSpace, w.Address[:], w)
}

// VoteRecord keeps the votes of an account before and after the changes made since
// the last maintenance, for the tally done outside the core.
type VoteRecord struct {
	Old []Vote
	New []Vote
}

// GetVoteRecord returns the pending vote change of addr, or nil.
func (s *State) GetVoteRecord(addr thor.Address) (*VoteRecord, error) {
	var r VoteRecord
	ok, err := s.getRLP(VotesSpace, addr[:], &r)
	if err != nil || !ok {
		return nil, err
	}
	return &r, nil
}

// SetVoteRecord stores the pending vote change of addr.
func (s *State) SetVoteRecord(addr thor.Address, r *VoteRecord) error {
	return s.putRLP(VotesSpace, addr[:], r)
}

// ProposalState is the lifecycle of a proposal.
type ProposalState uint8

const (
	ProposalPending ProposalState = iota
	ProposalDisapproved
	ProposalApproved
	ProposalCanceled
)

// Proposal is a governance parameter change waiting for approvals.
type Proposal struct {
	ID             uint64
	Proposer       thor.Address
	Params         []thor.ChainParam
	CreateTime     uint64
	ExpirationTime uint64
	Approvals      []thor.Address
	State          ProposalState
}

// HasApproval reports whether addr approved the proposal.
func (p *Proposal) HasApproval(addr thor.Address) bool {
	for _, a := range p.Approvals {
		if a == addr {
			return true
		}
	}
	return false
}

// GetProposal returns the proposal with id, or nil.
func (s *State) GetProposal(id uint64) (*Proposal, error) {
	var p Proposal
	ok, err := s.getRLP(ProposalSpace, idKey(id), &p)
	if err != nil || !ok {
		return nil, err
	}
	return &p, nil
}

// SetProposal stores the proposal under its id.
func (s *State) SetProposal(p *Proposal) error {
	return s.putRLP(ProposalSpace, idKey(p.ID), p)
}

// Delegation is the resource stake a grantor lends to a recipient.
// Per resource arrays are indexed by thor.Resource.
type Delegation struct {
	From       thor.Address
	To         thor.Address
	Amount     [2]uint64
	ExpireTime [2]uint64 // legacy only, the earliest time the stake can be reclaimed
}

// IsEmpty reports whether nothing is delegated anymore.
func (d *Delegation) IsEmpty() bool {
	return d.Amount[thor.Bandwidth] == 0 && d.Amount[thor.Energy] == 0
}

func delegationKey(from, to thor.Address, v2 bool) []byte {
	k := make([]byte, 0, thor.AddressLength*2+1)
	k = append(append(k, from[:]...), to[:]...)
	if v2 {
		return append(k, 1)
	}
	return append(k, 0)
}

// GetDelegation returns the ledger entry of the (from, to) pair. v2 selects the stake 2.0 ledger.
// A missing entry is returned empty.
func (s *State) GetDelegation(from, to thor.Address, v2 bool) (*Delegation, error) {
	d := Delegation{From: from, To: to}
	if _, err := s.getRLP(DelegationSpace, delegationKey(from, to, v2), &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// SetDelegation stores the ledger entry, deleting it once empty.
func (s *State) SetDelegation(d *Delegation, v2 bool) error {
	key := delegationKey(d.From, d.To, v2)
	if d.IsEmpty() {
		s.Delete(DelegationSpace, key)
		return nil
	}
	return s.putRLP(DelegationSpace, key, d)
}
