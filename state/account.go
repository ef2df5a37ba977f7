// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"sort"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"

	"github.com/vechain/txexec/thor"
)

var (
	ErrBalanceOverflow     = errors.New("balance overflow")
	ErrInsufficientBalance = errors.New("balance is not sufficient")
	ErrTokenOverflow       = errors.New("token balance overflow")
	ErrInsufficientToken   = errors.New("token balance is not sufficient")
)

// Frozen is a legacy frozen balance with its unlock time.
type Frozen struct {
	Amount     uint64
	ExpireTime uint64
}

// Unstake is a pending stake 2.0 withdrawal.
type Unstake struct {
	Resource   thor.Resource
	Amount     uint64
	ExpireTime uint64
}

// Vote is a number of votes cast for a witness.
type Vote struct {
	Witness thor.Address
	Count   uint64
}

// TokenBalance is the amount of one asset held by an account.
type TokenBalance struct {
	ID     uint64
	Amount uint64
}

// AssetNetUsage is the free bandwidth of one asset used by an account.
type AssetNetUsage struct {
	ID         uint64
	Usage      uint64
	LatestTime uint64
}

// Account is the consensus representation of an account.
// Per resource arrays are indexed by thor.Resource.
type Account struct {
	Name               string
	CreateTime         uint64
	Balance            uint64
	IsWitness          bool
	Allowance          uint64
	LatestWithdrawTime uint64

	Frozen         [2]Frozen // legacy freeze of own resources
	DelegatedOut   [2]uint64 // legacy freeze on behalf of others
	Staked         [2]uint64 // stake 2.0, delegated part included
	DelegatedOutV2 [2]uint64 // stake 2.0 delegated to others
	Acquired       [2]uint64 // delegated by others, both versions
	Unstakes       []Unstake

	NetUsage                   uint64
	LatestConsumeTime          uint64
	FreeNetUsage               uint64
	LatestConsumeFreeTime      uint64
	EnergyUsage                uint64
	LatestConsumeTimeForEnergy uint64

	StorageLimit uint64
	StorageUsage uint64

	Votes         []Vote
	Tokens        []TokenBalance // sorted by id
	IssuedAssetID uint64
	AssetNet      []AssetNetUsage // sorted by id

	// StorageEpoch separates contract storage of successive lives of the address.
	StorageEpoch uint64
}

// FrozenFor returns the stake backing the account's quota of resource r.
func (a *Account) FrozenFor(r thor.Resource) uint64 {
	return a.Frozen[r].Amount + a.Staked[r] - a.DelegatedOutV2[r] + a.Acquired[r]
}

// TronPower returns the voting power in whole TRX.
func (a *Account) TronPower() uint64 {
	var sum uint64
	for r := range a.Frozen {
		sum += a.Frozen[r].Amount + a.Staked[r] + a.DelegatedOut[r]
	}
	return sum / thor.TrxPrecision
}

// UsedVotes returns the total of votes cast.
func (a *Account) UsedVotes() uint64 {
	var sum uint64
	for _, v := range a.Votes {
		sum += v.Count
	}
	return sum
}

// TokenBalance returns the balance of asset id.
func (a *Account) TokenBalance(id uint64) uint64 {
	i := sort.Search(len(a.Tokens), func(i int) bool { return a.Tokens[i].ID >= id })
	if i < len(a.Tokens) && a.Tokens[i].ID == id {
		return a.Tokens[i].Amount
	}
	return 0
}

// SetTokenBalance sets the balance of asset id, keeping the list sorted and free of zero entries.
func (a *Account) SetTokenBalance(id, amount uint64) {
	i := sort.Search(len(a.Tokens), func(i int) bool { return a.Tokens[i].ID >= id })
	found := i < len(a.Tokens) && a.Tokens[i].ID == id
	switch {
	case found && amount == 0:
		a.Tokens = append(a.Tokens[:i], a.Tokens[i+1:]...)
	case found:
		a.Tokens[i].Amount = amount
	case amount != 0:
		a.Tokens = append(a.Tokens, TokenBalance{})
		copy(a.Tokens[i+1:], a.Tokens[i:])
		a.Tokens[i] = TokenBalance{ID: id, Amount: amount}
	}
}

// AssetNetUsage returns the free bandwidth of asset id used by the account.
func (a *Account) AssetNetUsage(id uint64) AssetNetUsage {
	i := sort.Search(len(a.AssetNet), func(i int) bool { return a.AssetNet[i].ID >= id })
	if i < len(a.AssetNet) && a.AssetNet[i].ID == id {
		return a.AssetNet[i]
	}
	return AssetNetUsage{ID: id}
}

// SetAssetNetUsage records u, keeping the list sorted.
func (a *Account) SetAssetNetUsage(u AssetNetUsage) {
	i := sort.Search(len(a.AssetNet), func(i int) bool { return a.AssetNet[i].ID >= u.ID })
	if i < len(a.AssetNet) && a.AssetNet[i].ID == u.ID {
		a.AssetNet[i] = u
		return
	}
	a.AssetNet = append(a.AssetNet, AssetNetUsage{})
	copy(a.AssetNet[i+1:], a.AssetNet[i:])
	a.AssetNet[i] = u
}

// AddToken credits amount of asset id.
func (a *Account) AddToken(id, amount uint64) error {
	sum, overflow := math.SafeAdd(a.TokenBalance(id), amount)
	if overflow {
		return ErrTokenOverflow
	}
	a.SetTokenBalance(id, sum)
	return nil
}

// SubToken debits amount of asset id.
func (a *Account) SubToken(id, amount uint64) error {
	bal := a.TokenBalance(id)
	if bal < amount {
		return ErrInsufficientToken
	}
	a.SetTokenBalance(id, bal-amount)
	return nil
}

// AddBalance credits amount.
func (a *Account) AddBalance(amount uint64) error {
	sum, overflow := math.SafeAdd(a.Balance, amount)
	if overflow {
		return ErrBalanceOverflow
	}
	a.Balance = sum
	return nil
}

// SubBalance debits amount.
func (a *Account) SubBalance(amount uint64) error {
	if a.Balance < amount {
		return ErrInsufficientBalance
	}
	a.Balance -= amount
	return nil
}

// Copy returns a deep copy of the account.
func (a *Account) Copy() *Account {
	cpy := *a
	cpy.Unstakes = append([]Unstake(nil), a.Unstakes...)
	cpy.Votes = append([]Vote(nil), a.Votes...)
	cpy.Tokens = append([]TokenBalance(nil), a.Tokens...)
	cpy.AssetNet = append([]AssetNetUsage(nil), a.AssetNet...)
	return &cpy
}

// GetAccount returns the account at addr, or nil if it does not exist.
// The returned account is a private copy.
func (s *State) GetAccount(addr thor.Address) (*Account, error) {
	var acc Account
	ok, err := s.getRLP(AccountSpace, addr[:], &acc)
	if err != nil || !ok {
		return nil, err
	}
	return &acc, nil
}

// SetAccount stores the account at addr.
func (s *State) SetAccount(addr thor.Address, acc *Account) error {
	return s.putRLP(AccountSpace, addr[:], acc)
}

// Exists returns whether an account exists at addr.
func (s *State) Exists(addr thor.Address) (bool, error) {
	_, ok, err := s.Get(AccountSpace, addr[:])
	return ok, err
}

// CreateAccount stores a new empty account created at the latest block time.
func (s *State) CreateAccount(addr thor.Address) (*Account, error) {
	now, err := s.GetDynamic(LatestBlockTimestamp)
	if err != nil {
		return nil, err
	}
	acc := &Account{CreateTime: now}
	if err := s.SetAccount(addr, acc); err != nil {
		return nil, err
	}
	return acc, nil
}

// GetOrCreateAccount returns the account at addr, creating it if absent.
func (s *State) GetOrCreateAccount(addr thor.Address) (*Account, error) {
	acc, err := s.GetAccount(addr)
	if err != nil {
		return nil, err
	}
	if acc != nil {
		return acc, nil
	}
	return s.CreateAccount(addr)
}

// GetBalance returns the balance of addr, zero if the account does not exist.
func (s *State) GetBalance(addr thor.Address) (uint64, error) {
	acc, err := s.GetAccount(addr)
	if err != nil || acc == nil {
		return 0, err
	}
	return acc.Balance, nil
}

// AddBalance credits addr, creating the account on first credit.
func (s *State) AddBalance(addr thor.Address, amount uint64) error {
	acc, err := s.GetOrCreateAccount(addr)
	if err != nil {
		return err
	}
	if err := acc.AddBalance(amount); err != nil {
		return err
	}
	return s.SetAccount(addr, acc)
}

// SubBalance debits addr.
func (s *State) SubBalance(addr thor.Address, amount uint64) error {
	acc, err := s.GetAccount(addr)
	if err != nil {
		return err
	}
	if acc == nil {
		if amount == 0 {
			return nil
		}
		return ErrInsufficientBalance
	}
	if err := acc.SubBalance(amount); err != nil {
		return err
	}
	return s.SetAccount(addr, acc)
}

// Burn debits addr and adds amount to the burnt total.
func (s *State) Burn(addr thor.Address, amount uint64) error {
	if amount == 0 {
		return nil
	}
	if err := s.SubBalance(addr, amount); err != nil {
		return err
	}
	return s.AddDynamic(BurnedTotal, amount)
}
