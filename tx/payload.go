// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"github.com/vechain/txexec/thor"
)

// Payload is the typed body of a contract. The set of payloads is closed.
type Payload interface {
	Type() ContractType
	OwnerAddress() thor.Address
	payload()
}

// AccountCreate activates a new account.
type AccountCreate struct {
	Owner   thor.Address
	Account thor.Address
}

// Transfer moves sun between accounts.
type Transfer struct {
	Owner  thor.Address
	To     thor.Address
	Amount uint64
}

// TransferAsset moves tokens between accounts. Asset is the asset name, or the decimal
// token id once same token names are allowed.
type TransferAsset struct {
	Owner  thor.Address
	To     thor.Address
	Asset  string
	Amount uint64
}

// VoteWitness replaces the vote list of the owner.
type VoteWitness struct {
	Owner thor.Address
	Votes []Vote
}

// Vote is one entry of a VoteWitness contract.
type Vote struct {
	Witness thor.Address
	Count   uint64
}

// WitnessCreate turns the owner into a witness candidate.
type WitnessCreate struct {
	Owner thor.Address
	URL   string
}

// WitnessUpdate changes the url of a witness.
type WitnessUpdate struct {
	Owner thor.Address
	URL   string
}

// FrozenSupply is one locked tranche of an issued asset.
type FrozenSupply struct {
	Amount uint64
	Days   uint64
}

// AssetIssue issues a new token.
type AssetIssue struct {
	Owner                   thor.Address
	Name                    string
	Abbr                    string
	TotalSupply             uint64
	FrozenSupply            []FrozenSupply
	TrxNum                  uint64
	Num                     uint64
	Precision               uint64
	StartTime               uint64
	EndTime                 uint64
	URL                     string
	Description             string
	FreeAssetNetLimit       uint64
	PublicFreeAssetNetLimit uint64
}

// ParticipateAssetIssue buys tokens from the issuer To for Amount sun.
type ParticipateAssetIssue struct {
	Owner  thor.Address
	To     thor.Address
	Asset  string
	Amount uint64
}

// AccountUpdate sets the account name.
type AccountUpdate struct {
	Owner thor.Address
	Name  string
}

// FreezeBalance is the legacy freeze, optionally on behalf of Receiver.
type FreezeBalance struct {
	Owner    thor.Address
	Amount   uint64
	Duration uint64 // days
	Resource thor.Resource
	Receiver thor.Address
}

// UnfreezeBalance releases an expired legacy freeze.
type UnfreezeBalance struct {
	Owner    thor.Address
	Resource thor.Resource
	Receiver thor.Address
}

// WithdrawBalance withdraws the witness allowance.
type WithdrawBalance struct {
	Owner thor.Address
}

// ProposalCreate proposes parameter changes.
type ProposalCreate struct {
	Owner  thor.Address
	Params []thor.ChainParam
}

// ProposalApprove adds or removes the approval of a witness.
type ProposalApprove struct {
	Owner      thor.Address
	ProposalID uint64
	Approve    bool
}

// ProposalDelete cancels a proposal.
type ProposalDelete struct {
	Owner      thor.Address
	ProposalID uint64
}

// BuyStorage buys storage bytes for Quant sun.
type BuyStorage struct {
	Owner thor.Address
	Quant uint64
}

// SellStorage sells storage bytes back to the market.
type SellStorage struct {
	Owner        thor.Address
	StorageBytes uint64
}

// CreateSmartContract deploys a contract.
type CreateSmartContract struct {
	Owner                      thor.Address
	Name                       string
	Bytecode                   []byte
	CallValue                  uint64
	ConsumeUserResourcePercent uint64
	OriginEnergyLimit          uint64
	TokenID                    uint64
	CallTokenValue             uint64
}

// TriggerSmartContract calls a contract with 4-byte-selector prefixed data.
type TriggerSmartContract struct {
	Owner          thor.Address
	Contract       thor.Address
	Data           []byte
	CallValue      uint64
	TokenID        uint64
	CallTokenValue uint64
}

// UpdateSetting changes the user resource share of a contract.
type UpdateSetting struct {
	Owner                      thor.Address
	Contract                   thor.Address
	ConsumeUserResourcePercent uint64
}

// UpdateEnergyLimit changes the energy the origin pays per call of a contract.
type UpdateEnergyLimit struct {
	Owner             thor.Address
	Contract          thor.Address
	OriginEnergyLimit uint64
}

// FreezeBalanceV2 stakes balance for a resource.
type FreezeBalanceV2 struct {
	Owner    thor.Address
	Amount   uint64
	Resource thor.Resource
}

// UnfreezeBalanceV2 starts unstaking.
type UnfreezeBalanceV2 struct {
	Owner    thor.Address
	Amount   uint64
	Resource thor.Resource
}

// WithdrawExpireUnfreeze returns expired unstakes to the balance.
type WithdrawExpireUnfreeze struct {
	Owner thor.Address
}

// DelegateResource lends staked resource to Receiver.
type DelegateResource struct {
	Owner    thor.Address
	Resource thor.Resource
	Amount   uint64
	Receiver thor.Address
}

// UnDelegateResource reclaims delegated resource from Receiver.
type UnDelegateResource struct {
	Owner    thor.Address
	Resource thor.Resource
	Amount   uint64
	Receiver thor.Address
}

func (AccountCreate) Type() ContractType          { return AccountCreateType }
func (Transfer) Type() ContractType               { return TransferType }
func (TransferAsset) Type() ContractType          { return TransferAssetType }
func (VoteWitness) Type() ContractType            { return VoteWitnessType }
func (WitnessCreate) Type() ContractType          { return WitnessCreateType }
func (WitnessUpdate) Type() ContractType          { return WitnessUpdateType }
func (AssetIssue) Type() ContractType             { return AssetIssueType }
func (ParticipateAssetIssue) Type() ContractType  { return ParticipateAssetIssueType }
func (AccountUpdate) Type() ContractType          { return AccountUpdateType }
func (FreezeBalance) Type() ContractType          { return FreezeBalanceType }
func (UnfreezeBalance) Type() ContractType        { return UnfreezeBalanceType }
func (WithdrawBalance) Type() ContractType        { return WithdrawBalanceType }
func (ProposalCreate) Type() ContractType         { return ProposalCreateType }
func (ProposalApprove) Type() ContractType        { return ProposalApproveType }
func (ProposalDelete) Type() ContractType         { return ProposalDeleteType }
func (BuyStorage) Type() ContractType             { return BuyStorageType }
func (SellStorage) Type() ContractType            { return SellStorageType }
func (CreateSmartContract) Type() ContractType    { return CreateSmartContractType }
func (TriggerSmartContract) Type() ContractType   { return TriggerSmartContractType }
func (UpdateSetting) Type() ContractType          { return UpdateSettingType }
func (UpdateEnergyLimit) Type() ContractType      { return UpdateEnergyLimitType }
func (FreezeBalanceV2) Type() ContractType        { return FreezeBalanceV2Type }
func (UnfreezeBalanceV2) Type() ContractType      { return UnfreezeBalanceV2Type }
func (WithdrawExpireUnfreeze) Type() ContractType { return WithdrawExpireUnfreezeType }
func (DelegateResource) Type() ContractType       { return DelegateResourceType }
func (UnDelegateResource) Type() ContractType     { return UnDelegateResourceType }

func (p AccountCreate) OwnerAddress() thor.Address          { return p.Owner }
func (p Transfer) OwnerAddress() thor.Address               { return p.Owner }
func (p TransferAsset) OwnerAddress() thor.Address          { return p.Owner }
func (p VoteWitness) OwnerAddress() thor.Address            { return p.Owner }
func (p WitnessCreate) OwnerAddress() thor.Address          { return p.Owner }
func (p WitnessUpdate) OwnerAddress() thor.Address          { return p.Owner }
func (p AssetIssue) OwnerAddress() thor.Address             { return p.Owner }
func (p ParticipateAssetIssue) OwnerAddress() thor.Address  { return p.Owner }
func (p AccountUpdate) OwnerAddress() thor.Address          { return p.Owner }
func (p FreezeBalance) OwnerAddress() thor.Address          { return p.Owner }
func (p UnfreezeBalance) OwnerAddress() thor.Address        { return p.Owner }
func (p WithdrawBalance) OwnerAddress() thor.Address        { return p.Owner }
func (p ProposalCreate) OwnerAddress() thor.Address         { return p.Owner }
func (p ProposalApprove) OwnerAddress() thor.Address        { return p.Owner }
func (p ProposalDelete) OwnerAddress() thor.Address         { return p.Owner }
func (p BuyStorage) OwnerAddress() thor.Address             { return p.Owner }
func (p SellStorage) OwnerAddress() thor.Address            { return p.Owner }
func (p CreateSmartContract) OwnerAddress() thor.Address    { return p.Owner }
func (p TriggerSmartContract) OwnerAddress() thor.Address   { return p.Owner }
func (p UpdateSetting) OwnerAddress() thor.Address          { return p.Owner }
func (p UpdateEnergyLimit) OwnerAddress() thor.Address      { return p.Owner }
func (p FreezeBalanceV2) OwnerAddress() thor.Address        { return p.Owner }
func (p UnfreezeBalanceV2) OwnerAddress() thor.Address      { return p.Owner }
func (p WithdrawExpireUnfreeze) OwnerAddress() thor.Address { return p.Owner }
func (p DelegateResource) OwnerAddress() thor.Address       { return p.Owner }
func (p UnDelegateResource) OwnerAddress() thor.Address     { return p.Owner }

func (AccountCreate) payload()          {}
func (Transfer) payload()               {}
func (TransferAsset) payload()          {}
func (VoteWitness) payload()            {}
func (WitnessCreate) payload()          {}
func (WitnessUpdate) payload()          {}
func (AssetIssue) payload()             {}
func (ParticipateAssetIssue) payload()  {}
func (AccountUpdate) payload()          {}
func (FreezeBalance) payload()          {}
func (UnfreezeBalance) payload()        {}
func (WithdrawBalance) payload()        {}
func (ProposalCreate) payload()         {}
func (ProposalApprove) payload()        {}
func (ProposalDelete) payload()         {}
func (BuyStorage) payload()             {}
func (SellStorage) payload()            {}
func (CreateSmartContract) payload()    {}
func (TriggerSmartContract) payload()   {}
func (UpdateSetting) payload()          {}
func (UpdateEnergyLimit) payload()      {}
func (FreezeBalanceV2) payload()        {}
func (UnfreezeBalanceV2) payload()      {}
func (WithdrawExpireUnfreeze) payload() {}
func (DelegateResource) payload()       {}
func (UnDelegateResource) payload()     {}
