// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/vechain/txexec/thor"
)

// ContractType tags the payload of a contract.
type ContractType uint32

const (
	AccountCreateType          ContractType = 0
	TransferType               ContractType = 1
	TransferAssetType          ContractType = 2
	VoteWitnessType            ContractType = 4
	WitnessCreateType          ContractType = 5
	AssetIssueType             ContractType = 6
	WitnessUpdateType          ContractType = 8
	ParticipateAssetIssueType  ContractType = 9
	AccountUpdateType          ContractType = 10
	FreezeBalanceType          ContractType = 11
	UnfreezeBalanceType        ContractType = 12
	WithdrawBalanceType        ContractType = 13
	ProposalCreateType         ContractType = 16
	ProposalApproveType        ContractType = 17
	ProposalDeleteType         ContractType = 18
	BuyStorageType             ContractType = 22
	SellStorageType            ContractType = 23
	CreateSmartContractType    ContractType = 30
	TriggerSmartContractType   ContractType = 31
	UpdateSettingType          ContractType = 33
	UpdateEnergyLimitType      ContractType = 45
	FreezeBalanceV2Type        ContractType = 54
	UnfreezeBalanceV2Type      ContractType = 55
	WithdrawExpireUnfreezeType ContractType = 56
	DelegateResourceType       ContractType = 57
	UnDelegateResourceType     ContractType = 58
)

var contractTypeNames = map[ContractType]string{
	AccountCreateType:          "AccountCreateContract",
	TransferType:               "TransferContract",
	TransferAssetType:          "TransferAssetContract",
	VoteWitnessType:            "VoteWitnessContract",
	WitnessCreateType:          "WitnessCreateContract",
	AssetIssueType:             "AssetIssueContract",
	WitnessUpdateType:          "WitnessUpdateContract",
	ParticipateAssetIssueType:  "ParticipateAssetIssueContract",
	AccountUpdateType:          "AccountUpdateContract",
	FreezeBalanceType:          "FreezeBalanceContract",
	UnfreezeBalanceType:        "UnfreezeBalanceContract",
	WithdrawBalanceType:        "WithdrawBalanceContract",
	ProposalCreateType:         "ProposalCreateContract",
	ProposalApproveType:        "ProposalApproveContract",
	ProposalDeleteType:         "ProposalDeleteContract",
	BuyStorageType:             "BuyStorageContract",
	SellStorageType:            "SellStorageContract",
	CreateSmartContractType:    "CreateSmartContract",
	TriggerSmartContractType:   "TriggerSmartContract",
	UpdateSettingType:          "UpdateSettingContract",
	UpdateEnergyLimitType:      "UpdateEnergyLimitContract",
	FreezeBalanceV2Type:        "FreezeBalanceV2Contract",
	UnfreezeBalanceV2Type:      "UnfreezeBalanceV2Contract",
	WithdrawExpireUnfreezeType: "WithdrawExpireUnfreezeContract",
	DelegateResourceType:       "DelegateResourceContract",
	UnDelegateResourceType:     "UnDelegateResourceContract",
}

func (t ContractType) String() string {
	if name, ok := contractTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("ContractType(%d)", uint32(t))
}

// newPayload allocates an empty payload of type t.
func newPayload(t ContractType) (Payload, error) {
	switch t {
	case AccountCreateType:
		return &AccountCreate{}, nil
	case TransferType:
		return &Transfer{}, nil
	case TransferAssetType:
		return &TransferAsset{}, nil
	case VoteWitnessType:
		return &VoteWitness{}, nil
	case WitnessCreateType:
		return &WitnessCreate{}, nil
	case AssetIssueType:
		return &AssetIssue{}, nil
	case WitnessUpdateType:
		return &WitnessUpdate{}, nil
	case ParticipateAssetIssueType:
		return &ParticipateAssetIssue{}, nil
	case AccountUpdateType:
		return &AccountUpdate{}, nil
	case FreezeBalanceType:
		return &FreezeBalance{}, nil
	case UnfreezeBalanceType:
		return &UnfreezeBalance{}, nil
	case WithdrawBalanceType:
		return &WithdrawBalance{}, nil
	case ProposalCreateType:
		return &ProposalCreate{}, nil
	case ProposalApproveType:
		return &ProposalApprove{}, nil
	case ProposalDeleteType:
		return &ProposalDelete{}, nil
	case BuyStorageType:
		return &BuyStorage{}, nil
	case SellStorageType:
		return &SellStorage{}, nil
	case CreateSmartContractType:
		return &CreateSmartContract{}, nil
	case TriggerSmartContractType:
		return &TriggerSmartContract{}, nil
	case UpdateSettingType:
		return &UpdateSetting{}, nil
	case UpdateEnergyLimitType:
		return &UpdateEnergyLimit{}, nil
	case FreezeBalanceV2Type:
		return &FreezeBalanceV2{}, nil
	case UnfreezeBalanceV2Type:
		return &UnfreezeBalanceV2{}, nil
	case WithdrawExpireUnfreezeType:
		return &WithdrawExpireUnfreeze{}, nil
	case DelegateResourceType:
		return &DelegateResource{}, nil
	case UnDelegateResourceType:
		return &UnDelegateResource{}, nil
	}
	return nil, errors.Errorf("unsupported contract type %d", uint32(t))
}

// Contract is a typed payload with the permission it is signed under.
type Contract struct {
	Payload      Payload
	PermissionID uint32
}

// Type returns the type tag of the payload.
func (c *Contract) Type() ContractType {
	return c.Payload.Type()
}

// Owner returns the account the contract acts for.
func (c *Contract) Owner() thor.Address {
	return c.Payload.OwnerAddress()
}

type contractEnc struct {
	Type         ContractType
	Payload      rlp.RawValue
	PermissionID uint32
}

// EncodeRLP implements rlp.Encoder.
func (c *Contract) EncodeRLP(w io.Writer) error {
	if c.Payload == nil {
		return errors.New("contract without payload")
	}
	data, err := rlp.EncodeToBytes(c.Payload)
	if err != nil {
		return err
	}
	return rlp.Encode(w, &contractEnc{c.Payload.Type(), data, c.PermissionID})
}

// DecodeRLP implements rlp.Decoder.
func (c *Contract) DecodeRLP(s *rlp.Stream) error {
	var enc contractEnc
	if err := s.Decode(&enc); err != nil {
		return err
	}
	p, err := newPayload(enc.Type)
	if err != nil {
		return err
	}
	if err := rlp.DecodeBytes(enc.Payload, p); err != nil {
		return errors.Wrapf(err, "decode %v", enc.Type)
	}
	*c = Contract{Payload: p, PermissionID: enc.PermissionID}
	return nil
}
