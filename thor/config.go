// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the snapshot of prices, limits and feature flags a transaction is executed with.
// It is passed by value into the runtime at the start of each transaction and never mutated
// during execution. Most values have mainnet defaults; custom networks overlay them with LoadConfig.
type Config struct {
	BlockInterval  uint64 `yaml:"blockInterval"`  // milliseconds between two blocks, the resource time slot
	ResourceWindow uint64 `yaml:"resourceWindow"` // milliseconds for a resource usage to fully recover

	FreeNetLimit     uint64 `yaml:"freeNetLimit"`     // free bandwidth bytes per account per window
	PublicNetLimit   uint64 `yaml:"publicNetLimit"`   // free bandwidth bytes shared by all accounts per window
	TotalNetLimit    uint64 `yaml:"totalNetLimit"`    // bandwidth bytes shared by all frozen stake per window
	TotalEnergyLimit uint64 `yaml:"totalEnergyLimit"` // energy shared by all frozen stake per window

	TransactionFee                uint64 `yaml:"transactionFee"`                // sun per bandwidth byte
	EnergyFee                     uint64 `yaml:"energyFee"`                     // sun per energy unit
	CreateAccountFee              uint64 `yaml:"createAccountFee"`              // sun, AccountCreate handler fee
	CreateNewAccountFee           uint64 `yaml:"createNewAccountFee"`           // sun, bandwidth fee of contracts creating accounts
	CreateNewAccountBandwidthRate uint64 `yaml:"createNewAccountBandwidthRate"` // frozen bandwidth multiplier of contracts creating accounts
	AssetIssueFee                 uint64 `yaml:"assetIssueFee"`                 // sun, burnt on AssetIssue
	AccountUpgradeCost            uint64 `yaml:"accountUpgradeCost"`            // sun, burnt on WitnessCreate
	MaxFeeLimit                   uint64 `yaml:"maxFeeLimit"`                   // upper bound of a transaction's fee limit

	MaxCallDepth        int    `yaml:"maxCallDepth"`
	MaxMemoryBytes      uint64 `yaml:"maxMemoryBytes"`
	MaxInstructionSteps uint64 `yaml:"maxInstructionSteps"` // per transaction, the OutOfTime budget
	MaxCodeSize         int    `yaml:"maxCodeSize"`

	MaxFrozenSupplyNumber int    `yaml:"maxFrozenSupplyNumber"`
	MinFrozenSupplyDays   uint64 `yaml:"minFrozenSupplyDays"`
	MaxFrozenSupplyDays   uint64 `yaml:"maxFrozenSupplyDays"`
	MaxAssetPrecision     uint64 `yaml:"maxAssetPrecision"`
	MinFrozenDays         uint64 `yaml:"minFrozenDays"`
	MaxFrozenDays         uint64 `yaml:"maxFrozenDays"`
	UnfreezeDelayDays     uint64 `yaml:"unfreezeDelayDays"`

	AllowSameTokenName       bool `yaml:"allowSameTokenName"`
	AllowTvmTransferTrc10    bool `yaml:"allowTvmTransferTrc10"`
	AllowTvmConstantinople   bool `yaml:"allowTvmConstantinople"`
	AllowStrictMath          bool `yaml:"allowStrictMath"`
	AllowDelegateResource    bool `yaml:"allowDelegateResource"`
	AllowUpdateAccountName   bool `yaml:"allowUpdateAccountName"`
	AllowCreationOfContracts bool `yaml:"allowCreationOfContracts"`
}

// DefaultConfig returns the mainnet-like configuration.
func DefaultConfig() Config {
	return Config{
		BlockInterval:  3000,
		ResourceWindow: DayMillis,

		FreeNetLimit:     5000,
		PublicNetLimit:   14_400_000_000,
		TotalNetLimit:    43_200_000_000,
		TotalEnergyLimit: 50_000_000_000,

		TransactionFee:                10,
		EnergyFee:                     100,
		CreateAccountFee:              100_000,
		CreateNewAccountFee:           1_000_000,
		CreateNewAccountBandwidthRate: 1,
		AssetIssueFee:                 1024 * TrxPrecision,
		AccountUpgradeCost:            9999 * TrxPrecision,
		MaxFeeLimit:                   1000 * TrxPrecision,

		MaxCallDepth:        64,
		MaxMemoryBytes:      3 * 1024 * 1024,
		MaxInstructionSteps: 5_000_000,
		MaxCodeSize:         0,

		MaxFrozenSupplyNumber: 10,
		MinFrozenSupplyDays:   1,
		MaxFrozenSupplyDays:   3652,
		MaxAssetPrecision:     6,
		MinFrozenDays:         3,
		MaxFrozenDays:         3,
		UnfreezeDelayDays:     14,

		AllowCreationOfContracts: true,
	}
}

// WindowSlots returns the resource recovery window measured in block slots.
func (c *Config) WindowSlots() uint64 {
	return c.ResourceWindow / c.BlockInterval
}

// Slot converts a block timestamp in milliseconds into a block slot.
func (c *Config) Slot(timestamp uint64) uint64 {
	return timestamp / c.BlockInterval
}

// LoadConfig reads a YAML overlay from path and applies it onto the default config.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "read config")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values that would make the resource model meaningless.
func (c *Config) Validate() error {
	switch {
	case c.BlockInterval == 0:
		return errors.New("config: blockInterval must be positive")
	case c.ResourceWindow < c.BlockInterval:
		return errors.New("config: resourceWindow must cover at least one block")
	case c.EnergyFee == 0:
		return errors.New("config: energyFee must be positive")
	case c.MaxCallDepth <= 0:
		return errors.New("config: maxCallDepth must be positive")
	}
	return nil
}

// ChainParam is one governance parameter change carried by a proposal.
type ChainParam struct {
	Code  uint64
	Value uint64
}

// Governance parameter codes.
const (
	ParamAccountUpgradeCost uint64 = iota
	ParamCreateAccountFee
	ParamTransactionFee
	ParamAssetIssueFee
	ParamEnergyFee
	ParamCreateNewAccountFee
	ParamCreateNewAccountBandwidthRate
	ParamFreeNetLimit
	ParamTotalEnergyLimit
	ParamMaxFeeLimit
	ParamAllowSameTokenName
	ParamAllowTvmTransferTrc10
	ParamAllowTvmConstantinople
	ParamAllowStrictMath
	ParamAllowDelegateResource
	ParamAllowUpdateAccountName
	ParamAllowCreationOfContracts

	paramCount
)

// MaxParamValue bounds numeric governance values.
const MaxParamValue uint64 = 100_000_000_000_000_000

// IsFlagParam reports whether the parameter is a feature flag.
func IsFlagParam(code uint64) bool {
	return code >= ParamAllowSameTokenName && code < paramCount
}

// CheckParam validates a proposed parameter change.
func CheckParam(p ChainParam) error {
	if p.Code >= paramCount {
		return fmt.Errorf("Does not support code : %d", p.Code)
	}
	if IsFlagParam(p.Code) {
		if p.Value != 1 {
			return fmt.Errorf("This value[%d] is only allowed to be 1", p.Code)
		}
		return nil
	}
	if p.Value > MaxParamValue {
		return fmt.Errorf("Bad chain parameter value, valid range is [0,%d]", MaxParamValue)
	}
	return nil
}

// Apply returns a copy of the config with the given approved parameters folded in.
func (c Config) Apply(params []ChainParam) (Config, error) {
	for _, p := range params {
		if err := CheckParam(p); err != nil {
			return Config{}, err
		}
		on := p.Value == 1
		switch p.Code {
		case ParamAccountUpgradeCost:
			c.AccountUpgradeCost = p.Value
		case ParamCreateAccountFee:
			c.CreateAccountFee = p.Value
		case ParamTransactionFee:
			c.TransactionFee = p.Value
		case ParamAssetIssueFee:
			c.AssetIssueFee = p.Value
		case ParamEnergyFee:
			c.EnergyFee = p.Value
		case ParamCreateNewAccountFee:
			c.CreateNewAccountFee = p.Value
		case ParamCreateNewAccountBandwidthRate:
			c.CreateNewAccountBandwidthRate = p.Value
		case ParamFreeNetLimit:
			c.FreeNetLimit = p.Value
		case ParamTotalEnergyLimit:
			c.TotalEnergyLimit = p.Value
		case ParamMaxFeeLimit:
			c.MaxFeeLimit = p.Value
		case ParamAllowSameTokenName:
			c.AllowSameTokenName = on
		case ParamAllowTvmTransferTrc10:
			c.AllowTvmTransferTrc10 = on
		case ParamAllowTvmConstantinople:
			c.AllowTvmConstantinople = on
		case ParamAllowStrictMath:
			c.AllowStrictMath = on
		case ParamAllowDelegateResource:
			c.AllowDelegateResource = on
		case ParamAllowUpdateAccountName:
			c.AllowUpdateAccountName = on
		case ParamAllowCreationOfContracts:
			c.AllowCreationOfContracts = on
		}
	}
	return c, nil
}
