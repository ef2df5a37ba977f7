// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

// Constants of the chain. They are part of consensus and never change with configuration.
const (
	TrxPrecision   uint64 = 1_000_000 // sun per TRX
	UsagePrecision uint64 = 1_000_000 // fixed-point precision of resource usage averages
	DayMillis      uint64 = 86_400_000
	TokenIDStart   uint64 = 1_000_000

	ProposalExpireMillis   uint64 = 3 * DayMillis
	WitnessAllowanceMillis uint64 = DayMillis // minimum interval between two allowance withdrawals

	MaxVoteNumber                 = 30
	MaxUnfreezingListSize         = 32
	MaxAccountNameLength          = 200
	MaxAssetNameLength            = 32
	MaxAssetAbbrLength            = 5
	MaxDescriptionLength          = 200
	MaxURLLength                  = 256
	MaxContractNameLength         = 32
	MaxConsumeUserResourcePercent = 100

	StorageMarketSupply     int64 = 1_000_000_000_000_000
	StoragePoolRoundingUnit int64 = 100_000
	StorageMarketBuyPower         = 0.0005
	StorageMarketSellPower        = 2000.0
)

// Energy costs of the VM. Values follow the TVM energy table.
const (
	EnergyZero    uint64 = 0
	EnergyBase    uint64 = 2
	EnergyVeryLow uint64 = 3
	EnergyLow     uint64 = 5
	EnergyMid     uint64 = 8
	EnergyHigh    uint64 = 10
	EnergyExt     uint64 = 20

	EnergyBalance       uint64 = 20
	EnergyExtCode       uint64 = 20
	EnergyExtCodeHash   uint64 = 400
	EnergySload         uint64 = 50
	EnergySstoreSet     uint64 = 20000
	EnergySstoreReset   uint64 = 5000
	EnergySstoreRefund  uint64 = 15000
	EnergyJumpDest      uint64 = 1
	EnergyExp           uint64 = 10
	EnergyExpByte       uint64 = 10
	EnergySha3          uint64 = 30
	EnergySha3Word      uint64 = 6
	EnergyCopy          uint64 = 3
	EnergyMemory        uint64 = 3
	EnergyQuadCoeffDiv  uint64 = 512
	EnergyLog           uint64 = 375
	EnergyLogTopic      uint64 = 375
	EnergyLogData       uint64 = 8
	EnergyCreate        uint64 = 32000
	EnergyCreateData    uint64 = 200
	EnergyCall          uint64 = 40
	EnergyCallValue     uint64 = 9000
	EnergyCallNewAcct   uint64 = 25000
	EnergyCallStipend   uint64 = 2300
	EnergySuicide       uint64 = 0
	EnergySuicideRefund uint64 = 24000
	EnergyTokenBalance  uint64 = 20

	StackLimit = 1024
)
