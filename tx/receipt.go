// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"github.com/vechain/txexec/thor"
)

// ResultCode is the outcome of a transaction.
type ResultCode uint8

const (
	ResultSuccess ResultCode = iota
	ResultRevert
	ResultBadJumpDestination
	ResultOutOfMemory
	ResultPrecompiledContract
	ResultStackTooSmall
	ResultStackTooLarge
	ResultIllegalOperation
	ResultStackOverflow
	ResultOutOfEnergy
	ResultOutOfTime
	ResultCallDepth
	ResultUnknown
	ResultTransferFailed
	ResultInvalidCode
)

var resultNames = [...]string{
	ResultSuccess:             "SUCCESS",
	ResultRevert:              "REVERT",
	ResultBadJumpDestination:  "BAD_JUMP_DESTINATION",
	ResultOutOfMemory:         "OUT_OF_MEMORY",
	ResultPrecompiledContract: "PRECOMPILED_CONTRACT",
	ResultStackTooSmall:       "STACK_TOO_SMALL",
	ResultStackTooLarge:       "STACK_TOO_LARGE",
	ResultIllegalOperation:    "ILLEGAL_OPERATION",
	ResultStackOverflow:       "STACK_OVERFLOW",
	ResultOutOfEnergy:         "OUT_OF_ENERGY",
	ResultOutOfTime:           "OUT_OF_TIME",
	ResultCallDepth:           "JVM_STACK_OVER_FLOW",
	ResultUnknown:             "UNKNOWN",
	ResultTransferFailed:      "TRANSFER_FAILED",
	ResultInvalidCode:         "INVALID_CODE",
}

func (c ResultCode) String() string {
	if int(c) < len(resultNames) {
		return resultNames[c]
	}
	return resultNames[ResultUnknown]
}

// MarshalText implements encoding.TextMarshaler.
func (c ResultCode) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Receipt represents the results of a transaction.
type Receipt struct {
	// bandwidth bytes taken from frozen quota
	NetUsage uint64 `json:"netUsage"`
	// bandwidth bytes taken from free quota
	FreeNetUsage uint64 `json:"freeNetUsage"`
	// sun paid for bandwidth, account creation included
	NetFee uint64 `json:"netFee"`
	// energy taken from the caller's frozen quota
	EnergyUsage uint64 `json:"energyUsage"`
	// sun paid for energy
	EnergyFee uint64 `json:"energyFee"`
	// energy charged to the contract origin
	OriginEnergyUsage uint64 `json:"originEnergyUsage"`
	EnergyUsageTotal  uint64 `json:"energyUsageTotal"`
	// fixed fee of the contract kind
	HandlerFee uint64 `json:"handlerFee"`

	Result          ResultCode             `json:"result"`
	ContractAddress thor.Address           `json:"contractAddress"`
	ReturnValue     []byte                 `json:"returnValue"`
	RuntimeError    string                 `json:"runtimeError,omitempty"`
	Logs            []*Log                 `json:"logs"`
	InternalTxs     []*InternalTransaction `json:"internalTransactions"`
}

// Fee returns the total sun the transaction paid.
func (r *Receipt) Fee() uint64 {
	return r.NetFee + r.EnergyFee + r.HandlerFee
}

// Log is an event emitted by a contract.
type Log struct {
	Address thor.Address   `json:"address"`
	Topics  []thor.Bytes32 `json:"topics"`
	Data    []byte         `json:"data"`
}

// InternalTransaction is a value transfer, call or creation made by a contract.
type InternalTransaction struct {
	Caller     thor.Address `json:"caller"`
	To         thor.Address `json:"to"`
	Note       string       `json:"note"`
	Value      uint64       `json:"value"`
	TokenID    uint64       `json:"tokenId,omitempty"`
	TokenValue uint64       `json:"tokenValue,omitempty"`
	Rejected   bool         `json:"rejected"`
}
