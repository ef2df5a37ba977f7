// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"
)

var (
	dataDirFlag = cli.StringFlag{
		Name:  "datadir",
		Usage: "directory of the state store",
	}
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "YAML file overriding the default chain parameters",
	}
	txFlag = cli.StringFlag{
		Name:  "tx",
		Usage: "hex encoded rlp of the signed transaction",
	}
	timeFlag = cli.Uint64Flag{
		Name:  "time",
		Usage: "block timestamp in milliseconds",
	}
	numberFlag = cli.Uint64Flag{
		Name:  "number",
		Usage: "block number",
	}
	witnessFlag = cli.StringFlag{
		Name:  "witness",
		Usage: "address of the block producer",
	}
	allocFlag = cli.StringSliceFlag{
		Name:  "alloc",
		Usage: "genesis balance as ADDRESS=AMOUNT, repeatable",
	}
	traceFlag = cli.BoolFlag{
		Name:  "trace",
		Usage: "log every executed VM instruction",
	}
	metricsFlag = cli.BoolFlag{
		Name:  "metrics",
		Usage: "print collected metrics after execution",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Value: 3,
		Usage: "log verbosity (0-5)",
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:  "json-logs",
		Usage: "output logs in JSON format",
	}
)
