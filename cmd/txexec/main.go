// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// txexec applies signed transactions to a local state store.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/txexec/log"
	"github.com/vechain/txexec/runtime"
	"github.com/vechain/txexec/state"
	"github.com/vechain/txexec/thor"
	"github.com/vechain/txexec/tx"
	"github.com/vechain/txexec/vm"
)

var (
	version   string
	gitCommit string
	gitTag    string

	logger = log.WithContext("pkg", "main")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version: fullVersion(),
		Name:    "txexec",
		Usage:   "Transaction execution against a local state store",
		Flags:   []cli.Flag{verbosityFlag, jsonLogsFlag},
		Before: func(ctx *cli.Context) error {
			initLogger(ctx)
			return nil
		},
		Commands: []cli.Command{
			{
				Name:  "apply",
				Usage: "execute one transaction and commit its changes",
				Flags: []cli.Flag{
					dataDirFlag,
					configFlag,
					txFlag,
					timeFlag,
					numberFlag,
					witnessFlag,
					traceFlag,
					metricsFlag,
				},
				Action: applyAction,
			},
			{
				Name:  "genesis",
				Usage: "seed accounts into an empty store",
				Flags: []cli.Flag{
					dataDirFlag,
					allocFlag,
					timeFlag,
				},
				Action: genesisAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func decodeTx(s string) (*tx.Transaction, error) {
	data, err := hexutil.Decode(s)
	if err != nil {
		return nil, errors.Wrap(err, "decode tx hex")
	}
	var trx tx.Transaction
	if err := rlp.DecodeBytes(data, &trx); err != nil {
		return nil, errors.Wrap(err, "decode tx rlp")
	}
	return &trx, nil
}

func applyAction(ctx *cli.Context) error {
	initMetrics(ctx)

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	trx, err := decodeTx(ctx.String(txFlag.Name))
	if err != nil {
		return err
	}
	var witness thor.Address
	if s := ctx.String(witnessFlag.Name); s != "" {
		if witness, err = thor.ParseAddress(s); err != nil {
			return errors.Wrap(err, "witness")
		}
	}

	db, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	blockTime := ctx.Uint64(timeFlag.Name)
	st := state.New(db)
	st.SetDynamic(state.LatestBlockTimestamp, blockTime)

	rt := runtime.New(st, cfg, witness, ctx.Uint64(numberFlag.Name), blockTime, nil)
	if ctx.Bool(traceFlag.Name) {
		rt.SetVMConfig(vm.Config{Tracer: vm.NewStepLogger(log.WithContext("pkg", "trace"))})
	}

	out, err := rt.ExecuteTransaction(trx)
	if err != nil {
		return errors.WithMessage(err, "execute")
	}
	if err := rt.Commit(db); err != nil {
		return err
	}
	logger.Info("transaction applied", "id", trx.ID(), "result", out.Receipt.Result, "fee", out.Receipt.Fee(), "changes", len(out.Changeset))

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out.Receipt); err != nil {
		return err
	}
	return dumpMetrics(ctx)
}

func genesisAction(ctx *cli.Context) error {
	db, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	st := state.New(db)
	st.SetDynamic(state.LatestBlockTimestamp, ctx.Uint64(timeFlag.Name))
	for _, s := range ctx.StringSlice(allocFlag.Name) {
		addr, amount, err := parseAlloc(s)
		if err != nil {
			return err
		}
		if err := st.AddBalance(addr, amount); err != nil {
			return err
		}
		logger.Info("account allocated", "address", addr, "balance", amount)
	}
	stage, err := st.Stage()
	if err != nil {
		return err
	}
	return stage.Commit(db)
}
