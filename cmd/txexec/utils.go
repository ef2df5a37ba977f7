// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/txexec/log"
	"github.com/vechain/txexec/lvldb"
	"github.com/vechain/txexec/metrics"
	"github.com/vechain/txexec/thor"
)

func initLogger(ctx *cli.Context) {
	level := log.FromVerbosity(ctx.Int(verbosityFlag.Name))
	if ctx.Bool(jsonLogsFlag.Name) {
		log.SetDefault(log.NewJSONHandler(os.Stderr, level))
		return
	}
	useColor := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	log.SetDefault(log.NewTerminalHandler(os.Stderr, level, useColor))
}

func initMetrics(ctx *cli.Context) {
	if ctx.Bool(metricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}
}

func dumpMetrics(ctx *cli.Context) error {
	if !ctx.Bool(metricsFlag.Name) {
		return nil
	}
	return metrics.Dump(os.Stderr)
}

func loadConfig(ctx *cli.Context) (thor.Config, error) {
	path := ctx.String(configFlag.Name)
	if path == "" {
		return thor.DefaultConfig(), nil
	}
	return thor.LoadConfig(path)
}

func openStore(ctx *cli.Context) (*lvldb.LevelDB, error) {
	dir := ctx.String(dataDirFlag.Name)
	if dir == "" {
		return nil, errors.Errorf("missing --%s", dataDirFlag.Name)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrap(err, "create data dir")
	}
	return lvldb.New(dir, lvldb.Options{CacheSize: 128, OpenFilesCacheCapacity: 64})
}

// parseAlloc parses ADDRESS=AMOUNT.
func parseAlloc(s string) (thor.Address, uint64, error) {
	addr, amount, ok := strings.Cut(s, "=")
	if !ok {
		return thor.Address{}, 0, errors.Errorf("invalid alloc %q", s)
	}
	a, err := thor.ParseAddress(addr)
	if err != nil {
		return thor.Address{}, 0, errors.Wrapf(err, "alloc %q", s)
	}
	v, err := strconv.ParseUint(amount, 10, 64)
	if err != nil {
		return thor.Address{}, 0, errors.Wrapf(err, "alloc %q", s)
	}
	return a, v, nil
}
