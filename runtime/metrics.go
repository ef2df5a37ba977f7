// Copyright (c) 2024 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import "github.com/vechain/txexec/metrics"

var (
	metricTxResultCount  = metrics.LazyLoadCounterVec("runtime_tx_result_count", []string{"type", "result"})
	metricEnergyUsed     = metrics.LazyLoadHistogram("runtime_energy_used", metrics.BucketEnergy)
	metricBandwidthBytes = metrics.LazyLoadHistogram("runtime_bandwidth_bytes", metrics.BucketBandwidth)
)
