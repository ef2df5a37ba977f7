// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import "io"

// discard is both the provider and every meter it hands out while metrics are off.
type discard struct{}

func defaultNoopMetrics() Metrics { return discard{} }

func (discard) GetOrCreateCountVecMeter(string, []string) CountVecMeter { return discard{} }
func (discard) GetOrCreateHistogramMeter(string, []int64) HistogramMeter {
	return discard{}
}

func (discard) GetOrCreateHistogramVecMeter(string, []string, []int64) HistogramVecMeter {
	return discard{}
}
func (discard) Dump(io.Writer) error                       { return nil }
func (discard) AddWithLabel(int64, map[string]string)      {}
func (discard) Observe(int64)                              {}
func (discard) ObserveWithLabels(int64, map[string]string) {}
