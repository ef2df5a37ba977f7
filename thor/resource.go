// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

// Resource is a metered resource obtained by freezing balance.
type Resource uint8

const (
	Bandwidth Resource = iota
	Energy
)

// Valid reports whether r is a known resource.
func (r Resource) Valid() bool {
	return r == Bandwidth || r == Energy
}

func (r Resource) String() string {
	switch r {
	case Bandwidth:
		return "BANDWIDTH"
	case Energy:
		return "ENERGY"
	}
	return "UNKNOWN"
}
