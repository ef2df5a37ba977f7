// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import "strconv"

// StorageSize is a number of encoded bytes, the unit bandwidth is charged in.
// A *StorageSize is an io.Writer that only counts, so an encoder can measure a value
// without buffering it.
type StorageSize uint64

// Write counts b.
func (ss *StorageSize) Write(b []byte) (int, error) {
	*ss += StorageSize(len(b))
	return len(b), nil
}

func (ss StorageSize) String() string {
	return strconv.FormatUint(uint64(ss), 10) + " B"
}
