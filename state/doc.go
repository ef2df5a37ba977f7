// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state is the deposit cache: a journaled overlay of (namespace, key) entries over a kv store.
// It follows the flow as bellow:
//
//	         o
//	         |
//	[ checkpoints: NewCheckpoint / Commit / RevertTo ]
//	         |
//	  [ stacked map ] -> [ journal ] -> [ stage (sorted changeset) ] -> [ kv bulk ]
//	         |
//	[ read-only store snapshot ]
//
// Nothing reaches the store before Stage.Commit. Typed accessors (accounts, contracts, assets,
// witnesses, proposals, delegations, dynamic properties) encode their records with rlp on top
// of the raw entries.
package state
