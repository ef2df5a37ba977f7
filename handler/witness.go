// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package handler

import (
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"

	"github.com/vechain/txexec/state"
	"github.com/vechain/txexec/thor"
	"github.com/vechain/txexec/tx"
)

func validateVoteWitness(ctx *Context, p *tx.VoteWitness) error {
	if p.Owner.IsZero() {
		return invalid("Invalid address")
	}
	if len(p.Votes) == 0 {
		return invalid("VoteNumber must more than 0")
	}
	if len(p.Votes) > thor.MaxVoteNumber {
		return invalid("VoteNumber more than maxVoteNumber %d", thor.MaxVoteNumber)
	}
	var sum uint64
	for _, v := range p.Votes {
		if v.Witness.IsZero() {
			return invalid("Invalid vote address!")
		}
		if v.Count == 0 {
			return invalid("vote count must be greater than 0")
		}
		exists, err := ctx.State.Exists(v.Witness)
		if err != nil {
			return err
		}
		if !exists {
			return invalid("Account[%v] not exists", v.Witness)
		}
		w, err := ctx.State.GetWitness(v.Witness)
		if err != nil {
			return err
		}
		if w == nil {
			return invalid("Witness[%v] not exists", v.Witness)
		}
		var overflow bool
		if sum, overflow = math.SafeAdd(sum, v.Count); overflow {
			return invalid("long overflow")
		}
	}
	owner, err := ownerAccount(ctx, p.Owner, "Account[%v] not exists")
	if err != nil {
		return err
	}
	if power := owner.TronPower(); sum > power {
		return invalid("The total number of votes[%d] is greater than the tronPower[%d]", sum, power)
	}
	return nil
}

func executeVoteWitness(ctx *Context, p *tx.VoteWitness) error {
	owner, err := mustAccount(ctx, p.Owner)
	if err != nil {
		return err
	}
	rec, err := ctx.State.GetVoteRecord(p.Owner)
	if err != nil {
		return err
	}
	if rec == nil {
		rec = &state.VoteRecord{Old: owner.Votes}
	}
	votes := make([]state.Vote, 0, len(p.Votes))
	for _, v := range p.Votes {
		votes = append(votes, state.Vote{Witness: v.Witness, Count: v.Count})
	}
	rec.New = votes
	owner.Votes = votes
	if err := ctx.State.SetVoteRecord(p.Owner, rec); err != nil {
		return err
	}
	return ctx.State.SetAccount(p.Owner, owner)
}

func validateWitnessCreate(ctx *Context, p *tx.WitnessCreate) error {
	if p.Owner.IsZero() {
		return invalid("Invalid address")
	}
	if !validURL(p.URL) {
		return invalid("Invalid url")
	}
	owner, err := ownerAccount(ctx, p.Owner, "account[%v] not exists")
	if err != nil {
		return err
	}
	w, err := ctx.State.GetWitness(p.Owner)
	if err != nil {
		return err
	}
	if w != nil {
		return invalid("Witness[%v] has existed", p.Owner)
	}
	if owner.Balance < ctx.Config.AccountUpgradeCost {
		return invalid("balance < AccountUpgradeCost")
	}
	return nil
}

func executeWitnessCreate(ctx *Context, p *tx.WitnessCreate) error {
	if err := ctx.State.SetWitness(&state.Witness{Address: p.Owner, URL: p.URL}); err != nil {
		return err
	}
	owner, err := mustAccount(ctx, p.Owner)
	if err != nil {
		return err
	}
	owner.IsWitness = true
	if err := ctx.burn(owner, ctx.Config.AccountUpgradeCost); err != nil {
		return err
	}
	return ctx.State.SetAccount(p.Owner, owner)
}

func validateWitnessUpdate(ctx *Context, p *tx.WitnessUpdate) error {
	if _, err := ownerAccount(ctx, p.Owner, "account[%v] does not exist"); err != nil {
		return err
	}
	if !validURL(p.URL) {
		return invalid("Invalid url")
	}
	w, err := ctx.State.GetWitness(p.Owner)
	if err != nil {
		return err
	}
	if w == nil {
		return invalid("Witness does not exist")
	}
	return nil
}

func executeWitnessUpdate(ctx *Context, p *tx.WitnessUpdate) error {
	w, err := ctx.State.GetWitness(p.Owner)
	if err != nil {
		return err
	}
	if w == nil {
		return errors.New("witness does not exist")
	}
	w.URL = p.URL
	return ctx.State.SetWitness(w)
}

func validateWithdrawBalance(ctx *Context, p *tx.WithdrawBalance) error {
	owner, err := ownerAccount(ctx, p.Owner, "Account[%v] not exists")
	if err != nil {
		return err
	}
	if !owner.IsWitness {
		return invalid("Account[%v] is not a witnessAccount", p.Owner)
	}
	if ctx.BlockTime-min(ctx.BlockTime, owner.LatestWithdrawTime) < thor.WitnessAllowanceMillis {
		return invalid("The last withdraw time is %d, less than 24 hours", owner.LatestWithdrawTime)
	}
	if owner.Allowance == 0 {
		return invalid("witnessAccount does not have any reward")
	}
	if _, overflow := math.SafeAdd(owner.Balance, owner.Allowance); overflow {
		return invalid("long overflow")
	}
	return nil
}

func executeWithdrawBalance(ctx *Context, p *tx.WithdrawBalance) error {
	owner, err := mustAccount(ctx, p.Owner)
	if err != nil {
		return err
	}
	if err := owner.AddBalance(owner.Allowance); err != nil {
		return err
	}
	owner.Allowance = 0
	owner.LatestWithdrawTime = ctx.BlockTime
	return ctx.State.SetAccount(p.Owner, owner)
}

// witnessOwner checks that the owner is an existing witness.
func witnessOwner(ctx *Context, owner thor.Address) error {
	if _, err := ownerAccount(ctx, owner, "Account[%v] not exists"); err != nil {
		return err
	}
	w, err := ctx.State.GetWitness(owner)
	if err != nil {
		return err
	}
	if w == nil {
		return invalid("Witness[%v] not exists", owner)
	}
	return nil
}

// liveProposal loads a proposal that is neither expired nor canceled.
func liveProposal(ctx *Context, id uint64) (*state.Proposal, error) {
	next, err := ctx.State.GetDynamic(state.NextProposalID)
	if err != nil {
		return nil, err
	}
	var p *state.Proposal
	if id < next {
		if p, err = ctx.State.GetProposal(id); err != nil {
			return nil, err
		}
	}
	if p == nil {
		return nil, invalid("Proposal[%d] not exists", id)
	}
	if ctx.BlockTime >= p.ExpirationTime {
		return nil, invalid("Proposal[%d] expired", id)
	}
	if p.State == state.ProposalCanceled {
		return nil, invalid("Proposal[%d] canceled", id)
	}
	return p, nil
}

func validateProposalCreate(ctx *Context, p *tx.ProposalCreate) error {
	if err := witnessOwner(ctx, p.Owner); err != nil {
		return err
	}
	if len(p.Params) == 0 {
		return invalid("This proposal has no parameter.")
	}
	for _, param := range p.Params {
		if err := thor.CheckParam(param); err != nil {
			return invalid("%v", err)
		}
	}
	return nil
}

func executeProposalCreate(ctx *Context, p *tx.ProposalCreate) error {
	id, err := ctx.State.GetDynamic(state.NextProposalID)
	if err != nil {
		return err
	}
	if err := ctx.State.AddDynamic(state.NextProposalID, 1); err != nil {
		return err
	}
	return ctx.State.SetProposal(&state.Proposal{
		ID:             id,
		Proposer:       p.Owner,
		Params:         append([]thor.ChainParam(nil), p.Params...),
		CreateTime:     ctx.BlockTime,
		ExpirationTime: ctx.BlockTime + thor.ProposalExpireMillis,
		State:          state.ProposalPending,
	})
}

func validateProposalApprove(ctx *Context, p *tx.ProposalApprove) error {
	if err := witnessOwner(ctx, p.Owner); err != nil {
		return err
	}
	proposal, err := liveProposal(ctx, p.ProposalID)
	if err != nil {
		return err
	}
	approved := proposal.HasApproval(p.Owner)
	if p.Approve && approved {
		return invalid("Witness[%v]has approved proposal[%d] before", p.Owner, p.ProposalID)
	}
	if !p.Approve && !approved {
		return invalid("Witness[%v]has not approved proposal[%d] before", p.Owner, p.ProposalID)
	}
	return nil
}

func executeProposalApprove(ctx *Context, p *tx.ProposalApprove) error {
	proposal, err := ctx.State.GetProposal(p.ProposalID)
	if err != nil {
		return err
	}
	if proposal == nil {
		return errors.Errorf("proposal %d does not exist", p.ProposalID)
	}
	if p.Approve {
		proposal.Approvals = append(proposal.Approvals, p.Owner)
	} else {
		approvals := proposal.Approvals[:0]
		for _, a := range proposal.Approvals {
			if a != p.Owner {
				approvals = append(approvals, a)
			}
		}
		proposal.Approvals = approvals
	}
	return ctx.State.SetProposal(proposal)
}

func validateProposalDelete(ctx *Context, p *tx.ProposalDelete) error {
	if _, err := ownerAccount(ctx, p.Owner, "Account[%v] not exists"); err != nil {
		return err
	}
	proposal, err := liveProposal(ctx, p.ProposalID)
	if err != nil {
		return err
	}
	if proposal.Proposer != p.Owner {
		return invalid("Proposal[%d] is not proposed by %v", p.ProposalID, p.Owner)
	}
	return nil
}

func executeProposalDelete(ctx *Context, p *tx.ProposalDelete) error {
	proposal, err := ctx.State.GetProposal(p.ProposalID)
	if err != nil {
		return err
	}
	if proposal == nil {
		return errors.Errorf("proposal %d does not exist", p.ProposalID)
	}
	proposal.State = state.ProposalCanceled
	return ctx.State.SetProposal(proposal)
}
