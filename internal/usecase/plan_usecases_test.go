package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/trebuchet-org/tally-cli/internal/domain"
	"github.com/trebuchet-org/tally-cli/internal/domain/cardano"
	"github.com/trebuchet-org/tally-cli/internal/domain/codec"
	"github.com/trebuchet-org/tally-cli/internal/domain/identifier"
	"github.com/trebuchet-org/tally-cli/internal/domain/models"
	"github.com/trebuchet-org/tally-cli/internal/domain/plutus"
	"github.com/trebuchet-org/tally-cli/internal/usecase"
)

func grantDraft(t *testing.T) *usecase.ProposalDraft {
	return &usecase.ProposalDraft{
		Name:        "Fund the grants program",
		Description: "First round",
		Creator:     bech32(t, voterAddress),
		Duration:    48 * time.Hour,
		Options:     2,
		Actions: []usecase.ActionDraft{{
			Name:            "grant",
			Option:          1,
			ActivationDelay: time.Hour,
			Targets:         []usecase.TargetDraft{{Address: bech32(t, payeeAddress), Lovelace: 10_000_000}},
		}},
	}
}

func TestCreateProposal(t *testing.T) {
	ctx := context.Background()

	t.Run("plans proposal and actions", func(t *testing.T) {
		c := newChain(t)
		c.addVoterFunds(50)
		c.addVoterFunds(0)
		seed := c.voter[0].Ref
		pid := identifier.DeriveProposalID(seed)
		c.writer.On("WritePlan", ctx, "create-"+pid.String()[:8], mock.Anything).Return("/plans/create.json", nil)

		uc := usecase.NewCreateProposal(c.cfg, c.state(), c.utxos, c.writer, c.sink, testLogger())
		result, err := uc.Run(ctx, usecase.CreateProposalParams{Draft: grantDraft(t)})
		require.NoError(t, err)
		assert.Equal(t, "/plans/create.json", result.Path)

		plan := result.Plan
		assert.Equal(t, "create-proposal", plan.Kind)
		assert.Equal(t, []cardano.OutputReference{seed}, plan.Inputs)
		assert.Contains(t, plan.ReferenceInputs, c.dao.Ref)
		assert.Contains(t, plan.ReferenceInputs, *propScript.ReferenceInput)
		assert.Contains(t, plan.ReferenceInputs, *actScript.ReferenceInput)
		assert.Equal(t, pid, plan.Identifiers["proposal"])

		require.Len(t, plan.Mints, 2)
		assert.Equal(t, identifier.ProposalToken(proposalHash, pid), plan.Mints[0].Asset)
		assert.Equal(t, int64(1), plan.Mints[0].Quantity)
		assert.True(t, plutus.Equal(codec.ProposalCreateRedeemer(seed), plan.Mints[0].Redeemer))

		require.Len(t, plan.Outputs, 2)
		proposal, err := codec.DecodeStoredProposal(plan.Outputs[0].Datum)
		require.NoError(t, err)
		assert.Equal(t, []uint64{0, 0}, proposal.Tally)
		assert.Equal(t, testNowMs+48*hourMs, proposal.EndTimeMs)
		assert.Equal(t, models.Active, proposal.Status)
		assert.Equal(t, seed, proposal.Identifier)
		assert.Equal(t, uint64(1), plan.Outputs[0].Value.Quantity(plan.Mints[0].Asset))

		action, err := codec.DecodeAction(plan.Outputs[1].Datum)
		require.NoError(t, err)
		assert.Equal(t, treasScript.Address, action.TreasuryAddress)
		assert.Equal(t, proposal.EndTimeMs+hourMs, action.ActivationTimeMs)
		assert.Equal(t, pid, action.Identifier.ProposalIdentifier)
		assert.Equal(t, identifier.DeriveActionID(action.Identifier), plan.Identifiers["action[0]"])
		assert.Equal(t, identifier.ActionToken(actionHash, plan.Identifiers["action[0]"]), plan.Mints[1].Asset)

		assert.Equal(t, testNowMs, plan.ValidFromMs)
		assert.Equal(t, testNowMs+uint64(10*time.Minute/time.Millisecond), plan.ValidToMs)
		c.writer.AssertExpectations(t)
	})

	t.Run("explicit seed", func(t *testing.T) {
		c := newChain(t)
		c.addVoterFunds(50)
		seedUTxO := &models.UTxO{Ref: outRef(0x44, 3), Address: voterAddress, Value: cardano.Lovelace(3_000_000)}
		c.utxos.On("UTxO", mock.Anything, seedUTxO.Ref).Return(seedUTxO, nil)

		draft := grantDraft(t)
		draft.Seed = seedUTxO.Ref.String()
		uc := usecase.NewCreateProposal(c.cfg, c.state(), c.utxos, c.writer, c.sink, testLogger())
		result, err := uc.Run(ctx, usecase.CreateProposalParams{Draft: draft, DryRun: true})
		require.NoError(t, err)

		assert.Equal(t, identifier.DeriveProposalID(seedUTxO.Ref), result.Plan.Identifiers["proposal"])
		assert.Equal(t, []cardano.OutputReference{seedUTxO.Ref, c.voter[0].Ref}, result.Plan.Inputs)
		assert.Empty(t, result.Path)
		c.writer.AssertNotCalled(t, "WritePlan", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejections", func(t *testing.T) {
		tests := []struct {
			name   string
			votes  uint64
			mutate func(*usecase.ProposalDraft)
		}{
			{name: "not enough voting power", votes: 5},
			{name: "duration too long", votes: 50, mutate: func(d *usecase.ProposalDraft) { d.Duration = 31 * 24 * time.Hour }},
			{name: "duration too short", votes: 50, mutate: func(d *usecase.ProposalDraft) { d.Duration = time.Minute }},
			{name: "single option", votes: 50, mutate: func(d *usecase.ProposalDraft) { d.Options = 1; d.Actions = nil }},
			{name: "action option out of range", votes: 50, mutate: func(d *usecase.ProposalDraft) { d.Actions[0].Option = 2 }},
			{name: "activation before end", votes: 50, mutate: func(d *usecase.ProposalDraft) {
				at := testNow
				d.Actions[0].ActivationTime = &at
			}},
			{name: "mainnet creator", votes: 50, mutate: func(d *usecase.ProposalDraft) {
				d.Creator, _ = voterAddress.Bech32(cardano.Mainnet)
			}},
			{name: "bad token unit", votes: 50, mutate: func(d *usecase.ProposalDraft) {
				d.Actions[0].Targets[0].Tokens = map[string]uint64{"abcd": 1}
			}},
			{name: "bad target datum", votes: 50, mutate: func(d *usecase.ProposalDraft) {
				d.Actions[0].Targets[0].Datum = "ff"
			}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				c := newChain(t)
				c.addVoterFunds(tt.votes)
				draft := grantDraft(t)
				if tt.mutate != nil {
					tt.mutate(draft)
				}

				uc := usecase.NewCreateProposal(c.cfg, c.state(), c.utxos, c.writer, c.sink, testLogger())
				_, err := uc.Run(ctx, usecase.CreateProposalParams{Draft: draft, DryRun: true})
				assert.ErrorIs(t, err, domain.ErrInvalidDraft)
			})
		}
	})

	t.Run("proposal script not whitelisted", func(t *testing.T) {
		c := newChain(t)
		c.addVoterFunds(50)
		cfg := *defaultConfig
		cfg.WhitelistedProposalScripts = []cardano.ScriptHash{hash28(0x0f)}
		c.dao.RawDatum = datumBytes(t, codec.EncodeDAOConfig(&cfg))

		uc := usecase.NewCreateProposal(c.cfg, c.state(), c.utxos, c.writer, c.sink, testLogger())
		_, err := uc.Run(ctx, usecase.CreateProposalParams{Draft: grantDraft(t), DryRun: true})

		var cfgErr *domain.ConfigurationError
		require.True(t, errors.As(err, &cfgErr))
		assert.Equal(t, "scripts.proposal", cfgErr.Item)
	})
}

func TestParseProposalDraft(t *testing.T) {
	t.Run("full draft", func(t *testing.T) {
		raw := []byte(`
name: Fund the grants program
description: First round
creator: addr_test1vqyqsq
seed: aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa#1
duration: 72h
options: 3
actions:
  - name: grant
    option: 1
    activation_delay: 24h
    targets:
      - address: addr_test1vqyqsq
        lovelace: 1000000
        tokens:
          "0505050505050505050505050505050505050505050505050505050505054f4e45": 2
        datum: d87980
`)
		draft, err := usecase.ParseProposalDraft(raw)
		require.NoError(t, err)
		assert.Equal(t, 72*time.Hour, draft.Duration)
		assert.Equal(t, 3, draft.Options)
		require.Len(t, draft.Actions, 1)
		assert.Equal(t, 24*time.Hour, draft.Actions[0].ActivationDelay)
		assert.Equal(t, uint64(2), draft.Actions[0].Targets[0].Tokens["0505050505050505050505050505050505050505050505050505050505054f4e45"])
		require.NoError(t, draft.Validate())

		seed, err := draft.SeedRef()
		require.NoError(t, err)
		assert.Equal(t, uint32(1), seed.Index)
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := usecase.ParseProposalDraft([]byte("name: x\nquorum: 3\n"))
		assert.ErrorIs(t, err, domain.ErrInvalidDraft)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := usecase.ParseProposalDraft(nil)
		assert.ErrorIs(t, err, domain.ErrInvalidDraft)
	})

	t.Run("validation collects problems", func(t *testing.T) {
		draft := &usecase.ProposalDraft{Options: 1, Actions: []usecase.ActionDraft{{Option: 4}}}
		err := draft.Validate()
		require.ErrorIs(t, err, domain.ErrInvalidDraft)
		assert.Contains(t, err.Error(), "name is required")
		assert.Contains(t, err.Error(), "at least 2 options")
		assert.Contains(t, err.Error(), "actions[0]: option 4 is out of range")
		assert.Contains(t, err.Error(), "actions[0]: at least one target is required")
	})
}

func TestCastVote(t *testing.T) {
	ctx := context.Background()

	t.Run("adds the voter weight", func(t *testing.T) {
		c := newChain(t)
		p := activeProposal(outRef(0xaa, 1))
		p.Tally = []uint64{5, 7}
		pid := c.addProposal(p)
		c.addVoterFunds(30)
		c.addVoterFunds(10)
		c.writer.On("WritePlan", ctx, "vote-"+pid.String()[:8], mock.Anything).Return("/plans/vote.json", nil)

		uc := usecase.NewCastVote(c.cfg, c.state(), c.selector, c.writer, c.sink, testLogger())
		result, err := uc.Run(ctx, usecase.CastVoteParams{Ref: pid.String(), Option: 1, Voter: bech32(t, voterAddress)})
		require.NoError(t, err)

		assert.Equal(t, uint64(40), result.Weight)
		assert.Equal(t, []uint64{5, 47}, result.Tally)

		plan := result.Plan
		require.Len(t, plan.Spends, 1)
		assert.Equal(t, c.proposals[0].Ref, plan.Spends[0].Ref)
		assert.True(t, plutus.Equal(codec.ProposalVoteRedeemer(1), plan.Spends[0].Redeemer))
		assert.Equal(t, []cardano.OutputReference{c.voter[0].Ref, c.voter[1].Ref}, plan.Inputs)

		require.Len(t, plan.Outputs, 1)
		assert.Equal(t, c.proposals[0].Value, plan.Outputs[0].Value)
		updated, err := codec.DecodeStoredProposal(plan.Outputs[0].Datum)
		require.NoError(t, err)
		assert.Equal(t, []uint64{5, 47}, updated.Tally)
		assert.Equal(t, p.EndTimeMs, updated.EndTimeMs)
		assert.Equal(t, testNowMs+uint64(10*time.Minute/time.Millisecond), plan.ValidToMs)
	})

	t.Run("validity ends with the voting period", func(t *testing.T) {
		c := newChain(t)
		p := activeProposal(outRef(0xaa, 1))
		p.EndTimeMs = testNowMs + 1000
		pid := c.addProposal(p)
		c.addVoterFunds(30)

		uc := usecase.NewCastVote(c.cfg, c.state(), c.selector, c.writer, c.sink, testLogger())
		result, err := uc.Run(ctx, usecase.CastVoteParams{Ref: pid.String(), Option: 0, Voter: bech32(t, voterAddress), DryRun: true})
		require.NoError(t, err)
		assert.Equal(t, p.EndTimeMs, result.Plan.ValidToMs)
	})

	t.Run("rejections", func(t *testing.T) {
		tests := []struct {
			name    string
			endTime uint64
			votes   uint64
			option  uint32
			want    error
		}{
			{"voting ended", testNowMs, 30, 0, domain.ErrProposalClosed},
			{"no voting power", testNowMs + hourMs, 0, 0, domain.ErrInvalidOption},
			{"option out of range", testNowMs + hourMs, 30, 2, domain.ErrInvalidOption},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				c := newChain(t)
				p := activeProposal(outRef(0xaa, 1))
				p.EndTimeMs = tt.endTime
				pid := c.addProposal(p)
				c.addVoterFunds(tt.votes)

				uc := usecase.NewCastVote(c.cfg, c.state(), c.selector, c.writer, c.sink, testLogger())
				_, err := uc.Run(ctx, usecase.CastVoteParams{Ref: pid.String(), Option: tt.option, Voter: bech32(t, voterAddress)})
				assert.ErrorIs(t, err, tt.want)
			})
		}
	})

	t.Run("identifier mismatch", func(t *testing.T) {
		c := newChain(t)
		p := activeProposal(outRef(0xaa, 1))
		c.proposals = append(c.proposals, &models.UTxO{
			Ref:      outRef(0xe0, 0),
			Address:  propScript.Address,
			Value:    cardano.Lovelace(2_000_000),
			RawDatum: datumBytes(t, codec.EncodeProposal(p)),
		})
		c.addVoterFunds(30)

		uc := usecase.NewCastVote(c.cfg, c.state(), c.selector, c.writer, c.sink, testLogger())
		_, err := uc.Run(ctx, usecase.CastVoteParams{Ref: p.Name, Option: 0, Voter: bech32(t, voterAddress)})

		var mismatch *domain.IdentifierMismatchError
		assert.True(t, errors.As(err, &mismatch))
	})
}

func TestEvaluateProposal(t *testing.T) {
	ctx := context.Background()

	ended := func(tally ...uint64) *models.Proposal {
		p := activeProposal(outRef(0xaa, 1))
		p.Tally = tally
		p.EndTimeMs = testNowMs - hourMs
		return p
	}

	t.Run("settles on passed and is repeatable", func(t *testing.T) {
		c := newChain(t)
		p := ended(30, 90)
		pid := c.addProposal(p)
		uc := usecase.NewEvaluateProposal(c.state(), c.selector, c.writer, c.sink, testLogger())

		first, err := uc.Run(ctx, usecase.EvaluateProposalParams{Ref: pid.String(), DryRun: true})
		require.NoError(t, err)
		second, err := uc.Run(ctx, usecase.EvaluateProposalParams{Ref: pid.String(), DryRun: true})
		require.NoError(t, err)

		assert.Equal(t, models.Passed(1), first.Status)
		assert.Equal(t, first.Plan, second.Plan)

		plan := first.Plan
		assert.True(t, plutus.Equal(codec.ProposalEvaluateRedeemer(), plan.Spends[0].Redeemer))
		assert.Equal(t, p.EndTimeMs, plan.ValidFromMs)
		assert.Zero(t, plan.ValidToMs)

		updated, err := codec.DecodeStoredProposal(plan.Outputs[0].Datum)
		require.NoError(t, err)
		assert.Equal(t, models.Passed(1), updated.Status)
		assert.Equal(t, p.Tally, updated.Tally)
	})

	t.Run("outcomes", func(t *testing.T) {
		tests := []struct {
			name  string
			tally []uint64
			want  models.ProposalStatus
		}{
			{"quorum missed", []uint64{40, 50}, models.FailedQuorum},
			{"threshold missed", []uint64{50, 70}, models.FailedThreshold},
			{"exact threshold", []uint64{40, 60}, models.Passed(1)},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				c := newChain(t)
				pid := c.addProposal(ended(tt.tally...))
				uc := usecase.NewEvaluateProposal(c.state(), c.selector, c.writer, c.sink, testLogger())

				result, err := uc.Run(ctx, usecase.EvaluateProposalParams{Ref: pid.String(), DryRun: true})
				require.NoError(t, err)
				assert.Equal(t, tt.want, result.Status)
			})
		}
	})

	t.Run("still voting", func(t *testing.T) {
		c := newChain(t)
		pid := c.addProposal(activeProposal(outRef(0xaa, 1)))
		uc := usecase.NewEvaluateProposal(c.state(), c.selector, c.writer, c.sink, testLogger())

		_, err := uc.Run(ctx, usecase.EvaluateProposalParams{Ref: pid.String()})
		assert.ErrorIs(t, err, domain.ErrProposalNotReady)
	})

	t.Run("already evaluated", func(t *testing.T) {
		c := newChain(t)
		p := ended(0, 200)
		p.Status = models.Passed(1)
		pid := c.addProposal(p)
		uc := usecase.NewEvaluateProposal(c.state(), c.selector, c.writer, c.sink, testLogger())

		_, err := uc.Run(ctx, usecase.EvaluateProposalParams{Ref: pid.String()})
		assert.ErrorIs(t, err, domain.ErrAlreadyEvaluated)
	})
}

func TestExecuteAction(t *testing.T) {
	ctx := context.Background()

	passed := func(option uint32) *models.Proposal {
		p := activeProposal(outRef(0xaa, 1))
		p.Tally = []uint64{10, 200}
		p.EndTimeMs = testNowMs - 2*hourMs
		p.Status = models.Passed(option)
		return p
	}

	t.Run("pays targets from the treasury", func(t *testing.T) {
		c := newChain(t)
		pid := c.addProposal(passed(1))
		aid := c.addAction(payoutAction(pid, 0, 10_000_000))
		c.addTreasury(4_000_000)
		c.addTreasury(8_000_000)
		c.addTreasury(50_000_000)
		c.writer.On("WritePlan", ctx, "execute-"+aid.String()[:8], mock.Anything).Return("/plans/execute.json", nil)

		uc := usecase.NewExecuteAction(c.cfg, c.state(), c.writer, c.sink, testLogger())
		result, err := uc.Run(ctx, usecase.ExecuteActionParams{Ref: aid.String()[:12]})
		require.NoError(t, err)
		assert.Equal(t, "/plans/execute.json", result.Path)
		assert.Len(t, result.Treasury, 2)

		plan := result.Plan
		require.Len(t, plan.Spends, 3)
		assert.Equal(t, c.actions[0].Ref, plan.Spends[0].Ref)
		assert.True(t, plutus.Equal(codec.ActionExecuteRedeemer(), plan.Spends[0].Redeemer))
		assert.True(t, plutus.Equal(codec.TreasurySpendRedeemer(), plan.Spends[1].Redeemer))
		assert.Contains(t, plan.ReferenceInputs, c.proposals[0].Ref)

		require.Len(t, plan.Mints, 1)
		assert.Equal(t, identifier.ActionToken(actionHash, aid), plan.Mints[0].Asset)
		assert.Equal(t, int64(-1), plan.Mints[0].Quantity)

		require.Len(t, plan.Outputs, 2)
		assert.Equal(t, payeeAddress, plan.Outputs[0].Address)
		assert.Equal(t, uint64(10_000_000), plan.Outputs[0].Value.Lovelace)
		assert.Nil(t, plan.Outputs[0].Datum)

		// 12 ada selected minus 10 paid plus the 2 ada action deposit
		assert.Equal(t, treasScript.Address, plan.Outputs[1].Address)
		assert.Equal(t, uint64(4_000_000), plan.Outputs[1].Value.Lovelace)
		assert.Empty(t, plan.Outputs[1].Value.Assets)
		assert.Equal(t, payoutAction(pid, 0, 0).ActivationTimeMs, plan.ValidFromMs)
	})

	t.Run("inline datum on target", func(t *testing.T) {
		c := newChain(t)
		pid := c.addProposal(passed(1))
		a := payoutAction(pid, 0, 1_000_000)
		a.Targets[0].Datum = models.InlineDatum(datumBytes(t, plutus.NewConstr(0)))
		aid := c.addAction(a)
		c.addTreasury(5_000_000)

		uc := usecase.NewExecuteAction(c.cfg, c.state(), c.writer, c.sink, testLogger())
		result, err := uc.Run(ctx, usecase.ExecuteActionParams{Ref: aid.String(), DryRun: true})
		require.NoError(t, err)
		assert.True(t, plutus.Equal(plutus.NewConstr(0), result.Plan.Outputs[0].Datum))
	})

	t.Run("rejections", func(t *testing.T) {
		tests := []struct {
			name     string
			proposal *models.Proposal
			mutate   func(*models.Action)
			treasury uint64
			executed bool
			want     error
		}{
			{name: "already executed", proposal: passed(1), treasury: 50_000_000, executed: true, want: domain.ErrAlreadyExecuted},
			{name: "option lost", proposal: passed(0), treasury: 50_000_000, want: domain.ErrActionNotExecutable},
			{name: "not yet active", proposal: passed(1), treasury: 50_000_000, want: domain.ErrActionNotExecutable,
				mutate: func(a *models.Action) { a.ActivationTimeMs = testNowMs + hourMs }},
			{name: "treasury too small", proposal: passed(1), treasury: 1_000_000, want: domain.ErrInsufficientFunds},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				c := newChain(t)
				pid := c.addProposal(tt.proposal)
				a := payoutAction(pid, 0, 10_000_000)
				if tt.mutate != nil {
					tt.mutate(a)
				}
				aid := c.addAction(a)
				c.addTreasury(tt.treasury)
				if tt.executed {
					c.index.ExpectedCalls = nil
					c.index.On("IsExecuted", mock.Anything, aid).Return(true, nil)
				}

				uc := usecase.NewExecuteAction(c.cfg, c.state(), c.writer, c.sink, testLogger())
				_, err := uc.Run(ctx, usecase.ExecuteActionParams{Ref: aid.String()})
				assert.ErrorIs(t, err, tt.want)
			})
		}
	})

	t.Run("proposal missing", func(t *testing.T) {
		c := newChain(t)
		aid := c.addAction(payoutAction(hash32(0x99), 0, 1))
		uc := usecase.NewExecuteAction(c.cfg, c.state(), c.writer, c.sink, testLogger())

		_, err := uc.Run(ctx, usecase.ExecuteActionParams{Ref: aid.String()})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
