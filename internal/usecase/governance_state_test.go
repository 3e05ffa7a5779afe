package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/trebuchet-org/tally-cli/internal/domain"
	"github.com/trebuchet-org/tally-cli/internal/domain/cardano"
	"github.com/trebuchet-org/tally-cli/internal/domain/codec"
	"github.com/trebuchet-org/tally-cli/internal/domain/models"
	"github.com/trebuchet-org/tally-cli/internal/domain/plutus"
	"github.com/trebuchet-org/tally-cli/internal/usecase"
)

func TestGovernanceStateLoadDAO(t *testing.T) {
	ctx := context.Background()

	t.Run("decodes the configuration", func(t *testing.T) {
		c := newChain(t)
		dao, err := c.state().LoadDAO(ctx)
		require.NoError(t, err)
		assert.Equal(t, defaultConfig, dao.Config)
		assert.Equal(t, c.dao.Ref, dao.UTxO.Ref)
	})

	t.Run("skips outputs that are not DAO records", func(t *testing.T) {
		c := newChain(t)
		junk := &models.UTxO{Ref: outRef(0x00, 0), Address: daoScript.Address, RawDatum: datumBytes(t, plutus.NewConstr(0))}
		c.utxos.On("UTxOsAt", mock.Anything, daoScript.Address).Return([]*models.UTxO{c.dao, junk}, nil)

		dao, err := c.state().LoadDAO(ctx)
		require.NoError(t, err)
		assert.Equal(t, c.dao.Ref, dao.UTxO.Ref)
	})

	t.Run("no configuration", func(t *testing.T) {
		c := newChain(t)
		c.utxos.On("UTxOsAt", mock.Anything, daoScript.Address).Return([]*models.UTxO{}, nil)

		_, err := c.state().LoadDAO(ctx)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("missing script", func(t *testing.T) {
		scripts := new(MockScriptRegistry)
		scripts.On("Script", mock.Anything, models.ScriptDAO).
			Return(nil, &domain.ConfigurationError{Item: "scripts.dao", Reason: "not configured"})

		state := usecase.NewGovernanceState(new(MockUTxOSource), scripts, new(MockExecutionIndex), fixedClock(testNow), nil)
		_, err := state.LoadDAO(ctx)

		var cfgErr *domain.ConfigurationError
		assert.True(t, errors.As(err, &cfgErr))
	})
}

func TestGovernanceStateLoadProposals(t *testing.T) {
	ctx := context.Background()

	t.Run("projects status and verifies tokens", func(t *testing.T) {
		c := newChain(t)
		open := activeProposal(outRef(0xaa, 1))
		ended := activeProposal(outRef(0xaa, 2))
		ended.EndTimeMs = testNowMs - 1
		openID := c.addProposal(open)
		endedID := c.addProposal(ended)

		entries, invalid, err := c.state().LoadProposals(ctx)
		require.NoError(t, err)
		assert.Empty(t, invalid)
		require.Len(t, entries, 2)

		assert.Equal(t, openID, entries[0].ID)
		assert.Equal(t, models.StatusActive, entries[0].Proposal.Status.Kind)
		assert.NoError(t, entries[0].Mismatch)

		assert.Equal(t, endedID, entries[1].ID)
		assert.Equal(t, models.StatusReadyForEvaluation, entries[1].Proposal.Status.Kind)
	})

	t.Run("reports invalid records", func(t *testing.T) {
		c := newChain(t)
		c.addProposal(activeProposal(outRef(0xaa, 1)))
		c.proposals = append(c.proposals,
			&models.UTxO{Ref: outRef(0xe0, 7), Address: propScript.Address},
			&models.UTxO{Ref: outRef(0xe0, 8), Address: propScript.Address, RawDatum: datumBytes(t, plutus.NewConstr(3))},
		)

		entries, invalid, err := c.state().LoadProposals(ctx)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
		require.Len(t, invalid, 2)
		assert.Equal(t, "no inline datum", invalid[0].Reason)
		assert.Contains(t, invalid[1].Reason, string(domain.InvalidProposalRecord))
	})

	t.Run("flags a token that does not match the derived id", func(t *testing.T) {
		c := newChain(t)
		p := activeProposal(outRef(0xaa, 1))
		c.proposals = append(c.proposals, &models.UTxO{
			Ref:      outRef(0xe0, 0),
			Address:  propScript.Address,
			Value:    cardano.Lovelace(2_000_000).WithAsset(cardano.AssetID{Policy: proposalHash, Name: "forged"}, 1),
			RawDatum: datumBytes(t, codec.EncodeProposal(p)),
		})

		entries, _, err := c.state().LoadProposals(ctx)
		require.NoError(t, err)
		require.Len(t, entries, 1)

		var mismatch *domain.IdentifierMismatchError
		require.True(t, errors.As(entries[0].Mismatch, &mismatch))
		assert.Equal(t, "proposal", mismatch.Entity)
		assert.Equal(t, "666f72676564", mismatch.Actual)
	})
}

func TestResolveProposal(t *testing.T) {
	ctx := context.Background()
	c := newChain(t)
	first := activeProposal(outRef(0xaa, 1))
	second := activeProposal(outRef(0xaa, 2))
	second.Name = "Second"
	firstID := c.addProposal(first)
	c.addProposal(second)

	entries, _, err := c.state().LoadProposals(ctx)
	require.NoError(t, err)

	t.Run("by id prefix", func(t *testing.T) {
		entry, err := usecase.ResolveProposal(ctx, entries, firstID.String()[:10], nil)
		require.NoError(t, err)
		assert.Equal(t, firstID, entry.ID)
	})

	t.Run("by name ignoring case", func(t *testing.T) {
		entry, err := usecase.ResolveProposal(ctx, entries, "second", nil)
		require.NoError(t, err)
		assert.Equal(t, "Second", entry.Proposal.Name)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := usecase.ResolveProposal(ctx, entries, "nothing", nil)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("ambiguous without selector", func(t *testing.T) {
		_, err := usecase.ResolveProposal(ctx, entries, "", nil)
		assert.ErrorIs(t, err, domain.ErrAmbiguous)
	})

	t.Run("ambiguous with selector", func(t *testing.T) {
		selector := new(MockProposalSelector)
		selector.On("SelectProposal", ctx, entries, "Select a proposal").Return(entries[1], nil)

		entry, err := usecase.ResolveProposal(ctx, entries, "", selector)
		require.NoError(t, err)
		assert.Same(t, entries[1], entry)
		selector.AssertExpectations(t)
	})
}

func TestVotingPower(t *testing.T) {
	utxos := []*models.UTxO{
		{Ref: outRef(0x01, 0), Value: cardano.Lovelace(1).WithAsset(govToken, 40)},
		{Ref: outRef(0x01, 1), Value: cardano.Lovelace(1)},
		{Ref: outRef(0x01, 2), Value: cardano.Lovelace(1).WithAsset(govToken, 2)},
	}

	power, holders := usecase.VotingPower(utxos, govToken)
	assert.Equal(t, uint64(42), power)
	assert.Len(t, holders, 2)

	power, holders = usecase.VotingPower(nil, govToken)
	assert.Zero(t, power)
	assert.Empty(t, holders)
}
