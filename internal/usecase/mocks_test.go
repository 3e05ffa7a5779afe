package usecase_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/trebuchet-org/tally-cli/internal/config"
	"github.com/trebuchet-org/tally-cli/internal/domain/cardano"
	"github.com/trebuchet-org/tally-cli/internal/domain/codec"
	"github.com/trebuchet-org/tally-cli/internal/domain/identifier"
	"github.com/trebuchet-org/tally-cli/internal/domain/models"
	"github.com/trebuchet-org/tally-cli/internal/domain/plutus"
	"github.com/trebuchet-org/tally-cli/internal/logging"
	"github.com/trebuchet-org/tally-cli/internal/usecase"
)

// MockUTxOSource is a mock implementation of UTxOSource
type MockUTxOSource struct {
	mock.Mock
}

func (m *MockUTxOSource) UTxOsAt(ctx context.Context, address cardano.Address) ([]*models.UTxO, error) {
	args := m.Called(ctx, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.UTxO), args.Error(1)
}

func (m *MockUTxOSource) UTxO(ctx context.Context, ref cardano.OutputReference) (*models.UTxO, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UTxO), args.Error(1)
}

// MockExecutionIndex is a mock implementation of ExecutionIndex
type MockExecutionIndex struct {
	mock.Mock
}

func (m *MockExecutionIndex) IsExecuted(ctx context.Context, id cardano.Hash32) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// MockScriptRegistry is a mock implementation of ScriptRegistry
type MockScriptRegistry struct {
	mock.Mock
}

func (m *MockScriptRegistry) Script(ctx context.Context, role models.ScriptRole) (*models.Script, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Script), args.Error(1)
}

// MockPlanWriter is a mock implementation of PlanWriter
type MockPlanWriter struct {
	mock.Mock
}

func (m *MockPlanWriter) WritePlan(ctx context.Context, name string, plan *models.TxPlan) (string, error) {
	args := m.Called(ctx, name, plan)
	return args.String(0), args.Error(1)
}

// MockProposalSelector is a mock implementation of ProposalSelector
type MockProposalSelector struct {
	mock.Mock
}

func (m *MockProposalSelector) SelectProposal(ctx context.Context, entries []*usecase.ProposalEntry, prompt string) (*usecase.ProposalEntry, error) {
	args := m.Called(ctx, entries, prompt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.ProposalEntry), args.Error(1)
}

// MockProgressSink records progress events
type MockProgressSink struct {
	events []usecase.ProgressEvent
	infos  []string
}

func (m *MockProgressSink) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	m.events = append(m.events, event)
}

func (m *MockProgressSink) Info(message string) {
	m.infos = append(m.infos, message)
}

func (m *MockProgressSink) Error(message string) {}

func (m *MockProgressSink) stages() []string {
	out := make([]string, len(m.events))
	for i, e := range m.events {
		out[i] = e.Stage
	}
	return out
}

func testLogger() *slog.Logger {
	return logging.NewLogger(&config.RuntimeConfig{})
}

type fixedClock time.Time

func (c fixedClock) Now() time.Time { return time.Time(c) }

// Chain fixture shared by the use case tests

var (
	daoHash       = hash28(0x01)
	proposalHash  = hash28(0x02)
	actionHash    = hash28(0x03)
	treasuryHash  = hash28(0x04)
	govToken      = cardano.AssetID{Policy: hash28(0x05), Name: "VOTE"}
	voterKey      = hash28(0x06)
	payeeKey      = hash28(0x07)
	testNow       = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	testNowMs     = uint64(testNow.UnixMilli())
	daoScript     = script(models.ScriptDAO, daoHash, 0xd1)
	propScript    = script(models.ScriptProposal, proposalHash, 0xd2)
	actScript     = script(models.ScriptAction, actionHash, 0xd3)
	treasScript   = script(models.ScriptTreasury, treasuryHash, 0xd4)
	voterAddress  = cardano.Address{Payment: cardano.KeyCredential(voterKey)}
	payeeAddress  = cardano.Address{Payment: cardano.KeyCredential(payeeKey)}
	hourMs        = uint64(time.Hour / time.Millisecond)
	defaultConfig = &models.DAOConfig{
		Name:                       "Tally DAO",
		GovernanceToken:            govToken,
		ThresholdPercent:           60,
		MinProposalDurationMs:      hourMs,
		MaxProposalDurationMs:      30 * 24 * hourMs,
		QuorumVotes:                100,
		MinProposalCreateVotes:     10,
		WhitelistedProposalScripts: []cardano.ScriptHash{proposalHash},
		WhitelistedActionScripts:   []cardano.ScriptHash{actionHash},
	}
)

func hash28(b byte) cardano.Hash28 {
	var h cardano.Hash28
	copy(h[:], bytes.Repeat([]byte{b}, cardano.Hash28Size))
	return h
}

func hash32(b byte) cardano.Hash32 {
	var h cardano.Hash32
	copy(h[:], bytes.Repeat([]byte{b}, cardano.Hash32Size))
	return h
}

func outRef(b byte, idx uint32) cardano.OutputReference {
	return cardano.OutputReference{TxID: hash32(b), Index: idx}
}

func script(role models.ScriptRole, h cardano.ScriptHash, refByte byte) *models.Script {
	ref := outRef(refByte, 0)
	return &models.Script{Role: role, Hash: h, Address: cardano.ScriptAddress(h), ReferenceInput: &ref}
}

func bech32(t *testing.T, a cardano.Address) string {
	t.Helper()
	s, err := a.Bech32(cardano.Testnet)
	require.NoError(t, err)
	return s
}

func datumBytes(t *testing.T, d plutus.Data) []byte {
	t.Helper()
	raw, err := plutus.Marshal(d)
	require.NoError(t, err)
	return raw
}

type chain struct {
	t        *testing.T
	utxos    *MockUTxOSource
	scripts  *MockScriptRegistry
	index    *MockExecutionIndex
	writer   *MockPlanWriter
	selector *MockProposalSelector
	sink     *MockProgressSink
	cfg      *config.RuntimeConfig
	dao      *models.UTxO

	proposals []*models.UTxO
	actions   []*models.UTxO
	treasury  []*models.UTxO
	voter     []*models.UTxO
}

func newChain(t *testing.T) *chain {
	c := &chain{
		t:        t,
		utxos:    new(MockUTxOSource),
		scripts:  new(MockScriptRegistry),
		index:    new(MockExecutionIndex),
		writer:   new(MockPlanWriter),
		selector: new(MockProposalSelector),
		sink:     &MockProgressSink{},
		cfg: &config.RuntimeConfig{
			Network:           cardano.Testnet,
			MinOutputLovelace: 2_000_000,
			TxValidity:        10 * time.Minute,
		},
	}
	c.dao = &models.UTxO{
		Ref:      outRef(0xd0, 0),
		Address:  daoScript.Address,
		Value:    cardano.Lovelace(2_000_000),
		RawDatum: datumBytes(t, codec.EncodeDAOConfig(defaultConfig)),
	}
	for _, s := range []*models.Script{daoScript, propScript, actScript, treasScript} {
		c.scripts.On("Script", mock.Anything, s.Role).Return(s, nil).Maybe()
	}
	c.index.On("IsExecuted", mock.Anything, mock.Anything).Return(false, nil).Maybe()
	return c
}

// addProposal stores a proposal output carrying its identifying token
func (c *chain) addProposal(p *models.Proposal) cardano.Hash32 {
	id := identifier.DeriveProposalID(p.Identifier)
	c.proposals = append(c.proposals, &models.UTxO{
		Ref:      outRef(0xe0, uint32(len(c.proposals))),
		Address:  propScript.Address,
		Value:    cardano.Lovelace(2_000_000).WithAsset(identifier.ProposalToken(proposalHash, id), 1),
		RawDatum: datumBytes(c.t, codec.EncodeProposal(p)),
	})
	return id
}

func (c *chain) addAction(a *models.Action) cardano.Hash32 {
	id := identifier.DeriveActionID(a.Identifier)
	c.actions = append(c.actions, &models.UTxO{
		Ref:      outRef(0xe1, uint32(len(c.actions))),
		Address:  actScript.Address,
		Value:    cardano.Lovelace(2_000_000).WithAsset(identifier.ActionToken(actionHash, id), 1),
		RawDatum: datumBytes(c.t, codec.EncodeAction(a)),
	})
	return id
}

func (c *chain) addVoterFunds(votes uint64) {
	c.voter = append(c.voter, &models.UTxO{
		Ref:     outRef(0xf0, uint32(len(c.voter))),
		Address: voterAddress,
		Value:   cardano.Lovelace(5_000_000).WithAsset(govToken, votes),
	})
}

func (c *chain) addTreasury(lovelace uint64) {
	c.treasury = append(c.treasury, &models.UTxO{
		Ref:     outRef(0xf1, uint32(len(c.treasury))),
		Address: treasScript.Address,
		Value:   cardano.Lovelace(lovelace),
	})
}

// state registers the output queries and returns the governance state over them
func (c *chain) state() *usecase.GovernanceState {
	c.utxos.On("UTxOsAt", mock.Anything, daoScript.Address).Return([]*models.UTxO{c.dao}, nil).Maybe()
	c.utxos.On("UTxOsAt", mock.Anything, propScript.Address).Return(c.proposals, nil).Maybe()
	c.utxos.On("UTxOsAt", mock.Anything, actScript.Address).Return(c.actions, nil).Maybe()
	c.utxos.On("UTxOsAt", mock.Anything, treasScript.Address).Return(c.treasury, nil).Maybe()
	c.utxos.On("UTxOsAt", mock.Anything, voterAddress).Return(c.voter, nil).Maybe()

	return usecase.NewGovernanceState(c.utxos, c.scripts, c.index, fixedClock(testNow), testLogger())
}

func activeProposal(seed cardano.OutputReference) *models.Proposal {
	return &models.Proposal{
		Name:        "Fund the grants program",
		Description: "Pay the first grants round",
		Tally:       []uint64{0, 0},
		EndTimeMs:   testNowMs + 24*hourMs,
		Status:      models.Active,
		Identifier:  seed,
	}
}

func payoutAction(proposalID cardano.Hash32, idx uint32, lovelace uint64) *models.Action {
	return &models.Action{
		Name:             "grant",
		Description:      "pay grantee",
		ActivationTimeMs: testNowMs - hourMs,
		Identifier: models.ActionIdentifier{
			ProposalScriptHash: proposalHash,
			ProposalIdentifier: proposalID,
			ActionIndex:        idx,
		},
		Option:          1,
		Targets:         []models.Target{{Address: payeeAddress, Lovelace: lovelace, Datum: models.NoDatum()}},
		TreasuryAddress: treasScript.Address,
	}
}
