package fs

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/trebuchet-org/tally-cli/internal/config"
	"github.com/trebuchet-org/tally-cli/internal/domain"
	"github.com/trebuchet-org/tally-cli/internal/domain/cardano"
	"github.com/trebuchet-org/tally-cli/internal/domain/models"
	"github.com/trebuchet-org/tally-cli/internal/usecase"
)

// SnapshotFile holds the chain outputs the CLI reads, in the chain indexer's
// address-outputs format.
const SnapshotFile = "utxos.json"

// utxoRecord is one output as exported by the indexer
type utxoRecord struct {
	TxHash      string         `json:"tx_hash"`
	OutputIndex uint32         `json:"output_index"`
	Address     string         `json:"address"`
	Amount      []amountRecord `json:"amount"`
	InlineDatum string         `json:"inline_datum,omitempty"`
}

type amountRecord struct {
	Unit     string `json:"unit"`
	Quantity string `json:"quantity"`
}

// SnapshotStoreAdapter implements UTxOSource over a JSON snapshot on disk
type SnapshotStoreAdapter struct {
	path string

	mu     sync.Mutex
	loaded bool
	utxos  []*models.UTxO
}

// NewSnapshotStoreAdapter creates a new SnapshotStoreAdapter
func NewSnapshotStoreAdapter(cfg *config.RuntimeConfig) *SnapshotStoreAdapter {
	return &SnapshotStoreAdapter{
		path: filepath.Join(cfg.DataDir, SnapshotFile),
	}
}

// UTxOsAt returns the outputs locked at an address
func (s *SnapshotStoreAdapter) UTxOsAt(ctx context.Context, address cardano.Address) ([]*models.UTxO, error) {
	utxos, err := s.load()
	if err != nil {
		return nil, err
	}

	var out []*models.UTxO
	for _, u := range utxos {
		if u.Address.Equal(address) {
			out = append(out, u)
		}
	}
	return out, nil
}

// UTxO returns a single output by reference
func (s *SnapshotStoreAdapter) UTxO(ctx context.Context, ref cardano.OutputReference) (*models.UTxO, error) {
	utxos, err := s.load()
	if err != nil {
		return nil, err
	}
	for _, u := range utxos {
		if u.Ref == ref {
			return u, nil
		}
	}
	return nil, fmt.Errorf("%w: output %s", domain.ErrNotFound, ref)
}

// Path returns the snapshot file location
func (s *SnapshotStoreAdapter) Path() string {
	return s.path
}

func (s *SnapshotStoreAdapter) load() ([]*models.UTxO, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return s.utxos, nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.loaded = true
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	var records []utxoRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot file: %w", err)
	}

	utxos := make([]*models.UTxO, 0, len(records))
	for i, r := range records {
		u, err := r.toUTxO()
		if err != nil {
			return nil, fmt.Errorf("snapshot entry %d: %w", i, err)
		}
		utxos = append(utxos, u)
	}

	s.utxos = utxos
	s.loaded = true
	return utxos, nil
}

func (r *utxoRecord) toUTxO() (*models.UTxO, error) {
	txID, err := cardano.ParseHash32(r.TxHash)
	if err != nil {
		return nil, fmt.Errorf("invalid tx_hash: %w", err)
	}
	addr, _, err := cardano.ParseAddress(r.Address)
	if err != nil {
		return nil, fmt.Errorf("invalid address: %w", err)
	}

	u := &models.UTxO{
		Ref:     cardano.OutputReference{TxID: txID, Index: r.OutputIndex},
		Address: addr,
	}
	for _, a := range r.Amount {
		qty, err := strconv.ParseUint(a.Quantity, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid quantity of %s: %w", a.Unit, err)
		}
		if a.Unit == "lovelace" {
			u.Value.Lovelace += qty
			continue
		}
		id, err := cardano.ParseAssetID(a.Unit)
		if err != nil {
			return nil, err
		}
		u.Value = u.Value.WithAsset(id, qty)
	}

	if r.InlineDatum != "" {
		if u.RawDatum, err = hex.DecodeString(r.InlineDatum); err != nil {
			return nil, fmt.Errorf("invalid inline_datum: %w", err)
		}
	}
	return u, nil
}

// Ensure SnapshotStoreAdapter implements UTxOSource
var _ usecase.UTxOSource = (*SnapshotStoreAdapter)(nil)
