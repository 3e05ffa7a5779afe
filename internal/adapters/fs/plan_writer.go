package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/trebuchet-org/tally-cli/internal/config"
	"github.com/trebuchet-org/tally-cli/internal/domain/cardano"
	"github.com/trebuchet-org/tally-cli/internal/domain/models"
	"github.com/trebuchet-org/tally-cli/internal/domain/plutus"
	"github.com/trebuchet-org/tally-cli/internal/usecase"
)

// PlansDir is where transaction plans are written, under the data dir
const PlansDir = "plans"

// PlanDocument is the on-disk form of a transaction plan consumed by the
// transaction builder
type PlanDocument struct {
	Kind            string            `json:"kind" yaml:"kind"`
	Network         string            `json:"network" yaml:"network"`
	Spends          []SpendDocument   `json:"spends,omitempty" yaml:"spends,omitempty"`
	Inputs          []string          `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	ReferenceInputs []string          `json:"referenceInputs,omitempty" yaml:"referenceInputs,omitempty"`
	Mints           []MintDocument    `json:"mints,omitempty" yaml:"mints,omitempty"`
	Outputs         []OutputDocument  `json:"outputs" yaml:"outputs"`
	ValidFromMs     uint64            `json:"validFromMs,omitempty" yaml:"validFromMs,omitempty"`
	ValidToMs       uint64            `json:"validToMs,omitempty" yaml:"validToMs,omitempty"`
	Identifiers     map[string]string `json:"identifiers,omitempty" yaml:"identifiers,omitempty"`
}

type SpendDocument struct {
	Ref      string       `json:"ref" yaml:"ref"`
	Redeemer DataDocument `json:"redeemer" yaml:"redeemer"`
}

type MintDocument struct {
	Unit     string       `json:"unit" yaml:"unit"`
	Quantity int64        `json:"quantity" yaml:"quantity"`
	Redeemer DataDocument `json:"redeemer" yaml:"redeemer"`
}

type OutputDocument struct {
	Address  string            `json:"address" yaml:"address"`
	Lovelace uint64            `json:"lovelace" yaml:"lovelace"`
	Assets   map[string]uint64 `json:"assets,omitempty" yaml:"assets,omitempty"`
	Datum    *DataDocument     `json:"inlineDatum,omitempty" yaml:"inlineDatum,omitempty"`
}

// DataDocument carries script data as CBOR hex plus a readable rendering
type DataDocument struct {
	CBOR       string `json:"cbor" yaml:"cbor"`
	Diagnostic string `json:"diagnostic" yaml:"diagnostic"`
}

// NewPlanDocument converts a plan to its document form
func NewPlanDocument(plan *models.TxPlan, network cardano.Network) (*PlanDocument, error) {
	doc := &PlanDocument{
		Kind:        plan.Kind,
		Network:     network.String(),
		ValidFromMs: plan.ValidFromMs,
		ValidToMs:   plan.ValidToMs,
		Outputs:     []OutputDocument{},
	}

	for _, s := range plan.Spends {
		redeemer, err := newDataDocument(s.Redeemer)
		if err != nil {
			return nil, fmt.Errorf("spend %s: %w", s.Ref, err)
		}
		doc.Spends = append(doc.Spends, SpendDocument{Ref: s.Ref.String(), Redeemer: *redeemer})
	}
	for _, r := range plan.Inputs {
		doc.Inputs = append(doc.Inputs, r.String())
	}
	for _, r := range plan.ReferenceInputs {
		doc.ReferenceInputs = append(doc.ReferenceInputs, r.String())
	}
	for _, m := range plan.Mints {
		redeemer, err := newDataDocument(m.Redeemer)
		if err != nil {
			return nil, fmt.Errorf("mint %s: %w", m.Asset, err)
		}
		doc.Mints = append(doc.Mints, MintDocument{Unit: m.Asset.Unit(), Quantity: m.Quantity, Redeemer: *redeemer})
	}
	for i, o := range plan.Outputs {
		out, err := newOutputDocument(o, network)
		if err != nil {
			return nil, fmt.Errorf("output %d: %w", i, err)
		}
		doc.Outputs = append(doc.Outputs, *out)
	}

	if len(plan.Identifiers) > 0 {
		doc.Identifiers = make(map[string]string, len(plan.Identifiers))
		for k, v := range plan.Identifiers {
			doc.Identifiers[k] = v.String()
		}
	}
	return doc, nil
}

func newOutputDocument(o models.OutputSpec, network cardano.Network) (*OutputDocument, error) {
	addr, err := o.Address.Bech32(network)
	if err != nil {
		return nil, err
	}
	out := &OutputDocument{Address: addr, Lovelace: o.Value.Lovelace}
	if len(o.Value.Assets) > 0 {
		out.Assets = make(map[string]uint64, len(o.Value.Assets))
		for id, qty := range o.Value.Assets {
			out.Assets[id.Unit()] = qty
		}
	}
	if o.Datum != nil {
		if out.Datum, err = newDataDocument(o.Datum); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func newDataDocument(d plutus.Data) (*DataDocument, error) {
	if d == nil {
		return nil, fmt.Errorf("missing script data")
	}
	cborHex, err := plutus.MarshalHex(d)
	if err != nil {
		return nil, err
	}
	return &DataDocument{CBOR: cborHex, Diagnostic: plutus.String(d)}, nil
}

// PlanWriterAdapter implements PlanWriter by writing plan documents to the data dir
type PlanWriterAdapter struct {
	dir     string
	format  string
	network cardano.Network
}

// NewPlanWriterAdapter creates a new PlanWriterAdapter
func NewPlanWriterAdapter(cfg *config.RuntimeConfig) *PlanWriterAdapter {
	return &PlanWriterAdapter{
		dir:     filepath.Join(cfg.DataDir, PlansDir),
		format:  cfg.PlanFormat,
		network: cfg.Network,
	}
}

// WritePlan writes a plan under name and returns the file path
func (w *PlanWriterAdapter) WritePlan(ctx context.Context, name string, plan *models.TxPlan) (string, error) {
	doc, err := NewPlanDocument(plan, w.network)
	if err != nil {
		return "", err
	}

	var data []byte
	ext := "json"
	switch w.format {
	case "yaml":
		ext = "yaml"
		data, err = yaml.Marshal(doc)
	default:
		data, err = json.MarshalIndent(doc, "", "  ")
	}
	if err != nil {
		return "", fmt.Errorf("failed to marshal plan: %w", err)
	}

	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create plans directory: %w", err)
	}
	path := filepath.Join(w.dir, fmt.Sprintf("%s.%s", name, ext))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write plan file: %w", err)
	}
	return path, nil
}

// Ensure PlanWriterAdapter implements PlanWriter
var _ usecase.PlanWriter = (*PlanWriterAdapter)(nil)
