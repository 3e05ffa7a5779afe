package cardano

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// AssetID is a native asset: a minting policy plus an asset name
type AssetID struct {
	Policy PolicyID
	Name   string // raw asset name bytes
}

// ParseAssetID parses a unit string: 56 hex characters of policy id followed
// by the hex encoded asset name.
func ParseAssetID(unit string) (AssetID, error) {
	unit = strings.ReplaceAll(strings.TrimSpace(unit), ".", "")
	if len(unit) < 2*Hash28Size {
		return AssetID{}, fmt.Errorf("asset unit %q is shorter than a policy id", unit)
	}
	policy, err := ParseHash28(unit[:2*Hash28Size])
	if err != nil {
		return AssetID{}, fmt.Errorf("invalid policy id in %q: %w", unit, err)
	}
	name, err := hex.DecodeString(unit[2*Hash28Size:])
	if err != nil {
		return AssetID{}, fmt.Errorf("invalid asset name in %q: %w", unit, err)
	}
	if len(name) > 32 {
		return AssetID{}, fmt.Errorf("asset name in %q exceeds 32 bytes", unit)
	}
	return AssetID{Policy: policy, Name: string(name)}, nil
}

// AssetIDFromBytes splits the concatenated policy id and asset name bytes
func AssetIDFromBytes(b []byte) (AssetID, error) {
	if len(b) < Hash28Size {
		return AssetID{}, fmt.Errorf("asset id must be at least %d bytes, got %d", Hash28Size, len(b))
	}
	var id AssetID
	copy(id.Policy[:], b[:Hash28Size])
	id.Name = string(b[Hash28Size:])
	return id, nil
}

// Bytes returns policy id bytes followed by the asset name
func (a AssetID) Bytes() []byte {
	out := make([]byte, 0, Hash28Size+len(a.Name))
	out = append(out, a.Policy[:]...)
	return append(out, a.Name...)
}

// NameHex returns the asset name as hex
func (a AssetID) NameHex() string {
	return hex.EncodeToString([]byte(a.Name))
}

// Unit returns the policy id and asset name as a single hex string
func (a AssetID) Unit() string {
	return a.Policy.String() + a.NameHex()
}

func (a AssetID) String() string { return a.Unit() }

func (a AssetID) MarshalText() ([]byte, error) { return []byte(a.Unit()), nil }

func (a *AssetID) UnmarshalText(b []byte) error {
	parsed, err := ParseAssetID(string(b))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Compare orders assets by policy id bytes then asset name bytes
func (a AssetID) Compare(b AssetID) int {
	if c := bytes.Compare(a.Policy[:], b.Policy[:]); c != 0 {
		return c
	}
	return strings.Compare(a.Name, b.Name)
}

// Assets maps native assets to quantities
type Assets map[AssetID]uint64

// Sorted returns the asset ids in canonical ledger order
func (m Assets) Sorted() []AssetID {
	var ids []AssetID
	for id := range m {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, AssetID.Compare)
	return ids
}

// Policies returns the distinct policies in canonical order
func (m Assets) Policies() []PolicyID {
	var out []PolicyID
	for _, id := range m.Sorted() {
		if len(out) == 0 || out[len(out)-1] != id.Policy {
			out = append(out, id.Policy)
		}
	}
	return out
}

// Clone returns a copy of the asset map
func (m Assets) Clone() Assets {
	out := make(Assets, len(m))
	maps.Copy(out, m)
	return out
}

// Value is an amount of lovelace plus native assets
type Value struct {
	Lovelace uint64 `json:"lovelace"`
	Assets   Assets `json:"assets,omitempty"`
}

// Lovelace returns a value holding only ada
func Lovelace(n uint64) Value {
	return Value{Lovelace: n}
}

// WithAsset returns a copy of v with qty units of id added
func (v Value) WithAsset(id AssetID, qty uint64) Value {
	out := v.Clone()
	if out.Assets == nil {
		out.Assets = Assets{}
	}
	out.Assets[id] += qty
	return out
}

// Clone returns a deep copy of v
func (v Value) Clone() Value {
	out := Value{Lovelace: v.Lovelace}
	if v.Assets != nil {
		out.Assets = v.Assets.Clone()
	}
	return out
}

// Add returns v + o
func (v Value) Add(o Value) Value {
	out := v.Clone()
	out.Lovelace += o.Lovelace
	for id, qty := range o.Assets {
		if out.Assets == nil {
			out.Assets = Assets{}
		}
		out.Assets[id] += qty
	}
	return out
}

// Covers reports whether v holds at least o of every component
func (v Value) Covers(o Value) bool {
	if v.Lovelace < o.Lovelace {
		return false
	}
	for id, qty := range o.Assets {
		if v.Assets[id] < qty {
			return false
		}
	}
	return true
}

// Sub returns v - o, failing if o is not covered by v. Zero quantities are dropped.
func (v Value) Sub(o Value) (Value, error) {
	if !v.Covers(o) {
		return Value{}, fmt.Errorf("value does not cover the amount subtracted")
	}
	out := v.Clone()
	out.Lovelace -= o.Lovelace
	for id, qty := range o.Assets {
		out.Assets[id] -= qty
		if out.Assets[id] == 0 {
			delete(out.Assets, id)
		}
	}
	return out, nil
}

// Quantity returns the quantity of a native asset held in v
func (v Value) Quantity(id AssetID) uint64 {
	return v.Assets[id]
}

// QuantityOfPolicy returns the assets of a single policy held in v
func (v Value) QuantityOfPolicy(policy PolicyID) Assets {
	out := Assets{}
	for id, qty := range v.Assets {
		if id.Policy == policy {
			out[id] = qty
		}
	}
	return out
}
