package cardano

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// OutputReference points at an output of a transaction
type OutputReference struct {
	TxID  Hash32 `json:"txId"`
	Index uint32 `json:"index"`
}

// ParseOutputReference parses the "txid#index" form
func ParseOutputReference(s string) (OutputReference, error) {
	txPart, idxPart, ok := strings.Cut(strings.TrimSpace(s), "#")
	if !ok {
		return OutputReference{}, fmt.Errorf("output reference %q must be txid#index", s)
	}
	txID, err := ParseHash32(txPart)
	if err != nil {
		return OutputReference{}, fmt.Errorf("invalid transaction id in %q: %w", s, err)
	}
	idx, err := strconv.ParseUint(idxPart, 10, 32)
	if err != nil {
		return OutputReference{}, fmt.Errorf("invalid output index in %q: %w", s, err)
	}
	return OutputReference{TxID: txID, Index: uint32(idx)}, nil
}

func (r OutputReference) String() string {
	return fmt.Sprintf("%s#%d", r.TxID, r.Index)
}

func (r OutputReference) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *OutputReference) UnmarshalText(b []byte) error {
	parsed, err := ParseOutputReference(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Less orders references by transaction id then index
func (r OutputReference) Less(o OutputReference) bool {
	if c := bytes.Compare(r.TxID[:], o.TxID[:]); c != 0 {
		return c < 0
	}
	return r.Index < o.Index
}
