// Package codec converts governance records to and from Plutus data trees.
// Every datum and redeemer built by the tool goes through this package so that
// field order and constructor tags are defined exactly once.
package codec

import (
	"fmt"
	"unicode/utf8"

	"github.com/trebuchet-org/tally-cli/internal/domain"
	"github.com/trebuchet-org/tally-cli/internal/domain/cardano"
	"github.com/trebuchet-org/tally-cli/internal/domain/plutus"
)

func kindOf(d plutus.Data) string {
	if d == nil {
		return "nil"
	}
	return d.Kind().String()
}

func fieldPath(base string, name string) string {
	if base == "" {
		return name
	}
	return base + "." + name
}

func indexPath(base string, i int) string {
	return fmt.Sprintf("%s[%d]", base, i)
}

func unexpected(path string, format string, args ...any) error {
	return &domain.DecodeError{Kind: domain.UnexpectedTag, Path: path, Reason: fmt.Sprintf(format, args...)}
}

func missing(path string, want, got int) error {
	return &domain.DecodeError{
		Kind:   domain.MissingField,
		Path:   path,
		Reason: fmt.Sprintf("expected at least %d fields, got %d", want, got),
	}
}

// record wraps a field level failure into the record kind of the decoder
func record(kind domain.DecodeErrorKind, err error) error {
	return &domain.DecodeError{Kind: kind, Err: err}
}

// constrFields returns the fields of a constructor with the given tag and at least minFields fields
func constrFields(d plutus.Data, path string, tag uint64, minFields int) ([]plutus.Data, error) {
	c, ok := d.(plutus.Constr)
	if !ok {
		return nil, unexpected(path, "expected constr, got %s", kindOf(d))
	}
	if c.Tag != tag {
		return nil, unexpected(path, "expected constructor %d, got %d", tag, c.Tag)
	}
	if len(c.Fields) < minFields {
		return nil, missing(path, minFields, len(c.Fields))
	}
	return c.Fields, nil
}

func asConstr(d plutus.Data, path string) (plutus.Constr, error) {
	c, ok := d.(plutus.Constr)
	if !ok {
		return plutus.Constr{}, unexpected(path, "expected constr, got %s", kindOf(d))
	}
	return c, nil
}

func asBytes(d plutus.Data, path string) ([]byte, error) {
	b, ok := d.(plutus.Bytes)
	if !ok {
		return nil, unexpected(path, "expected bytes, got %s", kindOf(d))
	}
	return append([]byte{}, b...), nil
}

func asText(d plutus.Data, path string) (string, error) {
	b, err := asBytes(d, path)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", unexpected(path, "bytes are not valid utf-8 text")
	}
	return string(b), nil
}

func asUint64(d plutus.Data, path string) (uint64, error) {
	i, ok := d.(plutus.Integer)
	if !ok {
		return 0, unexpected(path, "expected integer, got %s", kindOf(d))
	}
	v, ok := i.Uint64()
	if !ok {
		return 0, unexpected(path, "integer %s out of range for uint64", i.Big())
	}
	return v, nil
}

func asUint32(d plutus.Data, path string) (uint32, error) {
	v, err := asUint64(d, path)
	if err != nil {
		return 0, err
	}
	if v > uint64(^uint32(0)) {
		return 0, unexpected(path, "integer %d out of range for uint32", v)
	}
	return uint32(v), nil
}

func asHash28(d plutus.Data, path string) (cardano.Hash28, error) {
	b, err := asBytes(d, path)
	if err != nil {
		return cardano.Hash28{}, err
	}
	h, err := cardano.Hash28FromBytes(b)
	if err != nil {
		return cardano.Hash28{}, unexpected(path, "%v", err)
	}
	return h, nil
}

func asHash32(d plutus.Data, path string) (cardano.Hash32, error) {
	b, err := asBytes(d, path)
	if err != nil {
		return cardano.Hash32{}, err
	}
	h, err := cardano.Hash32FromBytes(b)
	if err != nil {
		return cardano.Hash32{}, unexpected(path, "%v", err)
	}
	return h, nil
}

func asList(d plutus.Data, path string) (plutus.List, error) {
	l, ok := d.(plutus.List)
	if !ok {
		return nil, unexpected(path, "expected list, got %s", kindOf(d))
	}
	return l, nil
}

func asMap(d plutus.Data, path string) (plutus.Map, error) {
	m, ok := d.(plutus.Map)
	if !ok {
		return nil, unexpected(path, "expected map, got %s", kindOf(d))
	}
	return m, nil
}

func text(s string) plutus.Bytes {
	return plutus.Bytes(s)
}

func hashList(hashes []cardano.Hash28) plutus.List {
	out := make(plutus.List, len(hashes))
	for i, h := range hashes {
		out[i] = plutus.Bytes(h.Bytes())
	}
	return out
}

func decodeHashList(d plutus.Data, path string) ([]cardano.Hash28, error) {
	l, err := asList(d, path)
	if err != nil {
		return nil, err
	}
	out := make([]cardano.Hash28, len(l))
	for i, item := range l {
		if out[i], err = asHash28(item, indexPath(path, i)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// EncodeOutputReference encodes Constr 0 [txId, index]
func EncodeOutputReference(ref cardano.OutputReference) plutus.Data {
	return plutus.NewConstr(0, plutus.Bytes(ref.TxID.Bytes()), plutus.NewUint(uint64(ref.Index)))
}

// DecodeOutputReference is the inverse of EncodeOutputReference
func DecodeOutputReference(d plutus.Data) (cardano.OutputReference, error) {
	return decodeOutputReference(d, "outputReference")
}

func decodeOutputReference(d plutus.Data, path string) (cardano.OutputReference, error) {
	fields, err := constrFields(d, path, 0, 2)
	if err != nil {
		return cardano.OutputReference{}, err
	}
	var ref cardano.OutputReference
	if ref.TxID, err = asHash32(fields[0], fieldPath(path, "txId")); err != nil {
		return cardano.OutputReference{}, err
	}
	if ref.Index, err = asUint32(fields[1], fieldPath(path, "index")); err != nil {
		return cardano.OutputReference{}, err
	}
	return ref, nil
}
