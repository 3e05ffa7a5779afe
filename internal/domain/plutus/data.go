// Package plutus implements the Plutus data tree used for every datum and
// redeemer exchanged with the on-chain validators.
package plutus

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
)

// Kind identifies the case of a Data node
type Kind uint8

const (
	KindInteger Kind = iota
	KindBytes
	KindList
	KindMap
	KindConstr
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindBytes:
		return "bytes"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	case KindConstr:
		return "constr"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Data is a node of the Plutus data tree. The set of implementations is
// closed: Integer, Bytes, List, Map and Constr.
type Data interface {
	Kind() Kind
	isData()
}

// Integer is an arbitrary precision integer node
type Integer struct {
	Value *big.Int
}

// Bytes is a byte string node
type Bytes []byte

// List is an ordered sequence of nodes
type List []Data

// Pair is a single map entry
type Pair struct {
	Key   Data
	Value Data
}

// Map is an ordered sequence of key/value pairs. Keys are not checked for uniqueness.
type Map []Pair

// Constr is a constructor node: an alternative index plus ordered fields
type Constr struct {
	Tag    uint64
	Fields []Data
}

func (Integer) Kind() Kind { return KindInteger }
func (Bytes) Kind() Kind   { return KindBytes }
func (List) Kind() Kind    { return KindList }
func (Map) Kind() Kind     { return KindMap }
func (Constr) Kind() Kind  { return KindConstr }

func (Integer) isData() {}
func (Bytes) isData()   {}
func (List) isData()    {}
func (Map) isData()     {}
func (Constr) isData()  {}

// NewInt creates an Integer from an int64
func NewInt(v int64) Integer {
	return Integer{Value: big.NewInt(v)}
}

// NewUint creates an Integer from a uint64
func NewUint(v uint64) Integer {
	return Integer{Value: new(big.Int).SetUint64(v)}
}

// NewBigInt creates an Integer holding a copy of v
func NewBigInt(v *big.Int) Integer {
	return Integer{Value: new(big.Int).Set(v)}
}

// NewConstr creates a constructor node
func NewConstr(tag uint64, fields ...Data) Constr {
	if fields == nil {
		fields = []Data{}
	}
	return Constr{Tag: tag, Fields: fields}
}

// Big returns the integer value, treating a nil value as zero
func (i Integer) Big() *big.Int {
	if i.Value == nil {
		return new(big.Int)
	}
	return i.Value
}

// Uint64 returns the value if it fits in a uint64
func (i Integer) Uint64() (uint64, bool) {
	v := i.Big()
	if !v.IsUint64() {
		return 0, false
	}
	return v.Uint64(), true
}

// Int64 returns the value if it fits in an int64
func (i Integer) Int64() (int64, bool) {
	v := i.Big()
	if !v.IsInt64() {
		return 0, false
	}
	return v.Int64(), true
}

// Equal reports whether two trees are structurally identical. Order of list
// elements, map entries and constructor fields is significant.
func Equal(a, b Data) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case Integer:
		y, ok := b.(Integer)
		return ok && x.Big().Cmp(y.Big()) == 0
	case Bytes:
		y, ok := b.(Bytes)
		return ok && bytes.Equal(x, y)
	case List:
		y, ok := b.(List)
		return ok && equalSlice(x, y)
	case Map:
		y, ok := b.(Map)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i].Key, y[i].Key) || !Equal(x[i].Value, y[i].Value) {
				return false
			}
		}
		return true
	case Constr:
		y, ok := b.(Constr)
		return ok && x.Tag == y.Tag && equalSlice(x.Fields, y.Fields)
	default:
		return false
	}
}

func equalSlice(a, b []Data) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// String renders a tree in a compact diagnostic notation, e.g. Constr 0 [h'ab', 1]
func String(d Data) string {
	var sb strings.Builder
	writeDiag(&sb, d)
	return sb.String()
}

func (i Integer) String() string { return i.Big().String() }
func (b Bytes) String() string   { return String(b) }
func (l List) String() string    { return String(l) }
func (m Map) String() string     { return String(m) }
func (c Constr) String() string  { return String(c) }

func writeDiag(sb *strings.Builder, d Data) {
	switch v := d.(type) {
	case Integer:
		sb.WriteString(v.Big().String())
	case Bytes:
		sb.WriteString("h'")
		sb.WriteString(hex.EncodeToString(v))
		sb.WriteString("'")
	case List:
		sb.WriteString("[")
		for i, item := range v {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeDiag(sb, item)
		}
		sb.WriteString("]")
	case Map:
		sb.WriteString("{")
		for i, p := range v {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeDiag(sb, p.Key)
			sb.WriteString(": ")
			writeDiag(sb, p.Value)
		}
		sb.WriteString("}")
	case Constr:
		fmt.Fprintf(sb, "Constr %d [", v.Tag)
		for i, f := range v.Fields {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeDiag(sb, f)
		}
		sb.WriteString("]")
	default:
		sb.WriteString("<nil>")
	}
}
