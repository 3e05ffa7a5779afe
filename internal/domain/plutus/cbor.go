package plutus

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"

	"github.com/fxamacker/cbor/v2"
)

// CBOR major types
const (
	majorUint   byte = 0
	majorNint   byte = 1
	majorBytes  byte = 2
	majorText   byte = 3
	majorArray  byte = 4
	majorMap    byte = 5
	majorTag    byte = 6
	majorSimple byte = 7
)

const (
	// byte strings longer than this are split into indefinite-length chunks
	bytesChunkSize = 64

	indefiniteBytes = 0x5f
	indefiniteArray = 0x9f
	breakCode       = 0xff

	tagBignumPos     = 2
	tagBignumNeg     = 3
	tagConstrGeneral = 102
	tagConstrSmall   = 121  // alternatives 0..6
	tagConstrLarge   = 1280 // alternatives 7..127
)

// ErrInvalidCBOR is returned when bytes cannot be read as Plutus data
var ErrInvalidCBOR = errors.New("invalid plutus data cbor")

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.EncOptions{
		BigIntConvert: cbor.BigIntConvertShortest,
	}.EncMode()
	if err != nil {
		panic(fmt.Sprintf("plutus: cbor encoder options: %v", err))
	}

	decMode, err = cbor.DecOptions{
		MaxNestedLevels: 1024,
		IndefLength:     cbor.IndefLengthAllowed,
		TagsMd:          cbor.TagsAllowed,
		BigIntDec:       cbor.BigIntDecodeValue,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("plutus: cbor decoder options: %v", err))
	}
}

// Marshal serialises a tree to the canonical CBOR encoding understood by the
// ledger's serialiseData builtin.
func Marshal(d Data) ([]byte, error) {
	var buf bytes.Buffer
	if err := encode(&buf, d); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalHex is Marshal rendered as lowercase hex
func MarshalHex(d Data) (string, error) {
	b, err := Marshal(d)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func encode(buf *bytes.Buffer, d Data) error {
	switch v := d.(type) {
	case Integer:
		return encodeInteger(buf, v.Big())
	case Bytes:
		return encodeBytes(buf, v)
	case List:
		return encodeArray(buf, v)
	case Map:
		writeHead(buf, majorMap, uint64(len(v)))
		for _, p := range v {
			if err := encode(buf, p.Key); err != nil {
				return err
			}
			if err := encode(buf, p.Value); err != nil {
				return err
			}
		}
		return nil
	case Constr:
		return encodeConstr(buf, v)
	case nil:
		return fmt.Errorf("%w: nil node", ErrInvalidCBOR)
	default:
		return fmt.Errorf("%w: unsupported node %T", ErrInvalidCBOR, d)
	}
}

func encodeInteger(buf *bytes.Buffer, v *big.Int) error {
	// CBOR negative integers carry -1-n
	tag := uint64(tagBignumPos)
	mag := new(big.Int).Set(v)
	if v.Sign() < 0 {
		tag = tagBignumNeg
		mag.Neg(mag).Sub(mag, big.NewInt(1))
	}

	if mag.IsUint64() {
		b, err := encMode.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode integer: %w", err)
		}
		buf.Write(b)
		return nil
	}

	writeHead(buf, majorTag, tag)
	return encodeBytes(buf, mag.Bytes())
}

func encodeBytes(buf *bytes.Buffer, b []byte) error {
	if len(b) <= bytesChunkSize {
		enc, err := encMode.Marshal([]byte(b))
		if err != nil {
			return fmt.Errorf("failed to encode bytes: %w", err)
		}
		buf.Write(enc)
		return nil
	}

	buf.WriteByte(indefiniteBytes)
	for start := 0; start < len(b); start += bytesChunkSize {
		end := min(start+bytesChunkSize, len(b))
		enc, err := encMode.Marshal(b[start:end])
		if err != nil {
			return fmt.Errorf("failed to encode bytes chunk: %w", err)
		}
		buf.Write(enc)
	}
	buf.WriteByte(breakCode)
	return nil
}

// encodeArray writes empty arrays definite and everything else indefinite
func encodeArray(buf *bytes.Buffer, items []Data) error {
	if len(items) == 0 {
		writeHead(buf, majorArray, 0)
		return nil
	}
	buf.WriteByte(indefiniteArray)
	for _, item := range items {
		if err := encode(buf, item); err != nil {
			return err
		}
	}
	buf.WriteByte(breakCode)
	return nil
}

func encodeConstr(buf *bytes.Buffer, c Constr) error {
	var fields bytes.Buffer
	if err := encodeArray(&fields, c.Fields); err != nil {
		return err
	}

	var tag cbor.RawTag
	switch {
	case c.Tag <= 6:
		tag = cbor.RawTag{Number: tagConstrSmall + c.Tag, Content: fields.Bytes()}
	case c.Tag <= 127:
		tag = cbor.RawTag{Number: tagConstrLarge + c.Tag - 7, Content: fields.Bytes()}
	default:
		var content bytes.Buffer
		writeHead(&content, majorArray, 2)
		writeHead(&content, majorUint, c.Tag)
		content.Write(fields.Bytes())
		tag = cbor.RawTag{Number: tagConstrGeneral, Content: content.Bytes()}
	}

	b, err := encMode.Marshal(tag)
	if err != nil {
		return fmt.Errorf("failed to encode constructor %d: %w", c.Tag, err)
	}
	buf.Write(b)
	return nil
}

// writeHead writes a definite-length CBOR item head
func writeHead(buf *bytes.Buffer, major byte, n uint64) {
	m := major << 5
	switch {
	case n < 24:
		buf.WriteByte(m | byte(n))
	case n <= 0xff:
		buf.WriteByte(m | 24)
		buf.WriteByte(byte(n))
	case n <= 0xffff:
		buf.WriteByte(m | 25)
		buf.Write(binary.BigEndian.AppendUint16(nil, uint16(n)))
	case n <= 0xffffffff:
		buf.WriteByte(m | 26)
		buf.Write(binary.BigEndian.AppendUint32(nil, uint32(n)))
	default:
		buf.WriteByte(m | 27)
		buf.Write(binary.BigEndian.AppendUint64(nil, n))
	}
}

// Unmarshal parses CBOR bytes into a tree. Both definite and indefinite
// length encodings are accepted; trailing bytes are rejected.
func Unmarshal(b []byte) (Data, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrInvalidCBOR)
	}
	d, rest, err := decodeFirst(b)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrInvalidCBOR, len(rest))
	}
	return d, nil
}

// UnmarshalHex is Unmarshal for a hex string
func UnmarshalHex(s string) (Data, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCBOR, err)
	}
	return Unmarshal(b)
}

func decodeFirst(b []byte) (Data, []byte, error) {
	if len(b) == 0 {
		return nil, nil, fmt.Errorf("%w: unexpected end of input", ErrInvalidCBOR)
	}
	var raw cbor.RawMessage
	rest, err := decMode.UnmarshalFirst(b, &raw)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidCBOR, err)
	}
	d, err := decodeRaw(raw)
	if err != nil {
		return nil, nil, err
	}
	return d, rest, nil
}

func decodeRaw(raw cbor.RawMessage) (Data, error) {
	switch raw[0] >> 5 {
	case majorUint, majorNint:
		return decodeInteger(raw)

	case majorBytes:
		var b []byte
		if err := decMode.Unmarshal(raw, &b); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCBOR, err)
		}
		if b == nil {
			b = []byte{}
		}
		return Bytes(b), nil

	case majorArray:
		items, err := decodeItems(raw)
		if err != nil {
			return nil, err
		}
		return List(items), nil

	case majorMap:
		return decodeMap(raw)

	case majorTag:
		var tag cbor.RawTag
		if err := decMode.Unmarshal(raw, &tag); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCBOR, err)
		}
		return decodeTag(raw, tag)

	case majorText:
		return nil, fmt.Errorf("%w: text strings are not plutus data", ErrInvalidCBOR)

	default:
		return nil, fmt.Errorf("%w: unsupported major type %d", ErrInvalidCBOR, raw[0]>>5)
	}
}

func decodeInteger(raw cbor.RawMessage) (Data, error) {
	var n big.Int
	if err := decMode.Unmarshal(raw, &n); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCBOR, err)
	}
	return Integer{Value: &n}, nil
}

func decodeItems(raw cbor.RawMessage) ([]Data, error) {
	var items []cbor.RawMessage
	if err := decMode.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCBOR, err)
	}
	out := make([]Data, len(items))
	for i, item := range items {
		d, err := decodeRaw(item)
		if err != nil {
			return nil, err
		}
		out[i] = d
	}
	return out, nil
}

// decodeMap walks the entries by hand so that their order is kept
func decodeMap(raw cbor.RawMessage) (Data, error) {
	info := raw[0] & 0x1f
	body := raw[1:]
	out := Map{}

	if info == 31 {
		for len(body) > 0 && body[0] != breakCode {
			var p Pair
			var err error
			if p.Key, body, err = decodeFirst(body); err != nil {
				return nil, err
			}
			if p.Value, body, err = decodeFirst(body); err != nil {
				return nil, err
			}
			out = append(out, p)
		}
		return out, nil
	}

	n, body, err := readArgument(info, body)
	if err != nil {
		return nil, err
	}
	for i := uint64(0); i < n; i++ {
		var p Pair
		if p.Key, body, err = decodeFirst(body); err != nil {
			return nil, err
		}
		if p.Value, body, err = decodeFirst(body); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func decodeTag(raw cbor.RawMessage, tag cbor.RawTag) (Data, error) {
	switch {
	case tag.Number == tagBignumPos || tag.Number == tagBignumNeg:
		return decodeInteger(raw)

	case tag.Number >= tagConstrSmall && tag.Number <= tagConstrSmall+6:
		return decodeConstrFields(tag.Number-tagConstrSmall, tag.Content)

	case tag.Number >= tagConstrLarge && tag.Number <= tagConstrLarge+120:
		return decodeConstrFields(tag.Number-tagConstrLarge+7, tag.Content)

	case tag.Number == tagConstrGeneral:
		items, err := decodeItems(tag.Content)
		if err != nil {
			return nil, err
		}
		if len(items) != 2 {
			return nil, fmt.Errorf("%w: tag 102 expects 2 items, got %d", ErrInvalidCBOR, len(items))
		}
		alt, ok := items[0].(Integer)
		if !ok {
			return nil, fmt.Errorf("%w: tag 102 alternative is not an integer", ErrInvalidCBOR)
		}
		idx, ok := alt.Uint64()
		if !ok {
			return nil, fmt.Errorf("%w: tag 102 alternative out of range", ErrInvalidCBOR)
		}
		fields, ok := items[1].(List)
		if !ok {
			return nil, fmt.Errorf("%w: tag 102 fields are not a list", ErrInvalidCBOR)
		}
		return NewConstr(idx, fields...), nil

	default:
		return nil, fmt.Errorf("%w: unsupported tag %d", ErrInvalidCBOR, tag.Number)
	}
}

func decodeConstrFields(idx uint64, content cbor.RawMessage) (Data, error) {
	if len(content) == 0 || content[0]>>5 != majorArray {
		return nil, fmt.Errorf("%w: constructor %d fields are not an array", ErrInvalidCBOR, idx)
	}
	fields, err := decodeItems(content)
	if err != nil {
		return nil, err
	}
	return NewConstr(idx, fields...), nil
}

func readArgument(info byte, b []byte) (uint64, []byte, error) {
	need := 0
	switch {
	case info < 24:
		return uint64(info), b, nil
	case info == 24:
		need = 1
	case info == 25:
		need = 2
	case info == 26:
		need = 4
	case info == 27:
		need = 8
	default:
		return 0, nil, fmt.Errorf("%w: invalid additional info %d", ErrInvalidCBOR, info)
	}
	if len(b) < need {
		return 0, nil, fmt.Errorf("%w: truncated head", ErrInvalidCBOR)
	}
	var n uint64
	for _, c := range b[:need] {
		n = n<<8 | uint64(c)
	}
	return n, b[need:], nil
}
