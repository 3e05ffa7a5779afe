package plutus

import (
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustBig(t *testing.T, s string) *big.Int {
	t.Helper()
	n, ok := new(big.Int).SetString(s, 10)
	require.True(t, ok)
	return n
}

func TestMarshalKnownVectors(t *testing.T) {
	seq := make([]byte, 65)
	for i := range seq {
		seq[i] = byte(i)
	}

	tests := []struct {
		name string
		data Data
		want string
	}{
		{"empty constr", NewConstr(0), "d87980"},
		{"alternative 1", NewConstr(1), "d87a80"},
		{"constr with field", NewConstr(0, NewInt(1)), "d8799f01ff"},
		{"alternative 7", NewConstr(7), "d9050080"},
		{"alternative 127", NewConstr(127), "d9057880"},
		{"alternative 128", NewConstr(128), "d86682188080"},
		{"minus one", NewInt(-1), "20"},
		{"zero", NewInt(0), "00"},
		{"max uint64", NewUint(^uint64(0)), "1bffffffffffffffff"},
		{"two to the 64", NewBigInt(mustBig(t, "18446744073709551616")), "c249010000000000000000"},
		{"minus two to the 64", NewBigInt(mustBig(t, "-18446744073709551616")), "3bffffffffffffffff"},
		{"below minus two to the 64", NewBigInt(mustBig(t, "-18446744073709551617")), "c349010000000000000000"},
		{"empty bytes", Bytes{}, "40"},
		{"short bytes", Bytes{0xab, 0xcd}, "42abcd"},
		{"chunked bytes", Bytes(seq), "5f5840" + hex.EncodeToString(seq[:64]) + "4140ff"},
		{"empty list", List{}, "80"},
		{"list", List{NewInt(1), NewInt(2)}, "9f0102ff"},
		{"empty map", Map{}, "a0"},
		{"map", Map{{Key: Bytes{0x01}, Value: NewInt(2)}}, "a1410102"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MarshalHex(tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			back, err := UnmarshalHex(tt.want)
			require.NoError(t, err)
			assert.True(t, Equal(tt.data, back), "decoded %s", String(back))
		})
	}
}

func TestUnmarshalAcceptsDefiniteForms(t *testing.T) {
	t.Run("definite constructor fields", func(t *testing.T) {
		d, err := UnmarshalHex("d8798101")
		require.NoError(t, err)
		assert.True(t, Equal(NewConstr(0, NewInt(1)), d))
	})

	t.Run("indefinite map", func(t *testing.T) {
		d, err := UnmarshalHex("bf0102ff")
		require.NoError(t, err)
		assert.True(t, Equal(Map{{Key: NewInt(1), Value: NewInt(2)}}, d))
	})

	t.Run("map keeps entry order", func(t *testing.T) {
		d, err := UnmarshalHex("a202010102")
		require.NoError(t, err)
		m, ok := d.(Map)
		require.True(t, ok)
		require.Len(t, m, 2)
		assert.True(t, Equal(NewInt(2), m[0].Key))
		assert.True(t, Equal(NewInt(1), m[1].Key))
	})
}

func TestUnmarshalRejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"trailing bytes", "0000"},
		{"text string", "6161"},
		{"float", "f93c00"},
		{"unknown tag", "d82a00"},
		{"constructor over non array", "d87901"},
		{"truncated", "9f01"},
		{"bad hex", "zz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalHex(tt.input)
			assert.ErrorIs(t, err, ErrInvalidCBOR)
		})
	}
}

func TestEqualIsOrderSensitive(t *testing.T) {
	a := NewConstr(0, NewInt(1), Bytes{0x02})
	b := NewConstr(0, Bytes{0x02}, NewInt(1))

	assert.False(t, Equal(a, b))
	assert.True(t, Equal(a, NewConstr(0, NewInt(1), Bytes{0x02})))
	assert.False(t, Equal(NewConstr(0), NewConstr(1)))
	assert.False(t, Equal(List{}, Map{}))
	assert.False(t, Equal(NewInt(1), nil))
}

func TestNestedRoundTrip(t *testing.T) {
	d := NewConstr(0,
		Bytes("dao"),
		List{NewInt(10), NewInt(-3)},
		Map{{Key: Bytes{0xaa}, Value: Map{{Key: Bytes{}, Value: NewUint(5)}}}},
		NewConstr(3, NewInt(1)),
		NewConstr(200, List{}),
	)

	b, err := Marshal(d)
	require.NoError(t, err)

	back, err := Unmarshal(b)
	require.NoError(t, err)
	assert.True(t, Equal(d, back))

	again, err := Marshal(back)
	require.NoError(t, err)
	assert.Equal(t, b, again)
}

func TestMarshalRejectsNil(t *testing.T) {
	_, err := Marshal(List{nil})
	assert.ErrorIs(t, err, ErrInvalidCBOR)
}

func TestString(t *testing.T) {
	d := NewConstr(0, Bytes{0xab}, List{NewInt(1)}, Map{{Key: NewInt(1), Value: NewInt(2)}})
	assert.Equal(t, "Constr 0 [h'ab', [1], {1: 2}]", String(d))
}
