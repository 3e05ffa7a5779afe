package cardano

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fill28(b byte) Hash28 {
	var h Hash28
	copy(h[:], bytes.Repeat([]byte{b}, Hash28Size))
	return h
}

func TestAddressBech32(t *testing.T) {
	stake := KeyCredential(fill28(0x22))

	tests := []struct {
		name    string
		addr    Address
		network Network
		want    string
	}{
		{
			name:    "testnet base key/key",
			addr:    Address{Payment: KeyCredential(fill28(0x11)), Stake: &stake},
			network: Testnet,
			want:    "addr_test1qqg3zyg3zyg3zyg3zyg3zyg3zyg3zyg3zyg3zyg3zyg3zyfzyg3zyg3zyg3zyg3zyg3zyg3zyg3zyg3zyg3zyg3zyg3qwzdgzn",
		},
		{
			name:    "mainnet enterprise script",
			addr:    ScriptAddress(fill28(0x11)),
			network: Mainnet,
			want:    "addr1wyg3zyg3zyg3zyg3zyg3zyg3zyg3zyg3zyg3zyg3zyg3zyg5rsc9l",
		},
		{
			name: "testnet base script/script",
			addr: Address{
				Payment: ScriptCredential(fill28(0x11)),
				Stake:   &Credential{Kind: ScriptHashCredential, Hash: fill28(0x22)},
			},
			network: Testnet,
			want:    "addr_test1xqg3zyg3zyg3zyg3zyg3zyg3zyg3zyg3zyg3zyg3zyg3zyfzyg3zyg3zyg3zyg3zyg3zyg3zyg3zyg3zyg3zyg3zyg3qln0vfx",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.addr.Bech32(tt.network)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			parsed, network, err := ParseAddress(tt.want)
			require.NoError(t, err)
			assert.Equal(t, tt.network, network)
			assert.True(t, tt.addr.Equal(parsed))
		})
	}
}

func TestParseAddressErrors(t *testing.T) {
	t.Run("pointer address", func(t *testing.T) {
		raw := append([]byte{0x40}, bytes.Repeat([]byte{0x11}, Hash28Size+3)...)
		_, _, err := AddressFromBytes(raw)
		assert.ErrorIs(t, err, ErrUnsupportedAddress)
	})

	t.Run("wrong length", func(t *testing.T) {
		_, _, err := AddressFromBytes([]byte{0x60, 0x01})
		assert.Error(t, err)
	})

	t.Run("bad checksum", func(t *testing.T) {
		_, _, err := ParseAddress("addr1wyg3zyg3zyg3zyg3zyg3zyg3zyg3zyg3zyg3zyg3zyg3zyg5rsc9q")
		assert.Error(t, err)
	})

	t.Run("hex form", func(t *testing.T) {
		addr := ScriptAddress(fill28(0x33))
		raw := addr.Bytes(Testnet)
		parsed, network, err := ParseAddress(hex.EncodeToString(raw))
		require.NoError(t, err)
		assert.Equal(t, Testnet, network)
		assert.True(t, addr.Equal(parsed))
	})
}

func TestOutputReference(t *testing.T) {
	s := "0000000000000000000000000000000000000000000000000000000000000001#3"
	ref, err := ParseOutputReference(s)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), ref.Index)
	assert.Equal(t, byte(1), ref.TxID[31])
	assert.Equal(t, s, ref.String())

	_, err = ParseOutputReference("abcd")
	assert.Error(t, err)
	_, err = ParseOutputReference("00#1")
	assert.Error(t, err)
}

func TestAssetID(t *testing.T) {
	unit := fill28(0xab).String() + "746f6b656e"
	id, err := ParseAssetID(unit)
	require.NoError(t, err)
	assert.Equal(t, "token", id.Name)
	assert.Equal(t, unit, id.Unit())

	fromBytes, err := AssetIDFromBytes(id.Bytes())
	require.NoError(t, err)
	assert.Equal(t, id, fromBytes)

	_, err = ParseAssetID("abcd")
	assert.Error(t, err)
}

func TestValueArithmetic(t *testing.T) {
	a := AssetID{Policy: fill28(0x01), Name: "a"}
	b := AssetID{Policy: fill28(0x01), Name: "b"}

	v := Lovelace(10).WithAsset(a, 5)
	w := Lovelace(3).WithAsset(a, 5).WithAsset(b, 1)

	assert.False(t, v.Covers(w))
	assert.True(t, v.Add(w).Covers(w))

	rest, err := v.Add(w).Sub(w)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), rest.Lovelace)
	assert.Equal(t, uint64(5), rest.Quantity(a))
	_, hasB := rest.Assets[b]
	assert.False(t, hasB)

	_, err = v.Sub(w)
	assert.Error(t, err)
}

func TestAssetsSorted(t *testing.T) {
	assets := Assets{
		{Policy: fill28(0x02), Name: "a"}: 1,
		{Policy: fill28(0x01), Name: "b"}: 1,
		{Policy: fill28(0x01), Name: "a"}: 1,
	}
	sorted := assets.Sorted()
	require.Len(t, sorted, 3)
	assert.Equal(t, AssetID{Policy: fill28(0x01), Name: "a"}, sorted[0])
	assert.Equal(t, AssetID{Policy: fill28(0x01), Name: "b"}, sorted[1])
	assert.Equal(t, []PolicyID{fill28(0x01), fill28(0x02)}, assets.Policies())
}
