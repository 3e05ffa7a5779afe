package cardano

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/bech32"
)

// CredentialKind distinguishes key hash from script hash credentials
type CredentialKind uint8

const (
	KeyHashCredential CredentialKind = iota
	ScriptHashCredential
)

func (k CredentialKind) String() string {
	if k == ScriptHashCredential {
		return "script"
	}
	return "key"
}

// Credential is a payment or stake credential
type Credential struct {
	Kind CredentialKind `json:"kind"`
	Hash Hash28         `json:"hash"`
}

// KeyCredential returns a key hash credential
func KeyCredential(h Hash28) Credential {
	return Credential{Kind: KeyHashCredential, Hash: h}
}

// ScriptCredential returns a script hash credential
func ScriptCredential(h Hash28) Credential {
	return Credential{Kind: ScriptHashCredential, Hash: h}
}

// Address is a Shelley address with an optional inline stake credential
type Address struct {
	Payment Credential  `json:"payment"`
	Stake   *Credential `json:"stake,omitempty"`
}

// ScriptAddress returns the enterprise address of a script
func ScriptAddress(h ScriptHash) Address {
	return Address{Payment: ScriptCredential(h)}
}

// Equal compares two addresses including the stake part
func (a Address) Equal(b Address) bool {
	if a.Payment != b.Payment {
		return false
	}
	if a.Stake == nil || b.Stake == nil {
		return a.Stake == nil && b.Stake == nil
	}
	return *a.Stake == *b.Stake
}

// Network is the network id carried in an address header
type Network uint8

const (
	Testnet Network = 0
	Mainnet Network = 1
)

const (
	mainnetHRP = "addr"
	testnetHRP = "addr_test"
)

// ParseNetwork maps a network name to its id
func ParseNetwork(name string) (Network, error) {
	switch name {
	case "mainnet":
		return Mainnet, nil
	case "preprod", "preview", "testnet", "sanchonet", "":
		return Testnet, nil
	default:
		return 0, fmt.Errorf("unknown network %q", name)
	}
}

func (n Network) String() string {
	if n == Mainnet {
		return "mainnet"
	}
	return "testnet"
}

func (n Network) hrp() string {
	if n == Mainnet {
		return mainnetHRP
	}
	return testnetHRP
}

// ErrUnsupportedAddress is returned for pointer, reward and Byron addresses
var ErrUnsupportedAddress = errors.New("unsupported address type")

// header types, high nibble of the first address byte
const (
	headerKeyKey       = 0x0
	headerScriptKey    = 0x1
	headerKeyScript    = 0x2
	headerScriptScript = 0x3
	headerKey          = 0x6
	headerScript       = 0x7
)

// Bytes returns the raw binary form of the address
func (a Address) Bytes(network Network) []byte {
	var header byte
	switch {
	case a.Stake == nil && a.Payment.Kind == KeyHashCredential:
		header = headerKey
	case a.Stake == nil:
		header = headerScript
	case a.Payment.Kind == KeyHashCredential && a.Stake.Kind == KeyHashCredential:
		header = headerKeyKey
	case a.Payment.Kind == ScriptHashCredential && a.Stake.Kind == KeyHashCredential:
		header = headerScriptKey
	case a.Payment.Kind == KeyHashCredential:
		header = headerKeyScript
	default:
		header = headerScriptScript
	}

	out := make([]byte, 0, 1+2*Hash28Size)
	out = append(out, header<<4|byte(network&0x0f))
	out = append(out, a.Payment.Hash[:]...)
	if a.Stake != nil {
		out = append(out, a.Stake.Hash[:]...)
	}
	return out
}

// Bech32 renders the address in its human readable form
func (a Address) Bech32(network Network) (string, error) {
	conv, err := bech32.ConvertBits(a.Bytes(network), 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("failed to convert address bits: %w", err)
	}
	s, err := bech32.Encode(network.hrp(), conv)
	if err != nil {
		return "", fmt.Errorf("failed to encode address: %w", err)
	}
	return s, nil
}

// ParseAddress parses a bech32 or hex encoded base/enterprise address
func ParseAddress(s string) (Address, Network, error) {
	if raw, err := hex.DecodeString(s); err == nil {
		return AddressFromBytes(raw)
	}

	hrp, data, err := bech32.DecodeNoLimit(s)
	if err != nil {
		return Address{}, 0, fmt.Errorf("invalid bech32 address: %w", err)
	}
	raw, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return Address{}, 0, fmt.Errorf("invalid bech32 payload: %w", err)
	}

	addr, network, err := AddressFromBytes(raw)
	if err != nil {
		return Address{}, 0, err
	}
	if hrp != network.hrp() {
		return Address{}, 0, fmt.Errorf("address prefix %q does not match network %s", hrp, network)
	}
	return addr, network, nil
}

// AddressFromBytes parses the raw binary form of an address
func AddressFromBytes(raw []byte) (Address, Network, error) {
	if len(raw) == 0 {
		return Address{}, 0, fmt.Errorf("empty address")
	}
	header := raw[0] >> 4
	network := Network(raw[0] & 0x0f)
	body := raw[1:]

	var addr Address
	switch header {
	case headerKeyKey, headerScriptKey, headerKeyScript, headerScriptScript:
		if len(body) != 2*Hash28Size {
			return Address{}, 0, fmt.Errorf("base address must be %d bytes, got %d", 1+2*Hash28Size, len(raw))
		}
		payKind, stakeKind := KeyHashCredential, KeyHashCredential
		if header&0x1 != 0 {
			payKind = ScriptHashCredential
		}
		if header&0x2 != 0 {
			stakeKind = ScriptHashCredential
		}
		addr.Payment.Kind = payKind
		copy(addr.Payment.Hash[:], body[:Hash28Size])
		stake := Credential{Kind: stakeKind}
		copy(stake.Hash[:], body[Hash28Size:])
		addr.Stake = &stake

	case headerKey, headerScript:
		if len(body) != Hash28Size {
			return Address{}, 0, fmt.Errorf("enterprise address must be %d bytes, got %d", 1+Hash28Size, len(raw))
		}
		if header == headerScript {
			addr.Payment.Kind = ScriptHashCredential
		}
		copy(addr.Payment.Hash[:], body)

	default:
		return Address{}, 0, fmt.Errorf("%w: header type %d", ErrUnsupportedAddress, header)
	}

	return addr, network, nil
}
