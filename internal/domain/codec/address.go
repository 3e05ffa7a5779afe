package codec

import (
	"fmt"

	"github.com/trebuchet-org/tally-cli/internal/domain"
	"github.com/trebuchet-org/tally-cli/internal/domain/cardano"
	"github.com/trebuchet-org/tally-cli/internal/domain/plutus"
)

// Constructor tags of the address representation. Tag meaning differs per
// field: Some is 0 while an inline stake reference is also 0.
const (
	credentialKeyHash    = 0
	credentialScriptHash = 1

	optionSome = 0
	optionNone = 1

	stakingInline  = 0
	stakingPointer = 1
)

// EncodeCredential encodes Constr kind [hash]
func EncodeCredential(c cardano.Credential) plutus.Data {
	tag := uint64(credentialKeyHash)
	if c.Kind == cardano.ScriptHashCredential {
		tag = credentialScriptHash
	}
	return plutus.NewConstr(tag, plutus.Bytes(c.Hash.Bytes()))
}

// EncodeAddress encodes Constr 0 [payment, stake]. A stake credential is wrapped
// as Some(Inline(credential)); its absence is None.
func EncodeAddress(a cardano.Address) plutus.Data {
	stake := plutus.NewConstr(optionNone)
	if a.Stake != nil {
		stake = plutus.NewConstr(optionSome,
			plutus.NewConstr(stakingInline, EncodeCredential(*a.Stake)),
		)
	}
	return plutus.NewConstr(0, EncodeCredential(a.Payment), stake)
}

// DecodeAddress is the inverse of EncodeAddress. Every shape mismatch fails
// with a MalformedAddress error.
func DecodeAddress(d plutus.Data) (cardano.Address, error) {
	return decodeAddress(d, "address")
}

func malformed(path, format string, args ...any) error {
	return &domain.DecodeError{Kind: domain.MalformedAddress, Path: path, Reason: fmt.Sprintf(format, args...)}
}

func decodeAddress(d plutus.Data, path string) (cardano.Address, error) {
	c, ok := d.(plutus.Constr)
	if !ok {
		return cardano.Address{}, malformed(path, "expected constr, got %s", kindOf(d))
	}
	if c.Tag != 0 {
		return cardano.Address{}, malformed(path, "expected constructor 0, got %d", c.Tag)
	}
	if len(c.Fields) < 2 {
		return cardano.Address{}, malformed(path, "expected 2 fields, got %d", len(c.Fields))
	}

	payment, err := decodeCredential(c.Fields[0], fieldPath(path, "payment"))
	if err != nil {
		return cardano.Address{}, err
	}

	stake, err := decodeStake(c.Fields[1], fieldPath(path, "stake"))
	if err != nil {
		return cardano.Address{}, err
	}

	return cardano.Address{Payment: payment, Stake: stake}, nil
}

func decodeCredential(d plutus.Data, path string) (cardano.Credential, error) {
	c, ok := d.(plutus.Constr)
	if !ok {
		return cardano.Credential{}, malformed(path, "expected credential constr, got %s", kindOf(d))
	}

	var kind cardano.CredentialKind
	switch c.Tag {
	case credentialKeyHash:
		kind = cardano.KeyHashCredential
	case credentialScriptHash:
		kind = cardano.ScriptHashCredential
	default:
		return cardano.Credential{}, malformed(path, "credential tag %d", c.Tag)
	}

	if len(c.Fields) < 1 {
		return cardano.Credential{}, malformed(path, "credential has no hash")
	}
	b, ok := c.Fields[0].(plutus.Bytes)
	if !ok {
		return cardano.Credential{}, malformed(path, "credential hash is %s, not bytes", kindOf(c.Fields[0]))
	}
	h, err := cardano.Hash28FromBytes(b)
	if err != nil {
		return cardano.Credential{}, malformed(path, "%v", err)
	}
	return cardano.Credential{Kind: kind, Hash: h}, nil
}

// decodeStake unwraps exactly Some(Inline(credential)) or None
func decodeStake(d plutus.Data, path string) (*cardano.Credential, error) {
	option, ok := d.(plutus.Constr)
	if !ok {
		return nil, malformed(path, "expected option constr, got %s", kindOf(d))
	}

	switch option.Tag {
	case optionNone:
		return nil, nil
	case optionSome:
	default:
		return nil, malformed(path, "option tag %d", option.Tag)
	}

	if len(option.Fields) < 1 {
		return nil, malformed(path, "Some without a value")
	}

	inlinePath := fieldPath(path, "inline")
	inline, ok := option.Fields[0].(plutus.Constr)
	if !ok {
		return nil, malformed(inlinePath, "expected staking constr, got %s", kindOf(option.Fields[0]))
	}
	switch inline.Tag {
	case stakingInline:
	case stakingPointer:
		return nil, malformed(inlinePath, "pointer stake references are not supported")
	default:
		return nil, malformed(inlinePath, "staking tag %d", inline.Tag)
	}
	if len(inline.Fields) < 1 {
		return nil, malformed(inlinePath, "inline stake reference without a credential")
	}
	// the inner node must be a credential constructor, not its hash
	if _, ok := inline.Fields[0].(plutus.Constr); !ok {
		return nil, malformed(inlinePath, "expected credential constr, got %s", kindOf(inline.Fields[0]))
	}

	cred, err := decodeCredential(inline.Fields[0], fieldPath(inlinePath, "credential"))
	if err != nil {
		return nil, err
	}
	return &cred, nil
}
