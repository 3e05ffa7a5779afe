package plutus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONSchema(t *testing.T) {
	d := NewConstr(3, NewInt(-7), Bytes{0xde, 0xad}, List{}, Map{{Key: Bytes{}, Value: NewInt(1)}})

	b, err := MarshalJSON(d)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"constructor": 3,
		"fields": [
			{"int": -7},
			{"bytes": "dead"},
			{"list": []},
			{"map": [{"k": {"bytes": ""}, "v": {"int": 1}}]}
		]
	}`, string(b))

	back, err := UnmarshalJSON(b)
	require.NoError(t, err)
	assert.True(t, Equal(d, back))
}

func TestUnmarshalJSONRejectsUnknownObject(t *testing.T) {
	_, err := UnmarshalJSON([]byte(`{"string": "nope"}`))
	assert.Error(t, err)
}
