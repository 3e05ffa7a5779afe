package plutus

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
)

// MarshalJSON renders a tree using the detailed schema:
// {"constructor":0,"fields":[...]}, {"int":1}, {"bytes":"ab"}, {"list":[...]}, {"map":[{"k":..,"v":..}]}
func MarshalJSON(d Data) ([]byte, error) {
	return json.Marshal(toJSONValue(d))
}

func toJSONValue(d Data) any {
	switch v := d.(type) {
	case Integer:
		return map[string]any{"int": v.Big()}
	case Bytes:
		return map[string]any{"bytes": hex.EncodeToString(v)}
	case List:
		items := make([]any, len(v))
		for i, item := range v {
			items[i] = toJSONValue(item)
		}
		return map[string]any{"list": items}
	case Map:
		entries := make([]any, len(v))
		for i, p := range v {
			entries[i] = map[string]any{"k": toJSONValue(p.Key), "v": toJSONValue(p.Value)}
		}
		return map[string]any{"map": entries}
	case Constr:
		fields := make([]any, len(v.Fields))
		for i, f := range v.Fields {
			fields[i] = toJSONValue(f)
		}
		return map[string]any{"constructor": v.Tag, "fields": fields}
	default:
		return nil
	}
}

// UnmarshalJSON parses the detailed schema produced by MarshalJSON
func UnmarshalJSON(b []byte) (Data, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("invalid script data json: %w", err)
	}
	return fromJSONObject(raw)
}

func fromJSONObject(raw map[string]json.RawMessage) (Data, error) {
	switch {
	case raw["constructor"] != nil:
		var tag uint64
		if err := json.Unmarshal(raw["constructor"], &tag); err != nil {
			return nil, fmt.Errorf("invalid constructor index: %w", err)
		}
		fields, err := fromJSONArray(raw["fields"])
		if err != nil {
			return nil, err
		}
		return NewConstr(tag, fields...), nil

	case raw["int"] != nil:
		n, ok := new(big.Int).SetString(string(raw["int"]), 10)
		if !ok {
			return nil, fmt.Errorf("invalid integer %s", raw["int"])
		}
		return Integer{Value: n}, nil

	case raw["bytes"] != nil:
		var s string
		if err := json.Unmarshal(raw["bytes"], &s); err != nil {
			return nil, fmt.Errorf("invalid bytes: %w", err)
		}
		b, err := hex.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("invalid bytes hex: %w", err)
		}
		return Bytes(b), nil

	case raw["list"] != nil:
		items, err := fromJSONArray(raw["list"])
		if err != nil {
			return nil, err
		}
		return List(items), nil

	case raw["map"] != nil:
		var entries []map[string]json.RawMessage
		if err := json.Unmarshal(raw["map"], &entries); err != nil {
			return nil, fmt.Errorf("invalid map: %w", err)
		}
		out := make(Map, 0, len(entries))
		for _, e := range entries {
			k, err := UnmarshalJSON(e["k"])
			if err != nil {
				return nil, err
			}
			v, err := UnmarshalJSON(e["v"])
			if err != nil {
				return nil, err
			}
			out = append(out, Pair{Key: k, Value: v})
		}
		return out, nil

	default:
		return nil, fmt.Errorf("unrecognised script data object")
	}
}

func fromJSONArray(raw json.RawMessage) ([]Data, error) {
	if raw == nil {
		return []Data{}, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("invalid array: %w", err)
	}
	out := make([]Data, len(items))
	for i, item := range items {
		d, err := UnmarshalJSON(item)
		if err != nil {
			return nil, err
		}
		out[i] = d
	}
	return out, nil
}
