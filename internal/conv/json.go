package conv

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ToMap converts in into a JSON object map. Maps already keyed by string are
// returned as is; anything else goes through a JSON round trip that keeps
// numbers as json.Number so integers are not widened to float64.
func ToMap(in any) (map[string]interface{}, error) {
	switch actual := in.(type) {
	case nil:
		return map[string]interface{}{}, nil
	case map[string]interface{}:
		return actual, nil
	case json.RawMessage:
		return decodeObject(actual)
	case []byte:
		return decodeObject(actual)
	}
	data, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %T: %w", in, err)
	}
	return decodeObject(data)
}

func decodeObject(data []byte) (map[string]interface{}, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]interface{}{}, nil
	}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var ret map[string]interface{}
	if err := decoder.Decode(&ret); err != nil {
		return nil, fmt.Errorf("expected JSON object: %w", err)
	}
	if ret == nil {
		ret = map[string]interface{}{}
	}
	return ret, nil
}
