package utils

import "encoding/json"

// decodes a json document stored as bytes or as a text column
func Unmarshal[T any, D ~string | ~[]byte](data D) (*T, error) {
	var unm T
	if err := json.Unmarshal([]byte(data), &unm); err != nil {
		return nil, err
	}
	return &unm, nil
}

// for text columns holding json. use only with values that always marshal
// (plain structs, no channels or funcs)
func MarshalString(v any) string {
	m, _ := json.Marshal(v)
	return string(m)
}
