package encoding

import (
	"bytes"
	"encoding/json"
)

// StructToJsonBytes converts a struct to JSON bytes
func StructToJsonBytes(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// JsonBytesToStruct converts JSON bytes to a struct
func JsonBytesToStruct(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

// JsonBytesToMap decodes a JSON object keeping numbers as json.Number so
// 64-bit ids survive without float rounding.
func JsonBytesToMap(data []byte) (map[string]interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var m map[string]interface{}
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	return m, nil
}
