package cache

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// structTag names the tag used for msgpack field names, so records keep one
// set of field names for both JSON responses and cached payloads.
const structTag = "json"

// Marshal encodes v into the cache payload format.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag(structTag)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode cache payload %T: %w", v, err)
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a cache payload produced by Marshal.
func Unmarshal[T any](data []byte) (T, error) {
	var v T
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag(structTag)
	if err := dec.Decode(&v); err != nil {
		return v, fmt.Errorf("decode cache payload %T: %w", v, err)
	}
	return v, nil
}
