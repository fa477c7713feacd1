package cache

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// KeySeparator defines the delimiter used between serialized key segments.
const KeySeparator = "::"

// keyTag is the struct tag read by the default serializer.
//
//	`cachekey:"-"`   the field never takes part in the key
//	`cachekey:"set"` slice elements are sorted and de-duplicated first
const keyTag = "cachekey"

// defaultKeySerializer implements KeySerializer using reflection-based serialization.
// Output only depends on values, never on addresses, so keys are stable across processes.
type defaultKeySerializer struct{}

// NewDefaultKeySerializer creates a new instance of the default key serializer.
func NewDefaultKeySerializer() KeySerializer {
	return &defaultKeySerializer{}
}

// SerializeKey builds a key from method name and args.
func (s *defaultKeySerializer) SerializeKey(method string, args ...any) string {
	if len(args) == 0 {
		return method
	}

	parts := make([]string, 0, len(args)+1)
	parts = append(parts, method)
	for _, arg := range args {
		parts = append(parts, s.serializeValue(arg))
	}

	return strings.Join(parts, KeySeparator)
}

func (s *defaultKeySerializer) serializeValue(v any) string {
	if v == nil {
		return "nil"
	}
	return s.serializeReflect(reflect.ValueOf(v))
}

func (s *defaultKeySerializer) serializeReflect(rv reflect.Value) string {
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return "nil"
		}
		return s.serializeReflect(rv.Elem())
	case reflect.Slice:
		if rv.IsNil() {
			return "slice:nil"
		}
		return fmt.Sprintf("slice[%d]:{%s}", rv.Len(), strings.Join(s.elements(rv), ","))
	case reflect.Array:
		return fmt.Sprintf("array[%d]:{%s}", rv.Len(), strings.Join(s.elements(rv), ","))
	case reflect.Map:
		if rv.IsNil() {
			return "map:nil"
		}
		return s.serializeMap(rv)
	case reflect.Struct:
		return s.serializeStruct(rv)
	}

	if isBasicKind(rv.Kind()) {
		return fmt.Sprintf("%v", rv.Interface())
	}

	return s.jsonFallback(rv)
}

func (s *defaultKeySerializer) elements(rv reflect.Value) []string {
	parts := make([]string, rv.Len())
	for i := range parts {
		parts[i] = s.serializeReflect(rv.Index(i))
	}
	return parts
}

// serializeSet renders a slice as an unordered set.
func (s *defaultKeySerializer) serializeSet(rv reflect.Value) string {
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return "set:nil"
		}
		rv = rv.Elem()
	}
	if (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) || (rv.Kind() == reflect.Slice && rv.IsNil()) {
		return s.serializeReflect(rv)
	}

	parts := s.elements(rv)
	sort.Strings(parts)
	uniq := parts[:0]
	for i, p := range parts {
		if i > 0 && p == parts[i-1] {
			continue
		}
		uniq = append(uniq, p)
	}

	return fmt.Sprintf("set[%d]:{%s}", len(uniq), strings.Join(uniq, ","))
}

// serializeMap handles map serialization with sorted keys for determinism
func (s *defaultKeySerializer) serializeMap(rv reflect.Value) string {
	pairs := make([]string, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		pairs = append(pairs, s.serializeReflect(iter.Key())+"="+s.serializeReflect(iter.Value()))
	}
	sort.Strings(pairs)

	return fmt.Sprintf("map[%d]:{%s}", len(pairs), strings.Join(pairs, ","))
}

// serializeStruct handles struct serialization with field names
func (s *defaultKeySerializer) serializeStruct(rv reflect.Value) string {
	rt := rv.Type()
	parts := make([]string, 0, rv.NumField())

	for i := 0; i < rv.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}

		var serialized string
		switch field.Tag.Get(keyTag) {
		case "-":
			continue
		case "set":
			serialized = s.serializeSet(rv.Field(i))
		default:
			serialized = s.serializeReflect(rv.Field(i))
		}
		parts = append(parts, field.Name+":"+serialized)
	}

	return fmt.Sprintf("struct:{%s}", strings.Join(parts, ","))
}

func isBasicKind(kind reflect.Kind) bool {
	switch kind {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128,
		reflect.String:
		return true
	default:
		return false
	}
}

// jsonFallback provides JSON serialization as a last resort
func (s *defaultKeySerializer) jsonFallback(rv reflect.Value) string {
	if !rv.CanInterface() {
		return "fallback:" + rv.Type().String()
	}
	data, err := json.Marshal(rv.Interface())
	if err != nil {
		return "fallback:" + rv.Type().String()
	}
	return "json:" + string(data)
}
