// Package stable provides a deterministic serializer and a fast
// non-cryptographic hash. Together they give identity to arbitrary
// JSON-compatible values: Hash(Stringify(x)) is stable across processes and
// independent of map insertion order, which makes it suitable for cache keys
// and change detection. It is explicitly not suitable where adversarial
// collision resistance matters.
package stable

import (
	"encoding/json"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// circularSentinel replaces values that reference themselves. Cycles are a
// caller bug but must not break hashing.
const circularSentinel = `"[Circular]"`

// Stringify renders v into a canonical string. Object keys (map keys and
// struct fields) are sorted lexicographically; array order is preserved;
// primitives use standard JSON encoding. Stringify never fails.
func Stringify(v any) string {
	var b strings.Builder
	writeValue(&b, reflect.ValueOf(v), map[uintptr]struct{}{})
	return b.String()
}

// Hash returns the djb2-variant rolling hash of s (hash*33 XOR byte) as
// 32-bit hex. Non-cryptographic by design.
func Hash(s string) string {
	h := uint32(5381)
	for i := 0; i < len(s); i++ {
		h = (h * 33) ^ uint32(s[i])
	}
	return strconv.FormatUint(uint64(h), 16)
}

func writeValue(b *strings.Builder, rv reflect.Value, seen map[uintptr]struct{}) {
	if !rv.IsValid() {
		b.WriteString("null")
		return
	}

	switch rv.Kind() {
	case reflect.Interface, reflect.Pointer:
		if rv.IsNil() {
			b.WriteString("null")
			return
		}
		if rv.Kind() == reflect.Pointer {
			ptr := rv.Pointer()
			if _, ok := seen[ptr]; ok {
				b.WriteString(circularSentinel)
				return
			}
			seen[ptr] = struct{}{}
			defer delete(seen, ptr)
		}
		writeValue(b, rv.Elem(), seen)
	case reflect.Bool:
		b.WriteString(strconv.FormatBool(rv.Bool()))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		b.WriteString(strconv.FormatInt(rv.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		b.WriteString(strconv.FormatUint(rv.Uint(), 10))
	case reflect.Float32, reflect.Float64:
		b.WriteString(strconv.FormatFloat(rv.Float(), 'g', -1, 64))
	case reflect.String:
		writeString(b, rv.String())
	case reflect.Slice:
		if rv.IsNil() {
			b.WriteString("null")
			return
		}
		ptr := rv.Pointer()
		if _, ok := seen[ptr]; ok {
			b.WriteString(circularSentinel)
			return
		}
		seen[ptr] = struct{}{}
		writeArray(b, rv, seen)
		delete(seen, ptr)
	case reflect.Array:
		writeArray(b, rv, seen)
	case reflect.Map:
		if rv.IsNil() {
			b.WriteString("null")
			return
		}
		ptr := rv.Pointer()
		if _, ok := seen[ptr]; ok {
			b.WriteString(circularSentinel)
			return
		}
		seen[ptr] = struct{}{}
		writeMap(b, rv, seen)
		delete(seen, ptr)
	case reflect.Struct:
		writeStruct(b, rv, seen)
	default:
		// Channels, funcs and the rest have no JSON analogue.
		b.WriteString("null")
	}
}

func writeArray(b *strings.Builder, rv reflect.Value, seen map[uintptr]struct{}) {
	b.WriteByte('[')
	for i := 0; i < rv.Len(); i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		writeValue(b, rv.Index(i), seen)
	}
	b.WriteByte(']')
}

func writeMap(b *strings.Builder, rv reflect.Value, seen map[uintptr]struct{}) {
	type pair struct {
		key   string
		value reflect.Value
	}
	pairs := make([]pair, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		pairs = append(pairs, pair{key: mapKeyString(iter.Key()), value: iter.Value()})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].key < pairs[j].key })

	b.WriteByte('{')
	for i, p := range pairs {
		if i > 0 {
			b.WriteByte(',')
		}
		writeString(b, p.key)
		b.WriteByte(':')
		writeValue(b, p.value, seen)
	}
	b.WriteByte('}')
}

func writeStruct(b *strings.Builder, rv reflect.Value, seen map[uintptr]struct{}) {
	rt := rv.Type()
	type field struct {
		name  string
		value reflect.Value
	}
	fields := make([]field, 0, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := sf.Name
		if tag := sf.Tag.Get("json"); tag != "" {
			tagName, _, _ := strings.Cut(tag, ",")
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
		}
		fields = append(fields, field{name: name, value: rv.Field(i)})
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].name < fields[j].name })

	b.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		writeString(b, f.name)
		b.WriteByte(':')
		writeValue(b, f.value, seen)
	}
	b.WriteByte('}')
}

func writeString(b *strings.Builder, s string) {
	encoded, err := json.Marshal(s)
	if err != nil {
		// json.Marshal on a string cannot fail; guard anyway.
		b.WriteString(`""`)
		return
	}
	b.Write(encoded)
}

func mapKeyString(key reflect.Value) string {
	switch key.Kind() {
	case reflect.String:
		return key.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(key.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(key.Uint(), 10)
	default:
		var b strings.Builder
		writeValue(&b, key, map[uintptr]struct{}{})
		return b.String()
	}
}
