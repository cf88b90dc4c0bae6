// Package canon renders values into a single stable byte form and derives
// content hashes (locks) from it.
//
// Canonical form rules:
//   - null renders as the literal null
//   - booleans, numbers, and strings use their JSON scalar encoding
//   - arrays keep element order
//   - objects are rendered with keys sorted ascending, as "key":value
//
// Any Go value is first passed through encoding/json, so struct tags decide
// field names and omitempty fields that are empty do not appear. Strings and
// keys must be valid UTF-8; encoding/json would otherwise replace bad bytes
// with U+FFFD and two different values would share one form.
package canon

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/tbourn/go-certified-backend/internal/domain"
)

// ErrInvalidUTF8 is returned when a string or object key is not valid UTF-8.
var ErrInvalidUTF8 = errors.New("canon: invalid utf-8")

// Canonicalize returns the canonical form of v.
func Canonicalize(v any) (string, error) {
	if err := checkUTF8(reflect.ValueOf(v), 0); err != nil {
		return "", err
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("canon: marshal: %w", err)
	}
	return CanonicalizeJSON(raw)
}

// CanonicalizeJSON returns the canonical form of an already encoded JSON
// document. Trailing data after the first value is rejected.
func CanonicalizeJSON(raw []byte) (string, error) {
	if !utf8.Valid(raw) {
		return "", ErrInvalidUTF8
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return "", fmt.Errorf("canon: decode: %w", err)
	}
	if dec.More() {
		return "", fmt.Errorf("canon: trailing data after value")
	}
	var b strings.Builder
	if err := render(&b, tree); err != nil {
		return "", err
	}
	return b.String(), nil
}

// SHA256Hex returns the lowercase hex sha256 of s.
func SHA256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// ComputeLock hashes the canonical form of a finalized plan.
func ComputeLock(plan domain.PlanDraft) (domain.Lock, error) {
	if plan.Items == nil {
		plan.Items = []domain.PlanItem{}
	}
	c, err := Canonicalize(plan)
	if err != nil {
		return domain.Lock{}, err
	}
	return domain.Lock{Algo: domain.LockAlgoSHA256, Hash: SHA256Hex(c)}, nil
}

func render(b *strings.Builder, v any) error {
	switch t := v.(type) {
	case nil:
		b.WriteString("null")
	case bool:
		if t {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case json.Number:
		return renderNumber(b, t)
	case string:
		return renderString(b, t)
	case []any:
		b.WriteByte('[')
		for i, el := range t {
			if i > 0 {
				b.WriteByte(',')
			}
			if err := render(b, el); err != nil {
				return err
			}
		}
		b.WriteByte(']')
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			if err := renderString(b, k); err != nil {
				return err
			}
			b.WriteByte(':')
			if err := render(b, t[k]); err != nil {
				return err
			}
		}
		b.WriteByte('}')
	default:
		return fmt.Errorf("canon: unsupported type %T", v)
	}
	return nil
}

// renderNumber normalizes numbers through float64 so 1, 1.0 and 1e0 share
// one spelling.
func renderNumber(b *strings.Builder, n json.Number) error {
	f, err := n.Float64()
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return fmt.Errorf("canon: number %q out of range", n.String())
	}
	if f == 0 {
		f = 0 // folds -0
	}
	out, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("canon: number: %w", err)
	}
	b.Write(out)
	return nil
}

func renderString(b *strings.Builder, s string) error {
	if !utf8.ValidString(s) {
		return ErrInvalidUTF8
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("canon: string: %w", err)
	}
	b.Write(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
	return nil
}

// maxDepth bounds checkUTF8 on cyclic values; json.Marshal reports the cycle.
const maxDepth = 1000

// checkUTF8 walks the strings encoding/json would emit, including map keys.
func checkUTF8(v reflect.Value, depth int) error {
	if !v.IsValid() || depth > maxDepth {
		return nil
	}
	switch v.Kind() {
	case reflect.String:
		if !utf8.ValidString(v.String()) {
			return fmt.Errorf("%w: %q", ErrInvalidUTF8, v.String())
		}
	case reflect.Pointer, reflect.Interface:
		if !v.IsNil() {
			return checkUTF8(v.Elem(), depth+1)
		}
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.Uint8 {
			return nil // []byte encodes as base64
		}
		for i := 0; i < v.Len(); i++ {
			if err := checkUTF8(v.Index(i), depth+1); err != nil {
				return err
			}
		}
	case reflect.Map:
		iter := v.MapRange()
		for iter.Next() {
			if err := checkUTF8(iter.Key(), depth+1); err != nil {
				return err
			}
			if err := checkUTF8(iter.Value(), depth+1); err != nil {
				return err
			}
		}
	case reflect.Struct:
		t := v.Type()
		for i := 0; i < v.NumField(); i++ {
			if !t.Field(i).IsExported() {
				continue
			}
			if err := checkUTF8(v.Field(i), depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}
