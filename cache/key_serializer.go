package cache

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

const (
	// KeySeparator defines the delimiter used between cache key segments.
	KeySeparator = ":"
	// PairSeparator joins name:value pairs inside a parameter fingerprint.
	PairSeparator = "|"
	// ValueSeparator joins the values of a repeated parameter.
	ValueSeparator = ","
)

// Encoding selects how a parameter fingerprint is rendered into a key.
type Encoding string

const (
	// EncodingBase64 keeps the canonical parameter string recoverable.
	EncodingBase64 Encoding = "base64"
	// EncodingXXHash renders a fixed width 64 bit hash.
	EncodingXXHash Encoding = "xxhash"
)

// Params is a flat set of query parameters used to build fingerprints.
type Params map[string]string

type hexer interface {
	Hex() string
}

// defaultKeySerializer joins a resource kind and its arguments with ':'.
// Parameter sets are reduced to an order independent fingerprint so that two
// requests carrying the same filters always land on the same key.
type defaultKeySerializer struct {
	encoding Encoding
}

// NewDefaultKeySerializer creates a serializer that base64 encodes
// fingerprints.
func NewDefaultKeySerializer() KeySerializer {
	return NewKeySerializer(EncodingBase64)
}

// NewKeySerializer creates a serializer using the given fingerprint encoding.
// Unknown encodings fall back to base64.
func NewKeySerializer(encoding Encoding) KeySerializer {
	if encoding != EncodingXXHash {
		encoding = EncodingBase64
	}
	return &defaultKeySerializer{encoding: encoding}
}

// SerializeKey builds "<kind>:<arg>:<arg>...".
func (s *defaultKeySerializer) SerializeKey(kind string, args ...any) string {
	if len(args) == 0 {
		return kind
	}

	parts := make([]string, 0, len(args)+1)
	parts = append(parts, kind)
	for _, arg := range args {
		parts = append(parts, s.serializeValue(arg))
	}

	return strings.Join(parts, KeySeparator)
}

func (s *defaultKeySerializer) serializeValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "nil"
	case string:
		return val
	case hexer:
		return val.Hex()
	case url.Values:
		return Fingerprint(val, s.encoding)
	case map[string][]string:
		return Fingerprint(val, s.encoding)
	case Params:
		return Fingerprint(flatten(val), s.encoding)
	case map[string]string:
		return Fingerprint(flatten(val), s.encoding)
	case bool:
		return strconv.FormatBool(val)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr:
		if rv.IsNil() {
			return "nil"
		}
		return s.serializeValue(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = s.serializeValue(rv.Index(i).Interface())
		}
		return strings.Join(parts, ValueSeparator)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.String:
		return fmt.Sprintf("%v", v)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("fallback:%s", rv.Type().String())
	}
	return string(data)
}

// Fingerprint reduces a parameter set to a deterministic token. Pairs are
// rendered as "name:value", sorted by name, and joined with '|' before being
// encoded. Repeated values are joined with ',' in the order given.
func Fingerprint(params map[string][]string, encoding Encoding) string {
	canonical := CanonicalParams(params)
	if encoding == EncodingXXHash {
		return strconv.FormatUint(xxhash.Sum64String(canonical), 16)
	}
	return base64.StdEncoding.EncodeToString([]byte(canonical))
}

// CanonicalParams returns the sorted "name:value|name:value" form of params.
// Names and values are query-escaped first so a separator inside a value
// never reads as one between values: "a,b" and the pair "a", "b" differ.
func CanonicalParams(params map[string][]string) string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]string, len(names))
	for i, name := range names {
		values := make([]string, len(params[name]))
		for j, v := range params[name] {
			values[j] = url.QueryEscape(v)
		}
		pairs[i] = url.QueryEscape(name) + KeySeparator + strings.Join(values, ValueSeparator)
	}
	return strings.Join(pairs, PairSeparator)
}

func flatten(params map[string]string) map[string][]string {
	out := make(map[string][]string, len(params))
	for k, v := range params {
		out[k] = []string{v}
	}
	return out
}
