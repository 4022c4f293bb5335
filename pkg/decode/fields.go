package decode

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"sort"
	"strings"
)

// maxBodyBytes caps url-encoded bodies read by FromRequest.
const maxBodyBytes = 10 << 20

// Pair is one submitted name/value entry.
type Pair struct {
	Name  string
	Value string
}

// Fields is the ordered collection of submitted pairs. Names may repeat; the
// collection only lives for the duration of one decode.
type Fields []Pair

// FromPairs builds Fields from alternating name/value arguments. A trailing
// name without value is paired with the empty string.
func FromPairs(kv ...string) Fields {
	out := make(Fields, 0, (len(kv)+1)/2)
	for i := 0; i < len(kv); i += 2 {
		pair := Pair{Name: kv[i]}
		if i+1 < len(kv) {
			pair.Value = kv[i+1]
		}
		out = append(out, pair)
	}
	return out
}

// FromValues converts url.Values. Keys are emitted in sorted order since maps
// carry no order; the order of repeated values under one key is kept.
func FromValues(values url.Values) Fields {
	if len(values) == 0 {
		return nil
	}
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make(Fields, 0, len(values))
	for _, key := range keys {
		for _, value := range values[key] {
			out = append(out, Pair{Name: key, Value: value})
		}
	}
	return out
}

// ParseEncoded reads an application/x-www-form-urlencoded payload keeping the
// order pairs appear in.
func ParseEncoded(raw string) (Fields, error) {
	var out Fields
	for raw != "" {
		var segment string
		segment, raw, _ = strings.Cut(raw, "&")
		if segment == "" {
			continue
		}
		name, value, _ := strings.Cut(segment, "=")
		name, err := url.QueryUnescape(name)
		if err != nil {
			return nil, fmt.Errorf("decode: invalid field name %q: %w", segment, err)
		}
		value, err = url.QueryUnescape(value)
		if err != nil {
			return nil, fmt.Errorf("decode: invalid value for %q: %w", name, err)
		}
		out = append(out, Pair{Name: name, Value: value})
	}
	return out, nil
}

// FromRequest extracts the submitted fields of r. URL-encoded bodies keep
// their wire order; multipart bodies fall back to FromValues ordering. File
// parts are ignored.
func FromRequest(r *http.Request) (Fields, error) {
	if r == nil {
		return nil, fmt.Errorf("decode: nil request")
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
			return nil, fmt.Errorf("decode: parse multipart body: %w", err)
		}
		return FromValues(r.MultipartForm.Value), nil
	case "application/x-www-form-urlencoded", "":
		if r.Body == nil || r.Method == http.MethodGet {
			return ParseEncoded(r.URL.RawQuery)
		}
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
		if err != nil {
			return nil, fmt.Errorf("decode: read body: %w", err)
		}
		if len(body) > maxBodyBytes {
			return nil, fmt.Errorf("decode: body exceeds %d bytes", maxBodyBytes)
		}
		return ParseEncoded(string(body))
	default:
		return nil, fmt.Errorf("decode: unsupported content type %q", mediaType)
	}
}

// Flatten converts the ordered pairs into a single-valued map. When a name
// repeats, the last occurrence wins.
func (f Fields) Flatten() map[string]string {
	out := make(map[string]string, len(f))
	for _, pair := range f {
		out[pair.Name] = pair.Value
	}
	return out
}

// Get returns the last value submitted under name.
func (f Fields) Get(name string) (string, bool) {
	for i := len(f) - 1; i >= 0; i-- {
		if f[i].Name == name {
			return f[i].Value, true
		}
	}
	return "", false
}

// Names returns the distinct names in first-seen order.
func (f Fields) Names() []string {
	seen := make(map[string]struct{}, len(f))
	var out []string
	for _, pair := range f {
		if _, ok := seen[pair.Name]; ok {
			continue
		}
		seen[pair.Name] = struct{}{}
		out = append(out, pair.Name)
	}
	return out
}

// Values converts back into url.Values, preserving per-name order.
func (f Fields) Values() url.Values {
	out := make(url.Values, len(f))
	for _, pair := range f {
		out[pair.Name] = append(out[pair.Name], pair.Value)
	}
	return out
}
