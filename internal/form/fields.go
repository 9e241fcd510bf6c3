package form

import (
	"encoding/json"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// FieldErrors maps a form field name to the reason it was rejected.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fe[k])
	}
	return "invalid form: " + strings.Join(parts, "; ")
}

// fields reads typed values out of url.Values and collects parse errors.
type fields struct {
	v    url.Values
	errs FieldErrors
}

func newFields(v url.Values) *fields {
	return &fields{v: v, errs: FieldErrors{}}
}

func (f *fields) fail(name, msg string) {
	if _, ok := f.errs[name]; !ok {
		f.errs[name] = msg
	}
}

func (f *fields) str(name string) string {
	return strings.TrimSpace(f.v.Get(name))
}

func (f *fields) required(name string) string {
	s := f.str(name)
	if s == "" {
		f.fail(name, "required")
	}
	return s
}

func (f *fields) int(name string) int64 {
	s := f.str(name)
	if s == "" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		f.fail(name, "must be a whole number")
	}
	return n
}

func (f *fields) requiredInt(name string) int64 {
	if f.str(name) == "" {
		f.fail(name, "required")
		return 0
	}
	return f.int(name)
}

// optionalInt returns nil for an empty field.
func (f *fields) optionalInt(name string) *int64 {
	if f.str(name) == "" {
		return nil
	}
	n := f.int(name)
	return &n
}

func (f *fields) float(name string) float64 {
	s := strings.ReplaceAll(f.str(name), ",", ".")
	if s == "" {
		return 0
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		f.fail(name, "must be a number")
	}
	return n
}

func (f *fields) list(name string) []string {
	var out []string
	for _, s := range f.v[name] {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (f *fields) json(name string) json.RawMessage {
	s := f.str(name)
	if s == "" {
		return json.RawMessage("{}")
	}
	if !json.Valid([]byte(s)) {
		f.fail(name, "must be valid JSON")
		return nil
	}
	return json.RawMessage(s)
}

func (f *fields) err() error {
	if len(f.errs) == 0 {
		return nil
	}
	return f.errs
}
