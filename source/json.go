package source

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// decodeJSON walks the token stream so repeated keys can be rejected; a plain
// Unmarshal keeps the last value silently.
func decodeJSON(r io.Reader) (any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	v, err := readValue(dec, nil)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after top-level value")
	}
	return v, nil
}

func readValue(dec *json.Decoder, path []string) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			return readObject(dec, path)
		case '[':
			return readArray(dec, path)
		}
		return nil, fmt.Errorf("unexpected %q at %s", v, pointer(path))
	case json.Number:
		return number(v)
	}
	return tok, nil
}

func readObject(dec *json.Decoder, path []string) (any, error) {
	out := map[string]any{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key at %s", pointer(path))
		}
		if _, dup := out[key]; dup {
			return nil, fmt.Errorf("%w %q at %s", ErrDuplicateKey, key, pointer(path))
		}
		v, err := readValue(dec, append(path, key))
		if err != nil {
			return nil, err
		}
		out[key] = v
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return out, nil
}

func readArray(dec *json.Decoder, path []string) (any, error) {
	out := []any{}
	for i := 0; dec.More(); i++ {
		v, err := readValue(dec, append(path, strconv.Itoa(i)))
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return out, nil
}

func number(n json.Number) (any, error) {
	if i, err := n.Int64(); err == nil {
		return i, nil
	}
	f, err := n.Float64()
	if err != nil {
		return nil, fmt.Errorf("invalid number %q: %w", n, err)
	}
	return f, nil
}

func pointer(path []string) string {
	if len(path) == 0 {
		return "/"
	}
	esc := make([]string, len(path))
	for i, p := range path {
		esc[i] = strings.ReplaceAll(strings.ReplaceAll(p, "~", "~0"), "/", "~1")
	}
	return "/" + strings.Join(esc, "/")
}
