package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Option is one selectable answer of a question.
type Option struct {
	ID   string
	Text string
}

// Options is an ordered option-id -> text mapping. It serializes as a JSON
// object and keeps the key order it was decoded with.
type Options []Option

// Has reports whether id names one of the options.
func (o Options) Has(id string) bool {
	for _, opt := range o {
		if opt.ID == id {
			return true
		}
	}
	return false
}

// Text returns the text of option id.
func (o Options) Text(id string) (string, bool) {
	for _, opt := range o {
		if opt.ID == id {
			return opt.Text, true
		}
	}
	return "", false
}

func (o Options) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, opt := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(opt.ID)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(opt.Text)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (o *Options) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("options: expected object, got %v", tok)
	}

	out := Options{}
	seen := make(map[string]struct{})
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("options: expected key, got %v", tok)
		}
		var text string
		if err := dec.Decode(&text); err != nil {
			return fmt.Errorf("options: value of %q: %w", key, err)
		}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("options: duplicate key %q", key)
		}
		seen[key] = struct{}{}
		out = append(out, Option{ID: key, Text: text})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("options: trailing data")
	}
	*o = out
	return nil
}

// EncodeOptions serializes options to the text stored alongside a question.
func EncodeOptions(o Options) (string, error) {
	data, err := json.Marshal(o)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeOptions parses stored option text. Malformed input is a DataCorruptionError.
func DecodeOptions(questionID int64, raw string) (Options, error) {
	var o Options
	if err := json.Unmarshal([]byte(raw), &o); err != nil {
		return nil, &DataCorruptionError{Entity: "question", ID: fmt.Sprint(questionID), Err: err}
	}
	return o, nil
}
