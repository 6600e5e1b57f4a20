package policy

import (
	"encoding/json"
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// DecodeWeakly is a generic helper to decode a loosely typed value (usually the
// result of unmarshalling JSON into an interface) into a strongly-typed struct
// using JSON tags.
// It uses weak typing to handle number-to-string and string-to-float conversions,
// since policy authors do not always quote versions or intervals consistently.
func DecodeWeakly[T any](input any) (*T, error) {
	var result T

	config := &mapstructure.DecoderConfig{
		Result:           &result,
		WeaklyTypedInput: true,
		TagName:          "json",
	}

	decoder, err := mapstructure.NewDecoder(config)
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(input); err != nil {
		return nil, err
	}

	return &result, nil
}

// DecodeDocument parses a policy payload.
func DecodeDocument(data []byte) (*Document, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid policy json: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("policy document is empty")
	}

	doc, err := DecodeWeakly[Document](raw)
	if err != nil {
		return nil, fmt.Errorf("invalid policy document: %w", err)
	}
	return doc, nil
}

// helperTextOrDefault returns text, or fallback if text is empty.
func helperTextOrDefault(text string, fallback string) string {
	if text == "" {
		return fallback
	}
	return text
}
