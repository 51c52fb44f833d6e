package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// ArgumentKey returns the canonical encoding of a positional argument tuple.
//
// The key is a compact JSON array. Object keys are sorted and HTML escaping is
// disabled, so logically equal tuples always encode to the same string. Nil and
// empty tuples both encode to "[]". Values JSON cannot represent (channels,
// functions, complex numbers, NaN) fail with ErrArgumentEncoding.
func ArgumentKey(args []any) (string, error) {
	if args == nil {
		args = []any{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(args); err != nil {
		return "", fmt.Errorf("%w: %v", ErrArgumentEncoding, err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// DecodeArgumentKey turns a canonical key back into a positional tuple.
// Numbers come back as float64.
func DecodeArgumentKey(key string) ([]any, error) {
	var args []any
	if err := json.Unmarshal([]byte(key), &args); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArgumentEncoding, err)
	}
	if args == nil {
		args = []any{}
	}
	return args, nil
}

// ParseArgs converts user-typed fields into arguments. Each field is decoded
// as JSON when it parses, otherwise it is kept as a plain string, so
// "4" becomes a number and "hello" stays a string.
func ParseArgs(fields []string) []any {
	args := make([]any, 0, len(fields))
	for _, field := range fields {
		var v any
		if err := json.Unmarshal([]byte(field), &v); err != nil {
			args = append(args, field)
			continue
		}
		args = append(args, v)
	}
	return args
}

// EncodeResult serialises a function's return value into the opaque
// payload stored on a SUCCESS record.
func EncodeResult(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}
	return data, nil
}

// DecodeResult is the caller-side decode step for a result payload.
func DecodeResult[T any](payload []byte) (T, error) {
	var v T
	if len(payload) == 0 {
		return v, fmt.Errorf("decoding result: %w", ErrNotFound)
	}
	if err := json.Unmarshal(payload, &v); err != nil {
		return v, fmt.Errorf("decoding result: %w", err)
	}
	return v, nil
}

// IntArg returns argument i as an int. Whole float64 values are accepted
// because arguments decoded from JSON carry numbers as float64.
func IntArg(args []any, i int) (int, error) {
	if i < 0 || i >= len(args) {
		return 0, fmt.Errorf("%w: missing argument %d", ErrInvalidInput, i)
	}
	switch v := args[i].(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case int32:
		return int(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%w: argument %d is not an integer: %v", ErrInvalidInput, i, v)
		}
		return int(v), nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("%w: argument %d: %v", ErrInvalidInput, i, err)
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("%w: argument %d has type %T, want integer", ErrInvalidInput, i, args[i])
	}
}

// FloatArg returns argument i as a float64.
func FloatArg(args []any, i int) (float64, error) {
	if i < 0 || i >= len(args) {
		return 0, fmt.Errorf("%w: missing argument %d", ErrInvalidInput, i)
	}
	switch v := args[i].(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: argument %d: %v", ErrInvalidInput, i, err)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%w: argument %d has type %T, want number", ErrInvalidInput, i, args[i])
	}
}

// StringArg returns argument i formatted as a string.
func StringArg(args []any, i int) (string, error) {
	if i < 0 || i >= len(args) {
		return "", fmt.Errorf("%w: missing argument %d", ErrInvalidInput, i)
	}
	if s, ok := args[i].(string); ok {
		return s, nil
	}
	return fmt.Sprint(args[i]), nil
}
