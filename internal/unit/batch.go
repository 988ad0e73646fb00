package unit

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
)

// ReadKey is one address requested by a read batch. Key is echoed back to
// the client exactly as sent.
type ReadKey struct {
	Key     string
	Address int
}

// BatchEntry is one key/value pair of a write batch, in request order.
type BatchEntry struct {
	Key   string
	Value json.RawMessage
}

// DecodeWriteBatch parses a write batch: a JSON object mapping zero-based
// address strings to values. Entries keep the order the client sent them
// in, because a later write may depend on a rule triggered by an earlier
// one. A repeated key keeps its first position and takes the last value.
// Values are kept raw so malformed ones can be skipped individually by
// WriteRegisters.
func DecodeWriteBatch(data []byte) ([]BatchEntry, error) {
	if len(data) == 0 {
		return nil, ErrEmptyBatch
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBatch, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, ErrInvalidBatch
	}

	entries := []BatchEntry{}
	position := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidBatch, err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, ErrInvalidBatch
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidBatch, err)
		}
		if i, seen := position[key]; seen {
			entries[i].Value = value
			continue
		}
		position[key] = len(entries)
		entries = append(entries, BatchEntry{Key: key, Value: value})
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBatch, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after object", ErrInvalidBatch)
	}
	return entries, nil
}

// DecodeReadBatch parses a read batch: a JSON object whose keys are
// zero-based addresses. Values must be integers and are otherwise ignored.
// Keys that are not integers are dropped.
func DecodeReadBatch(data []byte) ([]ReadKey, error) {
	if len(data) == 0 {
		return nil, ErrEmptyBatch
	}
	var requested map[string]int
	if err := json.Unmarshal(data, &requested); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBatch, err)
	}
	if requested == nil {
		return nil, ErrInvalidBatch
	}

	keys := make([]ReadKey, 0, len(requested))
	for k := range requested {
		addr, err := strconv.Atoi(k)
		if err != nil {
			continue
		}
		keys = append(keys, ReadKey{Key: k, Address: addr})
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Address < keys[j].Address })
	return keys, nil
}
