package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

// LoadJSON reads one ManPage record, or a JSON array of them, from r,
// validating each record against recordSchema before indexing it. It
// returns the number of records added.
func (s *MemStore) LoadJSON(r io.Reader) (int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("store: reading JSON input: %w", err)
	}
	raws, err := splitJSONRecords(data)
	if err != nil {
		return 0, fmt.Errorf("store: parsing JSON input: %w", err)
	}

	pages := make([]*ManPage, 0, len(raws))
	for _, raw := range raws {
		var m ManPage
		if err := json.Unmarshal(raw, &m); err != nil {
			return 0, fmt.Errorf("store: decoding record: %w", err)
		}
		if err := validateRawJSON(raw); err != nil {
			return 0, fmt.Errorf("store: record %q failed validation: %w", m.Name, err)
		}
		pages = append(pages, &m)
	}

	ordered, err := orderForIndexing(pages)
	if err != nil {
		return 0, fmt.Errorf("store: %w", err)
	}
	for _, m := range ordered {
		s.AddManPage(m)
	}
	return len(ordered), nil
}

func splitJSONRecords(data []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var raws []json.RawMessage
		if err := json.Unmarshal(trimmed, &raws); err != nil {
			return nil, err
		}
		return raws, nil
	}
	return []json.RawMessage{json.RawMessage(trimmed)}, nil
}

func validateRawJSON(raw json.RawMessage) error {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}
	return validateRecord(doc)
}

// LoadCBOR reads one ManPage record, or a CBOR array of them, encoded with
// github.com/fxamacker/cbor/v2, from r - the compact binary counterpart of
// LoadJSON's wire format. Records are normalized through
// JSON before schema validation, since the validator expects
// encoding/json-shaped values (map[string]interface{}, float64, ...), which
// CBOR's native integer/byte-string types don't match directly.
func (s *MemStore) LoadCBOR(r io.Reader) (int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("store: reading CBOR input: %w", err)
	}

	var pages []ManPage
	if err := cbor.Unmarshal(data, &pages); err != nil {
		// Not an array: fall back to a single record.
		var one ManPage
		if err2 := cbor.Unmarshal(data, &one); err2 != nil {
			return 0, fmt.Errorf("store: decoding CBOR input: %w", err)
		}
		pages = []ManPage{one}
	}

	ptrs := make([]*ManPage, len(pages))
	for i := range pages {
		m := &pages[i]
		jsonBytes, err := json.Marshal(m)
		if err != nil {
			return 0, fmt.Errorf("store: normalizing record %q: %w", m.Name, err)
		}
		if err := validateRawJSON(jsonBytes); err != nil {
			return 0, fmt.Errorf("store: record %q failed validation: %w", m.Name, err)
		}
		ptrs[i] = m
	}

	ordered, err := orderForIndexing(ptrs)
	if err != nil {
		return 0, fmt.Errorf("store: %w", err)
	}
	for _, m := range ordered {
		s.AddManPage(m)
	}
	return len(ordered), nil
}
