package templates

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
)

// ImportResult counts what an import did.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// Export serializes templates as an indented JSON array.
func Export(cs []Config) ([]byte, error) {
	if cs == nil {
		cs = []Config{}
	}
	data, err := json.MarshalIndent(cs, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding templates: %w", err)
	}
	return data, nil
}

// ExportAll serializes every template in the store.
func ExportAll(ctx context.Context, s Store) ([]byte, error) {
	cs, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return Export(cs)
}

// Decode parses either a single template object or an array of them.
func Decode(data []byte) ([]Config, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty template document")
	}
	if trimmed[0] == '[' {
		var cs []Config
		if err := json.Unmarshal(trimmed, &cs); err != nil {
			return nil, fmt.Errorf("decoding templates: %w", err)
		}
		return cs, nil
	}
	var c Config
	if err := json.Unmarshal(trimmed, &c); err != nil {
		return nil, fmt.Errorf("decoding template: %w", err)
	}
	return []Config{c}, nil
}

// Import merges templates from data into the store. Entries missing an id,
// name or template type are skipped, as are entries that fail validation.
// An id already present in the store is replaced with a fresh one.
func Import(ctx context.Context, s Store, data []byte) (ImportResult, error) {
	incoming, err := Decode(data)
	if err != nil {
		return ImportResult{}, err
	}

	existing, err := s.List(ctx)
	if err != nil {
		return ImportResult{}, err
	}
	ids := make(map[string]bool, len(existing))
	for _, c := range existing {
		ids[c.ID] = true
	}

	var res ImportResult
	for _, c := range incoming {
		if c.ID == "" || c.Name == "" || c.TemplateType == "" {
			res.Skipped++
			continue
		}
		if ids[c.ID] {
			c.ID = NewID()
		}
		saved, err := s.Save(ctx, c)
		if err != nil {
			log.Printf("WARNING: skipping template %q: %v", c.Name, err)
			res.Skipped++
			continue
		}
		ids[saved.ID] = true
		res.Imported++
	}
	return res, nil
}
