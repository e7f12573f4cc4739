package watchlistschema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed watchlist.schema.json
var watchlistSchemaJSON string

// Watchlist is the decoded form of a v1 watchlist file: the ordered material
// catalog plus the keyword tables the scorer consumes.
type Watchlist struct {
	WatchlistVersion string              `json:"watchlist_version"`
	Materials        []string            `json:"materials"`
	Synonyms         map[string][]string `json:"synonyms,omitempty"`
	BrandTerms       []string            `json:"brand_terms,omitempty"`
	RegionTerms      []string            `json:"region_terms,omitempty"`
	SupplyTerms      []string            `json:"supply_terms,omitempty"`
	Ports            []string            `json:"ports,omitempty"`
	Pinned           []string            `json:"pinned,omitempty"`
}

var (
	compileOnce       sync.Once
	compiledSchema    *jsonschema.Schema
	compiledSchemaErr error
)

func ValidateWatchlistPayload(payload json.RawMessage) (*Watchlist, error) {
	value, err := decodeStrictJSON(payload)
	if err != nil {
		return nil, fmt.Errorf("decode watchlist JSON: %w", err)
	}

	schema, err := loadSchema()
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}

	if err := schema.Validate(value); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	normalized, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("normalize watchlist JSON: %w", err)
	}

	var list Watchlist
	if err := json.Unmarshal(normalized, &list); err != nil {
		return nil, fmt.Errorf("unmarshal watchlist: %w", err)
	}

	if err := validateSemantics(&list); err != nil {
		return nil, err
	}

	return &list, nil
}

func loadSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		compiler.AssertFormat = true

		if err := compiler.AddResource("watchlist.schema.json", strings.NewReader(watchlistSchemaJSON)); err != nil {
			compiledSchemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}

		schema, err := compiler.Compile("watchlist.schema.json")
		if err != nil {
			compiledSchemaErr = fmt.Errorf("compile schema: %w", err)
			return
		}

		compiledSchema = schema
	})

	if compiledSchemaErr != nil {
		return nil, compiledSchemaErr
	}
	if compiledSchema == nil {
		return nil, fmt.Errorf("schema not initialized")
	}
	return compiledSchema, nil
}

func decodeStrictJSON(raw []byte) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("watchlist is empty")
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}

	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("watchlist contains trailing content")
	}

	return value, nil
}

func validateSemantics(list *Watchlist) error {
	if list == nil {
		return fmt.Errorf("watchlist is nil")
	}

	if strings.TrimSpace(list.WatchlistVersion) != "v1" {
		return fmt.Errorf("watchlist_version must be v1")
	}

	seen := make(map[string]struct{}, len(list.Materials))
	for i, material := range list.Materials {
		trimmed := strings.TrimSpace(material)
		if trimmed == "" {
			return fmt.Errorf("materials[%d] must not be empty", i)
		}
		if _, dup := seen[trimmed]; dup {
			return fmt.Errorf("materials[%d] %q is listed twice", i, trimmed)
		}
		seen[trimmed] = struct{}{}
	}

	for material := range list.Synonyms {
		if _, ok := seen[strings.TrimSpace(material)]; !ok {
			return fmt.Errorf("synonyms key %q does not match any material", material)
		}
	}

	for i, pinnedURL := range list.Pinned {
		if err := validateURI(fmt.Sprintf("pinned[%d]", i), pinnedURL); err != nil {
			return err
		}
	}

	return nil
}

func validateURI(fieldName, value string) error {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fmt.Errorf("%s must not be empty", fieldName)
	}
	if _, err := url.ParseRequestURI(trimmed); err != nil {
		return fmt.Errorf("%s is not a valid URI: %w", fieldName, err)
	}
	return nil
}
