// Package config loads an oakc project manifest (oakc.yaml) using
// yaml.v3, validating it against a compiled JSON Schema before use.
package config

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// Manifest is the contents of an oakc.yaml project file.
type Manifest struct {
	Grammar         string `yaml:"grammar" json:"grammar"`
	Package         string `yaml:"package" json:"package"`
	OutDir          string `yaml:"outDir" json:"outDir"`
	TargetGoVersion string `yaml:"targetGoVersion" json:"targetGoVersion"`
}

const manifestSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["grammar", "package"],
  "properties": {
    "grammar": {"type": "string", "minLength": 1},
    "package": {"type": "string", "minLength": 1},
    "outDir": {"type": "string"},
    "targetGoVersion": {"type": "string"}
  }
}`

// validatorCache caches the single compiled manifest schema, keyed by
// its content hash. There is only ever one schema in practice, but
// this shape lets a future per-project schema override slot in
// without a redesign.
type validatorCache struct {
	mu    sync.RWMutex
	cache map[string]*jsonschema.Schema
}

var schemaCache = &validatorCache{cache: make(map[string]*jsonschema.Schema)}

func (c *validatorCache) get(hash string) (*jsonschema.Schema, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.cache[hash]
	return v, ok
}

func (c *validatorCache) put(hash string, v *jsonschema.Schema) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[hash] = v
}

func hashSchema(schema string) string {
	sum := sha256.Sum256([]byte(schema))
	return hex.EncodeToString(sum[:])
}

func compiledManifestSchema() (*jsonschema.Schema, error) {
	hash := hashSchema(manifestSchemaJSON)
	if s, ok := schemaCache.get(hash); ok {
		return s, nil
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("manifest.json", bytes.NewReader([]byte(manifestSchemaJSON))); err != nil {
		return nil, err
	}
	schema, err := compiler.Compile("manifest.json")
	if err != nil {
		return nil, err
	}
	schemaCache.put(hash, schema)
	return schema, nil
}

// Parse decodes and validates an oakc.yaml manifest. moduleGoVersion
// is the "go X.Y" directive from the project's go.mod, used to reject
// a manifest that targets a newer Go than the module declares.
func Parse(data []byte, moduleGoVersion string) (*Manifest, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing oakc.yaml: %w", err)
	}

	schema, err := compiledManifestSchema()
	if err != nil {
		return nil, fmt.Errorf("compiling manifest schema: %w", err)
	}
	// jsonschema validates against plain JSON values (map[string]any
	// with string keys), so round-trip through json to normalize the
	// yaml.v3 decode (which can produce map[any]any for nested maps).
	normalized, err := roundTripJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("normalizing oakc.yaml: %w", err)
	}
	if err := schema.Validate(normalized); err != nil {
		return nil, fmt.Errorf("oakc.yaml failed validation: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding oakc.yaml: %w", err)
	}
	if m.OutDir == "" {
		m.OutDir = "."
	}

	if m.TargetGoVersion != "" {
		if err := checkTargetGoVersion(m.TargetGoVersion, moduleGoVersion); err != nil {
			return nil, err
		}
	}
	return &m, nil
}

func roundTripJSON(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// checkTargetGoVersion rejects a manifest that targets a Go release
// newer than the one the module itself declares, using x/mod/semver
// for the comparison (grounded on core/types/validation.go's semver
// format check).
func checkTargetGoVersion(target, module string) error {
	t, m := "v"+target, "v"+module
	if !semver.IsValid(t) {
		return fmt.Errorf("targetGoVersion %q is not a valid version", target)
	}
	if !semver.IsValid(m) {
		// The module's own go directive is trusted input; an invalid
		// value here means the caller passed a bad version string, not
		// that the manifest is wrong.
		return nil
	}
	if semver.Compare(t, m) > 0 {
		return fmt.Errorf("targetGoVersion %q is newer than this module's go directive %q", target, module)
	}
	return nil
}
