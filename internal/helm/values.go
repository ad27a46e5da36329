package helm

import (
	"bytes"
	"fmt"
	"os"

	yamlv3 "gopkg.in/yaml.v3"
	"sigs.k8s.io/yaml"
)

// Values represents helm chart values as a map.
type Values map[string]any

// Merge combines multiple Values maps with later maps taking precedence.
// Maps are merged recursively, so an overlay that sets gateway.tls.enabled
// leaves the base file's gateway.host untouched. This mirrors helm's
// `-f base -f overlay` layering contract: the overlay chain order is fixed,
// later entries win per key, and only scalar or type-mismatched values
// replace wholesale.
func Merge(valueMaps ...Values) Values {
	result := make(map[string]any)
	for _, m := range valueMaps {
		result = mergeMaps(result, m)
	}
	return result
}

// mergeMaps recursively merges b on top of a without mutating either.
func mergeMaps(a, b map[string]any) map[string]any {
	out := make(map[string]any, len(a))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		if v, ok := v.(map[string]any); ok {
			if existing, ok := out[k].(map[string]any); ok {
				out[k] = mergeMaps(existing, v)
				continue
			}
		}
		out[k] = v
	}
	return out
}

// LoadFile parses a single values file.
func LoadFile(path string) (Values, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read values file %s: %w", path, err)
	}

	var values Values
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to parse values file %s: %w", path, err)
	}
	return values, nil
}

// LoadFiles loads and merges an ordered list of values files. The order is
// significant: a key set in a later file overrides the same key from an
// earlier file.
func LoadFiles(paths []string) (Values, error) {
	layers := make([]Values, 0, len(paths))
	for _, path := range paths {
		values, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		layers = append(layers, values)
	}
	return Merge(layers...), nil
}

// ToYAML converts values to YAML bytes.
func (v Values) ToYAML() ([]byte, error) {
	var buf bytes.Buffer
	encoder := yamlv3.NewEncoder(&buf)
	encoder.SetIndent(2)

	if err := encoder.Encode(map[string]any(v)); err != nil {
		return nil, fmt.Errorf("failed to encode values to YAML: %w", err)
	}

	return buf.Bytes(), nil
}
