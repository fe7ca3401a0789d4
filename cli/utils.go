package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"
)

// parseFile decodes a JSON or YAML file into v using v's json tags.
func parseFile(filePath string, v interface{}) error {
	b, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	switch filepath.Ext(filePath) {
	case ".json":
		if err := json.Unmarshal(b, v); err != nil {
			return fmt.Errorf("invalid json: %w", err)
		}
	case ".yaml", ".yml":
		var raw interface{}
		if err := yaml.Unmarshal(b, &raw); err != nil {
			return fmt.Errorf("invalid yaml: %w", err)
		}
		b, err = json.Marshal(jsonCompatible(raw))
		if err != nil {
			return fmt.Errorf("invalid yaml: %w", err)
		}
		if err := json.Unmarshal(b, v); err != nil {
			return fmt.Errorf("invalid yaml: %w", err)
		}
	default:
		return errors.New("unsupported file type")
	}

	return nil
}

// jsonCompatible turns the map[interface{}]interface{} values produced by
// yaml.v2 into string keyed maps.
func jsonCompatible(v interface{}) interface{} {
	switch v := v.(type) {
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(v))
		for k, val := range v {
			m[fmt.Sprint(k)] = jsonCompatible(val)
		}
		return m
	case []interface{}:
		for i, val := range v {
			v[i] = jsonCompatible(val)
		}
		return v
	default:
		return v
	}
}

func prettyPrint(i interface{}) string {
	s, _ := json.MarshalIndent(i, "", "\t")
	return string(s)
}

func makeMapFromString(commaSepStr string) (map[string]interface{}, error) {
	m := make(map[string]interface{})
	if commaSepStr == "" {
		return m, nil
	}
	for _, s := range strings.Split(commaSepStr, ",") {
		arr := strings.SplitN(s, ":", 2)
		if len(arr) != 2 || arr[0] == "" {
			return nil, fmt.Errorf("invalid key:value pair %q", s)
		}
		m[arr[0]] = arr[1]
	}
	return m, nil
}
