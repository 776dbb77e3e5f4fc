package utils

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONMap maps a Postgres jsonb column onto a plain Go map. Used for alert
// evidence payloads and template metadata.
type JSONMap map[string]any

func (j JSONMap) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil // Store NULL if the map is nil
	}
	return json.Marshal(j)
}

func (j *JSONMap) Scan(value any) error {
	if value == nil {
		*j = nil
		return nil
	}

	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("JSONMap: Scan failed, expected []byte but got %T", value)
	}

	return json.Unmarshal(b, j)
}

// StringList maps a Postgres jsonb array of strings. Used for alert
// recommendation lists and stage problem tags.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(value any) error {
	if value == nil {
		*l = nil
		return nil
	}

	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("StringList: Scan failed, expected []byte but got %T", value)
	}

	return json.Unmarshal(b, l)
}
