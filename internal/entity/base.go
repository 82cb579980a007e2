package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

type Map map[string]any

func (Map) GormDataType() string {
	return "json"
}

func (m *Map) Scan(value any) error {
	switch t := value.(type) {
	case nil:
		*m = nil
		return nil
	case string:
		return json.Unmarshal([]byte(t), m)
	case []byte:
		return json.Unmarshal(t, m)
	default:
		return fmt.Errorf("cannot scan invalid data type %T", value)
	}
}

func (m Map) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}

	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}

	return string(b), nil
}
