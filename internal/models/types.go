package models

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// JsonNullString 包裝 sql.NullString，讓可為 NULL 的欄位能正確地序列化成 JSON。
type JsonNullString struct {
	sql.NullString
}

// MarshalJSON 實現 json.Marshaler 介面。
func (jns JsonNullString) MarshalJSON() ([]byte, error) {
	if !jns.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(jns.String)
}

// UnmarshalJSON 實現 json.Unmarshaler 介面。
func (jns *JsonNullString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		jns.String, jns.Valid = "", false
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		jns.String, jns.Valid = "", false
		return fmt.Errorf("JsonNullString: 期望 JSON 字串或 null，但得到 '%s': %w", string(data), err)
	}
	jns.String, jns.Valid = s, true
	return nil
}
