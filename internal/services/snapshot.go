package services

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
)

// encodeRow freezes a pre-image into the undo log's JSON snapshot column.
func encodeRow(row map[string]interface{}) (datatypes.JSON, error) {
	if row == nil {
		return nil, nil
	}
	b, err := json.Marshal(row)
	if err != nil {
		return nil, fmt.Errorf("encode row snapshot: %w", err)
	}
	return datatypes.JSON(b), nil
}

func decodeRow(data datatypes.JSON) (map[string]interface{}, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty row snapshot")
	}
	row := map[string]interface{}{}
	if err := json.Unmarshal(data, &row); err != nil {
		return nil, fmt.Errorf("decode row snapshot: %w", err)
	}
	return row, nil
}
