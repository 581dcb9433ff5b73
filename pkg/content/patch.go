package content

import (
	"encoding/json"
	"fmt"

	jsonpatch "github.com/evanphx/json-patch/v5"
)

// MergePatch applies patch to data following RFC 7386. A null member removes the field.
func MergePatch(data, patch json.RawMessage) (json.RawMessage, error) {
	if len(data) == 0 {
		data = json.RawMessage(`{}`)
	}
	merged, err := jsonpatch.MergePatch(data, patch)
	if err != nil {
		return nil, fmt.Errorf("merge patch: %w", err)
	}
	if !ValidData(merged) {
		return nil, ErrInvalidData
	}
	return merged, nil
}
