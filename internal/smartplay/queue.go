package smartplay

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ParseQueueNumber extracts data.queueNum from a queue response. Missing,
// null, empty and zero numbers are reported as absent.
func ParseQueueNumber(body []byte) (string, bool) {
	var resp struct {
		Data *struct {
			QueueNum json.RawMessage `json:"queueNum"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil || resp.Data == nil {
		return "", false
	}

	num := strings.Trim(string(bytes.TrimSpace(resp.Data.QueueNum)), `"`)
	switch num {
	case "", "null", "0", "false":
		return "", false
	}
	return num, true
}

// ParseQueueStatus reports whether a queue status response carries data.
func ParseQueueStatus(body []byte) (bool, error) {
	var resp struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return false, fmt.Errorf("parsing queue status: %w", err)
	}

	switch string(bytes.TrimSpace(resp.Data)) {
	case "", "null", "false", "0", `""`:
		return false, nil
	}
	return true, nil
}
