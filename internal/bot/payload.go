package bot

import (
	"encoding/json"
	"fmt"
)

// activityPayload is the callback data attached to each category button;
// it binds the user's choice to one specific open activity.
type activityPayload struct {
	ActivityID string `json:"act_id"`
	CategoryID int64  `json:"cat_id"`
}

func encodeActivityPayload(activityID string, categoryID int64) (string, error) {
	raw, err := json.Marshal(activityPayload{ActivityID: activityID, CategoryID: categoryID})
	if err != nil {
		return "", fmt.Errorf("encoding activity payload: %w", err)
	}
	return string(raw), nil
}

func decodeActivityPayload(data string) (activityPayload, error) {
	var p activityPayload
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return p, fmt.Errorf("decoding activity payload: %w", err)
	}
	if p.ActivityID == "" {
		return p, fmt.Errorf("activity payload %q: empty activity id", data)
	}
	return p, nil
}

// mmss renders an interval as minutes:seconds.
func mmss(seconds int) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
