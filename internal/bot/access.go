package bot

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadAccessIDs reads the allow-list: a JSON array of telegram ids. An
// empty path means no allow-list (everyone is admitted).
func LoadAccessIDs(path string) (map[int64]struct{}, error) {
	if path == "" {
		return nil, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading access list: %w", err)
	}

	var ids []int64
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, fmt.Errorf("parsing access list %s: %w", path, err)
	}

	access := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		access[id] = struct{}{}
	}
	return access, nil
}

// allowed admits everyone when the allow-list is empty.
func (b *Bot) allowed(userID int64) bool {
	if len(b.access) == 0 {
		return true
	}
	_, ok := b.access[userID]
	return ok
}
