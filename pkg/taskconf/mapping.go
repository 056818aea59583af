package taskconf

import (
	"encoding/json"
	"strings"
)

// ParseRenameMapping accepts either a JSON object of strings or one old:new
// pair per line. Malformed lines (no colon, or an empty side) are skipped.
// Text that is empty, invalid JSON, or yields no pair is an InvalidMapping.
func ParseRenameMapping(text string) (map[string]string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, newValidationError(KindInvalidMapping, "rename mapping is empty")
	}

	if strings.HasPrefix(text, "{") {
		var mapping map[string]string
		if err := json.Unmarshal([]byte(text), &mapping); err != nil {
			return nil, &ValidationError{Kind: KindInvalidMapping, Message: "rename mapping is not a JSON object of strings", Err: err}
		}
		if len(mapping) == 0 {
			return nil, newValidationError(KindInvalidMapping, "rename mapping is empty")
		}
		return mapping, nil
	}

	mapping := make(map[string]string)
	for _, line := range strings.Split(text, "\n") {
		from, to, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		from, to = strings.TrimSpace(from), strings.TrimSpace(to)
		if from == "" || to == "" {
			continue
		}
		mapping[from] = to
	}
	if len(mapping) == 0 {
		return nil, newValidationError(KindInvalidMapping, "no old:new pair found in rename mapping")
	}
	return mapping, nil
}
