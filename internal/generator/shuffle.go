package generator

import (
	"encoding/json"
	"fmt"
)

// ShuffleMode controls reordering of a generated problem list.
type ShuffleMode string

const (
	ShuffleNone   ShuffleMode = "none"
	ShuffleAll    ShuffleMode = "all"
	ShuffleTopics ShuffleMode = "topics"
)

// Normalize maps the empty mode to ShuffleNone and rejects unknown modes.
func (m ShuffleMode) Normalize() (ShuffleMode, error) {
	switch m {
	case "", ShuffleNone:
		return ShuffleNone, nil
	case ShuffleAll, ShuffleTopics:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidShuffle, string(m))
	}
}

// UnmarshalJSON accepts a mode string, or a boolean where true means "all".
func (m *ShuffleMode) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*m = ShuffleNone
		if b {
			*m = ShuffleAll
		}
		return nil
	}
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidShuffle, data)
	}
	if s == nil {
		*m = ShuffleNone
		return nil
	}
	mode, err := ShuffleMode(*s).Normalize()
	if err != nil {
		return err
	}
	*m = mode
	return nil
}
