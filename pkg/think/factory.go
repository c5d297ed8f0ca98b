package think

import (
	"path/filepath"

	"github.com/Dianel555/DSkills/pkg/config"
)

// Backend names accepted by NewStore.
const (
	BackendJSON  = "json"
	BackendBBolt = "bbolt"
)

// NewStore creates the configured journal backend under the
// sequential-think configuration directory. JSON is the default; bbolt
// is available for histories large enough that rewriting a single JSON
// document per append becomes noticeable.
func NewStore(backend string) (Store, error) {
	dir, err := config.Dir("sequential-think")
	if err != nil {
		return nil, err
	}

	switch backend {
	case BackendBBolt:
		return NewBBoltStore(filepath.Join(dir, "thought_history.db"))
	default:
		return NewJSONStore(filepath.Join(dir, "thought_history.json"))
	}
}
