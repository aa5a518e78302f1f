package util

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// RatingsAsJSON is stored as a JSON object mapping uuid strings to integer
// ratings. A nil map is stored as SQL NULL, which is how rows that predate
// rating snapshots are told apart from empty snapshots.
type RatingsAsJSON map[uuid.UUID]int

func (r RatingsAsJSON) Value() (driver.Value, error) {
	if r == nil {
		return nil, nil
	}

	return json.Marshal(r)
}

func (r RatingsAsJSON) Get(id UUIDAsBlob) (int, bool) {
	v, ok := r[id.UUID()]
	return v, ok
}

func (r *RatingsAsJSON) Scan(src interface{}) error {
	switch src := src.(type) {
	case nil:
		*r = nil
		return nil
	case []byte:
		return json.Unmarshal(src, &r)
	case string:
		return json.Unmarshal([]byte(src), &r)
	default:
		return fmt.Errorf("expected []byte or string, got %T", src)
	}
}
