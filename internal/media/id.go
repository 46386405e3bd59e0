package media

import (
	"strconv"
	"sync"
	"time"
)

var (
	idMu   sync.Mutex
	lastID int64
)

// NewRecordID returns a process-unique record identifier: the creation
// time in nanoseconds, rendered in decimal. When two records are created
// within the same nanosecond tick the later one is bumped past the
// earlier, so ids stay strictly increasing and insertion order can be
// recovered by sorting them.
func NewRecordID() string {
	idMu.Lock()
	defer idMu.Unlock()

	id := time.Now().UnixNano()
	if id <= lastID {
		id = lastID + 1
	}
	lastID = id
	return strconv.FormatInt(id, 10)
}
