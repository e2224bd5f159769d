package fitting

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wearlab/tryon-agent/pkg/artifacts"
)

// TryOnRecord links one try-on result artifact to the person and garment
// images it was generated from. Records are created at generation time and
// never mutated; the person/garment references are weak, so a record may
// outlive the files it points at.
type TryOnRecord struct {
	ID             string    `json:"id"`
	ResultFilename string    `json:"resultFilename"`
	ResultVersion  int       `json:"resultVersion"`
	PersonImage    string    `json:"personImage"`
	Garment        string    `json:"garment"`
	View           string    `json:"view,omitempty"` // set by batch multiview try-ons
	CreatedAt      time.Time `json:"createdAt"`
}

// recordBook holds the session's TryOnRecords keyed by result filename.
// Session-scoped and in-memory, like the rest of the agent's conversational
// state.
type recordBook struct {
	mu       sync.RWMutex
	byResult map[string]TryOnRecord
}

func newRecordBook() *recordBook {
	return &recordBook{byResult: make(map[string]TryOnRecord)}
}

// add stores rec, assigning an id and creation time when unset, and returns
// the stored copy. A record for the same result filename is replaced; that
// only happens when the artifact itself was overwritten.
func (b *recordBook) add(rec TryOnRecord) TryOnRecord {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	b.mu.Lock()
	b.byResult[rec.ResultFilename] = rec
	b.mu.Unlock()
	return rec
}

func (b *recordBook) get(resultFilename string) (TryOnRecord, bool) {
	b.mu.RLock()
	rec, ok := b.byResult[resultFilename]
	b.mu.RUnlock()
	return rec, ok
}

// all returns every record in ascending result-version order.
func (b *recordBook) all() []TryOnRecord {
	b.mu.RLock()
	out := make([]TryOnRecord, 0, len(b.byResult))
	for _, rec := range b.byResult {
		out = append(out, rec)
	}
	b.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].ResultVersion != out[j].ResultVersion {
			return out[i].ResultVersion < out[j].ResultVersion
		}
		return out[i].ResultFilename < out[j].ResultFilename
	})
	return out
}

// removeClass drops every record whose result belongs to class and reports
// how many were removed.
func (b *recordBook) removeClass(class string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	removed := 0
	for name := range b.byResult {
		if c, _, _, ok := artifacts.ParseFilename(name); ok && c == class {
			delete(b.byResult, name)
			removed++
		}
	}
	return removed
}
