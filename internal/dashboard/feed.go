package dashboard

import (
	"sync"

	"weatherdash/shared/types"
)

// MaxReadings bounds the live feed.
const MaxReadings = 4

// Feed keeps the most recent live readings, newest first.
type Feed struct {
	mu    sync.Mutex
	items []types.IoTUpdate
}

// Push puts u at the front and evicts the oldest entry past MaxReadings.
func (f *Feed) Push(u types.IoTUpdate) {
	f.mu.Lock()
	defer f.mu.Unlock()

	items := make([]types.IoTUpdate, 0, MaxReadings)
	items = append(items, u)
	for _, it := range f.items {
		if len(items) == MaxReadings {
			break
		}
		items = append(items, it)
	}
	f.items = items
}

// Items returns a copy of the feed, newest first.
func (f *Feed) Items() []types.IoTUpdate {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]types.IoTUpdate(nil), f.items...)
}

// Latest returns the newest reading, if any.
func (f *Feed) Latest() (types.IoTUpdate, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.items) == 0 {
		return types.IoTUpdate{}, false
	}
	return f.items[0], true
}
