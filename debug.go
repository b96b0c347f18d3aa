package texmap

import "log/slog"

// GridChange describes a single tile grid recompute.
type GridChange struct {
	Added      int // grid cells outside the rigid region
	Candidates int // tiles eligible for recycling or removal
	Created    int
	Recycled   int
	Removed    int
	Parked     int // candidates kept only by the erase threshold
}

// Stats holds cumulative tile churn counters for a TiledBackingStore.
type Stats struct {
	Recomputes int
	Created    int
	Recycled   int
	Removed    int
	Uploads    int
	Draws      int

	// Last is the most recent grid recompute.
	Last GridChange
}

// log emits the last grid change at debug level.
func (st *Stats) log(l *slog.Logger, cover Rect, tiles int) {
	c := st.Last
	l.Debug("texmap: tile grid",
		"cover", cover,
		"tiles", tiles,
		"added", c.Added,
		"candidates", c.Candidates,
		"created", c.Created,
		"recycled", c.Recycled,
		"removed", c.Removed,
		"parked", c.Parked,
	)
	if c.Parked > 0 {
		l.Debug("texmap: tiles parked by erase threshold", "parked", c.Parked)
	}
}
