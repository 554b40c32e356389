// Package geoindex provides an R-tree backed radius index for report
// prefiltering. Candidates are collected with a bounding-box search and
// refined with the exact great-circle distance.
package geoindex

import (
	"math"
	"sync"

	"github.com/dhconnelly/rtreego"
)

const (
	dimensions  = 2
	minChildren = 25
	maxChildren = 50

	earthRadiusMeters = 6371000.0
	metersPerDegree   = 111320.0
)

// Entry is one indexed point.
type Entry struct {
	ID  string
	Lat float64
	Lng float64
}

type spatialItem struct {
	entry *Entry
	rect  *rtreego.Rect
}

func (si *spatialItem) Bounds() *rtreego.Rect {
	return si.rect
}

// Index is a thread-safe point index over (lng, lat) space.
type Index struct {
	mu   sync.RWMutex
	tree *rtreego.Rtree
	size int
}

func New() *Index {
	return &Index{
		tree: rtreego.NewTree(dimensions, minChildren, maxChildren),
	}
}

// Insert adds one entry to the index.
func (idx *Index) Insert(entry *Entry) error {
	rect, err := rtreego.NewRect(rtreego.Point{entry.Lng, entry.Lat}, []float64{1e-9, 1e-9})
	if err != nil {
		return err
	}

	idx.mu.Lock()
	idx.tree.Insert(&spatialItem{entry: entry, rect: rect})
	idx.size++
	idx.mu.Unlock()

	return nil
}

// Bulk adds a batch of entries; entries with invalid rects are skipped.
func (idx *Index) Bulk(entries []*Entry) {
	for _, entry := range entries {
		_ = idx.Insert(entry)
	}
}

// Size returns the number of indexed entries.
func (idx *Index) Size() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.size
}

// SearchRadius returns every entry within radiusMeters of the center.
// The bounding box over-selects near the box corners; results are refined
// with the Haversine distance before being returned.
func (idx *Index) SearchRadius(lat, lng, radiusMeters float64) []*Entry {
	latDelta := radiusMeters / metersPerDegree
	cosLat := math.Cos(lat * math.Pi / 180)
	if cosLat < 0.01 {
		cosLat = 0.01
	}
	lngDelta := radiusMeters / (metersPerDegree * cosLat)

	rect, err := rtreego.NewRect(
		rtreego.Point{lng - lngDelta, lat - latDelta},
		[]float64{2 * lngDelta, 2 * latDelta},
	)
	if err != nil {
		return nil
	}

	idx.mu.RLock()
	candidates := idx.tree.SearchIntersect(rect)
	idx.mu.RUnlock()

	results := make([]*Entry, 0, len(candidates))
	for _, candidate := range candidates {
		item, ok := candidate.(*spatialItem)
		if !ok {
			continue
		}
		if haversineMeters(lat, lng, item.entry.Lat, item.entry.Lng) <= radiusMeters {
			results = append(results, item.entry)
		}
	}

	return results
}

func haversineMeters(lat1, lng1, lat2, lng2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}
