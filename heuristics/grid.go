package heuristics

import (
	"sort"

	"github.com/bluele/gcache"
	"github.com/mmcloughlin/geohash"

	"github.com/theoremus-urban-solutions/journey-planner/model"
)

// DefaultPrecision is the geohash length used for grid cells (about
// 1.2km x 0.6km).
const DefaultPrecision uint = 6

// GridIndex buckets positions into geohash cells and measures distance
// between cell centres.
type GridIndex struct {
	precision uint
	destCells []string
	centres   []model.LatLong
	cache     gcache.Cache
}

// NewGridIndex builds an index for the destination positions.
func NewGridIndex(precision uint, destinations []model.LatLong, cacheSize int) *GridIndex {
	if precision == 0 || precision > 12 {
		precision = DefaultPrecision
	}
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	g := &GridIndex{precision: precision, cache: gcache.New(cacheSize).LRU().Build()}
	seen := map[string]bool{}
	for _, d := range destinations {
		cell := g.Cell(d)
		if seen[cell] {
			continue
		}
		seen[cell] = true
		g.destCells = append(g.destCells, cell)
	}
	sort.Strings(g.destCells)
	for _, cell := range g.destCells {
		g.centres = append(g.centres, centre(cell))
	}
	return g
}

func centre(cell string) model.LatLong {
	lat, lon := geohash.DecodeCenter(cell)
	return model.LatLong{Lat: lat, Lon: lon}
}

func (g *GridIndex) Precision() uint { return g.precision }

// Cell returns the geohash cell containing pos.
func (g *GridIndex) Cell(pos model.LatLong) string {
	return geohash.EncodeWithPrecision(pos.Lat, pos.Lon, g.precision)
}

// DestinationCells lists the distinct cells of the destinations, sorted.
func (g *GridIndex) DestinationCells() []string { return g.destCells }

// CellDistance is the distance in km from the centre of cell to the nearest
// destination cell centre; zero inside a destination cell.
func (g *GridIndex) CellDistance(cell string) float64 {
	if v, err := g.cache.Get(cell); err == nil {
		return v.(float64)
	}
	d := nearest(centre(cell), g.centres)
	for _, dc := range g.destCells {
		if dc == cell {
			d = 0
			break
		}
	}
	g.cache.Set(cell, d)
	return d
}

// DistanceKM is CellDistance of the cell containing pos.
func (g *GridIndex) DistanceKM(pos model.LatLong) float64 {
	return g.CellDistance(g.Cell(pos))
}
