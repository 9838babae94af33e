package model

import (
	"errors"
	"fmt"
	"math"
)

const earthRadiusKM = 6371.0

// LatLong is a WGS84 position in degrees.
type LatLong struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// IsValid reports whether the position is within WGS84 bounds.
func (p LatLong) IsValid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// DistanceKM is the great-circle distance between two positions.
func (p LatLong) DistanceKM(o LatLong) float64 {
	return HaversineKM(p.Lat, p.Lon, o.Lat, o.Lon)
}

func (p LatLong) String() string { return fmt.Sprintf("(%.6f,%.6f)", p.Lat, p.Lon) }

// HaversineKM returns the great-circle distance in kilometres.
func HaversineKM(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	la1 := lat1 * math.Pi / 180
	la2 := lat2 * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(la1)*math.Cos(la2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKM * c
}

// BoundingBox is an axis aligned lat/lon rectangle.
type BoundingBox struct {
	SouthWest LatLong `json:"southWest"`
	NorthEast LatLong `json:"northEast"`
}

// BoxAround returns the box of roughly the given half-width centred on p.
func BoxAround(p LatLong, halfWidthKM float64) BoundingBox {
	dLat := halfWidthKM / earthRadiusKM * 180 / math.Pi
	dLon := dLat / math.Max(math.Cos(p.Lat*math.Pi/180), 1e-6)
	return BoundingBox{
		SouthWest: LatLong{Lat: p.Lat - dLat, Lon: p.Lon - dLon},
		NorthEast: LatLong{Lat: p.Lat + dLat, Lon: p.Lon + dLon},
	}
}

func (b BoundingBox) Contains(p LatLong) bool {
	return p.Lat >= b.SouthWest.Lat && p.Lat <= b.NorthEast.Lat &&
		p.Lon >= b.SouthWest.Lon && p.Lon <= b.NorthEast.Lon
}

func (b BoundingBox) IsValid() bool {
	return b.SouthWest.IsValid() && b.NorthEast.IsValid() &&
		b.SouthWest.Lat <= b.NorthEast.Lat && b.SouthWest.Lon <= b.NorthEast.Lon
}

// LocationKind tags the variant held by a Location.
type LocationKind uint8

const (
	LocationNone LocationKind = iota
	LocationStation
	LocationGroup
	LocationPosition
	LocationArea
)

func (k LocationKind) String() string {
	switch k {
	case LocationStation:
		return "station"
	case LocationGroup:
		return "group"
	case LocationPosition:
		return "position"
	case LocationArea:
		return "area"
	}
	return "none"
}

// Location is the origin or destination of a journey request. Build it with
// one of the constructors; the zero value is not a valid location.
type Location struct {
	kind     LocationKind
	id       string
	position LatLong
	area     BoundingBox
}

var errInvalidLocation = errors.New("invalid location")

func StationLocation(id string) Location { return Location{kind: LocationStation, id: id} }

// GroupLocation targets every station in a locality group.
func GroupLocation(id string) Location { return Location{kind: LocationGroup, id: id} }

// PositionLocation is an arbitrary point reached on foot from nearby stations.
func PositionLocation(p LatLong) Location { return Location{kind: LocationPosition, position: p} }

// AreaLocation matches any station inside the box.
func AreaLocation(b BoundingBox) Location { return Location{kind: LocationArea, area: b} }

func (l Location) Kind() LocationKind    { return l.kind }
func (l Location) ID() string            { return l.id }
func (l Location) Position() LatLong     { return l.position }
func (l Location) Area() BoundingBox     { return l.area }
func (l Location) IsZero() bool          { return l.kind == LocationNone }
func (l Location) IsStationLike() bool   { return l.kind == LocationStation || l.kind == LocationGroup }
func (l Location) NeedsWalkingLeg() bool { return l.kind == LocationPosition }

func (l Location) validate() error {
	switch l.kind {
	case LocationStation, LocationGroup:
		if l.id == "" {
			return fmt.Errorf("%w: empty %s id", errInvalidLocation, l.kind)
		}
	case LocationPosition:
		if !l.position.IsValid() {
			return fmt.Errorf("%w: position %s out of range", errInvalidLocation, l.position)
		}
	case LocationArea:
		if !l.area.IsValid() {
			return fmt.Errorf("%w: malformed area", errInvalidLocation)
		}
	default:
		return fmt.Errorf("%w: not set", errInvalidLocation)
	}
	return nil
}

func (l Location) String() string {
	switch l.kind {
	case LocationStation, LocationGroup:
		return l.kind.String() + ":" + l.id
	case LocationPosition:
		return "position:" + l.position.String()
	case LocationArea:
		return fmt.Sprintf("area:%s-%s", l.area.SouthWest, l.area.NorthEast)
	}
	return "none"
}
