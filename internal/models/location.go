package models

import (
	"time"
)

// GeoPoint is a WGS84 coordinate pair as supplied by client devices.
type GeoPoint struct {
	Lat float64 `json:"lat" bson:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `json:"lng" bson:"lng" validate:"gte=-180,lte=180"`
}

// IncidentLocation is the position captured when an SOS is triggered,
// together with whatever context the device could attach.
type IncidentLocation struct {
	Lat      float64   `json:"lat" bson:"lat" validate:"gte=-90,lte=90"`
	Lng      float64   `json:"lng" bson:"lng" validate:"gte=-180,lte=180"`
	Address  string    `json:"address,omitempty" bson:"address,omitempty"`
	Accuracy float64   `json:"accuracy,omitempty" bson:"accuracy,omitempty"`
	MapsLink string    `json:"maps_link,omitempty" bson:"maps_link,omitempty"`
	Captured time.Time `json:"captured,omitempty" bson:"captured,omitempty"`
}

func (l IncidentLocation) Point() GeoPoint {
	return GeoPoint{Lat: l.Lat, Lng: l.Lng}
}
