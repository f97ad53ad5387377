package domain

// Place holds the administrative labels of a reverse-geocoded coordinate.
type Place struct {
	Label        string
	Neighborhood string
	City         string
	District     string
}

// Maneuver is one routing instruction from the directions collaborator.
type Maneuver struct {
	Type          string
	Modifier      string
	BearingBefore float64
	BearingAfter  float64
}

// RouteInfo is the road-network view of a trip.
type RouteInfo struct {
	DistanceM float64
	DurationS float64
	Maneuvers []Maneuver
}
