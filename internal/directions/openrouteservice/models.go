package openrouteservice

// orsRequest represents the ORS directions API request body.
type orsRequest struct {
	Coordinates      [][]float64 `json:"coordinates"`
	Instructions     bool        `json:"instructions"`
	Geometry         bool        `json:"geometry"`
	Units            string      `json:"units"`
	Radiuses         []int       `json:"radiuses,omitempty"`
	ContinueStraight bool        `json:"continue_straight"`
	Options          *orsOptions `json:"options,omitempty"`
}

// orsOptions carries routing options such as avoided features.
type orsOptions struct {
	AvoidFeatures []string `json:"avoid_features,omitempty"`
}

// orsResponse represents the ORS directions API response.
type orsResponse struct {
	Routes []orsRoute `json:"routes"`
	BBox   []float64  `json:"bbox,omitempty"`
}

// orsRoute represents a single route in the ORS response.
type orsRoute struct {
	Summary  routeSummary   `json:"summary"`
	Segments []routeSegment `json:"segments,omitempty"`
	Geometry string         `json:"geometry"`
	BBox     []float64      `json:"bbox,omitempty"`
}

// routeSummary contains summary information for a route.
type routeSummary struct {
	Distance float64 `json:"distance"`
	Duration float64 `json:"duration"`
}

// routeSegment represents a segment of the route.
type routeSegment struct {
	Distance float64     `json:"distance"`
	Duration float64     `json:"duration"`
	Steps    []routeStep `json:"steps,omitempty"`
}

// routeStep represents a single step (instruction) in a segment.
type routeStep struct {
	Distance    float64 `json:"distance"`
	Duration    float64 `json:"duration"`
	Type        int     `json:"type"`
	Instruction string  `json:"instruction"`
	Name        string  `json:"name"`
	WayPoints   []int   `json:"way_points,omitempty"`
}

// orsErrorResponse represents an error response from ORS.
type orsErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Info string `json:"info,omitempty"`
}

// ORS error codes consumed by the error mapping.
const (
	// orsErrorCodeNotRoutable means a coordinate could not be snapped to
	// the road network within the search radius.
	orsErrorCodeNotRoutable = 2010

	// orsErrorCodeNoRoute means no route could be found between the
	// snapped points.
	orsErrorCodeNoRoute = 2004
)
