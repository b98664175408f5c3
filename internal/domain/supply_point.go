package domain

// A water-supply point a user can be routed to.
// Supply points are sourced externally (remote dataset, local mirror, OSM)
// and are not modified after they are fetched.
type SupplyPoint struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Address  string            `json:"address"`
	Location GeoPoint          `json:"location"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

const (
	DefaultSupplyPointName = "Water Supply Point"
	DefaultAddress         = "Unknown address"
)
