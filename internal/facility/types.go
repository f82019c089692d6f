package facility

// Facility is one nearby medical facility returned by the lookup service.
type Facility struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Latitude      float64  `json:"latitude"`
	Longitude     float64  `json:"longitude"`
	Address       string   `json:"address"`
	Phone         string   `json:"phone,omitempty"`
	DistanceKM    float64  `json:"distance_km"`
	Rating        float64  `json:"rating,omitempty"`
	RatedServices []string `json:"rated_services,omitempty"`
	Open24Hours   bool     `json:"open_24_hours"`
}
