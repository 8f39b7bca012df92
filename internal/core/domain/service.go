package domain

// Service represents a bookable service offered by a provider.
type Service struct {
	ID          string  `json:"id"`
	ProviderID  string  `json:"provider_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Duration    int     `json:"duration"`
	Category    string  `json:"category"`
	ImageURL    string  `json:"image_url,omitempty"`
	Available   bool    `json:"available"`
}
