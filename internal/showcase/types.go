package showcase

import (
	"time"

	"github.com/google/uuid"
)

// Metric is one impact metric. Entries written as "label: value" keep their
// label; bare entries are labelled "Impact".
type Metric struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Card is the compact project summary shown in the project grid.
type Card struct {
	ID                 uuid.UUID `json:"id"`
	Slug               string    `json:"slug"`
	Title              string    `json:"title"`
	Excerpt            string    `json:"excerpt"`
	Technologies       []string  `json:"technologies"`
	Category           string    `json:"category,omitempty"`
	Status             string    `json:"status"`
	ImageURL           string    `json:"image_url"`
	FallbackImageURL   string    `json:"fallback_image_url"`
	AltText            string    `json:"alt_text"`
	GithubURL          string    `json:"github_url,omitempty"`
	LiveDemoURL        string    `json:"live_demo_url,omitempty"`
	Highlights         []Metric  `json:"highlights"`
	HasFullDescription bool      `json:"has_full_description"`
}

// Detail is the full project view opened from a card.
type Detail struct {
	Card
	DescriptionHTML     string    `json:"description_html"`
	AdditionalImageURLs []string  `json:"additional_image_urls"`
	DemoVideoURL        string    `json:"demo_video_url,omitempty"`
	ImpactMetrics       []Metric  `json:"impact_metrics"`
	CreatedDate         time.Time `json:"created_date"`
	UpdatedDate         time.Time `json:"updated_date,omitempty"`
}
