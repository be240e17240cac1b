// Package content resolves page content: it reads the persisted rows for a
// page, falls back to seeded section defaults, and normalizes the untyped
// JSON blobs into canonical typed section structs at ingestion. Renderers
// and editors downstream never deal with historical key aliases.
package content

// Button is a call-to-action link.
type Button struct {
	Text  string `json:"text"`
	URL   string `json:"url"`
	Style string `json:"style,omitempty"` // primary, secondary
	Icon  string `json:"icon,omitempty"`
}

// Hero is the page-top banner section.
type Hero struct {
	Title              string   `json:"title"`
	Subtitle           string   `json:"subtitle,omitempty"`
	Description        string   `json:"description,omitempty"`
	BackgroundImageURL string   `json:"background_image_url,omitempty"`
	Buttons            []Button `json:"buttons,omitempty"`
}

// StatItem is one label/value pair of a stats section.
type StatItem struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Stats is a row of headline numbers.
type Stats struct {
	Title string     `json:"title,omitempty"`
	Items []StatItem `json:"items"`
}

// FeatureItem is one entry of a features section.
type FeatureItem struct {
	Icon        string `json:"icon,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// Features is an icon/title/description grid.
type Features struct {
	Title    string        `json:"title,omitempty"`
	Subtitle string        `json:"subtitle,omitempty"`
	Items    []FeatureItem `json:"items"`
}

// Testimonial is one customer quote.
type Testimonial struct {
	Name     string `json:"name"`
	Position string `json:"position,omitempty"`
	Company  string `json:"company,omitempty"`
	Content  string `json:"content"`
	Rating   int    `json:"rating,omitempty"`
	Image    string `json:"image,omitempty"`
}

// Testimonials is a quote carousel.
type Testimonials struct {
	Title string        `json:"title,omitempty"`
	Items []Testimonial `json:"items"`
}

// CTA is a closing call-to-action band.
type CTA struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Buttons     []Button `json:"buttons,omitempty"`
}

// Card is one mission/vision card.
type Card struct {
	Icon    string `json:"icon,omitempty"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// MissionVision holds the company mission and vision cards.
type MissionVision struct {
	Cards []Card `json:"cards"`
}

// Leader is one member of the leadership section.
type Leader struct {
	Name     string `json:"name"`
	Position string `json:"position,omitempty"`
	Bio      string `json:"bio,omitempty"`
	Image    string `json:"image,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	Email    string `json:"email,omitempty"`
}

// Leadership is the team section.
type Leadership struct {
	Title   string   `json:"title,omitempty"`
	Leaders []Leader `json:"leaders"`
}

// Plan is one pricing plan.
type Plan struct {
	Name        string   `json:"name"`
	Price       string   `json:"price"`
	Period      string   `json:"period,omitempty"`
	Description string   `json:"description,omitempty"`
	Features    []string `json:"features,omitempty"`
	CTA         string   `json:"cta,omitempty"`
	Popular     bool     `json:"popular,omitempty"`
}

// Pricing is the plan comparison section.
type Pricing struct {
	Title string `json:"title,omitempty"`
	Plans []Plan `json:"plans"`
}
