package models

import "time"

// Page identifiers for the marketing site
const (
	PageHome     = "home"
	PageAbout    = "about"
	PageCareers  = "careers"
	PageProducts = "products"
)

// Section types understood by the renderer registry
const (
	SectionHero          = "hero"
	SectionStats         = "stats"
	SectionFeatures      = "features"
	SectionList          = "list" // legacy alias of features
	SectionTestimonials  = "testimonials"
	SectionCTA           = "cta"
	SectionCallToAction  = "call_to_action" // legacy alias of cta
	SectionMissionVision = "mission-vision"
	SectionLeadership    = "leadership"
	SectionPricing       = "pricing"
)

// KnownPages lists the editable page identifiers.
var KnownPages = []string{PageHome, PageAbout, PageCareers, PageProducts}

// IsKnownPage reports whether pageID is an editable page.
func IsKnownPage(pageID string) bool {
	for _, p := range KnownPages {
		if p == pageID {
			return true
		}
	}
	return false
}

// PageSection describes an editable content block of a page: which editor to
// show and the fallback content when no persisted row exists. Seeded at
// install time; read-only in normal operation.
type PageSection struct {
	ID             string    `json:"id"`
	PageID         string    `json:"page_id"`
	SectionID      string    `json:"section_id"`
	SectionName    string    `json:"section_name"`
	SectionType    string    `json:"section_type"`
	DefaultContent string    `json:"default_content"` // JSON
	SortOrder      int       `json:"sort_order"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}

// PageContent is a persisted content row, keyed by (page_id, section_id).
// Content is an untyped JSON blob whose schema depends on the section type.
type PageContent struct {
	ID        string    `json:"id"`
	PageID    string    `json:"page_id"`
	SectionID string    `json:"section_id"`
	Content   string    `json:"content"`            // JSON
	Metadata  string    `json:"metadata,omitempty"` // JSON
	UpdatedBy string    `json:"updated_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
