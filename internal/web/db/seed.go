package db

import (
	"fmt"

	"github.com/google/uuid"
)

// SeedSection is one page section seeded at install time.
type SeedSection struct {
	PageID         string
	SectionID      string
	SectionName    string
	SectionType    string
	DefaultContent string
	SortOrder      int
}

// DefaultSections is the seed catalogue of editable page sections with their
// fallback content. The renderer falls back to DefaultContent whenever no
// page_content row exists for the section.
var DefaultSections = []SeedSection{
	// Home
	{"home", "hero", "Hero Banner", "hero", `{
		"title": "AI That Works For Your Business",
		"subtitle": "NexusAI turns your data into decisions with production-ready machine intelligence.",
		"background_image_url": "",
		"buttons": [
			{"text": "Book a Demo", "url": "/book-demo", "style": "primary"},
			{"text": "Explore Products", "url": "/products", "style": "secondary"}
		]
	}`, 0},
	{"home", "stats", "Key Numbers", "stats", `{
		"title": "Trusted at Scale",
		"items": [
			{"label": "Models in Production", "value": "1,200+"},
			{"label": "Predictions Daily", "value": "40M"},
			{"label": "Enterprise Customers", "value": "300+"},
			{"label": "Uptime", "value": "99.99%"}
		]
	}`, 1},
	{"home", "features", "Platform Features", "features", `{
		"title": "Why NexusAI",
		"subtitle": "Everything you need to ship AI products",
		"items": [
			{"icon": "cpu", "title": "Managed Inference", "description": "Deploy models without touching infrastructure."},
			{"icon": "shield", "title": "Enterprise Security", "description": "SOC2-ready controls out of the box."},
			{"icon": "chart", "title": "Live Analytics", "description": "Monitor drift and performance in real time."}
		]
	}`, 2},
	{"home", "testimonials", "Customer Voices", "testimonials", `{
		"items": []
	}`, 3},
	{"home", "cta", "Bottom Call To Action", "cta", `{
		"title": "Ready to see it in action?",
		"description": "Book a personalized demo with our solutions team.",
		"buttons": [{"text": "Book a Demo", "url": "/book-demo", "style": "primary"}]
	}`, 4},

	// About
	{"about", "hero", "Hero Banner", "hero", `{
		"title": "Building Practical AI",
		"subtitle": "Trinexa is a team of engineers and researchers making machine intelligence useful."
	}`, 0},
	{"about", "mission-vision", "Mission & Vision", "mission-vision", `{
		"cards": [
			{"icon": "target", "title": "Mission", "content": "Make production AI accessible to every business."},
			{"icon": "eye", "title": "Vision", "content": "A world where intelligent software is the default."}
		]
	}`, 1},
	{"about", "leadership", "Leadership Team", "leadership", `{
		"leaders": []
	}`, 2},
	{"about", "stats", "Company Numbers", "stats", `{
		"title": "Trinexa Today",
		"items": [
			{"label": "Employees", "value": "180"},
			{"label": "Offices", "value": "4"},
			{"label": "Founded", "value": "2019"}
		]
	}`, 3},

	// Careers
	{"careers", "hero", "Hero Banner", "hero", `{
		"title": "Work on AI That Ships",
		"subtitle": "Join a team that puts models into production, not just papers."
	}`, 0},
	{"careers", "benefits", "Why Join Us", "features", `{
		"title": "Benefits",
		"items": [
			{"icon": "globe", "title": "Remote-first", "description": "Work from anywhere in ±4 timezones."},
			{"icon": "book", "title": "Learning Budget", "description": "Annual budget for courses and conferences."},
			{"icon": "heart", "title": "Full Coverage", "description": "Health, dental and vision for you and family."}
		]
	}`, 1},
	{"careers", "cta", "Open Application", "cta", `{
		"title": "Don't see your role?",
		"description": "Send us an open application and we'll be in touch.",
		"buttons": [{"text": "Apply Anyway", "url": "/careers#apply", "style": "secondary"}]
	}`, 2},

	// Products
	{"products", "hero", "Hero Banner", "hero", `{
		"title": "The NexusAI Platform",
		"subtitle": "From data pipelines to deployed models, one platform."
	}`, 0},
	{"products", "pricing", "Pricing Plans", "pricing", `{
		"plans": []
	}`, 1},
	{"products", "cta", "Bottom Call To Action", "cta", `{
		"title": "Questions about pricing?",
		"description": "Our team will help you pick the right plan.",
		"buttons": [{"text": "Talk to Sales", "url": "/book-demo", "style": "primary"}]
	}`, 2},
}

// Seed inserts the default page sections, skipping any that already exist.
// Returns the number of sections inserted.
func (db *DB) Seed() (int, error) {
	inserted := 0
	for _, s := range DefaultSections {
		res, err := db.Exec(`
			INSERT INTO page_sections (id, page_id, section_id, section_name, section_type, default_content, sort_order, is_active)
			VALUES (?, ?, ?, ?, ?, ?, ?, 1)
			ON CONFLICT(page_id, section_id) DO NOTHING`,
			uuid.New().String(), s.PageID, s.SectionID, s.SectionName, s.SectionType, s.DefaultContent, s.SortOrder,
		)
		if err != nil {
			return inserted, fmt.Errorf("failed to seed section %s/%s: %w", s.PageID, s.SectionID, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}
	return inserted, nil
}
