package content

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/trinexa/trinexa-web/internal/web/models"
)

// Content was authored under several historical key conventions (snake_case,
// camelCase, and a few outright renames). Normalization probes the known
// aliases once, here, so nothing downstream ever repeats the a||b||c dance.

// CanonicalType maps legacy section type aliases to the canonical name.
func CanonicalType(sectionType string) string {
	switch sectionType {
	case models.SectionList:
		return models.SectionFeatures
	case models.SectionCallToAction:
		return models.SectionCTA
	default:
		return sectionType
	}
}

// Normalize parses a raw content blob for the given section type into its
// canonical struct. Unknown section types and malformed JSON are errors;
// unknown keys are ignored.
func Normalize(sectionType string, raw []byte) (any, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("malformed section content: %w", err)
	}

	switch CanonicalType(sectionType) {
	case models.SectionHero:
		return normalizeHero(m), nil
	case models.SectionStats:
		return normalizeStats(m), nil
	case models.SectionFeatures:
		return normalizeFeatures(m), nil
	case models.SectionTestimonials:
		return normalizeTestimonials(m), nil
	case models.SectionCTA:
		return normalizeCTA(m), nil
	case models.SectionMissionVision:
		return normalizeMissionVision(m), nil
	case models.SectionLeadership:
		return normalizeLeadership(m), nil
	case models.SectionPricing:
		return normalizePricing(m), nil
	default:
		return nil, fmt.Errorf("unknown section type: %s", sectionType)
	}
}

func normalizeHero(m map[string]any) Hero {
	h := Hero{
		Title:              str(m, "title"),
		Subtitle:           str(m, "subtitle", "subTitle"),
		Description:        str(m, "description"),
		BackgroundImageURL: str(m, "background_image_url", "background_image", "backgroundImageUrl", "backgroundImage"),
	}

	if items := objects(m, "buttons", "cta_buttons", "ctaButtons", "items"); len(items) > 0 {
		for _, b := range items {
			h.Buttons = append(h.Buttons, normalizeButton(b))
		}
		return h
	}

	// Older rows stored primary/secondary CTA objects instead of an array.
	if primary := object(m, "primary_cta", "primaryCta", "cta_primary"); primary != nil {
		b := normalizeButton(primary)
		if b.Style == "" {
			b.Style = "primary"
		}
		h.Buttons = append(h.Buttons, b)
	}
	if secondary := object(m, "secondary_cta", "secondaryCta", "cta_secondary"); secondary != nil {
		b := normalizeButton(secondary)
		if b.Style == "" {
			b.Style = "secondary"
		}
		h.Buttons = append(h.Buttons, b)
	}
	return h
}

func normalizeButton(m map[string]any) Button {
	return Button{
		Text:  str(m, "text", "label", "title"),
		URL:   str(m, "url", "link", "href"),
		Style: str(m, "style", "variant"),
		Icon:  str(m, "icon"),
	}
}

func normalizeStats(m map[string]any) Stats {
	s := Stats{Title: str(m, "title")}
	for _, item := range objects(m, "items", "stats") {
		s.Items = append(s.Items, StatItem{
			Label: str(item, "label", "name"),
			Value: str(item, "value"),
		})
	}
	return s
}

func normalizeFeatures(m map[string]any) Features {
	f := Features{
		Title:    str(m, "title"),
		Subtitle: str(m, "subtitle", "subTitle"),
	}
	for _, item := range objects(m, "items", "features", "list") {
		f.Items = append(f.Items, FeatureItem{
			Icon:        str(item, "icon"),
			Title:       str(item, "title", "name"),
			Description: str(item, "description", "text"),
		})
	}
	return f
}

func normalizeTestimonials(m map[string]any) Testimonials {
	t := Testimonials{Title: str(m, "title")}
	for _, item := range objects(m, "items", "testimonials") {
		t.Items = append(t.Items, Testimonial{
			Name:     str(item, "name"),
			Position: str(item, "position", "role"),
			Company:  str(item, "company"),
			Content:  str(item, "content", "text", "quote"),
			Rating:   num(item, "rating"),
			Image:    str(item, "image", "avatar", "image_url", "imageUrl"),
		})
	}
	return t
}

func normalizeCTA(m map[string]any) CTA {
	c := CTA{
		Title:       str(m, "title"),
		Description: str(m, "description", "subtitle"),
	}
	for _, b := range objects(m, "items", "buttons") {
		c.Buttons = append(c.Buttons, normalizeButton(b))
	}
	return c
}

func normalizeMissionVision(m map[string]any) MissionVision {
	mv := MissionVision{}
	for _, card := range objects(m, "cards", "items") {
		mv.Cards = append(mv.Cards, Card{
			Icon:    str(card, "icon"),
			Title:   str(card, "title"),
			Content: str(card, "content", "text", "description"),
		})
	}
	return mv
}

func normalizeLeadership(m map[string]any) Leadership {
	l := Leadership{Title: str(m, "title")}
	// "leaders" and "team" are the same field under different eras.
	for _, leader := range objects(m, "leaders", "team", "items") {
		l.Leaders = append(l.Leaders, Leader{
			Name:     str(leader, "name"),
			Position: str(leader, "position", "role", "title"),
			Bio:      str(leader, "bio", "description"),
			Image:    str(leader, "image", "photo", "image_url", "imageUrl"),
			LinkedIn: str(leader, "linkedin", "linkedin_url", "linkedinUrl"),
			Email:    str(leader, "email"),
		})
	}
	return l
}

func normalizePricing(m map[string]any) Pricing {
	p := Pricing{Title: str(m, "title")}
	for _, plan := range objects(m, "plans", "items") {
		p.Plans = append(p.Plans, Plan{
			Name:        str(plan, "name", "title"),
			Price:       str(plan, "price"),
			Period:      str(plan, "period", "billing_period", "billingPeriod"),
			Description: str(plan, "description"),
			Features:    strList(plan, "features"),
			CTA:         str(plan, "cta", "cta_text", "ctaText", "button_text"),
			Popular:     boolean(plan, "popular", "is_popular", "isPopular", "highlighted"),
		})
	}
	return p
}

// str probes keys in priority order and returns the first present,
// non-empty string value.
func str(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
			// Stray numbers show up where strings are expected (e.g. price).
			if f, ok := v.(float64); ok {
				return strconv.FormatFloat(f, 'f', -1, 64)
			}
		}
	}
	return ""
}

// num probes keys and returns the first numeric value, truncated to int.
func num(m map[string]any, keys ...string) int {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			switch n := v.(type) {
			case float64:
				return int(n)
			case string:
				if i, err := strconv.Atoi(n); err == nil {
					return i
				}
			}
		}
	}
	return 0
}

// boolean probes keys for the first bool value.
func boolean(m map[string]any, keys ...string) bool {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if b, ok := v.(bool); ok {
				return b
			}
		}
	}
	return false
}

// object probes keys for the first JSON object value.
func object(m map[string]any, keys ...string) map[string]any {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if o, ok := v.(map[string]any); ok {
				return o
			}
		}
	}
	return nil
}

// objects probes keys for the first non-empty array of JSON objects.
func objects(m map[string]any, keys ...string) []map[string]any {
	for _, k := range keys {
		v, ok := m[k]
		if !ok {
			continue
		}
		arr, ok := v.([]any)
		if !ok || len(arr) == 0 {
			continue
		}
		out := make([]map[string]any, 0, len(arr))
		for _, item := range arr {
			if o, ok := item.(map[string]any); ok {
				out = append(out, o)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

// strList probes keys for the first array of strings.
func strList(m map[string]any, keys ...string) []string {
	for _, k := range keys {
		v, ok := m[k]
		if !ok {
			continue
		}
		arr, ok := v.([]any)
		if !ok {
			continue
		}
		out := make([]string, 0, len(arr))
		for _, item := range arr {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}
