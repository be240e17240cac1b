package content

import (
	"errors"
	"testing"

	"github.com/trinexa/trinexa-web/internal/web/models"
)

type fakeSections struct {
	sections []models.PageSection
	err      error
}

func (f *fakeSections) ListActive(pageID string) ([]models.PageSection, error) {
	return f.sections, f.err
}

type fakeContent struct {
	rows []models.PageContent
	err  error
}

func (f *fakeContent) ByPage(pageID string) ([]models.PageContent, error) {
	return f.rows, f.err
}

func heroSection(pageID string) models.PageSection {
	return models.PageSection{
		ID:             "sec-1",
		PageID:         pageID,
		SectionID:      "hero",
		SectionName:    "Hero",
		SectionType:    models.SectionHero,
		DefaultContent: `{"title":"Default Title","subtitle":"Default Subtitle"}`,
		SortOrder:      1,
		IsActive:       true,
	}
}

func TestResolver_DefaultWhenNoRow(t *testing.T) {
	r := NewResolver(
		&fakeSections{sections: []models.PageSection{heroSection("about")}},
		&fakeContent{},
		nil,
	)

	sections, err := r.Resolve("about")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(sections) != 1 {
		t.Fatalf("got %d sections, want 1", len(sections))
	}
	if !sections[0].FromDefault {
		t.Error("expected section resolved from default")
	}
	hero, ok := sections[0].Content.(Hero)
	if !ok {
		t.Fatalf("content is %T, want Hero", sections[0].Content)
	}
	if hero.Title != "Default Title" {
		t.Errorf("title = %q, want %q", hero.Title, "Default Title")
	}
}

func TestResolver_PersistedRowWins(t *testing.T) {
	r := NewResolver(
		&fakeSections{sections: []models.PageSection{heroSection("about")}},
		&fakeContent{rows: []models.PageContent{{
			PageID:    "about",
			SectionID: "hero",
			Content:   `{"title":"Edited Title"}`,
		}}},
		nil,
	)

	sections, err := r.Resolve("about")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if sections[0].FromDefault {
		t.Error("expected section resolved from persisted row")
	}
	if got := sections[0].Content.(Hero).Title; got != "Edited Title" {
		t.Errorf("title = %q, want %q", got, "Edited Title")
	}
}

func TestResolver_UnparseableRowDegradesToDefault(t *testing.T) {
	r := NewResolver(
		&fakeSections{sections: []models.PageSection{heroSection("about")}},
		&fakeContent{rows: []models.PageContent{{
			PageID:    "about",
			SectionID: "hero",
			Content:   `{broken`,
		}}},
		nil,
	)

	sections, err := r.Resolve("about")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !sections[0].FromDefault {
		t.Error("expected fallback to default after parse failure")
	}
	if got := sections[0].Content.(Hero).Title; got != "Default Title" {
		t.Errorf("title = %q, want default", got)
	}
}

func TestResolver_ContentQueryFailureServesDefaults(t *testing.T) {
	r := NewResolver(
		&fakeSections{sections: []models.PageSection{heroSection("home")}},
		&fakeContent{err: errors.New("db locked")},
		nil,
	)

	sections, err := r.Resolve("home")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(sections) != 1 || !sections[0].FromDefault {
		t.Error("expected page served from defaults when content query fails")
	}
}

func TestResolver_UnknownPage(t *testing.T) {
	r := NewResolver(&fakeSections{}, &fakeContent{}, nil)
	if _, err := r.Resolve("nosuch"); err == nil {
		t.Error("expected error for unknown page")
	}
}

func TestNormalize_HeroAliases(t *testing.T) {
	raw := `{
		"title": "Build Faster",
		"backgroundImage": "/img/hero.jpg",
		"primary_cta": {"label": "Get Started", "link": "/signup"},
		"secondary_cta": {"text": "Learn More", "url": "/about"}
	}`
	v, err := Normalize(models.SectionHero, []byte(raw))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	hero := v.(Hero)
	if hero.BackgroundImageURL != "/img/hero.jpg" {
		t.Errorf("background = %q", hero.BackgroundImageURL)
	}
	if len(hero.Buttons) != 2 {
		t.Fatalf("got %d buttons, want 2", len(hero.Buttons))
	}
	if hero.Buttons[0].Text != "Get Started" || hero.Buttons[0].URL != "/signup" {
		t.Errorf("primary button = %+v", hero.Buttons[0])
	}
	if hero.Buttons[0].Style != "primary" || hero.Buttons[1].Style != "secondary" {
		t.Errorf("button styles = %q, %q", hero.Buttons[0].Style, hero.Buttons[1].Style)
	}
}

func TestNormalize_LeadershipTeamAlias(t *testing.T) {
	raw := `{"team": [{"name": "Ada", "role": "CTO", "photo": "/img/ada.jpg"}]}`
	v, err := Normalize(models.SectionLeadership, []byte(raw))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	l := v.(Leadership)
	if len(l.Leaders) != 1 {
		t.Fatalf("got %d leaders, want 1", len(l.Leaders))
	}
	if l.Leaders[0].Position != "CTO" || l.Leaders[0].Image != "/img/ada.jpg" {
		t.Errorf("leader = %+v", l.Leaders[0])
	}
}

func TestNormalize_LegacyTypeAliases(t *testing.T) {
	v, err := Normalize(models.SectionList, []byte(`{"items":[{"title":"Fast"}]}`))
	if err != nil {
		t.Fatalf("Normalize list: %v", err)
	}
	if _, ok := v.(Features); !ok {
		t.Errorf("list normalized to %T, want Features", v)
	}

	v, err = Normalize(models.SectionCallToAction, []byte(`{"title":"Go"}`))
	if err != nil {
		t.Fatalf("Normalize call_to_action: %v", err)
	}
	if _, ok := v.(CTA); !ok {
		t.Errorf("call_to_action normalized to %T, want CTA", v)
	}
}

func TestNormalize_PricingNumericPrice(t *testing.T) {
	raw := `{"plans": [{"name": "Starter", "price": 29, "isPopular": true, "features": ["a", "b"]}]}`
	v, err := Normalize(models.SectionPricing, []byte(raw))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	p := v.(Pricing)
	if p.Plans[0].Price != "29" {
		t.Errorf("price = %q, want \"29\"", p.Plans[0].Price)
	}
	if !p.Plans[0].Popular {
		t.Error("expected popular plan")
	}
	if len(p.Plans[0].Features) != 2 {
		t.Errorf("features = %v", p.Plans[0].Features)
	}
}

func TestNormalize_UnknownType(t *testing.T) {
	if _, err := Normalize("banner", []byte(`{}`)); err == nil {
		t.Error("expected error for unknown section type")
	}
}

func TestCache_HitAndInvalidate(t *testing.T) {
	secs := &fakeSections{sections: []models.PageSection{heroSection("home")}}
	rows := &fakeContent{}
	cache := NewCache(NewResolver(secs, rows, nil))

	first, err := cache.Get("home")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if first[0].Content.(Hero).Title != "Default Title" {
		t.Fatalf("unexpected title %q", first[0].Content.(Hero).Title)
	}

	// Mutate the backing rows; a cache hit must not see the change.
	rows.rows = []models.PageContent{{PageID: "home", SectionID: "hero", Content: `{"title":"New"}`}}
	cached, _ := cache.Get("home")
	if cached[0].Content.(Hero).Title != "Default Title" {
		t.Error("expected cached result before invalidation")
	}

	cache.Invalidate("home")
	fresh, _ := cache.Get("home")
	if fresh[0].Content.(Hero).Title != "New" {
		t.Error("expected fresh resolve after invalidation")
	}
}

func TestCache_StaleResolveDiscarded(t *testing.T) {
	secs := &fakeSections{sections: []models.PageSection{heroSection("home")}}
	rows := &fakeContent{rows: []models.PageContent{{PageID: "home", SectionID: "hero", Content: `{"title":"Old"}`}}}
	resolver := NewResolver(secs, rows, nil)
	cache := NewCache(resolver)

	// A resolve starts, then the page is invalidated before it completes.
	gen := cache.begin("home")
	stale, err := resolver.Resolve("home")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	cache.Invalidate("home")
	cache.complete("home", gen, stale)

	rows.rows = []models.PageContent{{PageID: "home", SectionID: "hero", Content: `{"title":"New"}`}}
	got, err := cache.Get("home")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got[0].Content.(Hero).Title != "New" {
		t.Errorf("stale resolve overwrote cache: title = %q", got[0].Content.(Hero).Title)
	}
}
