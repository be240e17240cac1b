package content

import (
	"fmt"

	"github.com/trinexa/trinexa-web/internal/logsink"
	"github.com/trinexa/trinexa-web/internal/web/models"
)

// SectionSource lists the seeded section catalogue of a page.
type SectionSource interface {
	ListActive(pageID string) ([]models.PageSection, error)
}

// ContentSource lists the persisted content rows of a page.
type ContentSource interface {
	ByPage(pageID string) ([]models.PageContent, error)
}

// ResolvedSection is one section of a page, ready to render.
type ResolvedSection struct {
	SectionID   string
	SectionName string
	SectionType string // canonical
	SortOrder   int
	Content     any
	FromDefault bool
}

// Resolver materializes the sections of a page from the persisted rows,
// falling back to the seeded defaults for sections without a row and for
// rows whose content cannot be parsed.
type Resolver struct {
	sections SectionSource
	content  ContentSource
	log      *logsink.Sink
}

// NewResolver wires a Resolver. The sink may be nil in tests.
func NewResolver(sections SectionSource, content ContentSource, log *logsink.Sink) *Resolver {
	return &Resolver{sections: sections, content: content, log: log}
}

// Resolve returns the renderable sections of a page in sort order. A missing
// or unparseable persisted row degrades that one section to its default; a
// failing content query degrades the whole page to defaults. Only a failing
// section query is an error, since without the catalogue there is nothing
// to fall back to.
func (r *Resolver) Resolve(pageID string) ([]ResolvedSection, error) {
	if !models.IsKnownPage(pageID) {
		return nil, fmt.Errorf("unknown page: %s", pageID)
	}

	sections, err := r.sections.ListActive(pageID)
	if err != nil {
		return nil, fmt.Errorf("list sections for %s: %w", pageID, err)
	}

	persisted := map[string]models.PageContent{}
	rows, err := r.content.ByPage(pageID)
	if err != nil {
		r.warn("content query failed, serving defaults",
			map[string]any{"page_id": pageID, "error": err.Error()})
	} else {
		for _, row := range rows {
			persisted[row.SectionID] = row
		}
	}

	out := make([]ResolvedSection, 0, len(sections))
	for _, sec := range sections {
		resolved := ResolvedSection{
			SectionID:   sec.SectionID,
			SectionName: sec.SectionName,
			SectionType: CanonicalType(sec.SectionType),
			SortOrder:   sec.SortOrder,
		}

		raw := sec.DefaultContent
		resolved.FromDefault = true
		if row, ok := persisted[sec.SectionID]; ok && row.Content != "" {
			raw = row.Content
			resolved.FromDefault = false
		}

		parsed, err := Normalize(sec.SectionType, []byte(raw))
		if err != nil && !resolved.FromDefault {
			r.warn("stored content unparseable, serving default",
				map[string]any{"page_id": pageID, "section_id": sec.SectionID, "error": err.Error()})
			resolved.FromDefault = true
			parsed, err = Normalize(sec.SectionType, []byte(sec.DefaultContent))
		}
		if err != nil {
			// Default itself is broken, or the type is unknown. Skip the
			// section rather than fail the page.
			r.warn("section skipped",
				map[string]any{"page_id": pageID, "section_id": sec.SectionID, "error": err.Error()})
			continue
		}

		resolved.Content = parsed
		out = append(out, resolved)
	}
	return out, nil
}

func (r *Resolver) warn(msg string, data map[string]any) {
	if r.log != nil {
		r.log.Warn(msg, data, "content")
	}
}
