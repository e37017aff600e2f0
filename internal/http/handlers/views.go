package handlers

import (
	"github.com/yungbote/medlibrary-backend/internal/domain/content"
	"github.com/yungbote/medlibrary-backend/internal/library/store"
)

// contentSummary is the list form of a record.
type contentSummary struct {
	ID     string              `json:"id"`
	Type   content.ContentType `json:"type"`
	Name   string              `json:"name"`
	NameEs string              `json:"nameEs,omitempty"`
	Status content.Status      `json:"status"`
	Tiers  []content.Tier      `json:"tiers"`
	Tags   content.Tags        `json:"tags"`
}

func summarize(recs []*content.EducationalContent) []contentSummary {
	out := make([]contentSummary, 0, len(recs))
	for _, r := range recs {
		out = append(out, summaryOf(r))
	}
	return out
}

func summaryOf(r *content.EducationalContent) contentSummary {
	return contentSummary{
		ID:     r.ID,
		Type:   r.Type,
		Name:   r.Name,
		NameEs: r.NameEs,
		Status: r.Status,
		Tiers:  r.Levels.Tiers(),
		Tags:   r.Tags,
	}
}

type relatedView struct {
	store.Resolution
	Target *contentSummary `json:"target,omitempty"`
}

func relatedViews(res []store.Resolution) []relatedView {
	out := make([]relatedView, 0, len(res))
	for _, r := range res {
		v := relatedView{Resolution: r}
		if r.Record != nil {
			s := summaryOf(r.Record)
			v.Target = &s
		}
		out = append(out, v)
	}
	return out
}
