package graph

import (
	"context"
	"testing"
	"time"

	"github.com/yungbote/medlibrary-backend/internal/domain/content"
)

func TestBuildContentGraphPayload(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	records := []*content.EducationalContent{
		{
			ID:     "condition-hypoglycemia",
			Type:   content.TypeCondition,
			Name:   "Hypoglycemia",
			Status: content.StatusPublished,
			Levels: content.LevelMap{content.TierLay: {}, content.TierAdvanced: {}},
			CrossReferences: []content.CrossReference{
				{TargetID: "condition-diabetes-type-1", Relationship: content.RelRelated, Label: "Type 1 diabetes"},
				{TargetID: "condition-insulinoma", Relationship: content.RelRelated, Label: "Insulinoma"},
			},
			Tags: content.Tags{Topics: []string{"Diabetes", "diabetes"}, Systems: []string{"endocrine"}},
		},
		{
			ID:     "condition-diabetes-type-1",
			Type:   content.TypeCondition,
			Name:   "Type 1 Diabetes",
			Levels: content.LevelMap{content.TierLay: {}},
		},
		nil,
	}

	p := BuildContentGraphPayload(records, "gen-1", now)

	if len(p.Nodes) != 2 {
		t.Fatalf("nodes: got=%d want=2", len(p.Nodes))
	}
	tiers, _ := p.Nodes[0]["tiers"].([]int64)
	if len(tiers) != 2 || tiers[0] != 1 || tiers[1] != 3 {
		t.Fatalf("tiers: got=%v", p.Nodes[0]["tiers"])
	}
	if len(p.Links) != 1 || p.Links[0]["to_id"] != "condition-diabetes-type-1" {
		t.Fatalf("links: got=%v", p.Links)
	}
	if len(p.Dangling) != 1 || p.Dangling[0]["to_id"] != "condition-insulinoma" || p.Dangling[0]["position"] != int64(1) {
		t.Fatalf("dangling: got=%v", p.Dangling)
	}
	if len(p.Tags) != 2 {
		t.Fatalf("tags should be de-duplicated case-insensitively: got=%v", p.Tags)
	}
	if p.Nodes[0]["synced_at"] != "2026-05-01T12:00:00Z" || p.Nodes[0]["generation"] != "gen-1" {
		t.Fatalf("node stamps: got=%v", p.Nodes[0])
	}
}

func TestUpsertContentGraphWithoutClientIsNoop(t *testing.T) {
	t.Parallel()

	p := BuildContentGraphPayload([]*content.EducationalContent{{ID: "a", Levels: content.LevelMap{1: {}}}}, "g", time.Now())
	if err := UpsertContentGraph(context.Background(), nil, nil, "g", p); err != nil {
		t.Fatalf("nil client should be a no-op, got %v", err)
	}
}
