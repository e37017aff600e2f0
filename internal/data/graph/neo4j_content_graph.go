package graph

import (
	"context"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/yungbote/medlibrary-backend/internal/domain/content"
	"github.com/yungbote/medlibrary-backend/internal/platform/logger"
	"github.com/yungbote/medlibrary-backend/internal/platform/neo4jdb"
)

// ContentGraphPayload is the parameter set for one projection run.
type ContentGraphPayload struct {
	Nodes    []map[string]any
	Links    []map[string]any
	Dangling []map[string]any
	Tags     []map[string]any
}

func (p ContentGraphPayload) Empty() bool {
	return len(p.Nodes) == 0
}

// BuildContentGraphPayload turns records into UNWIND parameters. Links whose
// target is not among records go to Dangling and end on a MissingContent node.
func BuildContentGraphPayload(records []*content.EducationalContent, generation string, now time.Time) ContentGraphPayload {
	syncedAt := now.UTC().Format(time.RFC3339Nano)
	known := make(map[string]bool, len(records))
	for _, r := range records {
		if r != nil && strings.TrimSpace(r.ID) != "" {
			known[r.ID] = true
		}
	}

	var p ContentGraphPayload
	for _, r := range records {
		if r == nil || !known[r.ID] {
			continue
		}
		tiers := make([]int64, 0, len(r.Levels))
		for _, t := range r.Levels.Tiers() {
			tiers = append(tiers, int64(t))
		}
		p.Nodes = append(p.Nodes, map[string]any{
			"id":           r.ID,
			"type":         string(r.Type),
			"name":         r.Name,
			"name_es":      r.NameEs,
			"status":       string(r.Status),
			"version":      int64(r.Version),
			"level_scheme": string(r.LevelScheme),
			"tiers":        tiers,
			"generation":   generation,
			"synced_at":    syncedAt,
		})

		for i, ref := range r.CrossReferences {
			to := strings.TrimSpace(ref.TargetID)
			if to == "" {
				continue
			}
			rel := map[string]any{
				"from_id":      r.ID,
				"to_id":        to,
				"position":     int64(i),
				"relationship": string(ref.Relationship),
				"label":        ref.Label,
				"target_type":  string(ref.TargetType),
				"generation":   generation,
				"synced_at":    syncedAt,
			}
			if known[to] {
				p.Links = append(p.Links, rel)
			} else {
				p.Dangling = append(p.Dangling, rel)
			}
		}

		for _, tag := range tagPairs(r.Tags) {
			p.Tags = append(p.Tags, map[string]any{
				"content_id": r.ID,
				"key":        tag[0] + ":" + tag[1],
				"category":   tag[0],
				"value":      tag[1],
			})
		}
	}
	return p
}

func tagPairs(t content.Tags) [][2]string {
	var out [][2]string
	seen := map[[2]string]bool{}
	add := func(cat string, vals ...string) {
		for _, v := range vals {
			v = strings.ToLower(strings.TrimSpace(v))
			if v == "" {
				continue
			}
			k := [2]string{cat, v}
			if seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, k)
		}
	}
	add("system", t.Systems...)
	add("topic", t.Topics...)
	add("keyword", t.Keywords...)
	return out
}

// UpsertContentGraph projects the payload into Neo4j. Nodes from earlier
// generations are removed once the new generation is written.
func UpsertContentGraph(ctx context.Context, client *neo4jdb.Client, log *logger.Logger, generation string, p ContentGraphPayload) error {
	if client == nil || client.Driver == nil {
		return nil
	}
	if p.Empty() {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	session := client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: client.Database,
	})
	defer session.Close(ctx)

	// Best-effort schema init.
	{
		stmts := []string{
			`CREATE CONSTRAINT content_id_unique IF NOT EXISTS FOR (c:Content) REQUIRE c.id IS UNIQUE`,
			`CREATE CONSTRAINT content_tag_key_unique IF NOT EXISTS FOR (t:ContentTag) REQUIRE t.key IS UNIQUE`,
		}
		for _, q := range stmts {
			if res, err := session.Run(ctx, q, nil); err != nil {
				if log != nil {
					log.Warn("neo4j schema init failed (continuing)", "error", err)
				}
			} else {
				_, _ = res.Consume(ctx)
			}
		}
	}

	run := func(tx neo4j.ManagedTransaction, query string, params map[string]any) error {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return err
		}
		_, err = res.Consume(ctx)
		return err
	}

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if err := run(tx, `
UNWIND $nodes AS n
MERGE (c:Content {id: n.id})
SET c += n
`, map[string]any{"nodes": p.Nodes}); err != nil {
			return nil, err
		}

		if err := run(tx, `
MATCH (:Content)-[r:REFERENCES]->()
WHERE r.generation <> $generation
DELETE r
`, map[string]any{"generation": generation}); err != nil {
			return nil, err
		}

		if len(p.Links) > 0 {
			if err := run(tx, `
UNWIND $rels AS r
MATCH (a:Content {id: r.from_id})
MATCH (b:Content {id: r.to_id})
MERGE (a)-[e:REFERENCES {position: r.position}]->(b)
SET e.relationship = r.relationship,
    e.label = r.label,
    e.target_type = r.target_type,
    e.generation = r.generation,
    e.synced_at = r.synced_at
`, map[string]any{"rels": p.Links}); err != nil {
				return nil, err
			}
		}

		if len(p.Dangling) > 0 {
			if err := run(tx, `
UNWIND $rels AS r
MATCH (a:Content {id: r.from_id})
MERGE (m:MissingContent {id: r.to_id})
MERGE (a)-[e:REFERENCES {position: r.position}]->(m)
SET e.relationship = r.relationship,
    e.label = r.label,
    e.target_type = r.target_type,
    e.generation = r.generation,
    e.synced_at = r.synced_at
`, map[string]any{"rels": p.Dangling}); err != nil {
				return nil, err
			}
		}

		if len(p.Tags) > 0 {
			if err := run(tx, `
UNWIND $tags AS t
MATCH (c:Content {id: t.content_id})
MERGE (g:ContentTag {key: t.key})
SET g.category = t.category, g.value = t.value
MERGE (c)-[:TAGGED]->(g)
`, map[string]any{"tags": p.Tags}); err != nil {
				return nil, err
			}
		}

		return nil, run(tx, `
MATCH (c:Content)
WHERE c.generation <> $generation
DETACH DELETE c
`, map[string]any{"generation": generation})
	})
	if err != nil {
		return err
	}

	if log != nil {
		log.Info("content graph projected",
			"generation", generation,
			"nodes", len(p.Nodes),
			"links", len(p.Links),
			"dangling", len(p.Dangling),
		)
	}
	return nil
}
