package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// GraphQuerier answers usage questions from the key graph.
type GraphQuerier struct {
	driver neo4j.DriverWithContext
}

// NewGraphQuerier creates a new graph querier.
func NewGraphQuerier(driver neo4j.DriverWithContext) *GraphQuerier {
	return &GraphQuerier{driver: driver}
}

// TemplatesUsingKey returns the templates that reference key, sorted by path.
func (gq *GraphQuerier) TemplatesUsingKey(ctx context.Context, key string) ([]string, error) {
	return gq.collect(ctx, `
		MATCH (t:Template)-[:USES]->(:TranslationKey {name: $key})
		RETURN t.path AS value
		ORDER BY value
	`, map[string]any{"key": key})
}

// KeysForTemplate returns the keys a template referenced at its last sync.
func (gq *GraphQuerier) KeysForTemplate(ctx context.Context, templatePath string) ([]string, error) {
	return gq.collect(ctx, `
		MATCH (:Template {path: $template})-[:USES]->(k:TranslationKey)
		RETURN k.name AS value
		ORDER BY value
	`, map[string]any{"template": templatePath})
}

func (gq *GraphQuerier) collect(ctx context.Context, query string, params map[string]any) ([]string, error) {
	session := gq.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("query graph: %w", err)
	}

	var out []string
	for result.Next(ctx) {
		v, _ := result.Record().Get("value")
		out = append(out, fmt.Sprintf("%v", v))
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("read graph results: %w", err)
	}

	return out, nil
}
