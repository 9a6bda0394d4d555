package graph

import (
	"context"
	"fmt"

	"blade-trans-sync/internal/worker"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog/log"
)

// keyBatchSize bounds the number of keys sent in one UNWIND statement.
const keyBatchSize = 500

// GraphBuilder records which templates use which translation keys:
//
//	(:Template {path})-[:USES]->(:TranslationKey {name})
//	(:Template {path})-[:PAIRED_WITH]->(:Document {path})
type GraphBuilder struct {
	driver neo4j.DriverWithContext
}

// NewGraphBuilder creates a new graph builder.
func NewGraphBuilder(driver neo4j.DriverWithContext) *GraphBuilder {
	return &GraphBuilder{driver: driver}
}

// EnsureSchema creates uniqueness constraints for the usage graph.
func (gb *GraphBuilder) EnsureSchema(ctx context.Context) error {
	session := gb.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	constraints := []string{
		"CREATE CONSTRAINT IF NOT EXISTS FOR (t:Template) REQUIRE t.path IS UNIQUE",
		"CREATE CONSTRAINT IF NOT EXISTS FOR (k:TranslationKey) REQUIRE k.name IS UNIQUE",
		"CREATE CONSTRAINT IF NOT EXISTS FOR (d:Document) REQUIRE d.path IS UNIQUE",
	}

	for _, c := range constraints {
		if _, err := session.Run(ctx, c, nil); err != nil {
			return fmt.Errorf("create constraint: %w", err)
		}
	}

	log.Info().Msg("Graph schema ensured")
	return nil
}

// RecordUsage replaces the key edges of a template with keys.
func (gb *GraphBuilder) RecordUsage(ctx context.Context, templatePath, documentPath string, keys []string) error {
	session := gb.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if _, err := tx.Run(ctx, `
			MERGE (t:Template {path: $template})
			MERGE (d:Document {path: $document})
			MERGE (t)-[:PAIRED_WITH]->(d)
			WITH t
			OPTIONAL MATCH (t)-[u:USES]->(:TranslationKey)
			DELETE u
		`, map[string]any{
			"template": templatePath,
			"document": documentPath,
		}); err != nil {
			return nil, fmt.Errorf("reset template %s: %w", templatePath, err)
		}

		for _, batch := range worker.Batch(keys, keyBatchSize) {
			if _, err := tx.Run(ctx, `
				MATCH (t:Template {path: $template})
				UNWIND $keys AS name
				MERGE (k:TranslationKey {name: name})
				MERGE (t)-[:USES]->(k)
			`, usageParams(templatePath, batch)); err != nil {
				return nil, fmt.Errorf("link keys for %s: %w", templatePath, err)
			}
		}

		return nil, nil
	})
	if err != nil {
		return err
	}

	log.Debug().Str("template", templatePath).Int("keys", len(keys)).Msg("Recorded key usage")
	return nil
}

// usageParams converts a key batch to the parameter map of the UNWIND query.
func usageParams(templatePath string, keys []string) map[string]any {
	names := make([]any, len(keys))
	for i, k := range keys {
		names[i] = k
	}
	return map[string]any{
		"template": templatePath,
		"keys":     names,
	}
}
