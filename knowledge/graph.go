// Package knowledge maintains a Neo4j graph of ingested documents and
// answers enrichment queries over it.
package knowledge

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

type Document struct {
	ID             string
	Filename       string
	ChunkingMethod string
	EmbeddingModel string
	VectorIDs      []string
}

// Insight summarizes what the graph knows about one document: its chunk
// count and the other files embedded with the same model (the set a
// similarity search actually ranges over).
type Insight struct {
	ChunkCount      int
	CompatibleFiles []string
}

// SyncDocument mirrors an ingested document into the graph. Re-ingesting
// the same document replaces its chunk nodes.
func SyncDocument(ctx context.Context, driver neo4j.DriverWithContext, doc Document) error {
	if driver == nil {
		return fmt.Errorf("neo4j driver is nil")
	}

	session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if _, err := tx.Run(ctx, `
			MERGE (d:Document {id: $id})
			SET d.filename = $filename,
			    d.chunkingMethod = $method,
			    d.updatedAt = datetime()
			WITH d
			MERGE (m:Model {name: $model})
			MERGE (d)-[:EMBEDDED_WITH]->(m)
		`, map[string]any{
			"id":       doc.ID,
			"filename": doc.Filename,
			"method":   doc.ChunkingMethod,
			"model":    doc.EmbeddingModel,
		}); err != nil {
			return nil, err
		}

		if _, err := tx.Run(ctx, `
			MATCH (d:Document {id: $id})-[:HAS_CHUNK]->(c:Chunk)
			DETACH DELETE c
		`, map[string]any{"id": doc.ID}); err != nil {
			return nil, err
		}

		for ordinal, vectorID := range doc.VectorIDs {
			if _, err := tx.Run(ctx, `
				MATCH (d:Document {id: $id})
				CREATE (c:Chunk {vectorId: $vectorId, ordinal: $ordinal})
				CREATE (d)-[:HAS_CHUNK]->(c)
			`, map[string]any{
				"id":       doc.ID,
				"vectorId": vectorID,
				"ordinal":  ordinal,
			}); err != nil {
				return nil, err
			}
		}

		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("sync document graph: %w", err)
	}
	return nil
}

// DocumentInsights returns per-filename insights for the given files.
// Filenames absent from the graph are simply missing from the result.
func DocumentInsights(ctx context.Context, driver neo4j.DriverWithContext, filenames []string) (map[string]Insight, error) {
	if driver == nil {
		return nil, fmt.Errorf("neo4j driver is nil")
	}
	if len(filenames) == 0 {
		return map[string]Insight{}, nil
	}

	session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (d:Document)
		WHERE d.filename IN $filenames
		OPTIONAL MATCH (d)-[:HAS_CHUNK]->(c:Chunk)
		OPTIONAL MATCH (d)-[:EMBEDDED_WITH]->(m:Model)<-[:EMBEDDED_WITH]-(other:Document)
		WHERE other.id <> d.id
		RETURN d.filename AS filename,
		       count(DISTINCT c) AS chunkCount,
		       [o IN collect(DISTINCT other.filename) WHERE o IS NOT NULL] AS compatible
	`, map[string]any{"filenames": filenames})
	if err != nil {
		return nil, fmt.Errorf("run insights query: %w", err)
	}

	insights := make(map[string]Insight, len(filenames))
	for result.Next(ctx) {
		record := result.Record()
		filename, _ := record.Get("filename")
		chunkCount, _ := record.Get("chunkCount")
		compatible, _ := record.Get("compatible")

		name, ok := filename.(string)
		if !ok {
			continue
		}

		insight := Insight{}
		if count, ok := chunkCount.(int64); ok {
			insight.ChunkCount = int(count)
		}
		if items, ok := compatible.([]any); ok {
			for _, item := range items {
				if file, ok := item.(string); ok {
					insight.CompatibleFiles = append(insight.CompatibleFiles, file)
				}
			}
		}
		insights[name] = insight
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("read insights result: %w", err)
	}

	return insights, nil
}
