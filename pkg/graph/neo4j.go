package graph

import (
	"context"
	"errors"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/AbhinavKumar0000/Agentic-RAG-KG-VDB/internal/models"
)

// ErrNoGraphData is returned when a tenant has no graph to read.
var ErrNoGraphData = errors.New("no graph data found")

type Config struct {
	URI      string
	Username string
	Password string
	Database string
}

// Store is the graph store adapter. Nodes and edges are written with
// idempotent MERGE keyed on name, label and tenant, so re-ingesting the
// same document never duplicates them.
type Store struct {
	driver   neo4j.DriverWithContext
	database string
	logger   *zap.Logger
}

func NewWithConfig(ctx context.Context, config Config, logger *zap.Logger) (*Store, error) {
	driver, err := neo4j.NewDriverWithContext(config.URI,
		neo4j.BasicAuth(config.Username, config.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create Neo4j driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("failed to reach Neo4j: %w", err)
	}

	return &Store{
		driver:   driver,
		database: config.Database,
		logger:   logger,
	}, nil
}

// Run executes a Cypher query and returns each record as a map.
func (s *Store) Run(ctx context.Context, query string, params map[string]interface{}) ([]map[string]interface{}, error) {
	result, err := neo4j.ExecuteQuery(ctx, s.driver, query, params,
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(s.database))
	if err != nil {
		return nil, fmt.Errorf("query execution failed: %w", err)
	}

	rows := make([]map[string]interface{}, 0, len(result.Records))
	for _, record := range result.Records {
		rows = append(rows, record.AsMap())
	}
	return rows, nil
}

// MergeDocumentUpload creates the deterministic
// (User)-[:UPLOADED]->(Document) edge so every uploaded document has a
// connected entry point even when extraction yields nothing.
func (s *Store) MergeDocumentUpload(ctx context.Context, userID, filename string) error {
	query := `
		MERGE (u:User {id: $uid, user_id: $uid})
		MERGE (d:Document {name: $fname, user_id: $uid})
		MERGE (u)-[:UPLOADED]->(d)`

	_, err := s.Run(ctx, query, map[string]interface{}{
		"uid":   userID,
		"fname": filename,
	})
	if err != nil {
		return fmt.Errorf("failed to merge upload edge: %w", err)
	}
	return nil
}

// MergeGraph bulk-merges an extracted graph for one tenant. Labels and
// relationship types cannot be parameterized in Cypher, so they are
// sanitized before being spliced into the query text.
func (s *Store) MergeGraph(ctx context.Context, userID string, graph models.KnowledgeGraph) error {
	byLabel := make(map[string][]map[string]interface{})
	for _, node := range graph.Nodes {
		label := SanitizeLabel(node.Label)
		byLabel[label] = append(byLabel[label], map[string]interface{}{"name": node.Name})
	}

	for label, nodes := range byLabel {
		query := fmt.Sprintf(`
			UNWIND $nodes AS node
			MERGE (n:%s {name: node.name, user_id: $uid})`, label)

		if _, err := s.Run(ctx, query, map[string]interface{}{
			"nodes": nodes,
			"uid":   userID,
		}); err != nil {
			return fmt.Errorf("failed to merge %s nodes: %w", label, err)
		}
	}

	byType := make(map[string][]map[string]interface{})
	for _, edge := range graph.Edges {
		relType := SanitizeRelType(edge.Type)
		byType[relType] = append(byType[relType], map[string]interface{}{
			"source": edge.Source,
			"target": edge.Target,
		})
	}

	for relType, edges := range byType {
		// Endpoints the extractor referenced without emitting a node
		// simply fail the MATCH and drop the edge.
		query := fmt.Sprintf(`
			UNWIND $edges AS edge
			MATCH (a {name: edge.source, user_id: $uid})
			MATCH (b {name: edge.target, user_id: $uid})
			MERGE (a)-[:%s]->(b)`, relType)

		if _, err := s.Run(ctx, query, map[string]interface{}{
			"edges": edges,
			"uid":   userID,
		}); err != nil {
			return fmt.Errorf("failed to merge %s edges: %w", relType, err)
		}
	}

	return nil
}

// Subgraph fetches every relationship touching the tenant's nodes, up
// to limit, for visualization.
func (s *Store) Subgraph(ctx context.Context, userID string, limit int) (models.KnowledgeGraph, error) {
	var graph models.KnowledgeGraph

	if limit <= 0 {
		limit = 200
	}

	query := `
		MATCH (n)-[r]->(m)
		WHERE n.user_id = $uid OR m.user_id = $uid
		RETURN n, r, m
		LIMIT $limit`

	result, err := neo4j.ExecuteQuery(ctx, s.driver, query,
		map[string]interface{}{"uid": userID, "limit": limit},
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(s.database))
	if err != nil {
		return graph, fmt.Errorf("subgraph query failed: %w", err)
	}

	seen := make(map[string]bool)
	addNode := func(node neo4j.Node) {
		if seen[node.ElementId] {
			return
		}
		seen[node.ElementId] = true

		label := "Node"
		if len(node.Labels) > 0 {
			label = node.Labels[0]
		}
		name := label
		if v, ok := node.Props["name"].(string); ok && v != "" {
			name = v
		} else if v, ok := node.Props["id"].(string); ok && v != "" {
			name = v
		}
		graph.Nodes = append(graph.Nodes, models.GraphNode{
			ID:    node.ElementId,
			Label: label,
			Name:  name,
			Props: node.Props,
		})
	}

	for _, record := range result.Records {
		source, ok := record.Get("n")
		if !ok {
			continue
		}
		target, ok := record.Get("m")
		if !ok {
			continue
		}
		rel, ok := record.Get("r")
		if !ok {
			continue
		}

		sourceNode, ok := source.(neo4j.Node)
		if !ok {
			continue
		}
		targetNode, ok := target.(neo4j.Node)
		if !ok {
			continue
		}
		relationship, ok := rel.(neo4j.Relationship)
		if !ok {
			continue
		}

		addNode(sourceNode)
		addNode(targetNode)
		graph.Edges = append(graph.Edges, models.GraphEdge{
			Source: relationship.StartElementId,
			Target: relationship.EndElementId,
			Type:   relationship.Type,
		})
	}

	return graph, nil
}

// DeleteUser bulk-deletes every node (and attached relationship)
// tagged with the tenant. In-flight extraction tasks are not cancelled;
// one finishing after a reset re-populates the graph.
func (s *Store) DeleteUser(ctx context.Context, userID string) error {
	_, err := s.Run(ctx, "MATCH (n {user_id: $uid}) DETACH DELETE n",
		map[string]interface{}{"uid": userID})
	if err != nil {
		return fmt.Errorf("failed to delete tenant graph: %w", err)
	}
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}
