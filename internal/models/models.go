package models

// Document is a single uploaded source file after text extraction,
// tagged with the tenant that owns it.
type Document struct {
	ID       string
	Source   string // original (sanitized) filename
	UserID   string
	Content  string
	Metadata map[string]interface{}
}

// Chunk is the unit of vector indexing: a bounded span of document
// text with overlap, carrying its tenant tag and source attribution.
type Chunk struct {
	ID      string
	UserID  string
	Source  string
	Content string
	Index   int // position within the source document
}

// GraphNode is a labeled entity in the knowledge graph. Every node
// written by this service carries the owning tenant in Props["user_id"].
type GraphNode struct {
	ID    string
	Label string // Person, Organization, Document, Concept, Location, User
	Name  string
	Props map[string]interface{}
}

// GraphEdge is a typed directed relationship between two nodes,
// referenced by name within the same tenant's graph.
type GraphEdge struct {
	Source string
	Target string
	Type   string
}

// KnowledgeGraph is the bulk-merge payload produced by extraction.
type KnowledgeGraph struct {
	Nodes []GraphNode
	Edges []GraphEdge
}

// Merge appends another extracted graph into this one. Duplicate nodes
// are fine: graph writes are idempotent MERGEs keyed by name and label.
func (g *KnowledgeGraph) Merge(other KnowledgeGraph) {
	g.Nodes = append(g.Nodes, other.Nodes...)
	g.Edges = append(g.Edges, other.Edges...)
}

// Route is the binary retrieval decision made by the query router.
type Route string

const (
	RouteGraph  Route = "GRAPH"
	RouteVector Route = "VECTOR"
)

// Tool labels surfaced on the chat response.
const (
	ToolVectorSearch = "Vector Search"
	ToolGraphCypher  = "Graph Cypher"
	ToolGraphFailed  = "Graph Search (Failed)"
	ToolUnknown      = "Unknown"
)

// AgentState is the per-request record threaded through the query
// pipeline. Populated stage by stage, discarded after the response.
type AgentState struct {
	Question string
	UserID   string
	Context  string
	Tool     string
	Answer   string
}
