package tree

import "errors"

var (
	ErrBadVertexCount = errors.New("tree: vertex count must be positive")
	ErrNotSpanning    = errors.New("tree: edge set is not a spanning tree")
	ErrUnknownEdge    = errors.New("tree: vertices are not adjacent")
)

// Edge is one undirected edge with V1 < V2. ID indexes the edge within
// its grid, so tree edges and complete-graph candidate edges carry
// independent id spaces.
type Edge struct {
	ID int
	V1 int
	V2 int
}

// Structure is a spanning tree over a fixed set of vertices. Vertex
// ids are stable across edge set replacements while edge ids are not,
// so per-edge statistics must be rebuilt whenever SetEdges is called.
type Structure struct {
	numVertices int
	grid        []Edge
	edgeIndex   map[[2]int]int
	complete    []Edge
}

// New creates a spanning tree over numVertices vertices, initialized
// to the linear chain 0-1, 1-2, ...
func New(numVertices int) *Structure {
	if numVertices <= 0 {
		panic(ErrBadVertexCount)
	}
	t := &Structure{numVertices: numVertices}
	edges := make([][2]int, numVertices-1)
	for v := 0; v+1 < numVertices; v += 1 {
		edges[v] = [2]int{v, v + 1}
	}
	t.SetEdges(edges)
	return t
}

// get the number of vertices
func (t *Structure) NumVertices() int {
	return t.numVertices
}

// get the number of tree edges
func (t *Structure) NumEdges() int {
	return len(t.grid)
}

// Grid returns the tree edges indexed by edge id
func (t *Structure) Grid() []Edge {
	return t.grid
}

// Edges returns a copy of the tree edge set as vertex pairs
func (t *Structure) Edges() [][2]int {
	edges := make([][2]int, len(t.grid))
	for i, e := range t.grid {
		edges[i] = [2]int{e.V1, e.V2}
	}
	return edges
}

// FindEdge returns the edge id joining two adjacent vertices, in
// either argument order. It panics if the vertices are not adjacent
// in the current tree.
func (t *Structure) FindEdge(u, v int) int {
	if u > v {
		u, v = v, u
	}
	e, ok := t.edgeIndex[[2]int{u, v}]
	if !ok {
		panic(ErrUnknownEdge)
	}
	return e
}

// SetEdges replaces the tree edge set. The edges are normalized to
// lower-first pairs and re-indexed in lexicographic order, so callers
// holding edge ids or per-edge statistics must rebuild them. It
// panics unless the edges form a spanning tree over all vertices.
func (t *Structure) SetEdges(edges [][2]int) {
	if len(edges) != t.numVertices-1 {
		panic(ErrNotSpanning)
	}

	normalized := make([][2]int, len(edges))
	for i, edge := range edges {
		u, v := edge[0], edge[1]
		if u > v {
			u, v = v, u
		}
		if u < 0 || v >= t.numVertices || u == v {
			panic(ErrNotSpanning)
		}
		normalized[i] = [2]int{u, v}
	}
	sortEdges(normalized)

	// union-find acyclicity check: V-1 distinct non-cycle edges over
	// V vertices form a spanning tree
	parent := make([]int, t.numVertices)
	for v := range parent {
		parent[v] = v
	}
	var find func(int) int
	find = func(v int) int {
		if parent[v] != v {
			parent[v] = find(parent[v])
		}
		return parent[v]
	}
	for _, edge := range normalized {
		ru, rv := find(edge[0]), find(edge[1])
		if ru == rv {
			panic(ErrNotSpanning)
		}
		parent[ru] = rv
	}

	t.grid = make([]Edge, len(normalized))
	t.edgeIndex = make(map[[2]int]int, len(normalized))
	for i, edge := range normalized {
		t.grid[i] = Edge{ID: i, V1: edge[0], V2: edge[1]}
		t.edgeIndex[edge] = i
	}
}

// CompleteGrid returns the candidate edges of the complete graph,
// indexed by candidate id. The grid is cached until GC is called.
func (t *Structure) CompleteGrid() []Edge {
	if t.complete == nil {
		V := t.numVertices
		t.complete = make([]Edge, 0, V*(V-1)/2)
		for v1 := 0; v1 < V; v1 += 1 {
			for v2 := v1 + 1; v2 < V; v2 += 1 {
				t.complete = append(t.complete, Edge{ID: len(t.complete), V1: v1, V2: v2})
			}
		}
	}
	return t.complete
}

// GC releases the cached candidate grid
func (t *Structure) GC() {
	t.complete = nil
}

func sortEdges(edges [][2]int) {
	// insertion sort, edge sets are small
	for i := 1; i < len(edges); i += 1 {
		for j := i; j > 0; j -= 1 {
			a, b := edges[j-1], edges[j]
			if a[0] < b[0] || (a[0] == b[0] && a[1] <= b[1]) {
				break
			}
			edges[j-1], edges[j] = b, a
		}
	}
}
