package tree

// Visit is one step of a propagation schedule. Parent is -1 for the
// root and Children are sorted ascending.
type Visit struct {
	Vertex   int
	Parent   int
	Children []int
}

// Schedule is a traversal order over tree vertices where every vertex
// appears exactly once after all of its ancestors, so processing it in
// reverse runs leaves to root.
type Schedule []Visit

// MakeSchedule builds a propagation schedule for a spanning tree edge
// grid, rooted at vertex 0. It panics if the grid does not connect
// all len(grid)+1 vertices.
func MakeSchedule(grid []Edge) Schedule {
	numVertices := len(grid) + 1
	adjacent := make([][]int, numVertices)
	for _, e := range grid {
		adjacent[e.V1] = append(adjacent[e.V1], e.V2)
		adjacent[e.V2] = append(adjacent[e.V2], e.V1)
	}

	schedule := make(Schedule, 0, numVertices)
	visited := make([]bool, numVertices)
	type frame struct{ vertex, parent int }
	stack := []frame{{0, -1}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[f.vertex] {
			panic(ErrNotSpanning)
		}
		visited[f.vertex] = true

		var children []int
		for _, u := range adjacent[f.vertex] {
			if u != f.parent {
				children = append(children, u)
			}
		}
		sortInts(children)
		schedule = append(schedule, Visit{Vertex: f.vertex, Parent: f.parent, Children: children})

		// push in reverse so children pop in ascending order
		for i := len(children) - 1; i >= 0; i -= 1 {
			stack = append(stack, frame{children[i], f.vertex})
		}
	}
	if len(schedule) != numVertices {
		panic(ErrNotSpanning)
	}
	return schedule
}

func sortInts(xs []int) {
	for i := 1; i < len(xs); i += 1 {
		for j := i; j > 0 && xs[j] < xs[j-1]; j -= 1 {
			xs[j], xs[j-1] = xs[j-1], xs[j]
		}
	}
}
