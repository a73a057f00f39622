/*
	traversal package implements related-item discovery over the
	co-purchase graph. Both traversals enumerate every item reachable
	from a start item through chains of co-purchases, excluding the
	start item itself.
*/

package traversal

import "sort"

// Graph defines the minimum set of graph access methods required by the
// traversal functions.
type Graph interface {
	// HasItem checks whether the provided item is part of the graph.
	HasItem(item string) bool

	// Neighbours returns the mapping of items adjacent to the provided
	// item together with their co-purchase weights.
	Neighbours(item string) map[string]int
}

// RelatedItemsBFS performs a breadth-first walk from startItem and returns
// every reachable item in discovery order. A node is marked visited and
// recorded the first time it is discovered (enqueued), so no node is ever
// enqueued twice. An unknown start item yields an empty result rather
// than an error, and items in disconnected components never appear.
func RelatedItemsBFS(g Graph, startItem string) []string {
	if !g.HasItem(startItem) {
		return nil
	}

	visited := map[string]bool{startItem: true}
	queue := []string{startItem}

	var related []string

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, neighbour := range sortedNeighbours(g, current) {
			if visited[neighbour] {
				continue
			}

			visited[neighbour] = true
			related = append(related, neighbour)
			queue = append(queue, neighbour)
		}
	}

	return related
}

// RelatedItemsDFS performs a depth-first walk from startItem and returns
// every reachable item in visit order: the first unvisited neighbour of a
// node is fully explored before its siblings. The walk runs on an
// explicit stack of pending nodes, which bounds memory by the edge count
// instead of growing the call stack on deep co-purchase chains. An
// unknown start item yields an empty result rather than an error.
func RelatedItemsDFS(g Graph, startItem string) []string {
	if !g.HasItem(startItem) {
		return nil
	}

	visited := map[string]bool{startItem: true}
	// Nodes may be pushed more than once; the visited check on pop keeps
	// the visit order identical to a recursive descent.
	stack := pushReversed(nil, sortedNeighbours(g, startItem))

	var related []string

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if visited[current] {
			continue
		}

		visited[current] = true
		related = append(related, current)
		stack = pushReversed(stack, sortedNeighbours(g, current))
	}

	return related
}

// pushReversed pushes the neighbour labels onto the stack in reverse
// order so that the lexicographically smallest neighbour is popped first.
func pushReversed(stack []string, neighbours []string) []string {
	for i := len(neighbours) - 1; i >= 0; i-- {
		stack = append(stack, neighbours[i])
	}

	return stack
}

// sortedNeighbours returns the neighbour labels of item in lexicographic
// order. Iterating neighbour mappings in a fixed order keeps both
// traversals deterministic.
func sortedNeighbours(g Graph, item string) []string {
	neighbours := g.Neighbours(item)

	labels := make([]string, 0, len(neighbours))
	for label := range neighbours {
		labels = append(labels, label)
	}

	sort.Strings(labels)

	return labels
}
