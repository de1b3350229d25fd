package graph

import "sort"

// CentralityAlgorithm scores nodes by structural importance.
type CentralityAlgorithm interface {
	Scores(g *Graph) map[string]float64
}

// CommunityAlgorithm partitions nodes into concept communities.
type CommunityAlgorithm interface {
	Communities(g *Graph) [][]string
}

// NewCommunityAlgorithm selects a community algorithm by name: "modularity"
// for weighted modularity optimization, anything else for the connected
// components fallback. The fallback is a first-class variant, not a silent
// degradation: callers configure it explicitly and can rely on its output.
func NewCommunityAlgorithm(name string) CommunityAlgorithm {
	if name == "modularity" {
		return &WeightedModularity{}
	}
	return &ConnectedComponentsFallback{}
}

// DegreeCentrality scores each node by (in+out degree) / (2*(n-1)).
type DegreeCentrality struct{}

// Scores returns degree centrality for every node. An empty graph yields an
// empty map; a single-node graph yields a zero score.
func (DegreeCentrality) Scores(g *Graph) map[string]float64 {
	scores := make(map[string]float64, len(g.nodes))
	n := len(g.nodes)
	if n == 0 {
		return scores
	}
	for name := range g.nodes {
		if n == 1 {
			scores[name] = 0
			continue
		}
		degree := len(g.succ[name]) + len(g.pred[name])
		scores[name] = float64(degree) / float64(2*(n-1))
	}
	return scores
}

// ConnectedComponentsFallback groups nodes into undirected connected
// components.
type ConnectedComponentsFallback struct{}

// Communities returns the undirected connected components, each sorted by
// name, ordered by their smallest member.
func (ConnectedComponentsFallback) Communities(g *Graph) [][]string {
	visited := make(map[string]bool, len(g.nodes))
	components := [][]string{}
	for _, start := range g.order {
		if visited[start] {
			continue
		}
		component := []string{}
		queue := []string{start}
		visited[start] = true
		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]
			component = append(component, current)
			for _, nb := range g.neighbors(current) {
				if !visited[nb] {
					visited[nb] = true
					queue = append(queue, nb)
				}
			}
		}
		sort.Strings(component)
		components = append(components, component)
	}
	sortCommunities(components)
	return components
}

// WeightedModularity groups nodes by greedy modularity optimization on the
// weighted undirected projection of the graph: single-level Louvain-style
// local moving, without the aggregation phase. Parallel directed edges
// between a pair contribute the sum of their weights.
type WeightedModularity struct{}

// Communities returns the detected communities, each sorted by name, ordered
// by their smallest member. An edgeless graph falls back to connected
// components (every node its own community).
func (WeightedModularity) Communities(g *Graph) [][]string {
	names := g.Nodes()
	sort.Strings(names)

	// Undirected weighted adjacency and degrees.
	adj := make(map[string]map[string]float64, len(names))
	degree := make(map[string]float64, len(names))
	var total float64
	for _, name := range names {
		adj[name] = make(map[string]float64)
	}
	for src, targets := range g.succ {
		for dst, edge := range targets {
			w := edge.Weight
			if w <= 0 {
				w = 1e-9 // zero-weight edges still bind nodes together
			}
			adj[src][dst] += w
			adj[dst][src] += w
			degree[src] += w
			degree[dst] += w
			total += w
		}
	}
	if total == 0 {
		return ConnectedComponentsFallback{}.Communities(g)
	}
	m2 := 2 * total

	community := make(map[string]int, len(names))
	communityDegree := make(map[int]float64, len(names))
	for i, name := range names {
		community[name] = i
		communityDegree[i] = degree[name]
	}

	// Local moving: shift each node to the neighbor community with the best
	// positive modularity gain until a full pass makes no move.
	for moved, pass := true, 0; moved && pass < 100; pass++ {
		moved = false
		for _, name := range names {
			current := community[name]
			communityDegree[current] -= degree[name]

			weightTo := map[int]float64{}
			for nb, w := range adj[name] {
				if nb != name {
					weightTo[community[nb]] += w
				}
			}

			best, bestGain := current, weightTo[current]-degree[name]*communityDegree[current]/m2
			candidates := make([]int, 0, len(weightTo))
			for c := range weightTo {
				candidates = append(candidates, c)
			}
			sort.Ints(candidates)
			for _, c := range candidates {
				gain := weightTo[c] - degree[name]*communityDegree[c]/m2
				if gain > bestGain {
					best, bestGain = c, gain
				}
			}

			community[name] = best
			communityDegree[best] += degree[name]
			if best != current {
				moved = true
			}
		}
	}

	grouped := map[int][]string{}
	for _, name := range names {
		grouped[community[name]] = append(grouped[community[name]], name)
	}
	communities := make([][]string, 0, len(grouped))
	for _, members := range grouped {
		sort.Strings(members)
		communities = append(communities, members)
	}
	sortCommunities(communities)
	return communities
}

func sortCommunities(communities [][]string) {
	sort.Slice(communities, func(i, j int) bool { return communities[i][0] < communities[j][0] })
}
