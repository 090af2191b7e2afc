package graph

import "math"

// pageRank runs the power method on the weighted adjacency structure.
// Incoming mass from a source is split proportionally to its outgoing edge
// weights; mass held by dangling nodes is redistributed uniformly each
// iteration so the vector stays a probability distribution.
func (g *Graph) pageRank(opts Options) (scores []float64, converged bool, iterations int) {
	n := g.Len()
	scores = make([]float64, n)
	if n == 0 {
		return scores, true, 0
	}

	type inEdge struct {
		source int
		weight float64
	}
	inLinks := make([][]inEdge, n)
	outWeight := make([]float64, n)
	for _, e := range g.Edges {
		inLinks[e.Target] = append(inLinks[e.Target], inEdge{source: e.Source, weight: e.Weight})
		outWeight[e.Source] += e.Weight
	}

	newScores := make([]float64, n)
	initial := 1.0 / float64(n)
	for i := range scores {
		scores[i] = initial
	}

	for iter := 0; iter < opts.MaxIterations; iter++ {
		iterations = iter + 1

		danglingSum := 0.0
		for i := 0; i < n; i++ {
			if outWeight[i] == 0 {
				danglingSum += scores[i]
			}
		}

		for i := 0; i < n; i++ {
			sum := 0.0
			for _, in := range inLinks[i] {
				// A source whose outgoing weight is zero is dangling; its
				// mass was already folded into danglingSum.
				if outWeight[in.source] == 0 {
					continue
				}
				sum += scores[in.source] * in.weight / outWeight[in.source]
			}
			newScores[i] = (1-opts.Damping)/float64(n) + opts.Damping*(sum+danglingSum/float64(n))
		}

		diff := 0.0
		for i := 0; i < n; i++ {
			diff += math.Abs(newScores[i] - scores[i])
		}
		scores, newScores = newScores, scores
		if diff < opts.Tolerance {
			return scores, true, iterations
		}
	}
	return scores, false, iterations
}
