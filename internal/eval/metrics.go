// Package eval provides offline ranking-quality metrics and a k-fold
// evaluation harness over historical review data.
package eval

import "math"

// PrecisionAtK is the number of relevant locations in the top-k
// recommendations divided by k. The denominator stays k even when fewer
// than k locations were recommended, so short lists are penalized.
func PrecisionAtK(recommended []int64, relevant map[int64]struct{}, k int) float64 {
	if k <= 0 {
		return 0
	}

	hits := 0
	for _, id := range topK(recommended, k) {
		if _, ok := relevant[id]; ok {
			hits++
		}
	}
	return float64(hits) / float64(k)
}

// RecallAtK is the fraction of relevant locations that appear in the
// top-k recommendations. Zero when the relevant set is empty.
func RecallAtK(recommended []int64, relevant map[int64]struct{}, k int) float64 {
	if len(relevant) == 0 {
		return 0
	}

	hits := 0
	for _, id := range topK(recommended, k) {
		if _, ok := relevant[id]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(relevant))
}

// NDCGAtK computes normalized discounted cumulative gain with binary
// relevance: a hit at rank i (0-based) gains 1/log2(i+2), and the result
// is normalized by the ideal ordering's gain.
func NDCGAtK(recommended []int64, relevant map[int64]struct{}, k int) float64 {
	top := topK(recommended, k)
	if len(top) == 0 || len(relevant) == 0 || k <= 0 {
		return 0
	}

	var dcg float64
	for i, id := range top {
		if _, ok := relevant[id]; ok {
			dcg += 1 / math.Log2(float64(i)+2)
		}
	}

	// The ideal ordering fills the first min(|relevant|, k) ranks,
	// regardless of how many locations were actually recommended.
	ideal := len(relevant)
	if ideal > k {
		ideal = k
	}
	var idcg float64
	for i := 0; i < ideal; i++ {
		idcg += 1 / math.Log2(float64(i)+2)
	}
	if idcg == 0 {
		return 0
	}
	return dcg / idcg
}

// HitRateAtK is 1 when at least one relevant location appears in the
// top-k, else 0.
func HitRateAtK(recommended []int64, relevant map[int64]struct{}, k int) float64 {
	for _, id := range topK(recommended, k) {
		if _, ok := relevant[id]; ok {
			return 1
		}
	}
	return 0
}

func topK(recommended []int64, k int) []int64 {
	if k > 0 && len(recommended) > k {
		return recommended[:k]
	}
	return recommended
}
