// Package engine implements the memory summarization pipeline: per-type
// partitioning, embedding-similarity clustering, generative summarization,
// and lineage persistence, all scoped to a single organization per run.
package engine

import (
	"math"

	"github.com/harborcrm/recall/pkg/types"
)

// ClusterMemoriesByType partitions memories into groups keyed by memory
// type. Insertion order within a group follows input order. Type is a hard
// partition boundary: similarity clustering never crosses it.
func ClusterMemoriesByType(memories []*types.Memory) map[types.MemoryType][]*types.Memory {
	groups := make(map[types.MemoryType][]*types.Memory)
	for _, m := range memories {
		groups[m.MemoryType] = append(groups[m.MemoryType], m)
	}
	return groups
}

// ClusterMemoriesBySimilarity groups memories whose pairwise embedding
// cosine similarity exceeds threshold. It is a greedy single-linkage
// agglomeration: each unassigned memory seeds a new cluster, then the
// cluster absorbs every remaining memory similar to any current member,
// rescanning until membership stops growing. No centroid is computed, and
// cluster shape is sensitive to input order; that is the documented
// behavior, not a defect.
//
// Memories without an embedding cannot be compared and are excluded from
// the output entirely. Clusters are returned in seed order.
func ClusterMemoriesBySimilarity(memories []*types.Memory, threshold float64) [][]*types.Memory {
	candidates := make([]*types.Memory, 0, len(memories))
	for _, m := range memories {
		if m.HasEmbedding() {
			candidates = append(candidates, m)
		}
	}

	var clusters [][]*types.Memory
	assigned := make([]bool, len(candidates))

	for i, seed := range candidates {
		if assigned[i] {
			continue
		}
		assigned[i] = true
		cluster := []*types.Memory{seed}

		// Chain absorption: a newly added member can pull in memories that
		// were not similar to the seed itself, so rescan until stable.
		for grew := true; grew; {
			grew = false
			for j := i + 1; j < len(candidates); j++ {
				if assigned[j] {
					continue
				}
				for _, member := range cluster {
					if CosineSimilarity(member.ContentEmbedding, candidates[j].ContentEmbedding) > threshold {
						assigned[j] = true
						cluster = append(cluster, candidates[j])
						grew = true
						break
					}
				}
			}
		}

		clusters = append(clusters, cluster)
	}

	return clusters
}

// CosineSimilarity returns dot(a,b) / (|a| * |b|). Vectors of different
// lengths or zero magnitude have no defined angle; both cases return 0.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
