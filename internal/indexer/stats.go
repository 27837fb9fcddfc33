package indexer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"sort"
)

// ChunkerVersion identifies the chunking algorithm. Update this when chunk boundaries change.
const ChunkerVersion = "v2.0"

// ChunkStats summarises chunk text lengths (in runes) produced by one ingestion run.
type ChunkStats struct {
	Count int     `json:"count"`
	Min   int     `json:"min"`
	Max   int     `json:"max"`
	Mean  float64 `json:"mean"`
	P95   int     `json:"p95"`
}

// ComputeChunkStats computes min, max, mean, and p95 of chunk lengths.
func ComputeChunkStats(chunks []ContentChunk) ChunkStats {
	if len(chunks) == 0 {
		return ChunkStats{}
	}

	sorted := make([]int, len(chunks))
	sum := 0
	for i, chunk := range chunks {
		sorted[i] = runeLen(chunk.Text)
		sum += sorted[i]
	}
	sort.Ints(sorted)

	p95Index := int(math.Ceil(float64(len(sorted))*0.95)) - 1
	if p95Index < 0 {
		p95Index = 0
	}

	return ChunkStats{
		Count: len(sorted),
		Min:   sorted[0],
		Max:   sorted[len(sorted)-1],
		Mean:  math.Round(float64(sum)/float64(len(sorted))*100) / 100,
		P95:   sorted[p95Index],
	}
}

// IndexVersion returns a short hash identifying an index build
// (chunker version + embedding model + dimension + chunking params).
func IndexVersion(embeddingModel string, dimension, maxChunkSize, overlap int) string {
	input := fmt.Sprintf("%s|%s|dim=%d|max=%d|overlap=%d",
		ChunkerVersion, embeddingModel, dimension, maxChunkSize, overlap)
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:])[:16]
}
