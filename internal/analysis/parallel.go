package analysis

import (
	"sync"

	"netthreat/internal/models"
)

// analyzeChunks runs the per-packet pass over contiguous chunks in parallel
// and merges the partial state in chunk order. Merging in order keeps
// first-seen lists, threat order and last-wins OS classification identical
// to a sequential pass. Threshold rules are not run here.
func (e *Engine) analyzeChunks(packets []models.Packet) *accumulator {
	size := (len(packets) + e.workers - 1) / e.workers
	if size < e.chunkMin {
		size = e.chunkMin
	}

	var parts []*accumulator
	var wg sync.WaitGroup
	for start := 0; start < len(packets); start += size {
		end := min(start+size, len(packets))
		acc := newAccumulator()
		parts = append(parts, acc)

		wg.Add(1)
		go func(chunk []models.Packet) {
			defer wg.Done()
			for i := range chunk {
				e.process(acc, &chunk[i])
			}
		}(packets[start:end])
	}
	wg.Wait()

	total := parts[0]
	for _, p := range parts[1:] {
		total.merge(p)
	}
	return total
}
