package core

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"internationally/internal/store"
	"internationally/internal/utils"
)

const (
	NumRelevantChunks   = 3   // Number of chunks to retrieve for context
	SimilarityThreshold = 0.7 // Minimum similarity score to consider a chunk relevant
)

// Embedder turns text into an embedding vector. Satisfied by LLMService.
type Embedder interface {
	GetEmbedding(text string) ([]float32, error)
}

// RAGService retrieves student-guidance passages (visa rules, campus
// services, cultural notes) relevant to a query from the ingested
// knowledge base.
type RAGService struct {
	embedder Embedder
	chunks   []store.KBChunk // In-memory cache of chunks and their embeddings
}

func NewRAGService(db *store.SQLiteStore, embedder Embedder) (*RAGService, error) {
	chunks, err := db.GetAllKBChunks()
	if err != nil {
		return nil, fmt.Errorf("failed to load knowledge base for RAG service: %w", err)
	}
	if len(chunks) == 0 {
		log.Println("Warning: RAGService initialized with no knowledge base chunks. Run the server with -ingest first.")
	} else {
		log.Printf("RAGService initialized with %d knowledge base chunks.", len(chunks))
	}

	return &RAGService{embedder: embedder, chunks: chunks}, nil
}

type scoredChunk struct {
	chunk      store.KBChunk
	similarity float32
}

// GetRelevantContext returns the concatenated top chunks for the query, or
// an empty string when nothing clears the similarity threshold.
func (s *RAGService) GetRelevantContext(query string) (string, error) {
	if len(s.chunks) == 0 {
		return "", nil // No context if no data
	}

	queryEmbedding, err := s.embedder.GetEmbedding(query)
	if err != nil {
		return "", fmt.Errorf("failed to get query embedding: %w", err)
	}

	scored := make([]scoredChunk, 0, len(s.chunks))
	for _, chunk := range s.chunks {
		if len(chunk.Embedding) == 0 {
			log.Printf("Skipping chunk ID %d due to missing embedding.", chunk.ID)
			continue
		}
		similarity, err := utils.CosineSimilarity(queryEmbedding, chunk.Embedding)
		if err != nil {
			log.Printf("Error calculating similarity for chunk %d: %v. Skipping.", chunk.ID, err)
			continue
		}

		if similarity >= SimilarityThreshold {
			scored = append(scored, scoredChunk{chunk: chunk, similarity: similarity})
		}
	}

	sort.Slice(scored, func(i, j int) bool {
		return scored[i].similarity > scored[j].similarity
	})

	var contextBuilder strings.Builder
	retrieved := 0
	for i := 0; i < len(scored) && retrieved < NumRelevantChunks; i++ {
		contextBuilder.WriteString(scored[i].chunk.Content)
		contextBuilder.WriteString("\n\n")
		retrieved++
	}

	if retrieved == 0 {
		log.Printf("No relevant chunks found for query (similarity threshold: %.2f)", SimilarityThreshold)
		return "", nil
	}

	return strings.TrimSpace(contextBuilder.String()), nil
}
