package service

import (
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	pgvector "github.com/pgvector/pgvector-go"

	"github.com/pageza/cuistot/backend/internal/models"
)

// GenerateEmbedding returns a deterministic embedding for the given text:
// character trigrams of every word are hashed into a fixed number of buckets
// and the result is L2 normalized, so titles sharing words land close together.
func GenerateEmbedding(text string) pgvector.Vector {
	vec := make([]float32, models.EmbeddingDimensions)

	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, word := range words {
		padded := []rune(" " + word + " ")
		for i := 0; i+3 <= len(padded); i++ {
			h := fnv.New32a()
			h.Write([]byte(string(padded[i : i+3])))
			vec[h.Sum32()%uint32(len(vec))]++
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return pgvector.NewVector(vec)
}
