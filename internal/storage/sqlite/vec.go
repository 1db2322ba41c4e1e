package sqlite

import (
	"fmt"

	"github.com/sandevgo/recall/pkg/sqlite"
)

// serializeVector converts a float32 slice to the BLOB that
// vec_distance_cosine reads.
func serializeVector(vec []float32) ([]byte, error) {
	blob, err := sqlite.EncodeVector(vec)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize vector: %w", err)
	}
	return blob, nil
}

func deserializeVector(blob []byte) ([]float32, error) {
	vec, err := sqlite.DecodeVector(blob)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize vector: %w", err)
	}
	return vec, nil
}
