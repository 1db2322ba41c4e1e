package sqlite

import (
	"bytes"
	"encoding/binary"
	"fmt"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
)

// EncodeVector packs a vector in the float32 BLOB layout sqlite-vec reads.
func EncodeVector(v []float32) ([]byte, error) {
	return sqlite_vec.SerializeFloat32(v)
}

// DecodeVector is the inverse of EncodeVector.
func DecodeVector(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("vector blob length %d is not a multiple of 4", len(b))
	}
	v := make([]float32, len(b)/4)
	if err := binary.Read(bytes.NewReader(b), binary.LittleEndian, v); err != nil {
		return nil, err
	}
	return v, nil
}
