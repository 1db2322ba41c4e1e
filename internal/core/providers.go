package core

import "context"

type AIProvider interface {
	Chat(ctx context.Context, history []Message) (Message, error)
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// BatchEmbedder is implemented by embedding backends that accept several
// inputs per call. Output order matches input order.
type BatchEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
