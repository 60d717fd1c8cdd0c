// Package mock provides test double implementations of AI service interfaces.
//
// MockEmbedder and MockProvider let pipeline tests run without an embedding
// server. Vectors are deterministic unit vectors derived from an FNV hash of
// the input text, so identical descriptions always embed identically.
//
// # Usage in Tests
//
//	provider := mock.NewMockProvider()
//	vector, err := provider.Embedder().EmbedText(ctx, "test")
//
//	// Custom behavior injection
//	embedder := mock.NewMockEmbedderWithDims(8)
//	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
//	    return nil, errors.New("model offline")
//	}
//
//	// Check call counts
//	count := embedder.CallCount()
package mock
