// Package reembed refreshes the embeddings of already built pet documents.
//
// After switching embedding models, every stored document needs a new vector
// for its description while the rest of the document stays as built. The
// Reembedder walks a storage.DocumentStore in identifier order, embeds each
// batch of descriptions with retries, checks the vectors against the expected
// dimensionality and writes the documents back in place.
package reembed
