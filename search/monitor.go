package search

// SearchMonitor provides hooks to observe a search.
type SearchMonitor interface {
	Start(query string, mode Mode)
	AfterEmbedding(dims int)
	Fallback(reason error)
	AfterQuery(hits int)
	Finish(results []*Result)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string, _ Mode) {}
func (n *noopMonitor) AfterEmbedding(_ int)   {}
func (n *noopMonitor) Fallback(_ error)       {}
func (n *noopMonitor) AfterQuery(_ int)       {}
func (n *noopMonitor) Finish(_ []*Result)     {}
