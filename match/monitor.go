package match

import "github.com/poiesic/labelmap/core"

// MatchMonitor provides hooks to observe the matching process.
// Implement this interface to track intermediate steps and results.
type MatchMonitor interface {
	Start(text string)
	AfterPreprocess(processed string)
	AfterExpansion(terms []string)
	AfterScoring(candidates int)
	Finish(results []core.MatchResult)
}

// noopMonitor is a no-op implementation of MatchMonitor
type noopMonitor struct{}

var _ MatchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)              {}
func (n *noopMonitor) AfterPreprocess(_ string)    {}
func (n *noopMonitor) AfterExpansion(_ []string)   {}
func (n *noopMonitor) AfterScoring(_ int)          {}
func (n *noopMonitor) Finish(_ []core.MatchResult) {}
