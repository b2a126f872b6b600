package engine

import "github.com/loomrun/loom/pkg/store"

// Checkpoint is written to the shared store's __execution__ side channel
// after every successfully completed node, so that a repair loop (see
// RepairFunc) or an external tool resuming a failed execution can see
// exactly how far it got and which action each node chose.
type Checkpoint struct {
	CompletedNodes []string
	Actions        map[string]string
}

func writeCheckpoint(shared *store.Store, visited []string, actions map[string]string) {
	completed := make([]string, len(visited))
	copy(completed, visited)
	actionsCopy := make(map[string]string, len(actions))
	for k, v := range actions {
		actionsCopy[k] = v
	}
	_ = shared.SetSideChannel(store.KeyExecution, Checkpoint{CompletedNodes: completed, Actions: actionsCopy})
}
