// entropy.go binds the RandomSource and Clock capabilities to the
// engine's replay-safe primitives. Workflow code never reads the system
// clock or global randomness.
package workflow

import (
	"hash/fnv"
	"time"

	"go.temporal.io/sdk/workflow"
)

// workflowClock implements entropy.Clock on top of workflow.Now, which is
// deterministic under replay.
type workflowClock struct {
	ctx workflow.Context
}

func (c workflowClock) Now() time.Time {
	return workflow.Now(c.ctx)
}

// sessionSeed derives the generator seed from the conversation ID and the
// workflow start time. Both inputs replay identically, so the generated
// turn and call IDs do too.
func sessionSeed(ctx workflow.Context, conversationID string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(conversationID))
	return h.Sum64() ^ uint64(workflow.Now(ctx).UnixNano())
}
