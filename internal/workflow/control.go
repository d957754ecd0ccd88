// control.go holds LoopControl, the transient coordination state between
// signal handlers and the session loop. LoopControl is never serialised;
// it is rebuilt fresh at each workflow entry and repopulated by replayed
// signals, so replay reconstructs it deterministically.
package workflow

// LoopControl mediates between the signal drain goroutines and the main
// loop. Handlers only mutate it through typed methods; the loop observes
// it inside workflow.Await conditions.
type LoopControl struct {
	phase         Phase
	currentTurnID string

	// pendingTurns is the FIFO of user turns not yet started.
	pendingTurns []UserTurnPayload

	// pendingApprovals maps call_id to an unresolved approval request.
	// approvalOrder preserves emission order for get_state.
	pendingApprovals map[string]*pendingApproval
	approvalOrder    []string

	cancelRequested   bool
	shutdownRequested bool
}

// pendingApproval tracks one awaited tool call and its eventual decision.
type pendingApproval struct {
	info     PendingApproval
	resolved bool
	approved bool
}

// NewLoopControl creates a LoopControl in the idle phase.
func NewLoopControl() *LoopControl {
	return &LoopControl{
		phase:            PhaseIdle,
		pendingApprovals: make(map[string]*pendingApproval),
	}
}

// Phase returns the current phase.
func (c *LoopControl) Phase() Phase { return c.phase }

// SetPhase transitions the loop to phase.
func (c *LoopControl) SetPhase(phase Phase) { c.phase = phase }

// CurrentTurnID returns the ID of the running turn, or "" when idle.
func (c *LoopControl) CurrentTurnID() string { return c.currentTurnID }

// SetCurrentTurnID records the running turn.
func (c *LoopControl) SetCurrentTurnID(id string) { c.currentTurnID = id }

// PushUserTurn appends a turn to the FIFO.
func (c *LoopControl) PushUserTurn(turn UserTurnPayload) {
	c.pendingTurns = append(c.pendingTurns, turn)
}

// HasPendingTurn reports whether a queued turn is waiting.
func (c *LoopControl) HasPendingTurn() bool { return len(c.pendingTurns) > 0 }

// QueuedTurns returns the number of queued turns.
func (c *LoopControl) QueuedTurns() int { return len(c.pendingTurns) }

// PopUserTurn removes and returns the oldest queued turn.
func (c *LoopControl) PopUserTurn() UserTurnPayload {
	turn := c.pendingTurns[0]
	c.pendingTurns = c.pendingTurns[1:]
	return turn
}

// AddPendingApproval registers a tool call awaiting the user's decision.
func (c *LoopControl) AddPendingApproval(info PendingApproval) {
	c.pendingApprovals[info.CallID] = &pendingApproval{info: info}
	c.approvalOrder = append(c.approvalOrder, info.CallID)
}

// ResolveApproval applies the user's decision to a pending call. It
// reports false when the call ID has no pending entry, in which case the
// caller logs and ignores the signal. A second arrival for a still-pending
// call overwrites the decision.
func (c *LoopControl) ResolveApproval(callID string, approved bool) bool {
	entry, ok := c.pendingApprovals[callID]
	if !ok {
		return false
	}
	entry.resolved = true
	entry.approved = approved
	return true
}

// ApprovalResolved reports whether the call's decision has arrived.
func (c *LoopControl) ApprovalResolved(callID string) bool {
	entry, ok := c.pendingApprovals[callID]
	return ok && entry.resolved
}

// TakeApproval consumes the decision for callID and removes the entry
// from the pending table. Must only be called after ApprovalResolved.
func (c *LoopControl) TakeApproval(callID string) bool {
	entry := c.pendingApprovals[callID]
	c.removeApproval(callID)
	return entry.approved
}

// DropApproval removes a pending entry without consuming a decision.
// Used when cancel or shutdown abandons the awaited call.
func (c *LoopControl) DropApproval(callID string) {
	c.removeApproval(callID)
}

func (c *LoopControl) removeApproval(callID string) {
	delete(c.pendingApprovals, callID)
	for i, id := range c.approvalOrder {
		if id == callID {
			c.approvalOrder = append(c.approvalOrder[:i], c.approvalOrder[i+1:]...)
			break
		}
	}
}

// PendingApprovals returns the unresolved requests in emission order.
func (c *LoopControl) PendingApprovals() []PendingApproval {
	var out []PendingApproval
	for _, id := range c.approvalOrder {
		if entry, ok := c.pendingApprovals[id]; ok && !entry.resolved {
			out = append(out, entry.info)
		}
	}
	return out
}

// RequestCancel asks the loop to abort the current turn.
func (c *LoopControl) RequestCancel() { c.cancelRequested = true }

// CancelRequested reports whether a cancel is pending.
func (c *LoopControl) CancelRequested() bool { return c.cancelRequested }

// ClearCancel resets the cancel flag once the turn has been aborted.
func (c *LoopControl) ClearCancel() { c.cancelRequested = false }

// RequestShutdown asks the session to end.
func (c *LoopControl) RequestShutdown() { c.shutdownRequested = true }

// ShutdownRequested reports whether shutdown has been signalled.
func (c *LoopControl) ShutdownRequested() bool { return c.shutdownRequested }
