package pipeline

// State is a phase of a run.
type State string

const (
	StateIdle        State = "idle"
	StateReading     State = "reading"
	StateReconciling State = "reconciling"
	StateBatchLoop   State = "batch_loop"
	StateDone        State = "done"
	StateAborted     State = "aborted"
)

// Terminal reports whether the run has finished.
func (s State) Terminal() bool {
	return s == StateDone || s == StateAborted
}
