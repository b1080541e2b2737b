package pipeline

import "sync"

// View is a last-write-wins guard for overlapping pipeline runs.
//
// Interactive surfaces re-run the pipeline on every data refresh or filter
// change, and a slow run can finish after a newer one started. A View hands
// out a Ticket at the start of each run; only the ticket from the newest run
// may commit its result, so a stale layout can never overwrite a fresh one.
//
// Typical usage:
//
//	ticket := view.Begin(opts.CaseID)
//	result, err := runner.Execute(ctx, opts)
//	if err == nil && view.Commit(ticket, result) {
//	    // result is current; repaint
//	}
type View struct {
	mu      sync.Mutex
	gen     uint64
	current *Result
	caseID  string
}

// Ticket identifies one pipeline run against a View.
type Ticket struct {
	gen uint64
}

// NewView creates an empty view.
func NewView() *View {
	return &View{}
}

// Begin registers the start of a pipeline run and returns its ticket.
// Beginning a new run invalidates all earlier tickets.
func (v *View) Begin(caseID string) Ticket {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.gen++
	v.caseID = caseID
	return Ticket{gen: v.gen}
}

// Commit stores the result if the ticket is still current. It reports
// whether the result was accepted; a false return means a newer run began
// after this ticket was issued and the result must be discarded.
func (v *View) Commit(t Ticket, result *Result) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if t.gen != v.gen {
		return false
	}
	v.current = result
	return true
}

// Current returns the most recently committed result, or nil and false if
// nothing has been committed yet.
func (v *View) Current() (*Result, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.current == nil {
		return nil, false
	}
	return v.current, true
}

// CaseID returns the case of the most recently begun run.
func (v *View) CaseID() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.caseID
}
