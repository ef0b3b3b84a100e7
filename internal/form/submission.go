package form

// Result classifies how a finished submission affects its form.
type Result int

const (
	// ResultIgnored means the form was already closed or the ticket was stale.
	ResultIgnored Result = iota
	// ResultFailed means the form stays open with an inline error.
	ResultFailed
	// ResultSucceeded means the form should close.
	ResultSucceeded
)

// Submission is the loading latch of one form. Only one submission can be
// pending at a time; results that arrive after Close are dropped.
type Submission struct {
	pending bool
	closed  bool
	ticket  int
	err     string
}

// Begin starts a submission and returns its ticket. ok is false while a
// submission is already pending or the form is closed.
func (s *Submission) Begin() (ticket int, ok bool) {
	if s.pending || s.closed {
		return 0, false
	}
	s.ticket++
	s.pending = true
	s.err = ""
	return s.ticket, true
}

// Finish records the outcome of the submission identified by ticket.
func (s *Submission) Finish(ticket int, err error) Result {
	if s.closed || !s.pending || ticket != s.ticket {
		return ResultIgnored
	}
	s.pending = false
	if err != nil {
		s.err = err.Error()
		return ResultFailed
	}
	return ResultSucceeded
}

// Close marks the owning form closed. Later results are ignored.
func (s *Submission) Close() {
	s.closed = true
	s.pending = false
}

func (s *Submission) Pending() bool { return s.pending }
func (s *Submission) Closed() bool  { return s.closed }

// Err is the message of the last failed submission, empty after a retry
// begins.
func (s *Submission) Err() string { return s.err }
