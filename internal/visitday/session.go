package visitday

// Session owns the single live day of a process. It is created by the caller
// and handed to the orchestrator, so tests can build isolated sessions.
type Session struct {
	day *Day
}

func NewSession() *Session {
	return &Session{}
}

// Current returns the live day or nil.
func (s *Session) Current() *Day {
	return s.day
}

func (s *Session) Replace(d *Day) {
	s.day = d
}

// Clear drops the live day. Clearing an empty session is a no-op.
func (s *Session) Clear() bool {
	had := s.day != nil
	s.day = nil
	return had
}
