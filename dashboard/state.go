package dashboard

import (
	"errors"
)

// FallbackErrorMessage is shown when a fetch fails without a message.
const FallbackErrorMessage = "Failed to load analytics"

// State is the view state: the last good snapshot, the loading flag and the
// message of the most recent failed fetch.
type State struct {
	Snapshot *Snapshot
	Loading  bool
	Err      *string
}

// FetchError is a failed fetch. Message is optional.
type FetchError struct {
	Message string
	Err     error
}

func (e *FetchError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return "fetch analytics: " + e.Err.Error()
	}
	return "fetch analytics failed"
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func initialState() State {
	return State{Loading: true}
}

// beginFetch clears the previous failure at the start of an attempt.
func (s State) beginFetch() State {
	s.Loading = true
	s.Err = nil
	return s
}

func (s State) succeed(p *Snapshot) State {
	if p == nil {
		p = &Snapshot{}
	}
	s.Snapshot = p.Clone()
	s.Err = nil
	s.Loading = false
	return s
}

// fail records the failure. The snapshot is left untouched so a transient
// error never blanks out data that was already shown.
func (s State) fail(err error) State {
	msg := errorMessage(err)
	s.Err = &msg
	s.Loading = false
	return s
}

// clone returns a copy that shares nothing with s.
func (s State) clone() State {
	out := State{Loading: s.Loading, Snapshot: s.Snapshot.Clone()}
	if s.Err != nil {
		msg := *s.Err
		out.Err = &msg
	}
	return out
}

func errorMessage(err error) string {
	if err == nil {
		return FallbackErrorMessage
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		if fe.Message != "" {
			return fe.Message
		}
		return FallbackErrorMessage
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return FallbackErrorMessage
}
