package notify

import "sync"

// Kind distinguishes success from error notifications.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Notification is one recorded message.
type Notification struct {
	Kind    Kind
	Message string
}

// Recorder keeps every notification in order. Used by tests and by callers
// that render notifications after a command finishes.
type Recorder struct {
	mu  sync.Mutex
	all []Notification
}

func (r *Recorder) Success(msg string) { r.add(KindSuccess, msg) }
func (r *Recorder) Error(msg string)   { r.add(KindError, msg) }

func (r *Recorder) add(k Kind, msg string) {
	r.mu.Lock()
	r.all = append(r.all, Notification{Kind: k, Message: msg})
	r.mu.Unlock()
}

// All returns a copy of the recorded notifications.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.all...)
}

// Of returns the recorded messages of one kind.
func (r *Recorder) Of(k Kind) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, n := range r.all {
		if n.Kind == k {
			out = append(out, n.Message)
		}
	}
	return out
}

// Reset forgets everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.all = nil
	r.mu.Unlock()
}
