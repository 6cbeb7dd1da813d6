package notify

import (
	"github.com/rollbar/rollbar-go"
)

// RollbarOptions configures error reporting.
type RollbarOptions struct {
	Token       string
	Environment string
	CodeVersion string
}

// Rollbar reports error notifications to Rollbar and passes every notification
// on to the wrapped sink. Success messages are not reported.
type Rollbar struct {
	next   Sink
	client *rollbar.Client
}

// NewRollbar wraps next. With an empty token reporting is disabled and the
// sink only forwards.
func NewRollbar(next Sink, opts RollbarOptions) *Rollbar {
	client := rollbar.NewAsync(opts.Token, opts.Environment, opts.CodeVersion, "", "")
	client.SetEnabled(opts.Token != "")
	return &Rollbar{next: next, client: client}
}

func (r *Rollbar) Success(msg string) {
	r.next.Success(msg)
}

func (r *Rollbar) Error(msg string) {
	r.client.Message(rollbar.WARN, msg)
	r.next.Error(msg)
}

// SetPerson attaches the signed-in principal to subsequent reports.
func (r *Rollbar) SetPerson(id, username, email string) {
	r.client.SetPerson(id, username, email)
}

// ClearPerson detaches the principal after logout.
func (r *Rollbar) ClearPerson() {
	r.client.ClearPerson()
}

// Close flushes pending reports.
func (r *Rollbar) Close() error {
	r.client.Wait()
	return r.client.Close()
}
