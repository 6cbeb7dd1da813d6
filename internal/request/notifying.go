package request

import (
	"context"

	"github.com/me/classroom/internal/notify"
	"github.com/me/classroom/pkg/model"
)

// DefaultSuccessMessage is used when neither the caller nor the payload
// supplies one.
const DefaultSuccessMessage = "Operation completed successfully"

// Options controls notifications and callbacks for one Run.
type Options[T any] struct {
	ShowSuccessToast bool
	ShowErrorToast   bool
	SuccessMessage   string
	OnSuccess        func(data T)
	OnError          func(message string)
}

// Option configures a single Run.
type Option[T any] func(*Options[T])

// ShowSuccess emits a success notification when the operation succeeds.
func ShowSuccess[T any]() Option[T] {
	return func(o *Options[T]) { o.ShowSuccessToast = true }
}

// SuccessMessage sets the success notification text and enables it.
func SuccessMessage[T any](msg string) Option[T] {
	return func(o *Options[T]) {
		o.ShowSuccessToast = true
		o.SuccessMessage = msg
	}
}

// QuietErrors suppresses the error notification.
func QuietErrors[T any]() Option[T] {
	return func(o *Options[T]) { o.ShowErrorToast = false }
}

// OnSuccess registers a callback invoked with the result.
func OnSuccess[T any](fn func(T)) Option[T] {
	return func(o *Options[T]) { o.OnSuccess = fn }
}

// OnError registers a callback invoked with the failure message.
func OnError[T any](fn func(string)) Option[T] {
	return func(o *Options[T]) { o.OnError = fn }
}

// Notifying decorates an Executor with notifications and callbacks.
type Notifying[T any] struct {
	*Executor[T]
	sink notify.Sink
}

// WithNotifications wraps exec so that Run reports outcomes to sink.
func WithNotifications[T any](exec *Executor[T], sink notify.Sink) *Notifying[T] {
	if sink == nil {
		sink = notify.Discard
	}
	return &Notifying[T]{Executor: exec, sink: sink}
}

// Run executes op and then notifies and invokes callbacks according to opts.
// Errors are notified by default; successes only when asked for.
func (n *Notifying[T]) Run(ctx context.Context, op Op[T], opts ...Option[T]) model.Outcome[T] {
	o := Options[T]{ShowErrorToast: true}
	for _, opt := range opts {
		opt(&o)
	}

	out := n.Execute(ctx, op)
	if out.Success {
		if o.ShowSuccessToast {
			n.sink.Success(successMessage(o.SuccessMessage, out.Data))
		}
		if o.OnSuccess != nil {
			o.OnSuccess(out.Data)
		}
		return out
	}

	if o.ShowErrorToast {
		n.sink.Error(out.Error)
	}
	if o.OnError != nil {
		o.OnError(out.Error)
	}
	return out
}

func successMessage(explicit string, data any) string {
	if explicit != "" {
		return explicit
	}
	switch v := data.(type) {
	case model.Messager:
		if msg := v.UserMessage(); msg != "" {
			return msg
		}
	case map[string]any:
		if msg, ok := v["message"].(string); ok && msg != "" {
			return msg
		}
	}
	return DefaultSuccessMessage
}
