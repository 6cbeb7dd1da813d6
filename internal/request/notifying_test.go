package request

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/me/classroom/internal/apiclient"
	"github.com/me/classroom/internal/notify"
	"github.com/me/classroom/pkg/model"
)

func TestRun_ErrorNotifiedByDefault(t *testing.T) {
	rec := &notify.Recorder{}
	n := WithNotifications(NewExecutor[int](nil), rec)

	var gotMsg string
	out := n.Run(context.Background(), func(context.Context) (int, error) {
		return 0, &apiclient.HTTPError{StatusCode: 422, Payload: map[string]any{"message": "Invalid data"}}
	}, OnError[int](func(msg string) { gotMsg = msg }))

	assert.False(t, out.Success)
	assert.Equal(t, "Invalid data", out.Error)
	assert.Equal(t, "Invalid data", gotMsg)
	assert.Equal(t, []notify.Notification{{Kind: notify.KindError, Message: "Invalid data"}}, rec.All())
}

func TestRun_QuietErrors(t *testing.T) {
	rec := &notify.Recorder{}
	n := WithNotifications(NewExecutor[int](nil), rec)

	out := n.Run(context.Background(), func(context.Context) (int, error) {
		return 0, errors.New("boom")
	}, QuietErrors[int]())

	assert.Equal(t, model.GenericErrorMessage, out.Error)
	assert.Empty(t, rec.All())
}

func TestRun_SuccessSilentByDefault(t *testing.T) {
	rec := &notify.Recorder{}
	n := WithNotifications(NewExecutor[string](nil), rec)

	var got string
	out := n.Run(context.Background(), func(context.Context) (string, error) {
		return "ok", nil
	}, OnSuccess(func(s string) { got = s }))

	require.True(t, out.Success)
	assert.Equal(t, "ok", got)
	assert.Empty(t, rec.All())
}

func TestRun_SuccessMessagePriority(t *testing.T) {
	t.Run("explicit", func(t *testing.T) {
		rec := &notify.Recorder{}
		n := WithNotifications(NewExecutor[model.Message](nil), rec)
		n.Run(context.Background(), func(context.Context) (model.Message, error) {
			return model.Message{Message: "Saved by server"}, nil
		}, SuccessMessage[model.Message]("Profile saved"))
		assert.Equal(t, []string{"Profile saved"}, rec.Of(notify.KindSuccess))
	})

	t.Run("payload messager", func(t *testing.T) {
		rec := &notify.Recorder{}
		n := WithNotifications(NewExecutor[model.Message](nil), rec)
		n.Run(context.Background(), func(context.Context) (model.Message, error) {
			return model.Message{Message: "Saved by server"}, nil
		}, ShowSuccess[model.Message]())
		assert.Equal(t, []string{"Saved by server"}, rec.Of(notify.KindSuccess))
	})

	t.Run("payload map", func(t *testing.T) {
		rec := &notify.Recorder{}
		n := WithNotifications(NewExecutor[map[string]any](nil), rec)
		n.Run(context.Background(), func(context.Context) (map[string]any, error) {
			return map[string]any{"message": "Marked present"}, nil
		}, ShowSuccess[map[string]any]())
		assert.Equal(t, []string{"Marked present"}, rec.Of(notify.KindSuccess))
	})

	t.Run("default", func(t *testing.T) {
		rec := &notify.Recorder{}
		n := WithNotifications(NewExecutor[int](nil), rec)
		n.Run(context.Background(), func(context.Context) (int, error) { return 1, nil }, ShowSuccess[int]())
		assert.Equal(t, []string{DefaultSuccessMessage}, rec.Of(notify.KindSuccess))
	})
}

func TestRun_NilSink(t *testing.T) {
	n := WithNotifications[int](NewExecutor[int](nil), nil)
	out := n.Run(context.Background(), func(context.Context) (int, error) { return 0, errors.New("x") })
	assert.False(t, out.Success)
}
