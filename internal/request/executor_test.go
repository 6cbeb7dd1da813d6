package request

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/me/classroom/internal/apiclient"
	"github.com/me/classroom/pkg/model"
)

func TestExecute_Success(t *testing.T) {
	exec := NewExecutor[[]string](nil)

	var sawLoading bool
	out := exec.Execute(context.Background(), func(ctx context.Context) ([]string, error) {
		sawLoading = exec.State().Loading
		return []string{"a", "b"}, nil
	})

	require.True(t, out.Success)
	assert.Equal(t, []string{"a", "b"}, out.Data)
	assert.Empty(t, out.Error)
	assert.True(t, sawLoading, "Loading should be true while the operation runs")

	st := exec.State()
	assert.False(t, st.Loading)
	assert.Empty(t, st.Error)
	require.NotNil(t, st.Data)
	assert.Equal(t, []string{"a", "b"}, *st.Data)
}

func TestExecute_ErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "payload message",
			err:  &apiclient.HTTPError{StatusCode: 422, Payload: map[string]any{"message": "Invalid data"}},
			want: "Invalid data",
		},
		{
			name: "payload error string",
			err:  &apiclient.HTTPError{StatusCode: 400, Payload: map[string]any{"error": "bad course id"}},
			want: "bad course id",
		},
		{
			name: "nested error message",
			err:  &apiclient.HTTPError{StatusCode: 500, Payload: map[string]any{"error": map[string]any{"message": "db down"}}},
			want: "db down",
		},
		{
			name: "server error",
			err:  &model.ServerError{Message: "Course is archived"},
			want: "Course is archived",
		},
		{
			name: "validation error",
			err:  model.NewValidationError("Invalid response from server"),
			want: "Invalid response from server",
		},
		{
			name: "network error",
			err:  &model.NetworkError{Op: "GET /courses", Err: errors.New("connection refused")},
			want: model.GenericErrorMessage,
		},
		{
			name: "plain error",
			err:  errors.New("boom"),
			want: model.GenericErrorMessage,
		},
		{
			name: "http error without payload",
			err:  &apiclient.HTTPError{StatusCode: 502, Body: "<html>"},
			want: model.GenericErrorMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := NewExecutor[int](nil)
			out := exec.Execute(context.Background(), func(context.Context) (int, error) {
				return 0, tt.err
			})
			assert.False(t, out.Success)
			assert.Equal(t, tt.want, out.Error)

			st := exec.State()
			assert.False(t, st.Loading)
			assert.Equal(t, tt.want, st.Error)
			assert.Nil(t, st.Data)
		})
	}
}

func TestExecute_PanicRecovered(t *testing.T) {
	exec := NewExecutor[string](nil)

	out := exec.Execute(context.Background(), func(context.Context) (string, error) {
		panic("nil map write")
	})

	assert.False(t, out.Success)
	assert.Equal(t, model.GenericErrorMessage, out.Error)
	st := exec.State()
	assert.False(t, st.Loading, "Loading must be cleared after a panic")
	assert.Equal(t, model.GenericErrorMessage, st.Error)
}

func TestExecute_CustomFallback(t *testing.T) {
	exec := NewExecutor[string](nil)
	exec.SetFallback("Could not load courses")

	out := exec.Execute(context.Background(), func(context.Context) (string, error) {
		return "", errors.New("boom")
	})
	assert.Equal(t, "Could not load courses", out.Error)
}

func TestExecute_ClearsPriorError(t *testing.T) {
	exec := NewExecutor[int](nil)
	exec.Execute(context.Background(), func(context.Context) (int, error) {
		return 0, errors.New("first")
	})
	require.NotEmpty(t, exec.State().Error)

	var errDuring string
	exec.Execute(context.Background(), func(context.Context) (int, error) {
		errDuring = exec.State().Error
		return 7, nil
	})
	assert.Empty(t, errDuring)
	st := exec.State()
	assert.Empty(t, st.Error)
	require.NotNil(t, st.Data)
	assert.Equal(t, 7, *st.Data)
}

func TestExecute_FailureKeepsPreviousData(t *testing.T) {
	exec := NewExecutor[int](nil)
	exec.Execute(context.Background(), func(context.Context) (int, error) { return 1, nil })
	exec.Execute(context.Background(), func(context.Context) (int, error) { return 0, errors.New("x") })

	st := exec.State()
	require.NotNil(t, st.Data)
	assert.Equal(t, 1, *st.Data)
	assert.Equal(t, model.GenericErrorMessage, st.Error)
}

func TestExecute_StaleResultDiscarded(t *testing.T) {
	exec := NewExecutor[string](nil)

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan model.Outcome[string])

	go func() {
		done <- exec.Execute(context.Background(), func(context.Context) (string, error) {
			close(started)
			<-release
			return "slow", nil
		})
	}()
	<-started

	fast := exec.Execute(context.Background(), func(context.Context) (string, error) {
		return "fast", nil
	})
	require.True(t, fast.Success)

	close(release)
	slow := <-done

	assert.True(t, slow.Success)
	assert.Equal(t, "slow", slow.Data, "stale call still returns its own outcome")

	st := exec.State()
	require.NotNil(t, st.Data)
	assert.Equal(t, "fast", *st.Data)
	assert.False(t, st.Loading)
}

func TestExecute_LoadingUntilLatestSettles(t *testing.T) {
	exec := NewExecutor[string](nil)

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})

	exec.Execute(context.Background(), func(context.Context) (string, error) { return "first", nil })

	go func() {
		exec.Execute(context.Background(), func(context.Context) (string, error) {
			close(started)
			<-release
			return "second", nil
		})
		close(done)
	}()
	<-started

	assert.True(t, exec.State().Loading)
	close(release)
	<-done
	assert.False(t, exec.State().Loading)
}

func TestReset(t *testing.T) {
	exec := NewExecutor[int](nil)
	exec.Execute(context.Background(), func(context.Context) (int, error) { return 3, nil })
	exec.Reset()
	assert.Equal(t, State[int]{}, exec.State())

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		exec.Execute(context.Background(), func(context.Context) (int, error) {
			close(started)
			<-release
			return 9, nil
		})
		close(done)
	}()
	<-started
	exec.Reset()
	close(release)
	<-done

	assert.Equal(t, State[int]{}, exec.State(), "calls in flight at Reset do not write results")
}

func TestState_ReturnsCopy(t *testing.T) {
	exec := NewExecutor[int](nil)
	exec.Execute(context.Background(), func(context.Context) (int, error) { return 1, nil })

	st := exec.State()
	*st.Data = 99
	assert.Equal(t, 1, *exec.State().Data)
}
