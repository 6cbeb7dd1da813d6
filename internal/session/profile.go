package session

import (
	"context"

	"github.com/me/classroom/internal/request"
	"github.com/me/classroom/pkg/model"
)

// NotSignedInMessage is reported when an operation needs a session.
const NotSignedInMessage = "You are not logged in"

// RefreshProfile fetches the current user from the service and merges it
// into the session. Failures are notified.
func (s *Store) RefreshProfile(ctx context.Context) model.Outcome[*model.User] {
	if !s.Authenticated() {
		s.notifier.Error(NotSignedInMessage)
		return model.Failed[*model.User](NotSignedInMessage)
	}

	exec := request.WithNotifications(request.NewExecutor[*model.User](s.logger), s.notifier)
	return exec.Run(ctx, func(ctx context.Context) (*model.User, error) {
		var resp map[string]any
		if err := s.http.Get(ctx, "/auth/me", &resp); err != nil {
			return nil, err
		}
		if err := explicitFailure(resp); err != nil {
			return nil, err
		}
		return s.UpdateUser(ctx, userFields(resp))
	}, request.SuccessMessage[*model.User]("Profile refreshed"))
}
