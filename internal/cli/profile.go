package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/me/classroom/pkg/model"
)

func newProfileCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or change the saved profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			u := a.session.User()
			return a.render(u, func(w io.Writer) { writeUser(w, u) })
		},
	}
	cmd.AddCommand(newProfileSetCmd(a), newProfileRefreshCmd(a))
	return cmd
}

func newProfileSetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set key=value...",
		Short: "Update fields of the saved profile",
		Long:  "Merge key=value pairs into the saved profile. Only the local session is changed.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := parseFields(args)
			if err != nil {
				return err
			}
			if err := a.requireSession(); err != nil {
				return err
			}

			ctx, cancel := a.context(cmd)
			defer cancel()

			u, err := a.session.UpdateUser(ctx, fields)
			if err != nil {
				msg := model.UserMessage(err, model.GenericErrorMessage)
				a.notifier.Error(msg)
				return &reportedError{msg: msg}
			}
			a.notifier.Success("Profile updated")
			return a.render(u, func(w io.Writer) { writeUser(w, u) })
		},
	}
}

func parseFields(args []string) (map[string]any, error) {
	fields := make(map[string]any, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid field %q (want key=value)", arg)
		}
		fields[key] = value
	}
	return fields, nil
}

func newProfileRefreshCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Reload the profile from the service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()

			out := a.session.RefreshProfile(ctx)
			if !out.Success {
				return &reportedError{msg: out.Error}
			}
			return a.render(out.Data, func(w io.Writer) { writeUser(w, out.Data) })
		},
	}
}
