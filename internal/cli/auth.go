package cli

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/me/classroom/internal/store"
	"github.com/me/classroom/pkg/model"
)

func newLoginCmd(a *app) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and land on your dashboard",
		Long:  "Sign in with email and password. The session is saved so later commands run as you until you log out.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if email == "" {
				if email, err = a.prompt("Email: "); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = a.promptSecret("Password: "); err != nil {
					return err
				}
			}

			ctx, cancel := a.context(cmd)
			defer cancel()

			res := a.session.Login(ctx, email, password)
			if !res.Success {
				return &reportedError{msg: res.Message}
			}
			return a.renderIdentity(ctx)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email (prompted if omitted)")
	cmd.Flags().StringVar(&password, "password", "", "Account password (prompted if omitted)")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()
			a.session.Logout(ctx)
			return nil
		},
	}
}

func newRegisterCmd(a *app) *cobra.Command {
	var req model.RegisterRequest
	var role string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Request a new account",
		Long:  "Request a new account. An administrator approves it before you can log in.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Role = model.Role(role)
			if req.Password == "" {
				pw, err := a.promptSecret("Password: ")
				if err != nil {
					return err
				}
				req.Password = pw
			}

			ctx, cancel := a.context(cmd)
			defer cancel()

			res := a.session.Register(ctx, req)
			if !res.Success {
				return &reportedError{msg: res.Message}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "Full name")
	cmd.Flags().StringVar(&req.Email, "email", "", "Account email")
	cmd.Flags().StringVar(&role, "role", "", "Requested role (admin, teacher, student)")
	cmd.Flags().StringVar(&req.Password, "password", "", "Password (prompted if omitted)")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("email")
	return cmd
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			ctx, cancel := a.context(cmd)
			defer cancel()
			return a.renderIdentity(ctx)
		},
	}
}

// identity is the machine-readable form of whoami.
type identity struct {
	User          *model.User `json:"user"`
	Authenticated bool        `json:"authenticated"`
	Landing       string      `json:"landing"`
	Route         string      `json:"route,omitempty"`
}

func (a *app) renderIdentity(ctx context.Context) error {
	id := identity{
		User:          a.session.User(),
		Authenticated: a.session.Authenticated(),
		Landing:       a.session.LandingPath(),
	}
	if route, ok, err := a.storage.Get(ctx, store.KeyRoute); err == nil && ok {
		id.Route = string(route)
	}

	return a.render(id, func(w io.Writer) {
		writeUser(w, id.User)
		fmt.Fprintf(w, "%-12s %s\n", "Landing:", id.Landing)
		if id.Route != "" {
			fmt.Fprintf(w, "%-12s %s\n", "Last route:", id.Route)
		}
	})
}

func writeUser(w io.Writer, u *model.User) {
	if u == nil {
		return
	}
	fmt.Fprintf(w, "%-12s %s\n", "Name:", u.Name)
	fmt.Fprintf(w, "%-12s %s\n", "Email:", u.Email)
	fmt.Fprintf(w, "%-12s %s\n", "Role:", u.Role)
	fmt.Fprintf(w, "%-12s %s\n", "ID:", u.ID)
	for _, k := range slices.Sorted(maps.Keys(u.Extra)) {
		fmt.Fprintf(w, "%-12s %v\n", k+":", u.Extra[k])
	}
}
