package cli

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/me/classroom/internal/request"
	"github.com/me/classroom/pkg/model"
)

// listSpec describes a read-only list command backed by one endpoint.
type listSpec[T any] struct {
	use, short string
	path       string
	roles      []model.Role // empty means any signed-in user
	courseFlag bool
	empty      string
	header     []string
	row        func(T) []string
}

func newListCmd[T any](a *app, spec listSpec[T]) *cobra.Command {
	var course string

	cmd := &cobra.Command{
		Use:   spec.use,
		Short: spec.short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			if len(spec.roles) > 0 && !a.session.HasRole(spec.roles...) {
				msg := "Only " + roleList(spec.roles) + " users can view " + spec.use
				a.notifier.Error(msg)
				return &reportedError{msg: msg}
			}

			path := spec.path
			if course != "" {
				path += "?" + url.Values{"course": {course}}.Encode()
			}

			ctx, cancel := a.context(cmd)
			defer cancel()

			exec := request.WithNotifications(request.NewExecutor[[]T](a.logger), a.notifier)
			out := exec.Run(ctx, func(ctx context.Context) ([]T, error) {
				var env model.Envelope[[]T]
				if err := a.client.Get(ctx, path, &env); err != nil {
					return nil, err
				}
				return env.Data, nil
			})
			if !out.Success {
				return &reportedError{msg: out.Error}
			}

			return a.render(out.Data, func(w io.Writer) {
				if len(out.Data) == 0 {
					fmt.Fprintln(w, spec.empty)
					return
				}
				writeTable(w, spec.header, out.Data, spec.row)
			})
		},
	}
	if spec.courseFlag {
		cmd.Flags().StringVar(&course, "course", "", "Only show entries for this course ID")
	}
	return cmd
}

func writeTable[T any](w io.Writer, header []string, rows []T, row func(T) []string) {
	cells := [][]string{header}
	for _, r := range rows {
		cells = append(cells, row(r))
	}
	widths := make([]int, len(header))
	for _, line := range cells {
		for i, c := range line {
			widths[i] = max(widths[i], len(c))
		}
	}
	for _, line := range cells {
		parts := make([]string, len(line))
		for i, c := range line {
			parts[i] = fmt.Sprintf("%-*s", widths[i], c)
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, "  "), " "))
	}
}

func roleList(roles []model.Role) string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return strings.Join(names, " and ")
}

func newCoursesCmd(a *app) *cobra.Command {
	return newListCmd(a, listSpec[model.Course]{
		use:    "courses",
		short:  "List your courses",
		path:   "/courses",
		empty:  "No courses found.",
		header: []string{"ID", "CODE", "TITLE", "STUDENTS"},
		row: func(c model.Course) []string {
			return []string{c.ID, c.Code, c.Title, fmt.Sprint(c.Students)}
		},
	})
}

func newAssignmentsCmd(a *app) *cobra.Command {
	return newListCmd(a, listSpec[model.Assignment]{
		use:        "assignments",
		short:      "List assignments",
		path:       "/assignments",
		courseFlag: true,
		empty:      "No assignments found.",
		header:     []string{"ID", "COURSE", "TITLE", "DUE"},
		row: func(as model.Assignment) []string {
			return []string{as.ID, as.CourseID, as.Title, as.DueAt.Format("2006-01-02")}
		},
	})
}

func newAnnouncementsCmd(a *app) *cobra.Command {
	return newListCmd(a, listSpec[model.Announcement]{
		use:    "announcements",
		short:  "List announcements for your role",
		path:   "/announcements",
		empty:  "No announcements.",
		header: []string{"DATE", "AUDIENCE", "TITLE"},
		row: func(an model.Announcement) []string {
			return []string{an.CreatedAt.Format("2006-01-02"), an.Audience, an.Title}
		},
	})
}

func newAttendanceCmd(a *app) *cobra.Command {
	return newListCmd(a, listSpec[model.AttendanceRecord]{
		use:        "attendance",
		short:      "List attendance records (admin and teacher)",
		path:       "/attendance",
		roles:      []model.Role{model.RoleAdmin, model.RoleTeacher},
		courseFlag: true,
		empty:      "No attendance records.",
		header:     []string{"DATE", "COURSE", "STUDENT", "PRESENT"},
		row: func(r model.AttendanceRecord) []string {
			present := "no"
			if r.Present {
				present = "yes"
			}
			return []string{r.Date.Format("2006-01-02"), r.CourseID, r.StudentID, present}
		},
	})
}
