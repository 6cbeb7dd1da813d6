package devserver

import (
	"fmt"
	"time"

	"github.com/me/classroom/pkg/model"
)

// SeedPassword is the password of every seeded account.
const SeedPassword = "password"

// Seeded account emails.
const (
	SeedAdminEmail   = "admin@school.test"
	SeedTeacherEmail = "teacher@school.test"
	SeedStudentEmail = "student@school.test"
)

// seed loads a small demo school: one account per role and some coursework.
func (s *Server) seed() error {
	people := []model.RegisterRequest{
		{Name: "Amina Admin", Email: SeedAdminEmail, Role: model.RoleAdmin},
		{Name: "Tomas Teacher", Email: SeedTeacherEmail, Role: model.RoleTeacher,
			Extra: map[string]any{"department": "Mathematics"}},
		{Name: "Sara Student", Email: SeedStudentEmail, Role: model.RoleStudent,
			Extra: map[string]any{"grade": "10"}},
	}
	ids := make(map[model.Role]string, len(people))
	for _, p := range people {
		p.Password = SeedPassword
		acct, err := s.addAccount(p, true)
		if err != nil {
			return fmt.Errorf("seed %s: %w", p.Email, err)
		}
		ids[p.Role] = acct.user.ID
	}

	day := s.now().UTC().Truncate(24 * time.Hour)
	s.mu.Lock()
	defer s.mu.Unlock()

	s.courses = []model.Course{
		{ID: "crs_math10", Code: "MATH-10", Title: "Algebra II", TeacherID: ids[model.RoleTeacher], Students: 28},
		{ID: "crs_bio10", Code: "BIO-10", Title: "Biology", Students: 31},
	}
	s.assignments = []model.Assignment{
		{ID: "asg_1", CourseID: "crs_math10", Title: "Quadratic equations worksheet", DueAt: day.Add(3 * 24 * time.Hour)},
		{ID: "asg_2", CourseID: "crs_bio10", Title: "Cell structure lab report", DueAt: day.Add(7 * 24 * time.Hour)},
	}
	s.announcements = []model.Announcement{
		{ID: "ann_1", Title: "Sports day", Body: "Classes end at noon on Friday.", Audience: "all", CreatedAt: day},
		{ID: "ann_2", Title: "Grades due", Body: "Submit term grades by Monday.", Audience: string(model.RoleTeacher), CreatedAt: day},
	}
	s.attendance = []model.AttendanceRecord{
		{CourseID: "crs_math10", StudentID: ids[model.RoleStudent], Date: day, Present: true},
		{CourseID: "crs_bio10", StudentID: ids[model.RoleStudent], Date: day, Present: false},
	}
	return nil
}
