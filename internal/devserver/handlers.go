package devserver

import (
	"net/http"
	"slices"

	"github.com/me/classroom/pkg/model"
)

func (s *Server) handleListCourses(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	courses := slices.Clone(s.courses)
	s.mu.RUnlock()

	if u := userFrom(r); u.IsTeacher() {
		courses = slices.DeleteFunc(courses, func(c model.Course) bool { return c.TeacherID != u.ID })
	}
	respondOK(w, requestIDFrom(r), courses)
}

func (s *Server) handleListAssignments(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	assignments := slices.Clone(s.assignments)
	s.mu.RUnlock()

	if course := r.URL.Query().Get("course"); course != "" {
		assignments = slices.DeleteFunc(assignments, func(a model.Assignment) bool { return a.CourseID != course })
	}
	respondOK(w, requestIDFrom(r), assignments)
}

func (s *Server) handleListAnnouncements(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	announcements := slices.Clone(s.announcements)
	s.mu.RUnlock()

	role := string(userFrom(r).Role)
	announcements = slices.DeleteFunc(announcements, func(a model.Announcement) bool {
		return a.Audience != "all" && a.Audience != role
	})
	respondOK(w, requestIDFrom(r), announcements)
}

func (s *Server) handleListAttendance(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	records := slices.Clone(s.attendance)
	s.mu.RUnlock()

	if course := r.URL.Query().Get("course"); course != "" {
		records = slices.DeleteFunc(records, func(a model.AttendanceRecord) bool { return a.CourseID != course })
	}
	respondOK(w, requestIDFrom(r), records)
}
