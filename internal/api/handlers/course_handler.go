package handlers

import (
	"net/http"
	"strconv"

	"github.com/teewatch/teewatch/internal/domain/repositories"
)

// CourseHandler serves the stored course catalog.
type CourseHandler struct {
	courses repositories.CourseRepository
}

// NewCourseHandler creates a new course handler.
func NewCourseHandler(courses repositories.CourseRepository) *CourseHandler {
	return &CourseHandler{courses: courses}
}

// ListCourses handles GET /api/courses
func (h *CourseHandler) ListCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.courses.List(r.Context())
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"courses": courses,
		"count":   len(courses),
	})
}

// GetCourse handles GET /api/courses/{id}
func (h *CourseHandler) GetCourse(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "course ID must be an integer")
		return
	}

	course, err := h.courses.GetByID(r.Context(), id)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, course)
}
