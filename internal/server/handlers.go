package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/geeddi-ai/geeddi-server/internal/course"
	"github.com/geeddi-ai/geeddi-server/internal/feedback"
	"github.com/geeddi-ai/geeddi-server/internal/i18n"
	"github.com/geeddi-ai/geeddi-server/internal/session"
)

func (s *Server) handleTopics(w http.ResponseWriter, r *http.Request) {
	lang := i18n.Normalize(r.URL.Query().Get("lang"))
	writeJSON(w, http.StatusOK, map[string]any{
		"language": lang,
		"topics":   s.topics.Topics(lang),
	})
}

type createSessionRequest struct {
	Language string `json:"language"`
}

type sessionResponse struct {
	ID    string        `json:"id"`
	State session.State `json:"state"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sess := s.sessions.Create(req.Language)
	writeJSON(w, http.StatusCreated, sessionResponse{ID: sess.ID, State: sess.Snapshot()})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessions.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{ID: sess.ID, State: sess.Snapshot()})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	s.sessions.Close(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

type generateCourseRequest struct {
	Topic string `json:"topic"`
}

func (s *Server) handleGenerateCourse(w http.ResponseWriter, r *http.Request) {
	var req generateCourseRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		writeError(w, http.StatusBadRequest, "topic is required")
		return
	}

	err := s.sessions.StartGeneration(r.PathValue("id"), topic)
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "session not found")
	case errors.Is(err, session.ErrGenerationInFlight):
		writeError(w, http.StatusConflict, err.Error())
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "generating"})
	}
}

type setLanguageRequest struct {
	Language string `json:"language"`
}

func (s *Server) handleSetLanguage(w http.ResponseWriter, r *http.Request) {
	var req setLanguageRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	state, err := s.sessions.SetLanguage(r.PathValue("id"), req.Language)
	if errors.Is(err, session.ErrSessionNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{ID: r.PathValue("id"), State: state})
}

type answerRequest struct {
	Option string `json:"option"`
}

type answerResponse struct {
	Result  session.AnswerResult `json:"result"`
	Applied bool                 `json:"applied"`
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "question index must be an integer")
		return
	}

	var req answerRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, applied, err := s.sessions.SelectAnswer(r.PathValue("id"), index, req.Option)
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "session not found")
	case errors.Is(err, session.ErrNoCourse):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, session.ErrQuestionOutOfRange), errors.Is(err, session.ErrUnknownOption):
		writeError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeJSON(w, http.StatusOK, answerResponse{Result: result, Applied: applied})
	}
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessions.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	format := course.Format(r.URL.Query().Get("format"))
	if format == "" {
		format = course.FormatMarkdown
	}

	state := sess.Snapshot()
	if state.Course == nil {
		writeError(w, http.StatusConflict, session.ErrNoCourse.Error())
		return
	}

	data, filename, mime, err := course.Export(state.Course, format)
	if errors.Is(err, course.ErrUnknownFormat) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown export format: %q", format))
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// feedbackKey parses courseTitle and the optional lessonIndex query params.
func feedbackKey(r *http.Request) (feedback.Key, error) {
	title := strings.TrimSpace(r.URL.Query().Get("courseTitle"))
	if title == "" {
		return feedback.Key{}, fmt.Errorf("courseTitle is required")
	}
	key := feedback.Key{CourseTitle: title, LessonIndex: feedback.CourseLevel}
	if raw := r.URL.Query().Get("lessonIndex"); raw != "" {
		idx, err := strconv.Atoi(raw)
		if err != nil || idx < 0 {
			return feedback.Key{}, fmt.Errorf("lessonIndex must be a non-negative integer")
		}
		key.LessonIndex = idx
	}
	return key, nil
}

type feedbackResponse struct {
	Found   bool   `json:"found"`
	Rating  int    `json:"rating,omitempty"`
	Comment string `json:"comment,omitempty"`
}

func (s *Server) handleGetFeedback(w http.ResponseWriter, r *http.Request) {
	key, err := feedbackKey(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec, found, err := s.feedback.Load(r.Context(), key)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, feedbackResponse{Found: found, Rating: rec.Rating, Comment: rec.Comment})
}

type putFeedbackRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (s *Server) handlePutFeedback(w http.ResponseWriter, r *http.Request) {
	key, err := feedbackKey(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req putFeedbackRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec := feedback.Record{Rating: req.Rating, Comment: req.Comment}
	err = s.feedback.Save(r.Context(), key, rec)
	if errors.Is(err, feedback.ErrInvalidRating) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
