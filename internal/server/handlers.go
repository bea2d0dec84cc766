package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/pathfinder/internal/quiz"
	"github.com/spigell/pathfinder/internal/resume"
	"github.com/spigell/pathfinder/internal/session"
)

type chatRequest struct {
	Message string `json:"message" validate:"required,max=4000"`
}

type chatResponse struct {
	Reply   string           `json:"reply"`
	Session session.Snapshot `json:"session"`
}

type quizAnswerRequest struct {
	Choice string `json:"choice" validate:"required"`
}

type speakRequest struct {
	Text string `json:"text" validate:"required,max=5000"`
}

type extractResponse struct {
	Filename string `json:"filename"`
	Text     string `json:"text"`
}

type transcribeResponse struct {
	Text string `json:"text"`
}

// httpError carries a status code out of a session callback.
type httpError struct {
	status  int
	message string
}

func (e *httpError) Error() string {
	return e.message
}

// withSession runs fn under the session lock and writes either its result or
// the error it returned.
func (s *Server) withSession(w http.ResponseWriter, r *http.Request, fn func(*session.Session) (any, error)) {
	var out any
	err := s.store.With(sessionIDFromContext(r.Context()), func(sess *session.Session) error {
		var err error
		out, err = fn(sess)
		return err
	})

	var herr *httpError
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, out)
	case errors.Is(err, session.ErrNotFound):
		writeError(w, http.StatusNotFound, "session expired, reload the page")
	case errors.As(err, &herr):
		writeError(w, herr.status, herr.message)
	default:
		s.logger.Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session.Session) (any, error) {
		return sess.Snapshot(), nil
	})
}

func (s *Server) resetSession(w http.ResponseWriter, r *http.Request) {
	id := sessionIDFromContext(r.Context())

	// A session minted by the middleware for this request is already fresh
	// and its cookie is already set.
	if c, err := r.Cookie(sessionCookieName); err == nil && c.Value == id {
		s.store.Delete(id)
		id = s.store.Create()
		s.setSessionCookie(w, id)
	}

	_ = s.store.With(id, func(sess *session.Session) error {
		writeJSON(w, http.StatusOK, sess.Snapshot())
		return nil
	})
}

func (s *Server) postChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		writeError(w, http.StatusBadRequest, "validation error: Message - required")
		return
	}

	s.withSession(w, r, func(sess *session.Session) (any, error) {
		reply := s.chat.Handle(r.Context(), message, sess)
		return chatResponse{Reply: reply, Session: sess.Snapshot()}, nil
	})
}

func (s *Server) startQuiz(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session.Session) (any, error) {
		sess.StartQuiz()
		return sess.Snapshot(), nil
	})
}

func (s *Server) answerQuiz(w http.ResponseWriter, r *http.Request) {
	var req quizAnswerRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.withSession(w, r, func(sess *session.Session) (any, error) {
		err := sess.AnswerQuiz(req.Choice)
		switch {
		case errors.Is(err, quiz.ErrQuizComplete):
			return nil, &httpError{status: http.StatusConflict, message: err.Error()}
		case errors.Is(err, quiz.ErrUnknownOption):
			return nil, &httpError{status: http.StatusBadRequest, message: err.Error()}
		case err != nil:
			return nil, err
		}
		return sess.Snapshot(), nil
	})
}

func (s *Server) extractResume(w http.ResponseWriter, r *http.Request) {
	up, err := readUpload(w, r, "file")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	text := resume.Extract(up.filename, up.data)
	if resume.IsFailure(text) {
		writeError(w, http.StatusUnprocessableEntity, text)
		return
	}

	writeJSON(w, http.StatusOK, extractResponse{Filename: up.filename, Text: text})
}

// analyzeResume extracts and classifies a resume and keeps the result in the
// session. Provider failures are recorded in the analysis, not as HTTP errors.
func (s *Server) analyzeResume(w http.ResponseWriter, r *http.Request) {
	if s.classifier == nil {
		writeError(w, http.StatusServiceUnavailable, "resume analysis is disabled")
		return
	}

	up, err := readUpload(w, r, "file")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	analysis := &session.ResumeAnalysis{Filename: up.filename}

	text := resume.Extract(up.filename, up.data)
	if resume.IsFailure(text) {
		analysis.Error = text
	} else {
		result := s.classifier.Classify(r.Context(), text)
		analysis.Labels = result.Labels
		analysis.Scores = result.Scores
		analysis.Error = result.Error
	}

	s.withSession(w, r, func(sess *session.Session) (any, error) {
		sess.SetResume(analysis)
		return sess.Snapshot(), nil
	})
}

func (s *Server) transcribe(w http.ResponseWriter, r *http.Request) {
	if s.transcriber == nil {
		writeError(w, http.StatusServiceUnavailable, "voice input is disabled")
		return
	}

	up, err := readUpload(w, r, "audio")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	text, err := s.transcriber.Transcribe(r.Context(), up.data, up.contentType)
	if err != nil {
		s.logger.Warn("transcription failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, transcribeResponse{Text: text})
}

func (s *Server) speak(w http.ResponseWriter, r *http.Request) {
	if s.speaker == nil {
		writeError(w, http.StatusServiceUnavailable, "voice output is disabled")
		return
	}

	var req speakRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	clip, err := s.speaker.Speak(r.Context(), req.Text)
	if err != nil {
		s.logger.Warn("speech synthesis failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	// The payload is already in memory; the temp file is not needed past here.
	clip.Release()

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Length", fmt.Sprint(len(clip.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(clip.Data)
}

type upload struct {
	filename    string
	contentType string
	data        []byte
}

func readUpload(w http.ResponseWriter, r *http.Request, field string) (*upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, fmt.Errorf("missing %q upload: %w", field, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	return &upload{
		filename:    header.Filename,
		contentType: header.Header.Get("Content-Type"),
		data:        data,
	}, nil
}
