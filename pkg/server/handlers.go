package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/pipecheck/pkg/buildinfo"
	"github.com/matzehuels/pipecheck/pkg/errors"
	"github.com/matzehuels/pipecheck/pkg/pipeline"
)

// RootMessage is the banner returned by GET /.
const RootMessage = "Pipeline Parser API is running"

// ErrorBody is the JSON body of every error reply.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a machine-readable code and a readable message.
type ErrorDetail struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"message": RootMessage})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	info := buildinfo.Get()
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": info.Version,
		"commit":  info.Commit,
	})
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)

	p, err := pipeline.Decode(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			err = errors.New(errors.ErrCodeTooLarge, "request body exceeds %d bytes", tooLarge.Limit)
		}
		s.respondError(w, r, err)
		return
	}

	out, err := s.runner.Run(r.Context(), p)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if out.Cached {
		w.Header().Set("X-Cache", "hit")
	} else {
		w.Header().Set("X-Cache", "miss")
	}
	if !out.Report.IsAcyclic && out.Report.NodeCount > 0 {
		s.logger.Info("cycle rejected",
			"request_id", middleware.GetReqID(r.Context()),
			"cycle", out.Report.CycleString())
	}
	s.respondJSON(w, http.StatusOK, pipeline.NewResponse(out.Report.Result))
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.respondError(w, r, errors.New(errors.ErrCodeNotFound, "no route for %s", r.URL.Path))
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	s.respondError(w, r, errors.New(errors.ErrCodeMethodNotAllowed, "%s not allowed on %s", r.Method, r.URL.Path))
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Debug("encode response", "error", err)
	}
}

// respondError replies with the status mapped from err's code. Errors
// without a code are reported as internal and their text is not exposed.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	msg := errors.UserMessage(err)
	if code == "" || code == errors.ErrCodeInternal {
		s.logger.Error("request failed",
			"request_id", middleware.GetReqID(r.Context()),
			"error", err)
		code = errors.ErrCodeInternal
		msg = "internal server error"
	}
	s.respondJSON(w, errors.HTTPStatus(code), ErrorBody{Error: ErrorDetail{Code: code, Message: msg}})
}
