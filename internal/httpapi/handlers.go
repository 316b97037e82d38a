package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/picloop/identity/internal/accounts"
	"github.com/picloop/identity/internal/common"
)

// maxUploadSize caps the multipart registration body (8 MiB).
const maxUploadSize = 8 << 20

// genericLoginFailure is the public message for every login failure, so
// responses do not reveal whether the email or the password was wrong.
const genericLoginFailure = "invalid email or password"

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type googleLoginRequest struct {
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Image    string `json:"image"`
}

type userResponse struct {
	Success bool                 `json:"success"`
	Message string               `json:"message,omitempty"`
	User    *accounts.PublicView `json:"user"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {

	// MaxBytesReader enforces the cap; the ParseMultipartForm argument
	// only sets the in-memory buffer threshold.
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.writeError(r, w, "register", badRequest("request body exceeds the upload limit"))
			return
		}
		s.writeError(r, w, "register", badRequest("a multipart form with a profile image is required"))
		return
	}

	params := accounts.RegisterParams{
		FullName: r.FormValue("fullName"),
		UserName: r.FormValue("userName"),
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
	}

	if file, header, err := r.FormFile("profileImage"); err == nil {
		defer file.Close()
		content, err := io.ReadAll(file)
		if err != nil {
			s.writeError(r, w, "register", badRequest("could not read profile image"))
			return
		}
		params.Profile = &accounts.ProfileUpload{
			FileName:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Content:     content,
		}
	}

	view, err := s.accounts.Register(r.Context(), params)
	if err != nil {
		s.writeError(r, w, "register", err)
		return
	}

	recordOutcome("register", nil)
	writeJSON(w, http.StatusCreated, userResponse{Success: true, Message: "User registered successfully", User: view})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(r, w, "login", badRequest("invalid request body"))
		return
	}

	view, err := s.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(r, w, "login", err)
		return
	}

	recordOutcome("login", nil)
	writeJSON(w, http.StatusOK, userResponse{Success: true, User: view})
}

func (s *Server) handleGoogleLogin(w http.ResponseWriter, r *http.Request) {

	var req googleLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(r, w, "federated_login", badRequest("invalid request body"))
		return
	}

	view, err := s.accounts.FederatedLogin(r.Context(), req.Email, req.FullName, req.Image)
	if err != nil {
		s.writeError(r, w, "federated_login", err)
		return
	}

	recordOutcome("federated_login", nil)
	writeJSON(w, http.StatusOK, userResponse{Success: true, User: view})
}

// badRequest marks a malformed request body as a validation failure
// before the service layer is reached.
func badRequest(msg string) error {
	return fmt.Errorf("%w: %s", common.ErrorValidation, msg)
}

// writeError maps an error kind to its HTTP status and body. Login
// failures share one generic message regardless of the failed factor.
func (s *Server) writeError(r *http.Request, w http.ResponseWriter, operation string, err error) {

	recordOutcome(operation, err)

	switch {
	case errors.Is(err, common.ErrorValidation):
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: err.Error()})
	case errors.Is(err, common.ErrorAlreadyExists):
		writeJSON(w, http.StatusConflict, errorResponse{Message: err.Error()})
	case errors.Is(err, common.ErrorNotFound), errors.Is(err, common.ErrorUnauthorized):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Message: genericLoginFailure})
	default:
		s.logger.Error(r.Context(), "request failed", "operation", operation, "error", err.Error())
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "internal server error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
