package auth

import (
	"context"
	"net"
	"net/http"
	"strconv"

	"github.com/Lohit-Behera/canva/internal/api"
	"github.com/Lohit-Behera/canva/internal/apperr"
	"github.com/Lohit-Behera/canva/internal/media"
	"github.com/Lohit-Behera/canva/internal/models"
)

const (
	defaultActivityLimit = 20
	maxActivityLimit     = 100
)

// Handler holds auth-related HTTP handlers.
type Handler struct {
	svc     *Service
	cookies Cookies
}

func NewHandler(svc *Service, cookies Cookies) *Handler {
	return &Handler{svc: svc, cookies: cookies}
}

// Register creates a new user from a multipart form with an avatar file.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	reg, err := models.NewRegistration(
		r.FormValue("name"),
		r.FormValue("email"),
		r.FormValue("password"),
		r.FormValue("confirmPassword"),
	)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	if err := h.svc.Register(withClient(r), reg, media.FromContext(r.Context())); err != nil {
		api.WriteError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, nil, "User created successfully.")
}

// Login authenticates a user and sets the token cookies.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.WriteError(w, r, err)
		return
	}
	creds, err := models.NewCredentials(req.Email, req.Password)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	sess, err := h.svc.Login(withClient(r), creds)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}
	h.cookies.Set(w, sess.Tokens)
	api.WriteJSON(w, http.StatusOK, sess.Profile, sess.Message)
}

// GoogleAuth signs in with a Google authorization code.
func (h *Handler) GoogleAuth(w http.ResponseWriter, r *http.Request) {
	var req models.GoogleAuthRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.WriteError(w, r, err)
		return
	}

	sess, err := h.svc.GoogleAuth(withClient(r), req.Token)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}
	h.cookies.Set(w, sess.Tokens)
	api.WriteJSON(w, http.StatusOK, sess.Profile, sess.Message)
}

// Logout drops the stored refresh token and clears the cookies.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	id := IdentityFrom(r.Context())
	if id == nil {
		api.WriteError(w, r, apperr.Auth(msgUnauthorized))
		return
	}
	if err := h.svc.Logout(withClient(r), id); err != nil {
		api.WriteError(w, r, err)
		return
	}
	h.cookies.Clear(w)
	api.WriteJSON(w, http.StatusOK, nil, "Logout successful.")
}

// Details returns the currently authenticated user.
func (h *Handler) Details(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Details(r.Context(), UserID(r.Context()))
	if err != nil {
		api.WriteError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, d, "User found successfully.")
}

// Activity lists the caller's recent sign-in events. ?limit= caps the count.
func (h *Handler) Activity(w http.ResponseWriter, r *http.Request) {
	limit := defaultActivityLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			api.WriteError(w, r, apperr.Validation("Limit must be a positive number."))
			return
		}
		limit = min(n, maxActivityLimit)
	}

	events, err := h.svc.Activity(r.Context(), UserID(r.Context()), limit)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, events, "Activity found successfully.")
}

func withClient(r *http.Request) context.Context {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	return WithClientInfo(r.Context(), ClientInfo{IP: ip, UserAgent: r.UserAgent()})
}
