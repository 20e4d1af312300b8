// AngelaMos | 2026
// server.go

// Package backendtest runs an in-process stand-in for the REST backend so the
// console can be exercised end to end in tests.
package backendtest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/templates/edition-console/internal/backend"
)

type Request struct {
	Method        string
	Path          string
	Authorization string
	Body          []byte
}

type account struct {
	password string
	user     backend.UserDTO
	token    string
}

type failure struct {
	status  int
	message string
}

type Server struct {
	*httptest.Server

	mu       sync.Mutex
	accounts map[string]account
	users    []backend.UserDTO
	editions []*backend.EditionDTO
	requests []Request
	nextID   int
	failNext *failure
}

func New(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		accounts: make(map[string]account),
		nextID:   1,
	}

	r := chi.NewRouter()
	r.Use(s.record)
	r.Post("/auth/login", s.login)

	r.Group(func(r chi.Router) {
		r.Use(s.requireToken)
		r.Get("/users", s.listUsers)
		r.Get("/editions/all", s.listEditions)
		r.Post("/editions", s.createEdition)
		r.Put("/editions/{id}", s.updateEdition)
		r.Delete("/editions/{id}", s.softDelete)
		r.Put("/editions/{id}/restore", s.restore)
		r.Delete("/editions/{id}/permanent", s.purge)
	})

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)

	return s
}

func (s *Server) AddAccount(email, password, token string, user backend.UserDTO) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts[strings.ToLower(email)] = account{
		password: password,
		user:     user,
		token:    token,
	}
	s.users = append(s.users, user)
}

// AddEdition seeds an edition; an empty ID gets the next sequential id.
func (s *Server) AddEdition(e backend.EditionDTO) backend.EditionDTO {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == "" {
		e.ID = backend.ID(strconv.Itoa(s.nextID))
	}
	s.nextID++

	stored := e
	s.editions = append(s.editions, &stored)
	return stored
}

func (s *Server) Edition(id string) (backend.EditionDTO, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.editions {
		if e.ID.String() == id {
			return *e, true
		}
	}
	return backend.EditionDTO{}, false
}

// FailNext makes the next request answer with the given status and message.
func (s *Server) FailNext(status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failNext = &failure{status: status, message: message}
}

func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

func (s *Server) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.requests)
}

func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = nil
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			dec := json.NewDecoder(r.Body)
			var raw json.RawMessage
			if err := dec.Decode(&raw); err == nil {
				body = raw
			}
		}

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:        r.Method,
			Path:          r.URL.Path,
			Authorization: r.Header.Get("Authorization"),
			Body:          body,
		})
		fail := s.failNext
		s.failNext = nil
		s.mu.Unlock()

		if fail != nil {
			writeError(w, fail.status, fail.message)
			return
		}

		r.Body = io.NopCloser(bytes.NewReader(body))
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

		s.mu.Lock()
		valid := false
		for _, a := range s.accounts {
			if token != "" && a.token == token {
				valid = true
				break
			}
		}
		s.mu.Unlock()

		if !valid {
			writeError(w, http.StatusUnauthorized, "invalid or missing token")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req backend.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	acc, ok := s.accounts[strings.ToLower(req.Email)]
	s.mu.Unlock()

	if !ok || acc.password != req.Password {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	writeData(w, http.StatusOK, map[string]any{
		"user":  acc.user,
		"token": acc.token,
	})
}

func (s *Server) listUsers(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	users := make([]backend.UserDTO, len(s.users))
	copy(users, s.users)
	s.mu.Unlock()

	writeData(w, http.StatusOK, users)
}

func (s *Server) listEditions(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	out := make([]backend.EditionDTO, 0, len(s.editions))
	for _, e := range s.editions {
		out = append(out, *e)
	}
	s.mu.Unlock()

	writeData(w, http.StatusOK, out)
}

func (s *Server) createEdition(w http.ResponseWriter, r *http.Request) {
	var req backend.EditionWriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	now := time.Now().UTC()
	status := req.Status
	if status == "" {
		status = "active"
	}

	created := s.AddEdition(backend.EditionDTO{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Status:      status,
		Features:    req.Features,
		CreatedAt:   backend.NewTimestamp(now),
		UpdatedAt:   backend.NewTimestamp(now),
	})

	writeData(w, http.StatusCreated, created)
}

func (s *Server) updateEdition(w http.ResponseWriter, r *http.Request) {
	var req backend.EditionWriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	s.mutate(w, chi.URLParam(r, "id"), func(e *backend.EditionDTO) {
		e.Name = req.Name
		e.Slug = req.Slug
		e.Description = req.Description
		e.Features = req.Features
	})
}

func (s *Server) softDelete(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, chi.URLParam(r, "id"), func(e *backend.EditionDTO) {
		e.Status = "deleted"
	})
}

func (s *Server) restore(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, chi.URLParam(r, "id"), func(e *backend.EditionDTO) {
		e.Status = "active"
	})
}

func (s *Server) purge(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.editions {
		if e.ID.String() == id {
			s.editions = append(s.editions[:i], s.editions[i+1:]...)
			writeData(w, http.StatusOK, nil)
			return
		}
	}

	writeError(w, http.StatusNotFound, "edition not found")
}

func (s *Server) mutate(w http.ResponseWriter, id string, fn func(*backend.EditionDTO)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.editions {
		if e.ID.String() == id {
			fn(e)
			now := time.Now().UTC()
			e.UpdatedAt = backend.NewTimestamp(now)
			writeData(w, http.StatusOK, e)
			return
		}
	}

	writeError(w, http.StatusNotFound, "edition not found")
}

func writeData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // test server
	_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": data})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // test server
	_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": message})
}
