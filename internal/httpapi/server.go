// Package httpapi exposes the query and mutation services as a JSON API.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"todo-tracker/internal/identity"
	"todo-tracker/internal/model"
	"todo-tracker/internal/service"
)

// Server wires the services to HTTP routes.
type Server struct {
	queries   *service.QueryService
	mutations *service.MutationService
	resolver  identity.Resolver
	tokens    TokenValidator
	log       *slog.Logger
	now       func() time.Time
}

func NewServer(queries *service.QueryService, mutations *service.MutationService, tokens TokenValidator, log *slog.Logger) *Server {
	return &Server{
		queries:   queries,
		mutations: mutations,
		resolver:  identity.ContextResolver{},
		tokens:    tokens,
		log:       log,
		now:       time.Now,
	}
}

// Handler returns the routed API with identity and request logging applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/ready", s.ready)
	mux.HandleFunc("GET /api/me", s.me)

	mux.HandleFunc("GET /api/todos", s.listTodos)
	mux.HandleFunc("GET /api/todos/due", s.listTodosByDueDate)
	mux.HandleFunc("GET /api/todos/week", s.listTodosThisWeek)
	mux.HandleFunc("GET /api/todos/{id}", s.getTodo)
	mux.HandleFunc("POST /api/todos", s.createTodo)
	mux.HandleFunc("PATCH /api/todos/{id}", s.updateTodo)
	mux.HandleFunc("DELETE /api/todos/{id}", s.deleteTodo)

	mux.HandleFunc("GET /api/categories", s.listCategories)
	mux.HandleFunc("POST /api/categories", s.createCategory)
	mux.HandleFunc("DELETE /api/categories/{id}", s.deleteCategory)

	return s.logRequests(identityMiddleware(s.tokens)(mux))
}

// ListenAndServe runs the API until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", "address", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// caller is the resolved user of r, or model.Anonymous.
func (s *Server) caller(r *http.Request) model.UserID {
	user, ok := s.resolver.Resolve(r.Context())
	if !ok {
		return model.Anonymous
	}
	return user
}
