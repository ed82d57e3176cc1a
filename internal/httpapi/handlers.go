package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"todo-tracker/internal/model"
	"todo-tracker/internal/service"
)

type meResponse struct {
	UserID *model.UserID `json:"userId"`
}

type createCategoryRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (s *Server) ready(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	var resp meResponse
	if user := s.caller(r); !user.IsAnonymous() {
		resp.UserID = &user
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) listTodos(w http.ResponseWriter, r *http.Request) {
	user := s.caller(r)

	var (
		todos []model.Todo
		err   error
	)
	if raw := r.URL.Query().Get("completed"); raw != "" {
		completed, parseErr := strconv.ParseBool(raw)
		if parseErr != nil {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid completed value %q", raw))
			return
		}
		todos, err = s.queries.ListTodosByCompleted(r.Context(), user, completed)
	} else {
		todos, err = s.queries.ListTodos(r.Context(), user)
	}
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, todos)
}

func (s *Server) listTodosByDueDate(w http.ResponseWriter, r *http.Request) {
	start, err := queryInt64(r, "start")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	end, err := queryInt64(r, "end")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	todos, err := s.queries.ListTodosByDueDate(r.Context(), s.caller(r), start, end)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, todos)
}

func (s *Server) listTodosThisWeek(w http.ResponseWriter, r *http.Request) {
	start, end := service.WeekBounds(s.now())

	todos, err := s.queries.ListTodosByDueDate(r.Context(), s.caller(r), start.UnixMilli(), end.UnixMilli())
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, todos)
}

func (s *Server) getTodo(w http.ResponseWriter, r *http.Request) {
	todo, err := s.queries.GetTodo(r.Context(), s.caller(r), r.PathValue("id"))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, todo)
}

func (s *Server) createTodo(w http.ResponseWriter, r *http.Request) {
	var input service.TodoInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	todo, err := s.mutations.CreateTodo(r.Context(), s.caller(r), input)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, todo)
}

func (s *Server) updateTodo(w http.ResponseWriter, r *http.Request) {
	var patch model.TodoPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.mutations.UpdateTodo(r.Context(), s.caller(r), r.PathValue("id"), patch); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deleteTodo(w http.ResponseWriter, r *http.Request) {
	if err := s.mutations.DeleteTodo(r.Context(), s.caller(r), r.PathValue("id")); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.queries.ListCategories(r.Context(), s.caller(r))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, categories)
}

func (s *Server) createCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category, err := s.mutations.CreateCategory(r.Context(), s.caller(r), req.Name, req.Color)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, category)
}

func (s *Server) deleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.mutations.DeleteCategory(r.Context(), s.caller(r), r.PathValue("id")); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func queryInt64(r *http.Request, name string) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, fmt.Errorf("%s is required", name)
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q", name, raw)
	}
	return v, nil
}
