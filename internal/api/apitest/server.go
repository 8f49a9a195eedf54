// Package apitest runs an in-memory myToDo/Recipe backend for tests.
package apitest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/idilsaglam/mytodo/internal/model"
)

type user struct {
	email     string
	hash      []byte
	createdAt time.Time
}

// recipe is stored the way the Mongo-backed service returns it.
type recipe struct {
	ID          primitive.ObjectID
	Name        string
	Ingredients []string
	Steps       []string
	ImageURL    string
	Favorite    bool
}

func (r recipe) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"_id":         map[string]string{"$oid": r.ID.Hex()},
		"name":        r.Name,
		"ingredients": r.Ingredients,
		"steps":       r.Steps,
		"imageUrl":    r.ImageURL,
	})
}

type failure struct {
	status  int
	message string
}

type Server struct {
	*httptest.Server

	mu       sync.Mutex
	users    map[string]user
	tokens   map[string]string
	todos    map[string][]model.Todo
	recipes  []recipe
	uploads  map[string][]byte
	failures map[string]failure
	calls    map[string]int
	nextID   int
}

// New starts a server and closes it when t finishes.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		users:    map[string]user{},
		tokens:   map[string]string{},
		todos:    map[string][]model.Todo{},
		uploads:  map[string][]byte{},
		failures: map[string]failure{},
		calls:    map[string]int{},
	}
	s.Server = httptest.NewServer(s.router())
	t.Cleanup(s.Close)
	return s
}

func (s *Server) router() http.Handler {
	r := mux.NewRouter()
	r.Use(s.track)
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/login", s.login).Methods(http.MethodPost)
	api.HandleFunc("/auth/register", s.register).Methods(http.MethodPost)

	authed := api.NewRoute().Subrouter()
	authed.Use(s.requireToken)
	authed.HandleFunc("/profile", s.profile).Methods(http.MethodGet)
	authed.HandleFunc("/todos", s.listTodos).Methods(http.MethodGet)
	authed.HandleFunc("/todos", s.createTodo).Methods(http.MethodPost)
	authed.HandleFunc("/todos/{id}", s.updateTodo).Methods(http.MethodPut)
	authed.HandleFunc("/todos/{id}", s.deleteTodo).Methods(http.MethodDelete)
	authed.HandleFunc("/recipes", s.listRecipes).Methods(http.MethodGet)
	authed.HandleFunc("/recipes", s.createRecipe).Methods(http.MethodPost)
	authed.HandleFunc("/recipes/{id}", s.updateRecipe).Methods(http.MethodPut)
	authed.HandleFunc("/recipes/{id}", s.deleteRecipe).Methods(http.MethodDelete)
	authed.HandleFunc("/recipes/{id}/favorite", s.favoriteRecipe).Methods(http.MethodPut)
	authed.HandleFunc("/upload", s.upload).Methods(http.MethodPost)
	return r
}

// AddUser registers a user directly.
func (s *Server) AddUser(username, email, password string) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[username] = user{email: email, hash: hash, createdAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)}
}

// IssueToken returns a valid token for username without a login call.
func (s *Server) IssueToken(username string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	tok := uuid.NewString()
	s.tokens[tok] = username
	return tok
}

func (s *Server) SeedTodos(username string, todos ...model.Todo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.todos[username] = append(s.todos[username], todos...)
}

func (s *Server) Todos(username string) []model.Todo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Todo(nil), s.todos[username]...)
}

// SeedRecipe stores a recipe and returns its id.
func (s *Server) SeedRecipe(name string, ingredients, steps []string) model.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := recipe{ID: primitive.NewObjectID(), Name: name, Ingredients: ingredients, Steps: steps}
	s.recipes = append(s.recipes, r)
	return model.ID(r.ID.Hex())
}

func (s *Server) RecipeFavorite(id model.ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.recipes {
		if r.ID.Hex() == id.String() {
			return r.Favorite
		}
	}
	return false
}

// Upload returns the bytes stored under url.
func (s *Server) Upload(url string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uploads[url]
}

// Fail makes the next request matching method and route template (e.g.
// "/api/todos/{id}") answer with status and message.
func (s *Server) Fail(method, template string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+template] = failure{status: status, message: message}
}

// Calls counts requests per "METHOD /template".
func (s *Server) Calls(method, template string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method+" "+template]
}

func (s *Server) track(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				key = r.Method + " " + tpl
			}
		}
		s.mu.Lock()
		s.calls[key]++
		f, ok := s.failures[key]
		delete(s.failures, key)
		s.mu.Unlock()
		if ok {
			if f.message == "" {
				w.WriteHeader(f.status)
				return
			}
			writeJSON(w, f.status, map[string]string{"message": f.message})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		s.mu.Lock()
		name, ok := s.tokens[tok]
		s.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
			return
		}
		r.Header.Set("X-Test-User", name)
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var in struct{ Username, Password string }
	if err := decode(r, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "bad request"})
		return
	}
	s.mu.Lock()
	u, ok := s.users[in.Username]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(u.hash, []byte(in.Password)) != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid username or password"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": map[string]string{"token": s.IssueToken(in.Username)}})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var in struct{ Username, Email, Password string }
	if err := decode(r, &in); err != nil || in.Username == "" || in.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Username and password are required"})
		return
	}
	s.mu.Lock()
	_, exists := s.users[in.Username]
	s.mu.Unlock()
	if exists {
		writeJSON(w, http.StatusConflict, map[string]string{"message": "User already exists"})
		return
	}
	s.AddUser(in.Username, in.Email, in.Password)
	writeJSON(w, http.StatusCreated, map[string]string{"message": "registered"})
}

func (s *Server) profile(w http.ResponseWriter, r *http.Request) {
	name := r.Header.Get("X-Test-User")
	s.mu.Lock()
	u := s.users[name]
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{
		"username":  name,
		"email":     u.email,
		"createdAt": u.createdAt,
	}})
}

func (s *Server) listTodos(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"data": s.Todos(r.Header.Get("X-Test-User"))})
}

func (s *Server) createTodo(w http.ResponseWriter, r *http.Request) {
	var in struct{ Title, Description string }
	if err := decode(r, &in); err != nil || in.Title == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Title is required"})
		return
	}
	name := r.Header.Get("X-Test-User")
	s.mu.Lock()
	s.nextID++
	td := model.Todo{ID: model.ID(fmt.Sprintf("t%d", s.nextID)), Title: in.Title, Description: in.Description}
	s.todos[name] = append([]model.Todo{td}, s.todos[name]...)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, map[string]any{"data": td})
}

func (s *Server) updateTodo(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Title       *string
		Description *string
		Completed   *bool
	}
	if err := decode(r, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "bad request"})
		return
	}
	name, id := r.Header.Get("X-Test-User"), model.ID(mux.Vars(r)["id"])
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, td := range s.todos[name] {
		if td.ID != id {
			continue
		}
		if in.Title != nil {
			td.Title = *in.Title
		}
		if in.Description != nil {
			td.Description = *in.Description
		}
		if in.Completed != nil {
			td.Completed = *in.Completed
		}
		s.todos[name][i] = td
		writeJSON(w, http.StatusOK, map[string]any{"data": td})
		return
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Todo not found"})
}

func (s *Server) deleteTodo(w http.ResponseWriter, r *http.Request) {
	name, id := r.Header.Get("X-Test-User"), model.ID(mux.Vars(r)["id"])
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, td := range s.todos[name] {
		if td.ID == id {
			s.todos[name] = append(s.todos[name][:i], s.todos[name][i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Todo not found"})
}

func (s *Server) listRecipes(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := append([]recipe{}, s.recipes...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"data": out})
}

type recipeInput struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Ingredients string `json:"ingredients"`
	Steps       string `json:"steps"`
	ImageURL    string `json:"imageUrl"`
}

func (in recipeInput) label() string {
	if in.Name != "" {
		return in.Name
	}
	return in.Title
}

func (s *Server) createRecipe(w http.ResponseWriter, r *http.Request) {
	var in recipeInput
	if err := decode(r, &in); err != nil || in.label() == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Name is required"})
		return
	}
	rc := recipe{
		ID:          primitive.NewObjectID(),
		Name:        in.label(),
		Ingredients: []string{in.Ingredients},
		Steps:       []string{in.Steps},
		ImageURL:    in.ImageURL,
	}
	s.mu.Lock()
	s.recipes = append([]recipe{rc}, s.recipes...)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, map[string]any{"data": rc})
}

// updateRecipe answers without the item, as the recipe service does.
func (s *Server) updateRecipe(w http.ResponseWriter, r *http.Request) {
	var in recipeInput
	if err := decode(r, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "bad request"})
		return
	}
	s.withRecipe(w, mux.Vars(r)["id"], func(rc *recipe) {
		rc.Name = in.label()
		rc.Ingredients = []string{in.Ingredients}
		rc.Steps = []string{in.Steps}
		rc.ImageURL = in.ImageURL
		writeJSON(w, http.StatusOK, map[string]string{"message": "updated"})
	})
}

func (s *Server) favoriteRecipe(w http.ResponseWriter, r *http.Request) {
	var in struct {
		IsFavorite bool `json:"isFavorite"`
	}
	if err := decode(r, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "bad request"})
		return
	}
	s.withRecipe(w, mux.Vars(r)["id"], func(rc *recipe) {
		rc.Favorite = in.IsFavorite
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
	})
}

func (s *Server) deleteRecipe(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, rc := range s.recipes {
		if rc.ID.Hex() == id {
			s.recipes = append(s.recipes[:i], s.recipes[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Recipe not found"})
}

func (s *Server) withRecipe(w http.ResponseWriter, id string, fn func(*recipe)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.recipes {
		if s.recipes[i].ID.Hex() == id {
			fn(&s.recipes[i])
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Recipe not found"})
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	f, hdr, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "file is required"})
		return
	}
	defer f.Close()
	b, err := io.ReadAll(f)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}
	url := s.URL + "/uploads/" + hdr.Filename
	s.mu.Lock()
	s.uploads[url] = b
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}
