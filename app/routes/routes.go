package routes

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"bumpboard/app/controllers"
	"bumpboard/app/middleware"
	"bumpboard/app/services"

	"github.com/gorilla/mux"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping() error
}

// Deps are the components the router is built from.
type Deps struct {
	Posts       *services.PostService
	Attachments *services.AttachmentService
	Store       Pinger
	UploadDir   string
}

// SetupRoutes defines the application's routes and returns a router.
func SetupRoutes(deps Deps) *mux.Router {
	router := mux.NewRouter()

	// Apply global middleware
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders)
	router.Use(middleware.Compress)

	postController := controllers.NewPostController(deps.Posts, deps.Attachments)

	router.NotFoundHandler = http.HandlerFunc(notFound)

	// Uploaded attachments
	router.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.Dir(deps.UploadDir))))

	router.HandleFunc("/healthz", health(deps.Store)).Methods("GET")

	// Web routes
	router.HandleFunc("/", postController.Index).Methods("GET")
	router.HandleFunc("/upload", postController.Create).Methods("POST")
	router.HandleFunc("/post/{id:[A-Za-z0-9]+}", postController.Show).Methods("GET")

	// API routes with JSON content type
	api := router.PathPrefix("/api").Subrouter()
	api.Use(middleware.ContentTypeJSON)

	posts := api.PathPrefix("/posts").Subrouter()
	posts.HandleFunc("", postController.Index).Methods("GET")
	posts.HandleFunc("", postController.Create).Methods("POST")
	posts.HandleFunc("/{id:[A-Za-z0-9]+}", postController.Show).Methods("GET")

	return router
}

func notFound(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "Not found"})
		return
	}
	http.NotFound(w, r)
}

func health(store Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store != nil {
			if err := store.Ping(); err != nil {
				log.Printf("health check failed: %v", err)
				http.Error(w, "store unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	}
}
