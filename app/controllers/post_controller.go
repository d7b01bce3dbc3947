package controllers

import (
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"log"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"bumpboard/app/models"
	"bumpboard/app/repositories"
	"bumpboard/app/services"
	"bumpboard/app/views"

	"github.com/gorilla/mux"
)

// PostController handles HTTP requests for the board
type PostController struct {
	postService *services.PostService
	attachments *services.AttachmentService
	templates   map[string]*template.Template
}

// NewPostController creates a new PostController
func NewPostController(postService *services.PostService, attachments *services.AttachmentService) *PostController {
	return &PostController{
		postService: postService,
		attachments: attachments,
		templates:   loadTemplates(),
	}
}

type mediaRef struct {
	Name string
	Kind string
}

var templateFuncs = template.FuncMap{
	// Posts are stored HTML-escaped, so their text is emitted as-is.
	"raw":   func(s string) template.HTML { return template.HTML(s) },
	"color": func(s string) template.CSS { return template.CSS(s) },
	"media": func(name, kind string) mediaRef { return mediaRef{Name: name, Kind: kind} },
}

// loadTemplates loads and parses all templates
func loadTemplates() map[string]*template.Template {
	templates := make(map[string]*template.Template)
	templates["index"] = template.Must(template.New("index").Funcs(templateFuncs).ParseFS(views.FS, "layout.html", "index.html"))
	templates["thread"] = template.Must(template.New("thread").Funcs(templateFuncs).ParseFS(views.FS, "layout.html", "thread.html"))
	return templates
}

// Index handles listing threads by most recent activity
func (pc *PostController) Index(w http.ResponseWriter, r *http.Request) {
	page := 1
	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil {
			page = p
		}
	}

	result, err := pc.postService.Page(page)
	if err != nil {
		log.Printf("listing page %d: %v", page, err)
		pc.sendError(w, r, "Failed to fetch posts", http.StatusInternalServerError)
		return
	}

	if isAPI(r) {
		pc.sendJSON(w, http.StatusOK, result)
		return
	}
	pc.render(w, r, "index", result)
}

// Show handles displaying a thread
func (pc *PostController) Show(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	thread, err := pc.postService.Thread(id)
	if errors.Is(err, repositories.ErrNotFound) {
		pc.sendError(w, r, "Post not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("loading thread %s: %v", id, err)
		pc.sendError(w, r, "Failed to fetch thread", http.StatusInternalServerError)
		return
	}

	if isAPI(r) {
		pc.sendJSON(w, http.StatusOK, thread)
		return
	}
	pc.render(w, r, "thread", thread)
}

// Create handles new threads and replies. Multipart bodies are streamed so
// the upload cap applies while reading.
func (pc *PostController) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, pc.attachments.MaxBytes())

	var (
		sub models.Submission
		att *models.Attachment
		err error
	)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		sub, att, err = pc.readMultipart(r)
	case "application/json":
		var body struct {
			Title    string `json:"title"`
			Message  string `json:"message"`
			ParentID string `json:"parent_id"`
		}
		var tooLarge *http.MaxBytesError
		if err = json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.As(err, &tooLarge) {
			err = &models.ValidationError{Field: "body", Reason: "Malformed request body."}
		}
		sub = models.Submission{Title: body.Title, Message: body.Message, ParentID: body.ParentID}
	default:
		err = r.ParseForm()
		sub = models.Submission{
			Title:    r.PostFormValue("title"),
			Message:  r.PostFormValue("message"),
			ParentID: r.PostFormValue("parent_id"),
		}
	}
	if err != nil {
		pc.attachments.Discard(att)
		pc.sendSubmitError(w, r, err)
		return
	}

	id, err := pc.postService.Submit(sub, att)
	if err != nil {
		pc.sendSubmitError(w, r, err)
		return
	}

	post, err := pc.postService.GetPost(id)
	if err != nil {
		log.Printf("reloading post %s: %v", id, err)
		pc.sendError(w, r, "Failed to load post", http.StatusInternalServerError)
		return
	}

	if isAPI(r) {
		pc.sendJSON(w, http.StatusCreated, post)
		return
	}
	if post.IsRoot() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/post/"+post.ParentID, http.StatusSeeOther)
}

// readMultipart walks the form parts in order. The first file part is handed
// to the attachment service as it streams in; unsupported files are dropped.
func (pc *PostController) readMultipart(r *http.Request) (models.Submission, *models.Attachment, error) {
	var sub models.Submission
	var att *models.Attachment

	mr, err := r.MultipartReader()
	if err != nil {
		return sub, nil, err
	}
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return sub, att, nil
		}
		if err != nil {
			return sub, att, err
		}

		switch part.FormName() {
		case "title", "message", "parent_id":
			data, err := io.ReadAll(part)
			if err != nil {
				part.Close()
				return sub, att, err
			}
			value := strings.ToValidUTF8(string(data), "\uFFFD")
			switch part.FormName() {
			case "title":
				sub.Title = value
			case "message":
				sub.Message = value
			case "parent_id":
				sub.ParentID = value
			}
		case "file":
			if part.FileName() == "" || att != nil {
				break
			}
			a, err := pc.attachments.Ingest(part.FileName(), part.Header.Get("Content-Type"), -1, part)
			switch {
			case err == nil:
				att = a
			case errors.Is(err, services.ErrUnsupportedMedia):
				log.Printf("dropping upload %q: %v", part.FileName(), err)
			default:
				part.Close()
				return sub, att, err
			}
		}
		part.Close()
	}
}

func (pc *PostController) sendSubmitError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *models.ValidationError
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &verr):
		pc.sendError(w, r, verr.Reason, http.StatusBadRequest)
	case errors.As(err, &tooLarge), errors.Is(err, services.ErrAttachmentTooLarge):
		pc.sendError(w, r, pc.attachments.TooLarge().Error(), http.StatusRequestEntityTooLarge)
	default:
		log.Printf("submitting post: %v", err)
		pc.sendError(w, r, "Failed to create post", http.StatusInternalServerError)
	}
}

// Helper methods for consistent response handling

func (pc *PostController) render(w http.ResponseWriter, r *http.Request, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pc.templates[name].ExecuteTemplate(w, "layout", data); err != nil {
		log.Printf("template %s: %v", name, err)
		pc.sendError(w, r, "Template error", http.StatusInternalServerError)
	}
}

func (pc *PostController) sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (pc *PostController) sendError(w http.ResponseWriter, r *http.Request, message string, status int) {
	if isAPI(r) {
		pc.sendJSON(w, status, map[string]string{"error": message})
		return
	}
	http.Error(w, message, status)
}

func isAPI(r *http.Request) bool {
	return r.Header.Get("Accept") == "application/json" || strings.HasPrefix(r.URL.Path, "/api")
}
