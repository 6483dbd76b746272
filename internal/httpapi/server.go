package httpapi

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"booklist/internal/models"
	"booklist/internal/render"
	"booklist/internal/service"
	"booklist/internal/textutil"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const maxImportBody = 1 << 20

type Server struct {
	books    *service.BookService
	botToken string
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// New builds the HTTP server. botToken enables the Mini App initData check
// on mutating routes; it may be empty.
func New(books *service.BookService, botToken string) *Server {
	return &Server{books: books, botToken: botToken}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/books", s.withOptionalUser(s.handleAddForm))
	mux.HandleFunc("/books/remove", s.withOptionalUser(s.handleRemoveForm))
	mux.HandleFunc("/movie", s.handleMovie)
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/books", s.withOptionalUser(s.handleBooks))
	mux.HandleFunc("/api/books/", s.withOptionalUser(s.handleBook))
	mux.HandleFunc("/api/import", s.withOptionalUser(s.handleImport))
	mux.HandleFunc("/api/palindrome", s.handlePalindrome)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", reqID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		mux.ServeHTTP(rec, r)
		log.Printf("http %s %s -> %d req_id=%s ua=%s", r.Method, r.URL.Path, rec.status, reqID, r.UserAgent())
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := render.Page(w, s.books.List()); err != nil {
		log.Printf("render: page failed err=%v", err)
	}
}

// handleAddForm is the form submit: add the book, then redirect so the
// browser shows an empty form over the redrawn list.
func (s *Server) handleAddForm(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid form"})
		return
	}

	book := models.Book{
		Title:  strings.TrimSpace(r.PostFormValue("title")),
		Author: strings.TrimSpace(r.PostFormValue("author")),
		Pages:  models.Pages(strings.TrimSpace(r.PostFormValue("pages"))),
	}
	books := s.books.Add(r.Context(), book)
	log.Printf("library: added title=%q len=%d", book.Title, len(books))

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleRemoveForm(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid form"})
		return
	}

	s.books.Remove(r.Context(), parseIndex(r.PostFormValue("index")))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleMovie(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := render.MovieCard(w, models.SampleMovie); err != nil {
		log.Printf("render: movie failed err=%v", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleBooks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.books.List())
	case http.MethodPost:
		var book models.Book
		if err := json.NewDecoder(r.Body).Decode(&book); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
			return
		}
		writeJSON(w, http.StatusCreated, s.books.Add(r.Context(), book))
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func (s *Server) handleBook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	idStr := strings.TrimPrefix(r.URL.Path, "/api/books/")
	books, _ := s.books.Remove(r.Context(), parseIndex(idStr))
	writeJSON(w, http.StatusOK, books)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	body := http.MaxBytesReader(w, r.Body, maxImportBody)
	books, n, err := s.books.Import(r.Context(), body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	log.Printf("library: imported count=%d len=%d", n, len(books))
	writeJSON(w, http.StatusOK, books)
}

func (s *Server) handlePalindrome(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get("text")
	writeJSON(w, http.StatusOK, map[string]any{
		"text":       text,
		"palindrome": textutil.IsPalindrome(text),
	})
}

// withOptionalUser checks Telegram Mini App initData when the request carries
// it and a bot token is configured. Requests without initData pass through:
// the list itself has no owners.
func (s *Server) withOptionalUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.botToken == "" {
			next(w, r)
			return
		}

		initData := extractInitData(r)
		if initData == "" {
			next(w, r)
			return
		}

		user, err := ValidateInitData(initData, s.botToken)
		if err != nil {
			log.Printf("auth: initData invalid len=%d remote=%s err=%v", len(initData), r.RemoteAddr, err)
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid initData"})
			return
		}

		log.Printf("auth: ok user_id=%d username=%s path=%s", user.ID, user.Username, r.URL.Path)
		next(w, r)
	}
}

// parseIndex maps anything that is not an integer to -1, which the
// library treats as out of range.
func parseIndex(v string) int {
	idx, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return -1
	}
	return idx
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// ListenAndServe serves h on addr until ctx is cancelled.
func ListenAndServe(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{Addr: addr, Handler: h}

	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
