package httpapi

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booklist/internal/library"
	"booklist/internal/models"
	"booklist/internal/render"
	"booklist/internal/service"
)

func newTestServer() http.Handler {
	return New(service.NewBookService(library.New(), nil), "").Handler()
}

func do(t *testing.T, h http.Handler, method, target string, body string, contentType string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func postForm(t *testing.T, h http.Handler, target string, values url.Values) *httptest.ResponseRecorder {
	t.Helper()
	return do(t, h, http.MethodPost, target, values.Encode(), "application/x-www-form-urlencoded")
}

func decodeBooks(t *testing.T, rec *httptest.ResponseRecorder) []models.Book {
	t.Helper()

	var books []models.Book
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &books))
	return books
}

func pageTitles(t *testing.T, h http.Handler) []string {
	t.Helper()

	rec := do(t, h, http.MethodGet, "/", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)

	var titles []string
	doc.Find("#book-list .card h3").Each(func(_ int, s *goquery.Selection) {
		titles = append(titles, s.Text())
	})
	return titles
}

func TestFormAddThenRender(t *testing.T) {
	h := newTestServer()

	for _, title := range []string{"Dune", "Emma", "Solaris"} {
		rec := postForm(t, h, "/books", url.Values{
			"title":  {"  " + title + "  "},
			"author": {"someone"},
			"pages":  {"100"},
		})
		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("Location"))
	}

	assert.Equal(t, []string{"Dune", "Emma", "Solaris"}, pageTitles(t, h))
}

func TestFormAddAcceptsEmptyFields(t *testing.T) {
	h := newTestServer()

	rec := postForm(t, h, "/books", url.Values{})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	books := decodeBooks(t, do(t, h, http.MethodGet, "/api/books", "", ""))
	assert.Equal(t, []models.Book{{}}, books)
}

func TestFormRemoveUsesRenderedIndex(t *testing.T) {
	h := newTestServer()
	for _, title := range []string{"A", "B", "C"} {
		postForm(t, h, "/books", url.Values{"title": {title}})
	}

	rec := postForm(t, h, "/books/remove", url.Values{"index": {"1"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, []string{"A", "C"}, pageTitles(t, h))

	// Rendered indices were shifted down: "C" now sits at 1.
	postForm(t, h, "/books/remove", url.Values{"index": {"1"}})
	assert.Equal(t, []string{"A"}, pageTitles(t, h))
}

func TestFormRemoveInvalidIndexIsNoop(t *testing.T) {
	h := newTestServer()
	postForm(t, h, "/books", url.Values{"title": {"A"}})

	for _, idx := range []string{"", "x", "-1", "9"} {
		rec := postForm(t, h, "/books/remove", url.Values{"index": {idx}})
		require.Equal(t, http.StatusSeeOther, rec.Code)
	}
	assert.Equal(t, []string{"A"}, pageTitles(t, h))
}

func TestFormMethodNotAllowed(t *testing.T) {
	h := newTestServer()

	assert.Equal(t, http.StatusMethodNotAllowed, do(t, h, http.MethodGet, "/books", "", "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, h, http.MethodGet, "/books/remove", "", "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, h, http.MethodPost, "/", "", "").Code)
}

func TestUnknownPath(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, do(t, newTestServer(), http.MethodGet, "/nope", "", "").Code)
}

func TestAPIAddAcceptsStringOrNumberPages(t *testing.T) {
	h := newTestServer()

	rec := do(t, h, http.MethodPost, "/api/books", `{"title":"Dune","author":"Frank Herbert","pages":412}`, "application/json")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/books", `{"title":"Emma","author":"Jane Austen","pages":"474"}`, "application/json")
	require.Equal(t, http.StatusCreated, rec.Code)

	books := decodeBooks(t, rec)
	assert.Equal(t, []models.Book{
		{Title: "Dune", Author: "Frank Herbert", Pages: "412"},
		{Title: "Emma", Author: "Jane Austen", Pages: "474"},
	}, books)
	assert.Contains(t, rec.Body.String(), `"pages":"412"`)
}

func TestAPIAddInvalidJSON(t *testing.T) {
	h := newTestServer()

	rec := do(t, h, http.MethodPost, "/api/books", `{"title":`, "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid json")
}

func TestAPIListEmpty(t *testing.T) {
	rec := do(t, newTestServer(), http.MethodGet, "/api/books", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestAPIDelete(t *testing.T) {
	h := newTestServer()
	for _, title := range []string{"A", "B", "C"} {
		do(t, h, http.MethodPost, "/api/books", `{"title":"`+title+`"}`, "application/json")
	}

	rec := do(t, h, http.MethodDelete, "/api/books/0", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	books := decodeBooks(t, rec)
	require.Len(t, books, 2)
	assert.Equal(t, "B", books[0].Title)

	rec = do(t, h, http.MethodDelete, "/api/books/7", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBooks(t, rec), 2)

	assert.Equal(t, http.StatusMethodNotAllowed, do(t, h, http.MethodGet, "/api/books/0", "", "").Code)
}

func TestAPIImport(t *testing.T) {
	h := newTestServer()

	var page bytes.Buffer
	require.NoError(t, render.Page(&page, []models.Book{
		{Title: "Dune", Author: "Frank Herbert", Pages: "412"},
		{Title: "Emma", Author: "Jane Austen", Pages: "474"},
	}))

	rec := do(t, h, http.MethodPost, "/api/import", page.String(), "text/html")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBooks(t, rec), 2)
	assert.Equal(t, []string{"Dune", "Emma"}, pageTitles(t, h))
}

func TestMoviePage(t *testing.T) {
	rec := do(t, newTestServer(), http.MethodGet, "/movie", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<h2>Alice in Wonderland</h2>")
}

func TestPalindrome(t *testing.T) {
	h := newTestServer()

	rec := do(t, h, http.MethodGet, "/api/palindrome?text="+url.QueryEscape("A man, a plan, a canal: Panama"), "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"text":"A man, a plan, a canal: Panama","palindrome":true}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/palindrome?text=Hippopotamus", "", "")
	assert.JSONEq(t, `{"text":"Hippopotamus","palindrome":false}`, rec.Body.String())
}

func TestHealthAndRequestID(t *testing.T) {
	h := newTestServer()

	rec := do(t, h, http.MethodGet, "/api/health", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "fixed-id")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "fixed-id", rec.Header().Get("X-Request-ID"))
}
