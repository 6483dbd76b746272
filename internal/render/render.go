// Package render draws the book list from scratch on every call.
// Nothing is diffed: each call produces the full list for the given books.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strings"

	"booklist/internal/models"
)

// RemovePath is where the Remove buttons post their data-index.
const RemovePath = "/books/remove"

const listTmpl = `{{define "list"}}<div id="book-list">
{{- range $i, $b := .}}
  <div class="card">
    <h3>{{$b.Title}}</h3>
    <p><strong>Author:</strong> {{$b.Author}}</p>
    <p><strong>Pages:</strong> {{$b.Pages}}</p>
    <form method="post" action="` + RemovePath + `">
      <button type="submit" name="index" value="{{$i}}" data-index="{{$i}}">Remove</button>
    </form>
  </div>
{{- end}}
</div>{{end}}`

const pageTmpl = `{{define "page"}}<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>Book List</title>
</head>
<body>
  <h1>Book List</h1>
  <form id="book-form" method="post" action="/books">
    <input id="title" name="title" placeholder="Title">
    <input id="author" name="author" placeholder="Author">
    <input id="pages" name="pages" placeholder="Pages">
    <button type="submit">Add Book</button>
  </form>
  {{template "list" .}}
</body>
</html>
{{end}}`

const movieTmpl = `{{define "movie"}}<div id="movie-container">
  <h2>{{.Title}}</h2>
  <p><strong>Year:</strong> {{.Year}}</p>
  <p><strong>Genre:</strong> {{.Genre}}</p>
  <p><strong>IMDB Rating:</strong> {{.Rating}}</p>
</div>
{{end}}`

var templates = template.Must(template.New("render").Parse(listTmpl + pageTmpl + movieTmpl))

// Books writes the #book-list container with one card per book.
func Books(w io.Writer, books []models.Book) error {
	if err := templates.ExecuteTemplate(w, "list", books); err != nil {
		return fmt.Errorf("render list: %w", err)
	}
	return nil
}

// Page writes the whole page: the add form followed by the list.
func Page(w io.Writer, books []models.Book) error {
	if err := templates.ExecuteTemplate(w, "page", books); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}

// PageBytes is Page into a buffer, for exports.
func PageBytes(books []models.Book) ([]byte, error) {
	var buf bytes.Buffer
	if err := Page(&buf, books); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func MovieCard(w io.Writer, movie models.Movie) error {
	if err := templates.ExecuteTemplate(w, "movie", movie); err != nil {
		return fmt.Errorf("render movie: %w", err)
	}
	return nil
}

// Text renders the list as plain text, one numbered card per book.
func Text(books []models.Book) string {
	return TextRange(books, 0, len(books))
}

// TextRange renders books[start:end], numbering each card by its index in
// the whole list so the numbers match the Remove buttons.
func TextRange(books []models.Book, start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(books) {
		end = len(books)
	}
	if start >= end {
		return "📭 Список пуст."
	}

	var sb strings.Builder
	for i := start; i < end; i++ {
		if i > start {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%d. %s", i, books[i].String())
	}
	return sb.String()
}
