// Package library holds the ordered, in-memory list of books.
package library

import (
	"sync"

	"booklist/internal/models"
)

// Library — упорядоченный список книг. Порядок вставки важен:
// индексы для удаления совпадают с порядком отрисовки.
type Library struct {
	mu    sync.Mutex
	books []models.Book
}

func New() *Library {
	return &Library{}
}

// AddBook appends the book to the end of the list. No validation.
func (l *Library) AddBook(book models.Book) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.books = append(l.books, book)
}

// RemoveBook deletes the book at index. An out-of-range index is a no-op;
// the result only reports whether something was removed.
func (l *Library) RemoveBook(index int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if index < 0 || index >= len(l.books) {
		return false
	}

	l.books = append(l.books[:index], l.books[index+1:]...)
	return true
}

// Books returns a copy of the list in insertion order.
func (l *Library) Books() []models.Book {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]models.Book, len(l.books))
	copy(out, l.books)
	return out
}

func (l *Library) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.books)
}

// Replace swaps the whole list, e.g. after restoring a snapshot.
func (l *Library) Replace(books []models.Book) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.books = make([]models.Book, len(books))
	copy(l.books, books)
}
