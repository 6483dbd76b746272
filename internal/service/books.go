package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"

	"booklist/internal/library"
	"booklist/internal/models"
	"booklist/internal/parser"
)

// Store is the optional snapshot backend (see internal/db).
type Store interface {
	SaveBooks(ctx context.Context, books []models.Book) error
	LoadBooks(ctx context.Context) ([]models.Book, error)
}

// BookService — бизнес-логика поверх Library, общая для HTTP и бота.
// Мутация и запись снимка выполняются под одной блокировкой.
type BookService struct {
	lib   *library.Library
	store Store
	mu    sync.Mutex
}

// NewBookService wires lib to store. store may be nil.
func NewBookService(lib *library.Library, store Store) *BookService {
	return &BookService{
		lib:   lib,
		store: store,
	}
}

func (s *BookService) List() []models.Book {
	return s.lib.Books()
}

// Add appends the book and returns the list as it should now be rendered.
func (s *BookService) Add(ctx context.Context, book models.Book) []models.Book {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lib.AddBook(book)
	books := s.lib.Books()
	s.persist(ctx, books)
	return books
}

// Remove deletes the book at index. Out-of-range indices leave the list as is.
func (s *BookService) Remove(ctx context.Context, index int) ([]models.Book, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := s.lib.RemoveBook(index)
	books := s.lib.Books()
	if removed {
		s.persist(ctx, books)
	} else {
		log.Printf("library: remove index=%d out of range len=%d", index, len(books))
	}
	return books, removed
}

// Import appends every book card found in the HTML body, in document order.
func (s *BookService) Import(ctx context.Context, body io.Reader) ([]models.Book, int, error) {
	parsed, err := parser.Books(body)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка импорта: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range parsed {
		s.lib.AddBook(b)
	}
	books := s.lib.Books()
	if len(parsed) > 0 {
		s.persist(ctx, books)
	}
	return books, len(parsed), nil
}

// Restore replaces the list with the stored snapshot. Without a store it does nothing.
func (s *BookService) Restore(ctx context.Context) (int, error) {
	if s.store == nil {
		return 0, nil
	}

	books, err := s.store.LoadBooks(ctx)
	if err != nil {
		return 0, fmt.Errorf("ошибка восстановления: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lib.Replace(books)
	return len(books), nil
}

// persist writes the snapshot. A failure is only logged: the list in memory wins.
func (s *BookService) persist(ctx context.Context, books []models.Book) {
	if s.store == nil {
		return
	}
	if err := s.store.SaveBooks(context.WithoutCancel(ctx), books); err != nil {
		log.Printf("store: save snapshot failed books=%d err=%v", len(books), err)
	}
}
