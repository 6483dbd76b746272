package parser

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"booklist/internal/models"
)

// Card is one rendered book card together with the index on its Remove button.
// Index is -1 when the card carries no usable data-index.
type Card struct {
	Index int
	Book  models.Book
}

// ParseCards принимает поток HTML и возвращает карточки книг в порядке документа.
// Карточки ищутся внутри #book-list; если контейнера нет, берутся все .card на странице.
// Пробелы по краям title, author и pages обрезаются, поэтому render -> ParseCards
// возвращает " Dune " как "Dune".
func ParseCards(body io.Reader) ([]Card, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения HTML: %w", err)
	}

	root := doc.Find("#book-list").First()
	if root.Length() == 0 {
		root = doc.Selection
	}

	var cards []Card
	root.Find(".card").Each(func(_ int, s *goquery.Selection) {
		card := Card{
			Index: -1,
			Book: models.Book{
				Title:  strings.TrimSpace(s.Find("h3").First().Text()),
				Author: labeledValue(s, "Author:"),
				Pages:  models.Pages(labeledValue(s, "Pages:")),
			},
		}

		if v, ok := s.Find("[data-index]").First().Attr("data-index"); ok {
			if idx, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				card.Index = idx
			}
		}

		cards = append(cards, card)
	})

	return cards, nil
}

// Books is ParseCards without the indices.
func Books(body io.Reader) ([]models.Book, error) {
	cards, err := ParseCards(body)
	if err != nil {
		return nil, err
	}

	books := make([]models.Book, 0, len(cards))
	for _, c := range cards {
		books = append(books, c.Book)
	}
	return books, nil
}

// labeledValue finds <p><strong>Label</strong> value</p> and returns value.
func labeledValue(card *goquery.Selection, label string) string {
	var value string
	card.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		strong := strings.TrimSpace(p.Find("strong").First().Text())
		if !strings.EqualFold(strong, label) {
			return true
		}
		text := strings.TrimSpace(p.Text())
		value = strings.TrimSpace(strings.TrimPrefix(text, strong))
		return false
	})
	return value
}
