package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Book — одна запись в списке книг. После создания не меняется.
type Book struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Pages  Pages  `json:"pages"`
}

// String — метод для красивого вывода в консоль.
func (b Book) String() string {
	return fmt.Sprintf("📚 %s\n   Автор: %s\n   Страниц: %s\n", b.Title, b.Author, b.Pages)
}

// Pages keeps the page count exactly as the user typed it.
// JSON input may carry it either as a string ("320") or as a number (320);
// output is always a string.
type Pages string

func (p *Pages) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "" || raw == "null" {
		*p = ""
		return nil
	}

	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("pages: %w", err)
		}
		*p = Pages(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("pages: %w", err)
	}
	*p = Pages(n.String())
	return nil
}

func (p Pages) String() string {
	return string(p)
}
