package telegram

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"booklist/internal/models"
	"booklist/internal/render"
	"booklist/internal/service"
	"booklist/internal/storage"
)

type Bot struct {
	bot        *tgbotapi.BotAPI
	books      *service.BookService
	storageDir string
}

func NewBot(token string, client *http.Client, books *service.BookService, storageDir string) (*Bot, error) {
	bot, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, client)
	if err != nil {
		return nil, err
	}

	bot.Debug = false
	log.Printf("Авторизован как %s", bot.Self.UserName)

	return &Bot{
		bot:        bot,
		books:      books,
		storageDir: storageDir,
	}, nil
}

const (
	defaultPageSize = 10
	cbRemovePrefix  = "rm:"
	cbPagePrefix    = "page:"
	maxExportSize   = 10 * 1024 * 1024

	// Telegram limit for message text.
	maxMessageRunes = 4096

	helpText = "Привет! Это список книг.\n" +
		"/list — показать список\n" +
		"/add Название | Автор | Страниц — добавить книгу\n" +
		"/export — прислать страницу со списком"
)

// Start — главный цикл. Возвращается, когда ctx отменен.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.bot.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message != nil {
				b.handleMessage(ctx, update.Message)
			}
			if update.CallbackQuery != nil {
				b.handleCallback(ctx, update.CallbackQuery)
			}
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	if !msg.IsCommand() {
		b.sendMessage(chatID, helpText)
		return
	}

	switch msg.Command() {
	case "start", "help":
		b.sendMessage(chatID, helpText)
	case "list":
		b.sendPage(chatID, b.books.List(), 0)
	case "add":
		book := parseAddArgs(msg.CommandArguments())
		books := b.books.Add(ctx, book)
		log.Printf("library: added via bot title=%q len=%d chat_id=%d", book.Title, len(books), chatID)
		// Новая книга в конце, показываем последнюю страницу.
		b.sendPage(chatID, books, totalPages(len(books), defaultPageSize)-1)
	case "export":
		b.sendExport(chatID)
	default:
		b.sendMessage(chatID, "🤔 Неизвестная команда.\n\n"+helpText)
	}
}

// handleCallback — кнопки под списком: удаление и листание.
func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		return
	}

	chatID := cb.Message.Chat.ID
	messageID := cb.Message.MessageID

	if page, ok := parsePageData(cb.Data); ok {
		b.bot.Request(tgbotapi.NewCallback(cb.ID, "Листаю…"))
		b.editPage(chatID, messageID, b.books.List(), page)
		return
	}

	index, ok := parseRemoveData(cb.Data)
	if !ok {
		log.Printf("Invalid callback data: %q", cb.Data)
		b.bot.Request(tgbotapi.NewCallback(cb.ID, ""))
		return
	}

	books, removed := b.books.Remove(ctx, index)
	answer := "Удалено"
	if !removed {
		answer = "Книга уже удалена"
	}
	b.bot.Request(tgbotapi.NewCallback(cb.ID, answer))

	// Остаемся на странице, где была удаленная книга.
	b.editPage(chatID, messageID, books, index/defaultPageSize)
}

func (b *Bot) sendPage(chatID int64, books []models.Book, page int) {
	text, markup := buildPage(books, page, defaultPageSize)
	msg := tgbotapi.NewMessage(chatID, text)
	if len(markup.InlineKeyboard) > 0 {
		msg.ReplyMarkup = markup
	}
	if _, err := b.bot.Send(msg); err != nil {
		log.Printf("Send list error: chat_id=%d books=%d err=%v", chatID, len(books), err)
		b.sendMessage(chatID, "❌ Не удалось показать список.")
	}
}

func (b *Bot) editPage(chatID int64, messageID int, books []models.Book, page int) {
	text, markup := buildPage(books, page, defaultPageSize)
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, markup)
	if _, err := b.bot.Send(edit); err != nil {
		log.Printf("Edit message error: %v", err)
	}
}

func (b *Bot) sendExport(chatID int64) {
	page, err := render.PageBytes(b.books.List())
	if err != nil {
		b.sendMessage(chatID, "❌ Не удалось отрисовать список.")
		log.Printf("Render export error: %v", err)
		return
	}

	saved, err := storage.SaveExport(b.storageDir, "books.html", bytes.NewReader(page), maxExportSize)
	if err != nil {
		b.sendMessage(chatID, "❌ Ошибка при сохранении файла.")
		log.Printf("Save export error: %v", err)
		return
	}

	fullPath := filepath.Join(b.storageDir, saved.RelativePath)
	docMsg := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(fullPath))
	docMsg.Caption = "📖 Ваш список книг."
	if _, err := b.bot.Send(docMsg); err != nil {
		b.sendMessage(chatID, fmt.Sprintf("❌ Ошибка при отправке файла в Telegram: %v", err))
		log.Printf("Send file error: %v", err)
	}
}

// sendMessage — хелпер для отправки текста
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.bot.Send(msg); err != nil {
		log.Printf("Send message error: chat_id=%d err=%v", chatID, err)
	}
}

func clampPage(page, totalPages int) int {
	if totalPages <= 0 {
		return 0
	}
	if page < 0 {
		return 0
	}
	if page >= totalPages {
		return totalPages - 1
	}
	return page
}

func totalPages(total, pageSize int) int {
	if total == 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// buildPage redraws one page of the list: text cards plus a Remove button
// per book. Button data carries the index in the whole list.
func buildPage(books []models.Book, page, pageSize int) (string, tgbotapi.InlineKeyboardMarkup) {
	total := len(books)
	pages := totalPages(total, pageSize)
	page = clampPage(page, pages)

	start := page * pageSize
	end := start + pageSize
	if end > total {
		end = total
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, end-start+1)
	for i := start; i < end; i++ {
		label := fmt.Sprintf("🗑 %d. %s", i, books[i].Title)
		btn := tgbotapi.NewInlineKeyboardButtonData(label, cbRemovePrefix+strconv.Itoa(i))
		rows = append(rows, []tgbotapi.InlineKeyboardButton{btn})
	}

	// Навигационная строка (если страниц больше одной)
	if pages > 1 {
		var navRow []tgbotapi.InlineKeyboardButton
		if page > 0 {
			navRow = append(navRow, tgbotapi.NewInlineKeyboardButtonData("⬅️", fmt.Sprintf("%s%d", cbPagePrefix, page-1)))
		}
		navRow = append(navRow, tgbotapi.NewInlineKeyboardButtonData(
			fmt.Sprintf("• %d/%d •", page+1, pages),
			fmt.Sprintf("%s%d", cbPagePrefix, page),
		))
		if page < pages-1 {
			navRow = append(navRow, tgbotapi.NewInlineKeyboardButtonData("➡️", fmt.Sprintf("%s%d", cbPagePrefix, page+1)))
		}
		rows = append(rows, navRow)
	}

	text := render.TextRange(books, start, end)
	if pages > 1 {
		text = fmt.Sprintf("📚 Книг: %d, страница %d/%d\n\n%s", total, page+1, pages, text)
	}
	return truncateRunes(text, maxMessageRunes), tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

// parseAddArgs reads "Title | Author | Pages". Missing parts stay empty.
func parseAddArgs(args string) models.Book {
	parts := strings.SplitN(args, "|", 3)
	for len(parts) < 3 {
		parts = append(parts, "")
	}

	return models.Book{
		Title:  strings.TrimSpace(parts[0]),
		Author: strings.TrimSpace(parts[1]),
		Pages:  models.Pages(strings.TrimSpace(parts[2])),
	}
}

func parseRemoveData(data string) (int, bool) {
	return parsePrefixedInt(data, cbRemovePrefix)
}

func parsePageData(data string) (int, bool) {
	return parsePrefixedInt(data, cbPagePrefix)
}

func parsePrefixedInt(data, prefix string) (int, bool) {
	if !strings.HasPrefix(data, prefix) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(data, prefix))
	if err != nil {
		return 0, false
	}
	return n, true
}
