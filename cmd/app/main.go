package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"booklist/internal/config"
	"booklist/internal/db"
	"booklist/internal/httpapi"
	"booklist/internal/library"
	"booklist/internal/network"
	"booklist/internal/service"
	"booklist/internal/telegram"
)

func main() {
	// 1. Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Ошибка конфигурации: %v", err)
	}

	log.Println("=== BOOK LIST STARTING ===")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Снимок в SQLite (необязательно)
	var store service.Store
	if cfg.SQLitePath != "" {
		sqlStore, err := db.Open(cfg.SQLitePath)
		if err != nil {
			log.Fatalf("Ошибка БД: %v", err)
		}
		defer sqlStore.Close()
		store = sqlStore
		log.Printf("SQLite: %s", cfg.SQLitePath)
	} else {
		log.Println("SQLite: не задан, список живет только в памяти")
	}

	// 3. Список книг и сервис поверх него
	books := service.NewBookService(library.New(), store)
	if n, err := books.Restore(ctx); err != nil {
		log.Fatalf("Ошибка восстановления списка: %v", err)
	} else if n > 0 {
		log.Printf("Восстановлено книг: %d", n)
	}

	// 4. Telegram-бот (необязательно)
	if cfg.TelegramToken != "" {
		client, err := network.NewHTTPClient(cfg.ProxyAddr)
		if err != nil {
			log.Fatalf("Fatal: Ошибка прокси: %v", err)
		}

		bot, err := telegram.NewBot(cfg.TelegramToken, client, books, cfg.StorageDir)
		if err != nil {
			log.Fatalf("Ошибка при создании бота: %v", err)
		}
		log.Printf("Storage: %s", cfg.StorageDir)
		go bot.Start(ctx)
	}

	// 5. HTTP: страница со списком и JSON API
	api := httpapi.New(books, cfg.TelegramToken)
	log.Printf("HTTP запущен на %s", cfg.HTTPAddr)
	if err := httpapi.ListenAndServe(ctx, cfg.HTTPAddr, api.Handler()); err != nil {
		log.Fatalf("Ошибка HTTP: %v", err)
	}
	log.Println("Остановлено.")
}
