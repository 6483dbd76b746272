package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Config — структура, хранящая все настройки приложения.
type Config struct {
	HTTPAddr      string
	SQLitePath    string
	StorageDir    string
	TelegramToken string
	ProxyAddr     string
}

// Load считывает .env файл и заполняет структуру Config.
// Все переменные необязательные: без SQLITE_PATH список живет только в памяти,
// без TELEGRAM_TOKEN бот не запускается.
func Load() (*Config, error) {
	// Если файла нет, ничего страшного: переменные могут прийти из окружения.
	if err := godotenv.Load(); err != nil {
		fmt.Println("Инфо: файл .env не найден, ищем переменные в окружении OS")
	}

	httpAddr := os.Getenv("HTTP_ADDR")
	sqlitePath := os.Getenv("SQLITE_PATH")
	storageDir := os.Getenv("STORAGE_DIR")
	token := os.Getenv("TELEGRAM_TOKEN")
	proxy := os.Getenv("PROXY_ADDR")

	// Прокси нужен только боту.
	if strings.TrimSpace(token) == "" && strings.TrimSpace(proxy) != "" {
		fmt.Println("Инфо: PROXY_ADDR задан без TELEGRAM_TOKEN, прокси не используется")
		proxy = ""
	}

	return &Config{
		HTTPAddr:      withDefault(httpAddr, ":8080"),
		SQLitePath:    resolvePath(sqlitePath),
		StorageDir:    resolvePath(withDefault(storageDir, "storage/exports")),
		TelegramToken: strings.TrimSpace(token),
		ProxyAddr:     strings.TrimSpace(proxy),
	}, nil
}

func withDefault(value string, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func resolvePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return p
	}
	if filepath.IsAbs(p) {
		return p
	}

	if exe, err := os.Executable(); err == nil {
		base := filepath.Dir(exe)
		return filepath.Clean(filepath.Join(base, p))
	}

	if cwd, err := os.Getwd(); err == nil {
		return filepath.Clean(filepath.Join(cwd, p))
	}

	return p
}
