package storage

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
)

type SavedFile struct {
	RelativePath string
	SizeBytes    int64
}

// SaveExport пишет данные в файл со случайным именем внутри baseDir.
// Запись атомарная: читатель видит либо старое состояние, либо файл целиком.
func SaveExport(baseDir string, originalName string, data io.Reader, maxSize int64) (SavedFile, error) {
	if baseDir == "" {
		return SavedFile{}, fmt.Errorf("пустая директория хранения")
	}

	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return SavedFile{}, fmt.Errorf("не удалось создать директорию хранения: %w", err)
	}

	ext := filepath.Ext(originalName)
	if ext == "" {
		ext = ".html"
	}

	name, err := randomHex(16)
	if err != nil {
		return SavedFile{}, fmt.Errorf("не удалось сгенерировать имя файла: %w", err)
	}

	reader := data
	if maxSize > 0 {
		reader = io.LimitReader(data, maxSize+1)
	}

	var buf bytes.Buffer
	n, err := io.Copy(&buf, reader)
	if err != nil {
		return SavedFile{}, fmt.Errorf("ошибка чтения данных: %w", err)
	}

	if maxSize > 0 && n > maxSize {
		return SavedFile{}, fmt.Errorf("файл слишком большой")
	}

	filename := name + ext
	if err := atomic.WriteFile(filepath.Join(baseDir, filename), &buf); err != nil {
		return SavedFile{}, fmt.Errorf("ошибка записи файла: %w", err)
	}

	return SavedFile{
		RelativePath: filename,
		SizeBytes:    n,
	}, nil
}

func randomHex(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("некорректная длина")
	}
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", buf), nil
}
