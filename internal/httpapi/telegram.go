package httpapi

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// TelegramUser описывает структуру пользователя, приходящую в initData
type TelegramUser struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Language  string `json:"language_code"`
}

// ValidateInitData проверяет подпись initData Telegram Mini App и возвращает пользователя.
func ValidateInitData(initData string, botToken string) (TelegramUser, error) {
	if initData == "" {
		return TelegramUser{}, fmt.Errorf("initData is empty")
	}
	if botToken == "" {
		return TelegramUser{}, fmt.Errorf("botToken is empty")
	}

	// Часто веб-серверы заменяют "+" на пробел в URL-encoded строках.
	inputs := []string{
		initData,
		strings.ReplaceAll(initData, " ", "+"),
		strings.ReplaceAll(initData, "%20", "+"),
		strings.ReplaceAll(initData, "+", "%2B"),
	}

	secrets := [][]byte{
		generateSecretWebApp(botToken),
		generateSecretLegacy(botToken),
	}

	var lastErr error
	for _, input := range inputs {
		for _, secret := range secrets {
			user, err := verifyAndParse(input, secret)
			if err == nil {
				return user, nil
			}
			lastErr = err
		}
	}

	return TelegramUser{}, fmt.Errorf("validation failed: %w", lastErr)
}

func verifyAndParse(initData string, secretKey []byte) (TelegramUser, error) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return TelegramUser{}, fmt.Errorf("parse query error: %w", err)
	}

	receivedHash := values.Get("hash")
	if receivedHash == "" {
		return TelegramUser{}, fmt.Errorf("hash is missing")
	}

	// data-check-string: все поля кроме hash, ключи по алфавиту
	values.Del("hash")
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+values.Get(k))
	}
	checkString := strings.Join(parts, "\n")

	h := hmac.New(sha256.New, secretKey)
	h.Write([]byte(checkString))
	calculatedHash := hex.EncodeToString(h.Sum(nil))

	if !hmac.Equal([]byte(calculatedHash), []byte(receivedHash)) {
		return TelegramUser{}, fmt.Errorf("signature mismatch")
	}

	if authDateStr := values.Get("auth_date"); authDateStr != "" {
		if authTs, err := strconv.ParseInt(authDateStr, 10, 64); err == nil {
			authTime := time.Unix(authTs, 0)
			now := time.Now()
			if now.Sub(authTime) > 24*time.Hour {
				return TelegramUser{}, fmt.Errorf("initData expired (older than 24h)")
			}
			if authTime.Sub(now) > 5*time.Minute {
				return TelegramUser{}, fmt.Errorf("initData is from future (check server time)")
			}
		}
	}

	return parseUserFromJSON(values.Get("user"))
}

func parseUserFromJSON(userJSON string) (TelegramUser, error) {
	if userJSON == "" {
		return TelegramUser{}, fmt.Errorf("user field is empty")
	}
	var user TelegramUser
	if err := json.Unmarshal([]byte(userJSON), &user); err != nil {
		return TelegramUser{}, fmt.Errorf("failed to unmarshal user: %w", err)
	}
	if user.ID == 0 {
		return TelegramUser{}, fmt.Errorf("user_id is 0")
	}
	return user, nil
}

func generateSecretWebApp(token string) []byte {
	h := hmac.New(sha256.New, []byte("WebAppData"))
	h.Write([]byte(token))
	return h.Sum(nil)
}

func generateSecretLegacy(token string) []byte {
	h := sha256.New()
	h.Write([]byte(token))
	return h.Sum(nil)
}

func extractInitData(r *http.Request) string {
	if v := r.Header.Get("X-Telegram-InitData"); v != "" {
		return v
	}
	if v := r.Header.Get("X-Telegram-Web-App-Data"); v != "" {
		return v
	}

	if auth := r.Header.Get("Authorization"); auth != "" {
		if strings.HasPrefix(strings.ToLower(auth), "tma ") {
			return strings.TrimSpace(auth[4:])
		}
	}

	// Mini App не может выставить заголовки у обычной формы.
	if v := r.URL.Query().Get("initData"); v != "" {
		return v
	}
	return ""
}
