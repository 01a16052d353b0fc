package validation

import (
	"fmt"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// MinProxyKeyLength - минимальная длина ключа прокси-эндпоинтов.
const MinProxyKeyLength = 16

// ValidateProxyKey проверяет ключ перед хешированием.
// Требования: длина, заглавные и строчные буквы, цифры.
func ValidateProxyKey(key string) error {
	if len(key) < MinProxyKeyLength {
		return fmt.Errorf("ключ должен быть не менее %d символов", MinProxyKeyLength)
	}

	var hasUpper, hasLower, hasNumber bool
	for _, char := range key {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("ключ должен содержать хотя бы одну заглавную букву")
	}
	if !hasLower {
		return fmt.Errorf("ключ должен содержать хотя бы одну строчную букву")
	}
	if !hasNumber {
		return fmt.Errorf("ключ должен содержать хотя бы одну цифру")
	}
	return nil
}

// HashProxyKey проверяет ключ и возвращает bcrypt-хеш для PROXY_KEY_HASH.
func HashProxyKey(key string) (string, error) {
	if err := ValidateProxyKey(key); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("validation: hash proxy key: %w", err)
	}
	return string(hash), nil
}

// ProxyKeyMatches сравнивает ключ из запроса с хешем.
func ProxyKeyMatches(hash, key string) bool {
	if hash == "" || key == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)) == nil
}
