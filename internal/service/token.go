package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionToken - выданный браузеру токен сессии.
type SessionToken struct {
	SessionID uuid.UUID `json:"session_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenManager отвечает за выпуск и проверку JWT сессий.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager создаёт менеджер токенов.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Issue выпускает токен для новой сессии.
func (m *TokenManager) Issue() (*SessionToken, error) {
	return m.IssueFor(uuid.New())
}

// IssueFor выпускает токен для существующей сессии (продление).
func (m *TokenManager) IssueFor(sessionID uuid.UUID) (*SessionToken, error) {
	now := time.Now()
	exp := now.Add(m.ttl)

	claims := jwt.RegisteredClaims{
		Subject:   sessionID.String(),
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return nil, fmt.Errorf("token: не удалось подписать токен: %w", err)
	}

	return &SessionToken{SessionID: sessionID, Token: signed, ExpiresAt: exp}, nil
}

// Parse проверяет токен и возвращает идентификатор сессии.
func (m *TokenManager) Parse(token string) (uuid.UUID, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return uuid.Nil, err
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid {
		return uuid.Nil, jwt.ErrTokenInvalidClaims
	}

	sessionID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, err
	}
	return sessionID, nil
}
