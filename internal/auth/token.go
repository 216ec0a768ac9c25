package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/BearBump/CargoGate/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const DefaultTokenTTL = 24 * time.Hour

// TokenManager выпускает и проверяет HS256-токены.
// Проверка подписи внутри библиотеки идёт через hmac.Equal (constant-time).
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret, issuer string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

type tokenClaims struct {
	jwt.RegisteredClaims
	Roles []string `json:"roles,omitempty"`
}

// TokenInfo — разобранное содержимое валидного токена.
type TokenInfo struct {
	Subject   uint64
	Roles     []string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Issue подписывает токен для принципала: sub=id, iat=now, exp=now+ttl,
// roles — как custom claim. Чистая функция от принципала, часов и секрета.
func (m *TokenManager) Issue(p *models.Principal) (string, time.Time, error) {
	now := m.now().UTC()
	expiresAt := now.Add(m.ttl)

	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(p.ID, 10),
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
		Roles: p.Roles,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "sign token")
	}
	return signed, expiresAt, nil
}

// Verify проверяет подпись, структуру и срок действия.
// Малформат, чужая подпись и истёкший срок наружу выглядят одинаково:
// причина остаётся в обёрнутой ошибке только для диагностики.
func (m *TokenManager) Verify(token string) (*TokenInfo, error) {
	return m.parse(token)
}

// Decode проверяет только подпись и структуру, без валидации exp/iat.
func (m *TokenManager) Decode(token string) (*TokenInfo, error) {
	return m.parse(token, jwt.WithoutClaimsValidation())
}

// IsExpired сравнивает зашитый в токен exp с текущим временем.
// Для битого токена отвечает true.
func (m *TokenManager) IsExpired(token string) bool {
	info, err := m.Decode(token)
	if err != nil {
		return true
	}
	return !info.ExpiresAt.After(m.now())
}

func (m *TokenManager) parse(token string, opts ...jwt.ParserOption) (*TokenInfo, error) {
	if token == "" {
		return nil, errors.New("invalid token: empty")
	}

	parsed, err := jwt.ParseWithClaims(token, &tokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	}, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "invalid token")
	}

	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token: claims")
	}
	if m.issuer != "" && claims.Issuer != m.issuer {
		return nil, errors.New("invalid token: issuer")
	}

	sub, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return nil, errors.Wrap(err, "invalid token: subject")
	}

	info := &TokenInfo{
		Subject: sub,
		Roles:   claims.Roles,
	}
	if claims.IssuedAt != nil {
		info.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	return info, nil
}
