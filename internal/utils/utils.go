package utils

import (
	"errors"
	"strings"
	"time"

	"github.com/braddown/kudosity-platform-sub004/internal/config"
	"github.com/braddown/kudosity-platform-sub004/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// GSM segment sizes: one part carries 160 characters, concatenated parts 153.
const (
	singleSegmentChars = 160
	multiSegmentChars  = 153
)

// NormalizeMSISDN strips formatting from a phone number and rewrites a
// leading zero to the given country code. Returns an error when the result
// is not a plausible number.
func NormalizeMSISDN(msisdn, countryCode string) (string, error) {
	var b strings.Builder
	for _, r := range strings.TrimSpace(msisdn) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' || r == ' ' || r == '-' || r == '(' || r == ')':
			// formatting only
		default:
			return "", errors.New("msisdn contains invalid characters")
		}
	}

	normalized := b.String()
	if strings.HasPrefix(normalized, "0") {
		normalized = countryCode + normalized[1:]
	}
	if len(normalized) < 9 || len(normalized) > 15 {
		return "", errors.New("msisdn length out of range")
	}

	return normalized, nil
}

// CountSegments returns how many SMS parts the body occupies for billing.
func CountSegments(body string) int {
	length := len([]rune(body))
	if length == 0 {
		return 0
	}
	if length <= singleSegmentChars {
		return 1
	}
	return (length + multiSegmentChars - 1) / multiSegmentChars
}

// MessageCost prices a message at the per-segment unit rate.
func MessageCost(segments int, unitPrice float64) float64 {
	return float64(segments) * unitPrice
}

// ClassifyReplyIntent tags an inbound reply by exact case-insensitive match
// against the fixed keyword vocabularies. Unmatched content has no intent.
func ClassifyReplyIntent(content string) string {
	switch strings.ToUpper(strings.TrimSpace(content)) {
	case "STOP", "UNSUBSCRIBE", "QUIT":
		return models.IntentOptOut
	case "START", "SUBSCRIBE", "YES":
		return models.IntentOptIn
	case "HELP", "INFO":
		return models.IntentHelp
	default:
		return ""
	}
}

// GenerateJWT generates a JWT token
func GenerateJWT(userID string, role string, cfg *config.Config) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"exp":     time.Now().Add(time.Second * time.Duration(cfg.JWT.ExpiresIn)).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString([]byte(cfg.JWT.Secret))
}

// ValidateJWT validates a JWT token
func ValidateJWT(tokenString string, cfg *config.Config) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(cfg.JWT.Secret), nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}
