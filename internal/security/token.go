package security

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"evfleet-ops-backend/internal/domain"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// StaffClaims carries the staff actor identity minted by the console's
// auth collaborator. The core never reads actor identity from ambient
// state; handlers resolve it from the token once and pass it explicitly.
type StaffClaims struct {
	StaffID   int64  `json:"staff_id"`
	Name      string `json:"name,omitempty"`
	StationID int64  `json:"station_id,omitempty"`
	Role      string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Actor converts the verified claims into the explicit actor parameter
// threaded through every coordinator call.
func (c *StaffClaims) Actor() domain.Actor {
	return domain.Actor{
		StaffID:   c.StaffID,
		Name:      c.Name,
		StationID: c.StationID,
		Role:      c.Role,
	}
}

type TokenManager interface {
	GenerateStaffToken(staffID int64, name string, stationID int64, role string, expiry time.Duration) (string, error)
	ValidateToken(tokenString string) (*StaffClaims, error)
}

type tokenManager struct {
	secret []byte
}

func NewTokenManager(secret string) TokenManager {
	return &tokenManager{secret: []byte(secret)}
}

func (m *tokenManager) GenerateStaffToken(staffID int64, name string, stationID int64, role string, expiry time.Duration) (string, error) {
	claims := StaffClaims{
		StaffID:   staffID,
		Name:      name,
		StationID: stationID,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(staffID, 10),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "evfleet-ops",
			Audience:  jwt.ClaimStrings{"staff-console"},
			ID:        generateJTI(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *tokenManager) ValidateToken(tokenString string) (*StaffClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &StaffClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*StaffClaims); ok && token.Valid {
		if claims.StaffID == 0 && claims.Subject != "" {
			id, _ := strconv.ParseInt(claims.Subject, 10, 64)
			claims.StaffID = id
		}
		return claims, nil
	}

	return nil, ErrInvalidToken
}

// Simple unique ID generator
func generateJTI() string {
	return strconv.FormatInt(time.Now().UnixNano(), 16)
}
