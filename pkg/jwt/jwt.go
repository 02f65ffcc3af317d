package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken envuelve cualquier falla de verificación (firma, vencimiento, claims).
var ErrInvalidToken = errors.New("jwt: token inválido")

// Identity es la identidad que el proveedor de autenticación deja en el token.
// Role es el rol dentro de CompanyID; los casos de uso lo usan como actor sin volver a la DB.
type Identity struct {
	UserID    string
	CompanyID string
	Role      string // owner | admin | manager | employee | viewer
}

type claims struct {
	jwt.RegisteredClaims
	UserID    string `json:"user_id"`
	CompanyID string `json:"company_id"`
	Role      string `json:"role"`
}

// Issue firma un token HS256 para la identidad dada. Lo usan el modo demo y los tests;
// en producción los tokens los emite el proveedor de identidad.
func Issue(secret string, id Identity, issuer string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt: secret vacío")
	}
	now := time.Now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:    id.UserID,
		CompanyID: id.CompanyID,
		Role:      id.Role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
}

// Verify valida firma y vencimiento y devuelve la identidad del token.
// Un token sin user_id o company_id se rechaza; el rol vacío se deja pasar para que
// el middleware responda MISSING_ROLE.
func Verify(secret, tokenString string) (Identity, error) {
	if secret == "" {
		return Identity{}, fmt.Errorf("jwt: secret vacío")
	}
	token, err := jwt.ParseWithClaims(tokenString, &claims{}, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return Identity{}, ErrInvalidToken
	}
	if c.UserID == "" || c.CompanyID == "" {
		return Identity{}, fmt.Errorf("%w: claims incompletos", ErrInvalidToken)
	}
	return Identity{UserID: c.UserID, CompanyID: c.CompanyID, Role: c.Role}, nil
}
