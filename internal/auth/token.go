package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Solorzano97/LaCazuelaChapina/pkg/config"
	"github.com/Solorzano97/LaCazuelaChapina/pkg/database"
)

// GenerateToken issues a signed session token for the user. The claims carry
// everything the middleware needs so protected handlers never re-query the
// user row just to authorize.
func GenerateToken(cfg config.Config, user database.User) (string, int64, error) {
	expiresIn := int64(cfg.JWTExpiryMinutes) * 60

	claims := jwt.MapClaims{
		"user_id":   user.ID.String(),
		"name":      user.Name,
		"email":     user.Email,
		"role":      user.Role,
		"branch_id": user.BranchID.String(),
		"iss":       cfg.JWTIssuer,
		"iat":       time.Now().Unix(),
		"exp":       time.Now().Add(time.Duration(cfg.JWTExpiryMinutes) * time.Minute).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		return "", 0, err
	}
	return signed, expiresIn, nil
}
