// cmd/gentoken/main.go - prints a signed dev access token.
// Usage: JWT_SECRET=... go run ./cmd/gentoken -user <uuid> -role operator
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Micjeal/NEXTGEN-POS-sub002/internal/middleware"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func main() {
	userID := flag.String("user", "", "operator uuid (random when empty)")
	username := flag.String("username", "dev", "username claim")
	role := flag.String("role", middleware.RoleOperator, "operator | supervisor | admin")
	hours := flag.Int("hours", 8, "token lifetime in hours")
	flag.Parse()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is required")
	}
	if *userID == "" {
		*userID = uuid.NewString()
	}

	claims := middleware.JWTClaims{
		UserID:   *userID,
		Username: *username,
		Role:     *role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(*hours) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		log.Fatalf("sign error: %v", err)
	}
	fmt.Printf("user: %s\nrole: %s\n%s\n", *userID, *role, token)
}
