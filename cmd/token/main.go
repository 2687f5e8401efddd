// Command token prints a signed access token for local testing against the API.
//
//	go run ./cmd/token -role manager -employee M001
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/avvikelse/avvikelse-backend-go/internal/domain/user"
	"github.com/avvikelse/avvikelse-backend-go/internal/pkg/jwt"
	"github.com/joho/godotenv"
)

func main() {
	role := flag.String("role", string(user.RoleEmployee), "employee, manager, payroll or admin")
	employeeID := flag.String("employee", "", "employee id the token acts as")
	userID := flag.String("user", "dev", "user id claim")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	// Only the signing key is needed, so the full config is not loaded.
	_ = godotenv.Load()
	secret := os.Getenv("JWT_SECRET_KEY")
	if secret == "" {
		fmt.Fprintln(os.Stderr, "JWT_SECRET_KEY is not set")
		os.Exit(1)
	}

	claims := user.Claims{UserID: *userID, Role: user.Role(*role)}
	if *employeeID != "" {
		claims.EmployeeID = employeeID
	}

	token, expiresAt, err := jwt.NewJWTService(secret, *ttl).GenerateAccessToken(claims)
	if err != nil {
		fmt.Fprintln(os.Stderr, "generate token:", err)
		os.Exit(1)
	}
	fmt.Println(token)
	fmt.Fprintln(os.Stderr, "expires", time.Unix(expiresAt, 0).Format(time.RFC3339))
}
