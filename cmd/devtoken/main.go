// Command devtoken prints a signed access token for local testing.
//
//	go run ./cmd/devtoken -user 1 -role ADMIN
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/strikeit/strikeit-api/internal/model"
	"github.com/strikeit/strikeit-api/internal/utils"
)

func main() {
	_ = godotenv.Load()

	userID := flag.Uint64("user", 1, "user id placed in the sub claim")
	role := flag.String("role", model.RoleUser, "USER or ADMIN")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		fmt.Fprintln(os.Stderr, "JWT_SECRET is not set")
		os.Exit(1)
	}
	if *role != model.RoleUser && *role != model.RoleAdmin {
		fmt.Fprintf(os.Stderr, "unknown role %q\n", *role)
		os.Exit(2)
	}
	tok, err := utils.NewAccessToken(secret, *userID, *role, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, "sign token:", err)
		os.Exit(1)
	}
	fmt.Println(tok.Token)
	fmt.Fprintf(os.Stderr, "expires %s\n", tok.Exp.Format(time.RFC3339))
}
