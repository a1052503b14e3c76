// Command hash-password prompts for the admin password and prints the
// bcrypt hash to put in ADMIN_PASSWORD_HASH.
package main

import (
	"fmt"
	"os"
	"syscall"

	"golang.org/x/term"

	"github.com/anatomyace/anatomy-ace/internal/config"
	"github.com/anatomyace/anatomy-ace/internal/service"
)

const minPasswordLen = 8

func main() {
	cfg := config.Load()
	authService := service.NewAuthService(cfg)

	fmt.Println("=== Admin Password Hash ===")

	password, err := prompt("Enter Password: ")
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error reading password:", err)
		os.Exit(1)
	}
	if len(password) < minPasswordLen {
		fmt.Fprintf(os.Stderr, "Error: Password must be at least %d characters\n", minPasswordLen)
		os.Exit(1)
	}

	confirm, err := prompt("Confirm Password: ")
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error reading password:", err)
		os.Exit(1)
	}
	if confirm != password {
		fmt.Fprintln(os.Stderr, "Error: Passwords do not match")
		os.Exit(1)
	}

	hash, err := authService.HashPassword(password)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error hashing password:", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Printf("ADMIN_PASSWORD_HASH='%s'\n", hash)
}

func prompt(label string) (string, error) {
	fmt.Print(label)
	b, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println() // Newline after password input
	return string(b), err
}
