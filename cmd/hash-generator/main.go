// Command hash-generator prints bcrypt hashes for the passwords given as
// arguments, using the BCRYPT_COST of the resolved configuration so that
// seeded credentials match what the server would produce.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/phrazzld/confengine/internal/config"
	"github.com/phrazzld/confengine/internal/platform/auth"
)

func main() {
	os.Exit(run(os.Args[1:], os.Environ(), os.Stdout, os.Stderr))
}

func run(passwords, environ []string, stdout, stderr io.Writer) int {
	if len(passwords) == 0 {
		fmt.Fprintln(stderr, "usage: hash-generator PASSWORD...")
		return 2
	}

	m := config.NewManager(config.ManagerOptions{
		Environ: func() []string { return environ },
		Logger:  slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelError})),
	})
	if _, err := m.Resolve(); err != nil {
		fmt.Fprintf(stderr, "configuration error: %v\n", err)
		return 1
	}
	sec, err := config.NewSecurityConfig(m)
	if err != nil {
		fmt.Fprintf(stderr, "configuration error: %v\n", err)
		return 1
	}
	hasher, err := auth.NewPasswordHasher(sec)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	for _, password := range passwords {
		hash, err := hasher.Hash(password)
		if err != nil {
			fmt.Fprintf(stderr, "error hashing password: %v\n", err)
			return 1
		}
		fmt.Fprintln(stdout, hash)
	}
	return 0
}
