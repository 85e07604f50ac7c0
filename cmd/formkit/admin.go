package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aliuyar1234/formkit/internal/auth"
	"github.com/aliuyar1234/formkit/internal/retention"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultPurgeDays = 30

func runAdmin(args []string) int {
	if len(args) == 0 {
		printAdminUsage()
		return 2
	}

	switch args[0] {
	case "reset-password":
		return runResetPassword(args[1:])
	case "purge-invites":
		return runPurgeInvites(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown admin command: %s\n", args[0])
		printAdminUsage()
		return 2
	}
}

func printAdminUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  formkit admin reset-password --email user@example.com [--password <new>] [--db-dsn <dsn>]")
	fmt.Fprintln(os.Stderr, "  formkit admin purge-invites [--days 30] [--db-dsn <dsn>]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Notes:")
	fmt.Fprintln(os.Stderr, "  - If --password is omitted, a random password is generated and printed.")
	fmt.Fprintln(os.Stderr, "  - --db-dsn defaults to FK_DB_DSN.")
}

// resolveDSN falls back to FK_DB_DSN when the flag is empty.
func resolveDSN(flagValue string) (string, bool) {
	dsn := strings.TrimSpace(flagValue)
	if dsn == "" {
		dsn = strings.TrimSpace(os.Getenv("FK_DB_DSN"))
	}
	if dsn == "" {
		fmt.Fprintln(os.Stderr, "--db-dsn is required (or set FK_DB_DSN)")
		return "", false
	}
	return dsn, true
}

func runResetPassword(args []string) int {
	fs := flag.NewFlagSet("reset-password", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var email string
	var password string
	var dbDSN string

	fs.StringVar(&email, "email", "", "User email")
	fs.StringVar(&password, "password", "", "New password (if empty, generates one)")
	fs.StringVar(&dbDSN, "db-dsn", "", "Postgres DSN (defaults to FK_DB_DSN)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	email = strings.TrimSpace(email)
	if email == "" {
		fmt.Fprintln(os.Stderr, "--email is required")
		return 2
	}

	dsn, ok := resolveDSN(dbDSN)
	if !ok {
		return 2
	}

	generated := false
	if password == "" {
		pw, err := generatePassword(24)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate password: %v\n", err)
			return 1
		}
		password = pw
		generated = true
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		return 1
	}
	defer pool.Close()

	// Token settings are irrelevant here; the service only rehashes.
	svc := auth.NewService(auth.NewPostgresStore(pool), "", 1)
	if err := svc.ResetPassword(ctx, email, password); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to reset password: %v\n", err)
		return 1
	}

	fmt.Fprintln(os.Stdout, "Password updated.")
	if generated {
		fmt.Fprintln(os.Stdout, password)
	}

	return 0
}

func runPurgeInvites(args []string) int {
	fs := flag.NewFlagSet("purge-invites", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var days int
	var dbDSN string

	fs.IntVar(&days, "days", defaultPurgeDays, "Delete invites used or expired more than this many days ago")
	fs.StringVar(&dbDSN, "db-dsn", "", "Postgres DSN (defaults to FK_DB_DSN)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if days <= 0 {
		fmt.Fprintln(os.Stderr, "--days must be positive")
		return 2
	}

	dsn, ok := resolveDSN(dbDSN)
	if !ok {
		return 2
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		return 1
	}
	defer pool.Close()

	deleted, err := retention.PurgeStaleInvites(ctx, pool, days)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to purge invites: %v\n", err)
		return 1
	}

	fmt.Fprintf(os.Stdout, "Deleted %d invites.\n", deleted)
	return 0
}

func generatePassword(bytesLen int) (string, error) {
	if bytesLen < 8 {
		bytesLen = 8
	}

	b := make([]byte, bytesLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}
