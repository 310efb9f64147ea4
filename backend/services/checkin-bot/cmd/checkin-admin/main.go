// Command checkin-admin mints admin API tokens and hashes driver PINs.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/bcrypt"

	libconfig "fleetcheck/backend/libs/config"
	"fleetcheck/backend/services/checkin-bot/internal/config"
	"fleetcheck/backend/services/checkin-bot/internal/password"
	"fleetcheck/backend/services/checkin-bot/internal/service"
)

const usage = `usage:
  checkin-admin token -user <telegram id>   print an admin API token
  checkin-admin hash-pin -pin <pin>         print a bcrypt hash for DRIVER_PINS`

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) == 0 {
		return errors.New(usage)
	}
	switch args[0] {
	case "token":
		return tokenCmd(args[1:], out)
	case "hash-pin":
		return hashPinCmd(args[1:], out)
	default:
		return fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}
}

func tokenCmd(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	userID := fs.Int64("user", 0, "admin telegram id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := config.Defaults()
	if err := libconfig.LoadConfig(cfg); err != nil {
		return err
	}
	if cfg.HTTP.JWTSecret == "" {
		return errors.New("CHECKIN_JWT_SECRET is not set")
	}
	if !service.NewAdminSet(cfg.Access.AdminIDs).Contains(*userID) {
		return fmt.Errorf("user %d is not listed in ADMIN_IDS", *userID)
	}

	token, err := service.NewTokenService(cfg.HTTP.JWTSecret, cfg.JWTExpiration()).GenerateToken(*userID, service.RoleAdmin)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, token)
	return err
}

func hashPinCmd(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("hash-pin", flag.ContinueOnError)
	pin := fs.String("pin", "", "driver pin")
	cost := fs.Int("cost", bcrypt.DefaultCost, "bcrypt cost")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *pin == "" {
		return errors.New("-pin is required")
	}
	hash, err := password.HashPIN(*pin, *cost)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, hash)
	return err
}
