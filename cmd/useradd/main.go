// Command useradd creates a user directly in the database. It is how the
// first Admin account gets made, since /api/auth/register needs an Admin.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ariefcatur/go-retail-backoffice/internal/activity"
	"github.com/ariefcatur/go-retail-backoffice/internal/auth"
	"github.com/ariefcatur/go-retail-backoffice/internal/config"
	"github.com/ariefcatur/go-retail-backoffice/internal/logx"
	"github.com/ariefcatur/go-retail-backoffice/internal/notify"
	"github.com/ariefcatur/go-retail-backoffice/internal/storage"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	var (
		username = flag.String("username", "", "login name (required)")
		password = flag.String("password", "", "password, at least 8 characters (required)")
		role     = flag.String("role", string(auth.RoleAdmin), "Admin or Employee")
		name     = flag.String("name", "", "display name")
		email    = flag.String("email", "", "email for password resets")
	)
	flag.Parse()

	if err := run(*username, *password, auth.Role(*role), *name, *email); err != nil {
		fmt.Fprintln(os.Stderr, "useradd:", err)
		os.Exit(1)
	}
}

func run(username, password string, role auth.Role, name, email string) error {
	if len(username) < 3 || len(password) < 8 {
		return fmt.Errorf("-username (min 3) and -password (min 8) are required")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logx.New(logx.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := storage.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer db.Close()

	svc := &auth.Service{
		Users:    &auth.UserRepo{DB: db.DB, Dialect: db.Dialect},
		Notifier: notify.Log{Logger: log},
		Activity: &activity.Trail{Recorder: &activity.Store{DB: db.DB}, Log: log},
		Log:      log,
	}
	in := auth.RegisterInput{Username: username, Password: password, Role: role, Name: name}
	if email != "" {
		in.Email = &email
	}
	u, err := svc.Bootstrap(ctx, in)
	if err != nil {
		return err
	}
	fmt.Printf("created %s user %s (%s)\n", u.Role, u.Username, u.ID)
	return nil
}
