// Command tictacctl is the operator tool: schema migrations, accounts,
// test tokens and a WebSocket smoke test against a running server.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"tictac_arena/internal/db"
	"tictac_arena/internal/logger"
	"tictac_arena/internal/migrations"
	"tictac_arena/internal/repository"
	"tictac_arena/internal/service"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
)

func main() {
	_ = godotenv.Load()
	logger.Init(os.Getenv("LOG_LEVEL"), false)

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "tictacctl:", err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	dbFlag := &cli.StringFlag{
		Name:     "database-url",
		Usage:    "postgres connection string",
		Sources:  cli.EnvVars("DATABASE_URL"),
		Required: true,
	}
	secretFlag := &cli.StringFlag{
		Name:     "secret",
		Usage:    "JWT signing secret",
		Sources:  cli.EnvVars("JWT_SECRET"),
		Required: true,
	}

	return &cli.Command{
		Name:  "tictacctl",
		Usage: "operate a tictac arena deployment",
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "apply or roll back schema migrations",
				Flags: []cli.Flag{dbFlag},
				Commands: []*cli.Command{
					{Name: "up", Usage: "apply all pending migrations", Action: migrateUp},
					{Name: "down", Usage: "roll back the last migration", Action: migrateDown},
					{Name: "version", Usage: "print the current schema version", Action: migrateVersion},
				},
			},
			{
				Name:  "user",
				Usage: "manage accounts",
				Commands: []*cli.Command{
					{
						Name:  "create",
						Usage: "register an account",
						Flags: []cli.Flag{
							dbFlag,
							&cli.StringFlag{Name: "username", Required: true},
							&cli.StringFlag{Name: "password", Required: true},
						},
						Action: createUser,
					},
				},
			},
			{
				Name:  "token",
				Usage: "mint a token for testing",
				Flags: []cli.Flag{
					secretFlag,
					&cli.Int64Flag{Name: "user-id", Required: true},
					&cli.StringFlag{Name: "username"},
					&cli.DurationFlag{Name: "ttl", Value: service.DefaultTokenTTL},
				},
				Action: mintToken,
			},
			{
				Name:  "smoke",
				Usage: "play one game between two clients against a running server",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "addr", Value: "ws://127.0.0.1:8080/ws"},
					&cli.StringFlag{Name: "secret", Sources: cli.EnvVars("JWT_SECRET"), Usage: "mint tokens for users 1 and 2; leave empty for anonymous clients"},
					&cli.DurationFlag{Name: "timeout", Value: 10 * time.Second},
				},
				Action: smoke,
			},
		},
	}
}

func migrator(cmd *cli.Command) (*migrations.Migrator, error) {
	return migrations.New(cmd.String("database-url"), logger.With("component", "migrate"))
}

func migrateUp(_ context.Context, cmd *cli.Command) error {
	m, err := migrator(cmd)
	if err != nil {
		return err
	}
	defer m.Close()
	return m.Up()
}

func migrateDown(_ context.Context, cmd *cli.Command) error {
	m, err := migrator(cmd)
	if err != nil {
		return err
	}
	defer m.Close()
	return m.Down()
}

func migrateVersion(_ context.Context, cmd *cli.Command) error {
	m, err := migrator(cmd)
	if err != nil {
		return err
	}
	defer m.Close()

	v, dirty, ok, err := m.Version()
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(cmd.Root().Writer, "no migrations applied")
		return nil
	}
	fmt.Fprintf(cmd.Root().Writer, "version %d dirty=%t\n", v, dirty)
	return nil
}

func createUser(ctx context.Context, cmd *cli.Command) error {
	pool, err := db.Connect(ctx, cmd.String("database-url"))
	if err != nil {
		return err
	}
	defer pool.Close()

	auth := service.NewAuthService(repository.NewUserRepository(pool), nil)
	u, err := auth.Register(ctx, cmd.String("username"), cmd.String("password"))
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	fmt.Fprintf(cmd.Root().Writer, "created user id=%d username=%s\n", u.ID, u.Username)
	return nil
}

func mintToken(_ context.Context, cmd *cli.Command) error {
	jwts, err := service.NewJWTService(cmd.String("secret"), cmd.Duration("ttl"))
	if err != nil {
		return err
	}
	tok, err := jwts.GenerateJWT(cmd.Int64("user-id"), cmd.String("username"))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.Root().Writer, tok)
	return nil
}
