package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sqliteadapter "github.com/atvirokodosprendimai/pressroom/internal/adapters/db/sqlite"
	httpadapter "github.com/atvirokodosprendimai/pressroom/internal/adapters/http"
	rpcadapter "github.com/atvirokodosprendimai/pressroom/internal/adapters/rpcjson"
	"github.com/atvirokodosprendimai/pressroom/internal/application"
	"github.com/atvirokodosprendimai/pressroom/internal/domain"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"
)

func main() {
	_ = godotenv.Load()

	args := os.Args
	if len(args) == 1 {
		args = append(args, "--help")
	}

	root := &cli.Command{
		Name:  "pressroom",
		Usage: "Publishing content server and CLI",
		Commands: []*cli.Command{
			serverCommand(),
			seedCommand(),
			accountsCommand(),
			profileCommand(),
			contentCommand(),
			tagsCommand(),
			configCommand(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runServer(ctx, ":8080", "/tmp/pressroom.sock", "pressroom.db", "")
		},
	}

	if err := root.Run(context.Background(), args); err != nil {
		log.Fatal(err)
	}
}

func serverCommand() *cli.Command {
	return &cli.Command{
		Name:  "server",
		Usage: "Run HTTP and JSON-RPC server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Value: ":8080", Usage: "HTTP listen address", Sources: cli.EnvVars("PRESSROOM_ADDR")},
			&cli.StringFlag{Name: "rpc-socket", Value: "/tmp/pressroom.sock", Usage: "JSON-RPC unix socket path", Sources: cli.EnvVars("PRESSROOM_RPC_SOCKET")},
			&cli.StringFlag{Name: "db-path", Value: "pressroom.db", Usage: "SQLite database path", Sources: cli.EnvVars("PRESSROOM_DB_PATH")},
			&cli.StringFlag{Name: "api-token", Usage: "bearer token required on mutating requests, open when empty", Sources: cli.EnvVars("PRESSROOM_API_TOKEN")},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return runServer(ctx, c.String("addr"), c.String("rpc-socket"), c.String("db-path"), c.String("api-token"))
		},
	}
}

func runServer(ctx context.Context, addr, rpcSocket, dbPath, apiToken string) error {
	db, err := sqliteadapter.Open(dbPath)
	if err != nil {
		return err
	}
	if err := sqliteadapter.RunMigrations(ctx, db); err != nil {
		return err
	}

	logger := zerolog.New(os.Stderr).With().Timestamp().Str("service", "pressroom").Logger()
	repo := sqliteadapter.NewPublishingRepository(db)
	hooks := application.NewHooks(logger)
	writes := application.NewWriteService(repo, hooks, logger)
	reads := application.NewReadService(repo)

	router := httpadapter.NewRouter(writes, reads, apiToken, logger)
	srv := &http.Server{Addr: addr, Handler: router, ReadHeaderTimeout: 5 * time.Second}
	rpcSrv, err := rpcadapter.Start(rpcSocket, writes, reads, apiToken)
	if err != nil {
		return err
	}

	defer func() {
		_ = rpcSrv.Close()
	}()
	logger.Info().Str("socket", rpcSocket).Msg("json-rpc listening")

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("http listening")
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Load sample accounts, contents and tags when the database is empty",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "db-path", Value: "pressroom.db", Usage: "SQLite database path", Sources: cli.EnvVars("PRESSROOM_DB_PATH")},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return runSeed(ctx, c.String("db-path"))
		},
	}
}

func runSeed(ctx context.Context, dbPath string) error {
	db, err := sqliteadapter.Open(dbPath)
	if err != nil {
		return err
	}
	if err := sqliteadapter.RunMigrations(ctx, db); err != nil {
		return err
	}

	repo := sqliteadapter.NewPublishingRepository(db)
	existing, err := repo.ListAccounts(ctx, "", 1)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		fmt.Println("database already has accounts, skipping seed")
		return nil
	}

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	writes := application.NewWriteService(repo, application.NewHooks(logger), logger)

	seeds := []struct {
		account application.CreateAccountInput
		profile string
		posts   []application.CreateContentInput
	}{
		{
			account: application.CreateAccountInput{FirstName: "Ada", LastName: "Petrova", Email: "ada@pressroom.dev"},
			profile: "Editor covering infrastructure and tooling.",
			posts: []application.CreateContentInput{
				{Title: "Shipping the first release", Body: "Notes from the first cut.", Status: "active", TagNames: []string{"release-notes", "go"}},
				{Title: "Draft roadmap for autumn", Body: "Still collecting input.", Status: "draft", TagNames: []string{"roadmap"}},
			},
		},
		{
			account: application.CreateAccountInput{FirstName: "Jonas", LastName: "Kairys", Email: "jonas@pressroom.dev"},
			profile: "Staff writer, databases and storage.",
			posts: []application.CreateContentInput{
				{Title: "SQLite in production", Body: "Single writer, many readers.", Status: "active", TagNames: []string{"sqlite", "go"}},
				{Title: "Archived migration guide", Body: "Superseded by the new guide.", Status: "archived", TagNames: []string{"sqlite"}},
			},
		},
		{
			account: application.CreateAccountInput{FirstName: "Ruta", LastName: "Adomaitis", Email: "ruta@pressroom.dev"},
			posts: []application.CreateContentInput{
				{Title: "Tutorial backlog grooming", Body: "What to write next.", Status: "draft", TagNames: []string{"tutorial"}},
			},
		},
	}

	for _, seed := range seeds {
		account, err := writes.CreateAccount(ctx, seed.account)
		if err != nil {
			return err
		}
		if seed.profile != "" {
			if _, err := writes.CreateProfile(ctx, application.CreateProfileInput{AccountID: account.ID, Description: seed.profile}); err != nil {
				return err
			}
		}
		for _, post := range seed.posts {
			post.AccountID = account.ID
			if _, err := writes.CreateContentWithTags(ctx, post); err != nil {
				return err
			}
		}
	}
	fmt.Println("seeded sample publishing data")
	return nil
}

func accountsCommand() *cli.Command {
	return &cli.Command{
		Name:  "accounts",
		Usage: "Account commands",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "first-name", Required: true},
					&cli.StringFlag{Name: "last-name", Required: true},
					&cli.StringFlag{Name: "email", Required: true},
					&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out domain.Account
					err = doAccountCreate(ctx, cfg, c.String("first-name"), c.String("last-name"), c.String("email"), &out)
					if err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printAccounts([]domain.Account{out})
					return nil
				},
			},
			{
				Name:  "get",
				Usage: "Show account with profile and contents",
				Flags: []cli.Flag{&cli.UintFlag{Name: "id", Required: true}, &cli.BoolFlag{Name: "json", Usage: "output raw JSON"}},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out domain.Account
					if err := doAccountGet(ctx, cfg, c.Uint("id"), &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printAccountDetail(out)
					return nil
				},
			},
			{
				Name:  "list",
				Usage: "List accounts",
				Flags: []cli.Flag{&cli.StringFlag{Name: "q"}, &cli.BoolFlag{Name: "json", Usage: "output raw JSON"}},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out []domain.Account
					if err := doAccountsList(ctx, cfg, c.String("q"), &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printAccounts(out)
					return nil
				},
			},
			{
				Name:  "update",
				Usage: "Update account fields",
				Flags: []cli.Flag{
					&cli.UintFlag{Name: "id", Required: true},
					&cli.StringFlag{Name: "first-name"},
					&cli.StringFlag{Name: "last-name"},
					&cli.StringFlag{Name: "email"},
					&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out domain.Account
					err = doAccountUpdate(ctx, cfg, c.Uint("id"), stringFlagPtr(c, "first-name"), stringFlagPtr(c, "last-name"), stringFlagPtr(c, "email"), &out)
					if err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printAccounts([]domain.Account{out})
					return nil
				},
			},
			{
				Name:  "delete",
				Usage: "Delete account",
				Flags: []cli.Flag{&cli.UintFlag{Name: "id", Required: true}},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					if err := doAccountDelete(ctx, cfg, c.Uint("id")); err != nil {
						return err
					}
					fmt.Printf("deleted account %d\n", c.Uint("id"))
					return nil
				},
			},
		},
	}
}

func profileCommand() *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "Profile commands, addressed by owning account",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create profile for an account",
				Flags: []cli.Flag{
					&cli.UintFlag{Name: "account-id", Required: true},
					&cli.StringFlag{Name: "description"},
					&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out domain.Profile
					err = doProfileCreate(ctx, cfg, c.Uint("account-id"), c.String("description"), &out)
					if err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printProfile(out)
					return nil
				},
			},
			{
				Name:  "get",
				Usage: "Show profile by account id",
				Flags: []cli.Flag{&cli.UintFlag{Name: "account-id", Required: true}, &cli.BoolFlag{Name: "json", Usage: "output raw JSON"}},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out domain.Profile
					if err := doProfileGet(ctx, cfg, c.Uint("account-id"), &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printProfile(out)
					return nil
				},
			},
			{
				Name:  "update",
				Usage: "Update profile by account id",
				Flags: []cli.Flag{
					&cli.UintFlag{Name: "account-id", Required: true},
					&cli.StringFlag{Name: "description"},
					&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out domain.Profile
					err = doProfileUpdate(ctx, cfg, c.Uint("account-id"), stringFlagPtr(c, "description"), &out)
					if err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printProfile(out)
					return nil
				},
			},
			{
				Name:  "delete",
				Usage: "Delete profile by account id",
				Flags: []cli.Flag{&cli.UintFlag{Name: "account-id", Required: true}},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					if err := doProfileDelete(ctx, cfg, c.Uint("account-id")); err != nil {
						return err
					}
					fmt.Printf("deleted profile of account %d\n", c.Uint("account-id"))
					return nil
				},
			},
		},
	}
}

func contentCommand() *cli.Command {
	return &cli.Command{
		Name:  "content",
		Usage: "Content commands",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create content with tags in one transaction",
				Flags: []cli.Flag{
					&cli.UintFlag{Name: "account-id", Required: true},
					&cli.StringFlag{Name: "title", Required: true},
					&cli.StringFlag{Name: "body", Required: true},
					&cli.StringFlag{Name: "status", Value: "draft"},
					&cli.StringSliceFlag{Name: "tags", Usage: "tag names, repeat or comma separate"},
					&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out domain.Content
					err = doContentCreate(ctx, cfg, c.Uint("account-id"), c.String("title"), c.String("body"), c.String("status"), c.StringSlice("tags"), &out)
					if err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printContentDetail(out)
					return nil
				},
			},
			{
				Name:  "get",
				Usage: "Show content with account and tags",
				Flags: []cli.Flag{&cli.UintFlag{Name: "id", Required: true}, &cli.BoolFlag{Name: "json", Usage: "output raw JSON"}},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out domain.Content
					if err := doContentGet(ctx, cfg, c.Uint("id"), &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printContentDetail(out)
					return nil
				},
			},
			{
				Name:  "list",
				Usage: "List content, newest first",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "scope", Usage: "active, draft or archived"},
					&cli.IntFlag{Name: "page", Value: 1},
					&cli.IntFlag{Name: "page-size", Value: 10},
					&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out domain.ContentPage
					if err := doContentList(ctx, cfg, c.String("scope"), c.Int("page"), c.Int("page-size"), &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printContentPage(out)
					return nil
				},
			},
			{
				Name:  "update",
				Usage: "Update content fields",
				Flags: []cli.Flag{
					&cli.UintFlag{Name: "id", Required: true},
					&cli.StringFlag{Name: "title"},
					&cli.StringFlag{Name: "body"},
					&cli.StringFlag{Name: "status"},
					&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out domain.Content
					err = doContentUpdate(ctx, cfg, c.Uint("id"), stringFlagPtr(c, "title"), stringFlagPtr(c, "body"), stringFlagPtr(c, "status"), &out)
					if err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printContentDetail(out)
					return nil
				},
			},
			{
				Name:  "delete",
				Usage: "Delete content and its tag links",
				Flags: []cli.Flag{&cli.UintFlag{Name: "id", Required: true}},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					if err := doContentDelete(ctx, cfg, c.Uint("id")); err != nil {
						return err
					}
					fmt.Printf("deleted content %d\n", c.Uint("id"))
					return nil
				},
			},
			{
				Name:  "tag",
				Usage: "Attach or detach tags",
				Commands: []*cli.Command{
					{
						Name:  "add",
						Usage: "Attach tag to content",
						Flags: []cli.Flag{
							&cli.UintFlag{Name: "content-id", Required: true},
							&cli.UintFlag{Name: "tag-id", Required: true},
						},
						Action: func(ctx context.Context, c *cli.Command) error {
							cfg, err := loadConfig()
							if err != nil {
								return err
							}
							if err := doContentTagAdd(ctx, cfg, c.Uint("content-id"), c.Uint("tag-id")); err != nil {
								return err
							}
							fmt.Printf("tag %d attached to content %d\n", c.Uint("tag-id"), c.Uint("content-id"))
							return nil
						},
					},
					{
						Name:  "remove",
						Usage: "Detach tag from content",
						Flags: []cli.Flag{
							&cli.UintFlag{Name: "content-id", Required: true},
							&cli.UintFlag{Name: "tag-id", Required: true},
						},
						Action: func(ctx context.Context, c *cli.Command) error {
							cfg, err := loadConfig()
							if err != nil {
								return err
							}
							if err := doContentTagRemove(ctx, cfg, c.Uint("content-id"), c.Uint("tag-id")); err != nil {
								return err
							}
							fmt.Printf("tag %d detached from content %d\n", c.Uint("tag-id"), c.Uint("content-id"))
							return nil
						},
					},
				},
			},
		},
	}
}

func tagsCommand() *cli.Command {
	return &cli.Command{
		Name:  "tags",
		Usage: "Tag commands",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create tag",
				Flags: []cli.Flag{&cli.StringFlag{Name: "name", Required: true}, &cli.BoolFlag{Name: "json", Usage: "output raw JSON"}},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out domain.Tag
					if err := doTagCreate(ctx, cfg, c.String("name"), &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printTags([]domain.Tag{out})
					return nil
				},
			},
			{
				Name:  "get",
				Usage: "Show tag",
				Flags: []cli.Flag{&cli.UintFlag{Name: "id", Required: true}, &cli.BoolFlag{Name: "json", Usage: "output raw JSON"}},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out domain.Tag
					if err := doTagGet(ctx, cfg, c.Uint("id"), &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printTags([]domain.Tag{out})
					return nil
				},
			},
			{
				Name:  "list",
				Usage: "List tags",
				Flags: []cli.Flag{&cli.StringFlag{Name: "q"}, &cli.BoolFlag{Name: "json", Usage: "output raw JSON"}},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out []domain.Tag
					if err := doTagsList(ctx, cfg, c.String("q"), &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printTags(out)
					return nil
				},
			},
			{
				Name:  "update",
				Usage: "Rename tag",
				Flags: []cli.Flag{
					&cli.UintFlag{Name: "id", Required: true},
					&cli.StringFlag{Name: "name"},
					&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out domain.Tag
					if err := doTagUpdate(ctx, cfg, c.Uint("id"), stringFlagPtr(c, "name"), &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printTags([]domain.Tag{out})
					return nil
				},
			},
			{
				Name:  "delete",
				Usage: "Delete tag and its content links",
				Flags: []cli.Flag{&cli.UintFlag{Name: "id", Required: true}},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					if err := doTagDelete(ctx, cfg, c.Uint("id")); err != nil {
						return err
					}
					fmt.Printf("deleted tag %d\n", c.Uint("id"))
					return nil
				},
			},
		},
	}
}

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage CLI transport configuration",
		Commands: []*cli.Command{
			{
				Name:  "set",
				Usage: "Store transport, server, socket or token",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "transport", Usage: "uds or http"},
					&cli.StringFlag{Name: "server", Usage: "HTTP server base URL"},
					&cli.StringFlag{Name: "socket", Usage: "JSON-RPC unix socket path"},
					&cli.StringFlag{Name: "token", Usage: "API token sent with mutating calls"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					if c.IsSet("transport") {
						transport := c.String("transport")
						if transport != "uds" && transport != "http" {
							return fmt.Errorf("unknown transport %q (want uds or http)", transport)
						}
						cfg.Transport = transport
					}
					if c.IsSet("server") {
						cfg.Server = c.String("server")
					}
					if c.IsSet("socket") {
						cfg.Socket = c.String("socket")
					}
					if c.IsSet("token") {
						cfg.Token = c.String("token")
					}
					if err := saveConfig(cfg); err != nil {
						return err
					}
					fmt.Println("config saved")
					return nil
				},
			},
			{
				Name:  "show",
				Usage: "Print stored CLI configuration",
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					printKV([][2]string{
						{"transport", cfg.Transport},
						{"server", cfg.Server},
						{"socket", cfg.Socket},
						{"token", cfg.Token},
					})
					return nil
				},
			},
		},
	}
}

func stringFlagPtr(c *cli.Command, name string) *string {
	if !c.IsSet(name) {
		return nil
	}
	v := c.String(name)
	return &v
}

func jsonMarshal(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}
