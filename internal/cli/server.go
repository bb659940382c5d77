package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cohort-admin/internal/app"
	"cohort-admin/internal/config"
	"cohort-admin/internal/infra/memory"
	"cohort-admin/internal/infra/postgres"
	infraredis "cohort-admin/internal/infra/redis"
	transport "cohort-admin/internal/transport/http"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the HTTP and websocket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

type stores struct {
	regs      app.RegistrationRepository
	questions app.QuestionRepository
	keys      app.AnswerKeySource
	scores    app.ScoreRepository
	projects  app.ProjectRepository
	staff     app.StaffRepository
	notes     app.NoteRepository
	close     func()
}

// openStores picks Postgres (plus Redis for answer keys) when configured,
// otherwise the in-memory stores.
func openStores(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (stores, error) {
	keyTTL := config.TTLDuration(cfg.AnswerKeys.TTL, 10*time.Minute)

	if cfg.Postgres.URL == "" {
		log.Warn("postgres url not configured, using in-memory stores")
		regs := memory.NewRegistrationStore()
		questions := memory.NewQuestionStore()
		return stores{
			regs:      regs,
			questions: questions,
			keys:      memory.NewAnswerKeyCache(questions, keyTTL),
			scores:    memory.NewScoreStore(),
			projects:  memory.NewProjectStore(regs),
			staff:     memory.NewStaffStore(),
			notes:     memory.NewNoteStore(),
			close:     func() {},
		}, nil
	}

	if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
		return stores{}, err
	}
	db := postgres.Open(cfg.Postgres.URL)
	pool, err := postgres.OpenPool(ctx, cfg.Postgres.URL)
	if err != nil {
		db.Close()
		return stores{}, err
	}
	loader := postgres.NewAnswerKeyLoader(pool)

	var keys app.AnswerKeySource
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		keys = infraredis.NewAnswerKeyCache(redisClient, loader, keyTTL)
	} else {
		keys = memory.NewAnswerKeyCache(loader, keyTTL)
	}

	return stores{
		regs:      postgres.NewRegistrationStore(db),
		questions: postgres.NewQuestionStore(db),
		keys:      keys,
		scores:    postgres.NewScoreStore(db),
		projects:  postgres.NewProjectStore(db),
		staff:     postgres.NewStaffStore(db),
		notes:     postgres.NewNoteStore(db),
		close: func() {
			if redisClient != nil {
				_ = redisClient.Close()
			}
			pool.Close()
			_ = db.Close()
		},
	}, nil
}

// newServices builds the application layer on top of st.
func newServices(cfg config.Config, st stores, log logrus.FieldLogger) transport.Services {
	registrar := app.NewRegistrar(st.regs, app.IdentityOptions{
		Floor:      cfg.Identity.InitialStudentID,
		Width:      cfg.Identity.Width,
		MaxRetries: cfg.Identity.MaxRetries,
	}, log)
	bank := app.NewQuestionBank(st.questions, st.keys, log)
	ledger := app.NewScoreLedger(st.scores, bank, log)
	agg := app.NewAggregator(st.scores, st.regs)
	return transport.Services{
		Registrar: registrar,
		Bank:      bank,
		Ledger:    ledger,
		Agg:       agg,
		Projects:  app.NewProjectRegistry(st.projects, log),
		Wallets:   app.NewWalletDirectory(st.staff, st.regs, log),
		Feed:      app.NewQuizFeed(registrar, ledger, agg, log),
		Notes:     app.NewNoteBook(st.notes, log),
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewRouter(newServices(cfg, st, log), log),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.WithField("port", finalPort).Info("starting cohort admin service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server...")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
