package integration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
	"this-or-that/internal/app"
	"this-or-that/internal/domain"
	"this-or-that/internal/infra/postgres"
	pgmigrations "this-or-that/internal/infra/postgres/migrations"
	infraredis "this-or-that/internal/infra/redis"
)

func TestGameFlowEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	migrateSchema(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()
	repo := postgres.NewGameRepository(pool)

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	games := infraredis.NewGameCache(redisClient, repo, 5*time.Minute)
	admin := app.NewAdminService(repo, games, logger)
	play := app.NewPlayService(repo, games, infraredis.NewDraftStore(redisClient, time.Hour), infraredis.NewIdentityStore(redisClient, time.Hour), logger)
	board := app.NewLeaderboardService(repo, games)

	host := domain.User{ID: "host-1"}
	game, err := admin.CreateGame(ctx, host, app.CreateGameInput{
		Title:             "Baby Shower",
		Slug:              "shower",
		OptionALabel:      "Mom",
		OptionBLabel:      "Dad",
		OptionAEmoji:      "👩",
		TiebreakerEnabled: true,
		TiebreakerPrompt:  "How many jelly beans?",
		TiebreakerAnswer:  "250",
	})
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	if !game.IsOpen || game.OptionBEmoji != "" || game.TiebreakerAnswer == nil || *game.TiebreakerAnswer != 250 {
		t.Fatalf("unexpected stored game %+v", game)
	}

	// the unique constraint backs the slug pre-check
	if _, err := repo.InsertGame(ctx, domain.Game{Slug: "shower", Title: "Dup", OptionALabel: "A", OptionBLabel: "B", CreatedBy: "host-2", Theme: domain.ThemeDefault}); !errors.Is(err, domain.ErrSlugTaken) {
		t.Fatalf("expected slug taken from unique violation, got %v", err)
	}

	var questions []domain.Question
	for _, tag := range []string{"mom", "dad"} {
		prompt := "Who is more likely to cry? " + tag
		correct := tag
		q, err := admin.AddQuestion(ctx, host, game.ID, app.QuestionInput{Prompt: &prompt, CorrectAnswer: &correct})
		if err != nil {
			t.Fatalf("add question: %v", err)
		}
		questions = append(questions, q)
	}
	if questions[0].OrderIndex != 0 || questions[1].OrderIndex != 1 {
		t.Fatalf("expected order 0 and 1, got %+v", questions)
	}

	ann, err := play.Join(ctx, "client-ann", "shower", "Ann", "Lee")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	again, err := play.Join(ctx, "client-other", "shower", "Ann", "Lee")
	if err != nil || again.ID != ann.ID {
		t.Fatalf("expected rejoin to reuse player, got %+v err=%v", again, err)
	}
	bob, err := play.Join(ctx, "client-bob", "shower", "Bob", "")
	if err != nil {
		t.Fatalf("join bob: %v", err)
	}

	guess := "240"
	if _, err := play.SubmitAll(ctx, "shower", ann.ID, app.BulkSubmission{
		Answers:    map[string]string{questions[0].ID: domain.OptionA, questions[1].ID: domain.OptionB},
		Tiebreaker: &guess,
	}); err != nil {
		t.Fatalf("submit all: %v", err)
	}

	lb, err := board.Leaderboard(ctx, "shower")
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(lb.Entries) != 2 || lb.Entries[0].PlayerID != ann.ID || lb.Entries[0].Score != 2 || lb.Entries[1].Score != 0 {
		t.Fatalf("unexpected leaderboard %+v", lb.Entries)
	}

	detail, err := admin.PlayerDetail(ctx, host, game.ID, ann.ID)
	if err != nil {
		t.Fatalf("player detail: %v", err)
	}
	if detail.Tiebreaker == nil || detail.Tiebreaker.Distance != 10 {
		t.Fatalf("unexpected tiebreaker %+v", detail.Tiebreaker)
	}

	// answers sharing a timestamp keep insertion order, so the later row wins
	at := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	qid := questions[0].ID
	for _, text := range []string{domain.OptionB, domain.OptionA, domain.OptionB, domain.OptionA} {
		if _, err := repo.InsertAnswers(ctx, []domain.Answer{{GameID: game.ID, PlayerID: bob.ID, QuestionID: &qid, Text: text, CreatedAt: at}}); err != nil {
			t.Fatalf("insert answer: %v", err)
		}
	}
	bobAnswers, err := repo.ListPlayerAnswers(ctx, game.ID, bob.ID)
	if err != nil {
		t.Fatalf("list answers: %v", err)
	}
	if got := app.LatestAnswers(bobAnswers)[bob.ID][qid].Text; got != domain.OptionA {
		t.Fatalf("expected last inserted answer to win, got %q", got)
	}

	if _, err := repo.GetPlayer(ctx, game.ID, "not-a-uuid"); !errors.Is(err, domain.ErrPlayerNotFound) {
		t.Fatalf("expected not found for malformed id, got %v", err)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "tot", "POSTGRES_PASSWORD": "totpass", "POSTGRES_DB": "totdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://tot:totpass@%s:%s/totdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func migrateSchema(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
