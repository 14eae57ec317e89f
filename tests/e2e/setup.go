//go:build e2e

package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"pride-notify/cmd/bootstrap"
	"pride-notify/cmd/bootstrap/components"
	"pride-notify/internal/infra/db"
	"pride-notify/internal/pkg/apikey"
	"pride-notify/internal/pkg/config"
	"pride-notify/internal/pkg/jwt"
	"pride-notify/internal/pkg/secret"

	"github.com/docker/go-connections/nat"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/fx"
)

const (
	TriggerKey = "e2e-trigger-key"

	esbUser     = "esb-user"
	esbPassword = "esb-pass"
	esbAPIKey   = "esb-api-key"

	// FailingRecipient makes the fake SMS gateway answer 502.
	FailingRecipient = "0700000099"
)

var (
	postgresContainerOnce sync.Once
	postgresTestContainer testcontainers.Container

	testUser     = "test"
	testPassword = "testpass"
)

type ContainerInfo struct {
	Host string
	Port nat.Port
}

// FakeESB serves a canned JSON body per category path.
type FakeESB struct {
	*httptest.Server
	mu     sync.Mutex
	bodies map[string]any
}

func newFakeESB() *FakeESB {
	f := &FakeESB{bodies: map[string]any{}}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != esbUser || pass != esbPassword || r.URL.Query().Get("apiKey") != esbAPIKey {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		f.mu.Lock()
		body, found := f.bodies[strings.TrimPrefix(r.URL.Path, "/")]
		f.mu.Unlock()
		if !found {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	}))
	return f
}

func (f *FakeESB) Serve(category string, body any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bodies[category] = body
}

func (f *FakeESB) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bodies = map[string]any{}
}

// FakeSMSGateway records every SMS it is asked to deliver.
type FakeSMSGateway struct {
	*httptest.Server
	mu   sync.Mutex
	sent []smsRequest
}

type smsRequest struct {
	Recipient string
	Message   string
}

func newFakeSMSGateway() *FakeSMSGateway {
	g := &FakeSMSGateway{}
	g.Server = httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		recipient := q.Get("recipient_addr")
		g.mu.Lock()
		g.sent = append(g.sent, smsRequest{Recipient: recipient, Message: q.Get("message")})
		g.mu.Unlock()
		if recipient == FailingRecipient {
			http.Error(w, "upstream unavailable", http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"000|ACCEPTED FOR DELIVERY"}`))
	}))
	return g
}

func (g *FakeSMSGateway) Recipients() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, 0, len(g.sent))
	for _, s := range g.sent {
		out = append(out, s.Recipient)
	}
	return out
}

func (g *FakeSMSGateway) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sent = nil
}

func setupE2EEnvironment(t *testing.T, esb *FakeESB, gw *FakeSMSGateway) (*pgxpool.Pool, *gin.Engine, config.Config) {
	postgresInfo := startContainers(t)

	dbConfig := prepareDatabase(t, postgresInfo)
	cfg := createTestConfig(t, dbConfig, esb, gw)

	router, app := buildE2EApp(t, cfg)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.Stop(ctx); err != nil {
			slog.Warn("failed to stop fx app", "error", err.Error())
		}
	})

	pool, cleanup, err := db.Connect(dbConfig)
	require.NoError(t, err, "failed to open assertion pool")
	t.Cleanup(cleanup)

	return pool, router, cfg
}

func startContainers(t *testing.T) ContainerInfo {
	gin.SetMode(gin.TestMode)
	startPostgreSQLContainerOnce(t)

	postgresInfo, err := getContainerHostPort(postgresTestContainer, "5432/tcp")
	require.NoError(t, err, "failed to resolve postgres container address")
	return postgresInfo
}

// prepareDatabase creates a database per suite so suites can run in parallel.
// The app applies its own migrations on start.
func prepareDatabase(t *testing.T, postgresInfo ContainerInfo) config.DBConfig {
	dbName := "testdb_" + strings.ReplaceAll(uuid.New().String(), "-", "")

	adminDSN := fmt.Sprintf("postgres://%s:%s@%s:%s/postgres?sslmode=disable",
		testUser, testPassword, postgresInfo.Host, postgresInfo.Port.Port())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	adminPool, err := pgxpool.New(ctx, adminDSN)
	require.NoError(t, err, "failed to connect as admin")
	defer adminPool.Close()

	var createErr error
	for attempts := range 5 {
		if attempts > 0 {
			time.Sleep(min(time.Duration(500+attempts*500)*time.Millisecond, 3*time.Second))
		}
		if _, createErr = adminPool.Exec(ctx, "CREATE DATABASE "+dbName); createErr == nil {
			break
		}
		slog.Warn("retrying database creation", "attempt", attempts+1, "error", createErr.Error())
	}
	require.NoError(t, createErr, "failed to create test database")

	t.Cleanup(func() {
		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cleanupCancel()
		cleanupPool, err := pgxpool.New(cleanupCtx, adminDSN)
		if err != nil {
			slog.Warn("failed to connect for cleanup", "database", dbName, "error", err.Error())
			return
		}
		defer cleanupPool.Close()
		if _, err := cleanupPool.Exec(cleanupCtx, "DROP DATABASE IF EXISTS "+dbName+" WITH (FORCE)"); err != nil {
			slog.Warn("failed to drop test database", "database", dbName, "error", err.Error())
		}
	})

	return config.DBConfig{
		Host:     postgresInfo.Host,
		Port:     postgresInfo.Port.Port(),
		User:     testUser,
		Password: testPassword,
		DBName:   dbName,
		SSLMode:  "disable",
		TimeZone: "Africa/Kampala",
		MaxConns: 4,
	}
}

func createTestConfig(t *testing.T, dbConfig config.DBConfig, esb *FakeESB, gw *FakeSMSGateway) config.Config {
	t.Helper()
	key, err := secret.GenerateKey()
	require.NoError(t, err)
	c, err := secret.NewCipher(key)
	require.NoError(t, err)
	enc := func(v string) string {
		token, err := c.Encrypt(v)
		require.NoError(t, err)
		return token
	}
	hash, err := apikey.Hash(TriggerKey)
	require.NoError(t, err)

	cfg := config.NewTestConfig()
	cfg.DB = dbConfig
	cfg.Store = config.StoreConfig{Driver: config.StoreDriverPostgres}
	cfg.Crypto.EncryptionKey = key
	cfg.Trigger.APIKeyHash = hash
	cfg.Sources = config.SourcesConfig{
		User:         enc(esbUser),
		Password:     enc(esbPassword),
		APIKey:       enc(esbAPIKey),
		LoansDueURL:  enc(esb.URL + "/loans_due"),
		BirthdaysURL: enc(esb.URL + "/birthdays"),
		EscrowURL:    enc(esb.URL + "/escrow"),
	}
	cfg.Gateway.SMSURL = enc(gw.URL + "/sms")
	cfg.Gateway.SMSSenderName = enc("PRIDE")
	cfg.Gateway.SMSPassword = enc("gw-pass")
	cfg.Schedule.Enabled = false
	return cfg
}

func buildE2EApp(t *testing.T, cfg config.Config) (*gin.Engine, *fx.App) {
	t.Helper()
	var router *gin.Engine

	app := fx.New(
		fx.Supply(cfg),
		fx.Provide(func() *gin.Engine { return gin.New() }),
		bootstrap.DispatchModule,
		components.HandlerModule,

		fx.Populate(&router),
		fx.NopLogger,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, app.Start(ctx), "failed to start fx app")
	require.NotNil(t, router)
	return router, app
}

func startPostgreSQLContainerOnce(t *testing.T) {
	postgresContainerOnce.Do(func() {
		req := testcontainers.ContainerRequest{
			Image:        "postgres:17",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     testUser,
				"POSTGRES_PASSWORD": testPassword,
				"POSTGRES_DB":       "postgres",
			},
			Tmpfs: map[string]string{
				"/var/lib/postgresql/data": "rw,size=512m",
			},
			Cmd: []string{
				"postgres",
				"-c", "fsync=off",
				"-c", "full_page_writes=off",
				"-c", "synchronous_commit=off",
				"-c", "max_connections=200",
				"-c", "log_statement=none",
			},
			WaitingFor: wait.ForSQL("5432/tcp", "pgx", func(host string, port nat.Port) string {
				return fmt.Sprintf("postgres://%s:%s@%s:%s/postgres?sslmode=disable",
					testUser, testPassword, host, port.Port())
			}).WithStartupTimeout(60 * time.Second),
			Labels: map[string]string{"purpose": "e2e-tests"},
		}

		ctx, cancel := context.WithTimeout(context.Background(), 180*time.Second)
		defer cancel()
		var err error
		postgresTestContainer, err = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: req,
			Started:          true,
		})
		require.NoError(t, err, "failed to start postgres container")
	})
}

func getContainerHostPort(c testcontainers.Container, port string) (ContainerInfo, error) {
	ctx := context.Background()
	mappedPort, err := c.MappedPort(ctx, nat.Port(port))
	if err != nil {
		return ContainerInfo{}, err
	}
	host, err := c.Host(ctx)
	if err != nil {
		return ContainerInfo{}, err
	}
	return ContainerInfo{Host: host, Port: mappedPort}, nil
}

// SharedSuite boots one app per suite against its own database and fakes.
type SharedSuite struct {
	suite.Suite
	Router  *gin.Engine
	DB      *pgxpool.Pool
	Config  config.Config
	ESB     *FakeESB
	Gateway *FakeSMSGateway
}

func (s *SharedSuite) SetupSuite() {
	t := s.T()
	s.ESB = newFakeESB()
	s.Gateway = newFakeSMSGateway()
	t.Cleanup(s.ESB.Close)
	t.Cleanup(s.Gateway.Close)

	s.DB, s.Router, s.Config = setupE2EEnvironment(t, s.ESB, s.Gateway)
}

// SetupSubTest empties every log table and the fakes.
func (s *SharedSuite) SetupSubTest() {
	ctx := context.Background()
	_, err := s.DB.Exec(ctx, `TRUNCATE loan_due_logs, birthday_logs, group_loan_logs, atm_expiry_logs,
		custom_message_logs, escrow_logs, ledger_report_logs`)
	require.NoError(s.T(), err, "failed to reset log tables")
	s.ESB.Reset()
	s.Gateway.Reset()
}

// Token mints a report API token for role.
func (s *SharedSuite) Token(role string) string {
	tok, err := jwt.NewService(s.Config.JWT.Secret).GenerateToken("e2e-operator", role, time.Hour)
	require.NoError(s.T(), err)
	return tok
}
