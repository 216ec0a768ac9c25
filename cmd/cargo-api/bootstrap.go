package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BearBump/CargoGate/config"
	"github.com/BearBump/CargoGate/internal/api/httpapi"
	"github.com/BearBump/CargoGate/internal/auth"
	"github.com/BearBump/CargoGate/internal/cache/rediscache"
	"github.com/BearBump/CargoGate/internal/integrations/backend"
	"github.com/BearBump/CargoGate/internal/integrations/backend/backendhttp"
	"github.com/BearBump/CargoGate/internal/models"
	"github.com/BearBump/CargoGate/internal/services/resolver"
	"github.com/BearBump/CargoGate/internal/services/shipments"
	"github.com/BearBump/CargoGate/internal/storage/memshipment"
	"github.com/BearBump/CargoGate/internal/storage/pgshipment"
)

type cargoAPIApp struct {
	ctx     context.Context
	cancel  context.CancelFunc
	opts    cargoAPIOpts
	api     *httpapi.Server
	closeDB func()
}

func mustBootstrapCargoAPI() *cargoAPIApp {
	cfgPath := os.Getenv("configPath")
	if cfgPath == "" {
		panic("configPath env var is required")
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		panic(fmt.Sprintf("ошибка парсинга конфига, %v", err))
	}

	httpAddr := cfg.Gate.HTTPAddr
	if httpAddr == "" {
		httpAddr = ":8080"
	}

	tokenTTL := time.Duration(cfg.Auth.TokenTTLSeconds) * time.Second
	tokens := auth.NewTokenManager(cfg.Auth.Secret, cfg.Auth.Issuer, tokenTTL)

	principals := auth.NewRegistry()

	// Локальный стор: postgres, если сконфигурирован, иначе in-memory.
	var repo shipments.Repository
	closeDB := func() {}
	mem := memshipment.New()
	if cfg.Database.Enabled {
		sslMode := cfg.Database.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		connString := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
			cfg.Database.Username, cfg.Database.Password, cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName, sslMode)
		st := mustOpenPostgresWithRetry(connString, 60*time.Second)
		repo = st
		closeDB = st.Close
	} else {
		repo = mem
	}

	svc := shipments.New(repo)

	if cfg.Gate.SeedDemoData {
		if err := principals.SeedDefaults(); err != nil {
			panic(err)
		}
		if cfg.Database.Enabled {
			if pg, ok := repo.(*pgshipment.Storage); ok {
				if err := pg.Seed(context.Background(), shipments.SeedRecords()); err != nil {
					panic(err)
				}
			}
		} else {
			mem.Seed(shipments.SeedRecords())
		}
	}

	callTimeout := time.Duration(cfg.Backends.CallTimeoutSeconds) * time.Second
	clients := buildBackendClients(cfg.Backends, callTimeout)

	res := resolver.New(clients)
	if callTimeout > 0 {
		res = res.WithCallTimeout(callTimeout)
	}

	api := httpapi.New(tokens, principals, res, svc)

	// Redis опционален: без него нет кэша резолвера и лимита логинов.
	if cfg.Redis.Host != "" {
		redisAddr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)

		cacheTTL := time.Duration(cfg.Gate.ResolveCacheTTLSeconds) * time.Second
		if cacheTTL > 0 {
			res.WithCache(rediscache.New(redisAddr), cacheTTL)
		}
		if cfg.Auth.LoginRatePerMin > 0 {
			api.WithLoginRateLimit(rediscache.NewRateLimiter(redisAddr),
				int64(cfg.Auth.LoginRatePerMin), time.Minute)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	return &cargoAPIApp{
		ctx:    ctx,
		cancel: cancel,
		opts: cargoAPIOpts{
			httpAddr:    httpAddr,
			swaggerPath: os.Getenv("swaggerPath"),
		},
		api:     api,
		closeDB: closeDB,
	}
}

// buildBackendClients собирает цепочку коннекторов в порядке приоритета
// GROUND, AIR, SEA. Бэкенд без base_url пропускается.
func buildBackendClients(cfg config.BackendsConfig, timeout time.Duration) []backend.Client {
	specs := []struct {
		system  string
		baseURL string
	}{
		{models.SystemGround, cfg.Ground.BaseURL},
		{models.SystemAir, cfg.Air.BaseURL},
		{models.SystemSea, cfg.Sea.BaseURL},
	}

	var out []backend.Client
	for _, s := range specs {
		if s.baseURL == "" {
			continue
		}
		out = append(out, backendhttp.New(s.system, s.baseURL, timeout))
	}
	return out
}

func mustOpenPostgresWithRetry(connString string, wait time.Duration) *pgshipment.Storage {
	deadline := time.Now().Add(wait)
	var lastErr error
	for time.Now().Before(deadline) {
		st, err := pgshipment.New(connString)
		if err == nil {
			return st
		}
		lastErr = err
		time.Sleep(1 * time.Second)
	}
	panic(fmt.Sprintf("postgres is not ready after %s: %v", wait, lastErr))
}

func (a *cargoAPIApp) Close() {
	if a.cancel != nil {
		a.cancel()
	}
	if a.closeDB != nil {
		a.closeDB()
	}
}

func (a *cargoAPIApp) Run() error {
	return runCargoAPI(a.ctx, a.opts, a.api)
}
