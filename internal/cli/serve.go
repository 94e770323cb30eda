// internal/cli/serve.go
//
// serve 指令負責組裝整個應用：
// 設定 → 日誌等級 → Store → （選用）Redis 事件 → 還原已保存的登錄簿 → gin HTTP 伺服器。
// 收到 SIGINT/SIGTERM 時以逾時關閉伺服器，最後關閉 Store。
package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"acctregistry/internal/bank"
	"acctregistry/internal/config"
	"acctregistry/internal/events"
	"acctregistry/internal/logging"
	"acctregistry/internal/server"
	"acctregistry/internal/storage"
)

const shutdownTimeout = 5 * time.Second

// NewServeCommand 建立 serve 子指令；旗標名稱與 config 的 flagKeys 一致。
func NewServeCommand(root *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd, root.ConfigFile)
			if err != nil {
				return err
			}
			logging.SetLevel(cfg.Log.Level)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}

	f := cmd.Flags()
	f.String("addr", ":8080", "listen address")
	f.String("storage", "memory", "snapshot store (memory|file|sqlite|postgres|mysql|redis)")
	f.String("storage-path", "data", "directory for the file store")
	f.String("storage-format", "json", "file store format (json|yaml|zst)")
	f.String("dsn", "", "database DSN for sqlite/postgres/mysql")
	f.String("redis-addr", "localhost:6379", "redis address for the redis store and events")
	f.Bool("events", false, "publish domain events to a redis stream")
	f.StringSlice("registry", nil, "registry label to create at startup (repeatable)")

	return cmd
}

// app 為 serve 組好的元件，便於測試與關閉。
type app struct {
	srv    *server.Server
	store  storage.Store
	closer func()
}

func (a *app) Close() {
	if a.closer != nil {
		a.closer()
	}
	if err := a.store.Close(); err != nil {
		logging.Warnf("close store: %v", err)
	}
}

// build 依設定開啟 Store 與事件發佈者，還原已保存的登錄簿並補上設定中列出的標籤。
func build(ctx context.Context, cfg config.Config) (*app, error) {
	store, err := storage.Open(ctx, storage.Options{
		Type:      cfg.Storage.Type,
		Path:      cfg.Storage.Path,
		Format:    cfg.Storage.Format,
		DSN:       cfg.Storage.DSN,
		RedisAddr: cfg.Redis.Addr,
		RedisPass: cfg.Redis.Password,
		RedisDB:   cfg.Redis.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Storage.Type, err)
	}
	a := &app{store: store}

	var pub events.Publisher = events.Nop{}
	if cfg.Events.Enabled {
		client, err := storage.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("events: %w", err)
		}
		a.closer = func() { _ = client.Close() }
		pub = events.NewRedisPublisher(client, cfg.Events.Stream)
		logging.Infof("publishing events to stream %q", cfg.Events.Stream)
	}

	a.srv = server.NewServer(store, pub)
	if err := a.srv.Restore(ctx); err != nil {
		a.Close()
		return nil, err
	}
	for _, label := range cfg.Registries {
		if _, ok := a.srv.Registry(label); ok {
			continue
		}
		r := bank.NewRegistry(label)
		if err := a.srv.AddRegistry(r); err != nil {
			a.Close()
			return nil, err
		}
		if err := store.Save(ctx, r.Snapshot()); err != nil {
			logging.Warnf("persist %q: %v", label, err)
		}
	}
	return a, nil
}

func serve(ctx context.Context, cfg config.Config) error {
	a, err := build(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           a.srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Infof("account registry listening on %s (storage=%s)", cfg.Server.Addr, cfg.Storage.Type)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logging.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}
