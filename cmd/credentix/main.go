package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/credentix/credentix/email"
	"github.com/credentix/credentix/generates"
	"github.com/credentix/credentix/geoip"
	"github.com/credentix/credentix/keys"
	"github.com/credentix/credentix/migrate"
	"github.com/credentix/credentix/seed"
	"github.com/credentix/credentix/server"
	"github.com/credentix/credentix/store"
)

func main() {
	cfg := server.GetAppConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	// Optionally run DB migrations and seeds before the server starts.
	// Configure via environment variables (see migrate.RunFromEnv docs):
	// MIGRATE_ON_START=1 MIGRATE_DRIVER=postgres MIGRATE_DSN=...
	if err := migrate.RunFromEnv(); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}
	if err := seed.RunFromEnv(); err != nil {
		log.Fatalf("seed failed: %v", err)
	}

	kp, err := keys.Load(cfg.Keys.PrivatePath, cfg.Keys.KID)
	if err != nil {
		log.Fatalf("keys: %v", err)
	}

	var db *gorm.DB
	if cfg.Database.DSN != "" {
		db, err = gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
		if err != nil {
			log.Fatalf("database: %v", err)
		}
	}

	var clients store.ClientStore
	var users store.UserStore
	if db != nil {
		clients = store.NewDBClientStore(db)
		users = store.NewDBUserStore(db)
	} else {
		log.Printf("no database DSN configured, using in-memory stores")
		clients = store.NewClientStore()
		users = store.NewMemUserStore()
	}

	// Grant store: prefer Valkey when configured; the embedded store
	// keeps single-node deployments and local development working.
	var grants store.GrantStore
	if cfg.Valkey.Addr != "" {
		vs, err := store.NewValkeyGrantStore(cfg.Valkey.Addr, cfg.Valkey.Prefix, db)
		if err != nil {
			log.Fatalf("valkey: %v", err)
		}
		grants = vs
		log.Printf("using Valkey grant store at %s", cfg.Valkey.Addr)
		if db != nil {
			go func() {
				t := time.NewTicker(10 * time.Minute)
				defer t.Stop()
				for range t.C {
					if err := vs.PurgeExpiredMirror(context.Background()); err != nil {
						log.Printf("grant mirror purge: %v", err)
					}
				}
			}()
		}
	} else {
		bs, err := store.NewBuntGrantStore(":memory:")
		if err != nil {
			log.Fatalf("grant store: %v", err)
		}
		grants = bs
		log.Printf("no Valkey address configured, using embedded grant store")
	}

	srvCfg := server.NewConfig()
	srvCfg.Issuer = cfg.Issuer

	codec := generates.NewJWTGenerate(cfg.Issuer, []byte(cfg.Secrets.Access), []byte(cfg.Secrets.Refresh), kp)

	srv := server.NewServer(srvCfg, clients, users, grants, codec, kp)

	notifier := server.NewNotifier(email.NewConsoleSender())
	notifier.SetGeoIP(geoip.NewClient())
	srv.SetNotifier(notifier)

	engine := server.NewGinEngine(srv)

	go func() {
		log.Printf("credentix listening on %s (issuer %s)", cfg.Listen, cfg.Issuer)
		if err := engine.Run(cfg.Listen); err != nil {
			log.Fatalf("server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("shutting down")
	notifier.Close()
}
