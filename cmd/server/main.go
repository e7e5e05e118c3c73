package main

import (
	"log"
	"net/http"

	"go.uber.org/zap"

	"github.com/lojf/enrollments/internal/config"
	"github.com/lojf/enrollments/internal/db"
	"github.com/lojf/enrollments/internal/logger"
	"github.com/lojf/enrollments/internal/metrics"
	svc "github.com/lojf/enrollments/internal/services"
	"github.com/lojf/enrollments/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	l, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer l.Sync() //nolint:errcheck

	schema, err := svc.SchemaFor(svc.Variant(cfg.Enrollment.Variant))
	if err != nil {
		l.Fatal("schema", zap.Error(err))
	}

	conn, err := db.Open(cfg.Database, l)
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	if err := db.Migrate(conn, schema.NewRecord()); err != nil {
		l.Fatal("db migrate", zap.Error(err))
	}
	l.Info("database ready (sqlite)", zap.String("path", cfg.Database.Path), zap.String("variant", cfg.Enrollment.Variant))

	r, err := web.Router(web.Deps{
		DB:        conn,
		Store:     db.NewStore(conn),
		Schema:    schema,
		Log:       l,
		Metrics:   metrics.New(),
		PublicURL: cfg.PublicURL,
		StaticDir: cfg.StaticDir,
	})
	if err != nil {
		l.Fatal("router", zap.Error(err))
	}

	l.Info("enrollment service listening", zap.String("addr", cfg.Addr))
	if err := http.ListenAndServe(cfg.Addr, r); err != nil {
		l.Fatal("listen", zap.Error(err))
	}
}
