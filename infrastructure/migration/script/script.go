package main

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/sales-dashboard-api/infrastructure/database/postgres"
	"github.com/vfg2006/sales-dashboard-api/internal/config"
)

var statements = []struct {
	name  string
	query string
}{
	{
		name: "tabela analysis_runs",
		query: `
			CREATE TABLE IF NOT EXISTS analysis_runs (
				id               VARCHAR(12) PRIMARY KEY,
				status           VARCHAR(16) NOT NULL,
				error            TEXT,
				inventory_file   TEXT NOT NULL DEFAULT '',
				sales_file       TEXT NOT NULL DEFAULT '',
				inventory_rows   INTEGER NOT NULL DEFAULT 0,
				sales_rows       INTEGER NOT NULL DEFAULT 0,
				distinct_days    INTEGER NOT NULL DEFAULT 0,
				first_sales_date DATE,
				last_sales_date  DATE,
				duration_ms      BIGINT NOT NULL DEFAULT 0,
				created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`,
	},
	{
		name:  "índice analysis_runs_created_at_idx",
		query: `CREATE INDEX IF NOT EXISTS analysis_runs_created_at_idx ON analysis_runs (created_at DESC)`,
	},
}

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logrus.Info("Iniciando script de migração...")

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao carregar configuração")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	conn, err := postgres.NewConnection(ctx, cfg.Database)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao conectar ao banco de dados")
	}
	defer conn.Close()
	logrus.Info("Conexão com o banco de dados estabelecida com sucesso")

	startTime := time.Now()
	err = conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
		for _, stmt := range statements {
			logrus.Infof("Aplicando %s", stmt.name)
			if _, err := tx.ExecContext(ctx, stmt.query); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao aplicar migração, transação revertida")
	}

	logrus.Infof("Migração concluída em %v", time.Since(startTime))
}
