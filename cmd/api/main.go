package main

import (
	"context"
	"os"
	"path"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/mar-forecast-api/infrastructure/database/postgres"
	"github.com/vfg2006/mar-forecast-api/infrastructure/repository"
	"github.com/vfg2006/mar-forecast-api/internal/api"
	"github.com/vfg2006/mar-forecast-api/internal/config"
	"github.com/vfg2006/mar-forecast-api/internal/scheduler"
	"github.com/vfg2006/mar-forecast-api/internal/usecases/authenticating"
	"github.com/vfg2006/mar-forecast-api/internal/usecases/forecasting"
)

func main() {
	// Inicializa configuração de logs
	configureLogger()

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	// Define o nível de log com base na configuração
	logLevel, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		logrus.Warnf("Nível de log inválido: %s, usando 'info'", cfg.App.LogLevel)
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)
	logrus.Infof("Nível de log configurado para: %s", logLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgConn := pgconn(ctx, cfg.Database)
	defer pgConn.Close()

	userRepo := repository.NewUserRepository(pgConn)
	marHistoryRepo := repository.NewMarHistoryRepository(pgConn)
	marForecastRepo := repository.NewMarForecastRepository(pgConn)

	authenticator := authenticating.NewService(userRepo, cfg)

	forecastService := forecasting.NewService(cfg, marHistoryRepo, marForecastRepo)

	// Inicializa o agendador do pipeline de previsão
	forecastSyncService := scheduler.NewForecastSyncService(
		marHistoryRepo,
		marForecastRepo,
		forecastService,
		cfg,
	)

	// Inicia o agendador em background
	if err := forecastSyncService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar o agendador da previsão de MAR")
	} else {
		logrus.Info("Agendador da previsão de MAR iniciado com sucesso")
	}

	server, err := api.New(
		cfg,
		forecastService,
		authenticator,
		forecastSyncService,
	)
	if err != nil {
		logrus.Fatal(err)
	}

	if err := server.Run(ctx); err != nil {
		logrus.Error(err)
	}
}

// configureLogger configura o formato e comportamento dos logs
func configureLogger() {
	_, file, _, _ := runtime.Caller(0)
	dir := path.Dir(file)
	os.Chdir(dir)

	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
}

// pgconn cria uma conexão com o banco de dados
func pgconn(ctx context.Context, dbConfig config.Database) *postgres.Connection {
	conn, err := postgres.NewConnection(ctx, dbConfig)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao conectar ao PostgreSQL")
	}

	err = conn.Ping(ctx)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao testar conexão com PostgreSQL")
	}

	logrus.Info("Conexão com PostgreSQL estabelecida com sucesso")
	return conn
}
