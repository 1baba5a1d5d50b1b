package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	App       App       `mapstructure:",squash"`
	Server    Server    `mapstructure:",squash"`
	Database  Database  `mapstructure:",squash"`
	Dashboard Dashboard `mapstructure:",squash"`
	History   History   `mapstructure:",squash"`
}

type App struct {
	LogLevel string `mapstructure:"log_level"`
	Env      string `mapstructure:"app_env"`
}

type Server struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

type Database struct {
	DSN      string `mapstructure:"-"`
	Driver   string `mapstructure:"database_driver"`
	Password string `mapstructure:"database_password"`
	URL      string `mapstructure:"database_url"`
	User     string `mapstructure:"database_user"`
}

// Dashboard agrupa as opções de leitura dos arquivos enviados
type Dashboard struct {
	SalesTimestampColumn string   `mapstructure:"sales_timestamp_column"`
	MaxUploadMB          int64    `mapstructure:"max_upload_mb"`
	AllowedOrigins       []string `mapstructure:"allowed_origins"`
}

// History controla o registro opcional das execuções do dashboard
type History struct {
	Enabled       bool   `mapstructure:"history_enabled"`
	RetentionDays int    `mapstructure:"history_retention_days"`
	CleanupCron   string `mapstructure:"history_cleanup_cron"`
}

// MaxUploadBytes devolve o limite do corpo multipart em bytes
func (d Dashboard) MaxUploadBytes() int64 {
	return d.MaxUploadMB << 20
}

func SetDefaults() {
	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", 8000)

	viper.SetDefault("LOG_LEVEL", "debug")
	viper.SetDefault("APP_ENV", "development")

	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_URL", "localhost:5432/dashboard?sslmode=disable")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_PASSWORD", "root")

	viper.SetDefault("SALES_TIMESTAMP_COLUMN", "Data e Hora")
	viper.SetDefault("MAX_UPLOAD_MB", 32)
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:8000")

	viper.SetDefault("HISTORY_ENABLED", false)
	viper.SetDefault("HISTORY_RETENTION_DAYS", 90)
	viper.SetDefault("HISTORY_CLEANUP_CRON", "0 3 * * *") // Todos os dias às 3h da manhã
}

func NewConfig() (*Config, error) {
	loadEnvFile() // ONLY LOCAL

	config := &Config{}

	SetDefaults()

	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logrus.Info("Usando variáveis carregadas pelo godotenv (viper não conseguiu ler .env):", err)
	} else {
		logrus.Info("Arquivo .env lido pelo Viper com sucesso")
	}

	err := viper.Unmarshal(&config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	if config.Dashboard.MaxUploadMB <= 0 {
		return nil, fmt.Errorf("config: MAX_UPLOAD_MB deve ser positivo, recebido %d", config.Dashboard.MaxUploadMB)
	}
	if config.History.Enabled && config.History.RetentionDays <= 0 {
		return nil, fmt.Errorf("config: HISTORY_RETENTION_DAYS deve ser positivo, recebido %d", config.History.RetentionDays)
	}

	config.Database.DSN = fmt.Sprintf(
		"%s://%s:%s@%s",
		config.Database.Driver,
		config.Database.User,
		config.Database.Password,
		config.Database.URL,
	)

	return config, nil
}

// Função auxiliar para carregar o arquivo .env usando godotenv
func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("Não foi possível obter o diretório atual:", err)
		return
	}

	locations := []string{
		filepath.Join(cwd, ".env"),               // Diretório atual
		filepath.Join(filepath.Dir(cwd), ".env"), // Diretório pai
		filepath.Join(cwd, "../../.env"),         // Dois diretórios acima
	}

	for _, location := range locations {
		if err := godotenv.Load(location); err == nil {
			logrus.Info("Arquivo .env carregado com sucesso de:", location)
			return
		}
	}

	logrus.Debug("Nenhum arquivo .env encontrado, usando apenas variáveis de ambiente")
}
