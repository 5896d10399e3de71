package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	GoEnv    string // development/production
	LogLevel string // debug/info/warn/error
	FEURL    string // フロントURL（CORSで使う）

	DatabaseURL      string // あれば最優先
	PostgresHost     string
	PostgresPort     int
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
	DBConnectRetries int
	DBRetryDelay     time.Duration

	JWTSecret      string // JWT署名シークレット
	AccessTokenTTL time.Duration

	PaymentProvider   string // iamport / razorpay
	IamportKey        string
	IamportSecret     string
	IamportAPIBase    string
	RazorpayKeyID     string
	RazorpayKeySecret string
	PaymentTimeout    time.Duration

	KafkaBrokers  []string // 空ならイベント送信しない
	KafkaTopic    string
	KafkaUsername string
	KafkaPassword string

	OrderTimezone          string // 注文番号の日付に使うタイムゾーン
	StrictAdminTransitions bool   // 管理者にも状態遷移表を強制するか
}

// IsProduction はエラー詳細をレスポンスに含めないかどうか。
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.GoEnv, "production") || strings.EqualFold(c.GoEnv, "prod")
}

// DSN はgorm(postgres)に渡す接続文字列。
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresSSLMode,
	)
}

// Location は注文番号の日付計算に使う。読めなければUTC。
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.OrderTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Loadは .env → 環境変数 → (任意)設定ファイル の順で読み込む。
// 環境変数は設定ファイルより優先される。
func Load(configFile string) (Config, error) {
	//.envは無くてもよい
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	cfg := Config{
		Port: v.GetString("PORT"),

		GoEnv:    v.GetString("GO_ENV"),
		LogLevel: v.GetString("LOG_LEVEL"),
		FEURL:    v.GetString("FE_URL"),

		DatabaseURL:      v.GetString("DATABASE_URL"),
		PostgresHost:     v.GetString("POSTGRES_HOST"),
		PostgresPort:     v.GetInt("POSTGRES_PORT"),
		PostgresUser:     v.GetString("POSTGRES_USER"),
		PostgresPassword: v.GetString("POSTGRES_PASSWORD"),
		PostgresDB:       v.GetString("POSTGRES_DB"),
		PostgresSSLMode:  v.GetString("POSTGRES_SSLMODE"),
		DBConnectRetries: v.GetInt("DB_CONNECT_RETRIES"),
		DBRetryDelay:     v.GetDuration("DB_RETRY_DELAY"),

		JWTSecret:      v.GetString("JWT_SECRET"),
		AccessTokenTTL: v.GetDuration("ACCESS_TOKEN_TTL"),

		PaymentProvider:   strings.ToLower(v.GetString("PAYMENT_PROVIDER")),
		IamportKey:        firstNonEmpty(v.GetString("IMP_KEY"), v.GetString("IAMPORT_KEY")),
		IamportSecret:     firstNonEmpty(v.GetString("IMP_SECRET"), v.GetString("IAMPORT_SECRET")),
		IamportAPIBase:    v.GetString("IMP_API_BASE"),
		RazorpayKeyID:     v.GetString("RAZORPAY_KEY_ID"),
		RazorpayKeySecret: v.GetString("RAZORPAY_KEY_SECRET"),
		PaymentTimeout:    v.GetDuration("PAYMENT_TIMEOUT"),

		KafkaBrokers:  splitList(v.GetString("KAFKA_BROKERS")),
		KafkaTopic:    v.GetString("KAFKA_TOPIC"),
		KafkaUsername: v.GetString("KAFKA_USERNAME"),
		KafkaPassword: v.GetString("KAFKA_PASSWORD"),

		OrderTimezone:          v.GetString("ORDER_TIMEZONE"),
		StrictAdminTransitions: v.GetBool("STRICT_ADMIN_TRANSITIONS"),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("GO_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("FE_URL", "http://localhost:5173")

	v.SetDefault("POSTGRES_HOST", "localhost")
	v.SetDefault("POSTGRES_PORT", 5432)
	v.SetDefault("POSTGRES_USER", "postgres")
	v.SetDefault("POSTGRES_PASSWORD", "postgres")
	v.SetDefault("POSTGRES_DB", "camerastore")
	v.SetDefault("POSTGRES_SSLMODE", "disable")
	v.SetDefault("DB_CONNECT_RETRIES", 3)
	v.SetDefault("DB_RETRY_DELAY", "5s")

	v.SetDefault("ACCESS_TOKEN_TTL", "24h")

	v.SetDefault("PAYMENT_PROVIDER", "iamport")
	v.SetDefault("IMP_API_BASE", "https://api.iamport.kr")
	v.SetDefault("PAYMENT_TIMEOUT", "10s")

	v.SetDefault("KAFKA_TOPIC", "orders")

	v.SetDefault("ORDER_TIMEZONE", "Asia/Seoul")
	v.SetDefault("STRICT_ADMIN_TRANSITIONS", false)
}

func (c Config) validate() error {
	//必須チェック
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.DatabaseURL == "" && (c.PostgresHost == "" || c.PostgresDB == "") {
		return fmt.Errorf("DATABASE_URL or POSTGRES_HOST/POSTGRES_DB is required")
	}
	switch c.PaymentProvider {
	case "iamport", "razorpay":
	default:
		return fmt.Errorf("PAYMENT_PROVIDER must be iamport or razorpay: %q", c.PaymentProvider)
	}
	if c.DBConnectRetries < 0 {
		return fmt.Errorf("DB_CONNECT_RETRIES must be >= 0")
	}
	if _, err := time.LoadLocation(c.OrderTimezone); err != nil {
		return fmt.Errorf("ORDER_TIMEZONE is invalid: %w", err)
	}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
