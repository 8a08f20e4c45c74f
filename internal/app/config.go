package app

import (
	"time"

	"github.com/Milo-adonos/SilentView/internal/geo"
	"github.com/Milo-adonos/SilentView/internal/observability"
	"github.com/Milo-adonos/SilentView/internal/payment"
	"github.com/Milo-adonos/SilentView/internal/platform/envutil"
	"github.com/Milo-adonos/SilentView/internal/pkg/logger"
)

type Config struct {
	Port           string
	Environment    string
	JWTSecretKey   string
	AccessTokenTTL time.Duration

	PostgresDSN string
	SQLitePath  string

	RedisAddr      string
	ClientStateTTL time.Duration

	Stripe payment.Config
	Geo    geo.Config
	Otel   observability.OtelConfig

	AnimationScale  float64
	ResultCacheSize int
	CORSOrigins     []string
	SecureCookies   bool
}

func LoadConfig(log *logger.Logger) Config {
	env := envutil.String("APP_ENV", "development", log)
	port := envutil.String("PORT", ":8080", log)
	if port[0] != ':' {
		port = ":" + port
	}
	return Config{
		Port:           port,
		Environment:    env,
		JWTSecretKey:   envutil.String("JWT_SECRET_KEY", "defaultsecret", log),
		AccessTokenTTL: envutil.Seconds("ACCESS_TOKEN_TTL", 7*24*time.Hour, log),

		PostgresDSN: envutil.String("POSTGRES_DSN", "", log),
		SQLitePath:  envutil.String("SQLITE_PATH", "silentview.db", log),

		RedisAddr:      envutil.String("REDIS_ADDR", "", log),
		ClientStateTTL: envutil.Seconds("CLIENT_STATE_TTL", 24*time.Hour, log),

		Stripe: payment.Config{
			SecretKey:         envutil.String("STRIPE_SECRET_KEY", "", log),
			PriceOneTime:      envutil.String("STRIPE_PRICE_ONE_TIME", "", log),
			PriceSubscription: envutil.String("STRIPE_PRICE_SUBSCRIPTION", "", log),
			WebhookSecret:     envutil.String("STRIPE_WEBHOOK_SECRET", "", log),
			APIBase:           envutil.String("STRIPE_API_BASE", "", log),
			PublicBaseURL:     envutil.String("PUBLIC_BASE_URL", "http://localhost:5173", log),
		},
		Geo: geo.Config{
			IPAPIURL:     envutil.String("GEO_IPAPI_URL", "", log),
			IPAPICoURL:   envutil.String("GEO_IPAPICO_URL", "", log),
			IPifyURL:     envutil.String("GEO_IPIFY_URL", "", log),
			FreeIPAPIURL: envutil.String("GEO_FREEIPAPI_URL", "", log),
			Timeout:      envutil.Millis("GEO_TIMEOUT", 4*time.Second, log),
		},
		Otel: observability.OtelConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", false),
			ServiceName: envutil.String("OTEL_SERVICE_NAME", "silentview", log),
			Environment: env,
			Version:     envutil.String("APP_VERSION", "dev", log),
			Exporter:    envutil.String("OTEL_EXPORTER", "stdout", log),
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", "", log),
			Headers:     observability.ParseHeaders(envutil.String("OTEL_EXPORTER_OTLP_HEADERS", "", log)),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
			SampleRatio: envutil.Float("OTEL_SAMPLE_RATIO", 1, log),
		},

		AnimationScale:  envutil.Float("ANIMATION_SCALE", 1, log),
		ResultCacheSize: envutil.Int("RESULT_CACHE_SIZE", 1024, log),
		CORSOrigins:     envutil.List("CORS_ORIGINS", nil),
		SecureCookies:   envutil.Bool("SECURE_COOKIES", env == "production"),
	}
}
