package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"crowdfund/internal/domain"
)

// GatewayCredentials holds the per-provider secrets consumed by the gateway
// clients. Empty values are allowed at startup; an unconfigured gateway fails
// with a configuration error on first use.
type GatewayCredentials struct {
	PaystackSecretKey    string
	FlutterwaveSecretKey string
	MonnifyAPIKey        string
	MonnifySecretKey     string
	MonnifyContractCode  string
	StripeSecretKey      string
}

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv           string
	Port             string
	AppName          string
	PublicBaseURL    string
	FrontendBaseURL  string
	DatabaseURL      string
	JWTSecret        string
	GeoIPDBPath      string
	Gateways         GatewayCredentials
	GatewayTimeout   time.Duration
	DonationMinInt   int64 // minor units
	DonationMaxInt   int64 // minor units
	DonationFeeInt   int64 // minor units, fixed fee added at charge time only
	Currency         domain.Currency
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
	AllowedOrigins   []string
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:          getEnv("APP_ENV", "development"),
		Port:            getEnv("PORT", "8080"),
		AppName:         getEnv("APP_NAME", "crowdfund"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		GeoIPDBPath:     os.Getenv("GEOIP_DB_PATH"),
		FrontendBaseURL: getEnv("FRONTEND_BASE_URL", "http://localhost:3000"),
		Gateways: GatewayCredentials{
			PaystackSecretKey:    os.Getenv("PAYSTACK_SECRET_KEY"),
			FlutterwaveSecretKey: os.Getenv("FLUTTERWAVE_SECRET_KEY"),
			MonnifyAPIKey:        os.Getenv("MONNIFY_API_KEY"),
			MonnifySecretKey:     os.Getenv("MONNIFY_SECRET_KEY"),
			MonnifyContractCode:  os.Getenv("MONNIFY_CONTRACT_CODE"),
			StripeSecretKey:      os.Getenv("STRIPE_SECRET_KEY"),
		},
		GatewayTimeout: time.Second * time.Duration(getEnvInt("GATEWAY_TIMEOUT_SECONDS", 10)),
		DonationMinInt: domain.MajorToMinor(float64(getEnvInt("DONATION_MIN_AMOUNT", 100))),
		DonationMaxInt: domain.MajorToMinor(float64(getEnvInt("DONATION_MAX_AMOUNT", 1000000))),
		DonationFeeInt: domain.MajorToMinor(float64(getEnvInt("DONATION_FIXED_FEE", 50))),
		Currency: domain.Currency{
			Code:      getEnv("CURRENCY_CODE", "NGN"),
			Symbol:    getEnv("CURRENCY_SYMBOL", "₦"),
			Precision: getEnvInt("CURRENCY_PRECISION", 2),
		},
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
	}

	cfg.PublicBaseURL = getEnv("PUBLIC_BASE_URL", "http://localhost:"+cfg.Port)

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = splitAndTrim(origins)
	} else {
		cfg.AllowedOrigins = []string{cfg.FrontendBaseURL}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	if cfg.DonationMinInt <= 0 || cfg.DonationMaxInt <= cfg.DonationMinInt {
		return nil, fmt.Errorf("donation bounds are invalid: min=%d max=%d", cfg.DonationMinInt, cfg.DonationMaxInt)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitAndTrim(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
