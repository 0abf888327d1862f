package main

import (
	"expvar"
	"fmt"
	"log"
	"os"
	"runtime"
	"strconv"
	"time"

	"advisoret/internal/auth"
	"advisoret/internal/cache"
	"advisoret/internal/db"
	"advisoret/internal/mailer"
	"advisoret/internal/notifications"
	"advisoret/internal/ratelimiter"
	"advisoret/internal/store"

	"github.com/9ssi7/exponent"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/joho/godotenv"
	hashids "github.com/speps/go-hashids/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var version = "1.0.0"

// LoadRateLimiterConfig retrieves rate limiter settings from environment variables
func LoadRateLimiterConfig() ratelimiter.Config {
	defaultRequests := 10
	defaultEnabled := true

	requestsPerTimeFrame := defaultRequests
	if val, exists := os.LookupEnv("RATELIMITER_REQUESTS_COUNT"); exists {
		if parsedVal, err := strconv.Atoi(val); err == nil {
			requestsPerTimeFrame = parsedVal
		} else {
			fmt.Println("Invalid RATELIMITER_REQUESTS_COUNT, defaulting to", defaultRequests)
		}
	}

	enabled := defaultEnabled
	if val, exists := os.LookupEnv("RATE_LIMITER_ENABLED"); exists {
		if parsedVal, err := strconv.ParseBool(val); err == nil {
			enabled = parsedVal
		} else {
			fmt.Println("Invalid RATE_LIMITER_ENABLED, defaulting to", defaultEnabled)
		}
	}

	return ratelimiter.Config{
		RequestsPerTimeFrame: requestsPerTimeFrame,
		TimeFrame:            time.Minute,
		Enabled:              enabled,
	}
}

// NewLogger creates a new zap logger with color.
func NewLogger() (*zap.SugaredLogger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	consoleEncoder := zapcore.NewConsoleEncoder(encoderCfg)
	level := zapcore.InfoLevel

	core := zapcore.NewCore(consoleEncoder, zapcore.NewMultiWriteSyncer(zapcore.AddSync(os.Stdout)), level)

	logger := zap.New(core)

	return logger.Sugar(), nil
}

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Fatalf("Error loading .env file: %v", err)
	}

	maxConnsStr := os.Getenv("DB_MAX_CONNS")
	maxConns, err := strconv.Atoi(maxConnsStr)
	if err != nil {
		log.Fatalf("Invalid value for DB_MAX_CONNS: %v", err)
	}

	smtpPort, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		log.Fatalf("Invalid value for SMTP_PORT: %v", err)
	}

	cfg := config{
		addr:        os.Getenv("ADDR"),
		env:         os.Getenv("ENV"),
		frontendURL: os.Getenv("FRONTEND_URL"),
		apiURL:      os.Getenv("EXTERNAL_URL"),
		db: dbConfig{
			addr:        os.Getenv("DB_ADDR"),
			maxConns:    int32(maxConns),
			maxIdleTime: os.Getenv("DB_MAX_IDLE_TIME"),
		},
		mail: mailConfig{
			exp:       time.Hour * 24 * 3, // 3 days
			fromEmail: os.Getenv("SMTP_FROM_EMAIL"),
			smtp: smtpConfig{
				host:     os.Getenv("SMTP_HOST"),
				port:     smtpPort,
				username: os.Getenv("SMTP_USERNAME"),
				password: os.Getenv("SMTP_PASSWORD"),
			},
		},
		auth: authConfig{
			basic: basicConfig{
				user: os.Getenv("AUTH_BASIC_USER"),
				pass: os.Getenv("AUTH_BASIC_PASS"),
			},
			token: tokenConfig{
				secret:          os.Getenv("AUTH_TOKEN_SECRET"),
				refreshSecret:   os.Getenv("AUTH_TOKEN_REFRESH_SECRET"),
				accessTokenExp:  time.Hour * 24 * 3, // 3 days
				refreshTokenExp: time.Hour * 24 * 9, // 9 days
				iss:             "Advisoret",
			},
		},
		redisAddr:   os.Getenv("REDIS_ADDR"),
		redisPass:   os.Getenv("REDIS_PASSWORD"),
		rateLimiter: LoadRateLimiterConfig(),
	}

	logger, err := NewLogger()
	if err != nil {
		fmt.Println("Error creating logger:", err)
		return
	}
	defer logger.Sync()

	// Database
	pool, err := db.New(cfg.db.addr, cfg.db.maxConns, cfg.db.maxIdleTime)
	if err != nil {
		logger.Fatal(err)
	}
	defer pool.Close()
	logger.Info("database connection pool established")

	storage := store.NewStorage(pool)

	// Cloudinary holds venue cover images and avatars
	cld, err := cloudinary.NewFromURL(os.Getenv("CLOUDINARY_URL"))
	if err != nil {
		logger.Fatal(err)
	}

	// Counts cache is optional: without redis every count falls back
	// to the database.
	var counts *cache.Counts
	if cfg.redisAddr != "" {
		rdb, err := cache.NewRedisClient(cfg.redisAddr, cfg.redisPass)
		if err != nil {
			logger.Warnw("redis unavailable, counts served from database", "error", err)
		} else {
			defer rdb.Close()
			counts = cache.NewCounts(rdb)
			logger.Info("redis connection established")
		}
	}

	mailClient, err := mailer.NewGomailClient(
		cfg.mail.smtp.host,
		cfg.mail.smtp.port,
		cfg.mail.smtp.username,
		cfg.mail.smtp.password,
		cfg.mail.fromEmail,
	)
	if err != nil {
		logger.Fatal(err)
	}

	expoClient := exponent.NewClient()
	push := notifications.NewExpoAdapter(expoClient)

	rateLimiter := ratelimiter.NewFixedWindowLimiter(
		cfg.rateLimiter.RequestsPerTimeFrame,
		cfg.rateLimiter.TimeFrame,
	)

	jwtAuthenticator := auth.NewJWTAuthenticator(
		cfg.auth.token.secret,
		cfg.auth.token.refreshSecret,
		cfg.auth.token.iss,
		cfg.auth.token.iss,
		cfg.auth.token.accessTokenExp,
		cfg.auth.token.refreshTokenExp,
	)

	hd := hashids.NewData()
	hd.Salt = os.Getenv("SHARE_CODE_SALT")
	hd.MinLength = 6
	shareCodes, err := hashids.NewWithData(hd)
	if err != nil {
		logger.Fatal(err)
	}

	app := &application{
		config:        cfg,
		logger:        logger,
		store:         storage,
		cld:           cld,
		counts:        counts,
		mailer:        mailClient,
		push:          push,
		authenticator: jwtAuthenticator,
		rateLimiter:   rateLimiter,
		shareCodes:    shareCodes,
	}

	// Metrics collected at /v1/debug/vars
	expvar.NewString("version").Set(version)
	expvar.Publish("database", expvar.Func(func() any {
		return pool.Stat().TotalConns()
	}))
	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	mux := app.mount()

	logger.Fatal(app.run(mux))
}
