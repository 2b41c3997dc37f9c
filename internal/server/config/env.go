package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "DEVCONNECTOR_"

// envFile is loaded before variables are read if it exists. Variables
// already present in the process environment are not overridden.
var envFile = ".env"

// parseEnv overlays DEVCONNECTOR_* environment variables onto config.
//
//	DEVCONNECTOR_HTTP_ADDR             bind address
//	DEVCONNECTOR_DATABASE_DSN          PostgreSQL DSN
//	DEVCONNECTOR_SECRET_KEY            token signing secret
//	DEVCONNECTOR_TOKEN_TTL             token lifetime, e.g. "1h"
//	DEVCONNECTOR_BCRYPT_COST           bcrypt cost factor
//	DEVCONNECTOR_CORS_ALLOWED_ORIGINS  comma separated origins
//	DEVCONNECTOR_LOG_LEVEL             debug|info|warn|error
//	DEVCONNECTOR_GIN_MODE              debug|release|test
//	DEVCONNECTOR_S3_ACCESS_KEY, DEVCONNECTOR_S3_SECRET_KEY, DEVCONNECTOR_S3_BUCKET,
//	DEVCONNECTOR_S3_REGION, DEVCONNECTOR_S3_BASE_ENDPOINT, DEVCONNECTOR_AVATAR_URL_TTL
func parseEnv(config *Config) {
	_ = godotenv.Load(envFile)

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				panic(fmt.Errorf("%s%s: %w", envPrefix, key, err))
			}
			*dst = d
		}
	}

	str("HTTP_ADDR", &config.HTTPAddr)
	str("DATABASE_DSN", &config.DatabaseDSN)
	str("SECRET_KEY", &config.SecretKey)
	dur("TOKEN_TTL", &config.TokenTTL)
	if v, ok := lookup("BCRYPT_COST"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(fmt.Errorf("%sBCRYPT_COST: %w", envPrefix, err))
		}
		config.BcryptCost = n
	}
	if v, ok := lookup("CORS_ALLOWED_ORIGINS"); ok {
		config.CORSAllowedOrigins = splitList(v)
	}
	str("LOG_LEVEL", &config.LogLevel)
	str("GIN_MODE", &config.GinMode)
	str("S3_ACCESS_KEY", &config.S3AccessKey)
	str("S3_SECRET_KEY", &config.S3SecretKey)
	str("S3_BUCKET", &config.S3Bucket)
	str("S3_REGION", &config.S3Region)
	str("S3_BASE_ENDPOINT", &config.S3BaseEndpoint)
	dur("AVATAR_URL_TTL", &config.AvatarURLTTL)
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
