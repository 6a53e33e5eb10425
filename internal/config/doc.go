// Package config manages application configuration for the Jobs API.
//
// Values come from environment variables through cleanenv struct tags.
// A YAML, JSON, TOML or .env file may be passed instead; environment
// variables still override what the file sets.
//
//	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
//	if err == nil {
//	    err = cfg.Validate()
//	}
//
// # Environment Variables
//
//	PORT                  - HTTP server port (default: 3000)
//	SERVER_ENV            - development, production or test
//	LOG_LEVEL             - debug, info, warn or error
//	TRUST_PROXY           - take the client address from the last X-Forwarded-For hop
//	CORS_ALLOWED_ORIGINS  - comma separated origins (default: *)
//	DB_HOST, DB_PORT      - SurrealDB endpoint
//	DB_NAMESPACE, DB_DATABASE, DB_USER, DB_PASSWORD
//	JWT_SECRET            - HS256 signing key (required)
//	JWT_LIFETIME          - token lifetime (default: 720h)
//	JWT_ISSUER            - iss claim (default: jobs-api)
//	RATE_LIMIT_MAX        - requests per window per client (default: 100)
//	RATE_LIMIT_WINDOW     - window length (default: 15m)
//	REDIS_URL             - optional shared rate limit store
//	IDEMPOTENCY_TTL       - Idempotency-Key replay lifetime (default: 24h)
package config
