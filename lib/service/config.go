package service

import "time"

type Config struct {
	DatabaseUri             string  `envconfig:"DATABASE_URI" required:"true"`
	DatabaseMaxConns        int     `envconfig:"DATABASE_MAX_CONNS" default:"10"`
	DatabaseMaxIdleConns    int     `envconfig:"DATABASE_MAX_IDLE_CONNS" default:"5"`
	DatabaseConnMaxLifetime int     `envconfig:"DATABASE_CONN_MAX_LIFETIME" default:"1800"` // 30 minutes
	SentryDSN               string  `envconfig:"SENTRY_DSN"`
	DatadogAgentUrl         string  `envconfig:"DATADOG_AGENT_URL"`
	SentryTracesSampleRate  float64 `envconfig:"SENTRY_TRACES_SAMPLE_RATE"`
	LogFilePath             string  `envconfig:"LOG_FILE_PATH"`
	JWTSecret               []byte  `envconfig:"JWT_SECRET" required:"true"`
	AdminToken              string  `envconfig:"ADMIN_TOKEN"`
	JWTRefreshTokenExpiry   int     `envconfig:"JWT_REFRESH_EXPIRY" default:"604800"` // in seconds, default 7 days
	JWTAccessTokenExpiry    int     `envconfig:"JWT_ACCESS_EXPIRY" default:"172800"`  // in seconds, default 2 days
	LoginEventMaxAge        int     `envconfig:"LOGIN_EVENT_MAX_AGE" default:"300"`   // in seconds
	Host                    string  `envconfig:"HOST" default:"localhost:3000"`
	Port                    int     `envconfig:"PORT" default:"3000"`
	DefaultRateLimit        int     `envconfig:"DEFAULT_RATE_LIMIT" default:"10"`
	StrictRateLimit         int     `envconfig:"STRICT_RATE_LIMIT" default:"10"`
	BurstRateLimit          int     `envconfig:"BURST_RATE_LIMIT" default:"1"`
	EnablePrometheus        bool    `envconfig:"ENABLE_PROMETHEUS" default:"false"`
	PrometheusPort          int     `envconfig:"PROMETHEUS_PORT" default:"9092"`
	WebhookUrl              string  `envconfig:"WEBHOOK_URL"`
	MemoMaxLength           int     `envconfig:"MEMO_MAX_LENGTH" default:"256"` // 0 disables the check
	ProjectIDMaxLength      int     `envconfig:"PROJECT_ID_MAX_LENGTH" default:"64"`
	RabbitMQUri             string  `envconfig:"RABBITMQ_URI"`
	RabbitMQInvoiceExchange string  `envconfig:"RABBITMQ_INVOICE_EXCHANGE" default:"quokkahub_invoice"`
	RabbitMQCommandExchange string  `envconfig:"RABBITMQ_COMMAND_EXCHANGE" default:"quokkahub_command"`
	RabbitMQCommandQueue    string  `envconfig:"RABBITMQ_COMMAND_QUEUE_NAME" default:"quokkahub_command_consumer"`
	RedisUri                string  `envconfig:"REDIS_URI"`
	InvoiceLockTimeout      int     `envconfig:"INVOICE_LOCK_TIMEOUT" default:"10"` // in seconds
}

func (c *Config) LoginEventMaxAgeDuration() time.Duration {
	return time.Duration(c.LoginEventMaxAge) * time.Second
}

func (c *Config) InvoiceLockTimeoutDuration() time.Duration {
	return time.Duration(c.InvoiceLockTimeout) * time.Second
}
