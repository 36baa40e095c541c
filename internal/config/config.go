// Package config loads and validates the settings shared by the card ledger
// binaries.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Config is the complete configuration of a ledger process
type Config struct {
	Application ApplicationConfig
	Logging     LoggingConfig
	Server      ServerConfig
	Store       StoreConfig
	Kafka       KafkaConfig
	Postgres    PostgresConfig
	MongoDB     MongoDBConfig
	Outbox      OutboxConfig
	WorkerPool  WorkerPoolConfig
	Limits      LimitsConfig
	Fees        FeesConfig
	Escrow      EscrowConfig
}

type ApplicationConfig struct {
	Env  string
	Name string
}

type LoggingConfig struct {
	Level string
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port            int           // Port to listen on
	ShutdownTimeout time.Duration // Grace period for server shutdown
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
}

// StoreConfig selects the ledger store backend
type StoreConfig struct {
	Driver string // postgres or memory
}

// UsesPostgres reports whether the durable stack (PostgreSQL, MongoDB, Kafka) is in use
func (s StoreConfig) UsesPostgres() bool {
	return s.Driver == StoreDriverPostgres
}

type KafkaConfig struct {
	Brokers               string
	EscrowSettlementTopic string // Inbound settlement notices from escrow channels
	LedgerEventsTopic     string // Outbound transaction record changes
	NumPartitions         int
	ReplicationFactor     int
	ConsumerGroup         string
	MinBytes              int
	MaxBytes              int
	MaxWait               time.Duration
	StartOffset           int64
	DLQTopic              string
}

// BrokerList splits the comma separated broker string
func (k KafkaConfig) BrokerList() []string {
	var brokers []string
	for _, b := range strings.Split(k.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

type PostgresConfig struct {
	URL             string
	MaxConns        int32
	MinConns        int32
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	MigrationsPath  string
}

type MongoDBConfig struct {
	URI             string
	Database        string
	Timeout         time.Duration
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
}

type OutboxConfig struct {
	PollingInterval  time.Duration
	BatchSize        int
	MaxRetryAttempts int           // Attempts before a message is parked as FAILED_TO_PUBLISH
	Retention        time.Duration // Age after which processed messages are purged; 0 keeps them
}

type WorkerPoolConfig struct {
	Size int
}

// LimitsConfig holds per-operation amount ceilings
type LimitsConfig struct {
	DepositMax    decimal.Decimal
	WithdrawalMax decimal.Decimal
	TransferMax   decimal.Decimal
}

// FeeRuleConfig is the fee formula of one payout method:
// max(Minimum, amount*Rate + Flat)
type FeeRuleConfig struct {
	Rate    decimal.Decimal
	Minimum decimal.Decimal
	Flat    decimal.Decimal
}

type FeesConfig struct {
	MobileMoney  FeeRuleConfig
	BankTransfer FeeRuleConfig
	CashPickup   FeeRuleConfig
}

// EscrowConfig names the accounts quoted in payment instructions
type EscrowConfig struct {
	MobileMoneyNumber string
	MobileMoneyName   string
	BankName          string
	BankAccountNumber string
	BankAccountName   string
	CashAgentNetwork  string
}

// validate checks every setting and reports all problems at once
func (c *Config) validate() error {
	var validationErrors []string

	if c.Server.Port <= 0 {
		validationErrors = append(validationErrors, "SERVER_PORT must be greater than 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_SHUTDOWN_TIMEOUT must be greater than 0")
	}
	if c.Server.ReadTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_READ_TIMEOUT must be greater than 0")
	}
	if c.Server.WriteTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_WRITE_TIMEOUT must be greater than 0")
	}
	if c.Server.IdleTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_IDLE_TIMEOUT must be greater than 0")
	}

	switch c.Store.Driver {
	case StoreDriverPostgres:
		validationErrors = append(validationErrors, c.validateDurableStack()...)
	case StoreDriverMemory:
	default:
		validationErrors = append(validationErrors, "LEDGER_STORE_DRIVER must be one of postgres, memory")
	}

	if c.WorkerPool.Size <= 0 {
		validationErrors = append(validationErrors, "WORKER_POOL_SIZE must be greater than 0")
	}

	if !c.Limits.DepositMax.IsPositive() {
		validationErrors = append(validationErrors, "LIMIT_DEPOSIT_MAX must be greater than 0")
	}
	if !c.Limits.WithdrawalMax.IsPositive() {
		validationErrors = append(validationErrors, "LIMIT_WITHDRAWAL_MAX must be greater than 0")
	}
	if !c.Limits.TransferMax.IsPositive() {
		validationErrors = append(validationErrors, "LIMIT_TRANSFER_MAX must be greater than 0")
	}

	for prefix, rule := range map[string]FeeRuleConfig{
		"FEE_MOBILE_MONEY":  c.Fees.MobileMoney,
		"FEE_BANK_TRANSFER": c.Fees.BankTransfer,
		"FEE_CASH_PICKUP":   c.Fees.CashPickup,
	} {
		if rule.Rate.IsNegative() || rule.Minimum.IsNegative() || rule.Flat.IsNegative() {
			validationErrors = append(validationErrors, prefix+" values must not be negative")
		}
	}

	if len(validationErrors) > 0 {
		return errors.New(strings.Join(validationErrors, ", "))
	}

	return nil
}

func (c *Config) validateDurableStack() []string {
	var validationErrors []string

	if len(c.Kafka.BrokerList()) == 0 {
		validationErrors = append(validationErrors, "KAFKA_BROKERS is required")
	}
	if c.Kafka.EscrowSettlementTopic == "" {
		validationErrors = append(validationErrors, "KAFKA_ESCROW_SETTLEMENT_TOPIC is required")
	}
	if c.Kafka.LedgerEventsTopic == "" {
		validationErrors = append(validationErrors, "KAFKA_LEDGER_EVENTS_TOPIC is required")
	}
	if c.Kafka.ConsumerGroup == "" {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_GROUP is required")
	}
	if c.Kafka.MinBytes <= 0 {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_MIN_BYTES must be greater than 0")
	}
	if c.Kafka.MaxBytes <= 0 {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_MAX_BYTES must be greater than 0")
	}
	if c.Kafka.MaxWait <= 0 {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_MAX_WAIT must be greater than 0")
	}
	if c.Kafka.DLQTopic == "" {
		validationErrors = append(validationErrors, "KAFKA_DLQ_TOPIC is required")
	}

	if c.Postgres.URL == "" {
		validationErrors = append(validationErrors, "POSTGRES_URL is required")
	}
	if c.Postgres.MaxConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONNS must be greater than 0")
	}
	if c.Postgres.MinConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MIN_CONNS must be greater than 0")
	}
	if c.Postgres.ConnMaxLifetime <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_LIFETIME must be greater than 0")
	}
	if c.Postgres.ConnMaxIdleTime <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_IDLE_TIME must be greater than 0")
	}

	if c.MongoDB.URI == "" {
		validationErrors = append(validationErrors, "MONGO_URI is required")
	}
	if c.MongoDB.Database == "" {
		validationErrors = append(validationErrors, "MONGO_DATABASE is required")
	}
	if c.MongoDB.Timeout <= 0 {
		validationErrors = append(validationErrors, "MONGO_TIMEOUT must be greater than 0")
	}
	if c.MongoDB.MaxPoolSize <= 0 {
		validationErrors = append(validationErrors, "MONGO_MAX_POOL_SIZE must be greater than 0")
	}
	if c.MongoDB.MaxConnIdleTime <= 0 {
		validationErrors = append(validationErrors, "MONGO_MAX_CONN_IDLE_TIME must be greater than 0")
	}

	if c.Outbox.PollingInterval <= 0 {
		validationErrors = append(validationErrors, "OUTBOX_POLLING_INTERVAL must be greater than 0")
	}
	if c.Outbox.BatchSize <= 0 {
		validationErrors = append(validationErrors, "OUTBOX_BATCH_SIZE must be greater than 0")
	}
	if c.Outbox.MaxRetryAttempts <= 0 {
		validationErrors = append(validationErrors, "OUTBOX_MAX_RETRY_ATTEMPTS must be greater than 0")
	}
	if c.Outbox.Retention < 0 {
		validationErrors = append(validationErrors, "OUTBOX_RETENTION must not be negative")
	}

	return validationErrors
}
