package config

import (
	"fmt"
	"time"

	"github.com/amirasaad/acmebank/pkg/money"
)

// Money decodes a decimal environment value such as "-100.00".
type Money money.Amount

// Decode implements envconfig.Decoder.
func (m *Money) Decode(value string) error {
	a, err := money.Parse(value)
	if err != nil {
		return fmt.Errorf("invalid money value %q: %w", value, err)
	}
	*m = Money(a)
	return nil
}

// Amount returns the decoded value.
func (m Money) Amount() money.Amount {
	return money.Amount(m)
}

type Bank struct {
	Currency       string `envconfig:"CURRENCY" default:"USD"`
	OverdraftLimit Money  `envconfig:"OVERDRAFT_LIMIT" default:"-100.00"`
	BcryptCost     int    `envconfig:"BCRYPT_COST" default:"10"`
}

type Storage struct {
	Driver        string `envconfig:"DRIVER" default:"csv"`
	CustomersFile string `envconfig:"CUSTOMERS_FILE" default:"bank.csv"`
	LedgerFile    string `envconfig:"LEDGER_FILE" default:"transactions.csv"`
	DSN           string `envconfig:"DSN"`
}

type Jwt struct {
	Secret string        `envconfig:"SECRET"`
	Expiry time.Duration `envconfig:"EXPIRY" default:"24h"`
}

type Auth struct {
	Jwt *Jwt `envconfig:"JWT"`
}

type Redis struct {
	URL   string `envconfig:"URL" default:"redis://localhost:6379/0"`
	Group string `envconfig:"GROUP" default:"acmebank"`
}

type Kafka struct {
	Brokers     string `envconfig:"BROKERS" default:"localhost:9092"`
	GroupID     string `envconfig:"GROUP_ID" default:"acmebank"`
	TopicPrefix string `envconfig:"TOPIC_PREFIX" default:"acmebank.events"`
}

type EventBus struct {
	Driver string `envconfig:"DRIVER" default:"memory"`
}

type RateLimit struct {
	MaxRequests int           `envconfig:"MAX_REQUESTS" default:"100"`
	Window      time.Duration `envconfig:"WINDOW" default:"1m"`
}

type Log struct {
	Level      int    `envconfig:"LEVEL" default:"0"`
	Format     string `envconfig:"FORMAT" default:"text"`
	TimeFormat string `envconfig:"TIME_FORMAT" default:"2006-01-02 15:04:05"`
	Prefix     string `envconfig:"PREFIX" default:"[acmebank]"`
}

type Server struct {
	Scheme string `envconfig:"SCHEME" default:"http"`
	Host   string `envconfig:"HOST" default:"localhost"`
	Port   int    `envconfig:"PORT" default:"3000"`
}

type App struct {
	Env       string     `envconfig:"APP_ENV" default:"development"`
	Server    *Server    `envconfig:"SERVER"`
	Log       *Log       `envconfig:"LOG"`
	Bank      *Bank      `envconfig:"BANK"`
	Storage   *Storage   `envconfig:"STORAGE"`
	Auth      *Auth      `envconfig:"AUTH"`
	EventBus  *EventBus  `envconfig:"EVENT_BUS"`
	Redis     *Redis     `envconfig:"REDIS"`
	Kafka     *Kafka     `envconfig:"KAFKA"`
	RateLimit *RateLimit `envconfig:"RATE_LIMIT"`
}
