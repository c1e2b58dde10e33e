package service

import (
	"checkout/api/internal/config"
	"checkout/api/internal/domain"
	"checkout/api/internal/infra/cache"
	"checkout/api/internal/infra/nats"
	infraredis "checkout/api/internal/infra/redis"
	"checkout/api/internal/logger"
	"checkout/api/internal/repository"
	"checkout/blockchain/rates"
	"checkout/blockchain/sol"
	"checkout/pkg/nats/natsdomain"
	"context"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// market data source, e.g. rates.Binance
type RateSource interface {
	GetRate(ctx context.Context, base, quote string) (decimal.Decimal, error)
}

// chain oracle and transfer submission, e.g. sol.Client
type Chain interface {
	GetTransaction(ctx context.Context, signature string) (*sol.TxEffects, error)
	GetBalance(ctx context.Context, address string) (uint64, error)
	Transfer(ctx context.Context, from solana.PrivateKey, to string, amountLamports uint64) (string, error)
}

type Locker interface {
	// token is needed to unlock. ok=false if the key is held by someone else
	TryLock(ctx context.Context, key string) (token string, ok bool, err error)
	Unlock(ctx context.Context, key string, token string) error
	IsLocked(ctx context.Context, key string) (bool, error)
}

type Rates interface {
	Get(ctx context.Context) (decimal.Decimal, error)
}

type Wallets interface {
	Generate() (address string, sealedSecret string, err error)
	Open(sealedSecret string, address string) (solana.PrivateKey, error)
}

// Sessions is the payment session store. Every status change is a single
// conditional update, safe across api instances.
type Sessions interface {
	Create(ctx context.Context, payerContact string, requestedAmount decimal.Decimal, address string, sealedSecret string, ttl time.Duration) (*domain.PaymentSessions, error)
	Get(ctx context.Context, sessionId string) (*domain.PaymentSessions, error)
	// on domain.ErrAlreadyPaid the stored session is returned too
	TransitionToPaid(ctx context.Context, sessionId string, txReference string, receipt Receipt) (*domain.PaymentSessions, error)
	MarkSwept(ctx context.Context, sessionId string, sweepTx string) (*domain.PaymentSessions, error)
	ListUnswept(ctx context.Context, afterId uint, limit int) ([]domain.PaymentSessions, error)
	ExpireStale(ctx context.Context) (int64, error)
}

type Invoices interface {
	CreateInvoice(ctx context.Context, payerContact string, fiatAmount decimal.Decimal) (*Invoice, error)
}

type Verifier interface {
	Verify(ctx context.Context, sessionId string, txReferenceInput string) (*VerifyResult, error)
}

type Sweeper interface {
	SweepAll(ctx context.Context) ([]SweepResult, error)
}

type Orders interface {
	Create(ctx context.Context, req OrderRequest) (*domain.Orders, *Invoice, error)
	Find(ctx context.Context, orderNumber int64) (*domain.Orders, *domain.PaymentSessions, error)
}

type QrCodes interface {
	// generates png and saves it to cache
	New(content string) ([]byte, error)
	// returns png from cache or generates new one
	FindOrNew(content string) ([]byte, error)
}

type Publisher interface {
	PublishOrderPaid(ctx context.Context, payload domain.PayloadOrderPaid) error
}

type WebhookSender interface {
	Send(url string, info domain.PayloadOrderPaid) error
	UpdateList(proxies []string)
	GetList() []string
}

type OutboxEvents interface {
	StartProcessEvents(ctx context.Context)
	ProcessOnce(ctx context.Context) (int, error)
}

type Services struct {
	Sessions      Sessions
	Invoices      Invoices
	Verifier      Verifier
	Sweeper       Sweeper
	Orders        Orders
	QrCodes       QrCodes
	WebhookSender WebhookSender
	OutboxEvents  OutboxEvents
}

// ns and rdb are optional: without nats order events go to the webhook only,
// without redis sweep locks are in-process.
func HewServices(db *gorm.DB, ns *natsdomain.Ns, rdb *redis.Client, l logger.Logger, config *config.Config) (*Services, error) {
	secrets, err := NewSecretsService(config.Secrets.SecretKey)
	if err != nil {
		return nil, err
	}

	chain := sol.New(sol.Config{
		Rpc:     config.Solana.Rpc,
		Ws:      config.Solana.Ws,
		Testnet: config.Solana.Testnet,
		Timeout: config.Solana.Timeout.Duration,
	})

	var locker Locker = NewLockerService(cache.InitStorage(), config.Payments.SweepLockTtl.Duration)
	if rdb != nil {
		locker = infraredis.NewLocker(rdb, config.Payments.SweepLockTtl.Duration)
	}

	var publisher Publisher
	if ns != nil {
		publisher = &nats.NatsInfra{Ns: ns}
	}

	repos := repository.New()
	sessions := NewSessionsService(db, repos.Sessions, repos.Orders, repos.Events, l)
	wallets := NewWalletsService(secrets)
	qrCodes := NewQrCodesService()
	webhookSender := NewWebhookSenderService(config.ProxyList, l)

	ratesService := NewRatesService(
		rates.NewBinance(config.Oracle.BaseUrl, config.Oracle.Timeout.Duration),
		config.Oracle.Base, config.Oracle.Quote, config.Oracle.CacheTtl.Duration, cache.InitStorage(),
	)

	invoices := NewInvoicesService(ratesService, wallets, sessions, qrCodes, config.Payments.Ttl.Duration, config.Payments.DisplayPrecision, l)

	return &Services{
		Sessions:      sessions,
		Invoices:      invoices,
		Verifier:      NewVerifierService(sessions, chain, config.Payments.Tolerance, l),
		Sweeper:       NewSweeperService(sessions, chain, wallets, locker, config.Secrets.OperatorWallet, config.Payments.SweepFeeLamports, config.Payments.SweepWorkers, l),
		Orders:        NewOrdersService(db, repos.Orders, invoices, sessions, l),
		QrCodes:       qrCodes,
		WebhookSender: webhookSender,
		OutboxEvents:  NewOutboxEventsService(db, repos.Events, publisher, webhookSender, config.Notify.WebhookUrl, config.Notify.Every.Duration, l),
	}, nil
}
