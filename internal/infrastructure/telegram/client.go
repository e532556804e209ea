package telegram

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"gift_autobuy/internal/config"
)

// ErrNotReady юзербот ещё не подключился или не авторизован.
var ErrNotReady = errors.New("userbot is not ready")

// ErrPriceChanged цена в платёжной форме отличается от ожидаемой.
var ErrPriceChanged = errors.New("gift price changed")

// ConsoleInput реализует ввод кода с клавиатуры
type ConsoleInput struct{}

func (c ConsoleInput) Code(_ context.Context, _ *tg.AuthSentCode) (string, error) {
	fmt.Print("Введите код из Telegram: ")

	text, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read code: %w", err)
	}

	return strings.TrimSpace(text), nil
}

// Client юзербот: каталог подарков, покупка за звёзды аккаунта и баланс.
type Client struct {
	client   *telegram.Client
	api      starGiftAPI
	phone    string
	password string

	ready     chan struct{}
	readyOnce sync.Once
	selfID    int64

	catalog          *cache.Cache
	catalogTTL       time.Duration
	includeUnlimited bool
	requestTimeout   time.Duration
}

func NewClient(cfg config.Telegram) (*Client, error) {
	if err := os.MkdirAll(cfg.SessionDir, 0o700); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}

	zapLogger := zap.NewNop()
	if cfg.Debug {
		zapLogger = zap.Must(zap.NewDevelopment())
	}

	client := telegram.NewClient(cfg.APIID, cfg.APIHash, telegram.Options{
		SessionStorage: &telegram.FileSessionStorage{Path: filepath.Join(cfg.SessionDir, "userbot.json")},
		Logger:         zapLogger,
	})

	c := newClient(client.API())
	c.client = client
	c.phone = cfg.Phone
	c.password = cfg.Password

	return c, nil
}

func newClient(api starGiftAPI) *Client {
	c := &Client{
		api:            api,
		ready:          make(chan struct{}),
		catalogTTL:     defaultCatalogTTL,
		requestTimeout: 15 * time.Second,
	}
	c.catalog = cache.New(c.catalogTTL, 2*c.catalogTTL)

	return c
}

// WithCatalogTTL время жизни кэша каталога подарков.
func (c *Client) WithCatalogTTL(ttl time.Duration) *Client {
	if ttl > 0 {
		c.catalogTTL = ttl
		c.catalog = cache.New(ttl, 2*ttl)
	}

	return c
}

func (c *Client) WithUnlimited(include bool) *Client {
	c.includeUnlimited = include

	return c
}

// Start поднимает соединение и держит его открытым.
func (c *Client) Start(ctx context.Context, onReady func() error) error {
	return c.client.Run(ctx, func(ctx context.Context) error {
		status, err := c.client.Auth().Status(ctx)
		if err != nil {
			return fmt.Errorf("auth status error: %w", err)
		}

		if !status.Authorized {
			logger(ctx).Info("userbot not authorized, starting login flow")

			if err = c.authenticate(ctx); err != nil {
				return fmt.Errorf("authentication failed: %w", err)
			}

			logger(ctx).Info("userbot authentication successful")
		}

		self, err := c.client.Self(ctx)
		if err != nil {
			return fmt.Errorf("client.Self: %w", err)
		}

		c.markReady(self.ID)
		logger(ctx).Info("userbot ready", slog.Int64("self-id", self.ID))

		if onReady != nil {
			if err = onReady(); err != nil {
				return err
			}
		}

		<-ctx.Done()

		return ctx.Err()
	})
}

func (c *Client) markReady(selfID int64) {
	c.readyOnce.Do(func() {
		c.selfID = selfID
		close(c.ready)
	})
}

// Ready сообщает, авторизован ли юзербот. Не блокирует.
func (c *Client) Ready() bool {
	select {
	case <-c.ready:
		return true
	default:
		return false
	}
}

func (c *Client) WaitReady(ctx context.Context) error {
	select {
	case <-c.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) authenticate(ctx context.Context) error {
	userAuth := auth.Constant(
		c.phone,
		c.password,
		ConsoleInput{},
	)

	flow := auth.NewFlow(
		userAuth,
		auth.SendCodeOptions{},
	)

	return c.client.Auth().IfNecessary(ctx, flow)
}
