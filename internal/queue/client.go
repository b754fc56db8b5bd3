package queue

import (
	"fmt"
	"strings"

	"github.com/smartskincare/api/internal/config"
	"github.com/smartskincare/api/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// DefaultQueue is the catch-all queue.
	DefaultQueue = constants.QueueDefault
	// CriticalQueue carries member-facing mail.
	CriticalQueue = constants.QueueCritical
)

// Client wraps the asynq producer. A disabled config yields a client
// whose enqueues are no-ops, so callers never branch on queue state.
type Client struct {
	client       *asynq.Client
	enabled      bool
	defaultQueue string
}

// NewClient builds the queue producer.
func NewClient(cfg *config.QueueConfig) (*Client, error) {
	if cfg == nil || !cfg.Enabled {
		return &Client{enabled: false, defaultQueue: DefaultQueue}, nil
	}
	opt := buildRedisOpt(cfg)
	client := asynq.NewClient(opt)
	return &Client{
		client:       client,
		enabled:      true,
		defaultQueue: DefaultQueue,
	}, nil
}

// Enabled reports whether tasks actually get enqueued.
func (c *Client) Enabled() bool {
	return c != nil && c.enabled && c.client != nil
}

// Close shuts down the producer.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueOrderReceiptEmail queues a receipt email after checkout commits.
func (c *Client) EnqueueOrderReceiptEmail(payload OrderReceiptEmailPayload, opts ...asynq.Option) error {
	if !c.Enabled() {
		return nil
	}
	task, err := NewOrderReceiptEmailTask(payload)
	if err != nil {
		return err
	}
	options := append([]asynq.Option{asynq.Queue(c.defaultQueue)}, opts...)
	_, err = c.client.Enqueue(task, options...)
	return err
}

// EnqueueAppointmentEmail queues a booking status email.
func (c *Client) EnqueueAppointmentEmail(payload AppointmentEmailPayload, opts ...asynq.Option) error {
	if !c.Enabled() {
		return nil
	}
	payload.Status = strings.TrimSpace(payload.Status)
	task, err := NewAppointmentEmailTask(payload)
	if err != nil {
		return err
	}
	options := append([]asynq.Option{asynq.Queue(c.defaultQueue)}, opts...)
	_, err = c.client.Enqueue(task, options...)
	return err
}

// EnqueuePasswordResetEmail queues a reset email on the critical queue.
func (c *Client) EnqueuePasswordResetEmail(payload PasswordResetEmailPayload, opts ...asynq.Option) error {
	if !c.Enabled() {
		return nil
	}
	task, err := NewPasswordResetEmailTask(payload)
	if err != nil {
		return err
	}
	options := append([]asynq.Option{asynq.Queue(CriticalQueue)}, opts...)
	_, err = c.client.Enqueue(task, options...)
	return err
}

// BuildServerConfig derives the consumer side settings.
func BuildServerConfig(cfg *config.QueueConfig) (asynq.RedisClientOpt, asynq.Config) {
	opt := buildRedisOpt(cfg)
	concurrency := 10
	if cfg != nil && cfg.Concurrency > 0 {
		concurrency = cfg.Concurrency
	}
	queues := map[string]int{DefaultQueue: 1}
	if cfg != nil && len(cfg.Queues) > 0 {
		queues = cfg.Queues
	}
	return opt, asynq.Config{
		Concurrency: concurrency,
		Queues:      queues,
	}
}

func buildRedisOpt(cfg *config.QueueConfig) asynq.RedisClientOpt {
	host := "127.0.0.1"
	port := 6379
	password := ""
	db := 0
	if cfg != nil {
		if h := strings.TrimSpace(cfg.Host); h != "" {
			host = h
		}
		if cfg.Port > 0 {
			port = cfg.Port
		}
		password = cfg.Password
		db = cfg.DB
	}
	return asynq.RedisClientOpt{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	}
}
