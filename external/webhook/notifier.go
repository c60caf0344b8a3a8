package webhook

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/bytebufferpool"
)

var allowedPrefixes = []string{
	"https://discord.com/api/webhooks/",
	"https://discordapp.com/api/webhooks/",
}

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Config struct {
	// DefaultURL receives operator-level notices (game created, locked,
	// torn down) in addition to any per-game webhook.
	DefaultURL string
	Timeout    time.Duration
	UserAgent  string
}

// Notifier posts plain-text messages to Discord-compatible webhooks.
// Delivery is fire-and-forget: every failure is swallowed and logged,
// nothing is retried.
type Notifier struct {
	client     *http.Client
	defaultURL string
	userAgent  string
	logger     *slog.Logger
}

func NewNotifier(cfg Config, logger *slog.Logger) *Notifier {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = "gridpool/1.0"
	}

	return &Notifier{
		client:     &http.Client{Timeout: timeout},
		defaultURL: strings.TrimSpace(cfg.DefaultURL),
		userAgent:  userAgent,
		logger:     logger,
	}
}

// ValidURL reports whether url points at a supported webhook host.
func ValidURL(url string) bool {
	for _, prefix := range allowedPrefixes {
		if strings.HasPrefix(url, prefix) {
			return true
		}
	}
	return false
}

// Notify posts message to url. Invalid or empty URLs and transport
// failures are silently dropped.
func (n *Notifier) Notify(ctx context.Context, url, message string) {
	url = strings.TrimSpace(url)
	if url == "" || message == "" {
		return
	}
	if !ValidURL(url) {
		n.logger.DebugContext(ctx, "dropping notification for unsupported webhook url")
		return
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := json.NewEncoder(buf).Encode(map[string]string{"content": message}); err != nil {
		n.logger.DebugContext(ctx, "encode webhook payload failed", "error", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(buf.String()))
	if err != nil {
		n.logger.DebugContext(ctx, "build webhook request failed", "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", n.userAgent)

	resp, err := n.client.Do(req)
	if err != nil {
		n.logger.DebugContext(ctx, "webhook delivery failed", "error", err)
		return
	}
	_ = resp.Body.Close()
	if resp.StatusCode >= 300 {
		n.logger.DebugContext(ctx, "webhook delivery rejected", "status", resp.StatusCode)
	}
}

// NotifyDefault posts to the operator webhook configured at startup.
func (n *Notifier) NotifyDefault(ctx context.Context, message string) {
	n.Notify(ctx, n.defaultURL, message)
}
