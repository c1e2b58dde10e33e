package service

import (
	"bytes"
	"checkout/api/internal/domain"
	"checkout/api/internal/infra/cache"
	"checkout/api/internal/logger"
	"checkout/pkg/rr"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/net/proxy"
)

var errWebhookAlreadySent = errors.New("webhook already sent")

type WebhookSenderService struct {
	proxies    *rr.Ring
	l          logger.Logger
	cache      *cache.Cache
	validate   *validator.Validate
	retryDelay time.Duration
}

func NewWebhookSenderService(proxyList []string, l logger.Logger) *WebhookSenderService {
	return &WebhookSenderService{proxies: rr.New(proxyList), l: l, cache: cache.InitStorage(), validate: validator.New(), retryDelay: 5 * time.Second}
}

type webhookRoundTripper struct {
	r http.RoundTripper
}

func (mrt webhookRoundTripper) RoundTrip(r *http.Request) (*http.Response, error) {
	r.Header.Add("User-Agent", "checkout-webhook")
	return mrt.r.RoundTrip(r)
}

func post(client *http.Client, url string, payload []byte) error {
	resp, err := client.Post(url, "application/json", bytes.NewBuffer(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("invalid status code: %d", resp.StatusCode)
	}

	return nil
}

func (s *WebhookSenderService) sendWithoutProxy(url string, payload []byte) error {
	client := &http.Client{
		Transport: webhookRoundTripper{r: http.DefaultTransport},
		Timeout:   time.Second * 5,
	}
	return post(client, url, payload)
}

func (s *WebhookSenderService) sendWithProxy(url string, stringProxy string, payload []byte) error {
	socks, err := s.parseProxy(stringProxy)
	if err != nil {
		return fmt.Errorf("can't parse proxy: %w", err)
	}

	auth := proxy.Auth{
		User:     socks.User,
		Password: socks.Pass,
	}

	dialer, err := proxy.SOCKS5("tcp", net.JoinHostPort(socks.Ip, socks.Port), &auth, proxy.Direct)
	if err != nil {
		return err
	}

	dialContext := func(ctx context.Context, network, address string) (net.Conn, error) {
		return dialer.Dial(network, address)
	}

	client := &http.Client{
		Transport: webhookRoundTripper{r: &http.Transport{
			DialContext:       dialContext,
			DisableKeepAlives: true,
		}},
		Timeout: 5 * time.Second,
	}

	return post(client, url, payload)
}

// Send posts the order paid payload to url, rotating through the proxy list
// on failure. Without proxies it posts directly, once. A payload that was
// delivered is not sent again by this process.
func (s *WebhookSenderService) Send(url string, info domain.PayloadOrderPaid) error {
	if exists := s.cache.Load(info.SessionID); exists != nil {
		return errWebhookAlreadySent
	}

	payload, err := json.Marshal(info)
	if err != nil {
		return err
	}

	maxAttempts := s.proxies.Len()

	stringProxy, ok := s.proxies.Next()
	if !ok {
		s.l.Debug("no proxies, sending without proxy", "url", url)
		if err := s.sendWithoutProxy(url, payload); err != nil {
			s.l.TemplWebhookErr("send without proxy error: "+err.Error(), url, 1, logger.NA, payload)
			return err
		}
		s.cache.SetNoExp(info.SessionID, true)
		return nil
	}

	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = s.sendWithProxy(url, stringProxy, payload)
		if err == nil {
			s.cache.SetNoExp(info.SessionID, true)
			return nil
		}
		s.l.TemplWebhookErr("send with proxy error: "+err.Error(), url, attempts, stringProxy, payload)

		if attempts < maxAttempts {
			stringProxy, _ = s.proxies.Next()
			time.Sleep(s.retryDelay)
		}
	}

	return fmt.Errorf("max attempts exceeded: %w", err)
}

type parsedProxy struct {
	User string `validate:"required,gte=2"`
	Pass string `validate:"required,gte=2"`
	Ip   string `validate:"required,gte=2"`
	Port string `validate:"required,gte=2"`
}

// login:password@ip:port
func (s *WebhookSenderService) parseProxy(str string) (parsedProxy, error) {
	splitA := strings.Split(str, ":") // to [user pass@ip port]
	if len(splitA) != 3 {
		return parsedProxy{}, fmt.Errorf("invalid proxy format: given: %s", str)
	}

	splitB := strings.Split(splitA[1], "@") // to [pass ip]
	if len(splitB) != 2 {
		return parsedProxy{}, fmt.Errorf("invalid proxy format: given: %s", str)
	}

	pp := parsedProxy{
		User: splitA[0],
		Pass: splitB[0],
		Ip:   splitB[1],
		Port: splitA[2],
	}

	validate := s.validate
	if validate == nil {
		validate = validator.New()
	}
	if err := validate.Struct(pp); err != nil {
		return parsedProxy{}, err
	}

	return pp, nil
}

func (s *WebhookSenderService) UpdateList(proxies []string) {
	var validProxies []string

	for _, p := range proxies {
		if _, err := s.parseProxy(p); err != nil {
			s.l.Debug("invalid proxy skipped", "proxy", p)
			continue
		}
		validProxies = append(validProxies, p)
	}

	s.proxies.Swap(validProxies)
}

func (s *WebhookSenderService) GetList() []string {
	return s.proxies.List()
}
