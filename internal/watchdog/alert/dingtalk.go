package alert

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// DingTalk posts text messages to a DingTalk group robot webhook. When a
// secret is configured the webhook URL is signed with the
// timestamp+HMAC-SHA256 scheme the robot API requires.
type DingTalk struct {
	webhook    string
	secret     string
	httpClient *http.Client
	log        *zap.Logger
}

func NewDingTalk(webhook, secret string, timeout time.Duration, log *zap.Logger) *DingTalk {
	return &DingTalk{
		webhook:    webhook,
		secret:     secret,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

type dingtalkResponse struct {
	ErrCode int    `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

// Send delivers one text message. An unconfigured webhook is a logged no-op
// so a deployment without notifications still runs its trackers.
func (d *DingTalk) Send(ctx context.Context, text string) error {
	if d.webhook == "" {
		d.log.Warn("dingtalk webhook not configured, alert skipped")
		return nil
	}

	payload, err := json.Marshal(map[string]any{
		"msgtype": "text",
		"text":    map[string]string{"content": text},
	})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.signedWebhook(), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("dingtalk error: %d %s", resp.StatusCode, body)
	}

	var result dingtalkResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if result.ErrCode != 0 {
		return fmt.Errorf("dingtalk api error: %d %s", result.ErrCode, result.ErrMsg)
	}
	return nil
}

// signedWebhook appends the timestamp and signature query parameters when a
// secret is set, otherwise returns the webhook unchanged.
func (d *DingTalk) signedWebhook() string {
	if d.secret == "" {
		return d.webhook
	}

	ts := strconv.FormatInt(time.Now().UnixMilli(), 10)
	mac := hmac.New(sha256.New, []byte(d.secret))
	mac.Write([]byte(ts + "\n" + d.secret))
	sign := url.QueryEscape(base64.StdEncoding.EncodeToString(mac.Sum(nil)))

	return fmt.Sprintf("%s&timestamp=%s&sign=%s", d.webhook, ts, sign)
}
