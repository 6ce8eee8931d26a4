//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

/********** ENV CONFIG **********/

type Cfg struct {
	BaseURL     string
	HealthURL   string
	WaitTimeout time.Duration
}

func LoadCfg() Cfg {
	return Cfg{
		BaseURL:     getenv("IT_BASE", "http://127.0.0.1:8080"),
		HealthURL:   getenv("IT_HEALTH", "http://127.0.0.1:8080/healthz"),
		WaitTimeout: getdur("IT_WAIT", 30*time.Second),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

/********** HTTP HELPERS **********/

func waitHealthy(cfg Cfg) error {
	deadline := time.Now().Add(cfg.WaitTimeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(cfg.HealthURL)
		if err == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(500 * time.Millisecond)
	}
	return fmt.Errorf("server not healthy within %s", cfg.WaitTimeout)
}

func doJSON(method, url, bearer string, in any, out any) (*http.Response, error) {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(buf)
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return nil, fmt.Errorf("decode %s %s: %w: %s", method, url, err, raw)
		}
	}
	return resp, nil
}

func uniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@example.com", prefix, time.Now().UnixNano())
}
