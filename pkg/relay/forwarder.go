package relay

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// OpenSearch 索引名
const (
	GameStartIndex = "game-start-logs"
	GameDataIndex  = "game-data-logs"
)

// Indexer 文档写入接口
type Indexer interface {
	Index(ctx context.Context, index string, doc []byte) error
}

// OpenSearchForwarder 通过 REST API 写入 OpenSearch
type OpenSearchForwarder struct {
	endpoint   string
	username   string
	password   string
	httpClient *http.Client
}

// NewOpenSearchForwarder 创建 OpenSearch 写入器
func NewOpenSearchForwarder(cfg OpenSearchConfig, httpClient *http.Client) *OpenSearchForwarder {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &OpenSearchForwarder{
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		username:   cfg.Username,
		password:   cfg.Password,
		httpClient: httpClient,
	}
}

// Index 写入一条文档：POST {endpoint}/{index}/_doc
func (f *OpenSearchForwarder) Index(ctx context.Context, index string, doc []byte) error {
	url := fmt.Sprintf("%s/%s/_doc", f.endpoint, index)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(doc))
	if err != nil {
		return fmt.Errorf("failed to build index request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if f.username != "" || f.password != "" {
		req.SetBasicAuth(f.username, f.password)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to index into %s: %w", index, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("index %s: unexpected status %s: %s", index, resp.Status, strings.TrimSpace(string(detail)))
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}
