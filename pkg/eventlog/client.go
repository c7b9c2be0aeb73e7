// Package eventlog 将游戏事件以 JSON 形式异步上报到日志服务
//
// 上报是尽力而为的：每个请求在独立的 goroutine 中发送，失败只记录日志，
// 永远不会阻塞或影响游戏流程。
package eventlog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/decker502/boxpop/pkg/game"
)

// 日志服务路由
const (
	GameStartPath = "/api/log-game-start"
	GameDataPath  = "/api/log-game-data"
)

// EventGameStart game_start 事件名
const EventGameStart = "game_start"

// timestampLayout ISO-8601，毫秒精度，UTC
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// GameStartLog 开始游戏事件
type GameStartLog struct {
	UserID    string           `json:"userId"`
	Timestamp string           `json:"timestamp"`
	Event     string           `json:"event"`
	Details   GameStartDetails `json:"details"`
}

// GameStartDetails 开始事件详情
type GameStartDetails struct {
	ClickedAt int64 `json:"clickedAt"` // 点击开始按钮的时间（Unix 毫秒）
}

// GameDataLog 结算事件
type GameDataLog struct {
	UserID       string  `json:"userId"`
	Timestamp    string  `json:"timestamp"`
	TotalSquares int     `json:"totalSquares"`
	ClickedCount int     `json:"clickedCount"`
	SuccessRate  float64 `json:"successRate"`
}

// Client 事件上报客户端，实现 game.EventLogger
type Client struct {
	endpoint   string
	userID     string
	timeout    time.Duration
	httpClient *http.Client
	now        func() time.Time

	wg sync.WaitGroup
}

var _ game.EventLogger = (*Client)(nil)

// NewClient 创建上报客户端
// endpoint 为空时客户端处于禁用状态，所有上报都是空操作
func NewClient(endpoint, userID string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		endpoint:   strings.TrimRight(endpoint, "/"),
		userID:     userID,
		timeout:    timeout,
		httpClient: &http.Client{},
		now:        time.Now,
	}
}

// Enabled 返回是否配置了日志服务地址
func (c *Client) Enabled() bool {
	return c.endpoint != ""
}

// GameStart 上报 game_start 事件
func (c *Client) GameStart(clickedAt time.Time) {
	c.post(GameStartPath, GameStartLog{
		UserID:    c.userID,
		Timestamp: c.timestamp(),
		Event:     EventGameStart,
		Details:   GameStartDetails{ClickedAt: clickedAt.UnixMilli()},
	})
}

// GameEnd 上报本局结算数据
func (c *Client) GameEnd(result game.GameResult) {
	c.post(GameDataPath, GameDataLog{
		UserID:       c.userID,
		Timestamp:    c.timestamp(),
		TotalSquares: result.TotalSquares,
		ClickedCount: result.ClickedCount,
		SuccessRate:  result.SuccessRate,
	})
}

// Wait 等待所有进行中的上报完成（退出前和测试中使用）
func (c *Client) Wait() {
	c.wg.Wait()
}

func (c *Client) timestamp() string {
	return c.now().UTC().Format(timestampLayout)
}

// post 序列化后异步发送
func (c *Client) post(path string, payload any) {
	if !c.Enabled() {
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[EventLog] Failed to marshal %s payload: %v", path, err)
		return
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if err := c.send(path, body); err != nil {
			log.Printf("[EventLog] %v", err)
		}
	}()
}

func (c *Client) send(path string, body []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	url := c.endpoint + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", url, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post %s: %w", url, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("post %s: unexpected status %s", url, resp.Status)
	}
	log.Printf("[EventLog] Posted %s (%d bytes)", path, len(body))
	return nil
}
