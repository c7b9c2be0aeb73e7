// logrelay 将游戏客户端上报的事件写入 OpenSearch
//
// 用法：
//
//	logrelay -config relay.yaml
//
// 环境变量 PORT、OPENSEARCH_ENDPOINT、OPENSEARCH_USERNAME、OPENSEARCH_PASSWORD、
// EC2_PRIVATE_IP 会覆盖配置文件中的对应项。
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/decker502/boxpop/pkg/relay"
)

var (
	configPath = flag.String("config", "", "配置文件路径（YAML），为空则使用默认配置")
	staticDir  = flag.String("static", "", "静态文件目录，覆盖配置文件")
)

func main() {
	flag.Parse()

	logger := log.New(os.Stdout, "[Relay] ", log.LstdFlags)

	cfg, err := relay.LoadConfig(*configPath)
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		logger.Fatalf("Invalid environment: %v", err)
	}
	if *staticDir != "" {
		cfg.StaticDir = *staticDir
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("Invalid config: %v", err)
	}

	allowed := append([]string{cfg.PrivateIP}, cfg.AllowedIPs...)
	if cfg.DetectGateway {
		gateway, err := relay.DetectDefaultGateway()
		if err != nil {
			logger.Printf("Failed to detect default gateway: %v", err)
		} else {
			logger.Printf("Default gateway: %s", gateway)
			allowed = append(allowed, gateway)
		}
	}
	allowList := relay.NewIPAllowList(allowed...)
	logger.Printf("Allowed IPs for /metrics: %v", allowList.Prefixes())

	forwarder := relay.NewOpenSearchForwarder(cfg.OpenSearch, &http.Client{Timeout: 30 * time.Second})
	server := relay.NewServer(cfg, forwarder, allowList, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.ListenAndServe(ctx, cfg.Addr()); err != nil {
		logger.Fatalf("Server error: %v", err)
	}
}
