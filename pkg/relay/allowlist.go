package relay

import (
	"bufio"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
)

// IPAllowList 基于前缀匹配的客户端地址白名单
type IPAllowList struct {
	prefixes []string
}

// NewIPAllowList 创建白名单，忽略空项
func NewIPAllowList(prefixes ...string) *IPAllowList {
	l := &IPAllowList{}
	for _, p := range prefixes {
		if p = strings.TrimSpace(p); p != "" {
			l.prefixes = append(l.prefixes, p)
		}
	}
	return l
}

// Prefixes 返回白名单内容
func (l *IPAllowList) Prefixes() []string {
	return append([]string(nil), l.prefixes...)
}

// Allowed 判断客户端地址是否在白名单内
// IPv4 映射的 IPv6 地址（::ffff:a.b.c.d）按 IPv4 处理
func (l *IPAllowList) Allowed(clientIP string) bool {
	ip := normalizeIP(clientIP)
	for _, p := range l.prefixes {
		if strings.HasPrefix(ip, p) {
			return true
		}
	}
	return false
}

// Middleware 拒绝白名单之外的请求（403）
func (l *IPAllowList) Middleware(logf func(format string, args ...any)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := normalizeIP(r.RemoteAddr)
			if !l.Allowed(ip) {
				logf("Access denied for IP: %s", ip)
				http.Error(w, "Access to /metrics is restricted to private network.", http.StatusForbidden)
				return
			}
			logf("Access approved for IP: %s", ip)
			next.ServeHTTP(w, r)
		})
	}
}

// normalizeIP 去掉端口与 ::ffff: 前缀
func normalizeIP(addr string) string {
	host := addr
	if h, _, err := net.SplitHostPort(addr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "::ffff:")
	if ip := net.ParseIP(host); ip != nil {
		if v4 := ip.To4(); v4 != nil {
			return v4.String()
		}
		return ip.String()
	}
	return host
}

// DetectDefaultGateway 读取 /proc/net/route 获取默认网关
// 在容器内运行时，Prometheus 的抓取请求来自该网关地址
func DetectDefaultGateway() (string, error) {
	f, err := os.Open("/proc/net/route")
	if err != nil {
		return "", fmt.Errorf("failed to open route table: %w", err)
	}
	defer f.Close()
	return parseDefaultGateway(f)
}

// parseDefaultGateway 解析 /proc/net/route 格式
// 网关字段为小端序的十六进制 IPv4 地址
func parseDefaultGateway(r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	first := true
	for scanner.Scan() {
		if first {
			first = false
			continue
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 || fields[1] != "00000000" {
			continue
		}
		raw, err := hex.DecodeString(fields[2])
		if err != nil || len(raw) != 4 {
			return "", fmt.Errorf("invalid gateway field %q", fields[2])
		}
		ip := make(net.IP, 4)
		binary.BigEndian.PutUint32(ip, binary.LittleEndian.Uint32(raw))
		return ip.String(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("failed to read route table: %w", err)
	}
	return "", fmt.Errorf("no default route")
}
