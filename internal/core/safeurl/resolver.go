// Package safeurl 負責驗證使用者提供的 URL、解析 DNS 並鎖定目標 IP，
// 以及在每一次重新導向時重新驗證的安全抓取。
package safeurl

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"recipe-collector/internal/pkg/common"
)

// Resolver DNS 解析介面，預設使用 net.DefaultResolver
type Resolver interface {
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}

// Target 驗證後的連線目標，只在單一請求內使用
type Target struct {
	URL    *url.URL   // 原始 URL
	Scheme string     // http 或 https
	IP     netip.Addr // 鎖定的 IP
	Port   string
	Host   string // Host header 與 TLS SNI 使用的主機名稱
}

// DialAddr 實際連線的位址
func (t *Target) DialAddr() string {
	return net.JoinHostPort(t.IP.String(), t.Port)
}

var (
	cgnat       = netip.MustParsePrefix("100.64.0.0/10")
	thisNetwork = netip.MustParsePrefix("0.0.0.0/8")
	reserved    = netip.MustParsePrefix("240.0.0.0/4")
	uniqueLocal = netip.MustParsePrefix("fc00::/7")
	siteLocal   = netip.MustParsePrefix("fec0::/10")
	v4Compat    = netip.MustParsePrefix("::/96")
	nat64       = netip.MustParsePrefix("64:ff9b::/96")
	sixToFour   = netip.MustParsePrefix("2002::/16")
)

// Validator 執行 URL 安全政策
type Validator struct {
	resolver Resolver
	deny     []netip.Prefix
}

// NewValidator 建立驗證器，denyCIDRs 為額外封鎖的網段
func NewValidator(resolver Resolver, denyCIDRs []string) (*Validator, error) {
	if resolver == nil {
		resolver = net.DefaultResolver
	}
	v := &Validator{resolver: resolver}
	for _, cidr := range denyCIDRs {
		cidr = strings.TrimSpace(cidr)
		if cidr == "" {
			continue
		}
		prefix, err := netip.ParsePrefix(cidr)
		if err != nil {
			return nil, fmt.Errorf("invalid deny cidr %q: %w", cidr, err)
		}
		v.deny = append(v.deny, prefix.Masked())
	}
	return v, nil
}

// ValidateAndResolve 驗證 URL 並進行一次 DNS 解析，回傳鎖定 IP 的目標
func (v *Validator) ValidateAndResolve(ctx context.Context, rawURL string) (*Target, error) {
	u, err := CheckSyntax(rawURL)
	if err != nil {
		return nil, err
	}

	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "80"
		if u.Scheme == "https" {
			port = "443"
		}
	}

	// 字面 IP 不查詢 DNS
	if addr, err := netip.ParseAddr(host); err == nil {
		if err := v.checkAddr(addr); err != nil {
			return nil, err
		}
		return &Target{URL: u, Scheme: u.Scheme, IP: addr.Unmap(), Port: port, Host: host}, nil
	}

	ipAddrs, err := v.resolver.LookupIPAddr(ctx, host)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		common.LogWarn("DNS 解析失敗", zap.String("host", host), zap.Error(err))
		return nil, common.ErrUnsafeURL.Wrap(fmt.Errorf("cannot resolve host %q: %w", host, err))
	}
	if len(ipAddrs) == 0 {
		return nil, common.ErrUnsafeURL.Wrap(fmt.Errorf("host %q has no addresses", host))
	}

	// 每一筆位址都必須合法，避免多筆紀錄混入內網位址
	var pinned netip.Addr
	for i, ipAddr := range ipAddrs {
		addr, ok := netip.AddrFromSlice(ipAddr.IP)
		if !ok {
			return nil, common.ErrUnsafeURL.Wrap(fmt.Errorf("host %q resolved to an invalid address", host))
		}
		if err := v.checkAddr(addr); err != nil {
			common.LogWarn("已封鎖不安全的解析結果",
				zap.String("host", host),
				zap.String("ip", addr.String()),
			)
			return nil, err
		}
		if i == 0 {
			pinned = addr.Unmap()
		}
	}

	return &Target{URL: u, Scheme: u.Scheme, IP: pinned, Port: port, Host: host}, nil
}

// CheckSyntax 只做語法檢查：http(s)、有主機、無帳密
func CheckSyntax(rawURL string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, common.ErrUnsafeURL.Wrap(fmt.Errorf("malformed url: %w", err))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, common.ErrUnsafeURL.Wrap(fmt.Errorf("scheme %q not allowed", u.Scheme))
	}
	if u.User != nil {
		return nil, common.ErrUnsafeURL.Wrap(fmt.Errorf("credentials in url not allowed"))
	}
	if u.Hostname() == "" {
		return nil, common.ErrUnsafeURL.Wrap(fmt.Errorf("missing host"))
	}
	return u, nil
}

// checkAddr 檢查位址是否屬於封鎖類別
func (v *Validator) checkAddr(addr netip.Addr) error {
	if reason := blockedReason(addr); reason != "" {
		return common.ErrUnsafeURL.Wrap(fmt.Errorf("address %s is %s", addr, reason))
	}
	plain := addr.Unmap().WithZone("")
	inner, embedded := embeddedV4(plain)
	for _, prefix := range v.deny {
		if prefix.Contains(plain) || (embedded && prefix.Contains(inner)) {
			return common.ErrUnsafeURL.Wrap(fmt.Errorf("address %s is in denied range %s", addr, prefix))
		}
	}
	return nil
}

// blockedReason 回傳封鎖原因，空字串代表可連線
func blockedReason(addr netip.Addr) string {
	if !addr.IsValid() {
		return "invalid"
	}
	// ::ffff:a.b.c.d 以 IPv4 規則判斷
	a := addr.Unmap().WithZone("")
	switch {
	case a.IsUnspecified():
		return "unspecified"
	case a.IsLoopback():
		return "loopback"
	case a.IsPrivate():
		return "private"
	case a.IsLinkLocalUnicast():
		return "link-local"
	case a.IsLinkLocalMulticast(), a.IsInterfaceLocalMulticast(), a.IsMulticast():
		return "multicast"
	case cgnat.Contains(a):
		return "carrier-grade NAT"
	case thisNetwork.Contains(a), reserved.Contains(a):
		return "reserved"
	case uniqueLocal.Contains(a), siteLocal.Contains(a):
		return "private"
	case v4Compat.Contains(a):
		return "IPv4-compatible"
	}
	// NAT64 與 6to4 位址內嵌的 IPv4 以 IPv4 規則判斷
	if inner, ok := embeddedV4(a); ok {
		if reason := blockedReason(inner); reason != "" {
			return reason + " (embedded in " + a.String() + ")"
		}
	}
	return ""
}

// embeddedV4 取出 64:ff9b::/96 低 32 位元或 2002::/16 第 16 到 47 位元的 IPv4
func embeddedV4(a netip.Addr) (netip.Addr, bool) {
	b := a.As16()
	switch {
	case !a.Is6():
		return netip.Addr{}, false
	case nat64.Contains(a):
		return netip.AddrFrom4([4]byte{b[12], b[13], b[14], b[15]}), true
	case sixToFour.Contains(a):
		return netip.AddrFrom4([4]byte{b[2], b[3], b[4], b[5]}), true
	}
	return netip.Addr{}, false
}

// IsBlocked 判斷位址是否屬於預設封鎖類別
func IsBlocked(addr netip.Addr) bool {
	return blockedReason(addr) != ""
}
