package head

import (
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/vango-dev/headkit/pkg/clientwindow"
)

// Request carries the request derived inputs of one render. HTTP may be nil
// when rendering outside a server, for example from the CLI.
type Request struct {
	HTTP *http.Request

	// ViewID identifies the page being rendered.
	ViewID string

	// ContextPath is the path the application is mounted at, without a
	// trailing slash. Empty for the root.
	ContextPath string

	// Secure reports whether the client connection is secure.
	Secure bool

	// Window is the client window of the request, if any. Only
	// *clientwindow.Managed windows are initialized on the client.
	Window clientwindow.Window

	// Cookies receives cookies the renderer adds to the response.
	Cookies clientwindow.CookieSetter
}

// RequestOptions configures NewRequest.
type RequestOptions struct {
	ContextPath    string
	TrustedProxies *ProxyMatcher
}

// NewRequest derives a Request from an incoming HTTP request. Cookies are
// written to w, which may be nil.
func NewRequest(w http.ResponseWriter, r *http.Request, opts RequestOptions) Request {
	req := Request{
		HTTP:        r,
		ContextPath: strings.TrimRight(opts.ContextPath, "/"),
		Secure:      IsSecure(r, opts.TrustedProxies),
	}
	if r != nil && r.URL != nil {
		req.ViewID = viewID(r.URL.Path, req.ContextPath)
	}
	if win := clientwindow.FromRequest(r); win != nil {
		req.Window = win
	}
	if w != nil {
		req.Cookies = clientwindow.ResponseCookies{ResponseWriter: w}
	}
	return req
}

func viewID(path, contextPath string) string {
	if contextPath != "" {
		if path == contextPath {
			return "/"
		}
		if strings.HasPrefix(path, contextPath+"/") {
			path = path[len(contextPath):]
		}
	}
	if path == "" {
		return "/"
	}
	return path
}

// IsSecure reports whether r arrived over TLS. Forwarded and
// X-Forwarded-Proto headers are honored only from trusted proxies.
func IsSecure(r *http.Request, proxies *ProxyMatcher) bool {
	if r == nil {
		return false
	}
	if r.TLS != nil {
		return true
	}
	if !proxies.IsTrusted(remoteIP(r)) {
		return false
	}

	if proto := forwardedProto(r.Header.Get("Forwarded")); proto != "" {
		return isSecureProto(proto)
	}
	if proto := firstValue(r.Header.Get("X-Forwarded-Proto")); proto != "" {
		return isSecureProto(proto)
	}
	return false
}

func forwardedProto(header string) string {
	first := firstValue(header)
	if first == "" {
		return ""
	}
	for _, param := range strings.Split(first, ";") {
		name, value, ok := strings.Cut(strings.TrimSpace(param), "=")
		if !ok {
			continue
		}
		if strings.EqualFold(name, "proto") {
			return strings.ToLower(strings.Trim(strings.TrimSpace(value), "\""))
		}
	}
	return ""
}

func firstValue(header string) string {
	if header == "" {
		return ""
	}
	first, _, _ := strings.Cut(header, ",")
	return strings.ToLower(strings.Trim(strings.TrimSpace(first), "\""))
}

func isSecureProto(proto string) bool {
	switch strings.ToLower(proto) {
	case "https", "wss":
		return true
	default:
		return false
	}
}

func remoteIP(r *http.Request) net.IP {
	host := strings.TrimSpace(r.RemoteAddr)
	if host == "" {
		return nil
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.Trim(host, "[]")
	if zone := strings.Index(host, "%"); zone != -1 {
		host = host[:zone]
	}
	return net.ParseIP(host)
}

// ProxyMatcher matches addresses against trusted proxy IPs and CIDRs.
// A nil *ProxyMatcher trusts nothing.
type ProxyMatcher struct {
	ips  map[string]struct{}
	nets []*net.IPNet
}

// NewProxyMatcher parses entries as IPs or CIDRs. Invalid entries are logged
// and skipped. It returns nil when no entry is valid.
func NewProxyMatcher(entries []string, logger *slog.Logger) *ProxyMatcher {
	if len(entries) == 0 {
		return nil
	}

	ips := make(map[string]struct{})
	var nets []*net.IPNet

	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if strings.Contains(entry, "/") {
			_, network, err := net.ParseCIDR(entry)
			if err != nil {
				if logger != nil {
					logger.Warn("invalid trusted proxy CIDR", "entry", entry, "error", err)
				}
				continue
			}
			nets = append(nets, network)
			continue
		}
		ip := net.ParseIP(entry)
		if ip == nil {
			if logger != nil {
				logger.Warn("invalid trusted proxy IP", "entry", entry)
			}
			continue
		}
		ips[ip.String()] = struct{}{}
	}

	if len(ips) == 0 && len(nets) == 0 {
		return nil
	}
	return &ProxyMatcher{ips: ips, nets: nets}
}

// IsTrusted reports whether ip belongs to a trusted proxy.
func (m *ProxyMatcher) IsTrusted(ip net.IP) bool {
	if m == nil || ip == nil {
		return false
	}
	if _, ok := m.ips[ip.String()]; ok {
		return true
	}
	for _, network := range m.nets {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}
