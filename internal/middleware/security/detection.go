// Package security provides request hardening for the purchase API:
// response headers, suspicion logging, and client IP extraction behind
// trusted proxies.
package security

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
)

// probePatterns are path/query fragments that no legitimate API client
// produces. Capture agents post page HTML in request bodies, so body
// content is never inspected here; only the request line is.
var probePatterns = []string{
	"../", "..\\", ".env", ".git", ".ssh",
	"wp-admin", "phpmyadmin", "admin.php", "config.php",
	"eval(", "javascript:", "<script", "union select",
	"etc/passwd", "cmd.exe",
}

// uncommonMethods are methods the API never serves.
var uncommonMethods = []string{"TRACE", "TRACK", "DEBUG", "CONNECT"}

// maxRequestLine bounds the URL length. Scan payloads travel in the body,
// so a very long request line is a probe, not a big page.
const maxRequestLine = 2048

// DetectionMetrics tracks security detection events.
type DetectionMetrics struct {
	SuspiciousRequests int64
}

// Detector flags probe-looking requests and resolves client IPs. Detection
// is log-only: scripted clients are this API's normal audience, so nothing
// is blocked on suspicion alone.
type Detector struct {
	metrics        *DetectionMetrics
	trustedProxies []*net.IPNet
}

func NewDetector() *Detector {
	return &Detector{
		metrics: &DetectionMetrics{},
		trustedProxies: []*net.IPNet{
			mustCIDR("127.0.0.0/8"),
			mustCIDR("10.0.0.0/8"),
			mustCIDR("172.16.0.0/12"),
			mustCIDR("192.168.0.0/16"),
		},
	}
}

func mustCIDR(cidr string) *net.IPNet {
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		panic(fmt.Sprintf("failed to parse trusted proxy CIDR %s: %v", cidr, err))
	}
	return network
}

// DetectSuspiciousRequest reports whether the request line looks like a
// scanner probe rather than an API call.
func (d *Detector) DetectSuspiciousRequest(r *http.Request) bool {
	suspicious := false

	line := strings.ToLower(r.URL.Path)
	if r.URL.RawQuery != "" {
		line += "?" + strings.ToLower(r.URL.RawQuery)
	}
	for _, pattern := range probePatterns {
		if strings.Contains(line, pattern) {
			suspicious = true
			break
		}
	}

	for _, method := range uncommonMethods {
		if r.Method == method {
			suspicious = true
			break
		}
	}

	if len(r.URL.String()) > maxRequestLine {
		suspicious = true
	}

	// Stacked forwarding headers with a long hop chain suggest header
	// manipulation rather than a real proxy path.
	if r.Header.Get("X-Forwarded-For") != "" && r.Header.Get("X-Real-IP") != "" {
		if strings.Count(r.Header.Get("X-Forwarded-For"), ",") > 5 {
			suspicious = true
		}
	}

	if suspicious {
		atomic.AddInt64(&d.metrics.SuspiciousRequests, 1)
	}
	return suspicious
}

// ExtractClientIP extracts the real client IP. Forwarded headers are only
// honored when the direct peer is a trusted proxy.
func (d *Detector) ExtractClientIP(r *http.Request) string {
	directIP, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		directIP = r.RemoteAddr
	}

	parsedDirectIP := net.ParseIP(directIP)
	if parsedDirectIP == nil {
		return directIP
	}

	if d.isTrustedProxy(parsedDirectIP) {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			// First entry is the originating client.
			first := strings.TrimSpace(strings.Split(xff, ",")[0])
			if net.ParseIP(first) != nil {
				return first
			}
		}
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			if net.ParseIP(xri) != nil {
				return xri
			}
		}
	}

	return directIP
}

func (d *Detector) isTrustedProxy(ip net.IP) bool {
	for _, network := range d.trustedProxies {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// GetMetrics returns current security metrics.
func (d *Detector) GetMetrics() DetectionMetrics {
	return DetectionMetrics{
		SuspiciousRequests: atomic.LoadInt64(&d.metrics.SuspiciousRequests),
	}
}

// AddTrustedProxy adds a trusted proxy network.
func (d *Detector) AddTrustedProxy(cidr string) error {
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		return fmt.Errorf("invalid CIDR %s: %w", cidr, err)
	}
	d.trustedProxies = append(d.trustedProxies, network)
	return nil
}
