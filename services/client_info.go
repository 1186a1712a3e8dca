package services

import (
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/mssola/useragent"
	"github.com/rs/zerolog"

	"github.com/linkme-io/linkme-backend/models"
)

// RequestMeta is the raw visitor information taken from an HTTP request.
type RequestMeta struct {
	ClientIP  string
	UserAgent string
	Referrer  string
}

// RequestMetaFrom extracts the visitor IP (first X-Forwarded-For entry, then
// X-Real-IP, then the socket address), user agent and referrer.
func RequestMetaFrom(r *http.Request) RequestMeta {
	ip := ""
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		ip = strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	if ip == "" {
		ip = strings.TrimSpace(r.Header.Get("X-Real-IP"))
	}
	if ip == "" {
		ip = r.RemoteAddr
	}
	return RequestMeta{
		ClientIP:  ip,
		UserAgent: r.UserAgent(),
		Referrer:  r.Referer(),
	}
}

// ClientInfo is RequestMeta after IP filtering, geo lookup and user-agent parsing.
type ClientInfo struct {
	IP        *string
	Country   *string
	City      *string
	UserAgent *string
	Device    string
	Browser   string
	Referrer  *string
}

// parseIP accepts bare addresses and host:port forms.
func parseIP(raw string) (netip.Addr, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return netip.Addr{}, false
	}
	if host, _, err := net.SplitHostPort(raw); err == nil {
		raw = host
	}
	addr, err := netip.ParseAddr(strings.Trim(raw, "[]"))
	if err != nil {
		return netip.Addr{}, false
	}
	return addr.Unmap(), true
}

// isPublicIP is false for private, loopback, link-local and unspecified ranges.
func isPublicIP(addr netip.Addr) bool {
	return addr.IsValid() &&
		!addr.IsPrivate() &&
		!addr.IsLoopback() &&
		!addr.IsLinkLocalUnicast() &&
		!addr.IsLinkLocalMulticast() &&
		!addr.IsUnspecified()
}

// DescribeClient never fails; anything it cannot work out is left empty or Unknown.
func DescribeClient(meta RequestMeta, geo GeoResolver, logger zerolog.Logger) ClientInfo {
	info := ClientInfo{Device: models.Unknown, Browser: models.Unknown}

	if addr, ok := parseIP(meta.ClientIP); ok && isPublicIP(addr) {
		ip := addr.String()
		info.IP = &ip
		if geo != nil {
			country, city, err := geo.Lookup(net.IP(addr.AsSlice()))
			if err != nil {
				logger.Debug().Err(err).Str("ip", ip).Msg("geo lookup failed")
			}
			info.Country = nonEmptyPtr(country)
			info.City = nonEmptyPtr(city)
		}
	}

	if ua := strings.TrimSpace(meta.UserAgent); ua != "" {
		info.UserAgent = &ua
		info.Device, info.Browser = parseUserAgent(ua)
	}
	info.Referrer = nonEmptyPtr(strings.TrimSpace(meta.Referrer))
	return info
}

// parseUserAgent returns the device class and "Family Major" browser string.
func parseUserAgent(raw string) (device, browser string) {
	ua := useragent.New(raw)

	switch {
	case ua.Bot():
		device = models.DeviceBot
	case isTablet(raw):
		device = models.DeviceTablet
	case ua.Mobile():
		device = models.DeviceMobile
	case ua.OS() != "" || ua.Platform() != "":
		device = models.DeviceDesktop
	default:
		device = models.Unknown
	}

	name, version := ua.Browser()
	if name == "" {
		return device, models.Unknown
	}
	if major, _, _ := strings.Cut(version, "."); major != "" {
		return device, name + " " + major
	}
	return device, name
}

func isTablet(raw string) bool {
	lower := strings.ToLower(raw)
	if strings.Contains(lower, "ipad") || strings.Contains(lower, "tablet") {
		return true
	}
	return strings.Contains(lower, "android") && !strings.Contains(lower, "mobile")
}

func nonEmptyPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
