package services

import (
	"errors"
	"net"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/linkme-io/linkme-backend/models"
)

type staticGeo struct {
	country, city string
	err           error
}

func (g staticGeo) Lookup(net.IP) (string, string, error) {
	return g.country, g.city, g.err
}

func TestRequestMetaFrom(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/public/profile/jane", nil)
	r.RemoteAddr = "192.0.2.10:5555"
	r.Header.Set("User-Agent", iphoneUA)
	r.Header.Set("Referer", "https://t.co/x")

	meta := RequestMetaFrom(r)
	mustEqual(t, "socket ip", meta.ClientIP, "192.0.2.10:5555")
	mustEqual(t, "referrer", meta.Referrer, "https://t.co/x")

	r.Header.Set("X-Real-IP", "198.51.100.2")
	mustEqual(t, "real ip", RequestMetaFrom(r).ClientIP, "198.51.100.2")

	r.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
	mustEqual(t, "forwarded ip", RequestMetaFrom(r).ClientIP, "203.0.113.5")
}

func TestDescribeClientIP(t *testing.T) {
	geo := staticGeo{country: "US", city: "Mountain View"}
	tests := []struct {
		name   string
		raw    string
		wantIP string
	}{
		{"public", "8.8.8.8", "8.8.8.8"},
		{"host port", "8.8.8.8:443", "8.8.8.8"},
		{"ipv4 mapped", "::ffff:8.8.4.4", "8.8.4.4"},
		{"bracketed ipv6", "[2001:4860:4860::8888]:80", "2001:4860:4860::8888"},
		{"private", "10.1.2.3", ""},
		{"loopback", "127.0.0.1", ""},
		{"link local", "169.254.1.1", ""},
		{"garbage", "not-an-ip", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := DescribeClient(RequestMeta{ClientIP: tt.raw}, geo, zerolog.Nop())
			if tt.wantIP == "" {
				if info.IP != nil || info.Country != nil {
					t.Fatalf("ip = %v, country = %v; want none", info.IP, info.Country)
				}
				return
			}
			if info.IP == nil || *info.IP != tt.wantIP {
				t.Fatalf("ip = %v, want %s", info.IP, tt.wantIP)
			}
			if info.Country == nil || *info.Country != "US" {
				t.Fatalf("country = %v", info.Country)
			}
		})
	}
}

func TestDescribeClientGeoFailureIsIgnored(t *testing.T) {
	info := DescribeClient(RequestMeta{ClientIP: "8.8.8.8"}, staticGeo{err: errors.New("no record")}, zerolog.Nop())
	if info.IP == nil || info.Country != nil || info.City != nil {
		t.Fatalf("info = %+v", info)
	}
}

func TestParseUserAgent(t *testing.T) {
	tests := []struct {
		name       string
		ua         string
		device     string
		browserSet bool
	}{
		{"iphone", iphoneUA, models.DeviceMobile, true},
		{"ipad", "Mozilla/5.0 (iPad; CPU OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1", models.DeviceTablet, true},
		{"android tablet", "Mozilla/5.0 (Linux; Android 13; SM-X700) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36", models.DeviceTablet, true},
		{"desktop chrome", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36", models.DeviceDesktop, true},
		{"googlebot", "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)", models.DeviceBot, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			device, browser := parseUserAgent(tt.ua)
			mustEqual(t, "device", device, tt.device)
			if tt.browserSet && browser == models.Unknown {
				t.Fatalf("browser not detected for %q", tt.ua)
			}
		})
	}

	_, browser := parseUserAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	mustEqual(t, "browser", browser, "Chrome 120")
}

func TestDescribeClientWithoutUserAgent(t *testing.T) {
	info := DescribeClient(RequestMeta{}, nil, zerolog.Nop())
	mustEqual(t, "device", info.Device, models.Unknown)
	mustEqual(t, "browser", info.Browser, models.Unknown)
	if info.UserAgent != nil || info.Referrer != nil {
		t.Fatalf("info = %+v", info)
	}
}
