package helpers

import (
	"io"
	"testing"

	"market-dashboard/src/logger"
)

func quietLogger() *logger.Logger {
	return logger.NewLoggerTo(io.Discard, "ERROR", "test")
}

func TestProxyRotation(t *testing.T) {
	pm := NewProxyManager([]string{"10.0.0.1:8080", "https://10.0.0.2:3128", "ftp://bad:21", ""}, "", quietLogger())
	if !pm.HasProxies() {
		t.Fatal("expected proxies")
	}

	first, _ := pm.GetCurrentProxy()
	if first != "http://10.0.0.1:8080" {
		t.Errorf("first proxy = %q", first)
	}
	pm.RotateProxy()
	second, _ := pm.GetCurrentProxy()
	if second != "https://10.0.0.2:3128" {
		t.Errorf("second proxy = %q", second)
	}
	pm.RotateProxy()
	again, _ := pm.GetCurrentProxy()
	if again != first {
		t.Errorf("rotation did not wrap: %q", again)
	}
}

func TestPinnedUserAgent(t *testing.T) {
	pm := NewProxyManager(nil, "dashboard/1.0", quietLogger())
	if pm.HasProxies() {
		t.Fatal("expected no proxies")
	}
	for i := 0; i < 5; i++ {
		if ua := pm.GetUserAgent(); ua != "dashboard/1.0" {
			t.Fatalf("user agent = %q", ua)
		}
	}
}

func TestValidateProxy(t *testing.T) {
	cases := map[string]bool{
		"127.0.0.1:8080":          true,
		"http://proxy.local:3128": true,
		"socks5://127.0.0.1:1080": true,
		"ftp://127.0.0.1:21":      false,
		"":                        false,
	}
	for in, want := range cases {
		if got := ValidateProxy(in); got != want {
			t.Errorf("ValidateProxy(%q) = %v, want %v", in, got, want)
		}
	}
}
