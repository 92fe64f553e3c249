package config

import (
	"os"
	"reflect"
	"strconv"
	"strings"
	"testing"
	"time"
)

// t.Setenv gives per-test isolation; TestMain clears anything the host
// environment might leak into defaults-based tests.
func TestMain(m *testing.M) {
	os.Unsetenv("PORT")
	os.Exit(m.Run())
}

func TestMustLoad_PanicsOnInvalidEnvironment(t *testing.T) {
	t.Setenv("LOG_LEVEL", "verbose")
	defer func() {
		if recover() == nil {
			t.Fatalf("MustLoad must panic when Load fails")
		}
	}()
	_ = MustLoad()
}

func TestMustLoad_DefaultsAreValid(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("MustLoad panicked on defaults: %v", r)
		}
	}()
	if cfg := MustLoad(); cfg.APIBasePath == "" {
		t.Fatalf("unexpected empty config from MustLoad")
	}
}

func TestLoad_OverridesAndNormalization(t *testing.T) {
	t.Setenv("PORT", "8088")
	t.Setenv("READ_TIMEOUT", "2s")
	t.Setenv("READ_HEADER_TIMEOUT", "1s")
	t.Setenv("WRITE_TIMEOUT", "3s")
	t.Setenv("IDLE_TIMEOUT", "4s")
	t.Setenv("MAX_HEADER_BYTES", "8192")
	t.Setenv("GIN_MODE", "weird") // coerced to release

	t.Setenv("LOG_LEVEL", "warning") // long form normalizes to warn
	t.Setenv("LOG_PRETTY", "yes")
	t.Setenv("SWAGGER_ENABLED", "on")
	t.Setenv("API_BASE_PATH", "api/v1/") // gains leading slash, loses trailing

	t.Setenv("DB_PATH", "db.sqlite")

	// Unparseable numbers fall back to defaults rather than erroring.
	t.Setenv("RATE_RPS", "x")
	t.Setenv("RATE_BURST", "nope")

	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.com , , http://b ")
	t.Setenv("ENABLE_HSTS", "TRUE")
	t.Setenv("HSTS_MAX_AGE", "24h")

	t.Setenv("IDEMPOTENCY_TTL", "48h")

	t.Setenv("OTEL_ENABLED", "1")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "otel:4317")
	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "0")
	t.Setenv("OTEL_SERVICE_NAME", "svc")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.75")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != "8088" || cfg.ReadTimeout != 2*time.Second ||
		cfg.ReadHeaderTimeout != time.Second || cfg.WriteTimeout != 3*time.Second ||
		cfg.IdleTimeout != 4*time.Second || cfg.MaxHeaderBytes != 8192 {
		t.Fatalf("server fields: %+v", cfg)
	}
	if cfg.GinMode != "release" {
		t.Fatalf("GinMode %q; unknown modes must coerce to release", cfg.GinMode)
	}
	if cfg.LogLevel != "warn" || !cfg.LogPretty || !cfg.SwaggerEnabled {
		t.Fatalf("logging fields: %+v", cfg)
	}
	if cfg.APIBasePath != "/api/v1" {
		t.Fatalf("APIBasePath %q; want /api/v1", cfg.APIBasePath)
	}
	if cfg.DBPath != "db.sqlite" {
		t.Fatalf("DBPath %q", cfg.DBPath)
	}
	if cfg.RateRPS != 5.0 || cfg.RateBurst != 10 {
		t.Fatalf("rate fields did not fall back on bad parse: %+v", cfg)
	}
	if want := []string{"https://a.com", "http://b"}; !reflect.DeepEqual(cfg.CORS.AllowedOrigins, want) {
		t.Fatalf("origins %#v; want %#v", cfg.CORS.AllowedOrigins, want)
	}
	if !cfg.Security.EnableHSTS || cfg.Security.HSTSMaxAge != 24*time.Hour {
		t.Fatalf("security fields: %+v", cfg.Security)
	}
	if cfg.IdempotencyTTL != 48*time.Hour {
		t.Fatalf("IdempotencyTTL %v", cfg.IdempotencyTTL)
	}
	if !cfg.OTEL.Enabled || cfg.OTEL.Endpoint != "otel:4317" || cfg.OTEL.Insecure ||
		cfg.OTEL.ServiceName != "svc" || cfg.OTEL.SampleRatio != 0.75 {
		t.Fatalf("otel fields: %+v", cfg.OTEL)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIBasePath != "/api/v1" {
		t.Fatalf("APIBasePath default %q; want /api/v1", cfg.APIBasePath)
	}
	if cfg.DBPath != "pets.db" {
		t.Fatalf("DBPath default %q; want pets.db", cfg.DBPath)
	}
	if cfg.IdempotencyTTL != 24*time.Hour {
		t.Fatalf("IdempotencyTTL default %v; want 24h", cfg.IdempotencyTTL)
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	cases := []struct {
		name    string
		key     string
		value   string
		wantMsg string
	}{
		{"log level", "LOG_LEVEL", "verbose", "LOG_LEVEL"},
		{"blank port", "PORT", "   ", "PORT must not be empty"},
		{"zero timeout", "READ_TIMEOUT", "0s", "timeouts must be positive"},
		{"zero header cap", "MAX_HEADER_BYTES", "0", "MAX_HEADER_BYTES"},
		{"blank db path", "DB_PATH", "   ", "DB_PATH must not be empty"},
		{"negative rps", "RATE_RPS", "-1", "RATE_RPS"},
		{"zero burst", "RATE_BURST", "0", "RATE_BURST"},
		{"negative hsts age", "HSTS_MAX_AGE", "-1s", "HSTS_MAX_AGE"},
		{"zero idempotency ttl", "IDEMPOTENCY_TTL", "0s", "IDEMPOTENCY_TTL"},
		{"sample ratio above 1", "OTEL_TRACES_SAMPLER_ARG", "1.5", "OTEL_TRACES_SAMPLER_ARG"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tc.wantMsg) {
				t.Fatalf("Load err = %v; want message containing %q", err, tc.wantMsg)
			}
		})
	}
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("X_EMPTY", "")
	if envStr("X_EMPTY", "d") != "d" {
		t.Fatalf("empty value must read as unset")
	}
	t.Setenv("X_SET", "val")
	if envStr("X_SET", "d") != "val" {
		t.Fatalf("set value ignored")
	}

	t.Setenv("F_OK", "3.14")
	t.Setenv("F_BAD", "nope")
	if envFloat("F_OK", 0) != 3.14 || envFloat("F_BAD", 1.23) != 1.23 {
		t.Fatalf("envFloat parse/fallback broken")
	}

	t.Setenv("I_OK", "42")
	t.Setenv("I_BAD", "x")
	if envInt("I_OK", 0) != 42 || envInt("I_BAD", 7) != 7 {
		t.Fatalf("envInt parse/fallback broken")
	}

	t.Setenv("D_OK", "150ms")
	t.Setenv("D_BAD", "zzz")
	if envDur("D_OK", time.Second) != 150*time.Millisecond || envDur("D_BAD", 2*time.Second) != 2*time.Second {
		t.Fatalf("envDur parse/fallback broken")
	}
}

func TestEnvBool_AcceptedSpellings(t *testing.T) {
	for i, v := range []string{"1", "true", "TRUE", " yes ", "Y", "on", "On"} {
		key := "B_T_" + strconv.Itoa(i)
		t.Setenv(key, v)
		if !envBool(key, false) {
			t.Fatalf("envBool(%q) = false; want true", v)
		}
	}
	for i, v := range []string{"0", "false", "FALSE", " no ", "N", "off", "Off"} {
		key := "B_F_" + strconv.Itoa(i)
		t.Setenv(key, v)
		if envBool(key, true) {
			t.Fatalf("envBool(%q) = true; want false", v)
		}
	}
	t.Setenv("B_GIBBERISH", "maybe")
	if !envBool("B_GIBBERISH", true) || envBool("B_GIBBERISH", false) {
		t.Fatalf("unrecognized spelling must keep the default")
	}
	t.Setenv("B_EMPTY", "")
	if !envBool("B_EMPTY", true) || envBool("B_EMPTY", false) {
		t.Fatalf("empty value must keep the default")
	}
}

func TestSplitCSV(t *testing.T) {
	if out := splitCSV(""); out != nil {
		t.Fatalf("empty input must yield nil, got %#v", out)
	}
	got := splitCSV(" a, ,b ,  c  ,")
	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("splitCSV = %#v; want %#v", got, want)
	}
}

func TestNormalizeBasePath(t *testing.T) {
	cases := map[string]string{
		"":        "/",
		" / ":     "/",
		"v1":      "/v1",
		"/v1/":    "/v1",
		"/v1///":  "/v1",
		"/api/v1": "/api/v1",
	}
	for in, want := range cases {
		if got := normalizeBasePath(in); got != want {
			t.Fatalf("normalizeBasePath(%q) = %q; want %q", in, got, want)
		}
	}
}
