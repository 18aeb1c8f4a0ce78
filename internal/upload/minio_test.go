package upload

import (
	"context"
	"strings"
	"testing"
)

func validConfig() map[string]any {
	return map[string]any{
		"endpoint":   "minio.example.com:9000",
		"access_key": "test-access",
		"secret_key": "test-secret",
		"bucket":     "benchdeck",
	}
}

func TestConfigureMissingFields(t *testing.T) {
	for _, field := range []string{"endpoint", "access_key", "secret_key", "bucket"} {
		t.Run(field, func(t *testing.T) {
			config := validConfig()
			delete(config, field)

			err := NewMinioProvider().Configure(config)
			if err == nil {
				t.Fatalf("expected error with %s missing", field)
			}
			if !strings.Contains(err.Error(), field) {
				t.Errorf("error %q does not name the missing field", err)
			}
		})
	}
}

func TestConfigureEmptyValueRejected(t *testing.T) {
	config := validConfig()
	config["bucket"] = ""
	if err := NewMinioProvider().Configure(config); err == nil {
		t.Error("expected error for empty bucket")
	}
}

func TestConfigureValid(t *testing.T) {
	p := NewMinioProvider()
	if err := p.Configure(validConfig()); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	if p.bucket != "benchdeck" {
		t.Errorf("bucket = %q", p.bucket)
	}
	if p.prefix != "" {
		t.Errorf("prefix should default to empty, got %q", p.prefix)
	}
}

func TestUploadUnconfigured(t *testing.T) {
	err := NewMinioProvider().Upload(context.Background(), strings.NewReader("{}"), "report.json")
	if err == nil {
		t.Error("expected error from an unconfigured provider")
	}
}

func TestName(t *testing.T) {
	if got := NewMinioProvider().Name(); got != "minio" {
		t.Errorf("Name = %q", got)
	}
}

func TestGetBool(t *testing.T) {
	tests := []struct {
		name         string
		value        any
		defaultValue bool
		want         bool
	}{
		{"bool true", true, false, true},
		{"bool false", false, true, false},
		{"string true", "true", false, true},
		{"string false", "false", true, false},
		{"unparseable string", "maybe", true, true},
		{"missing", nil, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := map[string]any{}
			if tt.value != nil {
				config["secure"] = tt.value
			}
			if got := getBool(config, "secure", tt.defaultValue); got != tt.want {
				t.Errorf("getBool = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetStringDefault(t *testing.T) {
	config := map[string]any{"region": "eu-west-1", "empty": ""}
	if got := getStringDefault(config, "region", "us-east-1"); got != "eu-west-1" {
		t.Errorf("region = %q", got)
	}
	if got := getStringDefault(config, "empty", "fallback"); got != "fallback" {
		t.Errorf("empty value should fall back, got %q", got)
	}
	if got := getStringDefault(config, "absent", "fallback"); got != "fallback" {
		t.Errorf("absent key should fall back, got %q", got)
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("BENCHDECK_S3_ENDPOINT", "s3.example.com")
	t.Setenv("BENCHDECK_S3_BUCKET", "reports")

	config := ConfigFromEnv()
	if config["endpoint"] != "s3.example.com" {
		t.Errorf("endpoint = %v", config["endpoint"])
	}
	if config["bucket"] != "reports" {
		t.Errorf("bucket = %v", config["bucket"])
	}
}
