package infra

import "testing"

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PORT", "")
	t.Setenv("PUBLIC_BASE_URL", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.PublicBaseURL != "http://localhost:8080" {
		t.Fatalf("PublicBaseURL mismatch: got %q", cfg.PublicBaseURL)
	}
	if cfg.DonationMinInt != 10000 {
		t.Fatalf("DonationMinInt mismatch: got %d want 10000", cfg.DonationMinInt)
	}
	if cfg.DonationFeeInt != 5000 {
		t.Fatalf("DonationFeeInt mismatch: got %d want 5000", cfg.DonationFeeInt)
	}
	if cfg.Currency.Code != "NGN" || cfg.Currency.Precision != 2 {
		t.Fatalf("Currency mismatch: %+v", cfg.Currency)
	}
}

func TestLoadConfigInheritsPortInPublicBaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PORT", "1919")
	t.Setenv("PUBLIC_BASE_URL", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.PublicBaseURL != "http://localhost:1919" {
		t.Fatalf("PublicBaseURL mismatch: got %q", cfg.PublicBaseURL)
	}
}

func TestLoadConfigRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "test-secret")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error when DATABASE_URL is empty")
	}
}

func TestLoadConfigRejectsInvertedBounds(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DONATION_MIN_AMOUNT", "500")
	t.Setenv("DONATION_MAX_AMOUNT", "100")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error when min exceeds max")
	}
}

func TestLoadConfigGatewayCredentials(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PAYSTACK_SECRET_KEY", "sk_test_abc")
	t.Setenv("MONNIFY_API_KEY", "MK_TEST")
	t.Setenv("MONNIFY_SECRET_KEY", "MS_TEST")
	t.Setenv("MONNIFY_CONTRACT_CODE", "1234567890")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Gateways.PaystackSecretKey != "sk_test_abc" {
		t.Fatalf("PaystackSecretKey mismatch: got %q", cfg.Gateways.PaystackSecretKey)
	}
	if cfg.Gateways.MonnifyContractCode != "1234567890" {
		t.Fatalf("MonnifyContractCode mismatch: got %q", cfg.Gateways.MonnifyContractCode)
	}
}
