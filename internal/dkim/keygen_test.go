package dkim

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGenerateKey(t *testing.T) {
	kp, err := GenerateKey("trinexa.ai", "mail")
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	if kp.PrivateKey.N.BitLen() < 2048 {
		t.Errorf("key size = %d bits, want >= 2048", kp.PrivateKey.N.BitLen())
	}
	if got, want := kp.DNSName(), "mail._domainkey.trinexa.ai"; got != want {
		t.Errorf("DNSName() = %q, want %q", got, want)
	}
	if record := kp.DNSRecord(); !strings.HasPrefix(record, "v=DKIM1; k=rsa; p=") {
		t.Errorf("DNSRecord() = %q", record)
	}
}

func TestSaveAndLoadPrivateKey(t *testing.T) {
	kp, err := GenerateKey("trinexa.ai", "mail")
	if err != nil {
		t.Fatal(err)
	}

	keyPath := filepath.Join(t.TempDir(), "keys", "dkim.key")
	if err := kp.SavePrivateKey(keyPath); err != nil {
		t.Fatalf("SavePrivateKey: %v", err)
	}

	info, err := os.Stat(keyPath)
	if err != nil {
		t.Fatalf("key file not created: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("permissions = %o, want 0600", info.Mode().Perm())
	}

	loaded, err := loadPrivateKey(keyPath)
	if err != nil {
		t.Fatalf("loadPrivateKey: %v", err)
	}
	if loaded.N.Cmp(kp.PrivateKey.N) != 0 {
		t.Error("loaded key does not match generated key")
	}
}

func TestLoadPrivateKey_InvalidPEM(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "bad.pem")
	if err := os.WriteFile(bad, []byte("not a pem"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := loadPrivateKey(bad); err == nil {
		t.Error("expected error for invalid PEM")
	}
}
