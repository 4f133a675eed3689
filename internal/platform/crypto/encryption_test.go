package crypto

import (
	"bytes"
	"errors"
	"testing"
)

const testKey = "00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff"

func TestSealOpenRoundTripWithKey(t *testing.T) {
	svc, err := New(testKey)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if !svc.Configured() {
		t.Fatal("expected service to be configured")
	}

	sealed, err := svc.SealString("Comunica de forma clara")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if bytes.Contains(sealed, []byte("Comunica")) {
		t.Fatal("expected sealed value not to contain plaintext")
	}

	plain, err := svc.OpenString(sealed)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if plain != "Comunica de forma clara" {
		t.Fatalf("unexpected plaintext %q", plain)
	}
}

func TestPlainValuesReadableAfterKeyConfigured(t *testing.T) {
	plainSvc, err := New("")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	stored, err := plainSvc.SealString("sem chave")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}

	keyed, err := New(testKey)
	if err != nil {
		t.Fatalf("new keyed: %v", err)
	}
	got, err := keyed.OpenString(stored)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if got != "sem chave" {
		t.Fatalf("unexpected value %q", got)
	}
}

func TestOpenSealedWithoutKeyFails(t *testing.T) {
	keyed, _ := New(testKey)
	sealed, err := keyed.SealString("segredo")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}

	plainSvc, _ := New("")
	if _, err := plainSvc.OpenString(sealed); !errors.Is(err, ErrKeyRequired) {
		t.Fatalf("expected ErrKeyRequired, got %v", err)
	}
}

func TestEmptyValues(t *testing.T) {
	svc, _ := New(testKey)
	sealed, err := svc.SealString("")
	if err != nil || sealed != nil {
		t.Fatalf("expected nil for empty value, got %v %v", sealed, err)
	}
	plain, err := svc.OpenString(nil)
	if err != nil || plain != "" {
		t.Fatalf("expected empty string, got %q %v", plain, err)
	}
}

func TestNewRejectsShortKey(t *testing.T) {
	if _, err := New("short"); err == nil {
		t.Fatal("expected error for short key")
	}
}

func TestOpenUnknownFormat(t *testing.T) {
	svc, _ := New("")
	if _, err := svc.OpenString([]byte{0x7f, 'x'}); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}
