package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func testCodec(t *testing.T) *Codec {
	t.Helper()
	c, err := NewCodec(CodecConfig{
		Secret:   "secret",
		Issuer:   "incident-portal",
		Audience: "portal-api",
		TokenTTL: 15 * time.Minute,
		Leeway:   30 * time.Second,
	})
	if err != nil {
		t.Fatalf("codec: %v", err)
	}
	return c
}

func int64p(v int64) *int64 { return &v }

func memberClaims() Claims {
	return Claims{
		SubjectID:   42,
		TenantID:    int64p(5),
		Role:        "responder",
		Permissions: []string{"incidents:read", "incidents:write"},
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	c := testCodec(t)
	now := time.Unix(1700000000, 0).UTC()

	token, expiresAt, err := c.Encode(now, memberClaims())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if want := now.Add(15 * time.Minute); !expiresAt.Equal(want) {
		t.Fatalf("expires_at = %s, want %s", expiresAt, want)
	}

	got, err := c.Decode(token, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.SubjectID != 42 || got.TenantID == nil || *got.TenantID != 5 {
		t.Fatalf("unexpected identity claims: %+v", got)
	}
	if got.SuperAdmin {
		t.Fatalf("member token must not carry super_admin")
	}
	if got.Role != "responder" || len(got.Permissions) != 2 {
		t.Fatalf("unexpected authz claims: %+v", got)
	}
}

func TestEncodeRejectsInvariantViolations(t *testing.T) {
	c := testCodec(t)
	now := time.Now()

	cases := map[string]Claims{
		"no subject":            {TenantID: int64p(5), Role: "responder"},
		"no role":               {SubjectID: 1, TenantID: int64p(5)},
		"tenant and superadmin": {SubjectID: 1, TenantID: int64p(5), SuperAdmin: true, Role: "super_admin"},
		"neither":               {SubjectID: 1, Role: "responder"},
	}
	for name, claims := range cases {
		if _, _, err := c.Encode(now, claims); !errors.Is(err, ErrClaimsInvariant) {
			t.Fatalf("%s: expected ErrClaimsInvariant, got %v", name, err)
		}
	}
}

func TestDecodeExpiredToken(t *testing.T) {
	c := testCodec(t)
	now := time.Unix(1700000000, 0).UTC()

	token, _, err := c.Encode(now, memberClaims())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	// Within leeway the token still verifies.
	if _, err := c.Decode(token, now.Add(15*time.Minute+10*time.Second)); err != nil {
		t.Fatalf("within leeway: %v", err)
	}

	_, err = c.Decode(token, now.Add(16*time.Minute))
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestDecodeTamperedSignature(t *testing.T) {
	c := testCodec(t)
	now := time.Unix(1700000000, 0).UTC()

	token, _, err := c.Encode(now, memberClaims())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	// Flip a character in the signature segment.
	parts := strings.Split(token, ".")
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = c.Decode(tampered, now)
	if !errors.Is(err, ErrTokenSignatureInvalid) {
		t.Fatalf("expected ErrTokenSignatureInvalid, got %v", err)
	}
}

func TestDecodeWrongSecret(t *testing.T) {
	c := testCodec(t)
	other, err := NewCodec(CodecConfig{Secret: "other-secret", Issuer: "incident-portal", Audience: "portal-api"})
	if err != nil {
		t.Fatalf("codec: %v", err)
	}

	now := time.Unix(1700000000, 0).UTC()
	token, _, err := c.Encode(now, memberClaims())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	if _, err := other.Decode(token, now); !errors.Is(err, ErrTokenSignatureInvalid) {
		t.Fatalf("expected ErrTokenSignatureInvalid, got %v", err)
	}
}

func TestDecodeGarbage(t *testing.T) {
	c := testCodec(t)
	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := c.Decode(raw, time.Now()); !errors.Is(err, ErrTokenMalformed) {
			t.Fatalf("%q: expected ErrTokenMalformed, got %v", raw, err)
		}
	}
}

func TestNewCodecCapsLeeway(t *testing.T) {
	c, err := NewCodec(CodecConfig{Secret: "s", Leeway: 5 * time.Minute})
	if err != nil {
		t.Fatalf("codec: %v", err)
	}
	if c.leeway != time.Minute {
		t.Fatalf("leeway = %s, want 1m cap", c.leeway)
	}
	if _, err := NewCodec(CodecConfig{}); err == nil {
		t.Fatalf("expected error for missing secret")
	}
}
