package domain

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestSession_NeverSerializesTokenHash(t *testing.T) {
	session := Session{
		ID:        "sess-123",
		UserID:    "user-123",
		TokenHash: "$2a$10$refresh-token-hash",
		IPAddress: "192.168.1.1",
		Device:    "Mozilla/5.0",
	}

	data, err := json.Marshal(session)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if strings.Contains(string(data), "hash") {
		t.Errorf("serialized session leaks the token hash: %s", data)
	}
}

func TestTokenClaims_RefreshTokenOmittedWhenEmpty(t *testing.T) {
	claims := TokenClaims{
		UserID:    "user-123",
		Email:     "jane@x.com",
		Username:  "jdoe",
		SessionID: "sess-123",
	}

	data, err := json.Marshal(claims)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if strings.Contains(string(data), "refresh_token") {
		t.Errorf("empty refresh token should be omitted: %s", data)
	}
}
