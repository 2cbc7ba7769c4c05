package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/Heallshoking/ai-service-platform/config"
)

func newTestManager(ttl time.Duration) *Manager {
	return NewManager(&config.AuthConfig{
		JWTSecret:        "test-secret-key-at-least-16-chars",
		TerminalTokenTTL: ttl,
	})
}

func TestManager_GenerateAndParse(t *testing.T) {
	mgr := newTestManager(time.Hour)

	token, err := mgr.GenerateTerminalToken("master-001")
	if err != nil {
		t.Fatalf("签发 Token 应成功: %v", err)
	}

	claims, err := mgr.ParseToken(token)
	if err != nil {
		t.Fatalf("解析 Token 应成功: %v", err)
	}
	if claims.MasterID != "master-001" {
		t.Errorf("期望 MasterID=master-001，实际=%s", claims.MasterID)
	}
	if claims.ID == "" {
		t.Error("JWT ID 不应为空")
	}
}

func TestManager_ParseExpired(t *testing.T) {
	mgr := newTestManager(-time.Minute)

	token, err := mgr.GenerateTerminalToken("master-001")
	if err != nil {
		t.Fatalf("签发 Token 应成功: %v", err)
	}

	_, err = mgr.ParseToken(token)
	if !errors.Is(err, ErrTokenExpired) {
		t.Errorf("期望 ErrTokenExpired，实际: %v", err)
	}
}

func TestManager_ParseInvalid(t *testing.T) {
	mgr := newTestManager(time.Hour)

	_, err := mgr.ParseToken("not-a-token")
	if !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("期望 ErrTokenInvalid，实际: %v", err)
	}

	// 其他密钥签发的 Token 也应无效
	other := NewManager(&config.AuthConfig{
		JWTSecret:        "another-secret-key-16-chars-plus",
		TerminalTokenTTL: time.Hour,
	})
	token, _ := other.GenerateTerminalToken("master-001")
	if _, err := mgr.ParseToken(token); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("期望 ErrTokenInvalid，实际: %v", err)
	}
}
