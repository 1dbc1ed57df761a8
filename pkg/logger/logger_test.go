package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"faculty-portal/config"
)

func TestNewLogger_InvalidLevel(t *testing.T) {
	if _, err := NewLogger(&config.LogConfig{Level: "loud", Format: "json"}); err == nil {
		t.Fatal("非法级别应返回错误")
	}
}

func TestNewLogger_JSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	log, err := NewLogger(&config.LogConfig{Level: "info", Format: "json", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("NewLogger 应成功: %v", err)
	}
	log.Debug("低于级别，不应输出")
	log.Info("请求完成", zap.Duration("latency", 1500*time.Millisecond))
	_ = log.Sync()

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("读取日志文件失败: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if len(lines) != 1 {
		t.Fatalf("期望 1 行日志，实际: %d", len(lines))
	}

	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("日志不是 JSON: %v", err)
	}
	if entry["service"] != serviceName {
		t.Errorf("期望 service=%s，实际: %v", serviceName, entry["service"])
	}
	if _, ok := entry["ts"]; !ok {
		t.Error("时间字段应为 ts")
	}
	if entry["latency"] != float64(1500) {
		t.Errorf("耗时应以毫秒输出，实际: %v", entry["latency"])
	}
}

func TestNewLogger_DebugDisablesSampling(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	log, err := NewLogger(&config.LogConfig{Level: "debug", Format: "json", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("NewLogger 应成功: %v", err)
	}
	// 生产预设每秒同一消息只保留前 100 条
	for i := 0; i < 150; i++ {
		log.Debug("重复消息")
	}
	_ = log.Sync()

	raw, _ := os.ReadFile(path)
	if n := strings.Count(string(raw), "重复消息"); n != 150 {
		t.Errorf("debug 级别不应采样，期望 150 条，实际: %d", n)
	}
}
