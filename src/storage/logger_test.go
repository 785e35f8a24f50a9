package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestLogger(t *testing.T) (*Logger, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.log")
	logger, err := NewLogger(path, "1024")
	if err != nil {
		t.Fatal(err)
	}
	return logger, path
}

func TestLoggerWritesToFile(t *testing.T) {
	logger, path := newTestLogger(t)
	defer logger.Close()

	logger.Info("流水线启动")
	logger.Error("出错了")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	if !strings.Contains(content, "INFO: 流水线启动") {
		t.Errorf("日志缺少INFO记录: %q", content)
	}
	if !strings.Contains(content, "ERROR: 出错了") {
		t.Errorf("日志缺少ERROR记录: %q", content)
	}
}

func TestLoggerSubscribe(t *testing.T) {
	logger, _ := newTestLogger(t)
	defer logger.Close()

	ch := logger.Subscribe()
	logger.Info("广播消息")

	select {
	case msg := <-ch:
		if !strings.Contains(msg, "广播消息") {
			t.Errorf("订阅消息内容错误: %q", msg)
		}
	case <-time.After(time.Second):
		t.Error("订阅者未收到消息")
	}
}

func TestLoggerSubscribeFullChannelDoesNotBlock(t *testing.T) {
	logger, _ := newTestLogger(t)
	defer logger.Close()

	logger.Subscribe() // 从不消费

	done := make(chan struct{})
	go func() {
		for i := 0; i < 200; i++ {
			logger.Info("msg")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Error("订阅通道满时写日志不应阻塞")
	}
}

func TestLogLevelString(t *testing.T) {
	cases := map[LogLevel]string{
		DEBUG:        "DEBUG",
		INFO:         "INFO",
		WARNING:      "WARNING",
		ERROR:        "ERROR",
		FATAL:        "FATAL",
		LogLevel(99): "UNKNOWN",
	}
	for level, want := range cases {
		if got := level.String(); got != want {
			t.Errorf("LogLevel(%d).String() = %q, want %q", level, got, want)
		}
	}
}

func TestEval(t *testing.T) {
	if got := eval("10 * 1024 * 1024"); got != 10*1024*1024 {
		t.Errorf("eval = %d", got)
	}
	if got := eval("2048"); got != 2048 {
		t.Errorf("eval = %d", got)
	}
	if got := eval(""); got != 0 {
		t.Errorf("eval(空) = %d", got)
	}
}
