// handler.go 邮件附件落盘：把日报附件保存到数据目录
package email

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// CSVAttachmentHandler 把邮件中的CSV/XLSX附件保存到数据目录
// 同一封邮件(按UID)只处理一次
type CSVAttachmentHandler struct {
	dataDir       string
	mu            sync.Mutex
	processedUIDs map[uint32]bool
}

// NewCSVAttachmentHandler 创建附件处理器
func NewCSVAttachmentHandler(dataDir string) *CSVAttachmentHandler {
	return &CSVAttachmentHandler{
		dataDir:       dataDir,
		processedUIDs: make(map[uint32]bool),
	}
}

// Handle 保存邮件中所有数据附件，返回保存的文件路径
func (h *CSVAttachmentHandler) Handle(email *Email) ([]string, error) {
	if email == nil {
		return nil, fmt.Errorf("邮件为空")
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	// UID去重，避免定时任务重复落盘
	if h.processedUIDs[email.UID] {
		return nil, nil
	}

	if err := os.MkdirAll(h.dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("创建数据目录失败: %w", err)
	}

	var saved []string
	for _, att := range email.Attachments {
		if !isDataFile(att.Filename) {
			continue
		}

		path := filepath.Join(h.dataDir, sanitizeFilename(att.Filename))
		if err := os.WriteFile(path, att.Content, 0o644); err != nil {
			return saved, fmt.Errorf("保存附件 %s 失败: %w", att.Filename, err)
		}
		saved = append(saved, path)
	}

	if len(saved) == 0 {
		return nil, fmt.Errorf("邮件 %q 没有数据附件", email.Subject)
	}

	h.processedUIDs[email.UID] = true
	return saved, nil
}

// isDataFile 判断附件是否为可加载的数据文件
func isDataFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext == ".csv" || ext == ".xlsx"
}

// sanitizeFilename 去除附件名中的路径成分，防止路径穿越
func sanitizeFilename(filename string) string {
	name := filepath.Base(filename)
	name = strings.ReplaceAll(name, "..", "")
	if name == "" || name == "." {
		name = "attachment.csv"
	}
	return name
}
