package email

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func sampleEmail(uid uint32) *Email {
	return &Email{
		UID:     uid,
		Date:    time.Now(),
		From:    "ops@example.com",
		Subject: "废弃物日报",
		Attachments: []*Attachment{
			{Filename: "Gdata.csv", Content: []byte("a,b\n1,2\n")},
			{Filename: "readme.txt", Content: []byte("ignore me")},
		},
	}
}

func TestHandlerSavesDataAttachments(t *testing.T) {
	dir := t.TempDir()
	h := NewCSVAttachmentHandler(dir)

	saved, err := h.Handle(sampleEmail(1))
	if err != nil {
		t.Fatal(err)
	}
	if len(saved) != 1 {
		t.Fatalf("saved = %v, 只应保存CSV附件", saved)
	}

	data, err := os.ReadFile(filepath.Join(dir, "Gdata.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "a,b\n1,2\n" {
		t.Errorf("附件内容 = %q", data)
	}
}

func TestHandlerDeduplicatesByUID(t *testing.T) {
	h := NewCSVAttachmentHandler(t.TempDir())

	if _, err := h.Handle(sampleEmail(7)); err != nil {
		t.Fatal(err)
	}
	saved, err := h.Handle(sampleEmail(7))
	if err != nil {
		t.Fatal(err)
	}
	if saved != nil {
		t.Errorf("同一UID重复处理应跳过, saved = %v", saved)
	}
}

func TestHandlerRejectsNilAndEmptyEmails(t *testing.T) {
	h := NewCSVAttachmentHandler(t.TempDir())

	if _, err := h.Handle(nil); err == nil {
		t.Error("空邮件应当报错")
	}

	noData := &Email{UID: 2, Subject: "废弃物日报", Attachments: []*Attachment{
		{Filename: "note.txt", Content: []byte("x")},
	}}
	if _, err := h.Handle(noData); err == nil {
		t.Error("没有数据附件应当报错")
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"Gdata.csv":          "Gdata.csv",
		"../../etc/Serv.csv": "Serv.csv",
		"":                   "attachment.csv",
	}
	for in, want := range cases {
		if got := sanitizeFilename(in); got != want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFilterLatestTargetEmail(t *testing.T) {
	old := &Email{UID: 1, Subject: "废弃物日报 0101", Date: time.Now().Add(-2 * time.Hour)}
	latest := &Email{UID: 2, Subject: "废弃物日报 0102", Date: time.Now()}
	other := &Email{UID: 3, Subject: "会议通知", Date: time.Now()}

	got := filterLatestTargetEmail([]*Email{old, other, latest}, "废弃物日报")
	if got == nil || got.UID != 2 {
		t.Errorf("filterLatestTargetEmail = %+v, want UID 2", got)
	}

	if got := filterLatestTargetEmail([]*Email{other}, "废弃物日报"); got != nil {
		t.Errorf("没有目标邮件时应返回nil, got %+v", got)
	}
}
