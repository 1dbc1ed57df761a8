package service

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"
	"testing"

	"go.uber.org/zap"

	"faculty-portal/internal/dto"
	"faculty-portal/internal/model"
)

// ── Announcement 测试 ──

func TestAnnouncementService_Create_NotifiesAudience(t *testing.T) {
	m := newMockRepos()
	seedUser(m, "user-admin", "admin@example.edu", model.RoleAdmin)
	seedUser(m, "user-s1", "s1@example.edu", model.RoleStudent)
	seedUser(m, "user-s2", "s2@example.edu", model.RoleStudent)
	seedUser(m, "user-faculty", "f@example.edu", model.RoleFaculty)
	svc := NewAnnouncementService(m.repo, testNotifier(m), zap.NewNop())

	a, err := svc.Create(context.Background(), &dto.CreateAnnouncementRequest{
		Title: "期末考试安排", Content: "详见附件", Audience: "students", Priority: model.PriorityHigh, Notify: true,
	}, adminCaller)
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if a.Category != "general" {
		t.Errorf("缺省分类应为 general，实际=%s", a.Category)
	}
	if m.notifications.count() != 2 {
		t.Errorf("期望通知 2 名学生，实际 %d 条", m.notifications.count())
	}
	if got := m.notificationsFor("user-faculty"); len(got) != 0 {
		t.Error("受众外的用户不应收到通知")
	}
	if got := m.notificationsFor("user-s1"); len(got) == 1 && got[0].Priority != model.PriorityHigh {
		t.Errorf("通知优先级应跟随公告，实际=%s", got[0].Priority)
	}
}

func TestAnnouncementService_Create_WithoutNotify(t *testing.T) {
	m := newMockRepos()
	seedUser(m, "user-s1", "s1@example.edu", model.RoleStudent)
	svc := NewAnnouncementService(m.repo, testNotifier(m), zap.NewNop())

	if _, err := svc.Create(context.Background(), &dto.CreateAnnouncementRequest{Title: "t", Content: "c"}, adminCaller); err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if m.notifications.count() != 0 {
		t.Error("notify=false 时不应投递通知")
	}
}

func TestAnnouncementService_Update_OwnerOnly(t *testing.T) {
	m := newMockRepos()
	svc := NewAnnouncementService(m.repo, testNotifier(m), zap.NewNop())
	a, _ := svc.Create(context.Background(), &dto.CreateAnnouncementRequest{Title: "t", Content: "c"}, facultyCaller)

	title := "改标题"
	other := Caller{UserID: "user-other", Role: model.RoleFaculty}
	_, err := svc.Update(context.Background(), a.AnnouncementID, &dto.UpdateAnnouncementRequest{Title: &title}, other)
	if !errors.Is(err, ErrNotOwner) {
		t.Errorf("非作者修改期望 ErrNotOwner，实际: %v", err)
	}

	updated, err := svc.Update(context.Background(), a.AnnouncementID, &dto.UpdateAnnouncementRequest{Title: &title}, adminCaller)
	if err != nil {
		t.Fatalf("管理员修改应成功: %v", err)
	}
	if updated.Title != title {
		t.Errorf("期望 Title=%s，实际=%s", title, updated.Title)
	}
}

func TestAnnouncementService_Delete_NotFound(t *testing.T) {
	m := newMockRepos()
	svc := NewAnnouncementService(m.repo, testNotifier(m), zap.NewNop())

	err := svc.Delete(context.Background(), "ann-none", adminCaller)
	if !errors.Is(err, ErrAnnouncementNotFound) {
		t.Errorf("期望 ErrAnnouncementNotFound，实际: %v", err)
	}
}

// ── News 测试 ──

func TestNewsService_CreateGetDelete(t *testing.T) {
	m := newMockRepos()
	svc := NewNewsService(m.repo, zap.NewNop())

	n, err := svc.Create(context.Background(), &dto.CreateNewsRequest{Title: "学院获奖", Content: "正文"}, facultyCaller)
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	got, err := svc.GetByID(context.Background(), n.NewsID)
	if err != nil {
		t.Fatalf("GetByID 应成功: %v", err)
	}
	if got.AuthorID != facultyCaller.UserID {
		t.Errorf("期望作者=%s，实际=%s", facultyCaller.UserID, got.AuthorID)
	}

	err = svc.Delete(context.Background(), n.NewsID, Caller{UserID: "user-x", Role: model.RoleCommittee})
	if !errors.Is(err, ErrNotOwner) {
		t.Errorf("期望 ErrNotOwner，实际: %v", err)
	}
	if err := svc.Delete(context.Background(), n.NewsID, facultyCaller); err != nil {
		t.Fatalf("作者删除应成功: %v", err)
	}
	if _, err := svc.GetByID(context.Background(), n.NewsID); !errors.Is(err, ErrNewsNotFound) {
		t.Errorf("删除后期望 ErrNewsNotFound，实际: %v", err)
	}
}

// ── Resource 测试 ──

func TestResourceService_Create_RequiresFile(t *testing.T) {
	m := newMockRepos()
	svc := NewResourceService(m.repo, &fakeFileStore{}, zap.NewNop())

	_, err := svc.Create(context.Background(), &dto.CreateResourceRequest{Title: "讲义"}, nil, facultyCaller)
	if !errors.Is(err, ErrUploadMissing) {
		t.Errorf("期望 ErrUploadMissing，实际: %v", err)
	}
}

func TestResourceService_CreateAndDelete(t *testing.T) {
	m := newMockRepos()
	files := &fakeFileStore{}
	svc := NewResourceService(m.repo, files, zap.NewNop())
	fh := &multipart.FileHeader{Filename: "lecture-01.pdf", Size: 4096}

	res, err := svc.Create(context.Background(), &dto.CreateResourceRequest{Title: "第一讲"}, fh, facultyCaller)
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if !strings.HasPrefix(res.FileURL, "/uploads/resources/") || res.FileSize != 4096 {
		t.Errorf("文件元信息不符: url=%s size=%d", res.FileURL, res.FileSize)
	}

	if err := svc.Delete(context.Background(), res.ResourceID, facultyCaller); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}
	if len(files.removed) != 1 || files.removed[0] != res.FileURL {
		t.Errorf("删除资料时应删除文件，实际: %v", files.removed)
	}
}

func TestResourceService_Create_DepartmentMissing(t *testing.T) {
	m := newMockRepos()
	files := &fakeFileStore{}
	svc := NewResourceService(m.repo, files, zap.NewNop())
	dept := "dept-none"

	_, err := svc.Create(context.Background(), &dto.CreateResourceRequest{Title: "讲义", DepartmentID: &dept},
		&multipart.FileHeader{Filename: "a.pdf", Size: 1}, facultyCaller)
	if !errors.Is(err, ErrDepartmentRef) {
		t.Errorf("期望 ErrDepartmentRef，实际: %v", err)
	}
	if len(files.saved) != 0 {
		t.Error("引用校验失败时不应保存文件")
	}
}
