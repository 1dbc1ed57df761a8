//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"faculty-portal/internal/model"
	"faculty-portal/internal/repository"
	"faculty-portal/pkg/apperrors"
	"faculty-portal/pkg/database"
	"faculty-portal/pkg/query"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=postgres password=postgres dbname=faculty_portal_test sslmode=disable TimeZone=UTC"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	// 使用正式迁移文件建表，保证约束与生产一致
	sqlDB, err := testDB.DB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "获取 sql.DB 失败: %v\n", err)
		os.Exit(1)
	}
	if err := database.RunMigrations(sqlDB, zap.NewNop()); err != nil {
		fmt.Fprintf(os.Stderr, "数据库迁移失败: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	os.Exit(code)
}

func uniq(prefix string) string {
	return fmt.Sprintf("%s%d", prefix, time.Now().UnixNano()%1_000_000_000)
}

type fixture struct {
	faculty *model.Faculty
	dept    *model.Department
	student *model.Student
	users   []*model.User
	members []*model.CommitteeMember
}

// setupFixture 学院 → 系 → 学生 + 两名评审委员，返回清理函数
func setupFixture(t *testing.T) (*fixture, func()) {
	t.Helper()
	ctx := context.Background()
	f := &fixture{}

	f.faculty = &model.Faculty{Name: "测试学院", Code: uniq("F")}
	if err := testDB.WithContext(ctx).Create(f.faculty).Error; err != nil {
		t.Fatalf("创建学院失败: %v", err)
	}

	f.dept = &model.Department{Name: "测试系", Code: uniq("D"), FacultyID: f.faculty.FacultyID, IsActive: true}
	if err := testDB.WithContext(ctx).Create(f.dept).Error; err != nil {
		t.Fatalf("创建系失败: %v", err)
	}

	f.student = &model.Student{
		StudentNumber: uniq("S"),
		Name:          "测试学生",
		Email:         uniq("stu") + "@faculty.edu",
		DepartmentID:  f.dept.DepartmentID,
		YearOfStudy:   2,
		Status:        "active",
	}
	if err := testDB.WithContext(ctx).Create(f.student).Error; err != nil {
		t.Fatalf("创建学生失败: %v", err)
	}

	for i := 0; i < 2; i++ {
		u := &model.User{
			Name:         fmt.Sprintf("委员%d", i),
			Email:        uniq(fmt.Sprintf("cm%d-", i)) + "@faculty.edu",
			PasswordHash: "$2a$10$placeholder",
			Role:         model.RoleCommittee,
			IsActive:     true,
		}
		if err := testDB.WithContext(ctx).Create(u).Error; err != nil {
			t.Fatalf("创建用户失败: %v", err)
		}
		m := &model.CommitteeMember{UserID: u.UserID, DepartmentID: f.dept.DepartmentID, Position: "member"}
		if err := testDB.WithContext(ctx).Create(m).Error; err != nil {
			t.Fatalf("创建委员失败: %v", err)
		}
		f.users = append(f.users, u)
		f.members = append(f.members, m)
	}

	cleanup := func() {
		testDB.Where("department_id = ?", f.dept.DepartmentID).Delete(&model.Research{})
		testDB.Where("department_id = ?", f.dept.DepartmentID).Delete(&model.CommitteeMember{})
		for _, u := range f.users {
			testDB.Where("recipient_id = ?", u.UserID).Delete(&model.Notification{})
			testDB.Where("user_id = ?", u.UserID).Delete(&model.User{})
		}
		testDB.Where("student_id = ?", f.student.StudentID).Delete(&model.Student{})
		testDB.Where("department_id = ?", f.dept.DepartmentID).Delete(&model.Department{})
		testDB.Where("faculty_id = ?", f.faculty.FacultyID).Delete(&model.Faculty{})
	}
	return f, cleanup
}

func newResearch(f *fixture, title string) *model.Research {
	return &model.Research{
		Title:        title,
		Abstract:     "摘要",
		Status:       model.ResearchPending,
		Authors:      model.StringArray{"测试学生"},
		StudentID:    f.student.StudentID,
		SubmittedBy:  f.users[0].UserID,
		DepartmentID: f.dept.DepartmentID,
	}
}

// ═══════════════════════════════════════════════════════════
// Test: 列表查询
// ═══════════════════════════════════════════════════════════

func TestList_FilterAndCount(t *testing.T) {
	f, cleanup := setupFixture(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	q, err := query.Parse(url.Values{"code": {f.dept.Code}}, repository.DepartmentList.Schema)
	if err != nil {
		t.Fatalf("Parse 应成功: %v", err)
	}
	items, total, err := repo.Department.List(ctx, q)
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].DepartmentID != f.dept.DepartmentID {
		t.Errorf("期望精确命中 1 条，实际: total=%d items=%d", total, len(items))
	}
}

func TestList_UnknownFieldMatchesNothing(t *testing.T) {
	_, cleanup := setupFixture(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	q, err := query.Parse(url.Values{"no_such_field": {"x"}}, repository.DepartmentList.Schema)
	if err != nil {
		t.Fatalf("Parse 应成功: %v", err)
	}
	items, total, err := repo.Department.List(context.Background(), q)
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if total != 0 || len(items) != 0 {
		t.Errorf("未知字段应返回空结果，实际: total=%d", total)
	}
}

func TestList_PopulateRelations(t *testing.T) {
	f, cleanup := setupFixture(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	q, err := query.Parse(url.Values{"code": {f.dept.Code}, "populate": {"true"}}, repository.DepartmentList.Schema)
	if err != nil {
		t.Fatalf("Parse 应成功: %v", err)
	}
	items, _, err := repo.Department.List(context.Background(), q)
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if len(items) != 1 || items[0].Faculty == nil || items[0].Faculty.FacultyID != f.faculty.FacultyID {
		t.Errorf("populate=true 应加载所属学院")
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Transaction Rollback
// ═══════════════════════════════════════════════════════════

func TestTransaction_Rollback(t *testing.T) {
	f, cleanup := setupFixture(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	code := uniq("TX")

	errAbort := errors.New("abort")
	err := repo.Transaction(ctx, func(tx *repository.Repository) error {
		d := &model.Department{Name: "事务内的系", Code: code, FacultyID: f.faculty.FacultyID, IsActive: true}
		if err := tx.Department.Create(ctx, d); err != nil {
			return err
		}
		return errAbort
	})
	if !errors.Is(err, errAbort) {
		t.Fatalf("期望返回 errAbort，实际: %v", err)
	}

	var count int64
	testDB.Model(&model.Department{}).Where("code = ?", code).Count(&count)
	if count != 0 {
		t.Errorf("事务回滚后不应存在记录，实际: %d", count)
	}
}

func TestDepartment_ForeignKeyViolation(t *testing.T) {
	repo := repository.NewRepository(testDB)
	err := repo.Department.Create(context.Background(), &model.Department{
		Name: "孤儿系", Code: uniq("X"), FacultyID: "00000000-0000-0000-0000-000000000000", IsActive: true,
	})
	if err == nil {
		t.Fatal("引用不存在的学院应失败")
	}
	if appErr := apperrors.Translate(err, nil); appErr.Kind != apperrors.KindBadRequest {
		t.Errorf("外键错误应翻译为 400，实际: %v", appErr.Kind)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: 评审分配与乐观锁
// ═══════════════════════════════════════════════════════════

func TestCommittee_CountPending(t *testing.T) {
	f, cleanup := setupFixture(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	r1 := newResearch(f, "研究一")
	r2 := newResearch(f, "研究二")
	for _, r := range []*model.Research{r1, r2} {
		if err := repo.Research.Create(ctx, r); err != nil {
			t.Fatalf("创建研究失败: %v", err)
		}
		if err := repo.Research.AssignReviewer(ctx, r.ResearchID, f.members[0].CommitteeMemberID); err != nil {
			t.Fatalf("AssignReviewer 应成功: %v", err)
		}
	}

	ids := []string{f.members[0].CommitteeMemberID, f.members[1].CommitteeMemberID}
	counts, err := repo.Committee.CountPending(ctx, ids)
	if err != nil {
		t.Fatalf("CountPending 应成功: %v", err)
	}
	if counts[f.members[0].CommitteeMemberID] != 2 {
		t.Errorf("期望委员 0 有 2 条待审，实际: %d", counts[f.members[0].CommitteeMemberID])
	}
	if counts[f.members[1].CommitteeMemberID] != 0 {
		t.Errorf("期望委员 1 无待审，实际: %d", counts[f.members[1].CommitteeMemberID])
	}

	members, err := repo.Committee.ListByDepartment(ctx, f.dept.DepartmentID)
	if err != nil {
		t.Fatalf("ListByDepartment 应成功: %v", err)
	}
	if len(members) != 2 || members[0].CommitteeMemberID > members[1].CommitteeMemberID {
		t.Errorf("委员应按 committee_member_id 升序返回")
	}
}

func TestResearch_ReviewOptimisticLock(t *testing.T) {
	f, cleanup := setupFixture(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	r := newResearch(f, "乐观锁")
	if err := repo.Research.Create(ctx, r); err != nil {
		t.Fatalf("创建研究失败: %v", err)
	}

	stale, err := repo.Research.GetByID(ctx, r.ResearchID)
	if err != nil {
		t.Fatalf("GetByID 应成功: %v", err)
	}
	fresh, _ := repo.Research.GetByID(ctx, r.ResearchID)

	now := time.Now()
	fresh.Status = model.ResearchAccepted
	fresh.ReviewDate = &now
	if err := repo.Research.Review(ctx, fresh); err != nil {
		t.Fatalf("首次评审应成功: %v", err)
	}

	stale.Status = model.ResearchRejected
	stale.ReviewDate = &now
	if err := repo.Research.Review(ctx, stale); !errors.Is(err, apperrors.ErrOptimisticLock) {
		t.Errorf("期望 ErrOptimisticLock，实际: %v", err)
	}

	got, _ := repo.Research.GetByID(ctx, r.ResearchID)
	if got.Status != model.ResearchAccepted {
		t.Errorf("期望保持 accepted，实际: %s", got.Status)
	}
	if err := repo.Research.AssignReviewer(ctx, r.ResearchID, f.members[1].CommitteeMemberID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("终态研究不可再分配评审人，实际: %v", err)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: 通知
// ═══════════════════════════════════════════════════════════

func TestNotification_ReadAndPurge(t *testing.T) {
	f, cleanup := setupFixture(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)
	owner := f.users[0].UserID

	list := []model.Notification{
		{RecipientID: owner, Type: model.NotifySystem, Priority: "medium", Title: "a", Message: "a", ExpiresAt: now.Add(time.Hour)},
		{RecipientID: owner, Type: model.NotifySystem, Priority: "medium", Title: "b", Message: "b", ExpiresAt: now.Add(time.Hour)},
		{RecipientID: owner, Type: model.NotifySystem, Priority: "low", Title: "old", Message: "old", ExpiresAt: now.Add(-time.Hour)},
	}
	if err := repo.Notification.CreateBatch(ctx, list); err != nil {
		t.Fatalf("CreateBatch 应成功: %v", err)
	}

	unread, err := repo.Notification.CountUnread(ctx, owner, now)
	if err != nil {
		t.Fatalf("CountUnread 应成功: %v", err)
	}
	if unread != 2 {
		t.Errorf("期望 2 条未读（过期的不计），实际: %d", unread)
	}

	if err := repo.Notification.MarkRead(ctx, list[0].NotificationID, f.users[1].UserID, now); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("非本人标记已读应返回 ErrRecordNotFound，实际: %v", err)
	}
	if err := repo.Notification.MarkRead(ctx, list[0].NotificationID, owner, now); err != nil {
		t.Fatalf("MarkRead 应成功: %v", err)
	}

	n, err := repo.Notification.DeleteExpired(ctx, now)
	if err != nil {
		t.Fatalf("DeleteExpired 应成功: %v", err)
	}
	if n < 1 {
		t.Errorf("期望至少清理 1 条，实际: %d", n)
	}

	unread, _ = repo.Notification.CountUnread(ctx, owner, now)
	if unread != 1 {
		t.Errorf("期望剩余 1 条未读，实际: %d", unread)
	}
}
