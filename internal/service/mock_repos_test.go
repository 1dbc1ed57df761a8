package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"faculty-portal/config"
	"faculty-portal/internal/model"
	"faculty-portal/internal/repository"
	"faculty-portal/pkg/apperrors"
	"faculty-portal/pkg/query"
	"faculty-portal/pkg/rbac"
)

// ── 通用 map 存储（实现 repository.CRUD[T]） ──

type mockStore[T any] struct {
	items     map[string]*T
	order     []string
	key       func(*T) *string
	prefix    string
	seq       int
	lastQuery *query.ListQuery
}

func newMockStore[T any](prefix string, key func(*T) *string) *mockStore[T] {
	return &mockStore[T]{items: make(map[string]*T), key: key, prefix: prefix}
}

// put 直接写入测试数据
func (m *mockStore[T]) put(e *T) *T {
	id := m.key(e)
	if *id == "" {
		m.seq++
		*id = fmt.Sprintf("%s-%03d", m.prefix, m.seq)
	}
	if _, ok := m.items[*id]; !ok {
		m.order = append(m.order, *id)
	}
	cp := *e
	m.items[*id] = &cp
	return e
}

func (m *mockStore[T]) Create(_ context.Context, e *T) error {
	if id := *m.key(e); id != "" {
		if _, ok := m.items[id]; ok {
			return gorm.ErrDuplicatedKey
		}
	}
	m.put(e)
	return nil
}

func (m *mockStore[T]) GetByID(_ context.Context, id string) (*T, error) {
	e, ok := m.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *mockStore[T]) Update(_ context.Context, e *T) error {
	id := *m.key(e)
	if _, ok := m.items[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *e
	m.items[id] = &cp
	return nil
}

func (m *mockStore[T]) Delete(_ context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.items, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// List 忽略过滤条件，只记录收到的查询供断言
func (m *mockStore[T]) List(_ context.Context, q *query.ListQuery) ([]T, int64, error) {
	m.lastQuery = q
	out := m.all()
	return out, int64(len(out)), nil
}

func (m *mockStore[T]) all() []T {
	out := make([]T, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, *m.items[id])
	}
	return out
}

func (m *mockStore[T]) count() int { return len(m.items) }

// ── Mock UserRepository ──

type mockUserRepo struct {
	*mockStore[model.User]
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{newMockStore("user", func(u *model.User) *string { return &u.UserID })}
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.items {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByResetToken(_ context.Context, tokenHash string, now time.Time) (*model.User, error) {
	for _, u := range m.items {
		if u.PasswordResetToken != nil && *u.PasswordResetToken == tokenHash &&
			u.PasswordResetExpiry != nil && u.PasswordResetExpiry.After(now) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) ListByRole(_ context.Context, role string) ([]model.User, error) {
	var out []model.User
	for _, u := range m.all() {
		if u.Role == role && u.IsActive {
			out = append(out, u)
		}
	}
	return out, nil
}

// ── Mock FacultyRepository / DepartmentRepository ──

type mockFacultyRepo struct {
	*mockStore[model.Faculty]
	depts *mockDeptRepo
}

func (m *mockFacultyRepo) CountDepartments(_ context.Context, facultyID string) (int64, error) {
	var n int64
	for _, d := range m.depts.items {
		if d.FacultyID == facultyID {
			n++
		}
	}
	return n, nil
}

type mockDeptRepo struct {
	*mockStore[model.Department]
	courses *mockStore[model.Course]
}

func (m *mockDeptRepo) CountCourses(_ context.Context, departmentID string) (int64, error) {
	var n int64
	for _, c := range m.courses.items {
		if c.DepartmentID == departmentID {
			n++
		}
	}
	return n, nil
}

func (m *mockDeptRepo) ListByCodes(_ context.Context, codes []string) ([]model.Department, error) {
	want := make(map[string]bool, len(codes))
	for _, c := range codes {
		want[c] = true
	}
	var out []model.Department
	for _, d := range m.all() {
		if want[d.Code] {
			out = append(out, d)
		}
	}
	return out, nil
}

// ── Mock OfferingRepository / EnrollmentRepository ──

type mockOfferingRepo struct {
	*mockStore[model.CourseOffering]
}

func (m *mockOfferingRepo) FindSlot(_ context.Context, courseID, teacherID, semester string, year int) (*model.CourseOffering, error) {
	for _, o := range m.items {
		if o.CourseID == courseID && o.TeacherID == teacherID && o.Semester == semester && o.Year == year {
			cp := *o
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type mockEnrollmentRepo struct {
	*mockStore[model.Enrollment]
	students *mockStudentRepo
}

func (m *mockEnrollmentRepo) CountActive(_ context.Context, offeringID string) (int64, error) {
	var n int64
	for _, e := range m.items {
		if e.OfferingID == offeringID && e.Status == model.EnrollmentEnrolled {
			n++
		}
	}
	return n, nil
}

func (m *mockEnrollmentRepo) Find(_ context.Context, studentID, offeringID string) (*model.Enrollment, error) {
	for _, e := range m.items {
		if e.StudentID == studentID && e.OfferingID == offeringID {
			cp := *e
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// GetByID 模拟关联加载学生档案
func (m *mockEnrollmentRepo) GetByID(ctx context.Context, id string) (*model.Enrollment, error) {
	e, err := m.mockStore.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if st, ok := m.students.items[e.StudentID]; ok {
		cp := *st
		e.Student = &cp
	}
	return e, nil
}

func (m *mockEnrollmentRepo) Roster(_ context.Context, offeringID string) ([]model.Enrollment, error) {
	var out []model.Enrollment
	for _, e := range m.all() {
		if e.OfferingID != offeringID || e.Status == model.EnrollmentDropped {
			continue
		}
		if st, ok := m.students.items[e.StudentID]; ok {
			cp := *st
			e.Student = &cp
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Student.StudentNumber < out[j].Student.StudentNumber
	})
	return out, nil
}

// ── Mock StudentRepository ──

type mockStudentRepo struct {
	*mockStore[model.Student]
}

func (m *mockStudentRepo) GetByUserID(_ context.Context, userID string) (*model.Student, error) {
	for _, s := range m.items {
		if s.UserID != nil && *s.UserID == userID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) ExistingNumbers(_ context.Context, numbers []string) (map[string]bool, error) {
	out := make(map[string]bool)
	for _, n := range numbers {
		for _, s := range m.items {
			if s.StudentNumber == n {
				out[n] = true
			}
		}
	}
	return out, nil
}

func (m *mockStudentRepo) CreateBatch(ctx context.Context, students []model.Student) error {
	for i := range students {
		if err := m.Create(ctx, &students[i]); err != nil {
			return err
		}
	}
	return nil
}

// ── Mock CommitteeRepository ──

type mockCommitteeRepo struct {
	*mockStore[model.CommitteeMember]
	users    *mockUserRepo
	research *mockResearchRepo
}

func (m *mockCommitteeRepo) GetByUserID(_ context.Context, userID string) (*model.CommitteeMember, error) {
	for _, c := range m.items {
		if c.UserID == userID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCommitteeRepo) ListByDepartment(_ context.Context, departmentID string) ([]model.CommitteeMember, error) {
	var out []model.CommitteeMember
	for _, c := range m.all() {
		if c.DepartmentID != departmentID {
			continue
		}
		if u, ok := m.users.items[c.UserID]; ok {
			cp := *u
			c.User = &cp
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CommitteeMemberID < out[j].CommitteeMemberID })
	return out, nil
}

func (m *mockCommitteeRepo) CountPending(_ context.Context, memberIDs []string) (map[string]int64, error) {
	want := make(map[string]bool, len(memberIDs))
	for _, id := range memberIDs {
		want[id] = true
	}
	out := make(map[string]int64)
	for _, r := range m.research.items {
		if r.Status == model.ResearchPending && r.ReviewerID != nil && want[*r.ReviewerID] {
			out[*r.ReviewerID]++
		}
	}
	return out, nil
}

// ── Mock ResearchRepository ──

type mockResearchRepo struct {
	*mockStore[model.Research]
	// beforeContentWrite 在 UpdateContent 比对前执行，用于模拟读写之间的并发修改
	beforeContentWrite func()
}

func (m *mockResearchRepo) AssignReviewer(_ context.Context, researchID, reviewerID string) error {
	r, ok := m.items[researchID]
	if !ok || r.Status != model.ResearchPending {
		return gorm.ErrRecordNotFound
	}
	id := reviewerID
	r.ReviewerID = &id
	r.Version++
	return nil
}

func (m *mockResearchRepo) Review(_ context.Context, research *model.Research) error {
	r, ok := m.items[research.ResearchID]
	if !ok || r.Status != model.ResearchPending || r.Version != research.Version {
		return apperrors.ErrOptimisticLock
	}
	r.Status = research.Status
	r.ReviewerComments = research.ReviewerComments
	r.ReviewDate = research.ReviewDate
	r.UpdatedBy = research.UpdatedBy
	r.Version++
	research.Version++
	return nil
}

func (m *mockResearchRepo) UpdateContent(_ context.Context, research *model.Research) error {
	if m.beforeContentWrite != nil {
		m.beforeContentWrite()
	}
	r, ok := m.items[research.ResearchID]
	if !ok || r.Status != model.ResearchPending || r.Version != research.Version {
		return apperrors.ErrOptimisticLock
	}
	r.Title = research.Title
	r.Abstract = research.Abstract
	r.Category = research.Category
	r.Authors = research.Authors
	r.UpdatedBy = research.UpdatedBy
	r.Version++
	research.Version++
	return nil
}

// ── Mock EventRepository ──

type mockEventRepo struct {
	*mockStore[model.Event]
}

func (m *mockEventRepo) ListBetween(_ context.Context, from, to time.Time) ([]model.Event, error) {
	var out []model.Event
	for _, e := range m.all() {
		if e.StartAt.Before(to) && e.EndAt.After(from) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartAt.Before(out[j].StartAt) })
	return out, nil
}

// ── Mock NotificationRepository ──

type mockNotificationRepo struct {
	*mockStore[model.Notification]
	failBatch error
}

func (m *mockNotificationRepo) CreateBatch(ctx context.Context, list []model.Notification) error {
	if m.failBatch != nil {
		return m.failBatch
	}
	for i := range list {
		if err := m.Create(ctx, &list[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockNotificationRepo) MarkRead(_ context.Context, id, recipientID string, at time.Time) error {
	n, ok := m.items[id]
	if !ok || n.RecipientID != recipientID {
		return gorm.ErrRecordNotFound
	}
	if n.ReadAt == nil {
		n.ReadAt = &at
	}
	n.IsRead = true
	return nil
}

func (m *mockNotificationRepo) MarkAllRead(_ context.Context, recipientID string, at time.Time) (int64, error) {
	var updated int64
	for _, n := range m.items {
		if n.RecipientID == recipientID && !n.IsRead {
			n.IsRead = true
			n.ReadAt = &at
			updated++
		}
	}
	return updated, nil
}

func (m *mockNotificationRepo) CountUnread(_ context.Context, recipientID string, now time.Time) (int64, error) {
	var count int64
	for _, n := range m.items {
		if n.RecipientID == recipientID && !n.IsRead && n.ExpiresAt.After(now) {
			count++
		}
	}
	return count, nil
}

func (m *mockNotificationRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	var expired []string
	for id, n := range m.items {
		if !n.ExpiresAt.After(now) {
			expired = append(expired, id)
		}
	}
	for _, id := range expired {
		_ = m.Delete(ctx, id)
	}
	return int64(len(expired)), nil
}

// ── Mock TokenRevoker ──

type mockRevoker struct {
	blacklist map[string]time.Duration
}

func newMockRevoker() *mockRevoker {
	return &mockRevoker{blacklist: make(map[string]time.Duration)}
}

func (m *mockRevoker) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	m.blacklist[jti] = ttl
	return nil
}

func (m *mockRevoker) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	_, ok := m.blacklist[jti]
	return ok, nil
}

// ── 聚合 ──

type mockRepos struct {
	users         *mockUserRepo
	faculties     *mockFacultyRepo
	departments   *mockDeptRepo
	courses       *mockStore[model.Course]
	teachers      *mockStore[model.Teacher]
	students      *mockStudentRepo
	offerings     *mockOfferingRepo
	enrollments   *mockEnrollmentRepo
	committee     *mockCommitteeRepo
	research      *mockResearchRepo
	announcements *mockStore[model.Announcement]
	news          *mockStore[model.News]
	events        *mockEventRepo
	resources     *mockStore[model.Resource]
	notifications *mockNotificationRepo
	feedback      *mockStore[model.Feedback]

	repo *repository.Repository
}

func newMockRepos() *mockRepos {
	m := &mockRepos{}
	m.users = newMockUserRepo()
	m.courses = newMockStore("course", func(c *model.Course) *string { return &c.CourseID })
	m.departments = &mockDeptRepo{
		mockStore: newMockStore("dept", func(d *model.Department) *string { return &d.DepartmentID }),
		courses:   m.courses,
	}
	m.faculties = &mockFacultyRepo{
		mockStore: newMockStore("fac", func(f *model.Faculty) *string { return &f.FacultyID }),
		depts:     m.departments,
	}
	m.teachers = newMockStore("teacher", func(t *model.Teacher) *string { return &t.TeacherID })
	m.students = &mockStudentRepo{newMockStore("stu", func(s *model.Student) *string { return &s.StudentID })}
	m.offerings = &mockOfferingRepo{newMockStore("off", func(o *model.CourseOffering) *string { return &o.OfferingID })}
	m.enrollments = &mockEnrollmentRepo{
		mockStore: newMockStore("enr", func(e *model.Enrollment) *string { return &e.EnrollmentID }),
		students:  m.students,
	}
	m.research = &mockResearchRepo{mockStore: newMockStore("res", func(r *model.Research) *string { return &r.ResearchID })}
	m.committee = &mockCommitteeRepo{
		mockStore: newMockStore("cm", func(c *model.CommitteeMember) *string { return &c.CommitteeMemberID }),
		users:     m.users,
		research:  m.research,
	}
	m.announcements = newMockStore("ann", func(a *model.Announcement) *string { return &a.AnnouncementID })
	m.news = newMockStore("news", func(n *model.News) *string { return &n.NewsID })
	m.events = &mockEventRepo{newMockStore("evt", func(e *model.Event) *string { return &e.EventID })}
	m.resources = newMockStore("rsc", func(r *model.Resource) *string { return &r.ResourceID })
	m.notifications = &mockNotificationRepo{mockStore: newMockStore("ntf", func(n *model.Notification) *string { return &n.NotificationID })}
	m.feedback = newMockStore("fb", func(f *model.Feedback) *string { return &f.FeedbackID })

	m.repo = &repository.Repository{
		User:         m.users,
		Faculty:      m.faculties,
		Department:   m.departments,
		Course:       m.courses,
		Teacher:      m.teachers,
		Student:      m.students,
		Offering:     m.offerings,
		Enrollment:   m.enrollments,
		Committee:    m.committee,
		Research:     m.research,
		Announcement: m.announcements,
		News:         m.news,
		Event:        m.events,
		Resource:     m.resources,
		Notification: m.notifications,
		Feedback:     m.feedback,
	}
	return m
}

// notificationsFor 某用户收到的通知
func (m *mockRepos) notificationsFor(userID string) []model.Notification {
	var out []model.Notification
	for _, n := range m.notifications.all() {
		if n.RecipientID == userID {
			out = append(out, n)
		}
	}
	return out
}

// ── 通用测试夹具 ──

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{BaseURL: "https://portal.example.edu"},
		Auth: config.AuthConfig{
			JWTSecret:               "test-secret-key-for-unit-tests",
			AccessTokenTTL:          15 * time.Minute,
			RefreshTokenTTLDefault:  24 * time.Hour,
			RefreshTokenTTLRemember: 7 * 24 * time.Hour,
			PasswordResetTTL:        10 * time.Minute,
		},
		Mail:         config.MailConfig{ResetURL: "https://portal.example.edu/reset"},
		Notification: config.NotificationConfig{TTL: 24 * time.Hour},
		RBAC:         config.RBACConfig{Roles: config.DefaultRoles()},
	}
}

func testPolicy() *rbac.Policy {
	return rbac.NewPolicy(config.DefaultRoles())
}

func testNotifier(m *mockRepos) *notifier {
	return newNotifier(m.repo, time.Hour, zap.NewNop())
}

var (
	adminCaller   = Caller{UserID: "user-admin", Role: model.RoleAdmin}
	facultyCaller = Caller{UserID: "user-faculty", Role: model.RoleFaculty}
)

// seedDepartment 创建学院与系
func seedDepartment(m *mockRepos, id, code string) *model.Department {
	if _, ok := m.faculties.items["fac-sci"]; !ok {
		m.faculties.put(&model.Faculty{FacultyID: "fac-sci", Name: "理学院", Code: "SCI"})
	}
	return m.departments.put(&model.Department{DepartmentID: id, Name: code + " 系", Code: code, FacultyID: "fac-sci", IsActive: true})
}

func seedUser(m *mockRepos, id, email, role string) *model.User {
	return m.users.put(&model.User{UserID: id, Name: id, Email: email, Role: role, IsActive: true})
}

func newListQuery() *query.ListQuery {
	return &query.ListQuery{Page: 1, Limit: 20}
}

// hasFilter 查询中是否包含 field = value 的等值条件
func hasFilter(q *query.ListQuery, field string, value interface{}) bool {
	if q == nil {
		return false
	}
	for _, c := range q.Filters {
		if c.Field == field && c.Op == query.OpEq && c.Value == value {
			return true
		}
	}
	return false
}
