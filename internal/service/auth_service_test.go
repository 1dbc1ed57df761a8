package service

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"faculty-portal/internal/dto"
	"faculty-portal/internal/model"
	"faculty-portal/pkg/jwt"
	"faculty-portal/pkg/mailer"
)

// ── 测试辅助 ──

type authFixture struct {
	svc     *authService
	m       *mockRepos
	jwt     *jwt.Manager
	revoker *mockRevoker
	sender  *recordingSender
	mail    *mailer.Dispatcher
}

func setupAuth() *authFixture {
	m := newMockRepos()
	seedDepartment(m, "dept-cs", "CS")
	cfg := testConfig()
	jwtMgr := jwt.NewManager(&cfg.Auth)
	revoker := newMockRevoker()
	sender := &recordingSender{}
	dispatcher := mailer.NewDispatcher(sender, zap.NewNop())

	svc := NewAuthService(cfg, m.repo, jwtMgr, revoker, dispatcher, testPolicy(), zap.NewNop()).(*authService)
	return &authFixture{svc: svc, m: m, jwt: jwtMgr, revoker: revoker, sender: sender, mail: dispatcher}
}

func createTestUser(m *mockRepos, id, email, password, role string) *model.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return m.users.put(&model.User{
		UserID:       id,
		Name:         "测试用户",
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
	})
}

var resetTokenPattern = regexp.MustCompile(`token=([0-9a-f]{64})`)

// ── Login 测试 ──

func TestAuthService_Login_Success(t *testing.T) {
	f := setupAuth()
	createTestUser(f.m, "user-1", "zhang@example.edu", "password123", model.RoleFaculty)

	resp, err := f.svc.Login(context.Background(), &dto.LoginRequest{Email: "Zhang@Example.edu", Password: "password123"})
	if err != nil {
		t.Fatalf("Login 应成功: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("期望返回 Token 对")
	}
	if resp.ExpiresIn != int((15 * time.Minute).Seconds()) {
		t.Errorf("期望 expires_in=900，实际=%d", resp.ExpiresIn)
	}
	if len(resp.User.Permissions) == 0 {
		t.Error("期望返回角色权限")
	}

	claims, err := f.jwt.ParseToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("AccessToken 应可解析: %v", err)
	}
	if claims.UserID != "user-1" || claims.Role != model.RoleFaculty {
		t.Errorf("Claims 不符: %+v", claims)
	}

	stored, _ := f.m.users.GetByID(context.Background(), "user-1")
	if stored.LastLoginAt == nil {
		t.Error("登录后应记录 last_login_at")
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	f := setupAuth()
	createTestUser(f.m, "user-1", "zhang@example.edu", "password123", model.RoleFaculty)

	_, err := f.svc.Login(context.Background(), &dto.LoginRequest{Email: "zhang@example.edu", Password: "wrong"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际: %v", err)
	}
}

func TestAuthService_Login_UnknownEmailSameError(t *testing.T) {
	f := setupAuth()

	_, err := f.svc.Login(context.Background(), &dto.LoginRequest{Email: "nobody@example.edu", Password: "x"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("未知邮箱应与密码错误返回相同错误，实际: %v", err)
	}
}

func TestAuthService_Login_Disabled(t *testing.T) {
	f := setupAuth()
	u := createTestUser(f.m, "user-1", "zhang@example.edu", "password123", model.RoleFaculty)
	u.IsActive = false
	f.m.users.put(u)

	_, err := f.svc.Login(context.Background(), &dto.LoginRequest{Email: "zhang@example.edu", Password: "password123"})
	if !errors.Is(err, ErrAccountDisabled) {
		t.Errorf("期望 ErrAccountDisabled，实际: %v", err)
	}
}

// ── Register 测试 ──

func TestAuthService_Register_CreatesUserAndStudent(t *testing.T) {
	f := setupAuth()
	req := &dto.RegisterRequest{
		Name: "新同学", Email: "new@example.edu", Password: "password123",
		StudentNumber: "2026001", DepartmentID: "dept-cs",
	}

	resp, err := f.svc.Register(context.Background(), req)
	if err != nil {
		t.Fatalf("Register 应成功: %v", err)
	}
	if resp.User.Role != model.RoleStudent {
		t.Errorf("自助注册角色应为 student，实际=%s", resp.User.Role)
	}
	st, err := f.m.students.GetByUserID(context.Background(), resp.User.ID)
	if err != nil {
		t.Fatalf("应同时创建学生档案: %v", err)
	}
	if st.YearOfStudy != 1 {
		t.Errorf("缺省年级应为 1，实际=%d", st.YearOfStudy)
	}

	_, err = f.svc.Register(context.Background(), req)
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("重复邮箱期望 ErrEmailTaken，实际: %v", err)
	}
}

func TestAuthService_Register_DepartmentMissing(t *testing.T) {
	f := setupAuth()

	_, err := f.svc.Register(context.Background(), &dto.RegisterRequest{
		Name: "新同学", Email: "new@example.edu", Password: "password123",
		StudentNumber: "2026001", DepartmentID: "dept-none",
	})
	if !errors.Is(err, ErrDepartmentRef) {
		t.Errorf("期望 ErrDepartmentRef，实际: %v", err)
	}
}

// ── Refresh / Logout 测试 ──

func TestAuthService_Refresh_RotatesToken(t *testing.T) {
	f := setupAuth()
	createTestUser(f.m, "user-1", "zhang@example.edu", "password123", model.RoleFaculty)
	login, _ := f.svc.Login(context.Background(), &dto.LoginRequest{Email: "zhang@example.edu", Password: "password123"})

	if _, err := f.svc.Refresh(context.Background(), login.RefreshToken); err != nil {
		t.Fatalf("Refresh 应成功: %v", err)
	}
	_, err := f.svc.Refresh(context.Background(), login.RefreshToken)
	if !errors.Is(err, ErrRefreshInvalid) {
		t.Errorf("已使用的 refresh token 期望 ErrRefreshInvalid，实际: %v", err)
	}
}

func TestAuthService_Refresh_RejectsAccessToken(t *testing.T) {
	f := setupAuth()
	createTestUser(f.m, "user-1", "zhang@example.edu", "password123", model.RoleFaculty)
	login, _ := f.svc.Login(context.Background(), &dto.LoginRequest{Email: "zhang@example.edu", Password: "password123"})

	_, err := f.svc.Refresh(context.Background(), login.AccessToken)
	if !errors.Is(err, ErrRefreshInvalid) {
		t.Errorf("access token 不能用于刷新，实际: %v", err)
	}
}

func TestAuthService_Logout_RevokesBoth(t *testing.T) {
	f := setupAuth()
	createTestUser(f.m, "user-1", "zhang@example.edu", "password123", model.RoleFaculty)
	login, _ := f.svc.Login(context.Background(), &dto.LoginRequest{Email: "zhang@example.edu", Password: "password123"})
	access, _ := f.jwt.ParseToken(login.AccessToken)
	refresh, _ := f.jwt.ParseToken(login.RefreshToken)

	if err := f.svc.Logout(context.Background(), access, login.RefreshToken); err != nil {
		t.Fatalf("Logout 应成功: %v", err)
	}
	for _, jti := range []string{access.ID, refresh.ID} {
		if ok, _ := f.revoker.IsBlacklisted(context.Background(), jti); !ok {
			t.Errorf("jti %s 应被加入黑名单", jti)
		}
	}
}

// ── Me / ChangePassword 测试 ──

func TestAuthService_Me_IncludesProfileAndUnread(t *testing.T) {
	f := setupAuth()
	createTestUser(f.m, "user-s", "s@example.edu", "password123", model.RoleStudent)
	f.m.students.put(&model.Student{StudentID: "stu-9", UserID: strPtr("user-s"), StudentNumber: "2024009", DepartmentID: "dept-cs"})
	f.m.notifications.put(&model.Notification{RecipientID: "user-s", Title: "t", Message: "m", ExpiresAt: time.Now().Add(time.Hour)})

	resp, err := f.svc.Me(context.Background(), "user-s")
	if err != nil {
		t.Fatalf("Me 应成功: %v", err)
	}
	if resp.StudentID != "stu-9" {
		t.Errorf("期望 student_id=stu-9，实际=%s", resp.StudentID)
	}
	if resp.UnreadNotify != 1 {
		t.Errorf("期望 1 条未读，实际=%d", resp.UnreadNotify)
	}
}

func TestAuthService_ChangePassword(t *testing.T) {
	f := setupAuth()
	createTestUser(f.m, "user-1", "zhang@example.edu", "password123", model.RoleFaculty)

	_, err := f.svc.ChangePassword(context.Background(), "user-1", &dto.ChangePasswordRequest{OldPassword: "bad", NewPassword: "newpass456"})
	if !errors.Is(err, ErrWrongPassword) {
		t.Errorf("期望 ErrWrongPassword，实际: %v", err)
	}

	if _, err := f.svc.ChangePassword(context.Background(), "user-1", &dto.ChangePasswordRequest{OldPassword: "password123", NewPassword: "newpass456"}); err != nil {
		t.Fatalf("ChangePassword 应成功: %v", err)
	}
	if _, err := f.svc.Login(context.Background(), &dto.LoginRequest{Email: "zhang@example.edu", Password: "newpass456"}); err != nil {
		t.Errorf("新密码应可登录: %v", err)
	}
}

// ── Forgot / Reset 测试 ──

func TestAuthService_ForgotAndReset(t *testing.T) {
	f := setupAuth()
	createTestUser(f.m, "user-1", "zhang@example.edu", "password123", model.RoleFaculty)

	if err := f.svc.ForgotPassword(context.Background(), &dto.ForgotPasswordRequest{Email: "zhang@example.edu"}); err != nil {
		t.Fatalf("ForgotPassword 应成功: %v", err)
	}
	f.mail.Wait()
	if len(f.sender.sent) != 1 {
		t.Fatalf("期望发送 1 封重置邮件，实际 %d", len(f.sender.sent))
	}
	match := resetTokenPattern.FindStringSubmatch(f.sender.sent[0].Text)
	if match == nil {
		t.Fatalf("邮件正文应包含重置链接: %s", f.sender.sent[0].Text)
	}
	token := match[1]

	stored, _ := f.m.users.GetByID(context.Background(), "user-1")
	if stored.PasswordResetToken == nil || *stored.PasswordResetToken == token {
		t.Error("数据库应只保存令牌摘要")
	}

	if err := f.svc.ResetPassword(context.Background(), &dto.ResetPasswordRequest{Token: token, NewPassword: "resetpass789"}); err != nil {
		t.Fatalf("ResetPassword 应成功: %v", err)
	}
	if _, err := f.svc.Login(context.Background(), &dto.LoginRequest{Email: "zhang@example.edu", Password: "resetpass789"}); err != nil {
		t.Errorf("重置后的新密码应可登录: %v", err)
	}

	err := f.svc.ResetPassword(context.Background(), &dto.ResetPasswordRequest{Token: token, NewPassword: "another000"})
	if !errors.Is(err, ErrResetTokenInvalid) {
		t.Errorf("令牌只能使用一次，期望 ErrResetTokenInvalid，实际: %v", err)
	}
}

func TestAuthService_ForgotPassword_UnknownEmailSilent(t *testing.T) {
	f := setupAuth()

	if err := f.svc.ForgotPassword(context.Background(), &dto.ForgotPasswordRequest{Email: "nobody@example.edu"}); err != nil {
		t.Errorf("未知邮箱也应返回成功: %v", err)
	}
	f.mail.Wait()
	if len(f.sender.sent) != 0 {
		t.Error("未知邮箱不应发送邮件")
	}
}

func TestAuthService_ResetPassword_Expired(t *testing.T) {
	f := setupAuth()
	createTestUser(f.m, "user-1", "zhang@example.edu", "password123", model.RoleFaculty)
	_ = f.svc.ForgotPassword(context.Background(), &dto.ForgotPasswordRequest{Email: "zhang@example.edu"})
	f.mail.Wait()
	token := resetTokenPattern.FindStringSubmatch(f.sender.sent[0].Text)[1]

	f.svc.now = func() time.Time { return time.Now().Add(11 * time.Minute) }
	err := f.svc.ResetPassword(context.Background(), &dto.ResetPasswordRequest{Token: token, NewPassword: "resetpass789"})
	if !errors.Is(err, ErrResetTokenInvalid) {
		t.Errorf("过期令牌期望 ErrResetTokenInvalid，实际: %v", err)
	}
}
