package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"faculty-portal/internal/dto"
	"faculty-portal/internal/model"
	"faculty-portal/internal/repository"
	"faculty-portal/pkg/apperrors"
	"faculty-portal/pkg/query"
)

// ── 选课模块业务错误 ──

var (
	ErrEnrollmentNotFound = apperrors.New(apperrors.KindNotFound, 20511, "选课记录不存在")
	ErrAlreadyEnrolled    = apperrors.New(apperrors.KindConflict, 20512, "已选修该开课")
	ErrOfferingFull       = apperrors.New(apperrors.KindConflict, 20513, "开课人数已满")
	ErrStudentRequired    = apperrors.New(apperrors.KindBadRequest, 20514, "student_id 不能为空")
	ErrEnrollmentNotOwner = apperrors.New(apperrors.KindForbidden, 20515, "只能操作本人的选课记录")
	ErrStudentOnlyDrop    = apperrors.New(apperrors.KindForbidden, 20516, "学生只能退选，不能修改成绩")
	ErrRosterGenerateFail = apperrors.New(apperrors.KindInternal, 20517, "生成名单文件失败")
)

// EnrollmentService 选课业务接口
type EnrollmentService interface {
	List(ctx context.Context, q *query.ListQuery, caller Caller) ([]model.Enrollment, int64, error)
	GetByID(ctx context.Context, id string, caller Caller) (*model.Enrollment, error)
	Create(ctx context.Context, req *dto.CreateEnrollmentRequest, caller Caller) (*model.Enrollment, error)
	Update(ctx context.Context, id string, req *dto.UpdateEnrollmentRequest, caller Caller) (*model.Enrollment, error)
	Delete(ctx context.Context, id string) error
	// ExportRoster 导出开课名单为 Excel；返回内容与建议文件名
	ExportRoster(ctx context.Context, offeringID string) (*bytes.Buffer, string, error)
}

type enrollmentService struct {
	repo   *repository.Repository
	notify *notifier
	logger *zap.Logger
}

// NewEnrollmentService 创建 EnrollmentService 实例
func NewEnrollmentService(repo *repository.Repository, notify *notifier, logger *zap.Logger) EnrollmentService {
	return &enrollmentService{repo: repo, notify: notify, logger: logger}
}

// ────────────────────── List / Get ──────────────────────

// List 学生只能看到本人的选课
func (s *enrollmentService) List(ctx context.Context, q *query.ListQuery, caller Caller) ([]model.Enrollment, int64, error) {
	if caller.Role == model.RoleStudent {
		student, err := s.callerStudent(ctx, caller)
		if err != nil {
			return nil, 0, err
		}
		q.Filters = append(q.Filters, query.Condition{Field: "student_id", Op: query.OpEq, Value: student.StudentID})
	}
	return s.repo.Enrollment.List(ctx, q)
}

func (s *enrollmentService) GetByID(ctx context.Context, id string, caller Caller) (*model.Enrollment, error) {
	e, err := fetch(ctx, s.repo.Enrollment, id, ErrEnrollmentNotFound)
	if err != nil {
		return nil, err
	}
	if caller.Role == model.RoleStudent {
		if err := s.ensureOwn(ctx, e, caller); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// ────────────────────── Create ──────────────────────

// Create 选课：学生为本人选课；管理员需指定 student_id
// 此前退选过的记录重新激活，而不是新建一条
func (s *enrollmentService) Create(ctx context.Context, req *dto.CreateEnrollmentRequest, caller Caller) (*model.Enrollment, error) {
	var studentID string
	if caller.Role == model.RoleStudent {
		student, err := s.callerStudent(ctx, caller)
		if err != nil {
			return nil, err
		}
		studentID = student.StudentID
	} else {
		if req.StudentID == "" {
			return nil, ErrStudentRequired
		}
		if err := ensureRef(ctx, s.repo.Student, req.StudentID, ErrStudentRef); err != nil {
			return nil, err
		}
		studentID = req.StudentID
	}

	offering, err := fetch(ctx, s.repo.Offering, req.OfferingID, ErrOfferingRef)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.Enrollment.Find(ctx, studentID, req.OfferingID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil && existing.Status != model.EnrollmentDropped {
		return nil, ErrAlreadyEnrolled
	}

	if err := s.checkCapacity(ctx, offering); err != nil {
		return nil, err
	}

	var enrollmentID string
	if existing != nil {
		existing.Status = model.EnrollmentEnrolled
		existing.Grade = nil
		existing.Stamp(caller.UserID)
		if err := s.repo.Enrollment.Update(ctx, existing); err != nil {
			s.logger.Error("恢复选课失败", zap.String("id", existing.EnrollmentID), zap.Error(err))
			return nil, err
		}
		enrollmentID = existing.EnrollmentID
	} else {
		e := &model.Enrollment{
			StudentID:  studentID,
			OfferingID: req.OfferingID,
			Status:     model.EnrollmentEnrolled,
		}
		e.Stamp(caller.UserID)
		if err := s.repo.Enrollment.Create(ctx, e); err != nil {
			s.logger.Error("创建选课失败", zap.Error(err))
			return nil, err
		}
		enrollmentID = e.EnrollmentID
	}

	result, err := s.repo.Enrollment.GetByID(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}

	// 管理员代选课时通知学生本人
	if caller.Role != model.RoleStudent && result.Student != nil && result.Student.UserID != nil {
		s.notify.toUsers(ctx, []string{*result.Student.UserID}, notice{
			Type:        model.NotifyEnrollment,
			Title:       "选课通知",
			Message:     "您已被加入课程 " + courseLabel(result.Offering),
			SenderID:    caller.UserID,
			RelatedType: "enrollment",
			RelatedID:   result.EnrollmentID,
		})
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *enrollmentService) Update(ctx context.Context, id string, req *dto.UpdateEnrollmentRequest, caller Caller) (*model.Enrollment, error) {
	e, err := fetch(ctx, s.repo.Enrollment, id, ErrEnrollmentNotFound)
	if err != nil {
		return nil, err
	}

	if caller.Role == model.RoleStudent {
		if err := s.ensureOwn(ctx, e, caller); err != nil {
			return nil, err
		}
		if req.Grade != nil || (req.Status != nil && *req.Status != model.EnrollmentDropped) {
			return nil, ErrStudentOnlyDrop
		}
	}

	if req.Status != nil && *req.Status != e.Status {
		if *req.Status == model.EnrollmentEnrolled {
			offering, err := fetch(ctx, s.repo.Offering, e.OfferingID, ErrOfferingRef)
			if err != nil {
				return nil, err
			}
			if err := s.checkCapacity(ctx, offering); err != nil {
				return nil, err
			}
		}
		e.Status = *req.Status
	}
	if req.Grade != nil {
		e.Grade = req.Grade
	}
	e.Stamp(caller.UserID)

	if err := s.repo.Enrollment.Update(ctx, e); err != nil {
		s.logger.Error("更新选课失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return s.repo.Enrollment.GetByID(ctx, id)
}

func (s *enrollmentService) Delete(ctx context.Context, id string) error {
	return remove(ctx, s.repo.Enrollment, id, ErrEnrollmentNotFound)
}

// ────────────────────── ExportRoster ──────────────────────

// ExportRoster 输出格式：标题行（课程 + 学期），表头 学号/姓名/邮箱/状态/成绩，按学号排序
func (s *enrollmentService) ExportRoster(ctx context.Context, offeringID string) (*bytes.Buffer, string, error) {
	offering, err := fetch(ctx, s.repo.Offering, offeringID, ErrOfferingNotFound)
	if err != nil {
		return nil, "", err
	}

	list, err := s.repo.Enrollment.Roster(ctx, offeringID)
	if err != nil {
		s.logger.Error("查询开课名单失败", zap.String("offering_id", offeringID), zap.Error(err))
		return nil, "", err
	}

	label := courseLabel(offering)
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "名单"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 16)
	f.SetColWidth(sheetName, "B", "B", 20)
	f.SetColWidth(sheetName, "C", "C", 30)
	f.SetColWidth(sheetName, "D", "E", 12)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s — %s %d", label, offering.Semester, offering.Year))
	f.MergeCell(sheetName, "A1", "E1")
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	headers := []string{"学号", "姓名", "邮箱", "状态", "成绩"}
	for i, h := range headers {
		cellName, _ := excelize.CoordinatesToCellName(i+1, 2)
		f.SetCellValue(sheetName, cellName, h)
	}
	f.SetCellStyle(sheetName, "A2", "E2", headerStyle)

	// 数据行
	for i, e := range list {
		row := i + 3
		grade := ""
		if e.Grade != nil {
			grade = *e.Grade
		}
		values := []interface{}{"", "", "", e.Status, grade}
		if e.Student != nil {
			values[0] = e.Student.StudentNumber
			values[1] = e.Student.Name
			values[2] = e.Student.Email
		}
		cellName, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(sheetName, cellName, &values); err != nil {
			s.logger.Error("写入名单行失败", zap.Int("row", row), zap.Error(err))
			return nil, "", ErrRosterGenerateFail
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrRosterGenerateFail
	}

	filename := fmt.Sprintf("roster_%s_%s_%d.xlsx", sanitizeFilename(label), offering.Semester, offering.Year)
	return buf, filename, nil
}

// ── 内部辅助方法 ──

func (s *enrollmentService) callerStudent(ctx context.Context, caller Caller) (*model.Student, error) {
	student, err := s.repo.Student.GetByUserID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentProfileMissing
		}
		return nil, err
	}
	return student, nil
}

func (s *enrollmentService) ensureOwn(ctx context.Context, e *model.Enrollment, caller Caller) error {
	student, err := s.callerStudent(ctx, caller)
	if err != nil {
		return err
	}
	if student.StudentID != e.StudentID {
		return ErrEnrollmentNotOwner
	}
	return nil
}

// checkCapacity capacity 为 0 表示不限人数
func (s *enrollmentService) checkCapacity(ctx context.Context, o *model.CourseOffering) error {
	if o.Capacity <= 0 {
		return nil
	}
	n, err := s.repo.Enrollment.CountActive(ctx, o.OfferingID)
	if err != nil {
		return err
	}
	if n >= int64(o.Capacity) {
		return ErrOfferingFull
	}
	return nil
}

func courseLabel(o *model.CourseOffering) string {
	if o == nil {
		return ""
	}
	if o.Course != nil {
		return o.Course.Code + " " + o.Course.Title
	}
	return o.CourseID
}

func sanitizeFilename(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch r {
		case ' ', '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			out = append(out, '_')
		default:
			out = append(out, r)
		}
	}
	return string(out)
}
