package service

import (
	"context"
	"fmt"
	"io"
	"net/mail"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"faculty-portal/internal/dto"
	"faculty-portal/internal/model"
	"faculty-portal/internal/repository"
	"faculty-portal/pkg/apperrors"
	"faculty-portal/pkg/query"
)

const maxImportRows = 1000

var (
	ErrImportUnreadable  = apperrors.New(apperrors.KindBadRequest, 20431, "无法解析 Excel 文件")
	ErrImportNoData      = apperrors.New(apperrors.KindBadRequest, 20432, "Excel 文件无数据行（第一行为表头）")
	ErrImportTooManyRows = apperrors.New(apperrors.KindBadRequest, 20433, fmt.Sprintf("数据行数超过上限 %d 行", maxImportRows))
	ErrImportBadHeader   = apperrors.New(apperrors.KindBadRequest, 20434, "Excel 表头缺少必要列（学号/姓名/邮箱/系代码）")
)

// ImportStudentRow 导入文件中的一行
type ImportStudentRow struct {
	Row            int
	StudentNumber  string
	Name           string
	Email          string
	DepartmentCode string
	YearOfStudy    int
}

// StudentService 学生业务接口
type StudentService interface {
	List(ctx context.Context, q *query.ListQuery) ([]model.Student, int64, error)
	GetByID(ctx context.Context, id string) (*model.Student, error)
	Create(ctx context.Context, req *dto.CreateStudentRequest, caller Caller) (*model.Student, error)
	Update(ctx context.Context, id string, req *dto.UpdateStudentRequest, caller Caller) (*model.Student, error)
	Delete(ctx context.Context, id string) error
	ParseImportFile(reader io.Reader) ([]ImportStudentRow, error)
	Import(ctx context.Context, rows []ImportStudentRow, caller Caller) (*dto.ImportResponse, error)
}

type studentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewStudentService 创建 StudentService 实例
func NewStudentService(repo *repository.Repository, logger *zap.Logger) StudentService {
	return &studentService{repo: repo, logger: logger}
}

func (s *studentService) List(ctx context.Context, q *query.ListQuery) ([]model.Student, int64, error) {
	return s.repo.Student.List(ctx, q)
}

func (s *studentService) GetByID(ctx context.Context, id string) (*model.Student, error) {
	return fetch(ctx, s.repo.Student, id, ErrStudentNotFound)
}

// ────────────────────── Create ──────────────────────

func (s *studentService) Create(ctx context.Context, req *dto.CreateStudentRequest, caller Caller) (*model.Student, error) {
	if err := ensureRef(ctx, s.repo.Department, req.DepartmentID, ErrDepartmentRef); err != nil {
		return nil, err
	}
	if req.UserID != nil {
		if err := ensureRef(ctx, s.repo.User, *req.UserID, ErrUserRef); err != nil {
			return nil, err
		}
	}
	if err := s.checkNumber(ctx, req.StudentNumber); err != nil {
		return nil, err
	}

	st := &model.Student{
		UserID:        req.UserID,
		StudentNumber: req.StudentNumber,
		Name:          req.Name,
		Email:         req.Email,
		DepartmentID:  req.DepartmentID,
		YearOfStudy:   req.YearOfStudy,
		Status:        req.Status,
	}
	if req.GPA != nil {
		st.GPA = *req.GPA
	}
	if st.YearOfStudy == 0 {
		st.YearOfStudy = 1
	}
	if st.Status == "" {
		st.Status = "active"
	}
	st.Stamp(caller.UserID)

	if err := s.repo.Student.Create(ctx, st); err != nil {
		s.logger.Error("创建学生失败", zap.String("student_number", req.StudentNumber), zap.Error(err))
		return nil, err
	}
	return s.GetByID(ctx, st.StudentID)
}

// ────────────────────── Update ──────────────────────

func (s *studentService) Update(ctx context.Context, id string, req *dto.UpdateStudentRequest, caller Caller) (*model.Student, error) {
	st, err := fetch(ctx, s.repo.Student, id, ErrStudentNotFound)
	if err != nil {
		return nil, err
	}

	if req.DepartmentID != nil && *req.DepartmentID != st.DepartmentID {
		if err := ensureRef(ctx, s.repo.Department, *req.DepartmentID, ErrDepartmentRef); err != nil {
			return nil, err
		}
		st.DepartmentID = *req.DepartmentID
	}
	if req.StudentNumber != nil && *req.StudentNumber != st.StudentNumber {
		if err := s.checkNumber(ctx, *req.StudentNumber); err != nil {
			return nil, err
		}
		st.StudentNumber = *req.StudentNumber
	}
	if req.Name != nil {
		st.Name = *req.Name
	}
	if req.Email != nil {
		st.Email = *req.Email
	}
	if req.YearOfStudy != nil {
		st.YearOfStudy = *req.YearOfStudy
	}
	if req.GPA != nil {
		st.GPA = *req.GPA
	}
	if req.Status != nil {
		st.Status = *req.Status
	}
	st.Stamp(caller.UserID)

	if err := s.repo.Student.Update(ctx, st); err != nil {
		s.logger.Error("更新学生失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return s.GetByID(ctx, id)
}

func (s *studentService) Delete(ctx context.Context, id string) error {
	return remove(ctx, s.repo.Student, id, ErrStudentNotFound)
}

func (s *studentService) checkNumber(ctx context.Context, number string) error {
	taken, err := s.repo.Student.ExistingNumbers(ctx, []string{number})
	if err != nil {
		return err
	}
	if taken[number] {
		return ErrStudentNumberTaken
	}
	return nil
}

// ────────────────────── ParseImportFile ──────────────────────

// ParseImportFile 解析导入 Excel 文件（第一张工作表，第一行为表头，列序不限）
func (s *studentService) ParseImportFile(reader io.Reader) ([]ImportStudentRow, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, ErrImportUnreadable.Wrap(err)
	}
	defer f.Close()

	excelRows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, ErrImportUnreadable.Wrap(err)
	}
	if len(excelRows) < 2 {
		return nil, ErrImportNoData
	}

	colIndex := parseHeaderIndex(excelRows[0])
	for _, key := range []string{"student_number", "name", "email", "department"} {
		if colIndex[key] < 0 {
			return nil, ErrImportBadHeader
		}
	}

	cellAt := func(row []string, key string) string {
		idx := colIndex[key]
		if idx < 0 || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var rows []ImportStudentRow
	for i := 1; i < len(excelRows); i++ {
		row := excelRows[i]
		item := ImportStudentRow{
			Row:            i + 1,
			StudentNumber:  cellAt(row, "student_number"),
			Name:           cellAt(row, "name"),
			Email:          cellAt(row, "email"),
			DepartmentCode: cellAt(row, "department"),
		}
		if year, err := strconv.Atoi(cellAt(row, "year")); err == nil {
			item.YearOfStudy = year
		}

		// 跳过全空行
		if item.StudentNumber == "" && item.Name == "" && item.Email == "" && item.DepartmentCode == "" {
			continue
		}
		rows = append(rows, item)
	}

	if len(rows) == 0 {
		return nil, ErrImportNoData
	}
	if len(rows) > maxImportRows {
		return nil, ErrImportTooManyRows
	}
	return rows, nil
}

// parseHeaderIndex 解析 Excel 表头，返回列名 -> 列索引映射
func parseHeaderIndex(header []string) map[string]int {
	idx := map[string]int{
		"student_number": -1,
		"name":           -1,
		"email":          -1,
		"department":     -1,
		"year":           -1,
	}
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "学号", "student_number":
			idx["student_number"] = i
		case "姓名", "name":
			idx["name"] = i
		case "邮箱", "email":
			idx["email"] = i
		case "系代码", "系", "department", "department_code":
			idx["department"] = i
		case "年级", "year", "year_of_study":
			idx["year"] = i
		}
	}
	return idx
}

// ────────────────────── Import ──────────────────────

// Import 逐行校验后批量写入；校验失败的行记入 Errors，不影响其它行
func (s *studentService) Import(ctx context.Context, rows []ImportStudentRow, caller Caller) (*dto.ImportResponse, error) {
	resp := &dto.ImportResponse{Total: len(rows)}

	// 预加载涉及的系与已存在的学号
	codes := make([]string, 0, len(rows))
	numbers := make([]string, 0, len(rows))
	for _, r := range rows {
		codes = append(codes, r.DepartmentCode)
		numbers = append(numbers, r.StudentNumber)
	}
	depts, err := s.repo.Department.ListByCodes(ctx, codes)
	if err != nil {
		s.logger.Error("加载系列表失败", zap.Error(err))
		return nil, err
	}
	deptByCode := make(map[string]string, len(depts))
	for _, d := range depts {
		deptByCode[d.Code] = d.DepartmentID
	}
	taken, err := s.repo.Student.ExistingNumbers(ctx, numbers)
	if err != nil {
		s.logger.Error("校验学号失败", zap.Error(err))
		return nil, err
	}

	fail := func(row int, reason string) {
		resp.Failed++
		resp.Errors = append(resp.Errors, dto.ImportError{Row: row, Reason: reason})
	}

	seen := make(map[string]bool, len(rows))
	batch := make([]model.Student, 0, len(rows))
	for _, r := range rows {
		if r.StudentNumber == "" || r.Name == "" || r.Email == "" || r.DepartmentCode == "" {
			fail(r.Row, "必填字段为空")
			continue
		}
		if _, err := mail.ParseAddress(r.Email); err != nil {
			fail(r.Row, "邮箱格式无效: "+r.Email)
			continue
		}
		deptID, ok := deptByCode[r.DepartmentCode]
		if !ok {
			fail(r.Row, "系不存在: "+r.DepartmentCode)
			continue
		}
		if taken[r.StudentNumber] || seen[r.StudentNumber] {
			fail(r.Row, "学号已存在: "+r.StudentNumber)
			continue
		}
		seen[r.StudentNumber] = true

		year := r.YearOfStudy
		if year <= 0 {
			year = 1
		}
		st := model.Student{
			StudentNumber: r.StudentNumber,
			Name:          r.Name,
			Email:         r.Email,
			DepartmentID:  deptID,
			YearOfStudy:   year,
			Status:        "active",
		}
		st.Stamp(caller.UserID)
		batch = append(batch, st)
	}

	if err := s.repo.Student.CreateBatch(ctx, batch); err != nil {
		s.logger.Error("批量导入学生失败", zap.Int("rows", len(batch)), zap.Error(err))
		return nil, err
	}
	resp.Success = len(batch)

	s.logger.Info("学生导入完成",
		zap.Int("total", resp.Total),
		zap.Int("success", resp.Success),
		zap.Int("failed", resp.Failed),
	)
	return resp, nil
}
