package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"faculty-portal/internal/dto"
	"faculty-portal/internal/model"
)

// buildWorkbook 生成内存中的导入文件，第一行为表头
func buildWorkbook(t *testing.T, rows ...[]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("写入第 %d 行失败: %v", i+1, err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("生成 Excel 失败: %v", err)
	}
	return buf
}

// ── ParseImportFile ──

func TestStudentService_ParseImportFile(t *testing.T) {
	svc := NewStudentService(newMockRepos().repo, zap.NewNop())

	// 列序打乱，中英文表头混用
	buf := buildWorkbook(t,
		[]interface{}{"邮箱", "学号", "姓名", "department_code", "年级"},
		[]interface{}{"a@faculty.edu", "S001", "张三", "CS", "2"},
		[]interface{}{"", "", "", "", ""},
		[]interface{}{"b@faculty.edu", "S002", "李四", "MATH", "x"},
	)

	rows, err := svc.ParseImportFile(buf)
	if err != nil {
		t.Fatalf("ParseImportFile 应成功: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("期望 2 行（跳过空行），实际: %d", len(rows))
	}
	if rows[0].StudentNumber != "S001" || rows[0].Email != "a@faculty.edu" || rows[0].DepartmentCode != "CS" || rows[0].YearOfStudy != 2 {
		t.Errorf("第一行解析不符: %+v", rows[0])
	}
	if rows[0].Row != 2 {
		t.Errorf("行号应从表头后的第 2 行开始，实际: %d", rows[0].Row)
	}
	if rows[1].Row != 4 || rows[1].YearOfStudy != 0 {
		t.Errorf("第二行解析不符: %+v", rows[1])
	}
}

func TestStudentService_ParseImportFile_Errors(t *testing.T) {
	svc := NewStudentService(newMockRepos().repo, zap.NewNop())

	tests := []struct {
		name string
		buf  *bytes.Buffer
		want error
	}{
		{"非 Excel", bytes.NewBufferString("not a workbook"), ErrImportUnreadable},
		{"只有表头", buildWorkbook(t, []interface{}{"学号", "姓名", "邮箱", "系代码"}), ErrImportNoData},
		{"缺少列", buildWorkbook(t, []interface{}{"学号", "姓名"}, []interface{}{"S001", "张三"}), ErrImportBadHeader},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.ParseImportFile(tt.buf); !errors.Is(err, tt.want) {
				t.Errorf("期望 %v，实际: %v", tt.want, err)
			}
		})
	}
}

func TestStudentService_ParseImportFile_TooManyRows(t *testing.T) {
	svc := NewStudentService(newMockRepos().repo, zap.NewNop())

	rows := [][]interface{}{{"学号", "姓名", "邮箱", "系代码"}}
	for i := 0; i <= maxImportRows; i++ {
		rows = append(rows, []interface{}{fmt.Sprintf("S%05d", i), "学生", fmt.Sprintf("s%d@faculty.edu", i), "CS"})
	}
	if _, err := svc.ParseImportFile(buildWorkbook(t, rows...)); !errors.Is(err, ErrImportTooManyRows) {
		t.Errorf("期望 ErrImportTooManyRows，实际: %v", err)
	}
}

// ── Import ──

func TestStudentService_Import(t *testing.T) {
	m := newMockRepos()
	seedDepartment(m, "dept-cs", "CS")
	m.students.put(&model.Student{StudentID: "stu-old", StudentNumber: "S000", Name: "老生", Email: "old@faculty.edu", DepartmentID: "dept-cs"})
	svc := NewStudentService(m.repo, zap.NewNop())

	rows := []ImportStudentRow{
		{Row: 2, StudentNumber: "S001", Name: "张三", Email: "a@faculty.edu", DepartmentCode: "CS"},
		{Row: 3, StudentNumber: "S002", Name: "李四", Email: "b@faculty.edu", DepartmentCode: "CS", YearOfStudy: 3},
		{Row: 4, StudentNumber: "S000", Name: "重复", Email: "c@faculty.edu", DepartmentCode: "CS"},
		{Row: 5, StudentNumber: "S001", Name: "文件内重复", Email: "d@faculty.edu", DepartmentCode: "CS"},
		{Row: 6, StudentNumber: "S003", Name: "王五", Email: "not-an-email", DepartmentCode: "CS"},
		{Row: 7, StudentNumber: "S004", Name: "赵六", Email: "e@faculty.edu", DepartmentCode: "BIO"},
		{Row: 8, StudentNumber: "", Name: "无学号", Email: "f@faculty.edu", DepartmentCode: "CS"},
	}

	resp, err := svc.Import(context.Background(), rows, adminCaller)
	if err != nil {
		t.Fatalf("Import 应成功: %v", err)
	}
	if resp.Total != 7 || resp.Success != 2 || resp.Failed != 5 {
		t.Errorf("期望 total=7 success=2 failed=5，实际: %+v", resp)
	}

	failedRows := make(map[int]string)
	for _, e := range resp.Errors {
		failedRows[e.Row] = e.Reason
	}
	for _, row := range []int{4, 5, 6, 7, 8} {
		if _, ok := failedRows[row]; !ok {
			t.Errorf("第 %d 行应失败", row)
		}
	}
	if !strings.Contains(failedRows[7], "BIO") {
		t.Errorf("失败原因应包含系代码，实际: %s", failedRows[7])
	}

	if m.students.count() != 3 {
		t.Errorf("期望共 3 名学生，实际: %d", m.students.count())
	}
	for _, st := range m.students.all() {
		switch st.StudentNumber {
		case "S001":
			if st.YearOfStudy != 1 || st.Status != "active" || st.DepartmentID != "dept-cs" {
				t.Errorf("默认年级 / 状态不符: %+v", st)
			}
		case "S002":
			if st.YearOfStudy != 3 {
				t.Errorf("期望年级 3，实际: %d", st.YearOfStudy)
			}
		}
	}
}

// ── CRUD ──

func TestStudentService_CreateDuplicateNumber(t *testing.T) {
	m := newMockRepos()
	seedDepartment(m, "dept-cs", "CS")
	m.students.put(&model.Student{StudentID: "stu-1", StudentNumber: "S001", Name: "张三", Email: "a@faculty.edu", DepartmentID: "dept-cs"})
	svc := NewStudentService(m.repo, zap.NewNop())

	_, err := svc.Create(context.Background(), &dto.CreateStudentRequest{
		StudentNumber: "S001", Name: "李四", Email: "b@faculty.edu", DepartmentID: "dept-cs",
	}, adminCaller)
	if !errors.Is(err, ErrStudentNumberTaken) {
		t.Errorf("期望 ErrStudentNumberTaken，实际: %v", err)
	}
}

func TestStudentService_CreateDefaults(t *testing.T) {
	m := newMockRepos()
	seedDepartment(m, "dept-cs", "CS")
	svc := NewStudentService(m.repo, zap.NewNop())

	st, err := svc.Create(context.Background(), &dto.CreateStudentRequest{
		StudentNumber: "S001", Name: "张三", Email: "a@faculty.edu", DepartmentID: "dept-cs",
	}, adminCaller)
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if st.YearOfStudy != 1 || st.Status != "active" {
		t.Errorf("期望默认年级 1、状态 active，实际: %+v", st)
	}
}

func TestStudentService_CreateUnknownUser(t *testing.T) {
	m := newMockRepos()
	seedDepartment(m, "dept-cs", "CS")
	svc := NewStudentService(m.repo, zap.NewNop())

	_, err := svc.Create(context.Background(), &dto.CreateStudentRequest{
		StudentNumber: "S001", Name: "张三", Email: "a@faculty.edu", DepartmentID: "dept-cs",
		UserID: strPtr("user-missing"),
	}, adminCaller)
	if !errors.Is(err, ErrUserRef) {
		t.Errorf("期望 ErrUserRef，实际: %v", err)
	}
}

func TestStudentService_UpdateNumberConflict(t *testing.T) {
	m := newMockRepos()
	seedDepartment(m, "dept-cs", "CS")
	m.students.put(&model.Student{StudentID: "stu-1", StudentNumber: "S001", Name: "张三", Email: "a@faculty.edu", DepartmentID: "dept-cs"})
	m.students.put(&model.Student{StudentID: "stu-2", StudentNumber: "S002", Name: "李四", Email: "b@faculty.edu", DepartmentID: "dept-cs"})
	svc := NewStudentService(m.repo, zap.NewNop())

	taken := "S002"
	if _, err := svc.Update(context.Background(), "stu-1", &dto.UpdateStudentRequest{StudentNumber: &taken}, adminCaller); !errors.Is(err, ErrStudentNumberTaken) {
		t.Errorf("期望 ErrStudentNumberTaken，实际: %v", err)
	}

	// 提交与原值相同的学号不算冲突
	same := "S001"
	gpa := 3.6
	st, err := svc.Update(context.Background(), "stu-1", &dto.UpdateStudentRequest{StudentNumber: &same, GPA: &gpa}, adminCaller)
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if st.GPA != 3.6 {
		t.Errorf("期望 GPA=3.6，实际: %v", st.GPA)
	}
}
