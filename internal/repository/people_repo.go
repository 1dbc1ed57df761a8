package repository

import (
	"context"

	"gorm.io/gorm"

	"faculty-portal/internal/model"
)

// ── Teacher ──

// TeacherRepository 教师数据访问接口
type TeacherRepository interface {
	CRUD[model.Teacher]
}

// NewTeacherRepo 创建 TeacherRepository 实例
func NewTeacherRepo(db *gorm.DB) TeacherRepository {
	r := newCRUD[model.Teacher](db, TeacherList)
	return &r
}

// ── Student ──

// StudentRepository 学生数据访问接口
type StudentRepository interface {
	CRUD[model.Student]
	GetByUserID(ctx context.Context, userID string) (*model.Student, error)
	// ExistingNumbers 返回已存在的学号集合（批量导入查重）
	ExistingNumbers(ctx context.Context, numbers []string) (map[string]bool, error)
	CreateBatch(ctx context.Context, students []model.Student) error
}

type studentRepo struct {
	crudRepo[model.Student]
}

// NewStudentRepo 创建 StudentRepository 实例
func NewStudentRepo(db *gorm.DB) StudentRepository {
	return &studentRepo{crudRepo: newCRUD[model.Student](db, StudentList)}
}

func (r *studentRepo) GetByUserID(ctx context.Context, userID string) (*model.Student, error) {
	var s model.Student
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *studentRepo) ExistingNumbers(ctx context.Context, numbers []string) (map[string]bool, error) {
	result := make(map[string]bool, len(numbers))
	if len(numbers) == 0 {
		return result, nil
	}
	var found []string
	err := r.db.WithContext(ctx).
		Model(&model.Student{}).
		Where("student_number IN ?", numbers).
		Pluck("student_number", &found).Error
	if err != nil {
		return nil, err
	}
	for _, n := range found {
		result[n] = true
	}
	return result, nil
}

func (r *studentRepo) CreateBatch(ctx context.Context, students []model.Student) error {
	if len(students) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(students, 100).Error
}

// ── CommitteeMember ──

// CommitteeRepository 评审委员数据访问接口
type CommitteeRepository interface {
	CRUD[model.CommitteeMember]
	GetByUserID(ctx context.Context, userID string) (*model.CommitteeMember, error)
	ListByDepartment(ctx context.Context, departmentID string) ([]model.CommitteeMember, error)
	// CountPending 统计每位委员名下 pending 状态的研究数；没有待审研究的委员不出现在结果中
	CountPending(ctx context.Context, memberIDs []string) (map[string]int64, error)
}

type committeeRepo struct {
	crudRepo[model.CommitteeMember]
}

// NewCommitteeRepo 创建 CommitteeRepository 实例
func NewCommitteeRepo(db *gorm.DB) CommitteeRepository {
	return &committeeRepo{crudRepo: newCRUD[model.CommitteeMember](db, CommitteeList)}
}

func (r *committeeRepo) GetByUserID(ctx context.Context, userID string) (*model.CommitteeMember, error) {
	var m model.CommitteeMember
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *committeeRepo) ListByDepartment(ctx context.Context, departmentID string) ([]model.CommitteeMember, error) {
	var members []model.CommitteeMember
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("department_id = ?", departmentID).
		Order("committee_member_id ASC").
		Find(&members).Error
	return members, err
}

func (r *committeeRepo) CountPending(ctx context.Context, memberIDs []string) (map[string]int64, error) {
	result := make(map[string]int64, len(memberIDs))
	if len(memberIDs) == 0 {
		return result, nil
	}

	type row struct {
		ReviewerID string
		Pending    int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&model.Research{}).
		Select("reviewer_id, COUNT(*) AS pending").
		Where("status = ? AND reviewer_id IN ?", model.ResearchPending, memberIDs).
		Group("reviewer_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		result[r.ReviewerID] = r.Pending
	}
	return result, nil
}
