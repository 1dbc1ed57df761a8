package repository

import (
	"context"

	"gorm.io/gorm"

	"faculty-portal/internal/model"
)

// ── Faculty ──

// FacultyRepository 学院数据访问接口
type FacultyRepository interface {
	CRUD[model.Faculty]
	CountDepartments(ctx context.Context, facultyID string) (int64, error)
}

type facultyRepo struct {
	crudRepo[model.Faculty]
}

// NewFacultyRepo 创建 FacultyRepository 实例
func NewFacultyRepo(db *gorm.DB) FacultyRepository {
	return &facultyRepo{crudRepo: newCRUD[model.Faculty](db, FacultyList)}
}

func (r *facultyRepo) CountDepartments(ctx context.Context, facultyID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Department{}).
		Where("faculty_id = ?", facultyID).
		Count(&count).Error
	return count, err
}

// ── Department ──

// DepartmentRepository 系数据访问接口
type DepartmentRepository interface {
	CRUD[model.Department]
	CountCourses(ctx context.Context, departmentID string) (int64, error)
	// ListByCodes 按代码批量查找（学生导入时解析系代码）
	ListByCodes(ctx context.Context, codes []string) ([]model.Department, error)
}

type departmentRepo struct {
	crudRepo[model.Department]
}

// NewDepartmentRepo 创建 DepartmentRepository 实例
func NewDepartmentRepo(db *gorm.DB) DepartmentRepository {
	return &departmentRepo{crudRepo: newCRUD[model.Department](db, DepartmentList)}
}

func (r *departmentRepo) CountCourses(ctx context.Context, departmentID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Course{}).
		Where("department_id = ?", departmentID).
		Count(&count).Error
	return count, err
}

func (r *departmentRepo) ListByCodes(ctx context.Context, codes []string) ([]model.Department, error) {
	var depts []model.Department
	if len(codes) == 0 {
		return depts, nil
	}
	err := r.db.WithContext(ctx).
		Where("code IN ?", codes).
		Find(&depts).Error
	return depts, err
}

// ── Course ──

// CourseRepository 课程数据访问接口
type CourseRepository interface {
	CRUD[model.Course]
}

// NewCourseRepo 创建 CourseRepository 实例
func NewCourseRepo(db *gorm.DB) CourseRepository {
	r := newCRUD[model.Course](db, CourseList)
	return &r
}

// ── CourseOffering ──

// OfferingRepository 开课数据访问接口
type OfferingRepository interface {
	CRUD[model.CourseOffering]
	// FindSlot 按 (course, teacher, semester, year) 查找已有开课
	FindSlot(ctx context.Context, courseID, teacherID, semester string, year int) (*model.CourseOffering, error)
}

type offeringRepo struct {
	crudRepo[model.CourseOffering]
}

// NewOfferingRepo 创建 OfferingRepository 实例
func NewOfferingRepo(db *gorm.DB) OfferingRepository {
	return &offeringRepo{crudRepo: newCRUD[model.CourseOffering](db, OfferingList)}
}

func (r *offeringRepo) FindSlot(ctx context.Context, courseID, teacherID, semester string, year int) (*model.CourseOffering, error) {
	var o model.CourseOffering
	err := r.db.WithContext(ctx).
		Where("course_id = ? AND teacher_id = ? AND semester = ? AND year = ?", courseID, teacherID, semester, year).
		First(&o).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// ── Enrollment ──

// EnrollmentRepository 选课数据访问接口
type EnrollmentRepository interface {
	CRUD[model.Enrollment]
	CountActive(ctx context.Context, offeringID string) (int64, error)
	Find(ctx context.Context, studentID, offeringID string) (*model.Enrollment, error)
	// Roster 开课的在读学生名单（按学号排序）
	Roster(ctx context.Context, offeringID string) ([]model.Enrollment, error)
}

type enrollmentRepo struct {
	crudRepo[model.Enrollment]
}

// NewEnrollmentRepo 创建 EnrollmentRepository 实例
func NewEnrollmentRepo(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepo{crudRepo: newCRUD[model.Enrollment](db, EnrollmentList)}
}

func (r *enrollmentRepo) CountActive(ctx context.Context, offeringID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Enrollment{}).
		Where("offering_id = ? AND status = ?", offeringID, model.EnrollmentEnrolled).
		Count(&count).Error
	return count, err
}

func (r *enrollmentRepo) Find(ctx context.Context, studentID, offeringID string) (*model.Enrollment, error) {
	var e model.Enrollment
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND offering_id = ?", studentID, offeringID).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *enrollmentRepo) Roster(ctx context.Context, offeringID string) ([]model.Enrollment, error) {
	var list []model.Enrollment
	err := r.db.WithContext(ctx).
		Joins("Student").
		Where("enrollments.offering_id = ? AND enrollments.status <> ?", offeringID, model.EnrollmentDropped).
		Order(`"Student"."student_number" ASC`).
		Find(&list).Error
	return list, err
}
