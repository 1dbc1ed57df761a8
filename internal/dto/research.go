package dto

// CreateResearchRequest 提交研究（multipart 表单，可附带 file）
// 管理员代提交时需指定 student_id；学生本人提交时取当前登录学生
type CreateResearchRequest struct {
	Title        string   `form:"title"         json:"title"         binding:"required,min=5,max=300"`
	Abstract     string   `form:"abstract"      json:"abstract"      binding:"required,min=20"`
	Category     string   `form:"category"      json:"category"      binding:"omitempty,max=50"`
	Authors      []string `form:"authors"       json:"authors"       binding:"omitempty,dive,min=2,max=100"`
	DepartmentID string   `form:"department_id" json:"department_id" binding:"required,uuid"`
	StudentID    string   `form:"student_id"    json:"student_id"    binding:"omitempty,uuid"`
}

// UpdateResearchRequest 修改研究（仅 pending 状态，提交人或管理员）
type UpdateResearchRequest struct {
	Title    *string   `json:"title"    binding:"omitempty,min=5,max=300"`
	Abstract *string   `json:"abstract" binding:"omitempty,min=20"`
	Category *string   `json:"category" binding:"omitempty,max=50"`
	Authors  *[]string `json:"authors"  binding:"omitempty,dive,min=2,max=100"`
}

// ReviewResearchRequest 评审决定
type ReviewResearchRequest struct {
	Status   string `json:"status"            binding:"required,oneof=accepted rejected"`
	Comments string `json:"reviewer_comments" binding:"omitempty,max=5000"`
}
