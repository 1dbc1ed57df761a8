// Package rbac 角色 → 权限表。启动时构建一次，运行期只读。
package rbac

import "sort"

// 权限常量
const (
	PermAcademicWrite   = "academic:write"
	PermPeopleWrite     = "people:write"
	PermEnrollmentWrite = "enrollment:write"
	PermEnrollmentRead  = "enrollment:read"
	PermResearchSubmit  = "research:submit"
	PermResearchReview  = "research:review"
	PermResearchReadAll = "research:read_all"
	PermContentWrite    = "content:write"
	PermFeedbackSubmit  = "feedback:submit"
	PermFeedbackManage  = "feedback:manage"
	PermCommitteeManage = "committee:manage"
	PermStudentsImport  = "students:import"
	PermRosterExport    = "roster:export"
)

// Policy 不可变的角色权限表
type Policy struct {
	roles map[string]map[string]struct{}
}

// NewPolicy 从配置构建权限表；输入被复制，调用方后续修改不影响 Policy
func NewPolicy(roles map[string][]string) *Policy {
	p := &Policy{roles: make(map[string]map[string]struct{}, len(roles))}
	for role, perms := range roles {
		set := make(map[string]struct{}, len(perms))
		for _, perm := range perms {
			set[perm] = struct{}{}
		}
		p.roles[role] = set
	}
	return p
}

// Can 角色是否拥有权限
func (p *Policy) Can(role, perm string) bool {
	if p == nil {
		return false
	}
	_, ok := p.roles[role][perm]
	return ok
}

// HasRole 角色是否已定义
func (p *Policy) HasRole(role string) bool {
	_, ok := p.roles[role]
	return ok
}

// Permissions 返回角色的权限列表（排序后的副本）
func (p *Policy) Permissions(role string) []string {
	set := p.roles[role]
	out := make([]string, 0, len(set))
	for perm := range set {
		out = append(out, perm)
	}
	sort.Strings(out)
	return out
}
