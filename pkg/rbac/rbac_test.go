package rbac

import (
	"reflect"
	"testing"
)

func TestPolicy_Can(t *testing.T) {
	p := NewPolicy(map[string][]string{
		"admin":   {PermAcademicWrite, PermResearchReview},
		"student": {PermResearchSubmit},
	})

	tests := []struct {
		role, perm string
		want       bool
	}{
		{"admin", PermAcademicWrite, true},
		{"admin", PermResearchSubmit, false},
		{"student", PermResearchSubmit, true},
		{"student", PermAcademicWrite, false},
		{"ghost", PermAcademicWrite, false},
	}
	for _, tt := range tests {
		if got := p.Can(tt.role, tt.perm); got != tt.want {
			t.Errorf("Can(%s, %s) 期望=%v，实际=%v", tt.role, tt.perm, tt.want, got)
		}
	}
}

func TestPolicy_IsolatedFromInput(t *testing.T) {
	input := map[string][]string{"faculty": {PermContentWrite}}
	p := NewPolicy(input)

	input["faculty"][0] = PermPeopleWrite
	input["intruder"] = []string{PermPeopleWrite}

	if !p.Can("faculty", PermContentWrite) {
		t.Error("修改输入后 Policy 不应变化")
	}
	if p.HasRole("intruder") {
		t.Error("修改输入后不应新增角色")
	}
}

func TestPolicy_Permissions(t *testing.T) {
	p := NewPolicy(map[string][]string{"committee": {PermResearchReview, PermContentWrite}})
	want := []string{PermContentWrite, PermResearchReview}
	if got := p.Permissions("committee"); !reflect.DeepEqual(got, want) {
		t.Errorf("期望=%v，实际=%v", want, got)
	}

	var nilPolicy *Policy
	if nilPolicy.Can("admin", PermAcademicWrite) {
		t.Error("nil Policy 应拒绝所有权限")
	}
}
