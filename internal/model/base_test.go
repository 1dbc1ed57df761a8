package model

import (
	"reflect"
	"testing"
)

func TestStringArray_RoundTrip(t *testing.T) {
	in := StringArray{"Ada Lovelace", `Grace "Amazing" Hopper`, `C:\path`, "a,b", ""}
	v, err := in.Value()
	if err != nil {
		t.Fatalf("Value 失败: %v", err)
	}

	var out StringArray
	if err := out.Scan(v); err != nil {
		t.Fatalf("Scan 失败: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Errorf("往返结果不一致: %#v", out)
	}
}

func TestStringArray_ScanUnquoted(t *testing.T) {
	var out StringArray
	if err := out.Scan([]byte("{alice,bob}")); err != nil {
		t.Fatalf("Scan 失败: %v", err)
	}
	if !reflect.DeepEqual(out, StringArray{"alice", "bob"}) {
		t.Errorf("期望 [alice bob]，实际=%v", out)
	}

	if err := out.Scan([]byte("{}")); err != nil || len(out) != 0 {
		t.Errorf("空数组解析失败: %v %v", out, err)
	}
	if err := out.Scan(42); err == nil {
		t.Error("不支持的类型应返回错误")
	}
}

func TestStringArray_ScanNullElement(t *testing.T) {
	var out StringArray
	if err := out.Scan([]byte(`{alice,NULL,"NULL",null}`)); err != nil {
		t.Fatalf("Scan 失败: %v", err)
	}
	// 加引号的 "NULL" 是普通字符串
	want := StringArray{"alice", "", "NULL", ""}
	if !reflect.DeepEqual(out, want) {
		t.Errorf("期望 %#v，实际=%#v", want, out)
	}
}

func TestBaseModel_Stamp(t *testing.T) {
	var m BaseModel
	m.Stamp("u1")
	m.Stamp("u2")
	if *m.CreatedBy != "u1" || *m.UpdatedBy != "u2" {
		t.Errorf("创建人应保持首次值，更新人应为最新值: %v %v", *m.CreatedBy, *m.UpdatedBy)
	}
}
