package database

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/golang-migrate/migrate/v4/source/iofs"
)

func TestMigrations_PairedUpDown(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		t.Fatalf("读取迁移目录失败: %v", err)
	}

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		default:
			t.Errorf("未知迁移文件: %s", name)
		}
	}
	if len(ups) == 0 {
		t.Fatal("至少应有一个迁移")
	}
	for k := range ups {
		if !downs[k] {
			t.Errorf("迁移 %s 缺少 down 文件", k)
		}
	}
}

func TestMigrations_SourceParses(t *testing.T) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		t.Fatalf("iofs 加载失败: %v", err)
	}
	defer src.Close()

	first, err := src.First()
	if err != nil {
		t.Fatalf("读取首个版本失败: %v", err)
	}
	if first != 1 {
		t.Errorf("期望首个版本=1，实际=%d", first)
	}
}

func TestMigrations_UniqueConstraints(t *testing.T) {
	raw, err := fs.ReadFile(migrationsFS, "migrations/000001_init.up.sql")
	if err != nil {
		t.Fatalf("读取迁移失败: %v", err)
	}
	sql := string(raw)
	for _, want := range []string{
		"UNIQUE (course_id, teacher_id, semester, year)",
		"UNIQUE (student_id, offering_id)",
		"uq_students_number UNIQUE (student_number)",
		"uq_committee_members_user UNIQUE (user_id)",
	} {
		if !strings.Contains(sql, want) {
			t.Errorf("迁移缺少唯一约束: %s", want)
		}
	}
}
