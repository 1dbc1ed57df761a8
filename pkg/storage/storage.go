// Package storage 本地磁盘文件存储：研究文档与教学资料上传。
package storage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"faculty-portal/config"
)

var (
	ErrFileTooLarge     = errors.New("文件超过大小限制")
	ErrFileTypeRejected = errors.New("不支持的文件类型")
	ErrEmptyFile        = errors.New("文件为空")
)

// StoredFile 已保存文件的元信息
type StoredFile struct {
	URL      string
	Name     string
	Size     int64
	MimeType string
}

// Local 本地目录存储，文件名使用 UUID，原始文件名只保存在元信息里
type Local struct {
	dir       string
	prefix    string
	maxSize   int64
	allowExts map[string]struct{}
}

// NewLocal 创建本地存储，并确保目录存在
func NewLocal(cfg *config.UploadConfig) (*Local, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("创建上传目录失败: %w", err)
	}
	exts := make(map[string]struct{}, len(cfg.AllowedExts))
	for _, e := range cfg.AllowedExts {
		exts[strings.ToLower(e)] = struct{}{}
	}
	return &Local{
		dir:       cfg.Dir,
		prefix:    strings.TrimRight(cfg.PublicPrefix, "/"),
		maxSize:   cfg.MaxSizeMB << 20,
		allowExts: exts,
	}, nil
}

// Dir 上传根目录（路由层用于挂载静态文件）
func (l *Local) Dir() string { return l.dir }

// Prefix 对外访问前缀
func (l *Local) Prefix() string { return l.prefix }

// Save 校验并保存上传文件到 category 子目录
func (l *Local) Save(fh *multipart.FileHeader, category string) (*StoredFile, error) {
	if fh.Size == 0 {
		return nil, ErrEmptyFile
	}
	if l.maxSize > 0 && fh.Size > l.maxSize {
		return nil, ErrFileTooLarge
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if _, ok := l.allowExts[ext]; !ok {
		return nil, ErrFileTypeRejected
	}

	category = sanitize(category)
	if err := os.MkdirAll(filepath.Join(l.dir, category), 0o755); err != nil {
		return nil, fmt.Errorf("创建目录失败: %w", err)
	}

	name := uuid.NewString() + ext
	dst := filepath.Join(l.dir, category, name)

	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("读取上传文件失败: %w", err)
	}
	defer src.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("创建文件失败: %w", err)
	}
	written, err := io.Copy(out, io.LimitReader(src, fh.Size+1))
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(dst)
		return nil, fmt.Errorf("写入文件失败: %w", err)
	}

	return &StoredFile{
		URL:      path.Join(l.prefix, category, name),
		Name:     filepath.Base(fh.Filename),
		Size:     written,
		MimeType: fh.Header.Get("Content-Type"),
	}, nil
}

// Remove 删除通过 Save 保存的文件；不属于本存储的 URL 直接忽略
func (l *Local) Remove(url string) error {
	if url == "" || !strings.HasPrefix(url, l.prefix+"/") {
		return nil
	}
	rel := strings.TrimPrefix(url, l.prefix+"/")
	if strings.Contains(rel, "..") {
		return nil
	}
	err := os.Remove(filepath.Join(l.dir, filepath.FromSlash(rel)))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func sanitize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "misc"
	}
	return b.String()
}
