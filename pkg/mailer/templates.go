package mailer

import (
	"bytes"
	"fmt"
	"net/mail"
	"text/template"
)

var (
	resetTmpl = template.Must(template.New("reset").Parse(
		`{{.Name}}，您好：

我们收到了重置您账户密码的请求。请在 {{.Minutes}} 分钟内访问以下链接完成重置：

{{.Link}}

如果这不是您本人的操作，请忽略此邮件。
`))

	assignedTmpl = template.Must(template.New("assigned").Parse(
		`{{.Name}}，您好：

有一份新的研究提交已分配给您评审：

标题：{{.Title}}
编号：{{.ResearchID}}

请登录系统查看并给出评审意见。
`))

	reviewedTmpl = template.Must(template.New("reviewed").Parse(
		`{{.Name}}，您好：

您提交的研究《{{.Title}}》已完成评审，结果：{{.Status}}。
{{if .Comments}}
评审意见：{{.Comments}}
{{end}}`))
)

func render(t *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("渲染邮件模板 %s 失败: %w", t.Name(), err)
	}
	return buf.String(), nil
}

// PasswordReset 密码重置邮件
func PasswordReset(to mail.Address, link string, minutes int) (*Message, error) {
	text, err := render(resetTmpl, map[string]interface{}{
		"Name": to.Name, "Link": link, "Minutes": minutes,
	})
	if err != nil {
		return nil, err
	}
	return &Message{To: []mail.Address{to}, Subject: "密码重置", Text: text}, nil
}

// ReviewerAssigned 评审分配通知邮件
func ReviewerAssigned(to mail.Address, researchID, title string) (*Message, error) {
	text, err := render(assignedTmpl, map[string]interface{}{
		"Name": to.Name, "Title": title, "ResearchID": researchID,
	})
	if err != nil {
		return nil, err
	}
	return &Message{To: []mail.Address{to}, Subject: "新的研究评审任务", Text: text}, nil
}

// ResearchReviewed 评审结果邮件
func ResearchReviewed(to mail.Address, title, status, comments string) (*Message, error) {
	text, err := render(reviewedTmpl, map[string]interface{}{
		"Name": to.Name, "Title": title, "Status": status, "Comments": comments,
	})
	if err != nil {
		return nil, err
	}
	return &Message{To: []mail.Address{to}, Subject: "研究评审结果", Text: text}, nil
}
