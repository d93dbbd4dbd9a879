package client

import (
	"fmt"
	"html/template"
	"io"
)

var pageTemplate = template.Must(template.New("page").Funcs(template.FuncMap{
	"percent": func(f float64) string { return fmt.Sprintf("%.0f%%", f*100) },
	"header":  WeekHeader,
}).Parse(`<!DOCTYPE html>
<html lang="zh-CN">
<head><meta charset="utf-8"><title>空闲教室查询</title></head>
<body>
{{- if .Login}}
<div class="modal">{{.LoginPrompt}}{{with .LoginError}}<p class="error">{{.}}</p>{{end}}</div>
{{- end}}
{{- with .Warning}}
<div class="banner warning">{{.}}</div>
{{- end}}
{{- with .Error}}
<div class="banner error">{{.}}</div>
{{- end}}
<main class="grid">
{{- if .Empty}}
<div class="empty">{{.EmptyMessage}}</div>
{{- else if .Cards}}
<div class="week-header">{{header .Week}}</div>
{{- range .Cards}}
<div class="card">
  <h3>{{.Building}}</h3>
  <p class="label">推荐教室</p>
  <p class="room">{{.Room}}</p>
  <p class="label">连续空闲 {{.MaxFree}} 节</p>
  <div class="bar"><div style="width: {{percent .Fill}}"></div></div>
  <p class="range">{{.TimeRange}}</p>
</div>
{{- end}}
{{- end}}
</main>
</body>
</html>
`))

// HTMLView renders the same cards as the browser page into a static document.
type HTMLView struct {
	JSONView
}

func NewHTMLView(w io.Writer) *HTMLView {
	return &HTMLView{JSONView: JSONView{w: w}}
}

func (v *HTMLView) Flush() error {
	return pageTemplate.Execute(v.w, struct {
		viewState
		LoginPrompt  string
		EmptyMessage string
	}{v.state, LoginPromptMessage, EmptyMessage})
}
