package render

const documentTemplate = `<!DOCTYPE html>
<html lang="zh">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
{{.RootStyle}}
body { font-size: var(--font-size); line-height: var(--line-height); font-family: var(--font-family); color: var(--text-color); background: var(--background-color); }
h2 { font-size: var(--heading-size); }
.comment { margin: 8px 0; padding: 8px; border-left: 3px solid #ddd; }
.comment.highlight { border-left-color: #f0c040; }
.replies { margin-left: 16px; }
.author { font-weight: bold; }
.time { color: #888; font-size: 0.85em; }
</style>
</head>
<body class="layout-{{.Layout}}">
<h1>{{.Title}}</h1>
<nav id="articlePicker">
{{- range .Pages}}
<section class="picker-page" id="picker-page-{{.Number}}">
<h3>第 {{.Number}} / {{$.TotalPages}} 页</h3>
<ol start="{{.Start}}">
{{- range .Entries}}
<li><a href="#article-{{.Index}}">{{.Title}}</a></li>
{{- end}}
</ol>
</section>
{{- end}}
</nav>
{{- range .Articles}}
<article id="article-{{.Index}}" data-page="{{.Page}}">
<header class="article-header">
<h2>{{.Title}}</h2>
<div class="time">{{.PublishedAt}}</div>
{{- if .URL}}
<a class="origin" href="{{.URL}}" target="_blank" rel="noopener">原文链接</a>
{{- end}}
<nav class="article-nav">
{{- if ge .Prev 0}}<a href="#article-{{.Prev}}">上一篇</a>{{end}}
{{- if ge .Next 0}} <a href="#article-{{.Next}}">下一篇</a>{{end}}
</nav>
</header>
<div class="article-content">{{.Body}}</div>
<div class="comments">
{{- range .Comments}}{{template "comment" .}}{{end}}
</div>
</article>
{{- end}}
</body>
</html>
{{define "comment"}}
<div class="comment {{.Class}}" id="{{.ID}}" style="background-color:{{.Background}}">
<div class="author">{{.Author}}</div>
<div class="time">{{.Time}}</div>
<div class="comment-text">{{.Content}}</div>
{{- if .Children}}
<div class="replies">
{{- range .Children}}{{template "comment" .}}{{end}}
</div>
{{- end}}
</div>
{{- end}}`
