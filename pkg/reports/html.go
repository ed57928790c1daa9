package reports

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// GeneratedAtLayout formats the generation timestamp in the HTML header.
const GeneratedAtLayout = "02/01/2006 às 15:04"

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.Table),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// MarkdownToHTML converts Markdown to an HTML fragment. Raw HTML in the
// input is not passed through.
func MarkdownToHTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("converting markdown: %w", err)
	}
	return buf.String(), nil
}

type htmlPage struct {
	Title       string
	Meeting     string
	GeneratedAt string
	Body        template.HTML
}

var pageTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="pt-BR">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}} - {{.Meeting}}</title>
<style>
* { margin: 0; padding: 0; box-sizing: border-box; }
body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; line-height: 1.6; color: #2c3e50; background-color: #f8f9fa; padding: 20px; }
.container { max-width: 800px; margin: 0 auto; background-color: white; border-radius: 12px; box-shadow: 0 4px 20px rgba(0,0,0,0.1); overflow: hidden; }
.header { background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); color: white; padding: 40px 30px; text-align: center; }
.header h1 { font-size: 2.5em; font-weight: 300; margin-bottom: 10px; letter-spacing: 1px; }
.header .meta { font-size: 1.1em; opacity: 0.9; margin-top: 15px; }
.content { padding: 40px 30px; font-size: 1.1em; line-height: 1.8; }
h2 { color: #34495e; font-size: 1.8em; margin: 30px 0 20px 0; padding-bottom: 10px; border-bottom: 3px solid #3498db; font-weight: 600; }
h3, h4 { color: #2980b9; margin: 25px 0 15px 0; font-weight: 600; }
p { margin-bottom: 20px; text-align: justify; }
ul, ol { margin: 20px 0; padding-left: 30px; }
li { margin-bottom: 12px; line-height: 1.7; }
table { border-collapse: collapse; width: 100%; margin: 20px 0; }
th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
.footer { background-color: #ecf0f1; padding: 30px; text-align: center; border-top: 1px solid #ddd; }
.footer p { margin: 5px 0; color: #7f8c8d; font-size: 0.95em; }
@media print { body { background-color: white; padding: 0; } .container { box-shadow: none; border-radius: 0; } }
</style>
</head>
<body>
<div class="container">
<div class="header">
<h1>{{.Title}}</h1>
<div class="meta">
<div><strong>Reunião:</strong> {{.Meeting}}</div>
<div><strong>Data de geração:</strong> {{.GeneratedAt}}</div>
</div>
</div>
<div class="content">
{{.Body}}
</div>
<div class="footer">
<p><strong>Relatório gerado automaticamente</strong></p>
<p>Sistema de Análise de Transcrições</p>
<p>Sara Carolayne - Entregáveis da Consultoria</p>
</div>
</div>
</body>
</html>
`))

// RenderHTML renders r as a standalone styled page stamped with now.
func RenderHTML(r *Result, now time.Time) (string, error) {
	body, err := MarkdownToHTML(RenderMarkdown(r))
	if err != nil {
		return "", err
	}

	title := r.Title
	if title == "" {
		title = "Relatório"
	}

	var buf bytes.Buffer
	err = pageTemplate.Execute(&buf, htmlPage{
		Title:       title,
		Meeting:     r.MeetingName,
		GeneratedAt: now.Format(GeneratedAtLayout),
		Body:        template.HTML(body),
	})
	if err != nil {
		return "", fmt.Errorf("rendering report page: %w", err)
	}
	return buf.String(), nil
}

// HTMLFilename is the download name of an HTML report.
func HTMLFilename(t Type, meeting string) string {
	return fmt.Sprintf("%s_%s.html", t, meeting)
}

// JSONFilename is the download name of a JSON report.
func JSONFilename(t Type, meeting string) string {
	return fmt.Sprintf("relatorio_%s_%s.json", meeting, t)
}

// textDocument is the JSON download of a free-text report.
type textDocument struct {
	Type        Type   `json:"tipo"`
	Title       string `json:"titulo"`
	Meeting     string `json:"reuniao"`
	GeneratedAt string `json:"gerado_em"`
	Content     string `json:"conteudo"`
}

// JSONDocument returns the report as indented JSON. Structured reports keep
// the model's key order.
func JSONDocument(r *Result) ([]byte, error) {
	var buf bytes.Buffer
	if r.Structured != nil && r.JSONText != "" {
		if err := json.Indent(&buf, []byte(r.JSONText), "", "  "); err != nil {
			return nil, fmt.Errorf("indenting report json: %w", err)
		}
		buf.WriteByte('\n')
		return buf.Bytes(), nil
	}

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	var err error
	if r.Structured != nil {
		err = enc.Encode(r.Structured)
	} else {
		err = enc.Encode(textDocument{
			Type:        r.Type,
			Title:       r.Title,
			Meeting:     r.MeetingName,
			GeneratedAt: r.GeneratedAt.Format(time.RFC3339),
			Content:     r.Text,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("encoding report json: %w", err)
	}
	return buf.Bytes(), nil
}
