package server

import (
	"html/template"

	"dialect-translator/internal/session"
)

type pageData struct {
	session.Snapshot
	SourceLabel string
	TargetLabel string
}

func newPageData(s session.Snapshot) pageData {
	return pageData{
		Snapshot:    s,
		SourceLabel: s.Source.Label(),
		TargetLabel: s.Target.Label(),
	}
}

var pageTemplate = template.Must(template.New("index").Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
{{if .Loading}}<meta http-equiv="refresh" content="1">{{end}}
<title>Kurdish Dialect Translator</title>
<style>
body { font-family: sans-serif; max-width: 960px; margin: 2rem auto; padding: 0 1rem; }
.panes { display: flex; gap: 1rem; align-items: flex-start; }
.pane { flex: 1; display: flex; flex-direction: column; }
textarea { height: 14rem; font-size: 1.1rem; padding: .5rem; }
.alert { background: #fde8e8; color: #9b1c1c; padding: .75rem; margin-bottom: 1rem; border-radius: 4px; }
.actions { margin-top: 1rem; display: flex; gap: .5rem; }
</style>
</head>
<body>
<h1>Kurdish Dialect Translator</h1>
{{if .Controls.ShowError}}<div class="alert" role="alert">{{.Error}}</div>{{end}}
<form method="post" action="/">
<div class="panes">
  <div class="pane">
    <label for="input">{{.SourceLabel}}</label>
    <textarea id="input" name="input" lang="{{.Source.Code}}" dir="auto" placeholder="Enter text in {{.Source}}..." oninput="document.getElementById('translate').disabled = !this.value.trim()"{{if not .Controls.EditEnabled}} readonly{{end}}>{{.Input}}</textarea>
  </div>
  <button type="submit" name="action" value="swap" aria-label="Swap dialects and text"{{if not .Controls.SwapEnabled}} disabled{{end}}>&#8646;</button>
  <div class="pane">
    <label for="output">{{.TargetLabel}}</label>
    <textarea id="output" lang="{{.Target.Code}}" dir="auto" placeholder="Translation in {{.Target}} will appear here..." readonly>{{.Output}}</textarea>
  </div>
</div>
<div class="actions">
  <button type="submit" id="translate" name="action" value="translate"{{if not .Controls.TranslateEnabled}} disabled{{end}}>{{if .Loading}}Translating...{{else}}Translate{{end}}</button>
  <button type="submit" name="action" value="clear"{{if not .Controls.ClearEnabled}} disabled{{end}}>Clear Text</button>
</div>
</form>
</body>
</html>
`
