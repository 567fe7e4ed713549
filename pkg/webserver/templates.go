package webserver

import (
	"html/template"

	"f1lapcompare/pkg/model"
)

type pageData struct {
	Request    model.Request
	Sessions   []model.SessionKind
	MinYear    int
	MaxYear    int
	Comparison *model.Comparison
	Chart      template.HTML
	Query      template.URL
	Error      string
}

var pages = template.Must(template.New("layout").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>F1 Fastest Lap Telemetry Comparison</title>
<style>
body { background: #111; color: #eee; font-family: sans-serif; margin: 2em; }
form label { margin-right: 1em; }
input, select { background: #222; color: #eee; border: 1px solid #444; padding: 4px; }
.metrics { display: flex; gap: 3em; margin: 1.5em 0; }
.metric span { display: block; color: #999; font-size: 0.9em; }
.metric strong { font-size: 1.6em; }
.error { color: #ff6b6b; }
a { color: #64c4ff; }
</style>
</head>
<body>
<h1>🏎️ F1 Fastest Lap Telemetry Comparison</h1>
<form action="/compare" method="get">
<label>Year <input type="number" name="year" min="{{.MinYear}}" max="{{.MaxYear}}" value="{{.Request.Year}}"></label>
<label>Grand Prix <input type="text" name="gp" value="{{.Request.GrandPrix}}"></label>
<label>Session <select name="session">
{{- range .Sessions}}
<option value="{{.}}"{{if eq . $.Request.Session}} selected{{end}}>{{.Label}}</option>
{{- end}}
</select></label>
<label>Driver 1 <input type="text" name="driver1" size="4" value="{{.Request.Driver1}}"></label>
<label>Driver 2 <input type="text" name="driver2" size="4" value="{{.Request.Driver2}}"></label>
<button type="submit">Compare</button>
</form>
{{- if .Error}}
<p class="error">⚠️ Error: {{.Error}}</p>
{{- end}}
{{- with .Comparison}}
<h2>{{.Request.Title}}</h2>
<div class="metrics">
<div class="metric"><span>{{.Request.Driver1}} Lap Time</span><strong>{{index .LapTimes 0}}</strong></div>
<div class="metric"><span>{{.Request.Driver2}} Lap Time</span><strong>{{index .LapTimes 1}}</strong></div>
<div class="metric"><span>Δ Lap Time</span><strong>{{.DeltaText}}</strong></div>
</div>
{{$.Chart}}
<p><a href="/chart.png?{{$.Query}}">PNG</a> · <a href="/chart.svg?{{$.Query}}">SVG</a> · <a href="/compare.xlsx?{{$.Query}}">Excel</a> · <a href="/api/compare?{{$.Query}}">JSON</a></p>
{{- end}}
</body>
</html>
`))
