package server

import (
	"html/template"
	"io"

	"github.com/teemow/inboxtriage/internal/gmail"
)

// dashboardData is the template context for the dashboard page.
type dashboardData struct {
	Summary     string
	Emails      []*gmail.Message
	CustomRules []CustomRule
}

var dashboardTemplate = template.Must(template.New("dashboard").Funcs(template.FuncMap{
	"excerpt": func(s string) string {
		return gmail.Truncate(s, gmail.MaxDisplayChars)
	},
	"categoryClass": func(category string) string {
		switch category {
		case "Urgent":
			return "urgent"
		case "Important":
			return "important"
		default:
			return "low-priority"
		}
	},
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Inbox Triage</title>
<style>
body { font-family: sans-serif; margin: 2rem auto; max-width: 60rem; color: #222; }
header { display: flex; justify-content: space-between; align-items: baseline; }
.summary { background: #f5f5f5; border-radius: 6px; padding: 1rem; margin: 1rem 0; }
.email { border-bottom: 1px solid #ddd; padding: 0.75rem 0; }
.email h3 { margin: 0 0 0.25rem; }
.meta { color: #666; font-size: 0.85rem; }
.badge { border-radius: 4px; padding: 0.1rem 0.5rem; font-size: 0.8rem; color: #fff; }
.badge.urgent { background: #c0392b; }
.badge.important { background: #e67e22; }
.badge.low-priority { background: #7f8c8d; }
.rules { margin-top: 2rem; }
</style>
</head>
<body>
<header>
<h1>Inbox Triage</h1>
<a href="/logout">Log out</a>
</header>

<section class="summary">
<h2>Daily Summary</h2>
<p>{{.Summary}}</p>
</section>

<section class="emails">
<h2>Recent Emails</h2>
{{if not .Emails}}<p>No recent emails.</p>{{end}}
{{range .Emails}}
<article class="email">
<h3>{{.Subject}} <span class="badge {{categoryClass .Category}}">{{.Category}}</span></h3>
<p class="meta">{{.From}} &middot; {{.Date}}</p>
<p>{{excerpt .Body}}</p>
</article>
{{end}}
</section>

<section class="rules">
<h2>Custom Rules</h2>
{{if not .CustomRules}}<p>No custom rules defined.</p>{{end}}
<ul>
{{range .CustomRules}}
<li><strong>{{.Name}}</strong>: {{.Condition}}</li>
{{end}}
</ul>
<form id="rule-form">
<input name="name" placeholder="Rule name" required>
<input name="condition" placeholder="Condition" required>
<button type="submit">Add rule</button>
</form>
</section>

<script>
document.getElementById('rule-form').addEventListener('submit', async (e) => {
	e.preventDefault();
	const form = new FormData(e.target);
	const resp = await fetch('/api/custom-rule', {
		method: 'POST',
		headers: {'Content-Type': 'application/json'},
		body: JSON.stringify({name: form.get('name'), condition: form.get('condition')}),
	});
	if (resp.ok) { location.reload(); }
});
</script>
</body>
</html>
`))

// renderDashboard writes the dashboard page.
func renderDashboard(w io.Writer, data dashboardData) error {
	return dashboardTemplate.Execute(w, data)
}
