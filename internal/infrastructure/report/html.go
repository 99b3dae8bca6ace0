package report

import (
	"fmt"
	"html/template"
	"io"

	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/domain/model"
)

var eventTemplate = template.Must(template.New("events").Parse(`
<html>
<head>
    <title>Enterprise Risk Intelligence Report</title>
    <meta charset="utf-8" />
</head>
<body>
    <h1>Enterprise Risk Intelligence Report</h1>
    <p>Generated at: {{.GeneratedAt}}</p>
    <table border="1" cellspacing="0" cellpadding="4">
        <thead>
            <tr>
                <th>Timestamp</th>
                <th>User</th>
                <th>Event Type</th>
                <th>Source IP</th>
                <th>Status</th>
                <th>Score</th>
                <th>Risk Level</th>
                <th>Reason</th>
            </tr>
        </thead>
        <tbody>
            {{- range .Events}}
            <tr><td>{{.Timestamp}}</td><td>{{.User}}</td><td>{{.EventType}}</td><td>{{.SourceIP}}</td><td>{{.Status}}</td><td>{{.Score}}</td><td>{{.RiskLevel}}</td><td>{{.Reason}}</td></tr>
            {{- end}}
        </tbody>
    </table>
</body>
</html>
`))

// WriteHTML renders scored events as an HTML table. Field values are
// HTML-escaped.
func (r *Renderer) WriteHTML(w io.Writer, events []model.ScoredEvent) error {
	data := struct {
		GeneratedAt string
		Events      []model.ScoredEvent
	}{
		GeneratedAt: r.generatedAt(),
		Events:      events,
	}
	if err := eventTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("render event report: %w", err)
	}
	return nil
}
