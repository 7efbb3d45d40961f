package reporting

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"netthreat/internal/analysis"
)

// Report is one analysis result plus the capture it was produced from.
type Report struct {
	FileName   string                   `json:"fileName"`
	FileSizeMB float64                  `json:"fileSizeMB"`
	CreatedAt  time.Time                `json:"createdAt"`
	Results    *analysis.AnalysisResult `json:"results"`
}

// NewReport describes res for a capture of size bytes.
func NewReport(fileName string, size int64, res *analysis.AnalysisResult, now time.Time) Report {
	return Report{
		FileName:   fileName,
		FileSizeMB: math.Round(float64(size)/(1024*1024)*100) / 100,
		CreatedAt:  now,
		Results:    res,
	}
}

// TotalThreats is the number of distinct threats found.
func (r Report) TotalThreats() int {
	return len(r.Results.Threats)
}

// HasThreats reports whether any threat was found.
func (r Report) HasThreats() bool {
	return r.TotalThreats() > 0
}

// WriteJSON encodes res. Struct fields keep declaration order and map keys
// are sorted, so equal results encode to identical bytes.
func WriteJSON(w io.Writer, res *analysis.AnalysisResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("failed to encode result: %v", err)
	}
	return nil
}

// GenerateHTMLReport writes the report into dir and returns the file path.
func GenerateHTMLReport(dir string, rep Report) (string, error) {
	timestamp := rep.CreatedAt.Format("20060102_150405")
	filename := filepath.Join(dir, fmt.Sprintf("report_%s.html", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return "", err
	}
	defer file.Close()

	if err := RenderHTML(file, rep); err != nil {
		return "", err
	}
	return filename, nil
}

// RenderHTML renders rep as a standalone HTML page.
func RenderHTML(w io.Writer, rep Report) error {
	if err := reportTemplate.Execute(w, rep); err != nil {
		return fmt.Errorf("failed to render report: %v", err)
	}
	return nil
}

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"severityClass": func(s analysis.Severity) string {
		return "sev-" + s.String()
	},
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Traffic Analysis Report - {{.FileName}}</title>
    <style>
        body { font-family: sans-serif; margin: 20px; color: #333; }
        h1, h2 { color: #2c3e50; }
        table { width: 100%; border-collapse: collapse; margin-bottom: 20px; }
        th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
        th { background-color: #f2f2f2; }
        tr:nth-child(even) { background-color: #f9f9f9; }
        .summary { background: #eef; padding: 15px; border-radius: 5px; margin-bottom: 20px; }
        .sev-Critical { color: #a94442; font-weight: bold; }
        .sev-High { color: #d9534f; font-weight: bold; }
        .sev-Medium { color: #f0ad4e; }
        .sev-Low { color: #5bc0de; }
    </style>
</head>
<body>
    <h1>Traffic Analysis Report</h1>
    <div class="summary">
        <p><strong>File:</strong> {{.FileName}} ({{printf "%.2f" .FileSizeMB}} MB)</p>
        <p><strong>Date:</strong> {{.CreatedAt.Format "Mon, 02 Jan 2006 15:04:05 MST"}}</p>
        <p><strong>Total Packets:</strong> {{.Results.Stats.TotalPackets}}</p>
        <p><strong>Threats:</strong> {{.TotalThreats}}</p>
    </div>

    <h2>Security Threats</h2>
    <table>
        <thead><tr><th>Severity</th><th>Description</th></tr></thead>
        <tbody>
{{- range .Results.Threats}}
            <tr><td class="{{severityClass .Severity}}">{{.Severity}}</td><td>{{.Description}}</td></tr>
{{- else}}
            <tr><td colspan="2">No threats detected.</td></tr>
{{- end}}
        </tbody>
    </table>

    <h2>Protocols</h2>
    <table>
        <thead><tr><th>Protocol</th><th>Packets</th></tr></thead>
        <tbody>
{{- range $proto, $count := .Results.Stats.ProtocolCounts}}
            <tr><td>{{$proto}}</td><td>{{$count}}</td></tr>
{{- end}}
        </tbody>
    </table>

    <h2>Top Sources</h2>
    <table>
        <thead><tr><th>IP Address</th><th>Packets</th><th>OS</th></tr></thead>
        <tbody>
{{- $os := .Results.Stats.OSFingerprint}}
{{- range .Results.Stats.TopSources}}
            <tr><td>{{.Address}}</td><td>{{.Count}}</td><td>{{index $os .Address}}</td></tr>
{{- end}}
        </tbody>
    </table>

    <h2>Credential Hits</h2>
    <table>
        <thead><tr><th>Match</th></tr></thead>
        <tbody>
{{- range .Results.CredentialHits}}
            <tr><td>{{.}}</td></tr>
{{- else}}
            <tr><td>No credentials captured.</td></tr>
{{- end}}
        </tbody>
    </table>

    <h2>DNS Queries</h2>
    <table>
        <thead><tr><th>Query</th></tr></thead>
        <tbody>
{{- range .Results.DNSHistory}}
            <tr><td>{{.}}</td></tr>
{{- else}}
            <tr><td>No DNS queries captured.</td></tr>
{{- end}}
        </tbody>
    </table>

    <h2>HTTP Hosts</h2>
    <table>
        <thead><tr><th>Host</th></tr></thead>
        <tbody>
{{- range .Results.HTTPHosts}}
            <tr><td>{{.}}</td></tr>
{{- else}}
            <tr><td>No HTTP requests captured.</td></tr>
{{- end}}
        </tbody>
    </table>
</body>
</html>
`))
