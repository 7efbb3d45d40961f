package analysis

import (
	"encoding/json"
	"fmt"
)

// Severity ranks a detected threat.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

var severityNames = [...]string{"Low", "Medium", "High", "Critical"}

func (s Severity) String() string {
	if s < SeverityLow || s > SeverityCritical {
		return fmt.Sprintf("Severity(%d)", int(s))
	}
	return severityNames[s]
}

// MarshalJSON encodes the severity by name.
func (s Severity) MarshalJSON() ([]byte, error) {
	if s < SeverityLow || s > SeverityCritical {
		return nil, fmt.Errorf("unknown severity %d", int(s))
	}
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts the names produced by MarshalJSON.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for i, n := range severityNames {
		if n == name {
			*s = Severity(i)
			return nil
		}
	}
	return fmt.Errorf("unknown severity %q", name)
}

// Threat is a single security finding. Two threats are the same finding
// when both severity and description match exactly.
type Threat struct {
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
}

// SourceCount pairs a source address with a packet count.
type SourceCount struct {
	Address string `json:"address"`
	Count   int    `json:"count"`
}

// Stats holds the protocol and host-level summary of a run.
type Stats struct {
	ProtocolCounts map[string]int    `json:"protocolCounts"`
	TopSources     []SourceCount     `json:"topSources"`
	OSFingerprint  map[string]string `json:"osFingerprint"`
	TotalPackets   int               `json:"totalPackets"`
}

// AnalysisResult is the output of one analysis run. It is not modified
// after Analyze returns.
type AnalysisResult struct {
	Threats        []Threat `json:"threats"`
	CredentialHits []string `json:"credentialHits"`
	DNSHistory     []string `json:"dnsHistory"`
	HTTPHosts      []string `json:"httpHosts"`
	Stats          Stats    `json:"stats"`
}

// CountBySeverity returns how many threats carry severity s.
func (r *AnalysisResult) CountBySeverity(s Severity) int {
	n := 0
	for _, t := range r.Threats {
		if t.Severity == s {
			n++
		}
	}
	return n
}

// threatList keeps threats in insertion order without duplicates.
type threatList struct {
	items []Threat
	seen  map[Threat]struct{}
}

func newThreatList() *threatList {
	return &threatList{
		items: make([]Threat, 0),
		seen:  make(map[Threat]struct{}),
	}
}

// add appends t unless an identical threat is already present.
func (l *threatList) add(t Threat) bool {
	if _, ok := l.seen[t]; ok {
		return false
	}
	l.seen[t] = struct{}{}
	l.items = append(l.items, t)
	return true
}

// orderedSet keeps distinct strings in first-seen order.
type orderedSet struct {
	items []string
	seen  map[string]struct{}
}

func newOrderedSet() *orderedSet {
	return &orderedSet{
		items: make([]string, 0),
		seen:  make(map[string]struct{}),
	}
}

func (s *orderedSet) add(v string) {
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
}
