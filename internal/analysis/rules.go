package analysis

import (
	"bytes"
	"fmt"
	"netthreat/internal/models"
)

const (
	// LDAPPort is the cleartext LDAP port.
	LDAPPort = 389
	// SYNFloodThreshold is the number of SYN-only packets a single source may
	// send before it is reported. The check is strictly greater-than.
	SYNFloodThreshold = 100
)

// StreamRule inspects one packet at a time and may report a threat immediately.
type StreamRule interface {
	Inspect(pkt *models.Packet) (Threat, bool)
}

// ThresholdRule runs once after every packet has been counted.
type ThresholdRule interface {
	Evaluate(agg Aggregates) []Threat
}

// Aggregates are the per-source totals available to threshold rules.
type Aggregates struct {
	// SYNCounts lists SYN-only packet counts per source, ordered by each
	// source's first SYN-only packet.
	SYNCounts []SourceCount
	// PacketCounts lists IP packet counts per source in first-seen order.
	PacketCounts []SourceCount
}

// RuleSet is the collection of rules an Engine evaluates.
type RuleSet struct {
	Stream    []StreamRule
	Threshold []ThresholdRule
}

// DefaultRules returns the built-in rule table.
func DefaultRules() RuleSet {
	return RuleSet{
		Stream:    []StreamRule{LDAPLeakRule{Port: LDAPPort}},
		Threshold: []ThresholdRule{SYNFloodRule{Threshold: SYNFloodThreshold}},
	}
}

// LDAPLeakRule flags directory-service traffic sent in the clear: a TCP
// segment on Port (either end) whose payload names a domain component.
type LDAPLeakRule struct {
	Port uint16
}

var domainComponent = []byte("dc=")

func (r LDAPLeakRule) Inspect(pkt *models.Packet) (Threat, bool) {
	if pkt.TCP == nil || !pkt.TCP.HasPort(r.Port) || pkt.Payload == nil {
		return Threat{}, false
	}
	if !bytes.Contains(bytes.ToLower(pkt.Payload), domainComponent) {
		return Threat{}, false
	}
	return Threat{
		Severity:    SeverityCritical,
		Description: fmt.Sprintf("LDAP Leak: Unencrypted AD traffic from %s", pkt.Src),
	}, true
}

// SYNFloodRule reports every source whose SYN-only packet count exceeds Threshold.
type SYNFloodRule struct {
	Threshold int
}

func (r SYNFloodRule) Evaluate(agg Aggregates) []Threat {
	var threats []Threat
	for _, sc := range agg.SYNCounts {
		if sc.Count > r.Threshold {
			threats = append(threats, Threat{
				Severity:    SeverityHigh,
				Description: fmt.Sprintf("Possible SYN Flood from %s (%d packets)", sc.Address, sc.Count),
			})
		}
	}
	return threats
}
