package analysis

import (
	"sort"
	"strings"

	"netthreat/internal/models"
)

// OS families inferred from the IP time-to-live.
const (
	OSLinux         = "Linux"
	OSWindows       = "Windows"
	OSNetworkDevice = "NetworkDevice"
)

const (
	topSourceLimit     = 5
	credentialMaxRunes = 60
	defaultChunkMin    = 4096
)

var credentialTokens = []string{"PASS", "USER", "LOGIN", "PWD"}

// Engine runs the aggregation pass and the rule set over a packet sequence.
// An Engine holds no per-run state and is safe for concurrent use.
type Engine struct {
	rules    RuleSet
	workers  int
	chunkMin int
}

// Option configures an Engine.
type Option func(*Engine)

// WithWorkers splits large inputs into contiguous chunks processed by n goroutines.
// Values below 2 keep the pass single-threaded.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		e.workers = n
	}
}

// NewEngine creates an engine evaluating rules.
func NewEngine(rules RuleSet, opts ...Option) *Engine {
	e := &Engine{
		rules:    rules,
		workers:  1,
		chunkMin: defaultChunkMin,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Analyze runs the built-in rules over packets on the calling goroutine.
func Analyze(packets []models.Packet) *AnalysisResult {
	return NewEngine(DefaultRules()).Analyze(packets)
}

// Analyze aggregates packets and evaluates the rule set. An empty or nil
// sequence yields an empty result.
func (e *Engine) Analyze(packets []models.Packet) *AnalysisResult {
	var acc *accumulator
	if e.workers > 1 && len(packets) >= 2*e.chunkMin {
		acc = e.analyzeChunks(packets)
	} else {
		acc = newAccumulator()
		for i := range packets {
			e.process(acc, &packets[i])
		}
	}
	return e.finalize(acc, len(packets))
}

// sourceCounter counts per address and remembers first-seen order.
type sourceCounter struct {
	counts map[string]int
	order  []string
}

func newSourceCounter() *sourceCounter {
	return &sourceCounter{counts: make(map[string]int)}
}

func (c *sourceCounter) add(addr string, n int) {
	if _, ok := c.counts[addr]; !ok {
		c.order = append(c.order, addr)
	}
	c.counts[addr] += n
}

func (c *sourceCounter) list() []SourceCount {
	out := make([]SourceCount, 0, len(c.order))
	for _, addr := range c.order {
		out = append(out, SourceCount{Address: addr, Count: c.counts[addr]})
	}
	return out
}

// accumulator is the mutable state of a single run.
type accumulator struct {
	packets     *sourceCounter
	syn         *sourceCounter
	protocols   map[string]int
	osMap       map[string]string
	threats     *threatList
	credentials []string
	dns         *orderedSet
	http        *orderedSet
}

func newAccumulator() *accumulator {
	return &accumulator{
		packets:     newSourceCounter(),
		syn:         newSourceCounter(),
		protocols:   make(map[string]int),
		osMap:       make(map[string]string),
		threats:     newThreatList(),
		credentials: make([]string, 0),
		dns:         newOrderedSet(),
		http:        newOrderedSet(),
	}
}

// merge folds a later contiguous chunk into acc.
func (acc *accumulator) merge(later *accumulator) {
	for _, sc := range later.packets.list() {
		acc.packets.add(sc.Address, sc.Count)
	}
	for _, sc := range later.syn.list() {
		acc.syn.add(sc.Address, sc.Count)
	}
	for proto, n := range later.protocols {
		acc.protocols[proto] += n
	}
	for addr, family := range later.osMap {
		acc.osMap[addr] = family
	}
	for _, t := range later.threats.items {
		acc.threats.add(t)
	}
	acc.credentials = append(acc.credentials, later.credentials...)
	for _, q := range later.dns.items {
		acc.dns.add(q)
	}
	for _, h := range later.http.items {
		acc.http.add(h)
	}
}

// process applies the per-packet steps to one packet.
func (e *Engine) process(acc *accumulator, pkt *models.Packet) {
	if pkt.IP == nil {
		return
	}
	src := pkt.Src

	acc.packets.add(src, 1)
	acc.osMap[src] = ClassifyOS(pkt.IP.TTL)

	if pkt.TCP != nil {
		acc.protocols["TCP"]++
		if pkt.TCP.Flags.SYNOnly() {
			acc.syn.add(src, 1)
		}
	} else if pkt.UDP != nil {
		acc.protocols["UDP"]++
		if pkt.DNS != nil {
			acc.dns.add(pkt.DNS.Query)
		}
	}

	for _, rule := range e.rules.Stream {
		if t, ok := rule.Inspect(pkt); ok {
			acc.threats.add(t)
		}
	}

	if pkt.HTTP != nil {
		acc.http.add(pkt.HTTP.Host)
	}

	if pkt.Payload != nil {
		if hit, ok := CredentialHit(src, pkt.Payload); ok {
			acc.credentials = append(acc.credentials, hit)
		}
	}
}

func (e *Engine) finalize(acc *accumulator, total int) *AnalysisResult {
	agg := Aggregates{
		SYNCounts:    acc.syn.list(),
		PacketCounts: acc.packets.list(),
	}
	for _, rule := range e.rules.Threshold {
		for _, t := range rule.Evaluate(agg) {
			acc.threats.add(t)
		}
	}

	return &AnalysisResult{
		Threats:        acc.threats.items,
		CredentialHits: acc.credentials,
		DNSHistory:     acc.dns.items,
		HTTPHosts:      acc.http.items,
		Stats: Stats{
			ProtocolCounts: acc.protocols,
			TopSources:     topSources(agg.PacketCounts, topSourceLimit),
			OSFingerprint:  acc.osMap,
			TotalPackets:   total,
		},
	}
}

// topSources returns the limit highest counts. counts must be in first-seen
// order; the stable sort keeps that order among equal counts.
func topSources(counts []SourceCount, limit int) []SourceCount {
	sorted := make([]SourceCount, len(counts))
	copy(sorted, counts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Count > sorted[j].Count
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

// ClassifyOS maps an IP time-to-live to an OS family.
func ClassifyOS(ttl uint8) string {
	switch {
	case ttl <= 64:
		return OSLinux
	case ttl <= 128:
		return OSWindows
	default:
		return OSNetworkDevice
	}
}

// CredentialHit reports whether payload looks like it carries a login or
// password and, if so, renders the hit line for src. Invalid UTF-8 is dropped.
func CredentialHit(src string, payload []byte) (string, bool) {
	text := strings.ToValidUTF8(string(payload), "")
	upper := strings.ToUpper(text)

	found := false
	for _, tok := range credentialTokens {
		if strings.Contains(upper, tok) {
			found = true
			break
		}
	}
	if !found {
		return "", false
	}

	excerpt := []rune(strings.TrimSpace(text))
	if len(excerpt) > credentialMaxRunes {
		excerpt = excerpt[:credentialMaxRunes]
	}
	return src + " -> " + string(excerpt), true
}
