package analysis

import (
	"fmt"
	"strings"
	"testing"

	"netthreat/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tcpPacket(src string, ttl uint8, flags models.TCPFlags, sport, dport uint16, payload []byte) models.Packet {
	return models.Packet{
		Src:     src,
		IP:      &models.IPLayer{Src: src, Dst: "10.0.0.254", TTL: ttl},
		TCP:     &models.TCPLayer{SrcPort: sport, DstPort: dport, Flags: flags},
		Payload: payload,
	}
}

func synPacket(src string) models.Packet {
	return tcpPacket(src, 64, models.FlagSYN, 40000, 80, nil)
}

func dnsPacket(src, query string) models.Packet {
	return models.Packet{
		Src: src,
		IP:  &models.IPLayer{Src: src, Dst: "8.8.8.8", TTL: 64},
		UDP: &models.UDPLayer{SrcPort: 53535, DstPort: 53},
		DNS: &models.DNSLayer{Query: query},
	}
}

func httpPacket(src, host string) models.Packet {
	p := tcpPacket(src, 64, models.FlagPSH|models.FlagACK, 41000, 80, nil)
	p.HTTP = &models.HTTPLayer{Host: host}
	return p
}

func TestAnalyzeEmpty(t *testing.T) {
	for _, packets := range [][]models.Packet{nil, {}} {
		res := Analyze(packets)
		require.NotNil(t, res)
		assert.Empty(t, res.Threats)
		assert.Empty(t, res.CredentialHits)
		assert.Empty(t, res.DNSHistory)
		assert.Empty(t, res.HTTPHosts)
		assert.Empty(t, res.Stats.ProtocolCounts)
		assert.Empty(t, res.Stats.TopSources)
		assert.Empty(t, res.Stats.OSFingerprint)
		assert.Equal(t, 0, res.Stats.TotalPackets)
	}
}

func TestNonIPPacketsOnlyCountTowardsTotal(t *testing.T) {
	res := Analyze([]models.Packet{
		{},
		{Payload: []byte("USER root")},
		{Src: "fe80::1", UDP: &models.UDPLayer{SrcPort: 1, DstPort: 53}, DNS: &models.DNSLayer{Query: "x.example"}},
		{TCP: &models.TCPLayer{SrcPort: 389, Flags: models.FlagSYN}, Payload: []byte("dc=corp")},
	})

	assert.Equal(t, 4, res.Stats.TotalPackets)
	assert.Empty(t, res.Threats)
	assert.Empty(t, res.CredentialHits)
	assert.Empty(t, res.DNSHistory)
	assert.Empty(t, res.Stats.ProtocolCounts)
	assert.Empty(t, res.Stats.TopSources)
	assert.Empty(t, res.Stats.OSFingerprint)
}

func TestClassifyOS(t *testing.T) {
	cases := []struct {
		ttl  uint8
		want string
	}{
		{0, OSLinux},
		{64, OSLinux},
		{65, OSWindows},
		{128, OSWindows},
		{129, OSNetworkDevice},
		{255, OSNetworkDevice},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ClassifyOS(c.ttl), "ttl %d", c.ttl)
	}
}

func TestOSFingerprintLastObservationWins(t *testing.T) {
	res := Analyze([]models.Packet{
		tcpPacket("10.0.0.1", 64, models.FlagACK, 1, 2, nil),
		tcpPacket("10.0.0.2", 128, models.FlagACK, 1, 2, nil),
		tcpPacket("10.0.0.1", 250, models.FlagACK, 1, 2, nil),
	})
	assert.Equal(t, map[string]string{
		"10.0.0.1": OSNetworkDevice,
		"10.0.0.2": OSWindows,
	}, res.Stats.OSFingerprint)
}

func TestProtocolCounts(t *testing.T) {
	res := Analyze([]models.Packet{
		synPacket("10.0.0.1"),
		dnsPacket("10.0.0.1", "a.example"),
		dnsPacket("10.0.0.2", "b.example"),
		{Src: "10.0.0.3", IP: &models.IPLayer{Src: "10.0.0.3", TTL: 64}},
	})
	assert.Equal(t, map[string]int{"TCP": 1, "UDP": 2}, res.Stats.ProtocolCounts)
	assert.Equal(t, 4, res.Stats.TotalPackets)
}

func TestSYNFloodBoundary(t *testing.T) {
	var packets []models.Packet
	for i := 0; i < 100; i++ {
		packets = append(packets, synPacket("10.0.0.100"))
	}
	for i := 0; i < 101; i++ {
		packets = append(packets, synPacket("10.0.0.101"))
	}
	// SYN+ACK and ACK segments are not connection attempts.
	for i := 0; i < 150; i++ {
		packets = append(packets, tcpPacket("10.0.0.102", 64, models.FlagSYN|models.FlagACK, 80, 40000, nil))
	}

	res := Analyze(packets)
	assert.Equal(t, []Threat{
		{Severity: SeverityHigh, Description: "Possible SYN Flood from 10.0.0.101 (101 packets)"},
	}, res.Threats)
}

func TestSYNFloodOrderFollowsFirstSYN(t *testing.T) {
	var packets []models.Packet
	packets = append(packets, tcpPacket("10.0.0.2", 64, models.FlagACK, 1, 2, nil))
	for i := 0; i < 101; i++ {
		packets = append(packets, synPacket("10.0.0.1"), synPacket("10.0.0.2"))
	}

	res := Analyze(packets)
	require.Len(t, res.Threats, 2)
	assert.Equal(t, "Possible SYN Flood from 10.0.0.1 (101 packets)", res.Threats[0].Description)
	assert.Equal(t, "Possible SYN Flood from 10.0.0.2 (101 packets)", res.Threats[1].Description)
}

func TestLDAPLeak(t *testing.T) {
	leak := tcpPacket("192.168.5.20", 128, models.FlagPSH|models.FlagACK, 50123, 389,
		[]byte("\x30\x25 ...dc=example,dc=com..."))

	res := Analyze([]models.Packet{leak, leak})
	assert.Equal(t, []Threat{
		{Severity: SeverityCritical, Description: "LDAP Leak: Unencrypted AD traffic from 192.168.5.20"},
	}, res.Threats)
}

func TestLDAPLeakMatching(t *testing.T) {
	cases := []struct {
		name string
		pkt  models.Packet
		want bool
	}{
		{"server side", tcpPacket("10.0.0.9", 64, models.FlagACK, 389, 50000, []byte("DC=Corp")), true},
		{"upper case", tcpPacket("10.0.0.9", 64, models.FlagACK, 50000, 389, []byte("OU=Users,DC=CORP")), true},
		{"other port", tcpPacket("10.0.0.9", 64, models.FlagACK, 50000, 636, []byte("dc=corp")), false},
		{"no marker", tcpPacket("10.0.0.9", 64, models.FlagACK, 50000, 389, []byte("cn=admin")), false},
		{"no payload", tcpPacket("10.0.0.9", 64, models.FlagACK, 50000, 389, nil), false},
		{"udp", models.Packet{
			Src:     "10.0.0.9",
			IP:      &models.IPLayer{Src: "10.0.0.9", TTL: 64},
			UDP:     &models.UDPLayer{SrcPort: 389, DstPort: 389},
			Payload: []byte("dc=corp"),
		}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			res := Analyze([]models.Packet{c.pkt})
			assert.Equal(t, c.want, len(res.Threats) == 1)
		})
	}
}

func TestThreatsAreUnique(t *testing.T) {
	var packets []models.Packet
	for i := 0; i < 303; i++ {
		src := fmt.Sprintf("10.0.%d.1", i%3)
		packets = append(packets,
			synPacket(src),
			tcpPacket(src, 64, models.FlagACK, 389, 1024, []byte("dc=x")),
		)
	}

	res := Analyze(packets)
	seen := make(map[Threat]bool)
	for _, th := range res.Threats {
		assert.False(t, seen[th], "duplicate threat %v", th)
		seen[th] = true
	}
	// Streaming threats come first, threshold threats after the pass.
	require.Len(t, res.Threats, 6)
	for _, th := range res.Threats[:3] {
		assert.Equal(t, SeverityCritical, th.Severity)
	}
	for _, th := range res.Threats[3:] {
		assert.Equal(t, SeverityHigh, th.Severity)
	}
}

func TestCredentialHits(t *testing.T) {
	long := "USER " + strings.Repeat("a", 100)
	res := Analyze([]models.Packet{
		tcpPacket("10.0.0.1", 64, models.FlagACK, 40000, 21, []byte("  user alice\r\n")),
		tcpPacket("10.0.0.1", 64, models.FlagACK, 40000, 21, []byte("  user alice\r\n")),
		tcpPacket("10.0.0.2", 64, models.FlagACK, 40000, 110, []byte("pass\xff\xfeword")),
		tcpPacket("10.0.0.3", 64, models.FlagACK, 40000, 80, []byte(long)),
		tcpPacket("10.0.0.4", 64, models.FlagACK, 40000, 80, []byte("hello world")),
		dnsPacketWithPayload("10.0.0.5", []byte("login=ok")),
	})

	assert.Equal(t, []string{
		"10.0.0.1 -> user alice",
		"10.0.0.1 -> user alice",
		"10.0.0.2 -> password",
		"10.0.0.3 -> " + long[:60],
		"10.0.0.5 -> login=ok",
	}, res.CredentialHits)
}

func TestCredentialHitTruncatesRunes(t *testing.T) {
	payload := "PWD " + strings.Repeat("é", 80)
	hit, ok := CredentialHit("1.2.3.4", []byte(payload))
	require.True(t, ok)
	assert.Equal(t, "1.2.3.4 -> PWD "+strings.Repeat("é", 56), hit)
}

func dnsPacketWithPayload(src string, payload []byte) models.Packet {
	return models.Packet{
		Src:     src,
		IP:      &models.IPLayer{Src: src, TTL: 64},
		UDP:     &models.UDPLayer{SrcPort: 5000, DstPort: 5001},
		Payload: payload,
	}
}

func TestFirstSeenHistories(t *testing.T) {
	res := Analyze([]models.Packet{
		dnsPacket("10.0.0.1", "b.example"),
		httpPacket("10.0.0.1", "www.b.example"),
		dnsPacket("10.0.0.2", "a.example"),
		dnsPacket("10.0.0.1", "b.example"),
		httpPacket("10.0.0.3", "www.a.example"),
		httpPacket("10.0.0.1", "www.b.example"),
		dnsPacket("10.0.0.3", "c.example"),
	})
	assert.Equal(t, []string{"b.example", "a.example", "c.example"}, res.DNSHistory)
	assert.Equal(t, []string{"www.b.example", "www.a.example"}, res.HTTPHosts)
}

func TestDNSQueryIgnoredOutsideUDP(t *testing.T) {
	p := tcpPacket("10.0.0.1", 64, models.FlagACK, 40000, 53, nil)
	p.DNS = &models.DNSLayer{Query: "tcp.example"}
	res := Analyze([]models.Packet{p})
	assert.Empty(t, res.DNSHistory)
}

func TestTopSources(t *testing.T) {
	counts := []struct {
		addr string
		n    int
	}{
		{"10.0.0.1", 2},
		{"10.0.0.2", 5},
		{"10.0.0.3", 2},
		{"10.0.0.4", 7},
		{"10.0.0.5", 2},
		{"10.0.0.6", 2},
		{"10.0.0.7", 1},
	}
	var packets []models.Packet
	for _, c := range counts {
		for i := 0; i < c.n; i++ {
			packets = append(packets, tcpPacket(c.addr, 64, models.FlagACK, 1, 2, nil))
		}
	}

	res := Analyze(packets)
	assert.Equal(t, []SourceCount{
		{Address: "10.0.0.4", Count: 7},
		{Address: "10.0.0.2", Count: 5},
		{Address: "10.0.0.1", Count: 2},
		{Address: "10.0.0.3", Count: 2},
		{Address: "10.0.0.5", Count: 2},
	}, res.Stats.TopSources)
}

func TestTopSourcesFewerThanLimit(t *testing.T) {
	res := Analyze([]models.Packet{synPacket("10.0.0.1"), synPacket("10.0.0.2"), synPacket("10.0.0.2")})
	assert.Equal(t, []SourceCount{
		{Address: "10.0.0.2", Count: 2},
		{Address: "10.0.0.1", Count: 1},
	}, res.Stats.TopSources)
}

func TestAnalyzeDoesNotMutateInput(t *testing.T) {
	packets := []models.Packet{tcpPacket("10.0.0.1", 64, models.FlagACK, 389, 1, []byte("  USER dc=corp  "))}
	before := string(packets[0].Payload)
	Analyze(packets)
	assert.Equal(t, before, string(packets[0].Payload))
}
