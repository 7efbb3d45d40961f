package capture

import (
	"strings"

	"netthreat/internal/models"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// Decode converts a gopacket packet into the analyzer's packet record.
// Packets without an IPv4 layer decode to an empty record.
func Decode(p gopacket.Packet) models.Packet {
	var pkt models.Packet

	ip, ok := p.Layer(layers.LayerTypeIPv4).(*layers.IPv4)
	if !ok {
		return pkt
	}
	pkt.Src = ip.SrcIP.String()
	pkt.IP = &models.IPLayer{
		Src: pkt.Src,
		Dst: ip.DstIP.String(),
		TTL: ip.TTL,
	}

	if tcp, ok := p.Layer(layers.LayerTypeTCP).(*layers.TCP); ok {
		pkt.TCP = &models.TCPLayer{
			SrcPort: uint16(tcp.SrcPort),
			DstPort: uint16(tcp.DstPort),
			Flags:   tcpFlags(tcp),
		}
	}
	if udp, ok := p.Layer(layers.LayerTypeUDP).(*layers.UDP); ok {
		pkt.UDP = &models.UDPLayer{
			SrcPort: uint16(udp.SrcPort),
			DstPort: uint16(udp.DstPort),
		}
	}
	if dns, ok := p.Layer(layers.LayerTypeDNS).(*layers.DNS); ok && len(dns.Questions) > 0 {
		pkt.DNS = &models.DNSLayer{
			Query: strings.ToValidUTF8(string(dns.Questions[0].Name), ""),
		}
	}

	// Only undecoded application bytes count as raw payload; a parsed
	// DNS message does not.
	if app := p.ApplicationLayer(); app != nil {
		switch app.LayerType() {
		case gopacket.LayerTypePayload, gopacket.LayerTypeDecodeFailure:
			pkt.Payload = app.Payload()
		}
	}

	if pkt.TCP != nil && pkt.Payload != nil {
		if req, ok := ParseHTTPRequest(pkt.Payload); ok {
			if req.Host != "" {
				pkt.HTTP = &models.HTTPLayer{Host: req.Host}
			}
			pkt.Payload = req.Body
		}
	}

	return pkt
}

func tcpFlags(tcp *layers.TCP) models.TCPFlags {
	var f models.TCPFlags
	set := func(on bool, flag models.TCPFlags) {
		if on {
			f |= flag
		}
	}
	set(tcp.FIN, models.FlagFIN)
	set(tcp.SYN, models.FlagSYN)
	set(tcp.RST, models.FlagRST)
	set(tcp.PSH, models.FlagPSH)
	set(tcp.ACK, models.FlagACK)
	set(tcp.URG, models.FlagURG)
	set(tcp.ECE, models.FlagECE)
	set(tcp.CWR, models.FlagCWR)
	set(tcp.NS, models.FlagNS)
	return f
}
