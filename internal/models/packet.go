package models

// TCPFlags is the set of control bits carried by a TCP segment.
type TCPFlags uint16

const (
	FlagFIN TCPFlags = 1 << iota
	FlagSYN
	FlagRST
	FlagPSH
	FlagACK
	FlagURG
	FlagECE
	FlagCWR
	FlagNS
)

// SYNOnly reports whether SYN is the only flag set.
func (f TCPFlags) SYNOnly() bool {
	return f == FlagSYN
}

// Has reports whether every bit of flag is set.
func (f TCPFlags) Has(flag TCPFlags) bool {
	return f&flag == flag
}

// IPLayer holds the IPv4 header fields the analyzer needs.
type IPLayer struct {
	Src string
	Dst string
	TTL uint8
}

// TCPLayer holds TCP ports and control flags.
type TCPLayer struct {
	SrcPort uint16
	DstPort uint16
	Flags   TCPFlags
}

// HasPort reports whether port is the source or destination port.
func (t *TCPLayer) HasPort(port uint16) bool {
	return t.SrcPort == port || t.DstPort == port
}

// UDPLayer holds UDP ports.
type UDPLayer struct {
	SrcPort uint16
	DstPort uint16
}

// DNSLayer is present only when the packet carries a DNS question.
type DNSLayer struct {
	Query string
}

// HTTPLayer is present only when the packet carries an HTTP request.
type HTTPLayer struct {
	Host string
}

// Packet is a decoded packet record. A nil layer pointer means the layer is absent.
// Packets are produced by a capture source and are read-only to the analyzer.
type Packet struct {
	// Src is the source address. It mirrors IP.Src when the IP layer is present.
	Src string

	IP   *IPLayer
	TCP  *TCPLayer
	UDP  *UDPLayer
	DNS  *DNSLayer
	HTTP *HTTPLayer

	// Raw application payload, nil when absent.
	Payload []byte
}
