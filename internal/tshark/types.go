package tshark

// EkPacket represents the top-level structure of a Tshark -T ek output line.
type EkPacket struct {
	Timestamp string   `json:"timestamp"`
	Layers    EkLayers `json:"layers"`
}

// EkLayers holds the fields requested with -e. With -T ek, tshark flattens
// the structure and replaces dots with underscores.
type EkLayers struct {
	IPSrc      []string `json:"ip_src,omitempty"`
	IPDst      []string `json:"ip_dst,omitempty"`
	IPTTL      []string `json:"ip_ttl,omitempty"`
	TCPSrcPort []string `json:"tcp_srcport,omitempty"`
	TCPDstPort []string `json:"tcp_dstport,omitempty"`
	TCPFlags   []string `json:"tcp_flags,omitempty"`
	TCPPayload []string `json:"tcp_payload,omitempty"`
	UDPSrcPort []string `json:"udp_srcport,omitempty"`
	UDPDstPort []string `json:"udp_dstport,omitempty"`

	// Layer 7
	DNSQuery []string `json:"dns_qry_name,omitempty"`
	HTTPHost []string `json:"http_host,omitempty"`
	Data     []string `json:"data_data,omitempty"`
}

// ekFields are passed to tshark as -e arguments, in EkLayers order.
var ekFields = []string{
	"ip.src", "ip.dst", "ip.ttl",
	"tcp.srcport", "tcp.dstport", "tcp.flags", "tcp.payload",
	"udp.srcport", "udp.dstport",
	"dns.qry.name",
	"http.host",
	"data.data",
}
