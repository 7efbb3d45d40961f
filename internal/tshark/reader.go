package tshark

import (
	"bufio"
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"netthreat/internal/capture"
	"netthreat/internal/models"
)

// File is a packet source that lets tshark dissect a capture file.
type File struct {
	Path string
	// Binary is the tshark executable; "tshark" when empty.
	Binary string
}

// Packets runs tshark over the file and converts its ek output.
func (f File) Packets(ctx context.Context) ([]models.Packet, error) {
	bin := f.Binary
	if bin == "" {
		bin = "tshark"
	}

	// -n: disable name resolution
	// -T ek: output in Elasticsearch JSON format
	args := []string{"-r", f.Path, "-n", "-T", "ek"}
	for _, field := range ekFields {
		args = append(args, "-e", field)
	}

	cmd := exec.CommandContext(ctx, bin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to get stdout pipe: %v", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start tshark: %v", err)
	}

	packets, parseErr := Parse(stdout)
	// Drain so tshark is not blocked on a full pipe when parsing stopped early.
	io.Copy(io.Discard, stdout)
	if err := cmd.Wait(); err != nil {
		return nil, fmt.Errorf("tshark failed: %v: %s", err, strings.TrimSpace(stderr.String()))
	}
	if parseErr != nil {
		return nil, parseErr
	}
	return packets, nil
}

// Parse reads tshark -T ek output. Index lines, blank lines and lines that
// are not valid JSON are skipped; every packet line yields one packet.
func Parse(r io.Reader) ([]models.Packet, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	packets := make([]models.Packet, 0)
	for scanner.Scan() {
		line := scanner.Text()

		if strings.TrimSpace(line) == "" {
			continue
		}

		// Tshark -T ek outputs an index line before each packet.
		// We look for lines containing "layers".
		if !strings.Contains(line, "\"layers\"") {
			continue
		}

		var ekPkt EkPacket
		if err := json.Unmarshal([]byte(line), &ekPkt); err != nil {
			// Skip malformed lines
			continue
		}

		packets = append(packets, convertToModel(ekPkt))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tshark output: %v", err)
	}
	return packets, nil
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func convertToModel(ek EkPacket) models.Packet {
	var p models.Packet

	// We need at least IP info
	l := ek.Layers
	if first(l.IPSrc) == "" {
		return p
	}

	p.Src = first(l.IPSrc)
	ttl, _ := strconv.ParseUint(first(l.IPTTL), 10, 8)
	p.IP = &models.IPLayer{
		Src: p.Src,
		Dst: first(l.IPDst),
		TTL: uint8(ttl),
	}

	if len(l.TCPSrcPort) > 0 || len(l.TCPDstPort) > 0 {
		// tcp.flags is printed as hex, e.g. "0x0002".
		flags, _ := strconv.ParseUint(first(l.TCPFlags), 0, 16)
		p.TCP = &models.TCPLayer{
			SrcPort: parsePort(first(l.TCPSrcPort)),
			DstPort: parsePort(first(l.TCPDstPort)),
			Flags:   models.TCPFlags(flags & 0x1ff),
		}
		p.Payload = decodeHex(first(l.TCPPayload))
	} else if len(l.UDPSrcPort) > 0 || len(l.UDPDstPort) > 0 {
		p.UDP = &models.UDPLayer{
			SrcPort: parsePort(first(l.UDPSrcPort)),
			DstPort: parsePort(first(l.UDPDstPort)),
		}
		p.Payload = decodeHex(first(l.Data))
	}

	if q := first(l.DNSQuery); q != "" {
		p.DNS = &models.DNSLayer{Query: q}
	}

	if p.TCP != nil && p.Payload != nil {
		if req, ok := capture.ParseHTTPRequest(p.Payload); ok {
			p.Payload = req.Body
		}
	}
	if host := first(l.HTTPHost); host != "" {
		p.HTTP = &models.HTTPLayer{Host: host}
	}

	return p
}

func parsePort(s string) uint16 {
	v, _ := strconv.ParseUint(s, 10, 16)
	return uint16(v)
}

// decodeHex accepts both "47:45:54" and "474554" byte renderings.
func decodeHex(s string) []byte {
	if s == "" {
		return nil
	}
	b, err := hex.DecodeString(strings.ReplaceAll(s, ":", ""))
	if err != nil || len(b) == 0 {
		return nil
	}
	return b
}
