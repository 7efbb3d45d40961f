package capture

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"netthreat/internal/models"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

// pcapng section header block type; the value is byte-order independent.
const pcapngMagic = 0x0A0D0D0A

// File is a packet source backed by a pcap or pcapng file on disk.
type File struct {
	Path string
}

// Packets opens the file and decodes every packet in it.
func (f File) Packets(ctx context.Context) ([]models.Packet, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open capture: %v", err)
	}
	defer file.Close()

	return Read(ctx, file)
}

// Read decodes a pcap or pcapng stream. The format is detected from the
// first four bytes.
func Read(ctx context.Context, r io.Reader) ([]models.Packet, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(4)
	if err != nil {
		return nil, fmt.Errorf("failed to read capture header: %v", err)
	}

	var (
		dataSource gopacket.PacketDataSource
		linkType   layers.LinkType
	)
	if binary.LittleEndian.Uint32(magic) == pcapngMagic {
		ng, err := pcapgo.NewNgReader(br, pcapgo.DefaultNgReaderOptions)
		if err != nil {
			return nil, fmt.Errorf("invalid pcapng capture: %v", err)
		}
		dataSource, linkType = ng, ng.LinkType()
	} else {
		rd, err := pcapgo.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("invalid pcap capture: %v", err)
		}
		dataSource, linkType = rd, rd.LinkType()
	}

	source := gopacket.NewPacketSource(dataSource, linkType)
	source.DecodeOptions.Lazy = true

	packets := make([]models.Packet, 0)
	for {
		if len(packets)%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		p, err := source.NextPacket()
		if errors.Is(err, io.EOF) {
			return packets, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read packet %d: %v", len(packets)+1, err)
		}
		packets = append(packets, Decode(p))
	}
}
