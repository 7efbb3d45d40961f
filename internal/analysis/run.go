package analysis

import (
	"context"
	"errors"
	"fmt"

	"netthreat/internal/models"
)

var (
	// ErrInvalidInput is returned when Run is called without a packet source.
	ErrInvalidInput = errors.New("invalid input")
	// ErrAnalysisFailed wraps any error reported by the packet source.
	ErrAnalysisFailed = errors.New("analysis failed")
)

// PacketSource produces the decoded packets of one capture, in capture order.
type PacketSource interface {
	Packets(ctx context.Context) ([]models.Packet, error)
}

// PacketSlice is a PacketSource over packets that are already in memory.
type PacketSlice []models.Packet

func (s PacketSlice) Packets(context.Context) ([]models.Packet, error) {
	return s, nil
}

// Run reads every packet from src and analyzes them. Either a complete
// result or an error is returned, never both.
func (e *Engine) Run(ctx context.Context, src PacketSource) (*AnalysisResult, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: nil packet source", ErrInvalidInput)
	}
	packets, err := src.Packets(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAnalysisFailed, err)
	}
	return e.Analyze(packets), nil
}
