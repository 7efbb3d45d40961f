package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"netthreat/internal/analysis"
	"netthreat/internal/capture"
	"netthreat/internal/metrics"
	"netthreat/internal/reporting"
	"netthreat/internal/tshark"
	"netthreat/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	capturePath := flag.String("r", "", "Capture file to analyze (pcap or pcapng)")
	useTshark := flag.Bool("tshark", false, "Dissect the capture with tshark instead of the built-in decoder")
	workers := flag.Int("workers", 1, "Number of goroutines for the per-packet pass")
	jsonOut := flag.String("json", "", "Write the JSON result to this path (- for stdout)")
	htmlDir := flag.String("html", "", "Write an HTML report into this directory")
	showTUI := flag.Bool("tui", false, "Browse the result in the terminal")
	metricsOut := flag.String("metrics", "", "Write Prometheus metrics to this textfile")
	flag.Parse()

	if *capturePath == "" {
		fmt.Println("Please provide a capture file with -r")
		fmt.Println("Example: ./netthreat -r traffic.pcap -json -")
		return
	}

	info, err := os.Stat(*capturePath)
	if err != nil {
		log.Fatalf("Cannot read capture: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var src analysis.PacketSource = capture.File{Path: *capturePath}
	if *useTshark {
		src = tshark.File{Path: *capturePath}
	}

	recorder := metrics.NewRecorder()
	engine := analysis.NewEngine(analysis.DefaultRules(), analysis.WithWorkers(*workers))

	start := time.Now()
	res, err := engine.Run(ctx, src)
	if err != nil {
		recorder.ObserveFailure()
		writeMetrics(recorder, *metricsOut)
		log.Fatalf("Error analyzing %s: %v", *capturePath, err)
	}
	recorder.ObserveResult(res, time.Since(start))
	log.Printf("Analyzed %d packets from %s: %d threats", res.Stats.TotalPackets, *capturePath, len(res.Threats))

	rep := reporting.NewReport(filepath.Base(*capturePath), info.Size(), res, time.Now())

	if *jsonOut != "" {
		if err := writeJSON(*jsonOut, res); err != nil {
			log.Fatalf("Error writing JSON: %v", err)
		}
	}

	if *htmlDir != "" {
		filename, err := reporting.GenerateHTMLReport(*htmlDir, rep)
		if err != nil {
			log.Fatalf("Error writing report: %v", err)
		}
		log.Printf("Report written to %s", filename)
	}

	writeMetrics(recorder, *metricsOut)

	if *showTUI {
		p := tea.NewProgram(tui.NewResultModel(rep), tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			log.Printf("Error running TUI: %v", err)
		}
	}
}

func writeJSON(path string, res *analysis.AnalysisResult) error {
	if path == "-" {
		return reporting.WriteJSON(os.Stdout, res)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := reporting.WriteJSON(f, res); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeMetrics(r *metrics.Recorder, path string) {
	if path == "" {
		return
	}
	if err := r.WriteTextfile(path); err != nil {
		log.Printf("Warning: %v", err)
	}
}
