package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"matchkey/internal/platform/config"
	"matchkey/internal/platform/logger"
	"matchkey/pkg/pii"
	"matchkey/pkg/pii/metrics"
)

// main wires the pii service and runs it as a stdin/stdout filter: one JSON
// record per input line, one normalized record per output line. Business
// logic lives in pkg/pii.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.Debug)

	svc := pii.New(cfg.PII(),
		pii.WithLogger(log),
		pii.WithMetrics(metrics.New()),
	)

	if err := run(context.Background(), svc, os.Stdin, os.Stdout); err != nil {
		log.Error("normalization aborted", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, svc *pii.Service, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	enc := json.NewEncoder(out)
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}

		var raw pii.RawRecord
		if err := json.Unmarshal(scanner.Bytes(), &raw); err != nil {
			return fmt.Errorf("line %d: decode record: %w", line, err)
		}

		normalized, err := svc.Normalize(ctx, raw)
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}

		if err := enc.Encode(normalized); err != nil {
			return fmt.Errorf("line %d: encode record: %w", line, err)
		}
	}
	return scanner.Err()
}
