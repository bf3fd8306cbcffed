package bench

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/8arry/micro-transformer/internal/hostinfo"
	"github.com/8arry/micro-transformer/internal/version"
)

// Report bundles a result set with enough context to reproduce it.
type Report struct {
	ID        string        `json:"id"`
	CreatedAt time.Time     `json:"created_at"`
	Version   string        `json:"version"`
	Host      hostinfo.Info `json:"host"`
	Results   []Result      `json:"results"`
}

func NewReport(results []Result) Report {
	return Report{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Version:   version.String(),
		Host:      hostinfo.Collect(),
		Results:   results,
	}
}

func WriteJSON(w io.Writer, report Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

var csvHeader = []string{
	"seq_length", "embed_dim", "num_heads", "ff_dim", "num_layers",
	"thread_count", "implementation_type", "execution_time_ms",
	"numerical_correctness", "max_deviation",
}

func WriteCSV(w io.Writer, results []Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range results {
		record := []string{
			strconv.Itoa(r.SeqLen),
			strconv.Itoa(r.EmbedDim),
			strconv.Itoa(r.NumHeads),
			strconv.Itoa(r.FFDim),
			strconv.Itoa(r.NumLayers),
			strconv.Itoa(r.Threads),
			r.Impl,
			strconv.FormatFloat(r.Millis, 'f', 3, 64),
			strconv.FormatBool(r.Correct),
			strconv.FormatFloat(r.MaxDeviation, 'e', 6, 64),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
