package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/iho/payengine/internal/domain"
)

// Encoder writes balance snapshots as CSV.
type Encoder struct {
	w io.Writer
}

// NewEncoder creates an Encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode serializes the balance rows, amounts rendered with four fractional
// digits, in the order given.
func (e *Encoder) Encode(balances []domain.Balance) error {
	cw := csv.NewWriter(e.w)

	if err := cw.Write([]string{"client", "available", "held", "total", "locked"}); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, b := range balances {
		row := []string{
			b.Client.String(),
			b.Available.String(),
			b.Held.String(),
			b.Total.String(),
			strconv.FormatBool(b.Locked),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write balance row for client %s: %w", b.Client, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv output: %w", err)
	}
	return nil
}
