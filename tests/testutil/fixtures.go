package testutil

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/iho/payengine/internal/adapter/csvio"
	"github.com/iho/payengine/internal/adapter/memory"
	"github.com/iho/payengine/internal/engine"
)

// RunCSV feeds a CSV document through the full pipeline (decode, process,
// snapshot, encode) and returns the exported CSV.
func RunCSV(t *testing.T, input string, policy engine.Policy) string {
	t.Helper()

	ctx := context.Background()
	eng := engine.New(memory.NewAccountStore(), memory.NewEntryStore(), policy, zerolog.Nop(), nil)

	dec := csvio.NewDecoder(strings.NewReader(input), zerolog.Nop())
	if err := eng.Process(ctx, dec); err != nil {
		t.Fatalf("processing failed: %v", err)
	}

	snapshot, err := eng.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}

	var out bytes.Buffer
	if err := csvio.NewEncoder(&out).Encode(snapshot); err != nil {
		t.Fatalf("encoding failed: %v", err)
	}
	return out.String()
}

// CSV joins rows into a CSV document with the standard header.
func CSV(rows ...string) string {
	return strings.Join(append([]string{"type,client,tx,amount"}, rows...), "\n") + "\n"
}
