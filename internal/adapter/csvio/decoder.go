package csvio

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/iho/payengine/internal/domain"
)

// Column names of the input format.
const (
	colType   = "type"
	colClient = "client"
	colTx     = "tx"
	colAmount = "amount"
)

var errSkipRow = errors.New("skip row")

// Decoder turns a CSV byte stream into a lazy sequence of records. Rows
// that fail structural validation (unknown type, unparsable ids, negative
// or missing amount) are logged and skipped so one bad row never stops the
// stream; only faults of the underlying reader are surfaced. The sequence
// is finite and non-restartable.
type Decoder struct {
	reader *csv.Reader
	logger zerolog.Logger
	cols   map[string]int
	line   int
}

// NewDecoder creates a Decoder over r. The header row is consumed on the
// first Next call.
func NewDecoder(r io.Reader, logger zerolog.Logger) *Decoder {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	// Dispute-chain rows may omit the trailing amount column entirely.
	cr.FieldsPerRecord = -1

	return &Decoder{
		reader: cr,
		logger: logger,
	}
}

// Next returns the next well-formed record, io.EOF at end of input, or a
// fatal read error.
func (d *Decoder) Next(ctx context.Context) (domain.Record, error) {
	if d.cols == nil {
		if err := d.readHeader(); err != nil {
			return nil, err
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := d.reader.Read()
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				d.logger.Warn().Int("line", parseErr.Line).Err(err).Msg("skipping malformed csv row")
				continue
			}
			// io.EOF ends the sequence; anything else is a source fault.
			return nil, err
		}
		d.line++

		rec, err := d.decodeRow(row)
		if err != nil {
			if errors.Is(err, errSkipRow) {
				d.logger.Warn().Int("line", d.line).Err(err).Msg("skipping invalid record")
				continue
			}
			return nil, err
		}
		return rec, nil
	}
}

func (d *Decoder) readHeader() error {
	header, err := d.reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return io.EOF
		}
		return fmt.Errorf("failed to read csv header: %w", err)
	}
	d.line++

	d.cols = make(map[string]int, len(header))
	for i, name := range header {
		d.cols[strings.TrimSpace(strings.ToLower(name))] = i
	}

	for _, required := range []string{colType, colClient, colTx} {
		if _, ok := d.cols[required]; !ok {
			return fmt.Errorf("csv header is missing the %q column", required)
		}
	}
	return nil
}

func (d *Decoder) decodeRow(row []string) (domain.Record, error) {
	kind, err := d.field(row, colType)
	if err != nil {
		return nil, err
	}

	client, err := d.clientField(row)
	if err != nil {
		return nil, err
	}
	tx, err := d.txField(row)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(kind) {
	case "deposit":
		amount, err := d.amountField(row)
		if err != nil {
			return nil, err
		}
		return domain.Deposit{Client: client, Tx: tx, Amount: amount}, nil

	case "withdrawal":
		amount, err := d.amountField(row)
		if err != nil {
			return nil, err
		}
		return domain.Withdrawal{Client: client, Tx: tx, Amount: amount}, nil

	case "dispute":
		return domain.Dispute{Client: client, Tx: tx}, nil
	case "resolve":
		return domain.Resolve{Client: client, Tx: tx}, nil
	case "chargeback":
		return domain.Chargeback{Client: client, Tx: tx}, nil

	default:
		return nil, fmt.Errorf("%w: %w", errSkipRow, fmt.Errorf("unknown record type %q", kind))
	}
}

func (d *Decoder) field(row []string, name string) (string, error) {
	idx := d.cols[name]
	if idx >= len(row) {
		return "", fmt.Errorf("%w: %w", errSkipRow, fmt.Errorf("row has no %s column", name))
	}
	return strings.TrimSpace(row[idx]), nil
}

func (d *Decoder) clientField(row []string) (domain.ClientID, error) {
	raw, err := d.field(row, colClient)
	if err != nil {
		return domain.ClientID{}, err
	}
	id, err := strconv.ParseUint(raw, 10, 16)
	if err != nil {
		return domain.ClientID{}, fmt.Errorf("%w: %w", errSkipRow, fmt.Errorf("invalid client id %q", raw))
	}
	return domain.NewClientID(uint16(id)), nil
}

func (d *Decoder) txField(row []string) (domain.TxID, error) {
	raw, err := d.field(row, colTx)
	if err != nil {
		return domain.TxID{}, err
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return domain.TxID{}, fmt.Errorf("%w: %w", errSkipRow, fmt.Errorf("invalid tx id %q", raw))
	}
	return domain.NewTxID(uint32(id)), nil
}

func (d *Decoder) amountField(row []string) (domain.Amount, error) {
	raw, err := d.field(row, colAmount)
	if err != nil {
		return domain.Amount{}, err
	}
	if raw == "" {
		return domain.Amount{}, fmt.Errorf("%w: %w", errSkipRow, errors.New("missing amount"))
	}
	amount, err := domain.ParseAmount(raw)
	if err != nil {
		return domain.Amount{}, fmt.Errorf("%w: %w", errSkipRow, fmt.Errorf("invalid amount %q: %w", raw, err))
	}
	return amount, nil
}
