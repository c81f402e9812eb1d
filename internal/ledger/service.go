package ledger

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/tableserve/pos-backend/internal/cart"
	pkgerrors "github.com/tableserve/pos-backend/pkg/errors"
	"github.com/tableserve/pos-backend/pkg/logger"
	"github.com/tableserve/pos-backend/pkg/money"
	"github.com/tableserve/pos-backend/pkg/textrec"
)

// headerPrefix is the only machine-read token in the ledger file. The
// next order number is 1 plus the count of lines carrying it,
// recomputed on every append so numbering survives process restarts.
const headerPrefix = "Order #"

const timestampLayout = "2006-01-02 15:04:05"

// Entry is a finalized order ready to be recorded.
type Entry struct {
	Lines    []cart.Line
	TaxCents int
	TipCents int
}

// Record describes the block that was written.
type Record struct {
	Number        int       `json:"number"`
	SubtotalCents int       `json:"subtotal_cents"`
	TaxCents      int       `json:"tax_cents"`
	TipCents      int       `json:"tip_cents"`
	TotalCents    int       `json:"total_cents"`
	PlacedAt      time.Time `json:"placed_at"`
}

// Service appends finalized orders to the ledger file. Blocks are only
// ever appended, never rewritten, so the file doubles as the audit
// trail for the day's sales.
type Service interface {
	Append(ctx context.Context, entry Entry) (Record, error)
	NextNumber(ctx context.Context) (int, error)
}

type service struct {
	path string
	logg *logger.Logger
	now  func() time.Time
}

// NewService wires the ledger against its backing file.
func NewService(path string, logg *logger.Logger) (Service, error) {
	if path == "" {
		return nil, fmt.Errorf("ledger path is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{path: path, logg: logg, now: time.Now}, nil
}

// NextNumber scans the ledger file for header lines. A missing file
// means no orders yet.
func (s *service) NextNumber(ctx context.Context) (int, error) {
	count, err := s.countHeaders()
	if err != nil {
		return 0, err
	}
	return count + 1, nil
}

// Append writes one order block: numbered header with timestamp, one
// line per line item, subtotal, tax, tip, total, a separator line and
// a trailing blank line.
func (s *service) Append(ctx context.Context, entry Entry) (Record, error) {
	if len(entry.Lines) == 0 {
		return Record{}, pkgerrors.New(pkgerrors.CodeValidation, "cannot record an empty order")
	}
	if entry.TaxCents < 0 || entry.TipCents < 0 {
		return Record{}, pkgerrors.New(pkgerrors.CodeValidation, "tax and tip cannot be negative").
			WithDetails(map[string]any{"tax_cents": entry.TaxCents, "tip_cents": entry.TipCents})
	}

	number, err := s.NextNumber(ctx)
	if err != nil {
		return Record{}, err
	}

	subtotal := 0
	for _, line := range entry.Lines {
		subtotal += line.ExtendedCents()
	}
	total := subtotal + entry.TaxCents + entry.TipCents
	placedAt := s.now()

	var block strings.Builder
	fmt.Fprintf(&block, "%s%d — Timestamp: %s\n", headerPrefix, number, placedAt.Format(timestampLayout))
	for _, line := range entry.Lines {
		block.WriteString(line.String())
		block.WriteByte('\n')
	}
	fmt.Fprintf(&block, "Subtotal: %s\n", money.FormatCents(subtotal))
	fmt.Fprintf(&block, "Tax: %s\n", money.FormatCents(entry.TaxCents))
	fmt.Fprintf(&block, "Tip: %s\n", money.FormatCents(entry.TipCents))
	fmt.Fprintf(&block, "Total: %s\n", money.FormatCents(total))
	block.WriteString(strings.Repeat("-", 40))
	block.WriteString("\n\n")

	if err := textrec.AppendFile(s.path, []byte(block.String())); err != nil {
		s.logg.Error(ctx, "appending order to ledger", err)
		return Record{}, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "could not append order to ledger").
			WithDetails(map[string]any{"path": s.path})
	}

	s.logg.Info(s.logg.WithOrderNumber(ctx, number), "order recorded")
	return Record{
		Number:        number,
		SubtotalCents: subtotal,
		TaxCents:      entry.TaxCents,
		TipCents:      entry.TipCents,
		TotalCents:    total,
		PlacedAt:      placedAt,
	}, nil
}

func (s *service) countHeaders() (int, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "could not read order ledger").
			WithDetails(map[string]any{"path": s.path})
	}

	count := 0
	for _, line := range strings.Split(string(data), "\n") {
		if strings.HasPrefix(line, headerPrefix) {
			count++
		}
	}
	return count, nil
}
