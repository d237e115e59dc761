package save

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"savetrail/internal/config"
)

var (
	// ErrInvalidFormat marks saves that do not parse or lack the minimal
	// field set. Batch callers skip the file and continue.
	ErrInvalidFormat = errors.New("invalid save format")

	// ErrImplausible marks saves that parse fine but look like fresh
	// templates rather than in-progress games. Distinct from a duplicate
	// and from a hard failure so operators can tell the three apart.
	ErrImplausible = errors.New("implausible save document")
)

// FormatError carries the reason a document failed format validation. It
// unwraps to ErrInvalidFormat so batch callers can classify with errors.Is
// while diagnostics read the reason with errors.As.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid save format: %s", e.Reason)
}

func (e *FormatError) Unwrap() error {
	return ErrInvalidFormat
}

// requiredFields is the minimal set every real save carries regardless of
// game version.
var requiredFields = []string{"date", "balance"}

// entityCollections is checked for at least one non-empty member; a save
// with none of them populated carries nothing worth snapshotting.
var entityCollections = []string{"employees", "transactions", "candidates", "products", "featureInstances"}

func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	doc.SourceFile = path
	return doc, nil
}

func Parse(data []byte) (*Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, &FormatError{Reason: err.Error()}
	}

	doc := &Document{Fields: fields, Raw: data}

	for _, field := range requiredFields {
		if !doc.Has(field) {
			return nil, &FormatError{Reason: fmt.Sprintf("missing required field %q", field)}
		}
	}

	populated := false
	for _, field := range entityCollections {
		if doc.CollectionLen(field) > 0 {
			populated = true
			break
		}
	}
	if !populated {
		return nil, &FormatError{Reason: "no populated entity collection"}
	}

	return doc, nil
}

// CheckPlausible guards history against template saves: near-zero balance
// and an empty workforce mean the document is a placeholder, not a real
// in-progress game. Returns a wrapped ErrImplausible describing the reason.
func CheckPlausible(doc *Document, cfg config.PlausibilityConfig) error {
	if cfg.RequireEmployees {
		if !doc.Has("employees") {
			return fmt.Errorf("%w: no employees field", ErrImplausible)
		}
		if doc.CollectionLen("employees") == 0 {
			return fmt.Errorf("%w: empty workforce", ErrImplausible)
		}
	}

	minBalance, err := cfg.MinBalanceDecimal()
	if err != nil {
		return err
	}
	if minBalance.IsZero() {
		return nil
	}

	balance, err := Balance(doc)
	if err != nil {
		return fmt.Errorf("%w: unreadable balance", ErrImplausible)
	}
	if balance.LessThan(minBalance) {
		return fmt.Errorf("%w: balance %s below threshold %s", ErrImplausible, balance, minBalance)
	}
	return nil
}

// Balance returns the save's balance with source precision.
func Balance(doc *Document) (decimal.Decimal, error) {
	num, ok := doc.Number("balance")
	if !ok {
		return decimal.Zero, fmt.Errorf("balance is not numeric")
	}
	d, err := decimal.NewFromString(num.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing balance: %w", err)
	}
	return d, nil
}
