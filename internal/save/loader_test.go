package save

import (
	"errors"
	"testing"

	"savetrail/internal/config"
)

const validSave = `{
	"date": "2021-05-10T12:00:00Z",
	"balance": 50000.75,
	"companyName": "testco",
	"employees": [{"id": "e1", "name": "Sam"}],
	"transactions": []
}`

func TestParse(t *testing.T) {
	t.Run("valid save parses", func(t *testing.T) {
		doc, err := Parse([]byte(validSave))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if doc.String("companyName") != "testco" {
			t.Fatalf("expected company name, got %q", doc.String("companyName"))
		}
		if doc.CollectionLen("employees") != 1 {
			t.Fatalf("expected one employee")
		}
	})

	t.Run("balance keeps source precision", func(t *testing.T) {
		doc, err := Parse([]byte(validSave))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		balance, err := Balance(doc)
		if err != nil {
			t.Fatalf("expected balance, got %v", err)
		}
		if balance.String() != "50000.75" {
			t.Fatalf("expected 50000.75, got %s", balance)
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := Parse([]byte(`{"date": `))
		if !errors.Is(err, ErrInvalidFormat) {
			t.Fatalf("expected ErrInvalidFormat, got %v", err)
		}
	})

	t.Run("not an object", func(t *testing.T) {
		_, err := Parse([]byte(`[1, 2, 3]`))
		if !errors.Is(err, ErrInvalidFormat) {
			t.Fatalf("expected ErrInvalidFormat, got %v", err)
		}
	})

	t.Run("missing required field", func(t *testing.T) {
		_, err := Parse([]byte(`{"balance": 100, "employees": [{"id": "e1"}]}`))
		if !errors.Is(err, ErrInvalidFormat) {
			t.Fatalf("expected ErrInvalidFormat, got %v", err)
		}
		var formatErr *FormatError
		if !errors.As(err, &formatErr) {
			t.Fatalf("expected FormatError, got %T", err)
		}
		if formatErr.Reason != `missing required field "date"` {
			t.Fatalf("unexpected reason %q", formatErr.Reason)
		}
	})

	t.Run("no populated entity collection", func(t *testing.T) {
		_, err := Parse([]byte(`{"date": "2021-05-10T12:00:00Z", "balance": 100, "employees": [], "transactions": []}`))
		if !errors.Is(err, ErrInvalidFormat) {
			t.Fatalf("expected ErrInvalidFormat, got %v", err)
		}
	})

	t.Run("keyed employees count", func(t *testing.T) {
		doc, err := Parse([]byte(`{"date": "2021-05-10T12:00:00Z", "balance": 100, "employees": {"e1": {"name": "Sam"}}}`))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if doc.CollectionLen("employees") != 1 {
			t.Fatalf("expected one employee")
		}
	})
}

func TestGameDay(t *testing.T) {
	t.Run("derives from date", func(t *testing.T) {
		doc, err := Parse([]byte(validSave))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		// 2021-05-10 is 18757 days after the epoch.
		if got := doc.GameDay(); got != 18757 {
			t.Fatalf("expected day 18757, got %d", got)
		}
	})

	t.Run("unparseable date is day zero", func(t *testing.T) {
		doc := &Document{Fields: map[string]any{"date": "yesterday"}}
		if got := doc.GameDay(); got != 0 {
			t.Fatalf("expected day 0, got %d", got)
		}
	})
}

func TestCheckPlausible(t *testing.T) {
	cfg := config.PlausibilityConfig{MinBalance: "1000", RequireEmployees: true}

	t.Run("real save passes", func(t *testing.T) {
		doc, err := Parse([]byte(validSave))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if err := CheckPlausible(doc, cfg); err != nil {
			t.Fatalf("expected plausible, got %v", err)
		}
	})

	t.Run("empty workforce rejected", func(t *testing.T) {
		doc, err := Parse([]byte(`{"date": "2021-05-10T12:00:00Z", "balance": 50000, "employees": [], "transactions": [{"id": "t1"}]}`))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if err := CheckPlausible(doc, cfg); !errors.Is(err, ErrImplausible) {
			t.Fatalf("expected ErrImplausible, got %v", err)
		}
	})

	t.Run("balance below threshold rejected", func(t *testing.T) {
		doc, err := Parse([]byte(`{"date": "2021-05-10T12:00:00Z", "balance": 50, "employees": [{"id": "e1"}]}`))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if err := CheckPlausible(doc, cfg); !errors.Is(err, ErrImplausible) {
			t.Fatalf("expected ErrImplausible, got %v", err)
		}
	})

	t.Run("threshold is configurable", func(t *testing.T) {
		doc, err := Parse([]byte(`{"date": "2021-05-10T12:00:00Z", "balance": 50, "employees": [{"id": "e1"}]}`))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		loose := config.PlausibilityConfig{MinBalance: "10", RequireEmployees: true}
		if err := CheckPlausible(doc, loose); err != nil {
			t.Fatalf("expected plausible under lower threshold, got %v", err)
		}
	})

	t.Run("zero threshold skips balance check", func(t *testing.T) {
		doc, err := Parse([]byte(`{"date": "2021-05-10T12:00:00Z", "balance": 0, "employees": [{"id": "e1"}]}`))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		none := config.PlausibilityConfig{RequireEmployees: true}
		if err := CheckPlausible(doc, none); err != nil {
			t.Fatalf("expected plausible, got %v", err)
		}
	})
}
