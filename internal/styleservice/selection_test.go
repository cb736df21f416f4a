package styleservice

import (
	"errors"
	"testing"

	"github.com/starford/raido/internal/apperr"
)

func TestParseSelection(t *testing.T) {
	sel, err := ParseSelection(" Heading1 , , Quote ")
	if err != nil {
		t.Fatalf("ParseSelection: %v", err)
	}
	if sel.All {
		t.Error("wildcard flagged without a wildcard entry")
	}
	if len(sel.Keys) != 2 || sel.Keys[0] != "Heading1" || sel.Keys[1] != "Quote" {
		t.Errorf("keys = %v, want [Heading1 Quote]", sel.Keys)
	}
}

func TestParseSelectionWildcard(t *testing.T) {
	sel, err := ParseSelection("*")
	if err != nil {
		t.Fatalf("ParseSelection: %v", err)
	}
	if !sel.All {
		t.Error("wildcard not recognized")
	}
}

func TestParseSelectionMixed(t *testing.T) {
	sel, err := ParseSelection("Heading1,*")
	if err != nil {
		t.Fatalf("ParseSelection: %v", err)
	}
	if !sel.All || len(sel.Keys) != 1 {
		t.Errorf("selection = %+v, want wildcard plus one key", sel)
	}
}

func TestParseSelectionEmpty(t *testing.T) {
	for _, raw := range []string{"", "   ", ",,,"} {
		if _, err := ParseSelection(raw); !errors.Is(err, apperr.ErrInvalidSelection) {
			t.Errorf("ParseSelection(%q) err = %v, want ErrInvalidSelection", raw, err)
		}
	}
}

func TestNewSelection(t *testing.T) {
	sel, err := NewSelection([]string{"A", " B "})
	if err != nil {
		t.Fatalf("NewSelection: %v", err)
	}
	if len(sel.Keys) != 2 || sel.Keys[1] != "B" {
		t.Errorf("keys = %v", sel.Keys)
	}
}
