package theme

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fburn/internal/model"
)

func TestByNameFallsBack(t *testing.T) {
	if ByName("tokyo-night").Name != "tokyo-night" {
		t.Error("known theme not found")
	}
	if ByName("nope").Name != FlexokiDark.Name {
		t.Error("unknown theme should fall back to flexoki-dark")
	}
	if len(Names()) != len(All) {
		t.Error("Names should list every theme")
	}
}

func TestSemanticColors(t *testing.T) {
	th := FlexokiDark
	if th.ForStatus(model.BudgetOverBudget) != th.Red || th.ForStatus(model.BudgetOK) != th.Green {
		t.Error("budget status colors")
	}
	if th.ForAlert(model.AlertCritical) != th.Red || th.ForAlert(model.AlertWarning) != th.Orange {
		t.Error("alert colors")
	}
	if th.ForAmount(decimal.NewFromInt(-1)) != th.Red || th.ForAmount(decimal.NewFromInt(1)) != th.Green {
		t.Error("amount colors")
	}
	if th.ForTone(model.ToneNeutral) != th.TextMuted {
		t.Error("neutral tone")
	}
}
