package rules

import (
	"testing"

	"github.com/nerrad567/ventsim-core/internal/register"
)

// newTestEngine returns an engine over a fresh factory-default table.
func newTestEngine(t *testing.T) (*Engine, *register.Table) {
	t.Helper()
	tbl := register.NewTable(register.Catalog())
	return NewEngine(tbl, nil), tbl
}

// externalWrite mimics the device write path: commit, then dispatch.
func externalWrite(e *Engine, tbl *register.Table, address, value int) {
	committed, outcome := tbl.Write(address, value, true)
	if outcome == register.OutcomeCommitted {
		e.Apply(address, committed)
	}
}

func assertValue(t *testing.T, tbl *register.Table, address, want int) {
	t.Helper()
	if got := tbl.Value(address); got != want {
		t.Errorf("register %d = %d, want %d", address, got, want)
	}
}

func assertFanOutputs(t *testing.T, tbl *register.Table, supply, extract int) {
	t.Helper()
	assertValue(t, tbl, register.SupplyFanPct, supply)
	assertValue(t, tbl, register.ExtractFanPct, extract)
	assertValue(t, tbl, register.SupplyRPM, RPM(supply))
	assertValue(t, tbl, register.ExtractRPM, RPM(extract))
	running := 0
	if supply > 0 || extract > 0 {
		running = 1
	}
	assertValue(t, tbl, register.FansRunning, running)
}

func TestEngine_ModeRequest(t *testing.T) {
	tests := []struct {
		name        string
		request     int
		wantMode    Mode
		wantSupply  int
		wantExtract int
	}{
		{"auto uses normal level", 1, ModeAuto, 50, 50},
		{"manual uses level 3", 2, ModeManual, 50, 50},
		{"crowded fixed", 3, ModeCrowded, 90, 90},
		{"refresh fixed", 4, ModeRefresh, 100, 100},
		{"fireplace 4/2", 5, ModeFireplace, 70, 30},
		{"away 2/2", 6, ModeAway, 30, 30},
		{"holiday 1/1", 7, ModeHoliday, 20, 20},
		{"request 0 clamps to auto", 0, ModeAuto, 50, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, tbl := newTestEngine(t)
			// Start from a different mode so the change is visible.
			e.SetMode(ModeRefresh)

			externalWrite(e, tbl, register.ModeRequest, tt.request)

			if got := e.CurrentMode(); got != tt.wantMode {
				t.Errorf("CurrentMode() = %v, want %v", got, tt.wantMode)
			}
			assertFanOutputs(t, tbl, tt.wantSupply, tt.wantExtract)
		})
	}
}

func TestEngine_ModeRequestMatchesApplyFanSpeeds(t *testing.T) {
	for n := 1; n <= 13; n++ {
		e, tbl := newTestEngine(t)
		externalWrite(e, tbl, register.ModeRequest, n)

		if got := e.CurrentMode(); got != Mode(n-1) {
			t.Errorf("request %d: mode = %v, want %v", n, got, Mode(n-1))
		}

		supply, extract := tbl.Value(register.SupplyFanPct), tbl.Value(register.ExtractFanPct)
		out, ok := e.ApplyFanSpeeds(Mode(n - 1))
		if !ok {
			t.Fatalf("request %d: mode %v has no fan mapping", n, Mode(n-1))
		}
		if out.SupplyPct != supply || out.ExtractPct != extract {
			t.Errorf("request %d: outputs %d/%d, recomputed %d/%d", n, supply, extract, out.SupplyPct, out.ExtractPct)
		}
	}
}

func TestEngine_CrowdedIgnoresLevels(t *testing.T) {
	e, tbl := newTestEngine(t)
	for _, addr := range []int{register.CrowdedSupplyLevel, register.CrowdedExtractLevel, register.SupplyPctHigh, register.ExtractPctHigh} {
		tbl.Write(addr, 0, true)
	}

	externalWrite(e, tbl, register.ModeRequest, int(ModeCrowded)+1)

	assertFanOutputs(t, tbl, 90, 90)
}

func TestEngine_ManualLevel(t *testing.T) {
	t.Run("switches into manual", func(t *testing.T) {
		e, tbl := newTestEngine(t)

		externalWrite(e, tbl, register.ManualLevel, 5)

		if got := e.CurrentMode(); got != ModeManual {
			t.Errorf("CurrentMode() = %v, want manual", got)
		}
		assertFanOutputs(t, tbl, 100, 100)
	})

	t.Run("reapplies when already manual", func(t *testing.T) {
		e, tbl := newTestEngine(t)
		e.SetMode(ModeManual)

		externalWrite(e, tbl, register.ManualLevel, 1)

		if got := e.CurrentMode(); got != ModeManual {
			t.Errorf("CurrentMode() = %v, want manual", got)
		}
		assertFanOutputs(t, tbl, 20, 20)
	})

	t.Run("level zero stops fans", func(t *testing.T) {
		e, tbl := newTestEngine(t)

		externalWrite(e, tbl, register.ManualLevel, 0)

		assertFanOutputs(t, tbl, 0, 0)
	})
}

func TestEngine_TimedModeTriggers(t *testing.T) {
	tests := []struct {
		address int
		mode    Mode
	}{
		{register.CrowdedTime, ModeCrowded},
		{register.RefreshTime, ModeRefresh},
		{register.FireplaceTime, ModeFireplace},
		{register.AwayTime, ModeAway},
		{register.HolidayTime, ModeHoliday},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			e, tbl := newTestEngine(t)

			externalWrite(e, tbl, tt.address, 2)

			if got := e.CurrentMode(); got != tt.mode {
				t.Errorf("CurrentMode() = %v, want %v", got, tt.mode)
			}
		})

		t.Run(tt.mode.String()+" zero is ignored", func(t *testing.T) {
			e, tbl := newTestEngine(t)

			externalWrite(e, tbl, tt.address, 0)

			if got := e.CurrentMode(); got != ModeAuto {
				t.Errorf("CurrentMode() = %v, want auto", got)
			}
		})
	}
}

func TestEngine_AwayUsesConfiguredLevels(t *testing.T) {
	e, tbl := newTestEngine(t)
	tbl.Write(register.AwaySupplyLevel, 4, true)  // High
	tbl.Write(register.AwayExtractLevel, 1, true) // Minimum
	tbl.Write(register.SupplyPctHigh, 65, true)

	externalWrite(e, tbl, register.AwayTime, 12)

	if got := e.CurrentMode(); got != ModeAway {
		t.Fatalf("CurrentMode() = %v, want away", got)
	}
	assertFanOutputs(t, tbl, 65, 20)
}

func TestEngine_FilterReset(t *testing.T) {
	for _, trigger := range []int{register.FilterReset, register.FilterResetAlt} {
		e, tbl := newTestEngine(t)
		tbl.Write(register.FilterRemainingLow, 0, false)
		tbl.Write(register.FilterRemainingHi, 0, false)

		externalWrite(e, tbl, trigger, 1)

		low := tbl.Value(register.FilterRemainingLow)
		high := tbl.Value(register.FilterRemainingHi)
		if got := high<<16 | low; got != 31104000 {
			t.Errorf("trigger %d: remaining = %d, want 31104000", trigger, got)
		}
	}
}

func TestEngine_FilterResetUsesPeriod(t *testing.T) {
	e, tbl := newTestEngine(t)
	tbl.Write(register.FilterPeriodMonths, 3, true)

	if got := e.ResetFilter(); got != 3*30*24*3600 {
		t.Errorf("ResetFilter() = %d, want %d", got, 3*30*24*3600)
	}
	low := tbl.Value(register.FilterRemainingLow)
	high := tbl.Value(register.FilterRemainingHi)
	if high<<16|low != 3*30*24*3600 {
		t.Errorf("registers hold %d", high<<16|low)
	}
}

func TestEngine_Demand(t *testing.T) {
	tests := []struct {
		name                                  string
		setpoint, supply                      int
		heater, cooler, triac, heatOn, coolOn int
	}{
		{"heating 2.0C", 220, 200, 40, 0, 1, 1, 0},
		{"heating saturates", 300, 100, 100, 0, 1, 1, 0},
		{"cooling 1.5C", 180, 195, 0, 30, 0, 0, 1},
		{"inside deadband", 220, 216, 0, 0, 0, 0, 0},
		{"edge of deadband", 220, 215, 0, 0, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, tbl := newTestEngine(t)
			tbl.Write(register.SupplyTemp, tt.supply, false)
			// Leave stale flags behind to check they are cleared.
			tbl.Write(register.CoolerActive, 1, false)
			tbl.Write(register.HeaterActive, 1, false)

			externalWrite(e, tbl, register.Setpoint, tt.setpoint)

			assertValue(t, tbl, register.HeaterDemand, tt.heater)
			assertValue(t, tbl, register.CoolerDemand, tt.cooler)
			assertValue(t, tbl, register.HeaterOutput, tt.triac)
			assertValue(t, tbl, register.HeaterActive, tt.heatOn)
			assertValue(t, tbl, register.CoolerActive, tt.coolOn)
		})
	}
}

func TestEngine_Mirrors(t *testing.T) {
	pairs := [][2]int{
		{register.FreeCoolingSwitch, register.FreeCoolingActive},
		{register.EcoModeSwitch, register.EcoModeActive},
		{register.HeatExchangerSwitch, register.HeatExchangerActive},
	}

	for _, p := range pairs {
		e, tbl := newTestEngine(t)

		externalWrite(e, tbl, p[0], 1)
		assertValue(t, tbl, p[1], 1)

		externalWrite(e, tbl, p[0], 0)
		assertValue(t, tbl, p[1], 0)
	}
}

func TestEngine_UnruledAddressHasNoEffect(t *testing.T) {
	e, tbl := newTestEngine(t)
	before := tbl.Snapshot()

	if e.Apply(register.FanRegulationUnit, 2) {
		t.Error("Apply() reported a rule for an address without one")
	}

	after := tbl.Snapshot()
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("register %d changed: %+v -> %+v", before[i].Address, before[i], after[i])
		}
	}
}

func TestEngine_CascadeIsOneLevel(t *testing.T) {
	// The mode-request rule writes 1161. If cascades recursed, a rule on 1161
	// would run; install one and check it never fires.
	tbl := register.NewTable(register.Catalog())
	e := NewEngine(tbl, nil)
	fired := false
	e.rules[register.CurrentMode] = Rule{Name: "spy", Apply: func(int) { fired = true }}

	externalWrite(e, tbl, register.ModeRequest, 3)

	if fired {
		t.Error("rule on an engine-written address was dispatched")
	}
}

func TestEngine_ApplyFanSpeedsIdempotent(t *testing.T) {
	for m := ModeAuto; m <= ModePressureGuard; m++ {
		e, tbl := newTestEngine(t)

		first, _ := e.ApplyFanSpeeds(m)
		snap := tbl.Snapshot()
		second, _ := e.ApplyFanSpeeds(m)

		if first != second {
			t.Errorf("mode %v: %+v then %+v", m, first, second)
		}
		for i, r := range tbl.Snapshot() {
			if r != snap[i] {
				t.Errorf("mode %v: register %d changed on re-apply", m, r.Address)
			}
		}
	}
}

func TestEngine_MissingRegistersDegradeToZero(t *testing.T) {
	// A table holding only the outputs: every input resolves to the default.
	tbl := register.NewTable([]register.Register{
		{Address: register.CurrentMode, Max: 12},
		{Address: register.SupplyFanPct, Value: 50, Max: 100},
		{Address: register.ExtractFanPct, Value: 50, Max: 100},
		{Address: register.FansRunning, Value: 1, Max: 1},
		{Address: register.SupplyRPM, Value: 2500, Max: 5000},
		{Address: register.ExtractRPM, Value: 2500, Max: 5000},
	})
	e := NewEngine(tbl, nil)

	e.Apply(register.ModeRequest, 6) // Away: level registers missing

	assertFanOutputs(t, tbl, 0, 0)
	if d := e.RecomputeDemand(); d != (Demand{}) {
		t.Errorf("RecomputeDemand() = %+v, want zero", d)
	}
}

func TestRPM(t *testing.T) {
	tests := map[int]int{0: 0, 20: 1000, 33: 1650, 50: 2500, 90: 4500, 100: 5000}
	for pct, want := range tests {
		if got := RPM(pct); got != want {
			t.Errorf("RPM(%d) = %d, want %d", pct, got, want)
		}
	}
}

func TestMode_String(t *testing.T) {
	if ModeVacuumCleaner.String() != "vacuum_cleaner" {
		t.Errorf("ModeVacuumCleaner.String() = %q", ModeVacuumCleaner.String())
	}
	if Mode(99).String() != "mode(99)" {
		t.Errorf("Mode(99).String() = %q", Mode(99).String())
	}
}

func TestEngine_Addresses(t *testing.T) {
	e, _ := newTestEngine(t)

	got := e.Addresses()
	// 2 mode + 1 setpoint + 2 filter + 5 timed + 3 mirrors
	if len(got) != 13 {
		t.Errorf("len(Addresses()) = %d, want 13: %v", len(got), got)
	}
	for i := 1; i < len(got); i++ {
		if got[i-1] >= got[i] {
			t.Errorf("Addresses() not sorted: %v", got)
		}
	}
}
