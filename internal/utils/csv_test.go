package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"cryptoSRBounce/internal/domain"
)

func sampleKlines() []*domain.Kline {
	base := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	return []*domain.Kline{
		{
			OpenTime: base, CloseTime: base.Add(time.Hour),
			Symbol: "DOTUSDT", Interval: "1h",
			Open: 7.01, High: 7.12, Low: 6.95, Close: 7.08, Volume: 12345.6,
		},
		{
			OpenTime: base.Add(time.Hour), CloseTime: base.Add(2 * time.Hour),
			Symbol: "DOTUSDT", Interval: "1h",
			Open: 7.08, High: 7.20, Low: 7.02, Close: 7.15, Volume: 9876.5,
		},
	}
}

func TestKlinesCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "klines.csv")
	if err := WriteKlinesToCSV(sampleKlines(), path); err != nil {
		t.Fatalf("WriteKlinesToCSV: %v", err)
	}

	klines, err := ReadKlinesFromCSV(path)
	if err != nil {
		t.Fatalf("ReadKlinesFromCSV: %v", err)
	}
	want := sampleKlines()
	if len(klines) != len(want) {
		t.Fatalf("read %d klines, want %d", len(klines), len(want))
	}
	for i := range want {
		if *klines[i] != *want[i] {
			t.Errorf("kline %d = %+v, want %+v", i, klines[i], want[i])
		}
	}
}

func TestReadKlinesFromCSV_MinimalLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dump.csv")
	content := "timestamp,open,high,low,close,volume\n" +
		"1736121600000,7.01,7.12,6.95,7.08,12345.6\n" +
		"1736125200000,7.08,7.20,7.02,7.15,9876.5\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	klines, err := ReadKlinesFromCSV(path)
	if err != nil {
		t.Fatalf("ReadKlinesFromCSV: %v", err)
	}
	if len(klines) != 2 {
		t.Fatalf("read %d klines, want 2", len(klines))
	}
	want := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	if !klines[0].OpenTime.Equal(want) {
		t.Errorf("OpenTime = %s, want %s", klines[0].OpenTime, want)
	}
	if klines[0].Close != 7.08 || klines[1].Volume != 9876.5 {
		t.Errorf("values not parsed: %+v", klines)
	}
	if !klines[1].OpenTime.After(klines[0].OpenTime) {
		t.Error("timestamps must be increasing")
	}
}

func TestReadKlinesFromCSV_BadInputs(t *testing.T) {
	dir := t.TempDir()

	if _, err := ReadKlinesFromCSV(filepath.Join(dir, "missing.csv")); err == nil {
		t.Error("expected error for a missing file")
	}

	headerOnly := filepath.Join(dir, "empty.csv")
	os.WriteFile(headerOnly, []byte("timestamp,open,high,low,close,volume\n"), 0644)
	if _, err := ReadKlinesFromCSV(headerOnly); err == nil {
		t.Error("expected error for a file with no data rows")
	}

	unknown := filepath.Join(dir, "unknown.csv")
	os.WriteFile(unknown, []byte("a,b,c\n1,2,3\n"), 0644)
	if _, err := ReadKlinesFromCSV(unknown); err == nil {
		t.Error("expected error for an unrecognized header")
	}

	badNumber := filepath.Join(dir, "bad.csv")
	os.WriteFile(badNumber, []byte("timestamp,open,high,low,close,volume\n1736121600000,x,7.12,6.95,7.08,1\n"), 0644)
	if _, err := ReadKlinesFromCSV(badNumber); err == nil {
		t.Error("expected error for a malformed number")
	}
}

func TestTradesCSVRoundTrip(t *testing.T) {
	base := time.Date(2025, 1, 6, 6, 0, 0, 0, time.UTC)
	trades := []*domain.Trade{
		{
			Symbol: "DOTUSDT", Direction: domain.Long,
			EntryBarIndex: 6, ExitBarIndex: 9,
			EntryPrice: 102.3, ExitPrice: 106.63,
			EntryTime: base, ExitTime: base.Add(3 * time.Hour),
			ExitReason: domain.ExitTarget, Truncated: false,
			ATRAtEntry: 2.1667, Quantity: 15.38, PnLPct: 4.23, PnLUSD: 423.59,
		},
		{
			Symbol: "DOTUSDT", Direction: domain.Short,
			EntryBarIndex: 20, ExitBarIndex: 30,
			EntryPrice: 108, ExitPrice: 109,
			EntryTime: base.Add(24 * time.Hour), ExitTime: base.Add(34 * time.Hour),
			ExitReason: domain.ExitTime, Truncated: true,
			ATRAtEntry: 1.5, Quantity: 10, PnLPct: -0.93, PnLUSD: -92.59,
		},
	}

	path := filepath.Join(t.TempDir(), "trades.csv")
	if err := WriteTradesToCSV(trades, path); err != nil {
		t.Fatalf("WriteTradesToCSV: %v", err)
	}
	got, err := ReadTradesFromCSV(path)
	if err != nil {
		t.Fatalf("ReadTradesFromCSV: %v", err)
	}
	if len(got) != len(trades) {
		t.Fatalf("read %d trades, want %d", len(got), len(trades))
	}
	for i := range trades {
		if *got[i] != *trades[i] {
			t.Errorf("trade %d = %+v, want %+v", i, got[i], trades[i])
		}
	}
}
