package utils

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"cryptoSRBounce/internal/domain"
)

// WriteKlinesToCSV saves klines with a full header row.
func WriteKlinesToCSV(klines []*domain.Kline, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	writer.Write([]string{"open_time", "close_time", "symbol", "interval", "open", "high", "low", "close", "volume"})

	for _, k := range klines {
		writer.Write([]string{
			k.OpenTime.Format(time.RFC3339),
			k.CloseTime.Format(time.RFC3339),
			k.Symbol,
			k.Interval,
			strconv.FormatFloat(k.Open, 'f', -1, 64),
			strconv.FormatFloat(k.High, 'f', -1, 64),
			strconv.FormatFloat(k.Low, 'f', -1, 64),
			strconv.FormatFloat(k.Close, 'f', -1, 64),
			strconv.FormatFloat(k.Volume, 'f', -1, 64),
		})
	}
	return writer.Error()
}

// ReadKlinesFromCSV loads klines from a CSV file. Two header layouts are
// accepted: the full nine-column layout written by WriteKlinesToCSV, and a
// minimal six-column layout (timestamp,open,high,low,close,volume) with
// millisecond timestamps, common in exported exchange dumps.
func ReadKlinesFromCSV(filename string) ([]*domain.Kline, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("csv file %s has no data rows", filename)
	}

	header := records[0]
	switch {
	case len(header) >= 9 && header[0] == "open_time":
		return parseFullKlines(records[1:])
	case len(header) >= 6 && header[0] == "timestamp":
		return parseMinimalKlines(records[1:])
	default:
		return nil, fmt.Errorf("csv file %s has unrecognized header %v", filename, header)
	}
}

func parseFullKlines(rows [][]string) ([]*domain.Kline, error) {
	klines := make([]*domain.Kline, 0, len(rows))
	for i, row := range rows {
		if len(row) < 9 {
			return nil, fmt.Errorf("row %d: expected 9 columns, got %d", i+2, len(row))
		}
		openTime, err := time.Parse(time.RFC3339, row[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid open_time: %w", i+2, err)
		}
		closeTime, err := time.Parse(time.RFC3339, row[1])
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid close_time: %w", i+2, err)
		}
		vals, err := parseFloats(row[4:9], i+2)
		if err != nil {
			return nil, err
		}
		klines = append(klines, &domain.Kline{
			OpenTime:  openTime.UTC(),
			CloseTime: closeTime.UTC(),
			Symbol:    row[2],
			Interval:  row[3],
			Open:      vals[0],
			High:      vals[1],
			Low:       vals[2],
			Close:     vals[3],
			Volume:    vals[4],
		})
	}
	return klines, nil
}

func parseMinimalKlines(rows [][]string) ([]*domain.Kline, error) {
	klines := make([]*domain.Kline, 0, len(rows))
	for i, row := range rows {
		if len(row) < 6 {
			return nil, fmt.Errorf("row %d: expected 6 columns, got %d", i+2, len(row))
		}
		ms, err := strconv.ParseInt(row[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid timestamp: %w", i+2, err)
		}
		vals, err := parseFloats(row[1:6], i+2)
		if err != nil {
			return nil, err
		}
		openTime := time.UnixMilli(ms).UTC()
		klines = append(klines, &domain.Kline{
			OpenTime: openTime,
			// Close time is unknown in this layout; reuse the open time so
			// ordering checks still hold.
			CloseTime: openTime,
			Open:      vals[0],
			High:      vals[1],
			Low:       vals[2],
			Close:     vals[3],
			Volume:    vals[4],
		})
	}
	return klines, nil
}

func parseFloats(fields []string, rowNum int) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid number %q: %w", rowNum, f, err)
		}
		out[i] = v
	}
	return out, nil
}

// WriteTradesToCSV saves simulated trades for later comparison.
func WriteTradesToCSV(trades []*domain.Trade, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	writer.Write([]string{"symbol", "direction", "entry_bar", "exit_bar", "entry_price", "exit_price",
		"entry_time", "exit_time", "exit_reason", "truncated", "atr_at_entry", "quantity", "pnl_pct", "pnl_usd"})

	for _, t := range trades {
		writer.Write([]string{
			t.Symbol,
			string(t.Direction),
			strconv.Itoa(t.EntryBarIndex),
			strconv.Itoa(t.ExitBarIndex),
			strconv.FormatFloat(t.EntryPrice, 'f', -1, 64),
			strconv.FormatFloat(t.ExitPrice, 'f', -1, 64),
			t.EntryTime.Format(time.RFC3339),
			t.ExitTime.Format(time.RFC3339),
			string(t.ExitReason),
			strconv.FormatBool(t.Truncated),
			strconv.FormatFloat(t.ATRAtEntry, 'f', -1, 64),
			strconv.FormatFloat(t.Quantity, 'f', -1, 64),
			strconv.FormatFloat(t.PnLPct, 'f', -1, 64),
			strconv.FormatFloat(t.PnLUSD, 'f', -1, 64),
		})
	}
	return writer.Error()
}

// ReadTradesFromCSV loads trades previously written by WriteTradesToCSV.
func ReadTradesFromCSV(filename string) ([]*domain.Trade, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("csv file %s is empty", filename)
	}

	trades := make([]*domain.Trade, 0, len(records)-1)
	for i, row := range records[1:] {
		if len(row) < 14 {
			return nil, fmt.Errorf("row %d: expected 14 columns, got %d", i+2, len(row))
		}
		entryBar, err := strconv.Atoi(row[2])
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid entry_bar: %w", i+2, err)
		}
		exitBar, err := strconv.Atoi(row[3])
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid exit_bar: %w", i+2, err)
		}
		entryTime, err := time.Parse(time.RFC3339, row[6])
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid entry_time: %w", i+2, err)
		}
		exitTime, err := time.Parse(time.RFC3339, row[7])
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid exit_time: %w", i+2, err)
		}
		truncated, err := strconv.ParseBool(row[9])
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid truncated flag: %w", i+2, err)
		}
		prices, err := parseFloats([]string{row[4], row[5], row[10], row[11], row[12], row[13]}, i+2)
		if err != nil {
			return nil, err
		}
		trades = append(trades, &domain.Trade{
			Symbol:        row[0],
			Direction:     domain.Direction(row[1]),
			EntryBarIndex: entryBar,
			ExitBarIndex:  exitBar,
			EntryPrice:    prices[0],
			ExitPrice:     prices[1],
			EntryTime:     entryTime.UTC(),
			ExitTime:      exitTime.UTC(),
			ExitReason:    domain.ExitReason(row[8]),
			Truncated:     truncated,
			ATRAtEntry:    prices[2],
			Quantity:      prices[3],
			PnLPct:        prices[4],
			PnLUSD:        prices[5],
		})
	}
	return trades, nil
}
