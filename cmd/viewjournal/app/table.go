package app

import (
	"slices"
	"time"

	"github.com/fatih/color"
	"github.com/rodaine/table"

	"github.com/daichitakahashi/waitevent/journal"
)

type (
	row struct {
		ts         int64 // timestamp
		event      string
		transition string
		operator   string
		data       string
	}

	tablePrinter struct {
		short bool

		rows []row
	}
)

func newTablePrinter(short bool) *tablePrinter {
	return &tablePrinter{
		short: short,

		rows: []row{},
	}
}

func (p *tablePrinter) insert(v row) {
	idx, _ := slices.BinarySearchFunc(p.rows, v, func(r1, r2 row) int {
		switch {
		case r1.ts == r2.ts:
			return 0
		case r1.ts < r2.ts:
			return -1
		default:
			return 1
		}
	})

	if idx == len(p.rows) {
		p.rows = append(p.rows, v)
	} else {
		p.rows = append(p.rows, row{})
		copy(p.rows[idx+1:], p.rows[idx:])
		p.rows[idx] = v
	}
}

func (p *tablePrinter) insertTransitionLogs(event string, r *journal.TransitionRecord, filter func(journal.Transition) bool) {
	for _, l := range r.Logs {
		if !filter(l.Transition) {
			continue
		}
		var data string
		if l.Value != "" {
			data = "value=" + l.Value
		}
		p.insert(row{
			ts:         l.Timestamp,
			event:      event,
			transition: string(l.Transition),
			operator:   l.Operator,
			data:       data,
		})
	}
}

func (p *tablePrinter) print() {
	header := []any{"Time", "Elapsed", "Event", "Transition", "Data"}
	if !p.short {
		header = append(header, "Operator")
	}
	tbl := table.New(header...).
		WithHeaderFormatter(
			color.New(color.FgGreen, color.Underline).SprintfFunc(),
		).
		WithFirstColumnFormatter(
			color.New(color.FgYellow).SprintfFunc(),
		)

	var last time.Time
	for _, r := range p.rows {
		timestamp, elapsed := formatTime(r.ts, &last)
		cols := []any{timestamp, elapsed, r.event, r.transition, r.data}
		if !p.short {
			cols = append(cols, r.operator)
		}
		tbl.AddRow(cols...)
	}
	tbl.Print()
}

func formatTime(ts int64, last *time.Time) (timestamp, elapsed string) {
	t := time.Unix(0, ts)
	if !last.IsZero() {
		elapsed = t.Sub(*last).String()
	}
	*last = t
	return t.Format("15:04:05.000000"), elapsed
}
