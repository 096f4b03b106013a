package sim

import "sort"

// LedgerEntry accumulates the realized cost of the invocations at one step.
type LedgerEntry struct {
	ServiceTime float64 `json:"st"`
	Carbon      float64 `json:"carbon"`
}

// LedgerRecord is a flattened ledger entry, used for CSV export.
type LedgerRecord struct {
	Function    string  `csv:"function"`
	InvokeTime  int64   `csv:"invoke_time"`
	ServiceTime float64 `csv:"service_time"`
	Carbon      float64 `csv:"carbon"`
}

// ResultLedger maps each function to its per-invocation-time costs.
// Entries are only ever created or added to.
type ResultLedger struct {
	entries []map[int64]*LedgerEntry
}

// NewResultLedger creates a ledger for numFunctions functions.
func NewResultLedger(numFunctions int) *ResultLedger {
	l := &ResultLedger{entries: make([]map[int64]*LedgerEntry, numFunctions)}
	for i := range l.entries {
		l.entries[i] = make(map[int64]*LedgerEntry)
	}
	return l
}

// Record adds an invocation's service time and carbon at invokeTime.
func (l *ResultLedger) Record(functionID int, invokeTime int64, serviceTime, carbon float64) {
	e := l.entry(functionID, invokeTime)
	e.ServiceTime += serviceTime
	e.Carbon += carbon
}

// AddCarbon credits keep-alive carbon settled after the triggering invocation.
func (l *ResultLedger) AddCarbon(functionID int, invokeTime int64, carbon float64) {
	l.entry(functionID, invokeTime).Carbon += carbon
}

// Entry returns a copy of the entry at invokeTime.
func (l *ResultLedger) Entry(functionID int, invokeTime int64) (LedgerEntry, bool) {
	e, ok := l.entries[functionID][invokeTime]
	if !ok {
		return LedgerEntry{}, false
	}
	return *e, true
}

// Function returns a copy of all entries of one function.
func (l *ResultLedger) Function(functionID int) map[int64]LedgerEntry {
	out := make(map[int64]LedgerEntry, len(l.entries[functionID]))
	for t, e := range l.entries[functionID] {
		out[t] = *e
	}
	return out
}

// Totals sums service time and carbon over every entry.
func (l *ResultLedger) Totals() (serviceTime, carbon float64) {
	for i := range l.entries {
		for _, t := range l.times(i) {
			e := l.entries[i][t]
			serviceTime += e.ServiceTime
			carbon += e.Carbon
		}
	}
	return serviceTime, carbon
}

// Records flattens the ledger in function then time order.
func (l *ResultLedger) Records(functions []Function) []LedgerRecord {
	var out []LedgerRecord
	for i := range l.entries {
		name := ""
		if i < len(functions) {
			name = functions[i].Name
		}
		for _, t := range l.times(i) {
			e := l.entries[i][t]
			out = append(out, LedgerRecord{Function: name, InvokeTime: t, ServiceTime: e.ServiceTime, Carbon: e.Carbon})
		}
	}
	return out
}

func (l *ResultLedger) entry(functionID int, invokeTime int64) *LedgerEntry {
	e, ok := l.entries[functionID][invokeTime]
	if !ok {
		e = &LedgerEntry{}
		l.entries[functionID][invokeTime] = e
	}
	return e
}

func (l *ResultLedger) times(functionID int) []int64 {
	times := make([]int64, 0, len(l.entries[functionID]))
	for t := range l.entries[functionID] {
		times = append(times, t)
	}
	sort.Slice(times, func(a, b int) bool { return times[a] < times[b] })
	return times
}
