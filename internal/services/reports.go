package services

import (
	"fmt"
	"slices"

	"ledger/internal/budget"
	"ledger/internal/core"
	"ledger/internal/report"
)

// cached returns a copy of the report stored under name and key for the
// current snapshot, computing it on a miss. Keys carry the snapshot
// version, so a value computed before a write is never served after it.
// Callers get their own copy; the cached value is never handed out.
func cached[T any](s *LedgerService, name, key string, compute func(*Snapshot) T, clone func(T) T) T {
	snap := s.Snapshot()
	k := fmt.Sprintf("v%d:%s:%s", snap.Version, name, key)
	if v, ok := s.opts.ReportCache.Get(k); ok {
		if r, ok := v.(T); ok {
			s.opts.Metrics.RecordReportCache(name, true)
			return clone(r)
		}
	}
	s.opts.Metrics.RecordReportCache(name, false)
	r := compute(snap)
	s.opts.ReportCache.Set(k, r)
	return clone(r)
}

func span(from, to core.Date) string {
	return from.String() + ".." + to.String()
}

func (s *LedgerService) MonthlySummary(year, month int) report.Summary {
	return cached(s, "monthly", fmt.Sprintf("%04d-%02d", year, month), func(snap *Snapshot) report.Summary {
		return snap.Reports().MonthlySummary(year, month)
	}, report.Summary.Clone)
}

func (s *LedgerService) YearlySummary(year int) report.Summary {
	return cached(s, "yearly", fmt.Sprint(year), func(snap *Snapshot) report.Summary {
		return snap.Reports().YearlySummary(year)
	}, report.Summary.Clone)
}

func (s *LedgerService) CategoryAnalysis(from, to core.Date) report.CategoryAnalysis {
	return cached(s, "categories", span(from, to), func(snap *Snapshot) report.CategoryAnalysis {
		return snap.Reports().CategoryAnalysis(from, to)
	}, report.CategoryAnalysis.Clone)
}

func (s *LedgerService) Trend(from, to core.Date) []report.MonthTotals {
	return cached(s, "trend", span(from, to), func(snap *Snapshot) []report.MonthTotals {
		return snap.Reports().Trend(from, to)
	}, slices.Clone[[]report.MonthTotals])
}

func (s *LedgerService) TopTransactions(from, to core.Date, n int) report.Top {
	return cached(s, "top", fmt.Sprintf("%s:%d", span(from, to), n), func(snap *Snapshot) report.Top {
		return snap.Reports().TopTransactions(from, to, n)
	}, report.Top.Clone)
}

// FinancialHealth scores the period. Its budget adherence part looks at the
// budgets active today, so it is not cached.
func (s *LedgerService) FinancialHealth(from, to core.Date) report.Health {
	return s.Snapshot().Reports().FinancialHealth(from, to)
}

// BudgetAnalysis evaluates the active budgets. It depends on the current
// day, so it is not cached.
func (s *LedgerService) BudgetAnalysis() report.BudgetAnalysis {
	a := s.Snapshot().Reports().Budgets()
	for _, ev := range a.Budgets {
		s.opts.Metrics.RecordEvaluation(string(ev.Status))
	}
	return a
}

// EvaluateBudgets evaluates every budget, active or not.
func (s *LedgerService) EvaluateBudgets() []budget.Evaluation {
	snap := s.Snapshot()
	evals := snap.Evaluator().EvaluateAll(snap.Budgets, snap.Ledger)
	for _, ev := range evals {
		s.opts.Metrics.RecordEvaluation(string(ev.Status))
	}
	return evals
}

// Alerts returns the over-budget and near-limit messages for active budgets.
func (s *LedgerService) Alerts() []string {
	snap := s.Snapshot()
	return snap.Evaluator().Alerts(snap.Budgets, snap.Ledger)
}
