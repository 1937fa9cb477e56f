// Package report renders stored transactions and account summaries as
// terminal tables.
package report

import (
	"io"

	"fjacquet/ledger-import/internal/storage"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/shopspring/decimal"
)

// RenderSummaries writes one row per account plus a per-type totals
// section. Outflow and inflow column names follow the account type:
// charges/payments for credit cards, expenses/income for bank accounts.
func RenderSummaries(w io.Writer, accounts []storage.AccountSummary, totals []storage.TypeSummary) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Account", "Type", "Institution", "Transactions", "Out", "In", "Net"})

	for _, sm := range accounts {
		t.AppendRow(table.Row{
			sm.Label,
			typeLabel(sm),
			sm.Institution,
			sm.Count,
			formatAmount(sm.Outflow.Neg()),
			formatAmount(sm.Inflow),
			formatAmount(sm.Net),
		})
	}
	t.Render()

	if len(totals) == 0 {
		return
	}

	tt := table.NewWriter()
	tt.SetOutputMirror(w)
	tt.AppendHeader(table.Row{"Account Type", "Transactions", "Total"})
	for _, ts := range totals {
		tt.AppendRow(table.Row{string(ts.Type), ts.Count, formatAmount(ts.Total)})
	}
	tt.Render()
}

// RenderTransactions writes one row per stored transaction.
func RenderTransactions(w io.Writer, txs []storage.StoredTransaction) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Date", "Description", "Amount", "Account", "Category", "Source"})

	for _, tx := range txs {
		t.AppendRow(table.Row{
			tx.Date.Format("2006-01-02"),
			tx.Description,
			formatAmount(tx.Amount),
			tx.AccountLabel,
			tx.Category,
			tx.SourceFile,
		})
	}
	t.Render()
}

func typeLabel(sm storage.AccountSummary) string {
	if sm.Type.IsCreditCard() {
		return "credit card"
	}
	return string(sm.Type)
}

func formatAmount(amount decimal.Decimal) string {
	s := amount.StringFixed(2)
	if amount.IsNegative() {
		return text.FgRed.Sprint(s)
	}
	if amount.IsPositive() {
		return text.FgGreen.Sprint(s)
	}
	return s
}
