// Package ofximport turns OFX/QFX bank and credit card statements into
// income and expense entries.
package ofximport

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"dompet/internal/logger"
	"dompet/internal/models"
)

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	tagFixRegex   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// Entry is one statement line ready to become a transaction.
type Entry struct {
	ExternalID  string
	Date        time.Time
	Type        models.TransactionType
	Amount      int64
	Description string
}

// Parser converts statement amounts into integer currency units by shifting
// them Scale decimal places.
type Parser struct {
	Scale int32
}

// NewParser creates a Parser for the given currency scale.
func NewParser(scale int32) *Parser {
	return &Parser{Scale: scale}
}

// preprocess fixes common formatting issues in exported OFX files.
func preprocess(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)
	return tagFixRegex.ReplaceAllString(content, "$1>")
}

// Parse reads a statement. Debits become expenses, credits become incomes and
// lines that round to zero are skipped.
func (p *Parser) Parse(ctx context.Context, r io.Reader) ([]Entry, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read statement: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocess(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse statement: %w", err)
	}

	var lists []*ofxgo.TransactionList
	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok && stmt.BankTranList != nil {
			lists = append(lists, stmt.BankTranList)
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok && stmt.BankTranList != nil {
			lists = append(lists, stmt.BankTranList)
		}
	}

	var (
		entries []Entry
		skipped int
	)
	for _, list := range lists {
		for _, tx := range list.Transactions {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			entry, ok, err := p.convert(tx)
			if err != nil {
				return nil, err
			}
			if !ok {
				skipped++
				continue
			}
			entries = append(entries, entry)
		}
	}

	logger.Named("ofximport").Debugw("parsed statement",
		"statements", len(lists),
		"entries", len(entries),
		"skipped", skipped,
	)
	return entries, nil
}

func (p *Parser) convert(tx ofxgo.Transaction) (Entry, bool, error) {
	amt, err := decimal.NewFromString(tx.TrnAmt.FloatString(8))
	if err != nil {
		return Entry{}, false, fmt.Errorf("invalid amount for %s: %w", tx.FiTID, err)
	}
	units := amt.Shift(p.Scale).Round(0)
	if units.IsZero() {
		return Entry{}, false, nil
	}

	entry := Entry{
		ExternalID:  strings.TrimSpace(string(tx.FiTID)),
		Date:        calendarDay(tx.DtPosted.Time),
		Type:        models.TransactionTypeIncome,
		Amount:      units.Abs().IntPart(),
		Description: description(tx),
	}
	if units.IsNegative() {
		entry.Type = models.TransactionTypeExpense
	}
	return entry, true, nil
}

func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// description prefers the payee, then the name, then the memo when the name
// says nothing useful.
func description(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}
	name := strings.TrimSpace(string(tx.Name))
	if tx.Memo != "" && isGeneric(name) {
		name = strings.TrimSpace(string(tx.Memo))
	}
	return name
}

func isGeneric(name string) bool {
	switch strings.ToUpper(name) {
	case "", "DEBIT", "CREDIT", "PURCHASE", "PAYMENT", "TRANSFER", "POS TRANSACTION":
		return true
	}
	return false
}
