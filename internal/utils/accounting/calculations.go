package accounting

import (
	"fmt"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SignedAmount applies the correct sign to a line for an account of the given category.
// DEBIT to ASSET/EXPENSE and CREDIT to LIABILITY/EQUITY/REVENUE are positive.
func SignedAmount(line domain.JournalLine, category domain.AccountCategory) (domain.Money, error) {
	if !category.Valid() {
		return 0, fmt.Errorf("%w: %q on account %s", apperrors.ErrInvalidCategory, category, line.AccountID)
	}
	if category.NormalBalance() == domain.NormalDebit {
		return line.Debit - line.Credit, nil
	}
	return line.Credit - line.Debit, nil
}

// CheckNotEmpty rejects entries without lines or whose lines are all zero.
func CheckNotEmpty(lines []domain.JournalLine) error {
	for _, l := range lines {
		if l.Debit != 0 || l.Credit != 0 {
			return nil
		}
	}
	return apperrors.ErrEmptyEntry
}

// CheckLineShapes requires every line to carry exactly one positive side no larger
// than domain.MaxLineAmount.
func CheckLineShapes(lines []domain.JournalLine) error {
	for i, l := range lines {
		field := fmt.Sprintf("lines[%d]", i)
		switch {
		case l.Debit < 0 || l.Credit < 0:
			return apperrors.NewFieldError(apperrors.ErrMalformedLine, field, "amounts must not be negative")
		case l.Debit > 0 && l.Credit > 0:
			return apperrors.NewFieldError(apperrors.ErrMalformedLine, field, "debit and credit both set")
		case l.Debit == 0 && l.Credit == 0:
			return apperrors.NewFieldError(apperrors.ErrMalformedLine, field, "zero amount")
		case l.Debit > domain.MaxLineAmount || l.Credit > domain.MaxLineAmount:
			return apperrors.NewFieldError(apperrors.ErrMalformedLine, field, "max="+domain.MaxLineAmount.String())
		}
	}
	return nil
}

// CheckBalanced requires debits to equal credits exactly. Column totals that do not
// fit in Money are rejected as unbalanced.
func CheckBalanced(lines []domain.JournalLine) error {
	var debit, credit domain.Money
	for _, l := range lines {
		var okDebit, okCredit bool
		debit, okDebit = domain.AddMoney(debit, l.Debit)
		credit, okCredit = domain.AddMoney(credit, l.Credit)
		if !okDebit || !okCredit {
			return apperrors.NewFieldError(apperrors.ErrUnbalancedEntry, "lines", "column total out of range")
		}
	}
	if debit != credit {
		return fmt.Errorf("%w: debits %s, credits %s", apperrors.ErrUnbalancedEntry, debit, credit)
	}
	return nil
}

// NetDebitDeltas aggregates the lines' effect per account as debits minus credits.
// Lines must have passed CheckBalanced, which bounds every per-account delta by the
// entry's column total.
func NetDebitDeltas(lines []domain.JournalLine) map[string]domain.Money {
	deltas := make(map[string]domain.Money, len(lines))
	for _, l := range lines {
		deltas[l.AccountID] += l.NetDebit()
	}
	return deltas
}

// SumNetDebits totals net debit balances in decimal so that no combination of
// balances can wrap. The books balance when it is zero.
func SumNetDebits(balances map[string]domain.Money) decimal.Decimal {
	sum := decimal.Zero
	for _, net := range balances {
		sum = sum.Add(decimal.NewFromInt(int64(net)))
	}
	return sum
}

// ReverseLines swaps the debit and credit of every line.
func ReverseLines(lines []domain.JournalLine) []domain.JournalLine {
	reversed := make([]domain.JournalLine, len(lines))
	for i, l := range lines {
		reversed[i] = domain.JournalLine{
			LineNo:      i + 1,
			AccountID:   l.AccountID,
			Description: l.Description,
			Debit:       l.Credit,
			Credit:      l.Debit,
		}
	}
	return reversed
}
