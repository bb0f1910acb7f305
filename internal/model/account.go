package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AccountType classifies bank accounts.
type AccountType string

const (
	AccountTypeChecking AccountType = "checking"
	AccountTypeSavings  AccountType = "savings"
	AccountTypeCredit   AccountType = "credit"
	AccountTypeOther    AccountType = "other"
)

// Valid reports whether t is a known account type.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeChecking, AccountTypeSavings, AccountTypeCredit, AccountTypeOther:
		return true
	}
	return false
}

// Currency is the ISO code an account is held in.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyCOP Currency = "COP"
)

// Valid reports whether c is a supported currency.
func (c Currency) Valid() bool {
	switch c {
	case CurrencyUSD, CurrencyEUR, CurrencyCOP:
		return true
	}
	return false
}

// Company owns bank accounts.
type Company struct {
	ID   int64
	Name string
	RUC  string
}

// Bank is an entry in the bank catalogue.
type Bank struct {
	ID        int64
	SBSCode   string // superintendency code, e.g. "001"
	Name      string
	ShortName string
	SwiftCode string
	Website   string
	Phone     string
}

// BankAccount is an account held at a bank by one company.
// (CompanyID, BankID, Number) is unique.
type BankAccount struct {
	ID             int64
	CompanyID      int64
	BankID         int64
	BankName       string // filled on reads
	Number         string
	Type           AccountType
	Currency       Currency
	ChartAccount   string // chart-of-accounts code, empty when unlinked
	OpeningBalance decimal.Decimal
	OpeningDate    time.Time
	ContactPerson  string
	Notes          string
	Active         bool
}

// MaskedNumber hides all but the last four digits of the account number.
func (a BankAccount) MaskedNumber() string {
	n := strings.TrimSpace(a.Number)
	if len(n) <= 4 {
		return n
	}
	return "****" + n[len(n)-4:]
}

// Label is a short human-readable account name.
func (a BankAccount) Label() string {
	if a.BankName == "" {
		return a.MaskedNumber()
	}
	return a.BankName + " " + a.MaskedNumber()
}
