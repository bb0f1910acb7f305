package model

// Scope identifies the company a call acts for and the operator making it.
// Every engine and report call takes one; rows owned by other companies are
// invisible through it.
type Scope struct {
	CompanyID int64
	Actor     string
}
