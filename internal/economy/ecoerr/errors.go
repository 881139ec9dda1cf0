// Package ecoerr defines the failure taxonomy shared by every engine
// operation. The dispatcher matches on these to build user-facing replies;
// the engine never formats text itself.
package ecoerr

import (
	"errors"
	"fmt"
	"time"
)

// Category sentinels. Every typed error unwraps to exactly one of these so
// callers can classify with errors.Is without knowing the concrete type.
var (
	ErrValidation    = errors.New("validation error")
	ErrStateConflict = errors.New("state conflict")
	ErrResource      = errors.New("insufficient resources")
	ErrExternal      = errors.New("external dependency unavailable")
)

// InvalidAmountError rejects a non-positive or malformed amount before any
// state is touched.
type InvalidAmountError struct {
	Amount int64
}

func (e InvalidAmountError) Error() string {
	return fmt.Sprintf("invalid amount: %d", e.Amount)
}

func (e InvalidAmountError) Unwrap() error { return ErrValidation }

// UnknownTargetError rejects a reference to a job, item, crime or investment
// type that is not in the catalog.
type UnknownTargetError struct {
	Kind string // "job", "item", "crime", "investment", "office"
	Name string
}

func (e UnknownTargetError) Error() string {
	return fmt.Sprintf("unknown %s: %q", e.Kind, e.Name)
}

func (e UnknownTargetError) Unwrap() error { return ErrValidation }

// SelfTargetError rejects an operation aimed at the acting account itself.
type SelfTargetError struct{}

func (e SelfTargetError) Error() string { return "cannot target yourself" }

func (e SelfTargetError) Unwrap() error { return ErrValidation }

// CooldownError reports that the operation was attempted inside its cooldown
// window.
type CooldownError struct {
	Operation string
	Until     time.Time
}

func (e CooldownError) Error() string {
	return fmt.Sprintf("%s on cooldown until %s", e.Operation, e.Until.Format(time.RFC3339))
}

func (e CooldownError) Unwrap() error { return ErrStateConflict }

// JailedError reports that the account is jailed.
type JailedError struct {
	Until time.Time
}

func (e JailedError) Error() string {
	return fmt.Sprintf("jailed until %s", e.Until.Format(time.RFC3339))
}

func (e JailedError) Unwrap() error { return ErrStateConflict }

// AlreadyEmployedError reports that the account must resign first.
type AlreadyEmployedError struct {
	Job string
}

func (e AlreadyEmployedError) Error() string {
	return fmt.Sprintf("already employed as %s", e.Job)
}

func (e AlreadyEmployedError) Unwrap() error { return ErrStateConflict }

// UnemployedError reports that the operation requires a job.
type UnemployedError struct{}

func (e UnemployedError) Error() string { return "not employed" }

func (e UnemployedError) Unwrap() error { return ErrStateConflict }

// SkillTooLowError reports that the account does not meet a job's skill
// requirement.
type SkillTooLowError struct {
	Have int
	Need int
}

func (e SkillTooLowError) Error() string {
	return fmt.Sprintf("skill too low: have %d, need %d", e.Have, e.Need)
}

func (e SkillTooLowError) Unwrap() error { return ErrStateConflict }

// NoPositionError reports liquidation of an investment type the account does
// not hold.
type NoPositionError struct {
	Type string
}

func (e NoPositionError) Error() string {
	return fmt.Sprintf("no open %s position", e.Type)
}

func (e NoPositionError) Unwrap() error { return ErrStateConflict }

// CaughtError reports a failed crime attempt. The jail sentence has already
// been applied when this is returned.
type CaughtError struct {
	Crime     string
	JailUntil time.Time
}

func (e CaughtError) Error() string {
	return fmt.Sprintf("caught during %s, jailed until %s", e.Crime, e.JailUntil.Format(time.RFC3339))
}

func (e CaughtError) Unwrap() error { return ErrStateConflict }

// InsufficientFundsError reports a cash or bank shortfall.
type InsufficientFundsError struct {
	Have int64
	Need int64
}

func (e InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: have %d, need %d", e.Have, e.Need)
}

func (e InsufficientFundsError) Unwrap() error { return ErrResource }

// InsufficientInventoryError reports an inventory shortfall on sell.
type InsufficientInventoryError struct {
	Item string
	Have int
	Need int
}

func (e InsufficientInventoryError) Error() string {
	return fmt.Sprintf("insufficient inventory of %s: have %d, need %d", e.Item, e.Have, e.Need)
}

func (e InsufficientInventoryError) Unwrap() error { return ErrResource }

// InsufficientTreasuryError reports that the treasury cannot cover a welfare
// round at all.
type InsufficientTreasuryError struct {
	Treasury int64
}

func (e InsufficientTreasuryError) Error() string {
	return fmt.Sprintf("treasury exhausted: %d remaining", e.Treasury)
}

func (e InsufficientTreasuryError) Unwrap() error { return ErrResource }

// LoanLimitError reports that a loan request exceeds the class cap.
type LoanLimitError struct {
	Requested int64
	Max       int64
}

func (e LoanLimitError) Error() string {
	return fmt.Sprintf("loan of %d exceeds class limit %d", e.Requested, e.Max)
}

func (e LoanLimitError) Unwrap() error { return ErrValidation }

// BelowMinimumError reports an investment below the type-specific minimum.
type BelowMinimumError struct {
	Type    string
	Amount  int64
	Minimum int64
}

func (e BelowMinimumError) Error() string {
	return fmt.Sprintf("%s requires at least %d, got %d", e.Type, e.Minimum, e.Amount)
}

func (e BelowMinimumError) Unwrap() error { return ErrValidation }

// NotInOfficeError reports an attempt to exercise a power the caller's
// office does not grant.
type NotInOfficeError struct {
	Office string
}

func (e NotInOfficeError) Error() string {
	return fmt.Sprintf("power reserved for the %s", e.Office)
}

func (e NotInOfficeError) Unwrap() error { return ErrStateConflict }

// VersionConflictError surfaces an optimistic-lock failure from the store.
// Engine operations retry a bounded number of times before giving up.
type VersionConflictError struct {
	Entity string
}

func (e VersionConflictError) Error() string {
	return fmt.Sprintf("version conflict on %s", e.Entity)
}

func (e VersionConflictError) Unwrap() error { return ErrExternal }

// FeedUnavailableError reports that the external price feed could not serve a
// symbol and no cached value exists.
type FeedUnavailableError struct {
	Symbol string
}

func (e FeedUnavailableError) Error() string {
	return fmt.Sprintf("price feed unavailable for %s", e.Symbol)
}

func (e FeedUnavailableError) Unwrap() error { return ErrExternal }
