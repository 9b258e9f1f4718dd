package account

import (
	"errors"
	"strings"
)

const OTPLength = 6

var (
	ErrOTPRejected   = errors.New("otp: only a single digit is allowed")
	ErrOTPCellRange  = errors.New("otp: cell index out of range")
	ErrOTPIncomplete = errors.New("otp: code is incomplete")
)

// OTPInput models the six single-character cells used to type a one-time code.
type OTPInput struct {
	cells [OTPLength]string
	focus int
}

// NewOTPInput returns an input seeded from up to six submitted cell values.
// Cells that would be rejected on keystroke are left empty.
func NewOTPInput(values ...string) *OTPInput {
	in := &OTPInput{}
	for i, v := range values {
		if i >= OTPLength {
			break
		}
		_ = in.Enter(i, v)
	}
	in.focus = 0
	return in
}

// Enter applies a keystroke to cell index. Empty clears the cell; a single
// digit is stored and focus moves to the next cell unless index is the last.
// Anything else is rejected and the cell is left unchanged.
func (o *OTPInput) Enter(index int, value string) error {
	if index < 0 || index >= OTPLength {
		return ErrOTPCellRange
	}
	if !isSingleDigitOrEmpty(value) {
		return ErrOTPRejected
	}
	o.cells[index] = value
	if value != "" && index < OTPLength-1 {
		o.focus = index + 1
	}
	return nil
}

func (o *OTPInput) Focus() int { return o.focus }

func (o *OTPInput) Cell(index int) string {
	if index < 0 || index >= OTPLength {
		return ""
	}
	return o.cells[index]
}

// Code joins all cells.
func (o *OTPInput) Code() string {
	return strings.Join(o.cells[:], "")
}

// Complete reports whether every cell holds a digit.
func (o *OTPInput) Complete() bool {
	return len(o.Code()) == OTPLength
}

func isSingleDigitOrEmpty(v string) bool {
	if v == "" {
		return true
	}
	return len(v) == 1 && v[0] >= '0' && v[0] <= '9'
}
