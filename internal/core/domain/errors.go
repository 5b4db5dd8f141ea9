package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedFormat     = errors.New("unsupported format")
	ErrCorruptContainer      = errors.New("corrupt container")
	ErrUnreadableWorkbook    = errors.New("unreadable workbook")
	ErrUnreadablePdf         = errors.New("unreadable pdf")
	ErrCapabilityUnavailable = errors.New("capability unavailable")
	ErrFileTooLarge          = errors.New("file too large")
	ErrUploadRejected        = errors.New("upload rejected")
	ErrInvalidConfig         = errors.New("invalid config")
	ErrTemporary             = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
