package document

import (
	"fmt"
	"strings"
	"time"

	"brgygo/pkg/types"
)

// ReferenceNumber is the verification code printed under the QR code, for example COI-2024-42.
func ReferenceNumber(docType types.DocumentType, year int, requestID int64) string {
	return fmt.Sprintf("%s-%d-%d", docType.ReferencePrefix(), year, requestID)
}

// Filename builds the download name from the document type and the requester's last name.
func Filename(req *types.Request) string {
	lastName := strings.Join(strings.Fields(req.LastName), "")
	if lastName == "" {
		lastName = "Document"
	}
	return fmt.Sprintf("%s-%s.pdf", req.Type.ShortName(), lastName)
}

// IssuanceDate formats t the way certificates phrase it: "17th day of April 2021".
func IssuanceDate(t time.Time) string {
	return fmt.Sprintf("%s day of %s %d", ordinal(t.Day()), t.Month(), t.Year())
}

func ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
