package travelorder

import (
	"fmt"
	"time"
)

// IssuingUnit is the agency code embedded in every document number.
const IssuingUnit = "BAPPERIDA"

// DocumentNumber formats the number for the next document of a type within
// a month: {type}/{seq:3 digits}/BAPPERIDA/{month:2 digits}/{year}.
//
// existingCount is how many documents of that type already exist for the
// month; the sequence is existingCount + 1. Counting and inserting must
// happen in one transaction, with the UNIQUE constraint on document_number
// as the backstop — two concurrent creates that read the same count
// collide there, and the caller retries.
func DocumentNumber(documentType string, year int, month time.Month, existingCount int) string {
	return fmt.Sprintf("%s/%03d/%s/%02d/%d", documentType, existingCount+1, IssuingUnit, int(month), year)
}
