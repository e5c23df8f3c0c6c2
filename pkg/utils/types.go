package utils

// Constants
const (
	// ISO_DATE_LAYOUT is the wire format for calendar dates.
	ISO_DATE_LAYOUT = "2006-01-02"

	// DEFAULT_SHEET_NAME_LAYOUT matches whiteboard tab names like "Mon 15 Dec".
	DEFAULT_SHEET_NAME_LAYOUT = "Mon 2 Jan"
)

// RawGrid is one sheet's rectangular cell block, rows of string cells.
// Rows may be ragged; CellAt pads reads past the end with "".
type RawGrid [][]string
