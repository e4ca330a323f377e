package models

// OrderTable represents a physical seating unit
type OrderTable struct {
	ID             int64 `json:"id"`
	NumberOfGuests int   `json:"numberOfGuests"`
	Empty          bool  `json:"empty"`
}

// TableCreateRequest represents the request to register a table.
// A table is empty with no guests unless stated otherwise.
type TableCreateRequest struct {
	NumberOfGuests int   `json:"numberOfGuests"`
	Empty          *bool `json:"empty,omitempty"`
}

func (r *TableCreateRequest) IsEmpty() bool {
	if r.Empty == nil {
		return true
	}
	return *r.Empty
}

// TableChangeEmptyRequest represents the body of PUT /api/tables/{id}/empty
type TableChangeEmptyRequest struct {
	Empty bool `json:"empty"`
}
