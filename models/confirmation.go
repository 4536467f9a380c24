package models

// ConfirmationPayload is the summary emitted after a successful commit and
// handed to the notification dispatch queue. Times are ISO formatted in the
// client's timezone, carried separately.
type ConfirmationPayload struct {
	ReservationID string `json:"reservationId"`
	ServiceName   string `json:"serviceName"`
	Location      string `json:"location"`
	CustomerName  string `json:"customerName"`
	CustomerPhone string `json:"customerPhone"`
	LocalizedDate string `json:"localizedDate"`
	Start         string `json:"start"`
	End           string `json:"end"`
	Timezone      string `json:"timezone"`
	AttendeeCount int    `json:"attendeeCount"`
	DepositRef    string `json:"depositRef,omitempty"`
}
