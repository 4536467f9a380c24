package models

// ScheduleBasis selects which kind of provider an appointment type books against.
type ScheduleBasis string

const (
	ScheduleStaff    ScheduleBasis = "staff"
	ScheduleResource ScheduleBasis = "resource"
)

// AccessMode controls listing visibility of an appointment type.
type AccessMode string

const (
	AccessPublic     AccessMode = "public"
	AccessInviteOnly AccessMode = "invite_only"
)

// AssignPolicy decides how a staff member is picked when the client does not
// choose one explicitly.
type AssignPolicy string

const (
	AssignClientChoice AssignPolicy = "client_choice"
	AssignLeastRecent  AssignPolicy = "least_recently_booked"
)

// IntakeQuestion is one question on the booking form, declared on the
// appointment type by an administrator.
type IntakeQuestion struct {
	ID       string   `bson:"id" json:"id"`
	Label    string   `bson:"label" json:"label"`
	Type     string   `bson:"type" json:"type"` // "text", "select", "checkbox"
	Required bool     `bson:"required" json:"required"`
	Options  []string `bson:"options,omitempty" json:"options,omitempty"`
}

// AppointmentType is a bookable service definition. It is created by an
// administrator and read-only from the booking engine's perspective.
//
// Exactly one of StaffIDs / ResourceIDs is populated, matching ScheduleBasis.
type AppointmentType struct {
	ID              string        `bson:"id" json:"id"`
	Name            string        `bson:"name" json:"name"`
	Location        string        `bson:"location" json:"location"`
	DurationMinutes int           `bson:"durationMinutes" json:"durationMinutes"`
	ScheduleBasis   ScheduleBasis `bson:"scheduleBasis" json:"scheduleBasis"`
	Timezone        string        `bson:"timezone" json:"timezone"` // IANA name, e.g. "Europe/Brussels"
	GranularityMin  int           `bson:"granularityMin" json:"granularityMin"`
	LookaheadDays   int           `bson:"lookaheadDays" json:"lookaheadDays"`
	AllowGuests     bool          `bson:"allowGuests" json:"allowGuests"`
	ManageCapacity  bool          `bson:"manageCapacity" json:"manageCapacity"`
	Access          AccessMode    `bson:"access" json:"access"`
	AssignPolicy    AssignPolicy  `bson:"assignPolicy" json:"assignPolicy"`

	StaffIDs    []string `bson:"staffIds,omitempty" json:"staffIds,omitempty"`
	ResourceIDs []string `bson:"resourceIds,omitempty" json:"resourceIds,omitempty"`

	Questions []IntakeQuestion `bson:"questions,omitempty" json:"questions,omitempty"`

	// Deposit settings for the follow-on payment flow. Amount is in minor
	// currency units; zero means no deposit is requested.
	DepositAmount   int64  `bson:"depositAmount,omitempty" json:"depositAmount,omitempty"`
	DepositCurrency string `bson:"depositCurrency,omitempty" json:"depositCurrency,omitempty"`
	PriceAmount     int64  `bson:"priceAmount,omitempty" json:"priceAmount,omitempty"`
}

// ProviderIDs returns the authoritative provider set for the type's basis.
func (at AppointmentType) ProviderIDs() []string {
	if at.ScheduleBasis == ScheduleResource {
		return at.ResourceIDs
	}
	return at.StaffIDs
}

// MaxCapacity is the largest attendee count the type can ever serve in one
// slot: combined resource capacity for resource-based types, 1 otherwise.
// Resource capacities are summed by the caller since the type only carries ids.
func (at AppointmentType) MaxCapacity(resourceCaps map[string]int) int {
	if at.ScheduleBasis != ScheduleResource {
		return 1
	}
	total := 0
	for _, id := range at.ResourceIDs {
		total += resourceCaps[id]
	}
	return total
}

// AppointmentTypeSummary is the listing projection grouped by location.
type AppointmentTypeSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MaxCapacity int    `json:"maxCapacity"`
}
