package bot

type Flow string

const (
	FlowSearch    Flow = "search"
	FlowSell      Flow = "sell"
	FlowExcursion Flow = "excursion"
)

type Step string

const (
	StepPropertyType Step = "property_type"
	StepRooms        Step = "rooms"
	StepDistrict     Step = "district"
	StepBudget       Step = "budget"
	StepCondition    Step = "condition"
	StepPhone        Step = "phone"
)

// Declined is stored in the Phone column when the user does not share a contact.
const Declined = "Отказался"

// SearchForm collects the property search answers. Condition is only asked for the historic centre.
type SearchForm struct {
	PropertyType string `json:"property_type,omitempty"`
	Rooms        string `json:"rooms,omitempty"`
	District     string `json:"district,omitempty"`
	Budget       string `json:"budget,omitempty"`
	Condition    string `json:"condition,omitempty"`
}

// UserState is the per-user session. A user with no stored state is at the main menu.
type UserState struct {
	Flow Flow       `json:"flow"`
	Step Step       `json:"step"`
	Form SearchForm `json:"form"`
}
