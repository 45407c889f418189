package adminbot

import "github.com/gratefultolord/realtor_bot/internal/notify"

type Step string

const (
	StepSelectTarget    Step = "select_target"
	StepEnterUserID     Step = "enter_user_id"
	StepEnterText       Step = "enter_text"
	StepAskButton       Step = "ask_add_button"
	StepEnterButtonText Step = "enter_button_text"
	StepEnterButtonURL  Step = "enter_button_url"
)

type Target string

const (
	TargetAll Target = "all"
	TargetOne Target = "one"
)

const (
	CallbackToggle    = "toggle_bot"
	CallbackAll       = "bc:all"
	CallbackOne       = "bc:one"
	CallbackButtonYes = "bc:btn_yes"
	CallbackButtonNo  = "bc:btn_no"
	CallbackCancel    = "bc:cancel"
)

// Draft is a mailing being composed.
type Draft struct {
	Target Target         `json:"target"`
	UserID int64          `json:"user_id,omitempty"`
	Text   string         `json:"text,omitempty"`
	Button *notify.Button `json:"button,omitempty"`
}

// AdminState is the composer session. No stored state means the admin is at the main menu.
type AdminState struct {
	Step  Step  `json:"step"`
	Draft Draft `json:"draft"`
}
