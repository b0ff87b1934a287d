package sales

// Decision is the outcome of checking a requested transition.
type Decision int

const (
	DecisionReject Decision = iota
	DecisionApply
	DecisionNoOp
)

func (d Decision) String() string {
	switch d {
	case DecisionApply:
		return "apply"
	case DecisionNoOp:
		return "noop"
	default:
		return "reject"
	}
}

// Action is a transition offered to the user for a record.
type Action struct {
	Target               Status `json:"target"`
	Label                string `json:"label"`
	RequiresConfirmation bool   `json:"requires_confirmation"`
	Prompt               string `json:"prompt,omitempty"`
}

var (
	actionInvoice = Action{
		Target:               StatusInvoiced,
		Label:                "Confirm & Invoice",
		RequiresConfirmation: true,
		Prompt:               "Convert Quotation to Official Invoice? Stock will be reserved.",
	}
	actionShip = Action{
		Target:               StatusShipped,
		Label:                "Generate DO",
		RequiresConfirmation: true,
		Prompt:               "Generate Delivery Order?",
	}
	actionPay = Action{
		Target: StatusPaid,
		Label:  "Mark Paid",
	}
)

var transitions = map[Status][]Action{
	StatusQuotation: {actionInvoice},
	StatusInvoiced:  {actionShip, actionPay},
	StatusShipped:   {actionPay},
}

// LegalActions lists the transitions available from current.
func LegalActions(current Status) []Action {
	return append([]Action(nil), transitions[current]...)
}

// ActionFor returns the edge current -> target when it exists.
func ActionFor(current, target Status) (Action, bool) {
	for _, a := range transitions[current] {
		if a.Target == target {
			return a, true
		}
	}
	return Action{}, false
}

// Decide checks target against the lifecycle from current. A request whose
// target the record has already reached or passed is a NoOp so duplicate
// calls succeed without side effects. Rejections carry a *TransitionError.
func Decide(current, target Status) (Decision, error) {
	reject := &TransitionError{Current: current, Requested: target}
	switch {
	case !target.IsValid(), target == StatusQuotation, target == StatusDelivered:
		return DecisionReject, reject
	case current == StatusDelivered:
		return DecisionReject, reject
	case current == StatusPaid:
		if target == StatusPaid {
			return DecisionNoOp, nil
		}
		return DecisionReject, reject
	case !current.IsValid():
		return DecisionReject, reject
	case target.Rank() <= current.Rank():
		return DecisionNoOp, nil
	}
	if _, ok := ActionFor(current, target); ok {
		return DecisionApply, nil
	}
	return DecisionReject, reject
}
