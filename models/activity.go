package models

// ActivityRef identifies an activity owned by the activity management side.
type ActivityRef struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	EventName string `json:"event_name,omitempty"`
}

type PersonProfile struct {
	ID        int64          `json:"id"`
	FirstName string         `json:"first_name"`
	LastName  string         `json:"last_name"`
	Email     string         `json:"email"`
	Learner   *LearnerProfile `json:"perfil_aprendiz,omitempty"`
}

func (p PersonProfile) FullName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	default:
		return p.FirstName + " " + p.LastName
	}
}

type LearnerProfile struct {
	Cohort  string `json:"ficha"`
	Program string `json:"programa_formacion"`
	Shift   string `json:"jornada"`
}

type QRCodesResponse struct {
	ActivityID int64  `json:"activity_id"`
	Entry      string `json:"entrada"`
	Exit       string `json:"salida"`
}
