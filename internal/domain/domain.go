package domain

// Models lists every table the service owns, in migration order.
func Models() []interface{} {
	return []interface{}{
		&QAEntry{},
		&StepContent{},
		&TutorTurn{},
	}
}
