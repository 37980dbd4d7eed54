package models

// All returns every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Student{},
		&Teacher{},
		&CourseCategory{},
		&Course{},
		&ClassSchedule{},
		&Enrollment{},
		&Payment{},
		&Score{},
		&Attendance{},
		&Session{},
		&ActivityLog{},
		&FileRecord{},
	}
}
