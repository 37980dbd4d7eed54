package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/cubis-academy-api/internal/models"
)

// AttendanceRepository persists attendance marks.
type AttendanceRepository interface {
	Upsert(ctx context.Context, records []models.Attendance) error
	ListByEnrollments(ctx context.Context, enrollmentIDs []uint) ([]models.Attendance, error)
}

type attendanceRepository struct {
	db *gorm.DB
}

// NewAttendanceRepository constructs an attendance repository.
func NewAttendanceRepository(db *gorm.DB) AttendanceRepository {
	return &attendanceRepository{db: db}
}

// Upsert writes the records, replacing any mark already stored for the same enrollment and date.
// Within one batch the last record for an enrollment and date wins.
func (r *attendanceRepository) Upsert(ctx context.Context, records []models.Attendance) error {
	records = lastPerEnrollmentDay(records)
	if len(records) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Omit("Enrollment").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "enrollment_id"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "notes", "schedule_id", "recorded_by", "updated_at"}),
		}).
		Create(&records).Error
}

func (r *attendanceRepository) ListByEnrollments(ctx context.Context, enrollmentIDs []uint) ([]models.Attendance, error) {
	if len(enrollmentIDs) == 0 {
		return nil, nil
	}
	var records []models.Attendance
	err := r.db.WithContext(ctx).
		Preload("Enrollment.Course").
		Where("enrollment_id IN ?", enrollmentIDs).
		Order("date DESC, id DESC").
		Find(&records).Error
	return records, err
}

func lastPerEnrollmentDay(records []models.Attendance) []models.Attendance {
	type slot struct {
		enrollmentID uint
		day          string
	}
	index := make(map[slot]int, len(records))
	unique := make([]models.Attendance, 0, len(records))
	for _, record := range records {
		key := slot{enrollmentID: record.EnrollmentID, day: record.Date.Format("2006-01-02")}
		if i, ok := index[key]; ok {
			unique[i] = record
			continue
		}
		index[key] = len(unique)
		unique = append(unique, record)
	}
	return unique
}
