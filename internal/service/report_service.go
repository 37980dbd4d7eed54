package service

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/cubis-academy-api/internal/models"
	"github.com/noah-isme/cubis-academy-api/internal/repository"
	"github.com/noah-isme/cubis-academy-api/pkg/report"
)

// Report kinds.
const (
	ReportEnrollments = "enrollments"
	ReportPayments    = "payments"
	ReportStudents    = "students"
)

const reportDateLayout = "2006-01-02 15:04"

// ReportFile is a rendered export ready to be streamed.
type ReportFile struct {
	FileName    string
	ContentType string
	Content     []byte
	Rows        int
}

// ReportService renders administrative exports.
type ReportService interface {
	Export(ctx context.Context, actor Actor, kind, format, status string) (ReportFile, error)
}

type reportService struct {
	enrollments repository.EnrollmentRepository
	payments    repository.PaymentRepository
	users       repository.UserRepository
	students    repository.StudentRepository
	activity    ActivityRecorder
	logger      zerolog.Logger
	now         func() time.Time
}

// NewReportService constructs the report service.
func NewReportService(
	enrollments repository.EnrollmentRepository,
	payments repository.PaymentRepository,
	users repository.UserRepository,
	students repository.StudentRepository,
	activity ActivityRecorder,
	logger zerolog.Logger,
) ReportService {
	return &reportService{
		enrollments: enrollments,
		payments:    payments,
		users:       users,
		students:    students,
		activity:    activity,
		logger:      logger.With().Str("component", "report_service").Logger(),
		now:         time.Now,
	}
}

func (s *reportService) Export(ctx context.Context, actor Actor, kind, format, status string) (ReportFile, error) {
	kind = strings.ToLower(strings.TrimSpace(kind))
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = report.FormatCSV
	}
	if !report.IsSupported(format) {
		return ReportFile{}, fmt.Errorf("%w: format %q", ErrUnsupportedReport, format)
	}
	status = strings.ToLower(strings.TrimSpace(status))

	var (
		table report.Table
		err   error
	)
	switch kind {
	case ReportEnrollments:
		table, err = s.enrollmentTable(ctx, status)
	case ReportPayments:
		table, err = s.paymentTable(ctx, status)
	case ReportStudents:
		table, err = s.studentTable(ctx)
	default:
		return ReportFile{}, fmt.Errorf("%w: kind %q", ErrUnsupportedReport, kind)
	}
	if err != nil {
		return ReportFile{}, err
	}

	now := s.now()
	table.GeneratedAt = now
	var buf bytes.Buffer
	if err := report.Write(&buf, table, format); err != nil {
		return ReportFile{}, fmt.Errorf("render %s report: %w", kind, err)
	}

	s.activity.Record(ctx, ActivityEntry{
		Actor:      actor,
		Action:     "report.exported",
		EntityType: "report",
		Metadata:   map[string]interface{}{"kind": kind, "format": format, "rows": len(table.Rows)},
	})
	s.logger.Info().Str("kind", kind).Str("format", format).Int("rows", len(table.Rows)).Msg("report exported")

	return ReportFile{
		FileName:    fmt.Sprintf("%s-%s%s", kind, now.Format("20060102-150405"), report.FileExtension(format)),
		ContentType: report.ContentType(format),
		Content:     buf.Bytes(),
		Rows:        len(table.Rows),
	}, nil
}

func (s *reportService) enrollmentTable(ctx context.Context, status string) (report.Table, error) {
	enrollments, _, err := s.enrollments.List(ctx, repository.EnrollmentFilter{Status: status})
	if err != nil {
		return report.Table{}, err
	}

	table := report.Table{
		Title:   "Enrollments",
		Headers: []string{"ID", "Student number", "Student", "Course", "Status", "Progress", "Enrolled at", "Completed at"},
	}
	for _, enrollment := range enrollments {
		table.Rows = append(table.Rows, []string{
			strconv.FormatUint(uint64(enrollment.ID), 10),
			enrollment.Student.StudentNumber,
			enrollment.Student.User.Name,
			enrollment.Course.Title,
			enrollment.Status,
			strconv.FormatFloat(enrollment.Progress, 'f', 0, 64) + "%",
			enrollment.EnrolledAt.Format(reportDateLayout),
			formatOptionalTime(enrollment.CompletedAt),
		})
	}
	return table, nil
}

func (s *reportService) paymentTable(ctx context.Context, status string) (report.Table, error) {
	payments, _, err := s.payments.List(ctx, repository.PaymentFilter{Status: status})
	if err != nil {
		return report.Table{}, err
	}

	table := report.Table{
		Title:   "Payments",
		Headers: []string{"Reference", "Student", "Course", "Amount", "Method", "Status", "Paid at"},
	}
	for _, payment := range payments {
		table.Rows = append(table.Rows, []string{
			payment.Reference,
			payment.Enrollment.Student.User.Name,
			payment.Enrollment.Course.Title,
			strconv.FormatFloat(payment.Amount, 'f', 2, 64),
			payment.Method,
			payment.Status,
			formatOptionalTime(payment.PaidAt),
		})
	}
	return table, nil
}

func (s *reportService) studentTable(ctx context.Context) (report.Table, error) {
	users, _, err := s.users.List(ctx, repository.UserFilter{Role: models.RoleStudent})
	if err != nil {
		return report.Table{}, err
	}

	table := report.Table{
		Title:   "Students",
		Headers: []string{"Student number", "Name", "Email", "Phone", "Status", "Active", "Joined at"},
	}
	for _, user := range users {
		row := []string{"", user.Name, user.Email, user.Phone, "", strconv.FormatBool(user.IsActive), user.CreatedAt.Format(reportDateLayout)}
		student, err := s.students.GetByUserID(ctx, user.ID)
		if err == nil {
			row[0] = student.StudentNumber
			row[4] = student.Status
			row[6] = student.JoinedAt.Format(reportDateLayout)
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

func formatOptionalTime(value *time.Time) string {
	if value == nil {
		return ""
	}
	return value.Format(reportDateLayout)
}
