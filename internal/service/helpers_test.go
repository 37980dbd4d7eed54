package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/textproto"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/noah-isme/cubis-academy-api/internal/config"
	"github.com/noah-isme/cubis-academy-api/internal/models"
	"github.com/noah-isme/cubis-academy-api/internal/repository"
	"github.com/noah-isme/cubis-academy-api/pkg/cache"
	"github.com/noah-isme/cubis-academy-api/pkg/mailer"
	"github.com/noah-isme/cubis-academy-api/pkg/storage"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

type sentEmail struct {
	To       []string
	Template string
	Data     interface{}
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []sentEmail
}

func (m *recordingMailer) Send(ctx context.Context, msg mailer.Message) error {
	return nil
}

func (m *recordingMailer) SendTemplate(ctx context.Context, to []string, name string, data interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentEmail{To: to, Template: name, Data: data})
	return nil
}

func (m *recordingMailer) Provider() string {
	return "recording"
}

func (m *recordingMailer) templates() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.sent))
	for _, email := range m.sent {
		names = append(names, email.Template)
	}
	return names
}

type testEnv struct {
	db          *gorm.DB
	redis       *miniredis.Miniredis
	cache       *cache.Cache
	validate    *validator.Validate
	mailer      *recordingMailer
	notifier    *Notifier
	activity    ActivityService
	users       repository.UserRepository
	students    repository.StudentRepository
	teachers    repository.TeacherRepository
	sessions    repository.SessionRepository
	courses     repository.CourseRepository
	categories  repository.CategoryRepository
	enrollments repository.EnrollmentRepository
	payments    repository.PaymentRepository
	scores      repository.ScoreRepository
	attendance  repository.AttendanceRepository
	files       repository.FileRecordRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))

	server, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(server.Close)

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	recorder := &recordingMailer{}
	activityRepo := repository.NewActivityLogRepository(db)

	return &testEnv{
		db:          db,
		redis:       server,
		cache:       cache.New(client, testLogger()),
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		mailer:      recorder,
		notifier:    NewNotifier(recorder, nil, testLogger()),
		activity:    NewActivityService(activityRepo, testLogger()),
		users:       repository.NewUserRepository(db),
		students:    repository.NewStudentRepository(db),
		teachers:    repository.NewTeacherRepository(db),
		sessions:    repository.NewSessionRepository(db),
		courses:     repository.NewCourseRepository(db),
		categories:  repository.NewCategoryRepository(db),
		enrollments: repository.NewEnrollmentRepository(db),
		payments:    repository.NewPaymentRepository(db),
		scores:      repository.NewScoreRepository(db),
		attendance:  repository.NewAttendanceRepository(db),
		files:       repository.NewFileRecordRepository(db),
	}
}

func (e *testEnv) uploadService(t *testing.T) UploadService {
	t.Helper()
	provider, err := storage.New(config.StorageConfig{
		Provider:    config.StorageLocal,
		LocalDir:    t.TempDir(),
		PublicURL:   "/uploads",
		MaxUploadMB: 2,
	}, testLogger())
	require.NoError(t, err)
	return NewUploadService(provider, e.files, 2, testLogger())
}

type seeded struct {
	studentUser models.User
	student     models.Student
	teacherUser models.User
	teacher     models.Teacher
	adminUser   models.User
	category    models.CourseCategory
	course      models.Course
}

func (e *testEnv) seed(t *testing.T) seeded {
	t.Helper()
	ctx := context.Background()

	s := seeded{
		studentUser: models.User{Name: "Sari Student", Email: "sari@example.com", PasswordHash: "x", Role: models.RoleStudent, IsActive: true},
		teacherUser: models.User{Name: "Tono Teacher", Email: "tono@example.com", PasswordHash: "x", Role: models.RoleTeacher, IsActive: true},
		adminUser:   models.User{Name: "Ayu Admin", Email: "ayu@example.com", PasswordHash: "x", Role: models.RoleAdmin, IsActive: true},
	}
	s.student = models.Student{Status: models.StudentStatusActive, JoinedAt: time.Now()}
	require.NoError(t, e.users.CreateWithProfile(ctx, &s.studentUser, &s.student, nil))
	s.teacher = models.Teacher{Expertise: "Go"}
	require.NoError(t, e.users.CreateWithProfile(ctx, &s.teacherUser, nil, &s.teacher))
	require.NoError(t, e.users.CreateWithProfile(ctx, &s.adminUser, nil, nil))

	s.category = models.CourseCategory{Name: "Programming", Slug: "programming", IsActive: true}
	require.NoError(t, e.categories.Create(ctx, &s.category))

	s.course = models.Course{
		Title:       "Go Fundamentals",
		Slug:        "go-fundamentals",
		Description: "Learn concurrency and interfaces",
		CategoryID:  &s.category.ID,
		TeacherID:   &s.teacher.ID,
		Level:       models.CourseLevelBeginner,
		Price:       150,
		Capacity:    2,
		Status:      models.CourseStatusPublished,
	}
	require.NoError(t, e.courses.Create(ctx, &s.course))
	return s
}

// addStudent creates another student account and returns its user.
func (e *testEnv) addStudent(t *testing.T, name, email string) models.User {
	t.Helper()
	user := models.User{Name: name, Email: email, PasswordHash: "x", Role: models.RoleStudent, IsActive: true}
	student := models.Student{Status: models.StudentStatusActive}
	require.NoError(t, e.users.CreateWithProfile(context.Background(), &user, &student, nil))
	return user
}

func (e *testEnv) enrollmentService() EnrollmentService {
	return NewEnrollmentService(e.enrollments, e.courses, e.students, e.activity, e.notifier, e.cache, e.validate, testLogger())
}

func buildFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {"form-data; name=\"file\"; filename=\"" + filename + "\""},
		"Content-Type":        {"application/octet-stream"},
	})
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	reader := multipart.NewReader(body, writer.Boundary())
	form, err := reader.ReadForm(int64(len(content) + 1024))
	require.NoError(t, err)
	files := form.File["file"]
	require.Len(t, files, 1)
	return files[0]
}

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 255), G: uint8(y % 255), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
