package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/cubis-academy-api/internal/dto"
	"github.com/noah-isme/cubis-academy-api/internal/models"
	"github.com/noah-isme/cubis-academy-api/pkg/cache"
)

func (e *testEnv) courseService(t *testing.T) CourseService {
	return NewCourseService(e.courses, e.categories, e.teachers, e.uploadService(t), e.activity, e.cache, e.validate, testLogger())
}

func TestCourseServiceCreateBuildsUniqueSlugAndSanitizes(t *testing.T) {
	env := newTestEnv(t)
	data := env.seed(t)
	svc := env.courseService(t)
	ctx := context.Background()
	admin := Actor{ID: data.adminUser.ID, Role: models.RoleAdmin}

	created, err := svc.Create(ctx, admin, dto.CourseCreateRequest{
		Title:       "Go Fundamentals",
		Description: `<p onclick="x()">Hello</p><script>alert(1)</script>`,
		CategoryID:  &data.category.ID,
		TeacherID:   &data.teacher.ID,
		Level:       models.CourseLevelIntermediate,
		Price:       200,
	})
	require.NoError(t, err)
	require.Equal(t, "go-fundamentals-2", created.Slug)
	require.Equal(t, models.CourseStatusDraft, created.Status)
	require.Equal(t, "<p>Hello</p>", created.Description)
	require.NotNil(t, created.Category)
	require.Equal(t, "Programming", created.Category.Name)

	missing := uint(9999)
	_, err = svc.Create(ctx, admin, dto.CourseCreateRequest{Title: "Rust", Level: models.CourseLevelBeginner, CategoryID: &missing})
	require.ErrorIs(t, err, ErrCategoryNotFound)
	_, err = svc.Create(ctx, admin, dto.CourseCreateRequest{Title: "Rust", Level: models.CourseLevelBeginner, TeacherID: &missing})
	require.ErrorIs(t, err, ErrTeacherNotFound)
}

func TestCourseServiceUpdateInvalidatesCatalog(t *testing.T) {
	env := newTestEnv(t)
	data := env.seed(t)
	svc := env.courseService(t)
	catalog := NewCatalogService(env.courses, env.categories, env.cache, testLogger())
	ctx := context.Background()

	first, hit, err := catalog.GetCourse(ctx, data.course.ID)
	require.NoError(t, err)
	require.False(t, hit)
	require.Equal(t, "Go Fundamentals", first.Title)

	_, hit, err = catalog.GetCourse(ctx, data.course.ID)
	require.NoError(t, err)
	require.True(t, hit)
	require.True(t, env.redis.Exists(cache.Course(data.course.ID)))

	title := "Advanced Go"
	updated, err := svc.Update(ctx, Actor{ID: data.adminUser.ID, Role: models.RoleAdmin}, data.course.ID, dto.CourseUpdateRequest{Title: &title})
	require.NoError(t, err)
	require.Equal(t, "Advanced Go", updated.Title)
	require.False(t, env.redis.Exists(cache.Course(data.course.ID)))

	fresh, hit, err := catalog.GetCourse(ctx, data.course.ID)
	require.NoError(t, err)
	require.False(t, hit)
	require.Equal(t, "Advanced Go", fresh.Title)
}

func TestCourseServiceSchedules(t *testing.T) {
	env := newTestEnv(t)
	data := env.seed(t)
	svc := env.courseService(t)
	ctx := context.Background()
	admin := Actor{ID: data.adminUser.ID, Role: models.RoleAdmin}

	_, err := svc.AddSchedule(ctx, admin, data.course.ID, dto.ScheduleCreateRequest{DayOfWeek: 1, StartTime: "10:00", EndTime: "09:00"})
	require.ErrorIs(t, err, ErrInvalidSchedule)
	_, err = svc.AddSchedule(ctx, admin, data.course.ID, dto.ScheduleCreateRequest{DayOfWeek: 1, StartTime: "25:00", EndTime: "26:00"})
	require.ErrorIs(t, err, ErrInvalidSchedule)

	schedule, err := svc.AddSchedule(ctx, admin, data.course.ID, dto.ScheduleCreateRequest{DayOfWeek: 2, StartTime: "09:00", EndTime: "11:00", Room: "Lab 1"})
	require.NoError(t, err)
	require.Equal(t, data.course.ID, schedule.CourseID)

	course, err := svc.Get(ctx, data.course.ID)
	require.NoError(t, err)
	require.Len(t, course.Schedules, 1)

	require.NoError(t, svc.DeleteSchedule(ctx, admin, data.course.ID, schedule.ID))
	require.ErrorIs(t, svc.DeleteSchedule(ctx, admin, data.course.ID, schedule.ID), ErrScheduleNotFound)
}

func TestCourseServiceUploadThumbnailResizes(t *testing.T) {
	env := newTestEnv(t)
	data := env.seed(t)
	svc := env.courseService(t)
	ctx := context.Background()

	course, err := svc.UploadThumbnail(ctx, Actor{ID: data.adminUser.ID, Role: models.RoleAdmin}, data.course.ID, buildFileHeader(t, "cover.png", pngBytes(t, 64, 32)))
	require.NoError(t, err)
	require.NotEmpty(t, course.ThumbnailURL)

	stored, err := env.courses.GetByID(ctx, data.course.ID)
	require.NoError(t, err)
	record, err := env.files.GetByKey(ctx, stored.ThumbnailKey)
	require.NoError(t, err)
	require.Equal(t, "image/jpeg", record.MimeType)
}

func TestCourseServiceDeleteRecordsActivity(t *testing.T) {
	env := newTestEnv(t)
	data := env.seed(t)
	svc := env.courseService(t)
	ctx := context.Background()

	require.NoError(t, svc.Delete(ctx, Actor{ID: data.adminUser.ID, Role: models.RoleAdmin}, data.course.ID))
	_, err := svc.Get(ctx, data.course.ID)
	require.ErrorIs(t, err, ErrCourseNotFound)

	logs, err := env.activity.List(ctx, dto.ActivityListRequest{Action: "course.deleted"})
	require.NoError(t, err)
	require.Len(t, logs.Items, 1)
	require.Equal(t, "Go Fundamentals", logs.Items[0].Metadata["title"])
}

func TestCatalogServiceHidesUnpublishedCourses(t *testing.T) {
	env := newTestEnv(t)
	data := env.seed(t)
	catalog := NewCatalogService(env.courses, env.categories, env.cache, testLogger())
	ctx := context.Background()

	draft := models.Course{Title: "Hidden", Slug: "hidden", Level: models.CourseLevelBeginner, Status: models.CourseStatusDraft}
	require.NoError(t, env.courses.Create(ctx, &draft))

	_, _, err := catalog.GetCourse(ctx, draft.ID)
	require.ErrorIs(t, err, ErrCourseNotFound)

	list, hit, err := catalog.ListCourses(ctx, dto.CourseListRequest{})
	require.NoError(t, err)
	require.False(t, hit)
	require.Len(t, list.Items, 1)
	require.Equal(t, data.course.ID, list.Items[0].ID)

	_, hit, err = catalog.ListCourses(ctx, dto.CourseListRequest{})
	require.NoError(t, err)
	require.True(t, hit)
}

func TestCategoryServiceLifecycle(t *testing.T) {
	env := newTestEnv(t)
	data := env.seed(t)
	svc := NewCategoryService(env.categories, env.activity, env.cache, env.validate, testLogger())
	catalog := NewCatalogService(env.courses, env.categories, env.cache, testLogger())
	ctx := context.Background()
	admin := Actor{ID: data.adminUser.ID, Role: models.RoleAdmin}

	inactive := false
	hidden, err := svc.Create(ctx, admin, dto.CategoryCreateRequest{Name: "Design Lab", Description: "<b>Visual</b> work", IsActive: &inactive})
	require.NoError(t, err)
	require.Equal(t, "design-lab", hidden.Slug)
	require.Equal(t, "Visual work", hidden.Description)
	require.False(t, hidden.IsActive)
	stored, err := env.categories.GetByID(ctx, hidden.ID)
	require.NoError(t, err)
	require.False(t, stored.IsActive)

	duplicate, err := svc.Create(ctx, admin, dto.CategoryCreateRequest{Name: "Programming"})
	require.NoError(t, err)
	require.Equal(t, "programming-2", duplicate.Slug)

	categories, _, err := catalog.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 2)

	require.ErrorIs(t, svc.Delete(ctx, admin, data.category.ID), ErrCategoryInUse)
	require.NoError(t, svc.Delete(ctx, admin, duplicate.ID))
	require.ErrorIs(t, svc.Delete(ctx, admin, duplicate.ID), ErrCategoryNotFound)

	categories, hit, err := catalog.ListCategories(ctx)
	require.NoError(t, err)
	require.False(t, hit)
	require.Len(t, categories, 1)
}
