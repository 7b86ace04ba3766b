package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/blog-publishing-api/internal/config"
	"github.com/blog-publishing-api/internal/errs"
	"github.com/blog-publishing-api/internal/mocks"
	"github.com/blog-publishing-api/internal/models"
	"github.com/blog-publishing-api/internal/repository"
	"github.com/blog-publishing-api/internal/service"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc     *service.Services
	repos   *repository.Repositories
	clock   *mocks.FakeClock
	counter *mocks.MockViewCounter
	cat     *models.Category
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := &config.Config{Blog: config.BlogConfig{HomePageSize: 2, AdminPathPrefix: "/admin"}}
	repos := repository.NewInMemory()
	clock := mocks.NewFakeClock(start)
	counter := mocks.NewMockViewCounter()
	svc := service.NewServices(repos, cfg, zerolog.Nop(),
		service.WithClock(clock.Now),
		service.WithViewCounter(counter),
	)

	cat, err := svc.Taxonomy.CreateCategory(context.Background(), models.Admin, &models.TaxonomyInput{Name: "技术文章"})
	require.NoError(t, err)

	return &fixture{svc: svc, repos: repos, clock: clock, counter: counter, cat: cat}
}

func (f *fixture) input(title string, status models.PostStatus, publishedAt *time.Time, tagIDs ...string) *models.PostInput {
	return &models.PostInput{
		Title:       title,
		Content:     "content of " + title,
		Status:      status,
		PublishedAt: publishedAt,
		CategoryID:  f.cat.ID,
		TagIDs:      tagIDs,
	}
}

func (f *fixture) mustCreate(t *testing.T, in *models.PostInput) *models.Post {
	t.Helper()
	p, err := f.svc.Posts.Create(context.Background(), models.Admin, in)
	require.NoError(t, err)
	return p
}

func (f *fixture) tag(t *testing.T, name string) *models.Tag {
	t.Helper()
	tag, err := f.svc.Taxonomy.CreateTag(context.Background(), models.Admin, &models.TaxonomyInput{Name: name})
	require.NoError(t, err)
	return tag
}

func at(t time.Time) *time.Time { return &t }

func TestPostService_CreateDerivesSlug(t *testing.T) {
	f := newFixture(t)

	p := f.mustCreate(t, f.input("  Hello, World!  ", "", nil))
	assert.Equal(t, "hello-world", p.Slug)
	assert.Equal(t, "Hello, World!", p.Title)
	assert.Equal(t, models.PostStatusDraft, p.Status, "empty status defaults to draft")
	require.NotNil(t, p.Category)
	assert.Equal(t, "技术文章", p.Category.Name)
	assert.Equal(t, start, p.CreatedAt)

	cjk := f.mustCreate(t, f.input("你好 世界", models.PostStatusDraft, nil))
	assert.Equal(t, "你好-世界", cjk.Slug)

	explicit := f.input("Anything", models.PostStatusDraft, nil)
	explicit.Slug = "My Custom Slug"
	assert.Equal(t, "my-custom-slug", f.mustCreate(t, explicit).Slug)
}

func TestPostService_DuplicateSlug(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.mustCreate(t, f.input("Same Title", models.PostStatusDraft, nil))

	_, err := f.svc.Posts.Create(ctx, models.Admin, f.input("same title!", models.PostStatusDraft, nil))
	require.Error(t, err)
	assert.True(t, errs.IsDuplicateKey(err), "got %v", err)

	count, err := f.repos.Post.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "no post row is created on collision")
}

func TestPostService_RequiresAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.mustCreate(t, f.input("Guarded", models.PostStatusDraft, nil))

	_, err := f.svc.Posts.Create(ctx, models.Public, f.input("Nope", models.PostStatusDraft, nil))
	assert.True(t, errs.IsForbidden(err))
	_, err = f.svc.Posts.Update(ctx, models.Public, p.ID, f.input("Nope", models.PostStatusDraft, nil))
	assert.True(t, errs.IsForbidden(err))
	assert.True(t, errs.IsForbidden(f.svc.Posts.Delete(ctx, models.Public, p.ID)))
	_, err = f.svc.Posts.Get(ctx, models.Public, p.ID)
	assert.True(t, errs.IsForbidden(err))
	_, err = f.svc.Dashboard.Stats(ctx, models.Public)
	assert.True(t, errs.IsForbidden(err))
}

func TestPostService_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input *models.PostInput
		field string
	}{
		{"empty title", f.input("", models.PostStatusDraft, nil), "title"},
		{"punctuation only title", f.input("!!!", models.PostStatusDraft, nil), "slug"},
		{"scheduled without date", f.input("Later", models.PostStatusScheduled, nil), "published_at"},
		{"unknown status", f.input("Odd", "archived", nil), "status"},
		{"bad tag id", f.input("Tagged", models.PostStatusDraft, nil, "not-a-uuid"), "tag_ids"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Posts.Create(ctx, models.Admin, tt.input)
			require.Error(t, err)
			assert.True(t, errs.IsValidation(err), "got %v", err)

			var fe errs.FieldErrors
			require.True(t, errors.As(err, &fe))
			fields := make([]string, 0, len(fe))
			for _, e := range fe {
				fields = append(fields, e.Field)
			}
			assert.Contains(t, fields, tt.field)
		})
	}

	noContent := f.input("No Content", models.PostStatusDraft, nil)
	noContent.Content = "   "
	_, err := f.svc.Posts.Create(ctx, models.Admin, noContent)
	assert.True(t, errs.IsValidation(err))

	missingCategory := f.input("Lost", models.PostStatusDraft, nil)
	missingCategory.CategoryID = "8d7f1c1e-3c4a-4a55-9a57-2d3f0e6f0a11"
	_, err = f.svc.Posts.Create(ctx, models.Admin, missingCategory)
	assert.True(t, errs.IsInvalidReference(err), "got %v", err)
}

func TestPostService_ScheduledVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.mustCreate(t, f.input("Soon", models.PostStatusScheduled, at(start.Add(time.Hour))))
	f.mustCreate(t, f.input("Hidden Draft", models.PostStatusDraft, at(start.Add(-time.Hour))))

	_, err := f.svc.Posts.GetBySlug(ctx, models.Public, "soon", time.Time{})
	assert.True(t, errs.IsNotFound(err), "scheduled post is hidden before its time")

	got, err := f.svc.Posts.GetBySlug(ctx, models.Public, "soon", start.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "Soon", got.Title)

	f.clock.Advance(2 * time.Hour)
	_, err = f.svc.Posts.GetBySlug(ctx, models.Public, "soon", time.Time{})
	assert.NoError(t, err, "asOf defaults to the clock")

	_, err = f.svc.Posts.GetBySlug(ctx, models.Public, "hidden-draft", start.AddDate(10, 0, 0))
	assert.True(t, errs.IsNotFound(err), "drafts are never visible")

	draft, err := f.svc.Posts.GetBySlug(ctx, models.Admin, "hidden-draft", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusDraft, draft.Status)
}

func TestPostService_Listings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	goTag := f.tag(t, "Go")

	f.mustCreate(t, f.input("Old", models.PostStatusPublished, at(start.AddDate(0, 0, -3)), goTag.ID))
	f.mustCreate(t, f.input("Middle", models.PostStatusPublished, at(start.AddDate(0, 0, -2))))
	f.mustCreate(t, f.input("New", models.PostStatusPublished, at(start.AddDate(0, 0, -1)), goTag.ID))
	f.mustCreate(t, f.input("Draft", models.PostStatusDraft, nil, goTag.ID))

	titles := func(posts []models.Post) []string {
		out := make([]string, 0, len(posts))
		for _, p := range posts {
			out = append(out, p.Title)
		}
		return out
	}

	home, err := f.svc.Posts.ListHome(ctx, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, []string{"New", "Middle"}, titles(home), "home page is limited to the page size")

	tag, tagged, err := f.svc.Posts.ListByTagSlug(ctx, "go", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, goTag.ID, tag.ID)
	assert.Equal(t, []string{"New", "Old"}, titles(tagged))

	cat, inCategory, err := f.svc.Posts.ListByCategorySlug(ctx, f.cat.Slug, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, f.cat.ID, cat.ID)
	assert.Len(t, inCategory, 3)

	_, _, err = f.svc.Posts.ListByCategorySlug(ctx, "missing", time.Time{})
	assert.True(t, errs.IsNotFound(err))

	all, err := f.svc.Posts.List(ctx, models.Admin, models.PostFilter{OrderBy: models.OrderUpdatedDesc}, time.Time{})
	require.NoError(t, err)
	assert.Len(t, all, 4, "admins see drafts")

	public, err := f.svc.Posts.List(ctx, models.Public, models.PostFilter{}, time.Time{})
	require.NoError(t, err)
	assert.Len(t, public, 3)
}

func TestPostService_ArchiveMonthShortMonth(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.mustCreate(t, f.input("End Of Feb", models.PostStatusPublished, at(time.Date(2023, 2, 28, 23, 30, 0, 0, time.UTC))))
	f.mustCreate(t, f.input("First Of March", models.PostStatusPublished, at(time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC))))
	f.mustCreate(t, f.input("First Of Feb", models.PostStatusPublished, at(time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC))))

	feb, err := f.svc.Posts.ListArchiveMonth(ctx, "2023-02", time.Time{})
	require.NoError(t, err)
	require.Len(t, feb, 2)
	assert.Equal(t, "End Of Feb", feb[0].Title)
	assert.Equal(t, "First Of Feb", feb[1].Title)

	_, err = f.svc.Posts.ListArchiveMonth(ctx, "2023-13", time.Time{})
	assert.True(t, errs.IsValidation(err))
}

func TestPostService_SequentialTagReplacement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a1, a2 := f.tag(t, "a1"), f.tag(t, "a2")
	b1, b2 := f.tag(t, "b1"), f.tag(t, "b2")

	p := f.mustCreate(t, f.input("Tagged", models.PostStatusDraft, nil))

	_, err := f.svc.Posts.Update(ctx, models.Admin, p.ID, f.input("Tagged", models.PostStatusDraft, nil, a1.ID, a2.ID))
	require.NoError(t, err)
	updated, err := f.svc.Posts.Update(ctx, models.Admin, p.ID, f.input("Tagged", models.PostStatusDraft, nil, b1.ID, b2.ID, b1.ID))
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{b1.ID, b2.ID}, updated.TagIDs())

	reloaded, err := f.svc.Posts.Get(ctx, models.Admin, p.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{b1.ID, b2.ID}, reloaded.TagIDs())
}

func TestPostService_UpdateAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.mustCreate(t, f.input("Original", models.PostStatusDraft, nil))
	f.clock.Advance(time.Minute)

	in := f.input("Renamed", models.PostStatusPublished, at(start))
	in.Slug = "original"
	updated, err := f.svc.Posts.Update(ctx, models.Admin, p.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, "original", updated.Slug)
	assert.Equal(t, start, updated.CreatedAt)
	assert.Equal(t, start.Add(time.Minute), updated.UpdatedAt)

	_, err = f.svc.Posts.Update(ctx, models.Admin, "3b9c2a55-4d5e-4f60-8a71-9b82c3d4e5f6", in)
	assert.True(t, errs.IsNotFound(err))

	_, err = f.svc.Comments.Create(ctx, p.ID, &models.CommentInput{AuthorName: "ann", Content: "hi"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Posts.Delete(ctx, models.Admin, p.ID))
	assert.True(t, errs.IsNotFound(f.svc.Posts.Delete(ctx, models.Admin, p.ID)))

	comments, err := f.svc.Comments.GetTree(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)

	n, err := f.repos.Comment.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	assert.True(t, errs.IsValidation(f.svc.Posts.Delete(ctx, models.Admin, "not-a-uuid")))
}

func TestCommentService_Tree(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.mustCreate(t, f.input("Discussed", models.PostStatusPublished, at(start)))

	create := func(author string, parent *models.Comment) *models.Comment {
		t.Helper()
		in := &models.CommentInput{AuthorName: author, Content: "from " + author}
		if parent != nil {
			in.ParentID = &parent.ID
		}
		c, err := f.svc.Comments.Create(ctx, p.ID, in)
		require.NoError(t, err)
		f.clock.Advance(time.Second)
		return c
	}

	a := create("A", nil)
	b := create("B", nil)
	c := create("C", a)
	d := create("D", c)

	tree, err := f.svc.Comments.GetTree(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, tree, 2)
	assert.Equal(t, b.ID, tree[0].ID, "roots are newest first")
	assert.Equal(t, a.ID, tree[1].ID)
	require.Len(t, tree[1].Replies, 1)
	assert.Equal(t, c.ID, tree[1].Replies[0].ID)
	require.Len(t, tree[1].Replies[0].Replies, 1)
	assert.Equal(t, d.ID, tree[1].Replies[0].Replies[0].ID)
	assert.Empty(t, tree[0].Replies)
}

func TestCommentService_ParentScope(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.mustCreate(t, f.input("First", models.PostStatusPublished, at(start)))
	second := f.mustCreate(t, f.input("Second", models.PostStatusPublished, at(start)))

	parent, err := f.svc.Comments.Create(ctx, first.ID, &models.CommentInput{AuthorName: "ann", Content: "root"})
	require.NoError(t, err)

	_, err = f.svc.Comments.Create(ctx, second.ID, &models.CommentInput{AuthorName: "bob", Content: "reply", ParentID: &parent.ID})
	assert.True(t, errs.IsInvalidReference(err), "got %v", err)

	missing := "0f0e0d0c-0b0a-4909-8807-060504030201"
	_, err = f.svc.Comments.Create(ctx, first.ID, &models.CommentInput{AuthorName: "bob", Content: "reply", ParentID: &missing})
	assert.True(t, errs.IsInvalidReference(err), "got %v", err)

	_, err = f.svc.Comments.Create(ctx, missing, &models.CommentInput{AuthorName: "bob", Content: "hi"})
	assert.True(t, errs.IsNotFound(err), "got %v", err)

	_, err = f.svc.Comments.Create(ctx, first.ID, &models.CommentInput{AuthorName: "", Content: "anonymous"})
	assert.True(t, errs.IsValidation(err))
}

func TestArchiveService_Stats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.mustCreate(t, f.input("Jan 15", models.PostStatusPublished, at(time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC))))
	f.mustCreate(t, f.input("Jan 31", models.PostStatusPublished, at(time.Date(2024, 1, 31, 10, 0, 0, 0, time.UTC))))
	f.mustCreate(t, f.input("Feb 1", models.PostStatusPublished, at(time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC))))
	f.mustCreate(t, f.input("Future", models.PostStatusScheduled, at(start.Add(time.Hour))))
	f.mustCreate(t, f.input("Undated", models.PostStatusPublished, nil))

	stats, err := f.svc.Archive.Stats(ctx, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, []models.ArchiveBucket{
		{Month: "2024-02", Count: 1},
		{Month: "2024-01", Count: 2},
	}, stats)

	later, err := f.svc.Archive.Stats(ctx, start.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, models.ArchiveBucket{Month: "2024-03", Count: 1}, later[0])
}

func TestTaxonomyService_CategoryLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	other, err := f.svc.Taxonomy.CreateCategory(ctx, models.Admin, &models.TaxonomyInput{Name: "随笔"})
	require.NoError(t, err)
	assert.Equal(t, "随笔", other.Slug)

	_, err = f.svc.Taxonomy.CreateCategory(ctx, models.Admin, &models.TaxonomyInput{Name: "随笔"})
	assert.True(t, errs.IsDuplicateKey(err))

	f.mustCreate(t, f.input("Lives Here", models.PostStatusDraft, nil))

	err = f.svc.Taxonomy.DeleteCategory(ctx, models.Admin, f.cat.ID)
	assert.True(t, errs.IsInvalidReference(err), "got %v", err)

	n, err := f.svc.Taxonomy.ReassignPosts(ctx, models.Admin, f.cat.ID, other.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, f.svc.Taxonomy.DeleteCategory(ctx, models.Admin, f.cat.ID))

	moved, err := f.svc.Posts.GetBySlug(ctx, models.Admin, "lives-here", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, other.ID, moved.CategoryID)

	_, err = f.svc.Taxonomy.ReassignPosts(ctx, models.Admin, other.ID, other.ID)
	assert.True(t, errs.IsValidation(err))
	assert.True(t, errs.IsForbidden(f.svc.Taxonomy.DeleteCategory(ctx, models.Public, other.ID)))
}

func TestTaxonomyService_TagDeleteDetaches(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	keep, drop := f.tag(t, "前端"), f.tag(t, "后端")
	p := f.mustCreate(t, f.input("Stack", models.PostStatusDraft, nil, keep.ID, drop.ID))

	require.NoError(t, f.svc.Taxonomy.DeleteTag(ctx, models.Admin, drop.ID))

	got, err := f.svc.Posts.Get(ctx, models.Admin, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{keep.ID}, got.TagIDs())

	tags, err := f.svc.Taxonomy.ListTags(ctx)
	require.NoError(t, err)
	assert.Len(t, tags, 1)
}

func TestViewRecorder_NeverFails(t *testing.T) {
	cfg := &config.Config{Blog: config.BlogConfig{HomePageSize: 10, AdminPathPrefix: "/admin"}}
	repos := repository.NewInMemory()
	failing := mocks.NewMockViewRepository()
	failing.InsertError = errors.New("connection refused")
	repos.View = failing
	counter := mocks.NewMockViewCounter()
	counter.IncrError = errors.New("redis down")

	svc := service.NewServices(repos, cfg, zerolog.Nop(), service.WithViewCounter(counter))
	ctx := context.Background()

	cat, err := svc.Taxonomy.CreateCategory(ctx, models.Admin, &models.TaxonomyInput{Name: "News"})
	require.NoError(t, err)
	_, err = svc.Posts.Create(ctx, models.Admin, &models.PostInput{
		Title: "Visible", Content: "x", Status: models.PostStatusPublished, CategoryID: cat.ID,
	})
	require.NoError(t, err)

	assert.NotPanics(t, func() { svc.Views.Record(ctx, "/posts/visible", "10.0.0.1") })
	assert.Equal(t, 1, failing.CreateCalls)

	post, err := svc.Posts.GetBySlug(ctx, models.Public, "visible", time.Time{})
	require.NoError(t, err, "the triggering read is unaffected")
	assert.Equal(t, "Visible", post.Title)

	failing.PanicOnSave = true
	assert.NotPanics(t, func() { svc.Views.Record(ctx, "/posts/visible", "10.0.0.1") })
}

func TestViewRecorder_SkipsAdminAndCounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.svc.Views.Record(ctx, "/posts/a", "10.0.0.1")
	f.svc.Views.Record(ctx, "/posts/a", "10.0.0.2")
	f.svc.Views.Record(ctx, "/archive", "10.0.0.1")
	f.svc.Views.Record(ctx, "/admin", "10.0.0.1")
	f.svc.Views.Record(ctx, "/admin/posts", "10.0.0.1")
	f.svc.Views.Record(ctx, "/administrivia", "10.0.0.1")

	n, err := f.repos.View.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	stats, err := f.svc.Dashboard.Stats(ctx, models.Admin)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.ViewCount)
	assert.Equal(t, start, stats.GeneratedAt)
	require.NotEmpty(t, stats.TopPaths)
	assert.Equal(t, models.PathCount{Path: "/posts/a", Views: 2}, stats.TopPaths[0])
}

func TestDashboardService_Counts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.mustCreate(t, f.input("Counted", models.PostStatusDraft, nil))
	f.mustCreate(t, f.input("Also Counted", models.PostStatusScheduled, at(start.Add(time.Hour))))
	_, err := f.svc.Comments.Create(ctx, p.ID, &models.CommentInput{AuthorName: "ann", Content: "hi"})
	require.NoError(t, err)

	f.counter.TopError = errors.New("redis down")
	stats, err := f.svc.Dashboard.Stats(ctx, models.Admin)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.PostCount, "counts ignore visibility")
	assert.Equal(t, 1, stats.CommentCount)
	assert.Empty(t, stats.TopPaths)
}
