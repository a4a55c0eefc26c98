package main

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

type testEnv struct {
	svc    *Service
	db     *gorm.DB
	blobs  *DiskStore
	signer *Signer
	cache  *recordingCache
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()

	db, err := OpenDB(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	t.Cleanup(func() { _ = CloseDB(db) })

	blobs, err := NewDiskStore(filepath.Join(dir, "blobs"))
	require.NoError(t, err)

	signer := NewSigner(testSecret)
	cache := newRecordingCache()
	svc := NewService(db, blobs, signer, cache, zerolog.Nop(), ServiceOptions{
		PublicBaseURL: "http://media.test",
	})
	return &testEnv{svc: svc, db: db, blobs: blobs, signer: signer, cache: cache}
}

// recordingCache is an in-memory ProjectionCache that remembers invalidations.
// beforeSet, when set, runs once at the start of the next Set.
type recordingCache struct {
	mu        sync.Mutex
	entries   map[string][]InteractionView
	gens      map[string]int64
	deletes   []string
	beforeSet func()
}

func newRecordingCache() *recordingCache {
	return &recordingCache{entries: map[string][]InteractionView{}, gens: map[string]int64{}}
}

func (c *recordingCache) Get(_ context.Context, videoID string) ([]InteractionView, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[videoID]
	return v, ok
}

func (c *recordingCache) Generation(_ context.Context, videoID string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[videoID]
}

func (c *recordingCache) Set(_ context.Context, videoID string, gen int64, views []InteractionView) {
	c.mu.Lock()
	hook := c.beforeSet
	c.beforeSet = nil
	c.mu.Unlock()
	if hook != nil {
		hook()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gens[videoID] {
		return
	}
	c.entries[videoID] = views
}

func (c *recordingCache) Delete(_ context.Context, videoID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, videoID)
	c.gens[videoID]++
	c.deletes = append(c.deletes, videoID)
}

func (c *recordingCache) invalidated(videoID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range c.deletes {
		if id == videoID {
			return true
		}
	}
	return false
}

// fixture is one fully authored video: two chapters, two questions with
// options, and an interaction point per question.
type fixture struct {
	video        string
	chapters     []string
	q1, q2       string
	q1Options    []string
	q2Options    []string
	interaction1 string
	interaction2 string
}

func buildVideo(t *testing.T, env *testEnv, owner Identity) fixture {
	t.Helper()
	ctx := context.Background()
	svc := env.svc

	var f fixture
	var err error
	f.video, err = svc.CreateVideo(ctx, owner, "Lesson")
	require.NoError(t, err)

	for _, label := range []string{"Intro", "Main"} {
		id, err := svc.CreateChapter(ctx, owner, f.video, ChapterInput{Label: label, Timestamp: float64(len(f.chapters) * 10)})
		require.NoError(t, err)
		f.chapters = append(f.chapters, id)
	}

	f.q1, err = svc.CreateQuestion(ctx, owner, f.video, QuestionInput{Type: QuestionMultipleChoice, Text: "Pick one"})
	require.NoError(t, err)
	for i, text := range []string{"A", "B"} {
		id, err := svc.CreateAnswerOption(ctx, owner, f.q1, AnswerOptionInput{Text: text, JumpToTimestamp: float64(5 * (i + 1))})
		require.NoError(t, err)
		f.q1Options = append(f.q1Options, id)
	}

	f.q2, err = svc.CreateQuestion(ctx, owner, f.video, QuestionInput{Type: QuestionTrueFalse, Text: "True?"})
	require.NoError(t, err)
	for _, text := range []string{"True", "False"} {
		id, err := svc.CreateAnswerOption(ctx, owner, f.q2, AnswerOptionInput{Text: text, JumpToTimestamp: 25})
		require.NoError(t, err)
		f.q2Options = append(f.q2Options, id)
	}

	f.interaction1, err = svc.CreateInteractionPoint(ctx, owner, f.video, InteractionInput{Timestamp: 10, QuestionID: f.q1})
	require.NoError(t, err)
	f.interaction2, err = svc.CreateInteractionPoint(ctx, owner, f.video, InteractionInput{Timestamp: 20, QuestionID: f.q2})
	require.NoError(t, err)
	return f
}

func publish(t *testing.T, env *testEnv, owner Identity, videoID string) {
	t.Helper()
	status := StatusPublished
	require.NoError(t, env.svc.UpdateVideo(context.Background(), owner, videoID, VideoPatch{Status: &status}))
}

// putBlob uploads content as owner through an upload token.
func putBlob(t *testing.T, env *testEnv, owner Identity, content string) string {
	t.Helper()
	token, err := env.signer.Sign(PurposeUpload, string(owner), time.Minute)
	require.NoError(t, err)
	id, err := env.svc.StoreUpload(context.Background(), token, strings.NewReader(content))
	require.NoError(t, err)
	return id
}

func countRows(t *testing.T, db *gorm.DB, model any, where string, args ...any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Where(where, args...).Count(&n).Error)
	return n
}
