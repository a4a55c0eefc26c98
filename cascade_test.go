package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteVideoRemovesEverything(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	f := buildVideo(t, env, "alice")
	keep := buildVideo(t, env, "alice")

	file := putBlob(t, env, "alice", "video bytes")
	thumb := putBlob(t, env, "alice", "thumbnail bytes")
	media := putBlob(t, env, "alice", "question media")
	dur := 60.0
	require.NoError(t, env.svc.SaveVideoFile(ctx, "alice", f.video, file, &dur))
	require.NoError(t, env.svc.SaveThumbnail(ctx, "alice", f.video, thumb))
	require.NoError(t, env.svc.SaveQuestionMedia(ctx, "alice", f.q1, media))

	publish(t, env, "alice", f.video)
	viewer := Viewer{AnonKey: "browser-1"}
	sess, err := env.svc.StartSession(ctx, viewer, f.video)
	require.NoError(t, err)
	require.NoError(t, env.svc.RecordAnswer(ctx, viewer, sess.ID, f.q1, f.q1Options[0]))

	require.NoError(t, env.svc.DeleteVideo(ctx, "alice", f.video))

	assert.EqualValues(t, 0, countRows(t, env.db, &Video{}, "id = ?", f.video))
	assert.EqualValues(t, 0, countRows(t, env.db, &Chapter{}, "video_id = ?", f.video))
	assert.EqualValues(t, 0, countRows(t, env.db, &Question{}, "video_id = ?", f.video))
	assert.EqualValues(t, 0, countRows(t, env.db, &AnswerOption{}, "question_id IN ?", []string{f.q1, f.q2}))
	assert.EqualValues(t, 0, countRows(t, env.db, &InteractionPoint{}, "video_id = ?", f.video))
	assert.EqualValues(t, 0, countRows(t, env.db, &ViewerSession{}, "video_id = ?", f.video))
	assert.EqualValues(t, 0, countRows(t, env.db, &SessionAnswer{}, "session_id = ?", sess.ID))

	for _, id := range []string{file, thumb, media} {
		ok, err := env.blobs.Exists(id)
		require.NoError(t, err)
		assert.False(t, ok, "blob %s should be released", id)
	}
	assert.True(t, env.cache.invalidated(f.video))

	// the sibling video is intact
	assert.EqualValues(t, 2, countRows(t, env.db, &Chapter{}, "video_id = ?", keep.video))
	assert.EqualValues(t, 2, countRows(t, env.db, &Question{}, "video_id = ?", keep.video))
	assert.EqualValues(t, 4, countRows(t, env.db, &AnswerOption{}, "question_id IN ?", []string{keep.q1, keep.q2}))
	assert.EqualValues(t, 2, countRows(t, env.db, &InteractionPoint{}, "video_id = ?", keep.video))
}

func TestDeleteQuestionScope(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	f := buildVideo(t, env, "alice")

	// a second point asking q1 again later in the video
	again, err := env.svc.CreateInteractionPoint(ctx, "alice", f.video, InteractionInput{Timestamp: 30, QuestionID: f.q1})
	require.NoError(t, err)
	media := putBlob(t, env, "alice", "diagram")
	require.NoError(t, env.svc.SaveQuestionMedia(ctx, "alice", f.q1, media))

	require.NoError(t, env.svc.DeleteQuestion(ctx, "alice", f.q1))

	assert.EqualValues(t, 0, countRows(t, env.db, &Question{}, "id = ?", f.q1))
	assert.EqualValues(t, 0, countRows(t, env.db, &AnswerOption{}, "question_id = ?", f.q1))
	assert.EqualValues(t, 0, countRows(t, env.db, &InteractionPoint{}, "id IN ?", []string{f.interaction1, again}))
	ok, err := env.blobs.Exists(media)
	require.NoError(t, err)
	assert.False(t, ok)

	// siblings untouched
	assert.EqualValues(t, 1, countRows(t, env.db, &Question{}, "id = ?", f.q2))
	assert.EqualValues(t, 2, countRows(t, env.db, &AnswerOption{}, "question_id = ?", f.q2))
	assert.EqualValues(t, 1, countRows(t, env.db, &InteractionPoint{}, "id = ?", f.interaction2))
	assert.EqualValues(t, 2, countRows(t, env.db, &Chapter{}, "video_id = ?", f.video))
}

func TestRebindingReleasesPreviousBlob(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	vid, err := env.svc.CreateVideo(ctx, "alice", "v")
	require.NoError(t, err)

	first := putBlob(t, env, "alice", "take 1")
	second := putBlob(t, env, "alice", "take 2")
	require.NoError(t, env.svc.SaveVideoFile(ctx, "alice", vid, first, nil))
	// same blob again keeps it
	require.NoError(t, env.svc.SaveVideoFile(ctx, "alice", vid, first, nil))
	ok, err := env.blobs.Exists(first)
	require.NoError(t, err)
	require.True(t, ok)

	dur := 12.5
	require.NoError(t, env.svc.SaveVideoFile(ctx, "alice", vid, second, &dur))
	ok, err = env.blobs.Exists(first)
	require.NoError(t, err)
	assert.False(t, ok)

	v, err := env.svc.GetVideo(ctx, "alice", vid)
	require.NoError(t, err)
	require.NotNil(t, v.StorageID)
	assert.Equal(t, second, *v.StorageID)
	require.NotNil(t, v.Duration)
	assert.Equal(t, 12.5, *v.Duration)
}

func TestBindingUnknownBlobIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	vid, err := env.svc.CreateVideo(ctx, "alice", "v")
	require.NoError(t, err)

	err = env.svc.SaveVideoFile(ctx, "alice", vid, "8f14e45f-ceea-467f-a0e6-6c2b0f2c7b3e", nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBindingSomeoneElsesBlobIsRefused(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	f := buildVideo(t, env, "alice")
	x := putBlob(t, env, "alice", "alice's take")
	require.NoError(t, env.svc.SaveVideoFile(ctx, "alice", f.video, x, nil))
	publish(t, env, "alice", f.video)

	mine, err := env.svc.CreateVideo(ctx, "mallory", "copy")
	require.NoError(t, err)
	q, err := env.svc.CreateQuestion(ctx, "mallory", mine, QuestionInput{Type: QuestionTextInput, Text: "?"})
	require.NoError(t, err)

	assert.ErrorIs(t, env.svc.SaveVideoFile(ctx, "mallory", mine, x, nil), ErrUnauthorized)
	assert.ErrorIs(t, env.svc.SaveThumbnail(ctx, "mallory", mine, x), ErrUnauthorized)
	assert.ErrorIs(t, env.svc.SaveQuestionMedia(ctx, "mallory", q, x), ErrUnauthorized)
	require.NoError(t, env.svc.DeleteVideo(ctx, "mallory", mine))

	ok, err := env.blobs.Exists(x)
	require.NoError(t, err)
	assert.True(t, ok)
	_, err = env.svc.MediaURL(ctx, "", x)
	assert.NoError(t, err)
}

func TestSharedBlobOutlivesOneReference(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a, err := env.svc.CreateVideo(ctx, "alice", "a")
	require.NoError(t, err)
	b, err := env.svc.CreateVideo(ctx, "alice", "b")
	require.NoError(t, err)

	poster := putBlob(t, env, "alice", "poster")
	require.NoError(t, env.svc.SaveThumbnail(ctx, "alice", a, poster))
	require.NoError(t, env.svc.SaveThumbnail(ctx, "alice", b, poster))

	require.NoError(t, env.svc.DeleteVideo(ctx, "alice", a))
	ok, err := env.blobs.Exists(poster)
	require.NoError(t, err)
	assert.True(t, ok, "still the thumbnail of b")
	assert.EqualValues(t, 1, countRows(t, env.db, &Blob{}, "id = ?", poster))

	require.NoError(t, env.svc.DeleteVideo(ctx, "alice", b))
	ok, err = env.blobs.Exists(poster)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.EqualValues(t, 0, countRows(t, env.db, &Blob{}, "id = ?", poster))
}

func TestUploadRecordsOwner(t *testing.T) {
	env := newTestEnv(t)
	id := putBlob(t, env, "alice", "clip")

	var b Blob
	require.NoError(t, env.db.First(&b, "id = ?", id).Error)
	assert.Equal(t, "alice", b.OwnerID)
	assert.EqualValues(t, 4, b.Size)
}
