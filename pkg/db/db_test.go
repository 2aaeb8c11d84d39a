package db_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/matt-steen/remindlist/pkg/db"
	"github.com/matt-steen/remindlist/pkg/notes"
	"github.com/matt-steen/remindlist/pkg/reminder"
	"github.com/stretchr/testify/assert"
)

func getDB(assert *assert.Assertions) *db.Database {
	tempFile, err := os.CreateTemp("", "test_new_database*")
	assert.Nil(err)

	database, err := db.NewDatabase(context.Background(), tempFile.Name())
	assert.NotNil(database)
	assert.Nil(err)

	return database
}

func sampleCollection(assert *assert.Assertions) notes.Collection {
	now := time.Date(2024, 3, 2, 9, 0, 0, 0, time.Local)

	c, _, ok := notes.Collection{}.AddNote("groceries", []notes.Item{
		{ID: "a1", Text: "milk"},
		{ID: "a2", Text: "eggs"},
	}, "2024-03-02T09:05", now)
	assert.True(ok)

	c, _, ok = c.AddNote("chores", []notes.Item{{ID: "b1", Text: "laundry"}}, "", now)
	assert.True(ok)

	return c
}

func TestNewDatabaseBadFile(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	database, err := db.NewDatabase(context.Background(), "/alwfkjasfd/asdflkjdsal.sqlite")
	assert.Nil(database)
	assert.NotNil(err)
	assert.Equal("error running base sql: unable to open database file: no such file or directory", err.Error())
}

func TestNewDatabaseIdempotent(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	tempFile, err := os.CreateTemp("", "test_new_database*")
	assert.Nil(err)

	database, err := db.NewDatabase(context.Background(), tempFile.Name())
	assert.NotNil(database)
	assert.Nil(err)

	err = database.Put(context.Background(), "k", "v")
	assert.Nil(err)

	err = database.Close()
	assert.Nil(err)

	database2, err := db.NewDatabase(context.Background(), tempFile.Name())
	assert.NotNil(database2)
	assert.Nil(err)

	value, err := database2.Get(context.Background(), "k")
	assert.Nil(err)
	assert.Equal("v", value)
}

func TestKV(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)
	ctx := context.Background()

	database := getDB(assert)
	defer database.Close()

	_, err := database.Get(ctx, "missing")
	assert.True(errors.Is(err, db.ErrNotFound))

	assert.Nil(database.Put(ctx, "k", "one"))
	assert.Nil(database.Put(ctx, "k", "two"))

	value, err := database.Get(ctx, "k")
	assert.Nil(err)
	assert.Equal("two", value)

	assert.Nil(database.Delete(ctx, "k"))
	assert.Nil(database.Delete(ctx, "k"))

	_, err = database.Get(ctx, "k")
	assert.True(errors.Is(err, db.ErrNotFound))
}

func TestStoreLoadMissing(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	store := db.NewStore(getDB(assert))
	defer store.Close()

	c, found, err := store.Load(context.Background())
	assert.Nil(err)
	assert.False(found)
	assert.Equal(0, c.Len())
}

func TestStoreRoundTrip(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)
	ctx := context.Background()

	store := db.NewStore(getDB(assert))
	defer store.Close()

	c := sampleCollection(assert)
	c, ok := c.ToggleItem(c.Notes[0].ID, "a2", time.Date(2024, 3, 2, 10, 0, 0, 0, time.Local))
	assert.True(ok)

	assert.Nil(store.Save(ctx, c))

	loaded, found, err := store.Load(ctx)
	assert.Nil(err)
	assert.True(found)
	assert.Equal(2, loaded.Len())
	assert.Equal("groceries", loaded.Notes[0].Title)
	assert.Equal("3/2 9:05", loaded.Notes[0].Reminder)
	assert.Equal("2024-03-02T09:05", loaded.Notes[0].ReminderISO)
	assert.Equal([]string{"a1", "a2"}, []string{loaded.Notes[0].Items[0].ID, loaded.Notes[0].Items[1].ID})
	assert.True(loaded.Notes[0].Items[1].IsCompleted)
	assert.NotNil(loaded.Notes[0].Items[1].CompletedAt)
	assert.Nil(loaded.Notes[0].Items[0].CompletedAt)
	assert.Equal("chores", loaded.Notes[1].Title)
}

func TestStoreSaveEmptyDeletesKey(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)
	ctx := context.Background()

	database := getDB(assert)
	store := db.NewStore(database)

	defer store.Close()

	assert.Nil(store.Save(ctx, sampleCollection(assert)))
	assert.Nil(store.Save(ctx, notes.Collection{}))

	_, err := database.Get(ctx, db.KeyNotes)
	assert.True(errors.Is(err, db.ErrNotFound))

	_, found, err := store.Load(ctx)
	assert.Nil(err)
	assert.False(found)
}

func TestStoreLoadLegacy(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)
	ctx := context.Background()

	database := getDB(assert)
	store := db.NewStore(database)

	defer store.Close()

	err := database.Put(ctx, db.KeyNotes, `[{"id":1,"title":"X","content":"buy milk","isCompleted":false}]`)
	assert.Nil(err)

	c, found, err := store.Load(ctx)
	assert.Nil(err)
	assert.True(found)
	assert.Equal(1, c.Len())
	assert.Equal(int64(1), c.Notes[0].ID)
	assert.Equal("X", c.Notes[0].Title)
	assert.Equal(1, len(c.Notes[0].Items))
	assert.Equal("buy milk", c.Notes[0].Items[0].Text)
	assert.False(c.Notes[0].Items[0].IsCompleted)
	assert.NotEqual("", c.Notes[0].Items[0].ID)

	// the migrated form is written back
	raw, err := database.Get(ctx, db.KeyNotes)
	assert.Nil(err)
	assert.False(strings.Contains(raw, `"content"`))
	assert.True(strings.Contains(raw, "buy milk"))
}

func TestStoreLoadLegacyEmptyContent(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)
	ctx := context.Background()

	database := getDB(assert)
	store := db.NewStore(database)

	defer store.Close()

	err := database.Put(ctx, db.KeyNotes, `[{"id":1,"title":"X","content":"","isCompleted":true}]`)
	assert.Nil(err)

	c, found, err := store.Load(ctx)
	assert.Nil(err)
	assert.True(found)
	assert.Equal(0, len(c.Notes[0].Items))
	assert.True(c.Notes[0].IsCompleted)
}

func TestStoreLoadLegacyEpochCompletedAt(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)
	ctx := context.Background()

	database := getDB(assert)
	store := db.NewStore(database)

	defer store.Close()

	err := database.Put(ctx, db.KeyNotes, `[{"id":1,"title":"X","items":[
		{"id":"i1","text":"done","isCompleted":true,"completedAt":1709337599999},
		{"id":"i2","text":"also done","isCompleted":true,"completedAt":"2024-03-02T00:00:00Z"},
		{"id":"i3","text":"open","isCompleted":false}
	],"isCompleted":false}]`)
	assert.Nil(err)

	c, found, err := store.Load(ctx)
	assert.Nil(err)
	assert.True(found)
	assert.Equal(3, len(c.Notes[0].Items))

	first := c.Notes[0].Items[0]
	assert.NotNil(first.CompletedAt)
	assert.Equal(int64(1709337599999), first.CompletedAt.UnixMilli())

	second := c.Notes[0].Items[1]
	assert.NotNil(second.CompletedAt)
	assert.True(second.CompletedAt.Equal(time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)))

	assert.Nil(c.Notes[0].Items[2].CompletedAt)

	// the numeric time is written back as a timestamp string
	raw, err := database.Get(ctx, db.KeyNotes)
	assert.Nil(err)
	assert.False(strings.Contains(raw, "1709337599999"))

	reloaded, _, err := store.Load(ctx)
	assert.Nil(err)
	assert.True(first.CompletedAt.Equal(*reloaded.Notes[0].Items[0].CompletedAt))
}

func TestStoreLoadBadCompletedAt(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)
	ctx := context.Background()

	database := getDB(assert)
	store := db.NewStore(database)

	defer store.Close()

	err := database.Put(ctx, db.KeyNotes, `[{"id":1,"title":"X","items":[{"id":"i1","text":"x","isCompleted":true,"completedAt":true}],"isCompleted":false}]`)
	assert.Nil(err)

	_, found, err := store.Load(ctx)
	assert.Nil(err)
	assert.False(found)
}

func TestStoreLoadMalformed(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)
	ctx := context.Background()

	database := getDB(assert)
	store := db.NewStore(database)

	defer store.Close()

	assert.Nil(database.Put(ctx, db.KeyNotes, `{not json`))

	c, found, err := store.Load(ctx)
	assert.Nil(err)
	assert.False(found)
	assert.Equal(0, c.Len())
}

func TestStoreLoadRepairsDuplicates(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)
	ctx := context.Background()

	database := getDB(assert)
	store := db.NewStore(database)

	defer store.Close()

	err := database.Put(ctx, db.KeyNotes, `[
		{"id":5,"title":"A","items":[{"id":"x","text":"one","isCompleted":false}],"isCompleted":false},
		{"id":5,"title":"B","items":[{"id":"x","text":"copy","isCompleted":false},{"id":"","text":"two","isCompleted":false}],"isCompleted":false}
	]`)
	assert.Nil(err)

	c, found, err := store.Load(ctx)
	assert.Nil(err)
	assert.True(found)
	assert.Nil(c.Validate())
	assert.Equal(int64(5), c.Notes[0].ID)
	assert.Equal(int64(6), c.Notes[1].ID)
	assert.Equal(1, len(c.Notes[1].Items))
	assert.Equal("two", c.Notes[1].Items[0].Text)
	assert.NotEqual("", c.Notes[1].Items[0].ID)
}

func TestStoreLoadDerivesReminder(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)
	ctx := context.Background()

	database := getDB(assert)
	store := db.NewStore(database)

	defer store.Close()

	err := database.Put(ctx, db.KeyNotes, `[{"id":1,"title":"X","items":[],"reminderIso":"2024-12-31T23:59","isCompleted":false}]`)
	assert.Nil(err)

	c, _, err := store.Load(ctx)
	assert.Nil(err)
	assert.Equal("12/31 23:59", c.Notes[0].Reminder)
}

func TestStoreMemo(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)
	ctx := context.Background()

	store := db.NewStore(getDB(assert))
	defer store.Close()

	memo, err := store.LoadMemo(ctx)
	assert.Nil(err)
	assert.Equal("", memo)

	assert.Nil(store.SaveMemo(ctx, "# plans\n\n- rest"))

	memo, err = store.LoadMemo(ctx)
	assert.Nil(err)
	assert.Equal("# plans\n\n- rest", memo)
}

func TestStorePermission(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)
	ctx := context.Background()

	database := getDB(assert)
	store := db.NewStore(database)

	defer store.Close()

	p, err := store.LoadPermission(ctx)
	assert.Nil(err)
	assert.Equal(reminder.PermissionDefault, p)

	assert.Nil(store.SavePermission(ctx, reminder.PermissionGranted))

	p, err = store.LoadPermission(ctx)
	assert.Nil(err)
	assert.Equal(reminder.PermissionGranted, p)

	assert.Nil(database.Put(ctx, db.KeyPermission, "bogus"))

	p, err = store.LoadPermission(ctx)
	assert.Nil(err)
	assert.Equal(reminder.PermissionDefault, p)
}

func TestMongoStore(t *testing.T) {
	t.Parallel()

	uri := os.Getenv("REMINDLIST_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("REMINDLIST_TEST_MONGO_URI not set")
	}

	assert := assert.New(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	kv, err := db.ConnectMongo(ctx, uri, "remindlist_test")
	assert.Nil(err)

	store := db.NewStore(kv)
	defer store.Close()

	assert.Nil(store.Save(ctx, sampleCollection(assert)))

	c, found, err := store.Load(ctx)
	assert.Nil(err)
	assert.True(found)
	assert.Equal(2, c.Len())

	assert.Nil(store.Save(ctx, notes.Collection{}))

	_, err = kv.Get(ctx, db.KeyNotes)
	assert.True(errors.Is(err, db.ErrNotFound))
}
