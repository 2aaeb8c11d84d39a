package controller

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/matt-steen/remindlist/pkg/db"
	"github.com/matt-steen/remindlist/pkg/notes"
	"github.com/matt-steen/remindlist/pkg/reminder"
	"github.com/matt-steen/remindlist/pkg/reorder"
	"github.com/stretchr/testify/assert"
)

func getStore(assert *assert.Assertions) *db.Store {
	tempFile, err := os.CreateTemp("", "test_controller*")
	assert.Nil(err)

	database, err := db.NewDatabase(context.Background(), tempFile.Name())
	assert.Nil(err)

	return db.NewStore(database)
}

func sampleNotes() []notes.Note {
	return []notes.Note{
		{ID: 1, Title: "A", Items: []notes.Item{{ID: "a1", Text: "one"}, {ID: "a2", Text: "two", IsCompleted: true}}},
		{ID: 2, Title: "B", Items: []notes.Item{}, Reminder: "3/2 9:05"},
	}
}

func TestBuildRows(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	rows := buildRows(sampleNotes())
	assert.Equal([]row{
		{noteID: 1},
		{noteID: 1, itemID: "a1"},
		{noteID: 1, itemID: "a2"},
		{noteID: 2},
	}, rows)

	assert.Equal(0, findRow(rows, 1, ""))
	assert.Equal(2, findRow(rows, 1, "a2"))
	assert.Equal(3, findRow(rows, 2, ""))
	assert.Equal(-1, findRow(rows, 3, ""))
	assert.Equal(-1, findRow(rows, 1, "zz"))

	// items are found wherever they currently live
	assert.Equal(2, findRow(rows, 2, "a2"))
}

func TestRowTarget(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	assert.Equal(reorder.OverNote(2), row{noteID: 2}.target())
	assert.Equal(reorder.OverItem("a1"), row{noteID: 1, itemID: "a1"}.target())
}

func TestNotesContent(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	content := newNotesContent(sampleNotes(), "item:a1")
	assert.Equal(5, content.GetRowCount())
	assert.Equal(3, content.GetColumnCount())

	r, ok := content.rowAt(2)
	assert.True(ok)
	assert.Equal(row{noteID: 1, itemID: "a1"}, r)

	_, ok = content.rowAt(0)
	assert.False(ok)

	assert.True(strings.HasPrefix(content.GetCell(2, 1).Text, "» "))
	assert.Equal("1/2 (50%)", content.GetCell(1, 2).Text)
	assert.True(strings.Contains(content.GetCell(4, 2).Text, "3/2 9:05"))
	assert.Nil(content.GetCell(9, 1))
}

func TestDragLabel(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	assert.Equal("note:7", dragLabel(reorder.NoteSubject(7, false)))
	assert.Equal("item:x", dragLabel(reorder.ItemSubject(7, "x", false)))
}

func TestNormalizeReminder(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	iso, ok := normalizeReminder("")
	assert.True(ok)
	assert.Equal("", iso)

	iso, ok = normalizeReminder(" 2024-03-02 09:05 ")
	assert.True(ok)
	assert.Equal("2024-03-02T09:05", iso)

	iso, ok = normalizeReminder("2024-03-02T09:05:30")
	assert.True(ok)
	assert.Equal("2024-03-02T09:05", iso)

	_, ok = normalizeReminder("next tuesday")
	assert.False(ok)
}

func TestShortcutLine(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	line := shortcutLine(map[Key]KeyEvent{
		KeyQ:     {Description: "Exit"},
		KeyEnter: {Description: "Drop / open list"},
		KeySpace: {Description: "Pick up"},
	})

	assert.Equal("[orange]<Enter>[white] Drop / open list  [orange]<q>[white] Exit  [orange]<Space>[white] Pick up", line)
}

func TestAsKey(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	assert.Equal(KeyShiftJ, AsKey(tcell.NewEventKey(tcell.KeyRune, 'J', tcell.ModShift)))
	assert.Equal(KeyEsc, AsKey(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)))
	assert.Equal("F2", KeyF2.String())
}

func TestRenderMemoEmpty(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	assert.True(strings.Contains(renderMemo("  ", memoWrapWidth), "No memo yet"))
	assert.True(strings.Contains(renderMemo("# Plans\n\nrest", memoWrapWidth), "Plans"))
}

func TestNotifierPermission(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)
	ctx := context.Background()

	store := getStore(assert)
	defer store.Close()

	n, err := NewNotifier(ctx, store)
	assert.Nil(err)
	assert.Equal(reminder.PermissionDefault, n.Permission())

	err = n.Dispatch("hello", reminder.Notification{})
	assert.True(errors.Is(err, reminder.ErrPermissionNotGranted))

	n.attach(func(context.Context) (bool, error) { return false, nil }, nil)

	p, err := n.RequestPermission(ctx)
	assert.Nil(err)
	assert.Equal(reminder.PermissionDenied, p)

	var delivered []string

	n.attach(
		func(context.Context) (bool, error) { return true, nil },
		func(title string, _ reminder.Notification) { delivered = append(delivered, title) },
	)

	// a denied permission can be asked for again
	p, err = n.RequestPermission(ctx)
	assert.Nil(err)
	assert.Equal(reminder.PermissionGranted, p)

	assert.Nil(n.Dispatch("Reminder: A", reminder.Notification{Tag: "1"}))
	assert.Equal([]string{"Reminder: A"}, delivered)

	// the answer survives a restart
	reloaded, err := NewNotifier(ctx, store)
	assert.Nil(err)
	assert.Equal(reminder.PermissionGranted, reloaded.Permission())
}

func TestNotifierPromptError(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	store := getStore(assert)
	defer store.Close()

	n, err := NewNotifier(context.Background(), store)
	assert.Nil(err)

	n.attach(func(ctx context.Context) (bool, error) {
		<-ctx.Done()

		return false, ctx.Err()
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p, err := n.RequestPermission(ctx)
	assert.True(errors.Is(err, context.Canceled))
	assert.Equal(reminder.PermissionDefault, p)
}

func TestNotifierWithoutPrompt(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	store := getStore(assert)
	defer store.Close()

	n, err := NewNotifier(context.Background(), store)
	assert.Nil(err)

	p, err := n.RequestPermission(context.Background())
	assert.Nil(err)
	assert.Equal(reminder.PermissionGranted, p)
	assert.Nil(reminder.SendTest(n))
}
