package repo

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type gadget struct {
	ID      string `gorm:"column:id;primaryKey"`
	Name    string `gorm:"column:name;not null"`
	Price   int    `gorm:"column:price;not null"`
	DelFlag bool   `gorm:"column:del_flag;not null;default:false"`
}

func (gadget) TableName() string { return "gadgets" }

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, conn.Exec(`
CREATE TABLE gadgets (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  price INTEGER NOT NULL,
  del_flag INTEGER NOT NULL DEFAULT 0
);`).Error)
	return conn
}

func byName(name string) Scope {
	return func(q *gorm.DB) *gorm.DB {
		return q.Where("name = ?", name)
	}
}

func TestBaseDB_BindsContext(t *testing.T) {
	conn := newTestDB(t)
	base := NewBase(conn)

	ctx := context.WithValue(context.Background(), struct{}{}, "value")
	withCtx := base.DB(ctx)

	require.NotNil(t, withCtx)
	require.NotNil(t, withCtx.Statement)
	assert.Equal(t, ctx, withCtx.Statement.Context)

	assert.Same(t, conn, base.DB(nil))
}

func TestStoreCreateAndFindByID(t *testing.T) {
	store := NewStore[gadget](newTestDB(t))
	ctx := context.Background()

	created, err := store.Create(ctx, &gadget{ID: "g1", Name: "orokin cell", Price: 5})
	require.NoError(t, err)
	require.Equal(t, "g1", created.ID)

	got, err := store.FindByID(ctx, "g1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "orokin cell", got.Name)
}

func TestStoreCreateDuplicateIsConflict(t *testing.T) {
	store := NewStore[gadget](newTestDB(t))
	ctx := context.Background()

	_, err := store.Create(ctx, &gadget{ID: "g1", Name: "a", Price: 1})
	require.NoError(t, err)

	_, err = store.Create(ctx, &gadget{ID: "g1", Name: "b", Price: 2})
	require.Error(t, err)
	assert.True(t, IsConflict(err), "duplicate insert should map to conflict, got %v", err)
}

func TestStoreCreateAllKeepsInputOrder(t *testing.T) {
	store := NewStore[gadget](newTestDB(t))
	ctx := context.Background()

	batch := []*gadget{
		{ID: "g1", Name: "first", Price: 1},
		{ID: "g2", Name: "second", Price: 2},
		{ID: "g3", Name: "third", Price: 3},
	}
	created, err := store.CreateAll(ctx, batch)
	require.NoError(t, err)
	require.Len(t, created, 3)
	assert.Equal(t, "g2", created[1].ID)

	rows, err := store.Find(ctx, nil, 0, 0)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestStoreFindPaginates(t *testing.T) {
	store := NewStore[gadget](newTestDB(t))
	ctx := context.Background()

	for _, id := range []string{"g1", "g2", "g3", "g4"} {
		_, err := store.Create(ctx, &gadget{ID: id, Name: "n-" + id, Price: 1})
		require.NoError(t, err)
	}

	page, err := store.Find(ctx, nil, 2, 1)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "g2", page[0].ID)
	assert.Equal(t, "g3", page[1].ID)
}

func TestStoreFindFirstNoMatchReturnsNil(t *testing.T) {
	store := NewStore[gadget](newTestDB(t))
	ctx := context.Background()

	got, err := store.FindFirst(ctx, byName("missing"))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStoreUpdateReturnsAffectedCount(t *testing.T) {
	store := NewStore[gadget](newTestDB(t))
	ctx := context.Background()

	_, err := store.Create(ctx, &gadget{ID: "g1", Name: "dup", Price: 1})
	require.NoError(t, err)
	_, err = store.Create(ctx, &gadget{ID: "g2", Name: "dup", Price: 2})
	require.NoError(t, err)

	count, err := store.Update(ctx, byName("dup"), Fields{"price": 9})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	count, err = store.Update(ctx, byName("missing"), Fields{"price": 9})
	require.NoError(t, err)
	assert.Zero(t, count)

	count, err = store.UpdateByID(ctx, "g1", Fields{"name": "renamed"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestStoreUpdateWithoutFieldsIsNoop(t *testing.T) {
	store := NewStore[gadget](newTestDB(t))

	count, err := store.Update(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestStoreDeletePhysicalAndLogical(t *testing.T) {
	store := NewStore[gadget](newTestDB(t))
	ctx := context.Background()

	_, err := store.Create(ctx, &gadget{ID: "g1", Name: "phys", Price: 1})
	require.NoError(t, err)
	_, err = store.Create(ctx, &gadget{ID: "g2", Name: "soft", Price: 2})
	require.NoError(t, err)

	count, err := store.DeleteByID(ctx, "g1", false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	gone, err := store.FindByID(ctx, "g1")
	require.NoError(t, err)
	assert.Nil(t, gone)

	count, err = store.DeleteByID(ctx, "g2", true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	flagged, err := store.FindByID(ctx, "g2")
	require.NoError(t, err)
	require.NotNil(t, flagged)
	assert.True(t, flagged.DelFlag)
}

func TestStoreWithTxSharesCommitBoundary(t *testing.T) {
	conn := newTestDB(t)
	store := NewStore[gadget](conn)
	ctx := context.Background()

	tx := conn.WithContext(ctx).Begin()
	require.NoError(t, tx.Error)

	txStore := store.WithTx(tx)
	_, err := txStore.Create(ctx, &gadget{ID: "g1", Name: "txn", Price: 1})
	require.NoError(t, err)

	require.NoError(t, tx.Rollback().Error)

	got, err := store.FindByID(ctx, "g1")
	require.NoError(t, err)
	assert.Nil(t, got, "rolled-back insert should not be visible")
}
