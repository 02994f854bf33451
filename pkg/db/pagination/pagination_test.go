package pagination

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestNormalizeClamps(t *testing.T) {
	p := Params{Page: 0, PageSize: 500, SortDirection: "xyz", Search: "  MiXeD  "}
	p.Normalize()

	assert.Equal(t, 1, p.Page)
	assert.Equal(t, MaxPageSize, p.PageSize)
	assert.Equal(t, "asc", p.SortDirection)
	assert.Equal(t, "mixed", p.Search)

	p = Params{Page: -3, PageSize: 0, SortDirection: "DESC"}
	p.Normalize()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 1, p.PageSize)
	assert.Equal(t, "desc", p.SortDirection)
}

func TestOrderClause(t *testing.T) {
	allowed := map[string]string{"name": "name", "createdat": "created_at"}

	p := Params{Sort: "NAME", SortDirection: "desc"}
	p.Normalize()
	assert.Equal(t, "name DESC, id DESC", p.OrderClause(allowed))

	p = Params{Sort: "name"}
	p.Normalize()
	assert.Equal(t, "name ASC, id ASC", p.OrderClause(allowed))

	// Unknown or absent sort fields fall back to created_at descending.
	p = Params{Sort: "secretcolumn", SortDirection: "asc"}
	p.Normalize()
	assert.Equal(t, "created_at DESC, id DESC", p.OrderClause(allowed))

	p = Params{}
	p.Normalize()
	assert.Equal(t, "created_at DESC, id DESC", p.OrderClause(allowed))
}

func TestNewPageMath(t *testing.T) {
	page := NewPage([]int{1, 2, 3}, 2, 10, 23)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 10, page.PageSize)
	assert.EqualValues(t, 23, page.TotalCount)
	assert.Equal(t, 3, page.TotalPages)

	empty := NewPage[int](nil, 1, 10, 0)
	assert.NotNil(t, empty.Items)
	assert.Zero(t, empty.TotalPages)
}

type pagedRecord struct {
	ID        int64 `gorm:"primaryKey"`
	Name      string
	CreatedAt time.Time
}

func TestFindPagesDeterministically(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&pagedRecord{}))

	base := time.Now().UTC().Add(-time.Hour)
	for i := 1; i <= 25; i++ {
		require.NoError(t, conn.Create(&pagedRecord{
			ID:        int64(i),
			Name:      fmt.Sprintf("record-%02d", i),
			CreatedAt: base, // identical timestamps force the id tie-break
		}).Error)
	}

	p := Params{Page: 2, PageSize: 10}
	p.Normalize()
	order := p.OrderClause(map[string]string{"name": "name"})

	page, err := Find[pagedRecord](conn.Model(&pagedRecord{}), p, order)
	require.NoError(t, err)
	assert.EqualValues(t, 25, page.TotalCount)
	assert.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Items, 10)

	// created_at DESC with identical values leaves ids descending, so page 2
	// holds ids 15 down to 6.
	assert.EqualValues(t, 15, page.Items[0].ID)
	assert.EqualValues(t, 6, page.Items[9].ID)

	// Read queries have no side effects: the same request returns the same
	// page.
	again, err := Find[pagedRecord](conn.Model(&pagedRecord{}), p, order)
	require.NoError(t, err)
	assert.Equal(t, page, again)
}
