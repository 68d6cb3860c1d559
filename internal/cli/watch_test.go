package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbdelazizMoustafa10m/plotline/internal/config"
	"github.com/AbdelazizMoustafa10m/plotline/internal/store"
	"github.com/AbdelazizMoustafa10m/plotline/internal/task"
)

func TestRefresher_PrintsOnlyOnChange(t *testing.T) {
	prev := nowFunc
	nowFunc = func() time.Time { return testNow }
	t.Cleanup(func() { nowFunc = prev })

	ctx := context.Background()
	s := store.NewFileStore(afero.NewMemMapFs(), "/tasks.json")
	ws := &workspace{cfg: config.NewDefaults(), store: s, loc: time.UTC, root: "/"}

	var out bytes.Buffer
	r := &refresher{ws: ws, out: &out}

	require.NoError(t, r.refresh(ctx))
	assert.Equal(t, 1, strings.Count(out.String(), "\n"), "first refresh always reports")
	assert.Contains(t, out.String(), "0 task(s)")

	require.NoError(t, r.refresh(ctx))
	assert.Equal(t, 1, strings.Count(out.String(), "\n"), "unchanged schedule is not reported")

	require.NoError(t, s.Put(ctx, task.NewTask("Water plants", testNow)))
	require.NoError(t, r.refresh(ctx))
	assert.Equal(t, 2, strings.Count(out.String(), "\n"))
	assert.Contains(t, out.String(), "1 task(s), 1 lane(s), max 1 concurrent")
}
