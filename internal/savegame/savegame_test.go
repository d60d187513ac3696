package savegame

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/lawnchairsociety/dungeonadventure/internal/gameerr"
	"github.com/lawnchairsociety/dungeonadventure/internal/grid"
	"github.com/lawnchairsociety/dungeonadventure/internal/items"
	"github.com/lawnchairsociety/dungeonadventure/internal/snapshot"
)

var fixedNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func clockAt(t time.Time) Clock {
	return func() time.Time { return t }
}

func testSnapshot(id string) *snapshot.Snapshot {
	return &snapshot.Snapshot{
		Version:   snapshot.Version,
		ID:        id,
		CreatedAt: time.Date(2026, 10, 19, 11, 0, 0, 0, time.UTC),
		Seed:      42,
		Draws:     17,
		State:     "playing",
		Mode:      "exploring",
		Hero: snapshot.HeroData{
			Name:     "Ayla",
			Class:    "thief",
			HP:       60,
			Position: grid.Coord{X: 0, Y: 0},
			Pillars:  []items.Pillar{items.PillarAbstraction},
		},
		Dungeon: snapshot.DungeonData{
			Width:    2,
			Height:   1,
			Entrance: grid.Coord{X: 0, Y: 0},
			Exit:     grid.Coord{X: 1, Y: 0},
			Rooms: []snapshot.RoomData{
				{Coord: grid.Coord{X: 0, Y: 0}, Doors: []string{"east"}, Visited: true},
				{Coord: grid.Coord{X: 1, Y: 0}, Doors: []string{"west"}},
			},
		},
	}
}

func TestFileRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewFileRepository(filepath.Join(t.TempDir(), "saves"), clockAt(fixedNow))

	snap := testSnapshot("abc")
	require.NoError(t, repo.Save(ctx, snap))
	assert.True(t, snap.SavedAt.IsZero(), "caller's snapshot is not modified")

	loaded, err := repo.Load(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, fixedNow.Equal(loaded.SavedAt))
	assert.Equal(t, snap.Hero, loaded.Hero)
	assert.Equal(t, snap.Dungeon, loaded.Dungeon)
	assert.Equal(t, uint64(17), loaded.Draws)
}

func TestFileRepositoryOverwrite(t *testing.T) {
	ctx := context.Background()
	repo := NewFileRepository(t.TempDir(), clockAt(fixedNow))

	snap := testSnapshot("abc")
	require.NoError(t, repo.Save(ctx, snap))
	snap.Hero.HP = 10
	require.NoError(t, repo.Save(ctx, snap))

	loaded, err := repo.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, 10, loaded.Hero.HP)
}

func TestFileRepositoryNotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewFileRepository(t.TempDir(), nil)

	_, err := repo.Load(ctx, "missing")
	assert.True(t, gameerr.IsNotFound(err))
	assert.True(t, gameerr.IsNotFound(repo.Delete(ctx, "missing")))
}

func TestFileRepositoryRejectsPathIDs(t *testing.T) {
	ctx := context.Background()
	repo := NewFileRepository(t.TempDir(), nil)

	for _, id := range []string{"../escape", "a/b", "..", ""} {
		_, err := repo.Load(ctx, id)
		assert.Error(t, err, "id %q", id)
	}
}

func TestFileRepositoryListAndDelete(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	older := NewFileRepository(dir, clockAt(fixedNow.Add(-time.Hour)))
	newer := NewFileRepository(dir, clockAt(fixedNow))
	require.NoError(t, older.Save(ctx, testSnapshot("first")))
	require.NoError(t, newer.Save(ctx, testSnapshot("second")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "junk.yaml"), []byte("not a save"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))

	list, err := newer.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].ID)
	assert.Equal(t, "first", list[1].ID)
	assert.Equal(t, "Ayla", list[0].HeroName)
	assert.Equal(t, 1, list[0].Pillars)

	require.NoError(t, newer.Delete(ctx, "first"))
	list, err = newer.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestFileRepositoryListMissingDir(t *testing.T) {
	repo := NewFileRepository(filepath.Join(t.TempDir(), "nope"), nil)
	list, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestFileRepositoryCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	repo := NewFileRepository(t.TempDir(), nil)
	assert.ErrorIs(t, repo.Save(ctx, testSnapshot("abc")), context.Canceled)
}

type RedisRepoTestSuite struct {
	suite.Suite
	client *redis.Client
	mock   redismock.ClientMock
	repo   *RedisRepository
}

func (s *RedisRepoTestSuite) SetupTest() {
	s.client, s.mock = redismock.NewClientMock()
	s.repo = NewRedisRepository(&RedisRepoConfig{Client: s.client, Now: clockAt(fixedNow)})
}

func (s *RedisRepoTestSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
}

func TestRedisRepoTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRepoTestSuite))
}

func (s *RedisRepoTestSuite) sealed(id string) string {
	snap := testSnapshot(id)
	snap.SavedAt = fixedNow
	data, err := snapshot.Seal(snap)
	s.Require().NoError(err)
	return string(data)
}

func (s *RedisRepoTestSuite) TestSave() {
	ctx := context.Background()

	s.mock.ExpectSet("save:abc", s.sealed("abc"), 0).SetVal("OK")
	s.mock.ExpectSAdd("saves", "abc").SetVal(1)
	s.NoError(s.repo.Save(ctx, testSnapshot("abc")))

	// Dependency error
	s.mock.ExpectSet("save:abc", s.sealed("abc"), 0).SetErr(errors.New("redis error"))
	s.Error(s.repo.Save(ctx, testSnapshot("abc")))

	// Input validation
	s.Error(s.repo.Save(ctx, nil))
	s.Error(s.repo.Save(ctx, testSnapshot("")))
}

func (s *RedisRepoTestSuite) TestSaveWithTTL() {
	ctx := context.Background()
	repo := NewRedisRepository(&RedisRepoConfig{Client: s.client, TTL: time.Hour, Now: clockAt(fixedNow)})

	s.mock.ExpectSet("save:abc", s.sealed("abc"), time.Hour).SetVal("OK")
	s.mock.ExpectSAdd("saves", "abc").SetVal(1)
	s.NoError(repo.Save(ctx, testSnapshot("abc")))
}

func (s *RedisRepoTestSuite) TestLoad() {
	ctx := context.Background()

	s.mock.ExpectGet("save:abc").SetVal(s.sealed("abc"))
	snap, err := s.repo.Load(ctx, "abc")
	s.Require().NoError(err)
	s.Equal("abc", snap.ID)
	s.True(fixedNow.Equal(snap.SavedAt))

	s.mock.ExpectGet("save:gone").RedisNil()
	_, err = s.repo.Load(ctx, "gone")
	s.True(gameerr.IsNotFound(err))

	s.mock.ExpectGet("save:bad").SetVal("checksum: nope\npayload: x\n")
	_, err = s.repo.Load(ctx, "bad")
	s.Error(err)
}

func (s *RedisRepoTestSuite) TestList() {
	ctx := context.Background()

	s.mock.ExpectSMembers("saves").SetVal([]string{"abc", "expired"})
	s.mock.ExpectMGet("save:abc", "save:expired").SetVal([]interface{}{s.sealed("abc"), nil})
	s.mock.ExpectSRem("saves", "expired").SetVal(1)

	list, err := s.repo.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal("abc", list[0].ID)
	s.Equal("thief", list[0].Class)
}

func (s *RedisRepoTestSuite) TestListEmpty() {
	s.mock.ExpectSMembers("saves").SetVal([]string{})
	list, err := s.repo.List(context.Background())
	s.NoError(err)
	s.Empty(list)
}

func (s *RedisRepoTestSuite) TestDelete() {
	ctx := context.Background()

	s.mock.ExpectDel("save:abc").SetVal(1)
	s.mock.ExpectSRem("saves", "abc").SetVal(1)
	s.NoError(s.repo.Delete(ctx, "abc"))

	s.mock.ExpectDel("save:gone").SetVal(0)
	s.mock.ExpectSRem("saves", "gone").SetVal(0)
	s.True(gameerr.IsNotFound(s.repo.Delete(ctx, "gone")))
}
