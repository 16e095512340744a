package storage

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type document struct {
	Name    string            `json:"name"`
	Members []string          `json:"members"`
	Flags   map[string]bool   `json:"flags"`
	Nested  *document         `json:"nested,omitempty"`
	Labels  map[string]string `json:"labels,omitempty"`
}

type AdapterSuite struct {
	suite.Suite
	newAdapter func() Adapter
}

func (s *AdapterSuite) TestRoundTrip() {
	a := s.newAdapter()
	ctx := context.Background()
	in := document{
		Name:    "profile",
		Members: []string{"a", "b"},
		Flags:   map[string]bool{"123456789012": true},
		Nested:  &document{Name: "child", Members: []string{}, Flags: map[string]bool{}},
	}

	s.Require().NoError(a.Save(ctx, KeyProfile, in))

	var out document
	ok, err := a.Load(ctx, KeyProfile, &out)
	s.Require().NoError(err)
	s.Require().True(ok)
	s.Equal(in, out)
}

func (s *AdapterSuite) TestMissingKeyIsNotAnError() {
	var out document
	ok, err := s.newAdapter().Load(context.Background(), KeyApplications, &out)
	s.Require().NoError(err)
	s.False(ok)
}

func (s *AdapterSuite) TestRemove() {
	a := s.newAdapter()
	ctx := context.Background()
	s.Require().NoError(a.Save(ctx, KeyNotifications, []string{"x"}))
	s.Require().NoError(a.Remove(ctx, KeyNotifications))
	s.Require().NoError(a.Remove(ctx, KeyNotifications))

	var out []string
	ok, err := a.Load(ctx, KeyNotifications, &out)
	s.Require().NoError(err)
	s.False(ok)
}

func (s *AdapterSuite) TestScopedKeysAreIsolated() {
	base := s.newAdapter()
	ctx := context.Background()
	deviceA := Scoped(base, "device-a")
	deviceB := Scoped(base, "device-b")

	s.Require().NoError(deviceA.Save(ctx, KeyProfile, document{Name: "a"}))

	var out document
	ok, err := deviceB.Load(ctx, KeyProfile, &out)
	s.Require().NoError(err)
	s.False(ok)

	ok, err = deviceA.Load(ctx, KeyProfile, &out)
	s.Require().NoError(err)
	s.True(ok)
	s.Equal("a", out.Name)

	s.Require().NoError(Clear(ctx, deviceA))
	ok, err = deviceA.Load(ctx, KeyProfile, &out)
	s.Require().NoError(err)
	s.False(ok)
}

func TestMemoryAdapter(t *testing.T) {
	suite.Run(t, &AdapterSuite{newAdapter: NewMemory})
}

func TestRedisAdapter(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	suite.Run(t, &AdapterSuite{newAdapter: func() Adapter {
		mr.FlushAll()
		return NewRedis(client)
	}})
}

func TestMalformedDocumentIsPersistenceFailure(t *testing.T) {
	a := NewMemoryWithRaw(map[string]string{KeyProfile: "{not json"})

	var out document
	ok, err := a.Load(context.Background(), KeyProfile, &out)
	require.ErrorIs(t, err, ErrPersistence)
	require.False(t, ok)
}

func TestRedisMalformedDocument(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	require.NoError(t, mr.Set(redisPrefix+KeyApplications, "[{"))

	var out []document
	_, err := NewRedis(client).Load(context.Background(), KeyApplications, &out)
	require.ErrorIs(t, err, ErrPersistence)
}
