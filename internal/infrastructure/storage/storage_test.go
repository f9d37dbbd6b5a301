package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stratus-server/internal/domain"
	"stratus-server/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

func sampleSession() *domain.ReplaySession {
	return &domain.ReplaySession{
		Seed:      42,
		Timestamp: 1700000000,
		Commands: []domain.ReplayCommand{
			{Time: 0.5, Token: "knight", Action: domain.ActionCast, Payload: json.RawMessage(`{"skill":"Slash"}`)},
			{Time: 1.25, Action: domain.ActionDamage, Payload: json.RawMessage(`{"targetId":"ghoul","value":10}`)},
		},
		Events: []domain.Event{
			{Type: domain.EventSpawn, Source: "knight", Name: "Knight"},
			{Type: domain.EventStateChanged, Time: 0.1, Source: "knight", State: domain.StateActive, Name: "idle"},
			{Type: domain.EventDamageReceived, Time: 1.25, Source: "ghoul", Value: 10, Percent: 14.2},
			{Type: domain.EventInvulnerability, Time: 2, Source: "cleric", Flag: true},
		},
	}
}

func TestWriteRead_RoundTrip(t *testing.T) {
	want := sampleSession()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, want))
	assert.Equal(t, MagicHeader, buf.String()[:4])

	got, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, 2.0, got.Duration())
}

func TestWriteRead_EmptySession(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, &domain.ReplaySession{Seed: 1}))

	got, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Seed)
	assert.Empty(t, got.Commands)
	assert.Empty(t, got.Events)
}

func TestRead_RejectsBadInput(t *testing.T) {
	_, err := Read(strings.NewReader("NOPE0000000000000000000000000000"))
	assert.ErrorIs(t, err, ErrInvalidReplay)

	_, err = Read(strings.NewReader("ST"))
	assert.Error(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleSession()))
	truncated := buf.Bytes()[:buf.Len()/2]
	_, err = Read(bytes.NewReader(truncated))
	assert.Error(t, err)
}

func TestWrite_TokenTooLong(t *testing.T) {
	s := &domain.ReplaySession{Commands: []domain.ReplayCommand{{Token: strings.Repeat("x", 300)}}}
	err := Write(&bytes.Buffer{}, s)
	assert.True(t, errors.Is(err, ErrTooLong))
}

func TestReplayService_SaveLoad(t *testing.T) {
	svc, err := NewReplayService(filepath.Join(t.TempDir(), "replays"))
	require.NoError(t, err)

	want := sampleSession()
	path, err := svc.Save(want)
	require.NoError(t, err)
	assert.Equal(t, Extension, filepath.Ext(path))

	got, err := svc.Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = svc.Load(filepath.Join(svc.SaveDir, "missing.strp"))
	assert.Error(t, err)
}

func TestReplayService_SaveRemovesBrokenFile(t *testing.T) {
	svc, err := NewReplayService(t.TempDir())
	require.NoError(t, err)

	broken := sampleSession()
	broken.Commands[0].Token = strings.Repeat("x", 300)
	path, err := svc.Save(broken)
	assert.True(t, errors.Is(err, ErrTooLong))
	assert.Empty(t, path)

	entries, err := os.ReadDir(svc.SaveDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestReplayService_SegmentsDoNotOverwrite(t *testing.T) {
	svc, err := NewReplayService(t.TempDir())
	require.NoError(t, err)

	first, err := svc.Save(sampleSession())
	require.NoError(t, err)
	second := sampleSession()
	second.Events = second.Events[:1]
	secondPath, err := svc.Save(second)
	require.NoError(t, err)
	assert.NotEqual(t, first, secondPath)

	got, err := Load(first)
	require.NoError(t, err)
	assert.Len(t, got.Events, 4)
	got, err = Load(secondPath)
	require.NoError(t, err)
	assert.Len(t, got.Events, 1)
}
