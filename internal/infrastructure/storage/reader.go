package storage

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"

	"stratus-server/internal/domain"
)

var ErrInvalidReplay = errors.New("invalid replay file")

// Load читает реплей с диска
func (s *ReplayService) Load(path string) (*domain.ReplaySession, error) {
	return Load(path)
}

func Load(path string) (*domain.ReplaySession, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	session, err := Read(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("read replay %s: %w", path, err)
	}
	return session, nil
}

// Read декодирует реплей, записанный Write
func Read(r io.Reader) (*domain.ReplaySession, error) {
	// 1. Заголовок целиком
	var header ReplayFileHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	if string(header.Magic[:]) != MagicHeader {
		return nil, fmt.Errorf("%w: bad magic %q", ErrInvalidReplay, header.Magic[:])
	}
	if header.Version != Version1 {
		return nil, fmt.Errorf("%w: unsupported version %d (expected %d)", ErrInvalidReplay, header.Version, Version1)
	}
	if header.CommandCount < 0 || header.EventCount < 0 {
		return nil, fmt.Errorf("%w: negative record count", ErrInvalidReplay)
	}

	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	session := &domain.ReplaySession{
		Seed:      header.Seed,
		Timestamp: header.Timestamp,
		Commands:  make([]domain.ReplayCommand, 0, header.CommandCount),
		Events:    make([]domain.Event, 0, header.EventCount),
	}

	// 2. Команды
	for i := 0; i < int(header.CommandCount); i++ {
		cmd, err := readCommand(zr)
		if err != nil {
			return nil, fmt.Errorf("command %d: %w", i, err)
		}
		session.Commands = append(session.Commands, cmd)
	}

	// 3. События
	for i := 0; i < int(header.EventCount); i++ {
		e, err := readEvent(zr)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		session.Events = append(session.Events, e)
	}

	return session, nil
}

func readCommand(r io.Reader) (domain.ReplayCommand, error) {
	var h CommandHeader
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return domain.ReplayCommand{}, err
	}

	token, err := readString(r, int(h.TokenLen))
	if err != nil {
		return domain.ReplayCommand{}, err
	}

	cmd := domain.ReplayCommand{
		Time:   h.Time,
		Token:  token,
		Action: domain.ActionType(h.ActionType),
	}
	if h.PayloadLen > 0 {
		cmd.Payload = make([]byte, h.PayloadLen)
		if _, err := io.ReadFull(r, cmd.Payload); err != nil {
			return domain.ReplayCommand{}, err
		}
	}
	return cmd, nil
}

func readEvent(r io.Reader) (domain.Event, error) {
	var h EventHeader
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return domain.Event{}, err
	}

	e := domain.Event{
		Type:    domain.EventType(h.Type),
		Time:    h.Time,
		Value:   h.Value,
		Percent: h.Percent,
		Flag:    h.Flag != 0,
	}
	var err error
	if e.Source, err = readString(r, int(h.SourceLen)); err != nil {
		return e, err
	}
	if e.Target, err = readString(r, int(h.TargetLen)); err != nil {
		return e, err
	}
	if e.Name, err = readString(r, int(h.NameLen)); err != nil {
		return e, err
	}
	state, err := readString(r, int(h.StateLen))
	e.State = domain.ControllerState(state)
	return e, err
}

func readString(r io.Reader, n int) (string, error) {
	if n == 0 {
		return "", nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}
