package storage

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/sirupsen/logrus"

	"stratus-server/internal/domain"
	"stratus-server/pkg/logger"
)

const (
	MagicHeader string = `STRP` // 4 байта
	Version1    uint32 = 1
	Extension          = ".strp"
)

var ErrTooLong = errors.New("replay field too long")

// ReplayFileHeader — точное представление заголовка файла.
// binary.Write пишет его целиком: тут нет слайсов и строк, только массивы и числа.
type ReplayFileHeader struct {
	Magic        [4]byte // 4 байта
	Version      uint32  // 4 байта
	Seed         int64   // 8 байт
	Timestamp    int64   // 8 байт
	CommandCount int32   // 4 байта
	EventCount   int32   // 4 байта
}

// CommandHeader — заголовок записи команды.
type CommandHeader struct {
	Time       float64 // 8
	ActionType uint8   // 1
	TokenLen   uint8   // 1
	PayloadLen uint16  // 2
}

// EventHeader — заголовок записи события. За ним идут строки Source, Target, Name, State.
type EventHeader struct {
	Time      float64 // 8
	Value     float64 // 8
	Percent   float64 // 8
	Type      uint8   // 1
	Flag      uint8   // 1
	SourceLen uint8   // 1
	TargetLen uint8   // 1
	NameLen   uint8   // 1
	StateLen  uint8   // 1
}

type ReplayService struct {
	SaveDir string
	log     *logrus.Entry
}

func NewReplayService(dir string) (*ReplayService, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("replay dir: %w", err)
	}
	return &ReplayService{
		SaveDir: dir,
		log:     logger.For("replay_storage"),
	}, nil
}

// Save пишет реплей в SaveDir и возвращает путь к файлу.
// При ошибке недописанный файл удаляется.
func (s *ReplayService) Save(session *domain.ReplaySession) (_ string, err error) {
	f, err := s.create(session)
	if err != nil {
		return "", err
	}
	path := f.Name()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close replay %s: %w", path, cerr)
		}
		if err == nil {
			return
		}
		if rerr := os.Remove(path); rerr != nil {
			s.log.WithError(rerr).WithField("path", path).Warn("Failed to remove broken replay")
		}
	}()

	bw := bufio.NewWriter(f)
	if err := Write(bw, session); err != nil {
		return "", fmt.Errorf("write replay %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		return "", fmt.Errorf("flush replay %s: %w", path, err)
	}

	s.log.WithFields(logrus.Fields{
		"path":     path,
		"commands": len(session.Commands),
		"events":   len(session.Events),
	}).Info("Replay saved")
	return path, nil
}

// create открывает новый файл реплея. Сегменты одного боя, записанные в
// одну секунду, получают суффикс _1, _2, ...
func (s *ReplayService) create(session *domain.ReplaySession) (*os.File, error) {
	base := fmt.Sprintf("replay_%d_%d", session.Seed, session.Timestamp)
	for i := 0; ; i++ {
		name := base + Extension
		if i > 0 {
			name = fmt.Sprintf("%s_%d%s", base, i, Extension)
		}
		f, err := os.OpenFile(filepath.Join(s.SaveDir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		return f, err
	}
}

// Write кодирует реплей: заголовок открытым текстом, записи - потоком zstd
func Write(w io.Writer, s *domain.ReplaySession) error {
	// 1. ГЛОБАЛЬНЫЙ ЗАГОЛОВОК
	header := ReplayFileHeader{
		Version:      Version1,
		Seed:         s.Seed,
		Timestamp:    s.Timestamp,
		CommandCount: int32(len(s.Commands)),
		EventCount:   int32(len(s.Events)),
	}
	copy(header.Magic[:], MagicHeader)

	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	zw, err := zstd.NewWriter(w)
	if err != nil {
		return err
	}

	// 2. Команды
	for _, cmd := range s.Commands {
		if err := writeCommand(zw, cmd); err != nil {
			zw.Close()
			return err
		}
	}

	// 3. События
	for _, e := range s.Events {
		if err := writeEvent(zw, e); err != nil {
			zw.Close()
			return err
		}
	}

	return zw.Close()
}

func writeCommand(w io.Writer, cmd domain.ReplayCommand) error {
	if len(cmd.Token) > 255 {
		return fmt.Errorf("%w: token %d bytes", ErrTooLong, len(cmd.Token))
	}
	if len(cmd.Payload) > 65535 {
		return fmt.Errorf("%w: payload %d bytes", ErrTooLong, len(cmd.Payload))
	}

	h := CommandHeader{
		Time:       cmd.Time,
		ActionType: uint8(cmd.Action),
		TokenLen:   uint8(len(cmd.Token)),
		PayloadLen: uint16(len(cmd.Payload)),
	}
	if err := binary.Write(w, binary.LittleEndian, &h); err != nil {
		return err
	}
	if _, err := io.WriteString(w, cmd.Token); err != nil {
		return err
	}
	_, err := w.Write(cmd.Payload)
	return err
}

func writeEvent(w io.Writer, e domain.Event) error {
	strs := []string{e.Source, e.Target, e.Name, string(e.State)}
	for _, s := range strs {
		if len(s) > 255 {
			return fmt.Errorf("%w: event string %d bytes", ErrTooLong, len(s))
		}
	}

	h := EventHeader{
		Time:      e.Time,
		Value:     e.Value,
		Percent:   e.Percent,
		Type:      uint8(e.Type),
		SourceLen: uint8(len(e.Source)),
		TargetLen: uint8(len(e.Target)),
		NameLen:   uint8(len(e.Name)),
		StateLen:  uint8(len(e.State)),
	}
	if e.Flag {
		h.Flag = 1
	}
	if err := binary.Write(w, binary.LittleEndian, &h); err != nil {
		return err
	}
	for _, s := range strs {
		if _, err := io.WriteString(w, s); err != nil {
			return err
		}
	}
	return nil
}
