package engine

import (
	"time"

	"stratus-server/internal/domain"
)

// Recorder копит команды и события боя для реплея.
// Запись режется на сегменты не длиннее limit записей (команды + события).
// Используется только из горутины арены.
type Recorder struct {
	session domain.ReplaySession
	limit   int
}

func NewRecorder(seed int64, limit int) *Recorder {
	r := &Recorder{limit: limit}
	r.session.Seed = seed
	r.session.Timestamp = time.Now().Unix()
	return r
}

// RecordCommand запоминает внешнюю команду с моментом применения
func (r *Recorder) RecordCommand(at float64, cmd domain.InternalCommand) {
	r.session.Commands = append(r.session.Commands, domain.ReplayCommand{
		Time:    at,
		Token:   cmd.Token,
		Action:  cmd.Action,
		Payload: cmd.Payload,
	})
}

// Publish - Recorder является EventSink
func (r *Recorder) Publish(e domain.Event) {
	r.session.Events = append(r.session.Events, e)
}

// Len - число записей в текущем сегменте
func (r *Recorder) Len() int { return len(r.session.Commands) + len(r.session.Events) }

func (r *Recorder) Full() bool { return r.limit > 0 && r.Len() >= r.limit }

// Cut отдает текущий сегмент и начинает новый с тем же сидом
func (r *Recorder) Cut() *domain.ReplaySession {
	s := r.session
	r.session = domain.ReplaySession{Seed: s.Seed, Timestamp: time.Now().Unix()}
	return &s
}

// Session возвращает копию текущего сегмента
func (r *Recorder) Session() *domain.ReplaySession {
	s := r.session
	s.Commands = append([]domain.ReplayCommand(nil), r.session.Commands...)
	s.Events = append([]domain.Event(nil), r.session.Events...)
	return &s
}
